package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/2beens/trainingapp/internal/telemetry/tracing"
	"github.com/2beens/trainingapp/internal/training"
	"github.com/2beens/trainingapp/pkg"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

const historyCacheKey = "history"

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=sessions_test

type service interface {
	Save(ctx context.Context, summary training.Summary) (int, error)
	History(ctx context.Context) ([]training.Summary, error)
}

type saveTrainingRequest struct {
	TrainingData *training.Summary `json:"trainingData"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type Handler struct {
	service service
	cache   *freecache.Cache
	// historyMu keeps a save and the history cache fill from interleaving
	historyMu sync.Mutex
}

func NewHandler(service service, cache *freecache.Cache) *Handler {
	return &Handler{
		service: service,
		cache:   cache,
	}
}

func (h *Handler) HandleSaveTraining(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.save")
	defer span.End()

	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		pkg.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid content type"})
		return
	}

	var req saveTrainingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("save training, unmarshal json body: %s", err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			pkg.WriteJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
			return
		}
		pkg.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.TrainingData == nil {
		pkg.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "no training data provided"})
		return
	}

	h.historyMu.Lock()
	id, err := h.service.Save(ctx, *req.TrainingData)
	if err == nil {
		h.cache.Del([]byte(historyCacheKey))
	}
	h.historyMu.Unlock()

	if err != nil {
		if errors.Is(err, training.ErrValidation) {
			log.Warnf("save training, invalid data: %s", err)
			pkg.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid training data", Details: err.Error()})
			return
		}
		log.Errorf("save training: %s", err)
		pkg.WriteJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to save training data", Details: err.Error()})
		return
	}

	log.Debugf("training saved as session %d", id)

	pkg.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// HandleHistory lists every stored session in insertion order.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.history")
	defer span.End()

	h.historyMu.Lock()
	defer h.historyMu.Unlock()

	if cached, err := h.cache.Get([]byte(historyCacheKey)); err == nil {
		pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, cached)
		return
	}

	summaries, err := h.service.History(ctx)
	if err != nil {
		log.Errorf("get history: %s", err)
		pkg.WriteJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to read training history", Details: err.Error()})
		return
	}

	historyJson, err := json.Marshal(summaries)
	if err != nil {
		log.Errorf("marshal history: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if err := h.cache.Set([]byte(historyCacheKey), historyJson, 0); err != nil {
		log.Warnf("cache history response: %s", err)
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, historyJson)
}
