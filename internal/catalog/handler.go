package catalog

import (
	"encoding/json"
	"net/http"

	"github.com/2beens/trainingapp/internal/telemetry/tracing"
	"github.com/2beens/trainingapp/pkg"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

const complexesCacheKey = "complexes"

type Handler struct {
	catalog *Catalog
	cache   *freecache.Cache
}

func NewHandler(catalog *Catalog, cache *freecache.Cache) *Handler {
	return &Handler{
		catalog: catalog,
		cache:   cache,
	}
}

// HandleComplexes lists the complexes in catalog order: [{id, name, exercises}].
func (h *Handler) HandleComplexes(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.catalog.complexes")
	defer span.End()

	if cached, err := h.cache.Get([]byte(complexesCacheKey)); err == nil {
		pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, cached)
		return
	}

	complexesJson, err := json.Marshal(h.catalog.Complexes())
	if err != nil {
		log.Errorf("marshal complexes: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	// the catalog never changes while the server runs
	if err := h.cache.Set([]byte(complexesCacheKey), complexesJson, 0); err != nil {
		log.Warnf("cache complexes response: %s", err)
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, complexesJson)
}
