package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/2beens/trainingapp/internal/telemetry/tracing"
	"github.com/2beens/trainingapp/internal/training"
	"github.com/2beens/trainingapp/pkg"

	"go.opentelemetry.io/otel/attribute"
)

var ErrCorruptHistory = errors.New("history file is not a list of sessions")

// Repo is the append-only session log kept as a single JSON array on disk.
// The mutex serializes writers of this process only: a second process writing
// the same file is not supported.
type Repo struct {
	mu   sync.Mutex
	path string
}

func NewRepo(path string) *Repo {
	return &Repo{
		path: path,
	}
}

func (r *Repo) Path() string {
	return r.path
}

// Append adds the session to the end of the log and returns its 1-based position.
func (r *Repo) Append(ctx context.Context, summary training.Summary) (_ int, err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "repo.sessions.append")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	r.mu.Lock()
	defer r.mu.Unlock()

	summaries, err := r.readLocked()
	if err != nil {
		return 0, err
	}
	summaries = append(summaries, summary)

	historyJson, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("marshal history: %w", err)
	}
	if err := pkg.WriteFileAtomic(r.path, historyJson, 0o644); err != nil {
		return 0, fmt.Errorf("write history: %w", err)
	}

	id := len(summaries)
	span.SetAttributes(attribute.Int("id", id))
	return id, nil
}

// List returns all stored sessions in insertion order.
func (r *Repo) List(ctx context.Context) (_ []training.Summary, err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "repo.sessions.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.readLocked()
}

func (r *Repo) Count(ctx context.Context) (int, error) {
	summaries, err := r.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(summaries), nil
}

func (r *Repo) readLocked() ([]training.Summary, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return []training.Summary{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	if len(data) == 0 {
		return []training.Summary{}, nil
	}

	var summaries []training.Summary
	if err := json.Unmarshal(data, &summaries); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCorruptHistory, err)
	}
	if summaries == nil {
		summaries = []training.Summary{}
	}
	return summaries, nil
}
