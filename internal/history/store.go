package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/2beens/trainingapp/internal/training"
	"github.com/2beens/trainingapp/pkg"

	log "github.com/sirupsen/logrus"
)

// Fetcher is satisfied by *client.Client.
type Fetcher interface {
	FetchHistory(ctx context.Context) ([]training.Summary, error)
}

type Option func(s *Store)

// WithSnapshotFile keeps a JSON copy of the history on local disk. It is
// read when the store is created and rewritten after every change.
func WithSnapshotFile(path string) Option {
	return func(s *Store) {
		s.snapshotPath = path
	}
}

// Store is the client side cache of completed sessions, in insertion order.
type Store struct {
	mu           sync.RWMutex
	summaries    []training.Summary
	snapshotPath string
}

func NewStore(opts ...Option) *Store {
	s := &Store{}
	for _, opt := range opts {
		opt(s)
	}
	if s.snapshotPath != "" {
		if err := s.loadSnapshot(); err != nil {
			log.Errorf("history: load snapshot [%s]: %s", s.snapshotPath, err)
		}
	}
	return s
}

func (s *Store) Append(summary training.Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries = append(s.summaries, summary)
	s.writeSnapshotLocked()
}

// All returns a copy of the history, most recent session first.
func (s *Store) All() []training.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := slices.Clone(s.summaries)
	slices.Reverse(all)
	return all
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.summaries)
}

// Bootstrap replaces the local history with the server's log. Sessions that
// only exist locally are dropped.
func (s *Store) Bootstrap(ctx context.Context, fetcher Fetcher) error {
	summaries, err := fetcher.FetchHistory(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap history: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.summaries) > len(summaries) {
		log.Warnf("history: bootstrap replaced %d local sessions with %d from server", len(s.summaries), len(summaries))
	}
	s.summaries = slices.Clone(summaries)
	s.writeSnapshotLocked()
	return nil
}

func (s *Store) loadSnapshot() error {
	data, err := os.ReadFile(s.snapshotPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}

	var summaries []training.Summary
	if err := json.Unmarshal(data, &summaries); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	s.summaries = summaries
	return nil
}

func (s *Store) writeSnapshotLocked() {
	if s.snapshotPath == "" {
		return
	}
	summaries := s.summaries
	if summaries == nil {
		summaries = []training.Summary{}
	}
	data, err := json.Marshal(summaries)
	if err != nil {
		log.Errorf("history: encode snapshot: %s", err)
		return
	}
	if err := pkg.WriteFileAtomic(s.snapshotPath, data, 0o644); err != nil {
		log.Errorf("history: write snapshot [%s]: %s", s.snapshotPath, err)
	}
}
