package training_test

import (
	"sync"
	"testing"
	"time"

	"github.com/2beens/trainingapp/internal/catalog"
	"github.com/2beens/trainingapp/internal/training"

	"github.com/stretchr/testify/require"
)

// fakeTickers hands out unbuffered tick channels the test drives by hand.
type fakeTickers struct {
	mu      sync.Mutex
	chans   []chan time.Time
	stopped []bool
}

func (f *fakeTickers) factory(_ time.Duration) (<-chan time.Time, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan time.Time)
	idx := len(f.chans)
	f.chans = append(f.chans, ch)
	f.stopped = append(f.stopped, false)
	return ch, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.stopped[idx] = true
	}
}

func (f *fakeTickers) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.chans)
}

func (f *fakeTickers) ticker(i int) chan time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.chans[i]
}

func (f *fakeTickers) isStopped(i int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped[i]
}

func (f *fakeTickers) tick(t *testing.T, i int) {
	t.Helper()
	select {
	case f.ticker(i) <- time.Now():
	case <-time.After(time.Second):
		t.Fatalf("ticker %d not consumed", i)
	}
}

type tickRecorder struct {
	ch chan training.RestTick
}

func newTickRecorder() *tickRecorder {
	return &tickRecorder{ch: make(chan training.RestTick, 256)}
}

func (r *tickRecorder) observe(tick training.RestTick) {
	r.ch <- tick
}

func (r *tickRecorder) next(t *testing.T) training.RestTick {
	t.Helper()
	select {
	case tick := <-r.ch:
		return tick
	case <-time.After(time.Second):
		t.Fatal("no rest tick emitted")
		return training.RestTick{}
	}
}

type appendedHistory struct {
	mu        sync.Mutex
	summaries []training.Summary
}

func (h *appendedHistory) Append(summary training.Summary) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.summaries = append(h.summaries, summary)
}

func (h *appendedHistory) all() []training.Summary {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]training.Summary(nil), h.summaries...)
}

var testNow = time.Date(2026, time.October, 15, 18, 30, 0, 0, time.UTC)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]catalog.Complex{
		{
			ID:   "push",
			Name: "Push Day",
			Exercises: []catalog.Exercise{
				{Name: "A", Sets: 3, Reps: "10", Weight: "60"},
				{Name: "B", Sets: 2, Reps: "12", Weight: "20"},
			},
		},
		{
			ID:   "legs",
			Name: "Leg Day",
			Exercises: []catalog.Exercise{
				{Name: "Squat", Sets: 5, Reps: "5", Weight: "100"},
			},
		},
		{
			ID:   "stretch",
			Name: "Stretching",
			Exercises: []catalog.Exercise{
				{Name: "Hamstrings", Sets: 0, Reps: "30s", Weight: "bodyweight"},
			},
		},
	})
	require.NoError(t, err)
	return c
}

func newTestSession(t *testing.T, persister training.Persister, history training.HistoryAppender, opts ...training.Option) (*training.Session, *fakeTickers) {
	t.Helper()
	tickers := &fakeTickers{}
	opts = append([]training.Option{
		training.WithTickerFactory(tickers.factory),
		training.WithClock(func() time.Time { return testNow }),
	}, opts...)
	s := training.NewSession(testCatalog(t), persister, history, opts...)
	t.Cleanup(s.Close)
	return s, tickers
}
