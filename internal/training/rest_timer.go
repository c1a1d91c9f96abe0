package training

import (
	"sync"
	"time"
)

const (
	DefaultRestSeconds = 60
	restTickInterval   = time.Second
)

// RestTick is emitted once per second while a countdown runs.
// Countdown identifies which RecordSet started it.
type RestTick struct {
	Countdown uint64
	Remaining int
}

// TickerFactory creates the tick source of a countdown and the func that stops it.
type TickerFactory func(interval time.Duration) (<-chan time.Time, func())

func systemTicker(interval time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(interval)
	return t.C, t.Stop
}

// RestTimer runs at most one countdown at a time. Starting a new countdown
// cancels the running one, and ticks of a cancelled countdown are never emitted.
// The onTick observer must not start a new countdown synchronously.
type RestTimer struct {
	// emitMu is held while a tick is applied and delivered, so a Start
	// never races with the delivery of a stale tick.
	emitMu sync.Mutex
	mu     sync.Mutex

	interval  time.Duration
	newTicker TickerFactory
	onTick    func(RestTick)

	current   uint64
	remaining int
	stop      chan struct{}
	wg        sync.WaitGroup
}

func NewRestTimer(onTick func(RestTick), newTicker TickerFactory) *RestTimer {
	if newTicker == nil {
		newTicker = systemTicker
	}
	return &RestTimer{
		interval:  restTickInterval,
		newTicker: newTicker,
		onTick:    onTick,
	}
}

// Start begins a countdown of the given seconds and returns its id.
func (t *RestTimer) Start(seconds int) uint64 {
	t.emitMu.Lock()
	defer t.emitMu.Unlock()
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cancelLocked()
	t.current++
	if seconds <= 0 {
		return t.current
	}

	t.remaining = seconds
	stop := make(chan struct{})
	t.stop = stop
	ticks, stopTicker := t.newTicker(t.interval)

	t.wg.Add(1)
	go t.run(t.current, ticks, stopTicker, stop)

	return t.current
}

// Stop cancels the running countdown, if any.
func (t *RestTimer) Stop() {
	t.emitMu.Lock()
	defer t.emitMu.Unlock()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelLocked()
	t.current++
}

// Close stops the countdown and waits for its goroutine to exit.
func (t *RestTimer) Close() {
	t.Stop()
	t.wg.Wait()
}

// Remaining returns the seconds left in the running countdown, 0 when idle.
func (t *RestTimer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

func (t *RestTimer) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stop != nil
}

func (t *RestTimer) cancelLocked() {
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
	t.remaining = 0
}

func (t *RestTimer) run(id uint64, ticks <-chan time.Time, stopTicker func(), stop <-chan struct{}) {
	defer t.wg.Done()
	defer stopTicker()

	for {
		select {
		case <-stop:
			return
		case <-ticks:
			if done := t.tick(id); done {
				return
			}
		}
	}
}

func (t *RestTimer) tick(id uint64) bool {
	t.emitMu.Lock()
	defer t.emitMu.Unlock()

	t.mu.Lock()
	if id != t.current || t.stop == nil {
		t.mu.Unlock()
		return true
	}
	t.remaining--
	tick := RestTick{Countdown: id, Remaining: t.remaining}
	if t.remaining == 0 {
		// finished countdowns clear themselves
		t.stop = nil
	}
	t.mu.Unlock()

	if t.onTick != nil {
		t.onTick(tick)
	}
	return tick.Remaining == 0
}
