package pkg

import (
	"io"
	"sync"

	"go.uber.org/multierr"
)

// CombinedWriter fans every write out to all of its writers. A write succeeds
// as long as one writer took the whole message; failures of the others are
// collected in Err instead of failing the caller.
type CombinedWriter struct {
	Writers []io.Writer

	mu  sync.Mutex
	Err error
}

func NewCombinedWriter(writers ...io.Writer) *CombinedWriter {
	cw := &CombinedWriter{}
	for _, w := range writers {
		if w != nil {
			cw.Writers = append(cw.Writers, w)
		}
	}
	return cw
}

func (cw *CombinedWriter) Write(p []byte) (int, error) {
	var (
		errs      error
		succeeded bool
	)
	for _, w := range cw.Writers {
		n, err := w.Write(p)
		if err == nil && n < len(p) {
			err = io.ErrShortWrite
		}
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		succeeded = true
	}

	if !succeeded {
		if errs == nil {
			errs = io.ErrClosedPipe
		}
		return 0, errs
	}
	if errs != nil {
		cw.mu.Lock()
		cw.Err = multierr.Append(cw.Err, errs)
		cw.mu.Unlock()
	}
	return len(p), nil
}
