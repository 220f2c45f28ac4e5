package fsstore

import (
	"os"
	"sync"
)

// queueDepth bounds the pending-write queue per stream. Writers block only
// when the drain goroutine falls this far behind, which keeps ordering
// without unbounded memory growth.
const queueDepth = 1024

// AppendStream appends lines to a single file through an ordered,
// asynchronously drained queue.
type AppendStream struct {
	path string
	f    *os.File
	ch   chan []byte
	done chan struct{}

	mu     sync.Mutex
	closed bool

	// onError, when set, observes drain-side write failures.
	onError func(error)
}

// OpenAppendStream opens (creating if needed) path for appending and starts
// the drain goroutine.
func OpenAppendStream(path string) (*AppendStream, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	s := &AppendStream{
		path: path,
		f:    f,
		ch:   make(chan []byte, queueDepth),
		done: make(chan struct{}),
	}
	go s.drain()
	return s, nil
}

// SetErrorHook installs a callback observing asynchronous write errors.
// Must be called before the first Write.
func (s *AppendStream) SetErrorHook(fn func(error)) { s.onError = fn }

// Path returns the file path backing the stream.
func (s *AppendStream) Path() string { return s.path }

func (s *AppendStream) drain() {
	defer close(s.done)
	for b := range s.ch {
		if _, err := s.f.Write(b); err != nil && s.onError != nil {
			s.onError(err)
		}
	}
}

// WriteString enqueues one chunk for appending. It returns immediately;
// calling WriteString on a closed stream is a no-op.
func (s *AppendStream) WriteString(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.ch <- []byte(line)
}

// Close drains pending writes, then closes the underlying file. It is safe
// to call more than once.
func (s *AppendStream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.done
		return nil
	}
	s.closed = true
	close(s.ch)
	s.mu.Unlock()

	<-s.done
	return s.f.Close()
}
