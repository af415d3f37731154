package coordinator

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// GoLoop is a Loop backed by a single goroutine. It is used when no GUI main
// loop is available (headless mode) and in tests.
type GoLoop struct {
	logger *slog.Logger

	mu      sync.Mutex
	pending []func()
	running bool
	stopped bool
	wake    chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewGoLoop creates a GoLoop. Functions posted before Start run once it starts.
func NewGoLoop(logger *slog.Logger) *GoLoop {
	if logger == nil {
		logger = slog.Default()
	}
	return &GoLoop{
		logger: logger,
		wake:   make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start launches the loop goroutine.
func (l *GoLoop) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return fmt.Errorf("loop already running")
	}
	if l.stopped {
		return fmt.Errorf("loop already stopped")
	}
	l.running = true
	go l.run()
	return nil
}

// Stop ends the loop and waits for the running function, if any, to return.
// Pending and later posts are dropped.
func (l *GoLoop) Stop() {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.stopped = true
	wasRunning := l.running
	l.pending = nil
	close(l.stopCh)
	l.mu.Unlock()

	if wasRunning {
		<-l.doneCh
	}
}

// Post queues fn to run on the loop goroutine.
func (l *GoLoop) Post(fn func()) {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		l.logger.Debug("loop stopped, dropping posted function")
		return
	}
	l.pending = append(l.pending, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// After posts fn once d has elapsed.
func (l *GoLoop) After(d time.Duration, fn func()) {
	time.AfterFunc(d, func() { l.Post(fn) })
}

func (l *GoLoop) run() {
	defer close(l.doneCh)
	for {
		select {
		case <-l.stopCh:
			return
		case <-l.wake:
		}

		for {
			l.mu.Lock()
			if l.stopped || len(l.pending) == 0 {
				l.mu.Unlock()
				break
			}
			fn := l.pending[0]
			l.pending[0] = nil
			l.pending = l.pending[1:]
			l.mu.Unlock()

			fn()
		}
	}
}
