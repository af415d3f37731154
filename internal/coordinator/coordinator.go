package coordinator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/levelosd/internal/model"
)

const (
	// DefaultHideDelay is how long the overlay stays up after the last command.
	DefaultHideDelay = time.Second
	// DefaultExecTimeout bounds a single execute-and-read cycle.
	DefaultExecTimeout = 2 * time.Second
)

// Executor performs adjustments and reads back the controlled quantity.
// Execute and Read may block on external processes.
type Executor interface {
	Execute(ctx context.Context, cmd model.Command) error
	Read(ctx context.Context) (model.Reading, error)
	Describe(r model.Reading) model.DisplayState
}

// Surface is the on-screen overlay. All methods are called on the UI context.
type Surface interface {
	Show()
	Update(state model.DisplayState)
	Hide()
}

// Loop is the single-threaded UI context.
// Post runs fn on the UI context; posted functions run in posting order.
// After runs fn on the UI context once, no earlier than d from now.
type Loop interface {
	Post(fn func())
	After(d time.Duration, fn func())
}

// Observer is notified on the UI context after each successful refresh.
type Observer interface {
	Observe(cmd model.Command, state model.DisplayState)
}

// Options configures a Coordinator.
type Options struct {
	HideDelay   time.Duration
	ExecTimeout time.Duration
	Logger      *slog.Logger
	Observers   []Observer
	Now         func() time.Time
}

// Status is a point-in-time copy of the coordinator's state, safe to read
// from any goroutine.
type Status struct {
	Visible  bool
	Pending  int
	Last     model.DisplayState
	HasLast  bool
	Handled  uint64
	Failures uint64
	Shows    uint64
	Hides    uint64
}

// Coordinator applies commands and drives overlay visibility.
type Coordinator struct {
	executor Executor
	surface  Surface
	loop     Loop
	logger   *slog.Logger
	now      func() time.Time

	// UI context only
	queue       Queue
	hideDelay   time.Duration
	execTimeout time.Duration
	observers   []Observer

	mu     sync.RWMutex
	status Status
}

// New creates a Coordinator. The overlay starts hidden.
func New(executor Executor, surface Surface, loop Loop, opts Options) *Coordinator {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.HideDelay <= 0 {
		opts.HideDelay = DefaultHideDelay
	}
	if opts.ExecTimeout <= 0 {
		opts.ExecTimeout = DefaultExecTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Coordinator{
		executor:    executor,
		surface:     surface,
		loop:        loop,
		logger:      opts.Logger,
		now:         opts.Now,
		hideDelay:   opts.HideDelay,
		execTimeout: opts.ExecTimeout,
		observers:   opts.Observers,
	}
}

// Dispatch hands a command to the UI context. Safe to call from any goroutine;
// commands dispatched from one goroutine are handled in that order.
func (c *Coordinator) Dispatch(cmd model.Command) {
	c.loop.Post(func() { c.handle(cmd) })
}

// Run forwards commands from the channel to the UI context until the channel
// is closed or ctx is cancelled.
func (c *Coordinator) Run(ctx context.Context, commands <-chan model.Command) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd, ok := <-commands:
			if !ok {
				return
			}
			c.Dispatch(cmd)
		}
	}
}

// SetHideDelay changes the delay used for commands handled from now on.
// Timers already scheduled keep their original delay. UI context only.
func (c *Coordinator) SetHideDelay(d time.Duration) {
	if d <= 0 {
		d = DefaultHideDelay
	}
	c.hideDelay = d
}

// AddObserver registers an observer. UI context only.
func (c *Coordinator) AddObserver(o Observer) {
	c.observers = append(c.observers, o)
}

// Visible reports whether the overlay is shown. UI context only.
func (c *Coordinator) Visible() bool {
	return !c.queue.IsEmpty()
}

// Pending returns the number of unfired hide timers. UI context only.
func (c *Coordinator) Pending() int {
	return c.queue.Len()
}

// Status returns a copy of the last published state.
func (c *Coordinator) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// handle runs one command on the UI context.
func (c *Coordinator) handle(cmd model.Command) {
	wasEmpty := c.queue.IsEmpty()
	logger := c.logger.With("command", cmd.String(), "id", cmd.ID)

	ctx, cancel := context.WithTimeout(context.Background(), c.execTimeout)
	defer cancel()

	failed := false
	if err := c.executor.Execute(ctx, cmd); err != nil {
		logger.Warn("command failed", "error", err)
		failed = true
	}

	var (
		state   model.DisplayState
		hasRead bool
	)
	reading, err := c.executor.Read(ctx)
	if err != nil {
		logger.Warn("failed to read state", "error", err)
		failed = true
	} else {
		state = c.executor.Describe(reading)
		hasRead = true
		c.surface.Update(state)
	}

	if wasEmpty {
		c.surface.Show()
	}

	c.queue.Push(PendingEntry{CommandID: cmd.ID, QueuedAt: c.now()})
	c.loop.After(c.hideDelay, c.evict)

	if hasRead {
		for _, o := range c.observers {
			o.Observe(cmd, state)
		}
	}

	logger.Debug("command handled",
		"text", state.Text,
		"pending", c.queue.Len(),
		"shown", wasEmpty,
	)

	c.publish(func(s *Status) {
		s.Handled++
		if failed {
			s.Failures++
		}
		if wasEmpty {
			s.Shows++
		}
		if hasRead {
			s.Last = state
			s.HasLast = true
		}
	})
}

// evict fires once per handled command, hide delay after it.
func (c *Coordinator) evict() {
	c.queue.PopFront()
	hidden := false
	if c.queue.IsEmpty() {
		c.surface.Hide()
		hidden = true
		c.logger.Debug("overlay hidden")
	}
	c.publish(func(s *Status) {
		if hidden {
			s.Hides++
		}
	})
}

func (c *Coordinator) publish(fn func(s *Status)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.status)
	c.status.Pending = c.queue.Len()
	c.status.Visible = !c.queue.IsEmpty()
}
