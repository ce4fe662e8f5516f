package convert

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"clipgif/internal/logging"
	"clipgif/internal/services"
)

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithLockPath serializes conversions across processes through a lock file.
func WithLockPath(path string) ControllerOption {
	return func(c *Controller) {
		c.lockPath = strings.TrimSpace(path)
	}
}

// WithDefaultOutput sets the destination used when the source is not a
// regular file.
func WithDefaultOutput(path string) ControllerOption {
	return func(c *Controller) {
		c.defaultOutput = path
	}
}

// WithControllerLogger sets the controller's logger.
func WithControllerLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logging.NewComponentLogger(logger, "controller")
		}
	}
}

// Controller is the presentation boundary: it starts one background run at a
// time, forwards cancellation, and exposes state snapshots.
type Controller struct {
	converter     *Converter
	state         *State
	lockPath      string
	defaultOutput string
	logger        *slog.Logger
	newRunID      func() string

	mu      sync.Mutex
	running bool
	done    chan struct{}
	summary RunSummary
	err     error
}

// NewController binds a converter to a state.
func NewController(converter *Converter, state *State, opts ...ControllerOption) *Controller {
	if state == nil {
		state = NewState()
	}
	c := &Controller{
		converter: converter,
		state:     state,
		logger:    logging.NewNop(),
		newRunID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start launches a conversion of input in the background. With no input and
// nothing running the status prompts for one. Any Start while a run is in
// flight, or while another process holds the lock, fails with ErrBusy.
func (c *Controller) Start(ctx context.Context, input string, duration time.Duration) error {
	if strings.TrimSpace(input) == "" {
		if c.Running() {
			return services.Wrap(services.ErrBusy, "convert", "start", "a conversion is already running", nil)
		}
		c.state.SetStatus(StatusNoInput)
		return services.Wrap(services.ErrConfiguration, "convert", "start", "no input selected", nil)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return services.Wrap(services.ErrBusy, "convert", "start", "a conversion is already running", nil)
	}

	var lock *flock.Flock
	if c.lockPath != "" {
		lock = flock.New(c.lockPath)
		ok, err := lock.TryLock()
		if err != nil {
			return services.Wrap(services.ErrTemporaryStorage, "convert", "acquire lock", c.lockPath, err)
		}
		if !ok {
			return services.Wrap(services.ErrBusy, "convert", "acquire lock", "another clipgif conversion is running", nil)
		}
	}

	runID := c.newRunID()
	runCtx := services.WithRunID(ctx, runID)
	req := Request{SourcePath: input, DurationLimit: duration, DestinationPath: c.defaultOutput}

	c.state.Reset()
	c.running = true
	c.done = make(chan struct{})
	c.summary = RunSummary{}
	c.err = nil
	done := c.done

	logging.WithContext(runCtx, c.logger).Info("conversion started",
		logging.String(logging.FieldSource, input),
		logging.Duration("limit", duration),
	)

	go func() {
		defer close(done)
		summary, err := c.converter.Run(runCtx, req, c.state)
		if lock != nil {
			if unlockErr := lock.Unlock(); unlockErr != nil {
				c.logger.Warn("failed to release conversion lock", logging.Error(unlockErr))
			}
		}
		c.mu.Lock()
		c.summary = summary
		c.err = err
		c.running = false
		c.mu.Unlock()
	}()
	return nil
}

// RequestCancellation asks the running conversion to stop before its next frame.
func (c *Controller) RequestCancellation() {
	c.state.RequestCancellation()
}

// Snapshot returns the current status and progress.
func (c *Controller) Snapshot() Snapshot {
	return c.state.Snapshot()
}

// State returns the shared state for push-style observers.
func (c *Controller) State() *State { return c.state }

// Running reports whether a conversion is in flight.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Wait blocks until the current run finishes or ctx ends, then returns its
// summary and error. Without a started run it returns immediately.
func (c *Controller) Wait(ctx context.Context) (RunSummary, error) {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done == nil {
		return RunSummary{}, fmt.Errorf("wait: no conversion started")
	}
	select {
	case <-done:
	case <-ctx.Done():
		return RunSummary{}, ctx.Err()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.summary, c.err
}
