package playback

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"video-translator/domain/speech"
)

// ErrorHandler receives synthesis failures. It is called from the utterance goroutine.
type ErrorHandler func(err error)

// FinishHandler is called when the current utterance returns, whatever the outcome
type FinishHandler func()

// Controller runs at most one utterance at a time. Starting a new utterance
// or calling Cancel stops the one in progress.
type Controller struct {
	synth    speech.Synthesizer
	onError  ErrorHandler
	onFinish FinishHandler
	logger   *slog.Logger

	mu       sync.Mutex
	cancel   context.CancelFunc
	current  uint64
	speaking bool
	wg       sync.WaitGroup
}

// ControllerOption is a functional option for configuring Controller
type ControllerOption func(*Controller)

// WithErrorHandler sets the callback for synthesis failures
func WithErrorHandler(h ErrorHandler) ControllerOption {
	return func(c *Controller) {
		c.onError = h
	}
}

// WithFinishHandler sets the callback run after the current utterance returns
func WithFinishHandler(h FinishHandler) ControllerOption {
	return func(c *Controller) {
		c.onFinish = h
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = l
	}
}

// NewController creates a controller around a synthesizer
func NewController(synth speech.Synthesizer, opts ...ControllerOption) *Controller {
	c := &Controller{
		synth:  synth,
		logger: slog.With("component", "playback"),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// SetErrorHandler replaces the failure callback
func (c *Controller) SetErrorHandler(h ErrorHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onError = h
}

// Speak cancels any utterance in progress and starts u in the background.
// It returns as soon as the utterance has been started.
func (c *Controller) Speak(ctx context.Context, u speech.Utterance) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelLocked()

	uctx, cancel := context.WithCancel(ctx)
	c.current++
	id := c.current
	c.cancel = cancel
	c.speaking = true

	c.wg.Add(1)
	go c.run(uctx, cancel, id, u)
}

func (c *Controller) run(ctx context.Context, cancel context.CancelFunc, id uint64, u speech.Utterance) {
	defer c.wg.Done()
	defer cancel()

	c.logger.Debug("utterance started", "id", id, "chars", len(u.Text), "volume", u.Volume)
	err := c.synth.Speak(ctx, u)

	c.mu.Lock()
	current := c.current == id
	if current {
		c.speaking = false
		c.cancel = nil
	}
	handler := c.onError
	finished := c.onFinish
	c.mu.Unlock()

	if current && finished != nil {
		defer finished()
	}

	switch {
	case err == nil:
		c.logger.Debug("utterance finished", "id", id)
	case ctx.Err() != nil:
		c.logger.Debug("utterance cancelled", "id", id)
	default:
		err = fmt.Errorf("%w: %w", speech.ErrSynthesis, err)
		c.logger.Error("error playing translated audio", "id", id, "error", err)
		if handler != nil {
			handler(err)
		}
	}
}

// Cancel stops the utterance in progress, if any
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
}

func (c *Controller) cancelLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.speaking = false
}

// Speaking reports whether an utterance is in progress
func (c *Controller) Speaking() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speaking
}

// Wait blocks until every started utterance has returned or ctx is done
func (c *Controller) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
