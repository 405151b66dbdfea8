package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"grant-portal/internal/common/logger"
	"grant-portal/internal/form/steps"
	"grant-portal/internal/models"
)

var (
	ErrNavigationBusy = errors.New("NAVIGATION_BUSY")
	ErrSessionClosed  = errors.New("SESSION_CLOSED")
	ErrSubmitFailed   = errors.New("SUBMIT_FAILED")
)

// GeneralErrorKey holds submission failures in the error map.
const GeneralErrorKey = "general"

const defaultSubmitMessage = "Failed to submit application. Please try again."

// Saver persists form state. SaveDraft returns the application id, which
// may be non-empty even when err is set (record created, section save failed).
type Saver interface {
	SaveDraft(ctx context.Context, applicationID string, stepIndex int, values models.FormValues) (string, error)
	Submit(ctx context.Context, applicationID string, values models.FormValues) (string, error)
}

// State is the navigation state machine position.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateSaving
	StateAdvancing
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateSaving:
		return "saving"
	case StateAdvancing:
		return "advancing"
	case StateSubmitting:
		return "submitting"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Controller moves the store between steps and runs saves. Calls made while
// the controller is not idle are rejected with ErrNavigationBusy.
type Controller struct {
	store     *Store
	steps     *steps.Config
	validator *StepValidator
	saver     Saver
	logger    logger.Logger
	now       func() time.Time

	mu         sync.Mutex
	state      State
	generation uint64
	closed     bool
	sessionCtx context.Context
	cancel     context.CancelFunc
}

func NewController(store *Store, cfg *steps.Config, validator *StepValidator, saver Saver, log logger.Logger) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		store:      store,
		steps:      cfg,
		validator:  validator,
		saver:      saver,
		logger:     log.WithFields(map[string]interface{}{"component": "navigation"}),
		now:        func() time.Time { return time.Now().UTC() },
		sessionCtx: ctx,
		cancel:     cancel,
	}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) begin(next State) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, ErrSessionClosed
	}
	if c.state != StateIdle {
		return 0, fmt.Errorf("%w: %s", ErrNavigationBusy, c.state)
	}
	c.state = next
	return c.generation, nil
}

func (c *Controller) transition(next State) {
	c.mu.Lock()
	c.state = next
	c.mu.Unlock()
}

func (c *Controller) finish() {
	c.transition(StateIdle)
}

func (c *Controller) current(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed && c.generation == gen
}

// scope derives a context that is also cancelled when the session closes.
func (c *Controller) scope(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(c.sessionCtx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// Previous moves one step back, floored at the first step.
func (c *Controller) Previous() error {
	if _, err := c.begin(StateAdvancing); err != nil {
		return err
	}
	defer c.finish()

	c.store.setStepIndex(c.store.StepIndex() - 1)
	return nil
}

// Next validates the current step. It reports false with nil error when the
// step is invalid. On a valid step it saves a draft and advances, even if
// the save failed.
func (c *Controller) Next(ctx context.Context) (bool, error) {
	gen, err := c.begin(StateValidating)
	if err != nil {
		return false, err
	}
	defer c.finish()

	if _, valid := c.validator.Validate(c.store); !valid {
		return false, nil
	}

	c.transition(StateSaving)
	idx := c.store.StepIndex()
	c.store.setSavingDraft(true)

	saveCtx, release := c.scope(ctx)
	id, saveErr := c.saver.SaveDraft(saveCtx, c.store.ApplicationID(), idx, c.store.Values())
	release()

	if !c.current(gen) {
		c.logger.Debug("discarding draft save result for closed session", map[string]interface{}{
			"stepIndex": idx,
		})
		return false, ErrSessionClosed
	}

	c.store.setApplicationID(id)
	if saveErr != nil {
		c.logger.Warn("draft save failed", map[string]interface{}{
			"stepIndex":     idx,
			"applicationId": c.store.ApplicationID(),
			"error":         saveErr,
		})
	} else {
		c.store.markSaved(c.now())
	}
	c.store.setSavingDraft(false)

	c.transition(StateAdvancing)
	c.store.setStepIndex(idx + 1)
	return true, nil
}

type userMessager interface {
	UserMessage() string
}

// Submit validates the whole form and submits it. Validation failures
// report false with nil error; persistence failures are recorded under
// GeneralErrorKey and returned.
func (c *Controller) Submit(ctx context.Context) (bool, error) {
	gen, err := c.begin(StateSubmitting)
	if err != nil {
		return false, err
	}
	defer c.finish()

	values := c.store.Values()
	errs := c.validator.CheckAll(values)
	c.store.replaceErrors(errs)
	if len(errs) > 0 {
		return false, nil
	}

	c.store.setSubmitting(true)
	submitCtx, release := c.scope(ctx)
	id, submitErr := c.saver.Submit(submitCtx, c.store.ApplicationID(), values)
	release()

	if !c.current(gen) {
		return false, ErrSessionClosed
	}
	c.store.setSubmitting(false)
	c.store.setApplicationID(id)

	if submitErr != nil {
		msg := defaultSubmitMessage
		var um userMessager
		if errors.As(submitErr, &um) && um.UserMessage() != "" {
			msg = um.UserMessage()
		}
		c.store.replaceErrors(map[string]string{GeneralErrorKey: msg})
		c.logger.Error("application submit failed", map[string]interface{}{
			"applicationId": c.store.ApplicationID(),
			"error":         submitErr,
		})
		return false, fmt.Errorf("%w: %v", ErrSubmitFailed, submitErr)
	}

	c.store.markSaved(c.now())
	c.logger.Info("application submitted", map[string]interface{}{
		"applicationId": c.store.ApplicationID(),
	})
	return true, nil
}

// Close ends the session. In-flight saves are cancelled and their results
// discarded.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.generation++
	c.cancel()
}
