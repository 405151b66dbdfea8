// Package engine implements the multi-step grant form: session state,
// per-step validation, navigation with draft autosave, and submission.
package engine

import (
	"grant-portal/internal/common/logger"
	"grant-portal/internal/form/steps"
	"grant-portal/internal/models"
)

// Session bundles the store and controller for one form-filling pass.
type Session struct {
	*Store
	*Controller
	Steps     *steps.Config
	Validator *StepValidator
}

type sessionOptions struct {
	initial       models.FormValues
	applicationID string
	validatorOpts []ValidatorOption
	logger        logger.Logger
}

// Option configures a Session.
type Option func(*sessionOptions)

// WithInitialValues pre-populates the store, e.g. from a loaded draft.
func WithInitialValues(values models.FormValues) Option {
	return func(o *sessionOptions) { o.initial = values }
}

// WithApplicationID resumes an existing application.
func WithApplicationID(id string) Option {
	return func(o *sessionOptions) { o.applicationID = id }
}

func WithValidatorOptions(opts ...ValidatorOption) Option {
	return func(o *sessionOptions) { o.validatorOpts = append(o.validatorOpts, opts...) }
}

func WithLogger(log logger.Logger) Option {
	return func(o *sessionOptions) { o.logger = log }
}

// NewSession starts a session over cfg that persists through saver.
func NewSession(cfg *steps.Config, saver Saver, opts ...Option) *Session {
	o := sessionOptions{logger: logger.NewNoOpLogger()}
	for _, opt := range opts {
		opt(&o)
	}

	store := NewStore(cfg.Len(), cfg.FieldNames(), o.initial, o.applicationID)
	validator := NewStepValidator(cfg, o.validatorOpts...)
	ctrl := NewController(store, cfg, validator, saver, o.logger)

	return &Session{
		Store:      store,
		Controller: ctrl,
		Steps:      cfg,
		Validator:  validator,
	}
}

// CurrentStep returns the step at the store's index.
func (s *Session) CurrentStep() steps.Step {
	step, _ := s.Steps.At(s.StepIndex())
	return step
}

// IsLastStep reports whether the store is on the final step.
func (s *Session) IsLastStep() bool {
	return s.StepIndex() == s.Steps.Len()-1
}
