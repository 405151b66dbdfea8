package prompt

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"grant-portal/internal/common/logger"
	"grant-portal/internal/form/engine"
	"grant-portal/internal/form/steps"
	"grant-portal/internal/form/validators"
)

// Menu actions.
const (
	ActionNext   = "Next"
	ActionBack   = "Back"
	ActionSubmit = "Submit"
	ActionQuit   = "Quit"
)

// Result describes how a run ended.
type Result struct {
	ApplicationID string
	Submitted     bool
}

// Runner walks a session step by step: it asks every field of the current
// step, then offers the action menu.
type Runner struct {
	session  *engine.Session
	prompter Prompter
	email    engine.EmailFunc
	url      validators.URLValidator
	file     validators.URLValidator
	logger   logger.Logger
}

type RunnerOption func(*Runner)

// WithEmailCheck replaces the on-blur email check.
func WithEmailCheck(fn engine.EmailFunc) RunnerOption {
	return func(r *Runner) {
		if fn != nil {
			r.email = fn
		}
	}
}

func NewRunner(session *engine.Session, prompter Prompter, log logger.Logger, opts ...RunnerOption) *Runner {
	r := &Runner{
		session:  session,
		prompter: prompter,
		email:    validators.ValidateEmail,
		url:      validators.NewURLValidator(validators.Lenient),
		file: validators.URLValidator{
			Mode:     validators.Lenient,
			Messages: validators.UniformURLMessages(engine.InvalidFileURLMessage),
		},
		logger: log.WithFields(map[string]interface{}{"component": "prompt"}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// blurCheck returns the field-level validator used while typing. Blank
// answers pass; required fields are enforced when navigating.
func (r *Runner) blurCheck(f steps.Field) func(string) error {
	var check func(string) validators.Result
	switch f.Kind {
	case steps.KindEmail:
		check = r.email
	case steps.KindURL:
		check = r.url.Validate
	case steps.KindFile:
		check = r.file.Validate
	default:
		if f.MaxLength == 0 {
			return nil
		}
	}
	return func(value string) error {
		if strings.TrimSpace(value) == "" {
			return nil
		}
		if f.MaxLength > 0 && len([]rune(value)) > f.MaxLength {
			return fmt.Errorf("%s must be less than %d characters", f.Label, f.MaxLength)
		}
		if check == nil {
			return nil
		}
		if res := check(value); !res.IsValid {
			return errors.New(res.Error)
		}
		return nil
	}
}

func (r *Runner) askField(ctx context.Context, f steps.Field) error {
	current := r.session.Value(f.Name)
	message := f.Label
	if f.Optional {
		message += " (optional)"
	}

	var (
		value string
		err   error
	)
	if f.IsLongForm() {
		value, err = r.prompter.TextArea(ctx, TextAreaConfig{Message: message, Default: current, Help: f.Prompt})
	} else {
		value, err = r.prompter.Input(ctx, InputConfig{Message: message, Default: current, Validator: r.blurCheck(f)})
	}
	if err != nil {
		return err
	}
	if value != current {
		r.session.SetField(f.Name, strings.TrimSpace(value))
	}
	return nil
}

func (r *Runner) menu() []string {
	idx := r.session.StepIndex()
	var options []string
	if r.session.IsLastStep() {
		options = append(options, ActionSubmit)
	} else {
		options = append(options, ActionNext)
	}
	if idx > 0 {
		options = append(options, ActionBack)
	}
	return append(options, ActionQuit)
}

func (r *Runner) showErrors(ctx context.Context) error {
	errs := r.session.Errors()
	if len(errs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("Please fix the following:")
	for _, k := range keys {
		label := k
		if f, ok := r.session.Steps.Field(k); ok {
			label = f.Label
		}
		fmt.Fprintf(&b, "\n  - %s: %s", label, errs[k])
	}
	return r.prompter.Info(ctx, b.String())
}

// rewind moves back to the first step that has an error.
func (r *Runner) rewind() error {
	target := r.session.StepIndex()
	for name := range r.session.Errors() {
		if i, ok := r.session.Steps.StepOf(name); ok && i < target {
			target = i
		}
	}
	for r.session.StepIndex() > target {
		if err := r.session.Previous(); err != nil {
			return err
		}
	}
	return nil
}

// Run drives the session until the user submits or quits. ErrAborted is
// returned on Ctrl+C; the draft saved so far is kept.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	for {
		step := r.session.CurrentStep()
		header := fmt.Sprintf("Step %d of %d: %s\n%s",
			r.session.StepIndex()+1, r.session.StepCount(), step.Title, step.Description)
		if err := r.prompter.Info(ctx, header); err != nil {
			return r.result(false), err
		}

		for _, f := range step.Fields {
			if err := r.askField(ctx, f); err != nil {
				return r.result(false), err
			}
		}

		options := r.menu()
		choice, err := r.prompter.Select(ctx, SelectConfig{Message: "What next?", Options: options})
		if err != nil {
			return r.result(false), err
		}
		if choice < 0 || choice >= len(options) {
			continue
		}

		switch options[choice] {
		case ActionNext:
			if err := r.next(ctx); err != nil {
				return r.result(false), err
			}
		case ActionBack:
			if err := r.session.Previous(); err != nil {
				return r.result(false), err
			}
		case ActionSubmit:
			done, err := r.submit(ctx)
			if err != nil {
				return r.result(false), err
			}
			if done {
				return r.result(true), nil
			}
		case ActionQuit:
			return r.result(false), nil
		}
	}
}

func (r *Runner) next(ctx context.Context) error {
	before, _ := r.session.LastSavedAt()
	advanced, err := r.session.Next(ctx)
	if err != nil {
		return err
	}
	if !advanced {
		return r.showErrors(ctx)
	}
	if after, ok := r.session.LastSavedAt(); ok && after.After(before) {
		return r.prompter.Info(ctx, "Draft saved at "+after.Local().Format(time.Kitchen))
	}
	return r.prompter.Info(ctx, "Draft could not be saved; your answers are kept locally.")
}

// submit reports true once the application is submitted. Validation and
// persistence failures are shown and the loop continues.
func (r *Runner) submit(ctx context.Context) (bool, error) {
	ok, err := r.session.Submit(ctx)
	if err != nil {
		if !errors.Is(err, engine.ErrSubmitFailed) {
			return false, err
		}
		r.logger.Debug("submit failed, returning to menu", map[string]interface{}{"error": err})
	}
	if ok {
		return true, r.prompter.Info(ctx, "Application submitted. Reference: "+r.session.ApplicationID())
	}
	if err := r.showErrors(ctx); err != nil {
		return false, err
	}
	return false, r.rewind()
}

func (r *Runner) result(submitted bool) Result {
	return Result{ApplicationID: r.session.ApplicationID(), Submitted: submitted}
}
