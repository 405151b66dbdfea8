package engine

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"grant-portal/internal/form/steps"
	"grant-portal/internal/form/validators"
	"grant-portal/internal/models"
)

// NavigationURLMessage is shown for any website URL failure while moving
// between steps.
const NavigationURLMessage = "Please enter a valid URL"

// InvalidFileURLMessage is shown when an optional document link is not a URL.
const InvalidFileURLMessage = "Invalid URL format"

// EmailFunc validates an email value.
type EmailFunc func(string) validators.Result

// StepValidator computes error maps for one step or for the whole form.
type StepValidator struct {
	steps     *steps.Config
	email     EmailFunc
	navURL    validators.URLValidator
	submitURL validators.URLValidator
	fileURL   validators.URLValidator
}

// ValidatorOption customizes a StepValidator.
type ValidatorOption func(*StepValidator)

// WithEmailValidator replaces the email check, e.g. with a validators.Memo.
func WithEmailValidator(fn EmailFunc) ValidatorOption {
	return func(v *StepValidator) {
		if fn != nil {
			v.email = fn
		}
	}
}

// WithNavigationURLMessages overrides the messages used when gating navigation.
func WithNavigationURLMessages(m validators.URLMessages) ValidatorOption {
	return func(v *StepValidator) {
		v.navURL.Messages = m
	}
}

func NewStepValidator(cfg *steps.Config, opts ...ValidatorOption) *StepValidator {
	v := &StepValidator{
		steps: cfg,
		email: validators.ValidateEmail,
		navURL: validators.URLValidator{
			Mode:     validators.Lenient,
			Messages: validators.UniformURLMessages(NavigationURLMessage),
		},
		submitURL: validators.NewURLValidator(validators.Strict),
		fileURL: validators.URLValidator{
			Mode:     validators.Lenient,
			Messages: validators.UniformURLMessages(InvalidFileURLMessage),
		},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func requiredMessage(f steps.Field) string {
	return f.Label + " is required"
}

// CheckStep returns the errors for the fields owned by step index i.
func (v *StepValidator) CheckStep(i int, values models.FormValues) map[string]string {
	errs := make(map[string]string)
	step, ok := v.steps.At(i)
	if !ok {
		return errs
	}
	for _, f := range step.Fields {
		value := values[f.Name]
		if strings.TrimSpace(value) == "" {
			if !f.Optional {
				errs[f.Name] = requiredMessage(f)
			}
			continue
		}
		switch f.Kind {
		case steps.KindEmail:
			if res := v.email(value); !res.IsValid {
				errs[f.Name] = res.Error
			}
		case steps.KindURL:
			if res := v.navURL.Validate(value); !res.IsValid {
				errs[f.Name] = res.Error
			}
		}
	}
	return errs
}

// Validate checks the store's current step and replaces the store's error
// map with the result, even when it is empty.
func (v *StepValidator) Validate(store *Store) (map[string]string, bool) {
	errs := v.CheckStep(store.StepIndex(), store.Values())
	store.replaceErrors(errs)
	return errs, len(errs) == 0
}

// CheckAll applies the submission rules to every field of the form.
func (v *StepValidator) CheckAll(values models.FormValues) map[string]string {
	errs := make(map[string]string)
	for _, f := range v.steps.Fields() {
		value := values[f.Name]
		if strings.TrimSpace(value) == "" {
			if !f.Optional {
				errs[f.Name] = requiredMessage(f)
			}
			continue
		}
		if f.MaxLength > 0 && utf8.RuneCountInString(value) > f.MaxLength {
			errs[f.Name] = fmt.Sprintf("%s must be less than %d characters", f.Label, f.MaxLength)
			continue
		}
		var res validators.Result
		switch f.Kind {
		case steps.KindEmail:
			res = v.email(value)
		case steps.KindURL:
			res = v.submitURL.Validate(value)
		case steps.KindFile:
			res = v.fileURL.Validate(value)
		default:
			continue
		}
		if !res.IsValid {
			errs[f.Name] = res.Error
		}
	}
	return errs
}
