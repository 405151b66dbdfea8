// Package validators holds the pure single-field checks used by the form
// engine and the terminal runner.
package validators

import (
	"regexp"
	"strings"
)

// Result is the outcome of validating one value. Error and AriaLabel are
// empty when there is nothing to show.
type Result struct {
	IsValid   bool   `json:"isValid"`
	Error     string `json:"error,omitempty"`
	AriaLabel string `json:"ariaLabel,omitempty"`
}

const (
	EmailInvalidMessage   = "Please enter a valid email address (e.g., founder@company.com)"
	EmailInvalidAriaLabel = "Invalid email format. Please enter a valid email address."
)

// Local part: alphanumeric ends, bounded punctuation inside. Domain: one or
// more dot separated labels of 1-63 chars, no leading or trailing hyphen,
// at least one dot.
var emailPattern = regexp.MustCompile(
	`^[a-zA-Z0-9](?:[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]*[a-zA-Z0-9])?` +
		`@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?` +
		`(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)+$`,
)

// ValidateEmail checks an email address syntactically. Blank input is invalid
// but carries no message so untouched fields are not flagged.
func ValidateEmail(value string) Result {
	if strings.TrimSpace(value) == "" {
		return Result{IsValid: false}
	}
	if !emailPattern.MatchString(value) {
		return Result{
			IsValid:   false,
			Error:     EmailInvalidMessage,
			AriaLabel: EmailInvalidAriaLabel,
		}
	}
	return Result{IsValid: true}
}
