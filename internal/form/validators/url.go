package validators

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

// URLMode selects how much of a URL is checked.
type URLMode int

const (
	// Strict requires a scheme and a hostname with at least two labels.
	Strict URLMode = iota
	// Lenient requires a scheme and a parseable URL; bare hosts pass.
	Lenient
)

func (m URLMode) String() string {
	if m == Lenient {
		return "lenient"
	}
	return "strict"
}

// URLMessages carries the text shown for each failure class so that every
// call site shares one implementation.
type URLMessages struct {
	Required      string
	RequiredAria  string
	Scheme        string
	SchemeAria    string
	Domain        string
	DomainAria    string
	Malformed     string
	MalformedAria string
	ValidAria     string
}

// StrictURLMessages are the field-level messages for strict validation.
func StrictURLMessages() URLMessages {
	return URLMessages{
		Required:      "URL is required",
		RequiredAria:  "URL is required",
		Scheme:        "URL must start with http:// or https://",
		SchemeAria:    "Invalid URL format. Must start with http:// or https://",
		Domain:        "Please enter a valid domain name (e.g., example.com)",
		DomainAria:    "Invalid domain name. Please enter a valid domain like example.com",
		Malformed:     "Please enter a valid URL (e.g., https://example.com)",
		MalformedAria: "Invalid URL format. Please enter a valid URL like https://example.com",
		ValidAria:     "URL is valid",
	}
}

// LenientURLMessages are the on-blur messages.
func LenientURLMessages() URLMessages {
	m := StrictURLMessages()
	m.SchemeAria = "URL must start with http:// or https://"
	m.ValidAria = "URL format is valid"
	return m
}

// UniformURLMessages reports every failure class with the same text.
func UniformURLMessages(message string) URLMessages {
	return URLMessages{
		Required:      message,
		RequiredAria:  message,
		Scheme:        message,
		SchemeAria:    message,
		Domain:        message,
		DomainAria:    message,
		Malformed:     message,
		MalformedAria: message,
	}
}

// URLValidator validates URLs in one mode with one message set.
type URLValidator struct {
	Mode     URLMode
	Messages URLMessages
}

// NewURLValidator returns a validator using the default messages for mode.
func NewURLValidator(mode URLMode) URLValidator {
	if mode == Lenient {
		return URLValidator{Mode: mode, Messages: LenientURLMessages()}
	}
	return URLValidator{Mode: mode, Messages: StrictURLMessages()}
}

// ValidateURL validates with the default messages for mode.
func ValidateURL(value string, mode URLMode) Result {
	return NewURLValidator(mode).Validate(value)
}

var schemePrefix = regexp.MustCompile(`^https?://`)

// Validate checks value. Unlike email, a blank URL reports a message.
func (v URLValidator) Validate(value string) Result {
	m := v.Messages
	if strings.TrimSpace(value) == "" {
		return Result{IsValid: false, Error: m.Required, AriaLabel: m.RequiredAria}
	}
	if !schemePrefix.MatchString(value) {
		return Result{IsValid: false, Error: m.Scheme, AriaLabel: m.SchemeAria}
	}

	u, err := parseWebURL(value)
	if err != nil {
		return Result{IsValid: false, Error: m.Malformed, AriaLabel: m.MalformedAria}
	}

	if v.Mode == Strict && !hasQualifiedHost(u.Hostname()) {
		return Result{IsValid: false, Error: m.Domain, AriaLabel: m.DomainAria}
	}

	return Result{IsValid: true, AriaLabel: m.ValidAria}
}

var errMalformedURL = errors.New("malformed URL")

// characters a browser refuses in a hostname
const forbiddenHostChars = " \t\n\r#%/:<>?@[\\]^|\"'`{}"

func parseWebURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Host == "" {
		return nil, errMalformedURL
	}
	host := u.Hostname()
	if host == "" {
		return nil, errMalformedURL
	}
	if strings.HasPrefix(u.Host, "[") {
		// IPv6 literal; url.Parse already validated the brackets
		return u, nil
	}
	if strings.ContainsAny(host, forbiddenHostChars) {
		return nil, errMalformedURL
	}
	return u, nil
}

func hasQualifiedHost(hostname string) bool {
	parts := strings.Split(hostname, ".")
	if len(parts) < 2 {
		return false
	}
	for _, part := range parts {
		if part == "" {
			return false
		}
	}
	return true
}
