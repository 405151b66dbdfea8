package validators

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Email Tests
// ==========================

func TestValidateEmail_Valid(t *testing.T) {
	for _, email := range []string{
		"founder@company.com",
		"jo@acme.com",
		"first.last+tag@sub.example.co.uk",
		"a@b.io",
		"x_y-z@my-domain.org",
		"o'brien@example.ie",
	} {
		t.Run(email, func(t *testing.T) {
			assert.Equal(t, Result{IsValid: true}, ValidateEmail(email))
		})
	}
}

func TestValidateEmail_Invalid(t *testing.T) {
	for _, email := range []string{
		"not-an-email",
		"plainaddress",
		"@example.com",
		"user@",
		"user@localhost",
		".user@example.com",
		"user.@example.com",
		"user@-example.com",
		"user@example-.com",
		"user@example..com",
		" user@example.com",
		"user@" + strings.Repeat("a", 64) + ".com",
	} {
		t.Run(email, func(t *testing.T) {
			res := ValidateEmail(email)
			assert.False(t, res.IsValid)
			assert.Equal(t, EmailInvalidMessage, res.Error)
			assert.Equal(t, EmailInvalidAriaLabel, res.AriaLabel)
		})
	}
}

func TestValidateEmail_BlankHasNoMessage(t *testing.T) {
	for _, in := range []string{"", "   ", "\t"} {
		res := ValidateEmail(in)
		assert.Equal(t, Result{IsValid: false}, res)

		raw, err := json.Marshal(res)
		require.NoError(t, err)
		assert.JSONEq(t, `{"isValid":false}`, string(raw))
	}
}

func TestValidateEmail_LabelLengthBoundary(t *testing.T) {
	label63 := strings.Repeat("a", 63)
	assert.True(t, ValidateEmail("user@"+label63+".com").IsValid)
}

// ==========================
// URL Tests
// ==========================

func TestValidateURL_Strict(t *testing.T) {
	tests := []struct {
		in        string
		valid     bool
		wantError string
		wantAria  string
	}{
		{"", false, "URL is required", "URL is required"},
		{"   ", false, "URL is required", "URL is required"},
		{"example.com", false, "URL must start with http:// or https://", "Invalid URL format. Must start with http:// or https://"},
		{"ftp://example.com", false, "URL must start with http:// or https://", "Invalid URL format. Must start with http:// or https://"},
		{"https://example", false, "Please enter a valid domain name (e.g., example.com)", "Invalid domain name. Please enter a valid domain like example.com"},
		{"https://.com", false, "Please enter a valid domain name (e.g., example.com)", "Invalid domain name. Please enter a valid domain like example.com"},
		{"https://", false, "Please enter a valid URL (e.g., https://example.com)", "Invalid URL format. Please enter a valid URL like https://example.com"},
		{"https://exa mple.com", false, "Please enter a valid URL (e.g., https://example.com)", "Invalid URL format. Please enter a valid URL like https://example.com"},
		{"https://example.com", true, "", "URL is valid"},
		{"http://sub.example.co.uk/path?q=1", true, "", "URL is valid"},
		{"https://example.com:8443/x", true, "", "URL is valid"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			res := ValidateURL(tt.in, Strict)
			assert.Equal(t, tt.valid, res.IsValid)
			assert.Equal(t, tt.wantError, res.Error)
			assert.Equal(t, tt.wantAria, res.AriaLabel)
		})
	}
}

func TestValidateURL_Lenient(t *testing.T) {
	res := ValidateURL("https://example", Lenient)
	assert.True(t, res.IsValid)
	assert.Equal(t, "URL format is valid", res.AriaLabel)

	res = ValidateURL("localhost:3000", Lenient)
	assert.False(t, res.IsValid)
	assert.Equal(t, "URL must start with http:// or https://", res.Error)
	assert.Equal(t, "URL must start with http:// or https://", res.AriaLabel)

	res = ValidateURL("", Lenient)
	assert.Equal(t, "URL is required", res.Error)
}

func TestValidateURL_StrictLenientDivergence(t *testing.T) {
	assert.True(t, ValidateURL("https://example", Lenient).IsValid)
	assert.False(t, ValidateURL("https://example", Strict).IsValid)
}

func TestURLValidator_UniformMessages(t *testing.T) {
	v := URLValidator{Mode: Lenient, Messages: UniformURLMessages("Please enter a valid URL")}

	for _, in := range []string{"acme.com", "https://", "https://exa mple.com"} {
		res := v.Validate(in)
		assert.False(t, res.IsValid, in)
		assert.Equal(t, "Please enter a valid URL", res.Error, in)
	}
	assert.Equal(t, Result{IsValid: true}, v.Validate("https://acme.com"))
}

func TestValidators_Deterministic(t *testing.T) {
	inputs := []string{"", "a@b.co", "bad", "https://x.y", "https://x"}
	for _, in := range inputs {
		assert.Equal(t, ValidateEmail(in), ValidateEmail(in))
		assert.Equal(t, ValidateURL(in, Strict), ValidateURL(in, Strict))
		assert.Equal(t, ValidateURL(in, Lenient), ValidateURL(in, Lenient))
	}
}

// ==========================
// Memo Tests
// ==========================

func TestMemo_CachesResults(t *testing.T) {
	calls := 0
	m, err := NewMemo(3, func(s string) Result {
		calls++
		return ValidateEmail(s)
	})
	require.NoError(t, err)

	first := m.Validate("jo@acme.com")
	second := m.Validate("jo@acme.com")
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestMemo_EvictsOldest(t *testing.T) {
	calls := map[string]int{}
	m, err := NewMemo(2, func(s string) Result {
		calls[s]++
		return ValidateEmail(s)
	})
	require.NoError(t, err)

	m.Validate("a@b.co")
	m.Validate("c@d.co")
	m.Validate("a@b.co") // hit, does not refresh age
	m.Validate("e@f.co") // evicts a@b.co
	assert.Equal(t, 2, m.Len())

	m.Validate("c@d.co")
	assert.Equal(t, 1, calls["c@d.co"])

	m.Validate("a@b.co")
	assert.Equal(t, 2, calls["a@b.co"])
}

func TestMemo_InstancesAreIndependent(t *testing.T) {
	a, err := NewMemo(0, ValidateEmail)
	require.NoError(t, err)
	b, err := NewMemo(0, ValidateEmail)
	require.NoError(t, err)

	a.Validate("jo@acme.com")
	assert.Equal(t, 1, a.Len())
	assert.Equal(t, 0, b.Len())

	a.Purge()
	assert.Equal(t, 0, a.Len())
}

func TestNewMemo_NilFunc(t *testing.T) {
	_, err := NewMemo(10, nil)
	assert.Error(t, err)
}
