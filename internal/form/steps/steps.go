// Package steps defines the ordered groups of fields that make up the grant
// application form.
package steps

import "fmt"

// FieldKind decides how a field is validated and rendered.
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindEmail    FieldKind = "email"
	KindURL      FieldKind = "url"
	KindLongForm FieldKind = "long_form"
	KindFile     FieldKind = "file"
)

// Field is one answer in the form.
type Field struct {
	Name      string
	Label     string
	Kind      FieldKind
	Prompt    string
	MaxLength int
	Optional  bool
}

// IsLongForm reports whether the field is answered as free text.
func (f Field) IsLongForm() bool {
	return f.Prompt != ""
}

// Step is a group of fields presented together.
type Step struct {
	ID          string
	Title       string
	Description string
	Fields      []Field
}

// FieldNames returns the step's field names in order.
func (s Step) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Config is the immutable, ordered step list.
type Config struct {
	steps   []Step
	byField map[string]int
}

// New validates and freezes a step list. Field names must be unique across steps.
func New(list []Step) (*Config, error) {
	if len(list) == 0 {
		return nil, fmt.Errorf("steps: at least one step is required")
	}
	c := &Config{byField: make(map[string]int)}
	seen := make(map[string]bool)
	for i, s := range list {
		if s.ID == "" {
			return nil, fmt.Errorf("steps: step %d has no id", i)
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("steps: duplicate step id %q", s.ID)
		}
		seen[s.ID] = true
		for _, f := range s.Fields {
			if _, dup := c.byField[f.Name]; dup {
				return nil, fmt.Errorf("steps: field %q is owned by more than one step", f.Name)
			}
			c.byField[f.Name] = i
		}
		c.steps = append(c.steps, copyStep(s))
	}
	return c, nil
}

func copyStep(s Step) Step {
	fields := make([]Field, len(s.Fields))
	copy(fields, s.Fields)
	s.Fields = fields
	return s
}

// Len is the number of steps.
func (c *Config) Len() int { return len(c.steps) }

// At returns a copy of the step at index i.
func (c *Config) At(i int) (Step, bool) {
	if i < 0 || i >= len(c.steps) {
		return Step{}, false
	}
	return copyStep(c.steps[i]), true
}

// Steps returns a copy of every step.
func (c *Config) Steps() []Step {
	out := make([]Step, len(c.steps))
	for i, s := range c.steps {
		out[i] = copyStep(s)
	}
	return out
}

// ByID finds a step and its index.
func (c *Config) ByID(id string) (Step, int, bool) {
	for i, s := range c.steps {
		if s.ID == id {
			return copyStep(s), i, true
		}
	}
	return Step{}, -1, false
}

// StepOf returns the index of the step owning field.
func (c *Config) StepOf(field string) (int, bool) {
	i, ok := c.byField[field]
	return i, ok
}

// Field looks up a field definition by name.
func (c *Config) Field(name string) (Field, bool) {
	i, ok := c.byField[name]
	if !ok {
		return Field{}, false
	}
	for _, f := range c.steps[i].Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Fields returns every field in form order.
func (c *Config) Fields() []Field {
	var out []Field
	for _, s := range c.steps {
		out = append(out, s.Fields...)
	}
	return out
}

// FieldNames returns every field name in form order.
func (c *Config) FieldNames() []string {
	fields := c.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}
