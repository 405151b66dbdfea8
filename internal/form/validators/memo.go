package validators

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMemoSize is the number of results kept when no size is configured.
const DefaultMemoSize = 100

// Memo caches the results of a pure validator keyed by the exact input.
// When full, the oldest inserted entry is evicted; lookups do not refresh
// an entry's age.
type Memo struct {
	fn    func(string) Result
	cache *lru.Cache[string, Result]
}

// NewMemo wraps fn, which must be deterministic for identical input.
func NewMemo(size int, fn func(string) Result) (*Memo, error) {
	if fn == nil {
		return nil, fmt.Errorf("memo: validator func is nil")
	}
	if size <= 0 {
		size = DefaultMemoSize
	}
	cache, err := lru.New[string, Result](size)
	if err != nil {
		return nil, fmt.Errorf("memo: %w", err)
	}
	return &Memo{fn: fn, cache: cache}, nil
}

// Validate returns the cached result for value, computing it on a miss.
func (m *Memo) Validate(value string) Result {
	if res, ok := m.cache.Peek(value); ok {
		return res
	}
	res := m.fn(value)
	m.cache.Add(value, res)
	return res
}

// Len is the number of cached entries.
func (m *Memo) Len() int {
	return m.cache.Len()
}

// Purge drops every cached entry.
func (m *Memo) Purge() {
	m.cache.Purge()
}
