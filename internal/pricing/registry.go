package pricing

import "sync/atomic"

// Registry holds the active Table. Readers take a snapshot with Current and keep using it
// for the whole computation; Replace swaps the table as a whole.
type Registry struct {
	current atomic.Pointer[Table]
}

// NewRegistry seeds the registry. A nil table falls back to DefaultTable.
func NewRegistry(t *Table) *Registry {
	if t == nil {
		t = DefaultTable()
	}
	r := &Registry{}
	r.current.Store(t)
	return r
}

// Current returns the active table snapshot.
func (r *Registry) Current() *Table {
	return r.current.Load()
}

// Replace installs t and returns the previous table.
func (r *Registry) Replace(t *Table) *Table {
	if t == nil {
		return r.current.Load()
	}
	return r.current.Swap(t)
}
