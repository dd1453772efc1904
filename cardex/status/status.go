package status

import "sync/atomic"

// Table holds the process-wide CTE snapshot: card id to current flag. The
// map behind the pointer is never mutated after Replace; readers mid-lookup
// always see a complete snapshot.
type Table struct {
	snapshot atomic.Pointer[map[string]bool]
}

func NewTable() *Table {
	t := &Table{}
	empty := map[string]bool{}
	t.snapshot.Store(&empty)
	return t
}

// Lookup reports the current flag for a card id; ids absent from the
// snapshot are false.
func (t *Table) Lookup(id string) bool {
	return (*t.snapshot.Load())[id]
}

// Replace swaps in a fresh snapshot wholesale.
func (t *Table) Replace(snapshot map[string]bool) {
	t.snapshot.Store(&snapshot)
}

// Size returns the number of ids in the current snapshot.
func (t *Table) Size() int {
	return len(*t.snapshot.Load())
}
