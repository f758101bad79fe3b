package dedupe

import (
	"github.com/matsen/litreview/internal/reference"
	"github.com/matsen/litreview/internal/storage"
)

// Entry is one keyed record of a table.
type Entry struct {
	Key Key                 `json:"key"`
	Ref reference.Reference `json:"reference"`
}

// Table is an insertion-ordered map from identity key to record.
// Keys are compared by value; a DOI and a URL never collide in practice.
type Table struct {
	index   map[string]int
	entries []Entry
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{index: make(map[string]int)}
}

// TableFromRefs keys each record in order. Records without an identifier
// get a synthetic key; a repeated real key keeps the first record.
func TableFromRefs(refs []reference.Reference) *Table {
	t := NewTable()
	for _, ref := range refs {
		if key, ok := KeyFor(ref); ok {
			t.Put(key, ref)
		} else {
			t.PutSynthetic(ref)
		}
	}
	return t
}

// LoadTable reads a persisted table. A missing file is an empty table;
// a corrupt file is an error.
func LoadTable(path string) (*Table, error) {
	refs, err := storage.ReadTableOrEmpty(path)
	if err != nil {
		return nil, err
	}
	return TableFromRefs(refs), nil
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.entries)
}

// Has reports whether the key is present.
func (t *Table) Has(key Key) bool {
	_, ok := t.index[key.Value]
	return ok
}

// Get returns the record stored under key.
func (t *Table) Get(key Key) (reference.Reference, bool) {
	i, ok := t.index[key.Value]
	if !ok {
		return reference.Reference{}, false
	}
	return t.entries[i].Ref, true
}

// Put inserts the record under key unless the key is already present.
// It reports whether the record was inserted.
func (t *Table) Put(key Key, ref reference.Reference) bool {
	if t.Has(key) {
		return false
	}
	t.index[key.Value] = len(t.entries)
	t.entries = append(t.entries, Entry{Key: key, Ref: ref})
	return true
}

// PutSynthetic inserts the record under a fresh synthetic key and returns it.
// The key is derived from the table size, so it never repeats within a table.
func (t *Table) PutSynthetic(ref reference.Reference) Key {
	n := len(t.entries)
	key := syntheticKey(n)
	for t.Has(key) {
		n++
		key = syntheticKey(n)
	}
	t.Put(key, ref)
	return key
}

// Entries returns a copy of the entries in insertion order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Keys returns the keys in insertion order.
func (t *Table) Keys() []Key {
	keys := make([]Key, len(t.entries))
	for i, e := range t.entries {
		keys[i] = e.Key
	}
	return keys
}

// Refs returns the records in insertion order.
func (t *Table) Refs() []reference.Reference {
	refs := make([]reference.Reference, len(t.entries))
	for i, e := range t.entries {
		refs[i] = e.Ref
	}
	return refs
}
