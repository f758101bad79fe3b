package analysis

import (
	"bytes"
	"encoding/json"
	"sort"
)

// TermCount is one counter entry.
type TermCount struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// Counter is an insertion-ordered term -> count map. Counters returned by an
// Analyzer are never modified afterwards.
type Counter struct {
	keys   []string
	counts map[string]int
}

func newCounter() *Counter {
	return &Counter{counts: make(map[string]int)}
}

func (c *Counter) add(key string, n int) {
	if _, ok := c.counts[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.counts[key] += n
}

// Get returns the count for key, 0 when absent.
func (c *Counter) Get(key string) int {
	if c == nil {
		return 0
	}
	return c.counts[key]
}

// Has reports whether key was ever counted.
func (c *Counter) Has(key string) bool {
	if c == nil {
		return false
	}
	_, ok := c.counts[key]
	return ok
}

// Len returns the number of distinct keys.
func (c *Counter) Len() int {
	if c == nil {
		return 0
	}
	return len(c.keys)
}

// Keys returns the keys in insertion order.
func (c *Counter) Keys() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.keys...)
}

// Total returns the sum of all counts.
func (c *Counter) Total() int {
	total := 0
	if c == nil {
		return total
	}
	for _, n := range c.counts {
		total += n
	}
	return total
}

// Entries returns the entries in insertion order.
func (c *Counter) Entries() []TermCount {
	if c == nil {
		return nil
	}
	out := make([]TermCount, len(c.keys))
	for i, k := range c.keys {
		out[i] = TermCount{Term: k, Count: c.counts[k]}
	}
	return out
}

// MostCommon returns entries by descending count, ties in insertion order.
// n <= 0 returns every entry.
func (c *Counter) MostCommon(n int) []TermCount {
	out := c.Entries()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// MarshalJSON writes the counter as an object in insertion order.
func (c *Counter) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range c.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(c.counts[k])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Table is a two-level ordered map row -> column -> count.
type Table struct {
	rows  []string
	cells map[string]*Counter
}

func newTable() *Table {
	return &Table{cells: make(map[string]*Counter)}
}

func (t *Table) add(row, col string, n int) {
	r, ok := t.cells[row]
	if !ok {
		r = newCounter()
		t.cells[row] = r
		t.rows = append(t.rows, row)
	}
	r.add(col, n)
}

// Get returns the count at (row, col), 0 when absent.
func (t *Table) Get(row, col string) int {
	if t == nil {
		return 0
	}
	return t.cells[row].Get(col)
}

// Row returns the counter for row, or nil.
func (t *Table) Row(row string) *Counter {
	if t == nil {
		return nil
	}
	return t.cells[row]
}

// Rows returns the row keys in insertion order.
func (t *Table) Rows() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.rows...)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Cell is one non-empty table entry.
type Cell struct {
	Row    string
	Column string
	Count  int
}

// Cells returns every entry, rows then columns in insertion order.
func (t *Table) Cells() []Cell {
	var out []Cell
	for _, row := range t.Rows() {
		for _, e := range t.cells[row].Entries() {
			out = append(out, Cell{Row: row, Column: e.Term, Count: e.Count})
		}
	}
	return out
}

// MarshalJSON writes the table as nested objects in insertion order.
func (t *Table) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, row := range t.Rows() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(row)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := t.cells[row].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// WeightedTerm is one TF-IDF entry.
type WeightedTerm struct {
	Term   string  `json:"term"`
	Weight float64 `json:"weight"`
}

// Weights is an insertion-ordered term -> weight map.
type Weights struct {
	entries []WeightedTerm
	index   map[string]int
}

func newWeights() *Weights {
	return &Weights{index: make(map[string]int)}
}

func (w *Weights) set(term string, weight float64) {
	if i, ok := w.index[term]; ok {
		w.entries[i].Weight = weight
		return
	}
	w.index[term] = len(w.entries)
	w.entries = append(w.entries, WeightedTerm{Term: term, Weight: weight})
}

// Get returns the weight of term and whether it is present.
func (w *Weights) Get(term string) (float64, bool) {
	if w == nil {
		return 0, false
	}
	i, ok := w.index[term]
	if !ok {
		return 0, false
	}
	return w.entries[i].Weight, true
}

// Len returns the number of weighted terms.
func (w *Weights) Len() int {
	if w == nil {
		return 0
	}
	return len(w.entries)
}

// Entries returns the weights in insertion order.
func (w *Weights) Entries() []WeightedTerm {
	if w == nil {
		return nil
	}
	return append([]WeightedTerm(nil), w.entries...)
}

// Top returns entries by descending weight, ties in insertion order.
func (w *Weights) Top(n int) []WeightedTerm {
	out := w.Entries()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Weight > out[j].Weight
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// MarshalJSON writes the weights as an object in insertion order.
func (w *Weights) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range w.Entries() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Term)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(e.Weight)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
