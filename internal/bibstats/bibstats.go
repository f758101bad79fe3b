// Package bibstats computes bibliometric counts over a reference set.
package bibstats

import (
	"sort"
	"strings"

	"github.com/matsen/litreview/internal/reference"
)

// DefaultTopN is the length of the ranked lists.
const DefaultTopN = 15

// Count is one ranked entry.
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// YearTypes counts products per type for one year.
type YearTypes struct {
	Year  int     `json:"year"`
	Types []Count `json:"types"`
}

// Stats is the bibliometric overview of a corpus.
type Stats struct {
	Records        int         `json:"records"`
	TopAuthors     []Count     `json:"top_authors"`
	YearsByType    []YearTypes `json:"years_by_type"`
	ProductsByType []Count     `json:"products_by_type"`
	TopJournals    []Count     `json:"top_journals"`
	TopPublishers  []Count     `json:"top_publishers"`
}

// Compute returns the overview. topN <= 0 means DefaultTopN.
func Compute(refs []reference.Reference, topN int) Stats {
	if topN <= 0 {
		topN = DefaultTopN
	}
	return Stats{
		Records:        len(refs),
		TopAuthors:     TopFirstAuthors(refs, topN),
		YearsByType:    YearsByType(refs),
		ProductsByType: ProductsByType(refs),
		TopJournals:    TopJournals(refs, topN),
		TopPublishers:  TopPublishers(refs, topN),
	}
}

// tally counts names in first-seen order.
type tally struct {
	order  []string
	counts map[string]int
}

func newTally() *tally {
	return &tally{counts: make(map[string]int)}
}

func (t *tally) add(name string) {
	if name == "" {
		return
	}
	if _, ok := t.counts[name]; !ok {
		t.order = append(t.order, name)
	}
	t.counts[name]++
}

func (t *tally) list() []Count {
	out := make([]Count, len(t.order))
	for i, name := range t.order {
		out[i] = Count{Name: name, Count: t.counts[name]}
	}
	return out
}

// ranked returns counts in descending order, ties in first-seen order.
func (t *tally) ranked(n int) []Count {
	out := t.list()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// TopFirstAuthors ranks first authors by number of records.
func TopFirstAuthors(refs []reference.Reference, n int) []Count {
	t := newTally()
	for _, ref := range refs {
		if a, ok := ref.FirstAuthor(); ok {
			t.add(a.String())
		}
	}
	return t.ranked(n)
}

// YearsByType counts records per year and type, years ascending. Records
// without a year are skipped.
func YearsByType(refs []reference.Reference) []YearTypes {
	byYear := make(map[int]*tally)
	for _, ref := range refs {
		if !ref.HasYear() {
			continue
		}
		t, ok := byYear[ref.Year]
		if !ok {
			t = newTally()
			byYear[ref.Year] = t
		}
		t.add(typeName(ref))
	}
	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	out := make([]YearTypes, 0, len(years))
	for _, y := range years {
		out = append(out, YearTypes{Year: y, Types: byYear[y].list()})
	}
	return out
}

// ProductsByType counts records per reference type in first-seen order.
func ProductsByType(refs []reference.Reference) []Count {
	t := newTally()
	for _, ref := range refs {
		t.add(strings.TrimSpace(ref.Type))
	}
	return t.list()
}

// TopJournals ranks journals of journal articles (type JOUR).
func TopJournals(refs []reference.Reference, n int) []Count {
	t := newTally()
	for _, ref := range refs {
		if strings.EqualFold(ref.Type, "JOUR") {
			t.add(strings.TrimSpace(ref.Journal))
		}
	}
	return t.ranked(n)
}

// TopPublishers ranks publishers.
func TopPublishers(refs []reference.Reference, n int) []Count {
	t := newTally()
	for _, ref := range refs {
		t.add(strings.TrimSpace(ref.Publisher))
	}
	return t.ranked(n)
}

// typeName labels untyped records so they still count in a year.
func typeName(ref reference.Reference) string {
	if t := strings.TrimSpace(ref.Type); t != "" {
		return t
	}
	return "unknown"
}
