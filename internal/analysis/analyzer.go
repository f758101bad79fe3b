// Package analysis computes taxonomy term statistics over a set of
// references: per-category frequencies, co-occurrence, TF-IDF weights and
// yearly trends.
package analysis

import (
	"math"
	"sort"
	"strconv"

	"github.com/matsen/litreview/internal/reference"
	"github.com/matsen/litreview/internal/taxonomy"
	"github.com/matsen/litreview/internal/textproc"
)

// DefaultTopTerms is the size of the top-term list in a Summary.
const DefaultTopTerms = 10

// Options tunes an Analyzer.
type Options struct {
	// MinFrequency drops terms whose combined count is below it from the
	// co-occurrence table. Values below 1 mean 1.
	MinFrequency int

	// Diagonal keeps self-entries in the co-occurrence table, holding the
	// number of records in which the term is present.
	Diagonal bool

	// Tokenizer overrides the default tokenizer.
	Tokenizer *textproc.Tokenizer
}

// Analyzer computes statistics for one taxonomy. It holds no per-run state,
// so one Analyzer can serve many runs.
type Analyzer struct {
	tax     *taxonomy.Taxonomy
	matcher *taxonomy.Matcher
	opts    Options
}

// New returns an Analyzer for tax.
func New(tax *taxonomy.Taxonomy, opts Options) *Analyzer {
	if opts.MinFrequency < 1 {
		opts.MinFrequency = 1
	}
	return &Analyzer{
		tax:     tax,
		matcher: taxonomy.NewMatcher(tax, opts.Tokenizer),
		opts:    opts,
	}
}

// Taxonomy returns the analyzer's taxonomy.
func (a *Analyzer) Taxonomy() *taxonomy.Taxonomy {
	return a.tax
}

// Matcher returns the analyzer's term matcher.
func (a *Analyzer) Matcher() *taxonomy.Matcher {
	return a.matcher
}

// scanned is the matching result for one record.
type scanned struct {
	ref     reference.Reference
	matches []taxonomy.Match
	// terms holds the distinct canonical terms across categories, in
	// taxonomy order
	terms []string
}

// scan matches every record with an abstract once.
func (a *Analyzer) scan(refs []reference.Reference) []scanned {
	var out []scanned
	for _, ref := range refs {
		if !ref.HasAbstract() {
			continue
		}
		matches := a.matcher.MatchAll(ref.Abstract)
		seen := make(map[string]bool, len(matches))
		var terms []string
		for _, m := range matches {
			if !seen[m.Term] {
				seen[m.Term] = true
				terms = append(terms, m.Term)
			}
		}
		out = append(out, scanned{ref: ref, matches: matches, terms: terms})
	}
	return out
}

// Frequencies holds per-category and combined presence counts.
type Frequencies struct {
	// ByCategory maps category -> term -> number of records.
	ByCategory *Table `json:"by_category"`

	// Combined maps term -> sum over categories of ByCategory counts.
	Combined *Counter `json:"combined"`
}

// Frequency counts, for every category, the records in which each term is
// present. A term recurring within one abstract counts once.
func (a *Analyzer) Frequency(refs []reference.Reference) Frequencies {
	return frequency(a.scan(refs))
}

func frequency(docs []scanned) Frequencies {
	byCat := newTable()
	combined := newCounter()
	for _, d := range docs {
		for _, m := range d.matches {
			byCat.add(m.Category, m.Term, 1)
			combined.add(m.Term, 1)
		}
	}
	return Frequencies{ByCategory: byCat, Combined: combined}
}

// CoOccurrence counts, for every pair of distinct terms, the records in
// which both are present. The table is symmetric.
func (a *Analyzer) CoOccurrence(refs []reference.Reference) *Table {
	docs := a.scan(refs)
	return a.coOccurrence(docs, frequency(docs).Combined)
}

func (a *Analyzer) coOccurrence(docs []scanned, combined *Counter) *Table {
	table := newTable()
	for _, d := range docs {
		var terms []string
		for _, t := range d.terms {
			if combined.Get(t) >= a.opts.MinFrequency {
				terms = append(terms, t)
			}
		}
		for i, t1 := range terms {
			if a.opts.Diagonal {
				table.add(t1, t1, 1)
			}
			for _, t2 := range terms[i+1:] {
				table.add(t1, t2, 1)
				table.add(t2, t1, 1)
			}
		}
	}
	return table
}

// TfIdf weights each term as combined(term) * ln(N / df(term)), where N is
// the number of records with an abstract and df the number of records in
// which the term is present (at least 1).
func (a *Analyzer) TfIdf(refs []reference.Reference) *Weights {
	docs := a.scan(refs)
	return tfidf(docs, frequency(docs).Combined)
}

func tfidf(docs []scanned, combined *Counter) *Weights {
	weights := newWeights()
	n := len(docs)
	if n == 0 {
		return weights
	}
	df := newCounter()
	for _, d := range docs {
		for _, t := range d.terms {
			df.add(t, 1)
		}
	}
	for _, e := range combined.Entries() {
		docFreq := df.Get(e.Term)
		if docFreq < 1 {
			docFreq = 1
		}
		weights.set(e.Term, float64(e.Count)*math.Log(float64(n)/float64(docFreq)))
	}
	return weights
}

// TrendsByYear returns year -> term -> combined count, with years ascending.
// Records without a year are excluded.
func (a *Analyzer) TrendsByYear(refs []reference.Reference) *Table {
	return trends(a.scan(refs))
}

func trends(docs []scanned) *Table {
	byYear := make(map[int][]scanned)
	for _, d := range docs {
		if d.ref.HasYear() {
			byYear[d.ref.Year] = append(byYear[d.ref.Year], d)
		}
	}
	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	table := newTable()
	for _, y := range years {
		row := strconv.Itoa(y)
		for _, e := range frequency(byYear[y]).Combined.Entries() {
			table.add(row, e.Term, e.Count)
		}
	}
	return table
}

// FrequentTerms returns combined counts of at least minFreq, most frequent
// first, at most topN (<= 0 for all).
func FrequentTerms(freq Frequencies, topN, minFreq int) []TermCount {
	var out []TermCount
	for _, e := range freq.Combined.MostCommon(0) {
		if e.Count >= minFreq {
			out = append(out, e)
		}
	}
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}

// RecordsWithTerm returns the records whose abstract contains term, after
// normalizing it. Terms outside the taxonomy match nothing.
func (a *Analyzer) RecordsWithTerm(refs []reference.Reference, term string) []reference.Reference {
	t, ok := a.tax.TermFor(a.tax.Normalize(term))
	if !ok {
		return nil
	}
	var out []reference.Reference
	for _, ref := range refs {
		if !ref.HasAbstract() {
			continue
		}
		if a.matcher.Prepare(ref.Abstract).Contains(t) {
			out = append(out, ref)
		}
	}
	return out
}

// CategorySummary reports one category's counts.
type CategorySummary struct {
	Name string `json:"name"`

	// Terms is the number of distinct terms found.
	Terms int `json:"terms"`

	// Total is the sum of the category's term counts.
	Total int `json:"total"`
}

// Summary is a corpus overview.
type Summary struct {
	Entries      int               `json:"entries"`
	WithAbstract int               `json:"with_abstract"`
	UniqueTerms  int               `json:"unique_terms"`
	Categories   []CategorySummary `json:"categories"`
	TopTerms     []TermCount       `json:"top_terms"`
}

// Summary returns a corpus overview.
func (a *Analyzer) Summary(refs []reference.Reference) Summary {
	docs := a.scan(refs)
	return a.summary(len(refs), docs, frequency(docs))
}

func (a *Analyzer) summary(entries int, docs []scanned, freq Frequencies) Summary {
	s := Summary{
		Entries:      entries,
		WithAbstract: len(docs),
		UniqueTerms:  freq.Combined.Len(),
		TopTerms:     freq.Combined.MostCommon(DefaultTopTerms),
	}
	for _, cat := range a.tax.Categories() {
		row := freq.ByCategory.Row(cat.Name)
		s.Categories = append(s.Categories, CategorySummary{
			Name:  cat.Name,
			Terms: row.Len(),
			Total: row.Total(),
		})
	}
	return s
}

// Report is the full result of one analysis run.
type Report struct {
	Frequencies  Frequencies
	CoOccurrence *Table
	TfIdf        *Weights
	Trends       *Table
	Summary      Summary
}

// Run computes every statistic in a single matching pass.
func (a *Analyzer) Run(refs []reference.Reference) *Report {
	docs := a.scan(refs)
	freq := frequency(docs)
	return &Report{
		Frequencies:  freq,
		CoOccurrence: a.coOccurrence(docs, freq.Combined),
		TfIdf:        tfidf(docs, freq.Combined),
		Trends:       trends(docs),
		Summary:      a.summary(len(refs), docs, freq),
	}
}

// TermCategories returns canonical term -> first category containing it.
func (a *Analyzer) TermCategories() map[string]string {
	return a.tax.TermCategories()
}
