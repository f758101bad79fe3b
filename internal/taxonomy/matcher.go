package taxonomy

import (
	"regexp"
	"strings"
	"sync"

	"github.com/matsen/litreview/internal/textproc"
)

// Matcher finds taxonomy terms in free text.
// It is safe for concurrent use.
type Matcher struct {
	tax       *Taxonomy
	tokenizer *textproc.Tokenizer

	mu      sync.Mutex
	regexes map[string]*regexp.Regexp
}

// NewMatcher returns a matcher over tax. A nil tokenizer uses
// textproc.NewDefaultTokenizer.
func NewMatcher(tax *Taxonomy, tokenizer *textproc.Tokenizer) *Matcher {
	if tokenizer == nil {
		tokenizer = textproc.NewDefaultTokenizer()
	}
	return &Matcher{
		tax:       tax,
		tokenizer: tokenizer,
		regexes:   make(map[string]*regexp.Regexp),
	}
}

// Taxonomy returns the taxonomy the matcher searches for.
func (m *Matcher) Taxonomy() *Taxonomy {
	return m.tax
}

// Document is text prepared once for repeated term lookups.
type Document struct {
	m      *Matcher
	raw    string
	ngrams []string
}

// Prepare lower-cases and tokenizes text.
func (m *Matcher) Prepare(text string) *Document {
	raw := strings.Join(strings.Fields(strings.ToLower(text)), " ")
	return &Document{
		m:      m,
		raw:    raw,
		ngrams: textproc.DistinctNGrams(m.tokenizer.Tokenize(raw)),
	}
}

// Empty reports whether the document has no text.
func (d *Document) Empty() bool {
	return d.raw == ""
}

// Contains reports whether any surface form of term is present, either as a
// substring of an n-gram of the token stream or as a whole-word hit in the
// raw text. Substring containment means "algorithmic" holds Algorithm.
func (d *Document) Contains(term Term) bool {
	if d.raw == "" {
		return false
	}
	for _, form := range d.m.tax.MatchForms(term) {
		if d.inNGram(lemmaForm(form)) {
			return true
		}
		if d.m.wordRegex(form).MatchString(d.raw) {
			return true
		}
	}
	return false
}

func (d *Document) inNGram(form string) bool {
	if form == "" {
		return false
	}
	for _, g := range d.ngrams {
		if strings.Contains(g, form) {
			return true
		}
	}
	return false
}

// FindMatches returns the canonical terms from terms present in text, once
// each, in the order given.
func (m *Matcher) FindMatches(text string, terms []Term) []string {
	doc := m.Prepare(text)
	var matched []string
	seen := make(map[string]bool)
	for _, term := range terms {
		if seen[term.Canonical] {
			continue
		}
		if doc.Contains(term) {
			seen[term.Canonical] = true
			matched = append(matched, term.Canonical)
		}
	}
	return matched
}

// Match is a term found in a document together with its category.
type Match struct {
	Category string `json:"category"`
	Term     string `json:"term"`
}

// MatchAll returns every (category, term) pair present in text, in taxonomy
// order. A term listed in two categories yields two matches.
func (m *Matcher) MatchAll(text string) []Match {
	doc := m.Prepare(text)
	if doc.Empty() {
		return nil
	}
	var matches []Match
	for _, cat := range m.tax.categories {
		seen := make(map[string]bool)
		for _, term := range cat.Terms {
			if seen[term.Canonical] {
				continue
			}
			if doc.Contains(term) {
				seen[term.Canonical] = true
				matches = append(matches, Match{Category: cat.Name, Term: term.Canonical})
			}
		}
	}
	return matches
}

// lemmaForm lower-cases and lemmatizes each word of a surface form so it
// compares against the tokenizer's n-gram joins.
func lemmaForm(form string) string {
	words := textproc.Words(form)
	for i, w := range words {
		words[i] = textproc.Lemmatize(w)
	}
	return strings.Join(words, " ")
}

// wordRegex returns the cached whole-word pattern for a surface form.
func (m *Matcher) wordRegex(form string) *regexp.Regexp {
	key := strings.Join(strings.Fields(strings.ToLower(form)), " ")

	m.mu.Lock()
	defer m.mu.Unlock()
	if re, ok := m.regexes[key]; ok {
		return re
	}
	re := regexp.MustCompile(`(?:^|[^\p{L}\p{N}])` + regexp.QuoteMeta(key) + `(?:$|[^\p{L}\p{N}])`)
	m.regexes[key] = re
	return re
}
