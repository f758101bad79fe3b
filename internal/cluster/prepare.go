// Package cluster evaluates hierarchical clustering of abstracts against
// keyword-derived labels.
package cluster

import (
	"errors"
	"regexp"
	"strings"

	"github.com/matsen/litreview/internal/reference"
	"github.com/matsen/litreview/internal/textproc"
)

// DefaultMaxRecords caps the number of records clustered.
const DefaultMaxRecords = 50

// ErrDegenerateInput is returned when the input cannot produce a meaningful
// clustering score.
var ErrDegenerateInput = errors.New("degenerate clustering input")

// Document is one eligible record prepared for clustering.
type Document struct {
	// Text is the cleaned abstract.
	Text string `json:"text"`

	// Keywords is the raw keyword string the label derives from.
	Keywords string `json:"keywords"`

	// Label is the index of Keywords among the distinct keyword strings.
	Label int `json:"label"`

	Title string `json:"title,omitempty"`
}

var punctRegex = regexp.MustCompile(`[^\p{L}\p{N}_\s]+`)

var englishStops = func() map[string]bool {
	m := make(map[string]bool, len(textproc.EnglishStopwords))
	for _, w := range textproc.EnglishStopwords {
		m[w] = true
	}
	return m
}()

// CleanText lower-cases text, strips punctuation and drops English stop words.
func CleanText(text string) string {
	text = punctRegex.ReplaceAllString(strings.ToLower(text), "")
	var kept []string
	for _, w := range strings.Fields(text) {
		if !englishStops[w] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// Prepare selects the first max records that have both an abstract and
// keywords (max <= 0 means DefaultMaxRecords) and labels each by its keyword
// string in first-seen order. The labels approximate real categories only
// loosely.
func Prepare(refs []reference.Reference, max int) []Document {
	if max <= 0 {
		max = DefaultMaxRecords
	}
	labels := make(map[string]int)
	var docs []Document
	for _, ref := range refs {
		if len(docs) == max {
			break
		}
		if !ref.HasAbstract() || !ref.HasKeywords() {
			continue
		}
		kw := ref.KeywordString()
		label, ok := labels[kw]
		if !ok {
			label = len(labels)
			labels[kw] = label
		}
		docs = append(docs, Document{
			Text:     CleanText(ref.Abstract),
			Keywords: kw,
			Label:    label,
			Title:    ref.Title,
		})
	}
	return docs
}

// Labels returns the label of every document.
func Labels(docs []Document) []int {
	out := make([]int, len(docs))
	for i, d := range docs {
		out[i] = d.Label
	}
	return out
}

// Texts returns the cleaned text of every document.
func Texts(docs []Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Text
	}
	return out
}
