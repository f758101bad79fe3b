// Package textproc turns abstract text into normalized tokens and n-grams.
package textproc

import (
	"strings"
	"unicode"
)

// MinTokenLength is the shortest token kept; shorter ones are noise.
const MinTokenLength = 3

// Tokenizer handles text tokenization and normalization
type Tokenizer struct {
	stopwords map[string]struct{}
	lemmatize bool
}

// NewTokenizer creates a new tokenizer with the given stopword list.
// Kept tokens are lemmatized.
func NewTokenizer(stopwords []string) *Tokenizer {
	stops := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		stops[strings.ToLower(w)] = struct{}{}
	}
	return &Tokenizer{stopwords: stops, lemmatize: true}
}

// NewDefaultTokenizer creates a tokenizer with DefaultStopwords.
func NewDefaultTokenizer() *Tokenizer {
	return NewTokenizer(DefaultStopwords())
}

// WithoutLemmatization returns a copy of the tokenizer that keeps surface forms.
func (t *Tokenizer) WithoutLemmatization() *Tokenizer {
	return &Tokenizer{stopwords: t.stopwords, lemmatize: false}
}

// Tokenize lower-cases text, splits it on anything that is not a letter or
// digit, and keeps alphabetic tokens of at least MinTokenLength runes that
// are not stopwords.
func (t *Tokenizer) Tokenize(text string) []string {
	var tokens []string
	for _, word := range Words(text) {
		if tok := t.processToken(word); tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// processToken applies filtering, stopword removal and lemmatization.
func (t *Tokenizer) processToken(word string) string {
	if len([]rune(word)) < MinTokenLength || !isAlpha(word) {
		return ""
	}
	if t.IsStopword(word) {
		return ""
	}
	if t.lemmatize {
		word = Lemmatize(word)
	}
	return word
}

// IsStopword reports whether the lower-case word is on the stop list.
func (t *Tokenizer) IsStopword(word string) bool {
	_, ok := t.stopwords[word]
	return ok
}

// Words splits lower-cased text into runs of letters and digits.
func Words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}
