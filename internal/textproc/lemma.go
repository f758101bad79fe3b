package textproc

import "strings"

// irregularPlurals maps plural forms the suffix rules get wrong.
var irregularPlurals = map[string]string{
	"children":  "child",
	"women":     "woman",
	"men":       "man",
	"people":    "person",
	"analyses":  "analysis",
	"theses":    "thesis",
	"criteria":  "criterion",
	"phenomena": "phenomenon",
	"bias":      "bias",
	"series":    "series",
	"species":   "species",
}

// Lemmatize reduces a lower-case English plural noun to its singular form.
// Words that do not look plural are returned unchanged.
func Lemmatize(word string) string {
	if lemma, ok := irregularPlurals[word]; ok {
		return lemma
	}
	n := len(word)
	if n <= 3 {
		return word
	}
	switch {
	case strings.HasSuffix(word, "ies") && n > 4:
		return word[:n-3] + "y"
	case strings.HasSuffix(word, "sses"):
		return word[:n-2]
	case strings.HasSuffix(word, "ches"), strings.HasSuffix(word, "shes"), strings.HasSuffix(word, "xes"):
		return word[:n-2]
	case strings.HasSuffix(word, "ss"), strings.HasSuffix(word, "us"), strings.HasSuffix(word, "is"):
		return word
	case strings.HasSuffix(word, "s"):
		return word[:n-1]
	}
	return word
}
