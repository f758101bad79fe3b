// Package export provides functions to export references to various formats.
package export

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/matsen/litreview/internal/reference"
)

// ToBibTeX converts a reference to BibTeX format under the given citation key.
func ToBibTeX(key string, ref reference.Reference) string {
	entryType := determineEntryType(ref)
	var b strings.Builder

	b.WriteString(fmt.Sprintf("@%s{%s,\n", entryType, key))

	// Authors
	if len(ref.Authors) > 0 {
		b.WriteString(fmt.Sprintf("  author = {%s},\n", formatAuthors(ref.Authors)))
	}

	// Title
	b.WriteString(fmt.Sprintf("  title = {%s},\n", escapeLatex(ref.Title)))

	// Venue
	if ref.Journal != "" {
		fieldName := "journal"
		if entryType == "inproceedings" {
			fieldName = "booktitle"
		}
		b.WriteString(fmt.Sprintf("  %s = {%s},\n", fieldName, escapeLatex(ref.Journal)))
	}

	if ref.Publisher != "" {
		b.WriteString(fmt.Sprintf("  publisher = {%s},\n", escapeLatex(ref.Publisher)))
	}

	// Year (optional for RIS-sourced records)
	if ref.Year > 0 {
		b.WriteString(fmt.Sprintf("  year = {%d},\n", ref.Year))
	}

	if ref.DOI != "" {
		b.WriteString(fmt.Sprintf("  doi = {%s},\n", ref.DOI))
	}

	if u := ref.FirstURL(); u != "" {
		b.WriteString(fmt.Sprintf("  url = {%s},\n", u))
	}

	if len(ref.Keywords) > 0 {
		b.WriteString(fmt.Sprintf("  keywords = {%s},\n", escapeLatex(ref.KeywordString())))
	}

	if ref.Abstract != "" {
		b.WriteString(fmt.Sprintf("  abstract = {%s},\n", escapeLatex(ref.Abstract)))
	}

	b.WriteString("}\n")

	return b.String()
}

// ToBibTeXList converts multiple references to BibTeX format, generating a
// unique citation key for each.
func ToBibTeXList(refs []reference.Reference) string {
	keys := CiteKeys(refs)
	var entries []string
	for i, ref := range refs {
		entries = append(entries, ToBibTeX(keys[i], ref))
	}
	return strings.Join(entries, "\n")
}

var nonKeyChars = regexp.MustCompile(`[^A-Za-z0-9]+`)

// CiteKey derives a base citation key "LastYear" from the first author and
// year, falling back to "ref" and "nd" when either is missing.
func CiteKey(ref reference.Reference) string {
	last := "ref"
	if a, ok := ref.FirstAuthor(); ok {
		if cleaned := nonKeyChars.ReplaceAllString(a.Last, ""); cleaned != "" {
			last = cleaned
		}
	}
	year := "nd"
	if ref.HasYear() {
		year = fmt.Sprintf("%d", ref.Year)
	}
	return last + year
}

// CiteKeys returns one key per reference, unique within the list.
// If a base key is taken, appends -2, -3, etc.
func CiteKeys(refs []reference.Reference) []string {
	used := make(map[string]bool, len(refs))
	keys := make([]string, len(refs))
	for i, ref := range refs {
		base := CiteKey(ref)
		key := base
		// Start at 2: base is taken, so first duplicate becomes base-2
		for n := 2; used[key]; n++ {
			key = fmt.Sprintf("%s-%d", base, n)
		}
		used[key] = true
		keys[i] = key
	}
	return keys
}

// determineEntryType returns the BibTeX entry type for a reference.
// The RIS type code decides when it is specific; otherwise the venue does.
func determineEntryType(ref reference.Reference) string {
	switch strings.ToUpper(ref.Type) {
	case "JOUR", "JFULL", "EJOUR", "MGZN":
		return "article"
	case "CONF", "CPAPER":
		return "inproceedings"
	case "BOOK", "EBOOK":
		return "book"
	case "CHAP", "ECHAP":
		return "incollection"
	case "THES":
		return "phdthesis"
	case "RPRT":
		return "techreport"
	}

	venue := strings.ToLower(ref.Journal)

	// Conference proceedings
	if strings.Contains(venue, "proceedings") ||
		strings.Contains(venue, "conference") ||
		strings.Contains(venue, "workshop") ||
		strings.Contains(venue, "symposium") {
		return "inproceedings"
	}

	// Default to article
	return "article"
}

// formatAuthors formats authors in BibTeX style: "Last, First and Last, First"
func formatAuthors(authors []reference.Author) string {
	var formatted []string
	for _, a := range authors {
		formatted = append(formatted, a.String())
	}
	return strings.Join(formatted, " and ")
}

// escapeLatex escapes special LaTeX characters.
func escapeLatex(s string) string {
	// Order matters: & must be first (before other escapes that might produce &)
	replacer := strings.NewReplacer(
		"&", `\&`,
		"%", `\%`,
		"$", `\$`,
		"#", `\#`,
		"_", `\_`,
		"{", `\{`,
		"}", `\}`,
		"~", `\textasciitilde{}`,
		"^", `\textasciicircum{}`,
	)
	return replacer.Replace(s)
}
