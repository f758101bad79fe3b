// Package reference defines the core domain types for bibliographic records.
package reference

import "strings"

// Reference represents one parsed bibliographic entry from an export file.
//
// Every field is optional: an empty string, a nil slice or a zero Year means
// the export did not carry the field. Use the Has* helpers rather than
// comparing against zero values at call sites.
type Reference struct {
	// Type is the RIS reference-type code (JOUR, CONF, BOOK, ...).
	Type string `json:"type,omitempty"`

	// Identifier candidates
	DOI  string   `json:"doi,omitempty"`
	URLs []string `json:"urls,omitempty"`

	// Metadata
	Title     string   `json:"title,omitempty"`
	Authors   []Author `json:"authors,omitempty"` // Ordered; the first author is significant
	Abstract  string   `json:"abstract,omitempty"`
	Year      int      `json:"year,omitempty"` // 0 if unknown
	Journal   string   `json:"journal,omitempty"`
	Publisher string   `json:"publisher,omitempty"`
	Keywords  []string `json:"keywords,omitempty"`

	// Extra holds every tag the model does not name, in export order, so a
	// record round-trips through the writer unchanged.
	Extra []Field `json:"extra,omitempty"`
}

// Field is a raw tagged value from an export.
type Field struct {
	Tag   string `json:"tag"`
	Value string `json:"value"`
}

// HasAbstract reports whether the record carries non-blank abstract text.
func (r Reference) HasAbstract() bool {
	return strings.TrimSpace(r.Abstract) != ""
}

// HasYear reports whether a publication year is known.
func (r Reference) HasYear() bool {
	return r.Year > 0
}

// HasKeywords reports whether the record has at least one non-blank keyword.
func (r Reference) HasKeywords() bool {
	for _, k := range r.Keywords {
		if strings.TrimSpace(k) != "" {
			return true
		}
	}
	return false
}

// FirstURL returns the first non-blank URL, or "" if there is none.
func (r Reference) FirstURL() string {
	for _, u := range r.URLs {
		if u = strings.TrimSpace(u); u != "" {
			return u
		}
	}
	return ""
}

// FirstAuthor returns the first author and true, or false if the author list is empty.
func (r Reference) FirstAuthor() (Author, bool) {
	if len(r.Authors) == 0 {
		return Author{}, false
	}
	return r.Authors[0], true
}

// KeywordString joins the keywords the way the exports list them ("a, b, c").
func (r Reference) KeywordString() string {
	return strings.Join(r.Keywords, ", ")
}

// Label returns a short human-readable identifier for logs and listings.
func (r Reference) Label() string {
	switch {
	case r.DOI != "":
		return r.DOI
	case r.Title != "":
		return r.Title
	case r.FirstURL() != "":
		return r.FirstURL()
	default:
		return "(untitled)"
	}
}
