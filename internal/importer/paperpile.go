package importer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/matsen/litreview/internal/reference"
)

// FlexibleString can unmarshal from either string or number JSON values.
type FlexibleString string

func (f *FlexibleString) UnmarshalJSON(data []byte) error {
	// Handle null
	if string(data) == "null" {
		*f = ""
		return nil
	}

	// Try string first
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexibleString(s)
		return nil
	}

	// Try number
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexibleString(n.String())
		return nil
	}

	return fmt.Errorf("cannot unmarshal %s into FlexibleString", string(data))
}

func (f FlexibleString) String() string {
	return string(f)
}

// PaperpileEntry represents a single entry from a Paperpile JSON export.
type PaperpileEntry struct {
	ID        string   `json:"_id"`
	Pubtype   string   `json:"pubtype"`
	DOI       string   `json:"doi"`
	URL       []string `json:"url"`
	Title     string   `json:"title"`
	Abstract  string   `json:"abstract"`
	Journal   string   `json:"journal"`
	Publisher string   `json:"publisher"`
	Keywords  string   `json:"keywords"`
	Published struct {
		Year FlexibleString `json:"year"`
	} `json:"published"`
	Author []struct {
		First string `json:"first"`
		Last  string `json:"last"`
	} `json:"author"`
}

// paperpileTypes maps Paperpile publication types to RIS type codes.
var paperpileTypes = map[string]string{
	"article":       "JOUR",
	"inproceedings": "CPAPER",
	"conference":    "CONF",
	"book":          "BOOK",
	"inbook":        "CHAP",
	"incollection":  "CHAP",
	"phdthesis":     "THES",
	"techreport":    "RPRT",
}

// ParsePaperpile parses a Paperpile JSON export and returns references.
// Entries that cannot be converted are reported individually; the rest
// are still returned.
func ParsePaperpile(data []byte) ([]reference.Reference, []error) {
	var entries []PaperpileEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, []error{fmt.Errorf("parsing Paperpile JSON: %w: %w", ErrCorrupt, err)}
	}

	var refs []reference.Reference
	var errs []error

	for i, entry := range entries {
		ref, err := paperpileEntryToReference(entry)
		if err != nil {
			errs = append(errs, fmt.Errorf("entry %d (%s): %w", i+1, entry.ID, err))
			continue
		}
		refs = append(refs, ref)
	}

	return refs, errs
}

// paperpileEntryToReference converts a Paperpile entry to our Reference type.
func paperpileEntryToReference(entry PaperpileEntry) (reference.Reference, error) {
	// An entry must carry something a reviewer can recognise it by
	if entry.Title == "" && entry.DOI == "" && len(entry.URL) == 0 {
		return reference.Reference{}, fmt.Errorf("entry has no title, doi or url")
	}

	var year int
	if y := strings.TrimSpace(entry.Published.Year.String()); y != "" {
		n, err := strconv.Atoi(y)
		if err != nil {
			return reference.Reference{}, fmt.Errorf("invalid year: %s", y)
		}
		year = n
	}

	var authors []reference.Author
	for _, a := range entry.Author {
		author := reference.Author{First: strings.TrimSpace(a.First), Last: strings.TrimSpace(a.Last)}
		if !author.IsZero() {
			authors = append(authors, author)
		}
	}

	var keywords []string
	for _, k := range strings.Split(entry.Keywords, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}

	refType := paperpileTypes[strings.ToLower(entry.Pubtype)]
	if refType == "" {
		refType = "GEN"
	}

	ref := reference.Reference{
		Type:      refType,
		DOI:       entry.DOI,
		URLs:      entry.URL,
		Title:     entry.Title,
		Authors:   authors,
		Abstract:  entry.Abstract,
		Year:      year,
		Journal:   entry.Journal,
		Publisher: entry.Publisher,
		Keywords:  keywords,
	}

	return ref, nil
}
