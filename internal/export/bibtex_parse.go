package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/matsen/litreview/internal/reference"
)

// BibTeXIndex records the citation keys and DOIs of an existing .bib file.
type BibTeXIndex struct {
	Keys map[string]bool

	// DOIs maps normalized DOIs to the key of the entry carrying them.
	DOIs map[string]string
}

// NewBibTeXIndex creates an empty BibTeX index.
func NewBibTeXIndex() *BibTeXIndex {
	return &BibTeXIndex{
		Keys: make(map[string]bool),
		DOIs: make(map[string]string),
	}
}

// HasEntry reports whether the file already holds the record: by DOI when
// one is given, else by citation key.
func (idx *BibTeXIndex) HasEntry(key, doi string) bool {
	if norm := reference.NormalizeDOI(doi); norm != "" {
		if _, ok := idx.DOIs[norm]; ok {
			return true
		}
	}
	return idx.Keys[key]
}

// ParseBibTeXFile indexes an existing .bib file. A missing file yields an
// empty index.
func ParseBibTeXFile(path string) (*BibTeXIndex, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewBibTeXIndex(), nil
		}
		return nil, err
	}
	defer file.Close()

	idx, err := ParseBibTeX(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return idx, nil
}

// ParseBibTeX indexes BibTeX entries line by line. Only the entry header
// and the doi field are read; a doi before any header is ignored.
func ParseBibTeX(r io.Reader) (*BibTeXIndex, error) {
	idx := NewBibTeXIndex()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	key := ""
	for scanner.Scan() {
		line := scanner.Text()
		if m := entryStartRegex.FindStringSubmatch(line); m != nil {
			key = strings.TrimSpace(m[1])
			idx.Keys[key] = true
		}
		if m := doiFieldRegex.FindStringSubmatch(line); m != nil && key != "" {
			if doi := reference.NormalizeDOI(m[1]); doi != "" {
				idx.DOIs[doi] = key
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading bibtex: %w", err)
	}
	return idx, nil
}

// entryStartRegex matches "@type{key,".
var entryStartRegex = regexp.MustCompile(`@\w+\{([^,]+),`)

// doiFieldRegex matches doi = {value} and doi = "value".
var doiFieldRegex = regexp.MustCompile(`(?i)^\s*doi\s*=\s*[\{"]([^\}"]+)[\}"]`)

// Filter returns the references whose DOI is not yet indexed, with the
// citation keys they will be written under. Keys already taken are suffixed
// -2, -3 and so on. Kept records are added to the index, so repeats within
// refs are filtered too.
func (idx *BibTeXIndex) Filter(refs []reference.Reference) ([]reference.Reference, []string) {
	var kept []reference.Reference
	var keys []string
	for _, ref := range refs {
		doi := reference.NormalizeDOI(ref.DOI)
		if _, exists := idx.DOIs[doi]; doi != "" && exists {
			continue
		}
		base := CiteKey(ref)
		key := base
		for n := 2; idx.Keys[key]; n++ {
			key = fmt.Sprintf("%s-%d", base, n)
		}
		idx.Keys[key] = true
		if doi != "" {
			idx.DOIs[doi] = key
		}
		kept = append(kept, ref)
		keys = append(keys, key)
	}
	return kept, keys
}

// AppendToBibFile appends entries to a .bib file, creating it if needed.
// A leading newline keeps the first entry off the previous last line.
func AppendToBibFile(path, content string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	if _, err := file.WriteString("\n" + content); err != nil {
		file.Close()
		return fmt.Errorf("appending to %s: %w", path, err)
	}
	return file.Close()
}
