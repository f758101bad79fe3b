package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matsen/litreview/internal/reference"
)

func TestToBibTeX_BasicArticle(t *testing.T) {
	ref := reference.Reference{
		Type:  "JOUR",
		DOI:   "10.1234/test",
		Title: "Test Paper Title",
		Authors: []reference.Author{
			{First: "John", Last: "Smith"},
			{First: "Jane", Last: "Doe"},
		},
		Abstract: "This is the abstract",
		Journal:  "Computers & Education",
		Year:     2021,
		Keywords: []string{"coding", "play"},
	}

	got := ToBibTeX("Smith2021", ref)

	wantParts := []string{
		"@article{Smith2021,",
		`author = {Smith, John and Doe, Jane}`,
		`title = {Test Paper Title}`,
		`journal = {Computers \& Education}`,
		`year = {2021}`,
		`doi = {10.1234/test}`,
		`keywords = {coding, play}`,
		`abstract = {This is the abstract}`,
	}
	for _, want := range wantParts {
		if !strings.Contains(got, want) {
			t.Errorf("ToBibTeX() missing %q, got:\n%s", want, got)
		}
	}
	if !strings.HasSuffix(strings.TrimSpace(got), "}") {
		t.Errorf("ToBibTeX() should end with }, got:\n%s", got)
	}
}

func TestToBibTeX_Inproceedings(t *testing.T) {
	ref := reference.Reference{
		Title:   "A Conference Paper",
		Authors: []reference.Author{{First: "Alice", Last: "Brown"}},
		Journal: "Proceedings of the Workshop on Tangible Programming",
		Year:    2019,
	}

	got := ToBibTeX("Brown2019", ref)

	if !strings.HasPrefix(got, "@inproceedings{Brown2019,") {
		t.Errorf("ToBibTeX() should start with @inproceedings, got:\n%s", got)
	}
	if !strings.Contains(got, "booktitle = {Proceedings of the Workshop on Tangible Programming}") {
		t.Errorf("ToBibTeX() should use booktitle, got:\n%s", got)
	}
}

func TestDetermineEntryType(t *testing.T) {
	tests := []struct {
		name string
		ref  reference.Reference
		want string
	}{
		{"journal type", reference.Reference{Type: "JOUR"}, "article"},
		{"conference type", reference.Reference{Type: "CONF"}, "inproceedings"},
		{"conference paper", reference.Reference{Type: "CPAPER", Journal: "Nature"}, "inproceedings"},
		{"book", reference.Reference{Type: "BOOK"}, "book"},
		{"chapter", reference.Reference{Type: "CHAP"}, "incollection"},
		{"thesis", reference.Reference{Type: "THES"}, "phdthesis"},
		{"generic with proceedings venue", reference.Reference{Type: "GEN", Journal: "Proceedings of CHI"}, "inproceedings"},
		{"generic with symposium venue", reference.Reference{Journal: "Symposium on Visual Languages"}, "inproceedings"},
		{"generic journal venue", reference.Reference{Journal: "Computers & Education"}, "article"},
		{"nothing known", reference.Reference{}, "article"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := determineEntryType(tt.ref); got != tt.want {
				t.Errorf("determineEntryType() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatAuthors(t *testing.T) {
	tests := []struct {
		name    string
		authors []reference.Author
		want    string
	}{
		{"single author", []reference.Author{{First: "John", Last: "Smith"}}, "Smith, John"},
		{"two authors", []reference.Author{{First: "John", Last: "Smith"}, {First: "Jane", Last: "Doe"}}, "Smith, John and Doe, Jane"},
		{"last name only", []reference.Author{{Last: "Consortium"}}, "Consortium"},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatAuthors(tt.authors); got != tt.want {
				t.Errorf("formatAuthors() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEscapeLatex(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain text", "plain text"},
		{"100%", `100\%`},
		{"A & B", `A \& B`},
		{"$x$", `\$x\$`},
		{"snake_case", `snake\_case`},
		{"#1", `\#1`},
		{"{braces}", `\{braces\}`},
		{"~", `\textasciitilde{}`},
		{"^", `\textasciicircum{}`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := escapeLatex(tt.input); got != tt.want {
				t.Errorf("escapeLatex(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestToBibTeX_OptionalFields(t *testing.T) {
	ref := reference.Reference{Title: "Minimal"}

	got := ToBibTeX("ref-nd", ref)

	for _, absent := range []string{"doi =", "abstract =", "journal =", "year =", "author =", "keywords =", "url ="} {
		if strings.Contains(got, absent) {
			t.Errorf("ToBibTeX() should omit %q for empty field, got:\n%s", absent, got)
		}
	}
}

func TestToBibTeX_URL(t *testing.T) {
	ref := reference.Reference{Title: "Web", URLs: []string{"", "https://example.org/p"}}

	got := ToBibTeX("k", ref)

	if !strings.Contains(got, "url = {https://example.org/p}") {
		t.Errorf("ToBibTeX() should contain first non-blank url, got:\n%s", got)
	}
}

func TestCiteKey(t *testing.T) {
	tests := []struct {
		name string
		ref  reference.Reference
		want string
	}{
		{"author and year", reference.Reference{Authors: []reference.Author{{Last: "Smith"}}, Year: 2020}, "Smith2020"},
		{"punctuation stripped", reference.Reference{Authors: []reference.Author{{Last: "O'Brien-Lee"}}, Year: 2018}, "OBrienLee2018"},
		{"no year", reference.Reference{Authors: []reference.Author{{Last: "Kim"}}}, "Kimnd"},
		{"no author", reference.Reference{Year: 2015}, "ref2015"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CiteKey(tt.ref); got != tt.want {
				t.Errorf("CiteKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCiteKeys_Unique(t *testing.T) {
	smith := reference.Reference{Authors: []reference.Author{{Last: "Smith"}}, Year: 2020}
	refs := []reference.Reference{smith, smith, {Year: 2020}, smith}

	got := CiteKeys(refs)

	want := []string{"Smith2020", "Smith2020-2", "ref2020", "Smith2020-3"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("CiteKeys()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestToBibTeXList(t *testing.T) {
	refs := []reference.Reference{
		{Title: "Paper One", Authors: []reference.Author{{Last: "Ali"}}, Year: 2020},
		{Title: "Paper Two", Authors: []reference.Author{{Last: "Ali"}}, Year: 2020},
	}

	got := ToBibTeXList(refs)

	if !strings.Contains(got, "@article{Ali2020,") || !strings.Contains(got, "@article{Ali2020-2,") {
		t.Errorf("ToBibTeXList() should contain both keys, got:\n%s", got)
	}
	if strings.Count(got, "@article") != 2 {
		t.Errorf("ToBibTeXList() should contain 2 entries, got:\n%s", got)
	}
}

func TestToBibTeXList_Empty(t *testing.T) {
	if got := ToBibTeXList(nil); got != "" {
		t.Errorf("ToBibTeXList(nil) = %q, want empty string", got)
	}
}

func TestParseBibTeXFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "refs.bib")
	content := `@article{Smith2020,
  title = {One},
  doi = {10.1000/ABC},
}

@book{Lee2019,
  title = {Two},
}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	idx, err := ParseBibTeXFile(path)
	if err != nil {
		t.Fatalf("ParseBibTeXFile() error = %v", err)
	}
	if !idx.Keys["Smith2020"] || !idx.Keys["Lee2019"] {
		t.Errorf("Keys = %v, want Smith2020 and Lee2019", idx.Keys)
	}
	if !idx.HasEntry("other", "https://doi.org/10.1000/abc") {
		t.Error("HasEntry() should match DOI case-insensitively")
	}
	if !idx.HasEntry("Lee2019", "") {
		t.Error("HasEntry() should fall back to key")
	}
}

func TestParseBibTeXFile_Missing(t *testing.T) {
	idx, err := ParseBibTeXFile(filepath.Join(t.TempDir(), "missing.bib"))
	if err != nil {
		t.Fatalf("ParseBibTeXFile() error = %v", err)
	}
	if len(idx.Keys) != 0 || len(idx.DOIs) != 0 {
		t.Errorf("expected empty index, got %+v", idx)
	}
}

func TestBibTeXIndex_Filter(t *testing.T) {
	idx := NewBibTeXIndex()
	idx.Keys["Smith2020"] = true
	idx.DOIs["10.1000/abc"] = "Smith2020"

	refs := []reference.Reference{
		{DOI: "10.1000/ABC", Authors: []reference.Author{{Last: "Smith"}}, Year: 2020},
		{DOI: "10.1000/new", Authors: []reference.Author{{Last: "Smith"}}, Year: 2020},
		{Title: "No DOI", Authors: []reference.Author{{Last: "Smith"}}, Year: 2020},
	}

	kept, keys := idx.Filter(refs)

	if len(kept) != 2 {
		t.Fatalf("Filter() kept %d, want 2", len(kept))
	}
	if keys[0] != "Smith2020-2" || keys[1] != "Smith2020-3" {
		t.Errorf("Filter() keys = %v, want [Smith2020-2 Smith2020-3]", keys)
	}
}

func TestAppendToBibFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.bib")
	if err := AppendToBibFile(path, "@misc{a,\n}\n"); err != nil {
		t.Fatal(err)
	}
	if err := AppendToBibFile(path, "@misc{b,\n}\n"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(string(data), "@misc") != 2 {
		t.Errorf("file should contain two entries, got:\n%s", data)
	}
}

func TestParseBibTeX_DOIBeforeHeader(t *testing.T) {
	idx, err := ParseBibTeX(strings.NewReader("doi = {10.1/orphan}\n@misc{Kim2020,\n  DOI = \"10.1/Kept\",\n}\n"))
	if err != nil {
		t.Fatalf("ParseBibTeX() error = %v", err)
	}
	if _, ok := idx.DOIs["10.1/orphan"]; ok {
		t.Error("DOI before any entry header should be ignored")
	}
	if idx.DOIs["10.1/kept"] != "Kim2020" {
		t.Errorf("DOIs = %v, want 10.1/kept -> Kim2020", idx.DOIs)
	}
}

func TestBibTeXIndex_Filter_RepeatsWithinInput(t *testing.T) {
	idx := NewBibTeXIndex()
	ref := reference.Reference{DOI: "10.1/x", Authors: []reference.Author{{Last: "Ali"}}, Year: 2021}

	kept, keys := idx.Filter([]reference.Reference{ref, ref})

	if len(kept) != 1 || keys[0] != "Ali2021" {
		t.Errorf("Filter() = %d kept, keys %v, want 1 kept as Ali2021", len(kept), keys)
	}
}
