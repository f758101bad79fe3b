package importer

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matsen/litreview/internal/export"
	"github.com/matsen/litreview/internal/reference"
)

const sampleRIS = `TY  - JOUR
TI  - Computational thinking in early childhood
AU  - Lopez, Ana
AU  - Kim, Min
PY  - 2021/05/03/
JO  - Computers & Education
PB  - Elsevier
DO  - 10.1016/J.COMPEDU.2021.1
UR  - https://example.org/a
KW  - coding
KW  - robotics
AB  - Young children learn coding
  through play.
SP  - 12
ER  - 

TY  - CONF
T1  - Unplugged activities
N2  - Abstract from N2.
DA  - 2019/10/01
ER  -
`

func TestParseRIS_Sample(t *testing.T) {
	refs, err := ParseRIS(strings.NewReader(sampleRIS))
	if err != nil {
		t.Fatalf("ParseRIS() error = %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("ParseRIS() returned %d refs, want 2", len(refs))
	}

	first := refs[0]
	if first.Type != "JOUR" {
		t.Errorf("Type = %q, want JOUR", first.Type)
	}
	if first.Title != "Computational thinking in early childhood" {
		t.Errorf("Title = %q", first.Title)
	}
	if len(first.Authors) != 2 || first.Authors[0] != (reference.Author{First: "Ana", Last: "Lopez"}) {
		t.Errorf("Authors = %+v", first.Authors)
	}
	if first.Year != 2021 {
		t.Errorf("Year = %d, want 2021", first.Year)
	}
	if first.Journal != "Computers & Education" || first.Publisher != "Elsevier" {
		t.Errorf("Journal/Publisher = %q/%q", first.Journal, first.Publisher)
	}
	if first.DOI != "10.1016/J.COMPEDU.2021.1" {
		t.Errorf("DOI = %q (case must be preserved)", first.DOI)
	}
	if !reflect.DeepEqual(first.Keywords, []string{"coding", "robotics"}) {
		t.Errorf("Keywords = %v", first.Keywords)
	}
	if first.Abstract != "Young children learn coding through play." {
		t.Errorf("Abstract = %q, want continuation joined", first.Abstract)
	}
	if !reflect.DeepEqual(first.Extra, []reference.Field{{Tag: "SP", Value: "12"}}) {
		t.Errorf("Extra = %+v", first.Extra)
	}

	second := refs[1]
	if second.Title != "Unplugged activities" || second.Abstract != "Abstract from N2." {
		t.Errorf("second = %+v", second)
	}
	if second.Year != 2019 {
		t.Errorf("Year = %d, want 2019 from DA fallback", second.Year)
	}
}

func TestParseRIS_Empty(t *testing.T) {
	refs, err := ParseRIS(strings.NewReader("\n\n"))
	if err != nil {
		t.Fatalf("ParseRIS() error = %v", err)
	}
	if len(refs) != 0 {
		t.Errorf("ParseRIS() returned %d refs, want 0", len(refs))
	}
}

func TestParseRIS_NoFields(t *testing.T) {
	refs, err := ParseRIS(strings.NewReader("TY  - GEN\nER  - \n"))
	if err != nil {
		t.Fatalf("ParseRIS() error = %v", err)
	}
	if len(refs) != 1 || refs[0].DOI != "" || refs[0].HasAbstract() || refs[0].HasYear() {
		t.Errorf("ParseRIS() = %+v, want one empty GEN record", refs)
	}
}

func TestParseRIS_BOMAndNBSP(t *testing.T) {
	input := "\ufeffTY  - JOUR\nTI  - Early\u00a0childhood\nER  - \n"

	refs, err := ParseRIS(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseRIS() error = %v", err)
	}
	if len(refs) != 1 {
		t.Fatalf("ParseRIS() returned %d refs, want 1", len(refs))
	}
	if refs[0].Type != "JOUR" {
		t.Errorf("Type = %q, BOM should be stripped", refs[0].Type)
	}
	if refs[0].Title != "Early childhood" {
		t.Errorf("Title = %q, NBSP should become a space", refs[0].Title)
	}
}

func TestParseRIS_CRLF(t *testing.T) {
	input := "TY  - JOUR\r\nTI  - Windows export\r\nER  - \r\n"

	refs, err := ParseRIS(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseRIS() error = %v", err)
	}
	if len(refs) != 1 || refs[0].Title != "Windows export" {
		t.Errorf("ParseRIS() = %+v", refs)
	}
}

func TestParseRIS_Corrupt(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantLine int
	}{
		{"unterminated", "TY  - JOUR\nTI  - Open\n", 2},
		{"nested TY", "TY  - JOUR\nTY  - BOOK\nER  - \n", 2},
		{"stray ER", "ER  - \n", 1},
		{"tag outside record", "TY  - JOUR\nER  - \nTI  - Orphan\n", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRIS(strings.NewReader(tt.input))
			if !errors.Is(err, ErrCorrupt) {
				t.Fatalf("ParseRIS() error = %v, want ErrCorrupt", err)
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("ParseRIS() error = %T, want *ParseError", err)
			}
			if pe.Line != tt.wantLine {
				t.Errorf("ParseError.Line = %d, want %d", pe.Line, tt.wantLine)
			}
		})
	}
}

func TestParseRIS_RoundTrip(t *testing.T) {
	refs, err := ParseRIS(strings.NewReader(sampleRIS))
	if err != nil {
		t.Fatalf("ParseRIS() error = %v", err)
	}

	var buf bytes.Buffer
	if err := export.WriteRIS(&buf, refs); err != nil {
		t.Fatalf("WriteRIS() error = %v", err)
	}

	again, err := ParseRIS(&buf)
	if err != nil {
		t.Fatalf("ParseRIS() of written output error = %v", err)
	}
	if !reflect.DeepEqual(refs, again) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", again, refs)
	}
}

func TestParseYear(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"2021", 2021},
		{"2021/05/03/", 2021},
		{"May 2019", 2019},
		{"", 0},
		{"n.d.", 0},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseYear(tt.input); got != tt.want {
				t.Errorf("parseYear(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		path   string
		want   Format
		wantOK bool
	}{
		{"scopus.ris", FormatRIS, true},
		{"WOS.TXT", FormatRIS, true},
		{"paperpile.json", FormatPaperpile, true},
		{"notes.md", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := FormatFor(tt.path)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("FormatFor(%q) = %q, %v; want %q, %v", tt.path, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	risPath := filepath.Join(dir, "a.ris")
	jsonPath := filepath.Join(dir, "b.json")
	badPath := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(risPath, []byte(sampleRIS), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(jsonPath, []byte(`[{"title": "ok"}, {"abstract": "no id"}]`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(badPath, []byte(`{not json`), 0644); err != nil {
		t.Fatal(err)
	}

	f, err := ParseFile(risPath)
	if err != nil {
		t.Fatalf("ParseFile(ris) error = %v", err)
	}
	if f.Format != FormatRIS || len(f.Refs) != 2 {
		t.Errorf("ParseFile(ris) = %s with %d refs", f.Format, len(f.Refs))
	}

	f, err = ParseFile(jsonPath)
	if err != nil {
		t.Fatalf("ParseFile(json) error = %v", err)
	}
	if len(f.Refs) != 1 || len(f.Skipped) != 1 {
		t.Errorf("ParseFile(json) = %d refs, %d skipped; want 1, 1", len(f.Refs), len(f.Skipped))
	}

	if _, err := ParseFile(badPath); !errors.Is(err, ErrCorrupt) {
		t.Errorf("ParseFile(bad json) error = %v, want ErrCorrupt", err)
	}
}
