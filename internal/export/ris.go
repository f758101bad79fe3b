package export

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/matsen/litreview/internal/reference"
)

// DefaultRISType is written when a record carries no reference-type code.
const DefaultRISType = "GEN"

// ToRIS converts a reference to a RIS record terminated by "ER  - ".
//
// Modelled fields are written first in a fixed order, then Extra fields in
// their original order. Parsing the output yields an equal Reference.
func ToRIS(ref reference.Reference) string {
	var b strings.Builder

	entryType := ref.Type
	if entryType == "" {
		entryType = DefaultRISType
	}
	writeTag(&b, "TY", entryType)

	if ref.Title != "" {
		writeTag(&b, "TI", ref.Title)
	}
	for _, a := range ref.Authors {
		writeTag(&b, "AU", a.String())
	}
	if ref.Year > 0 {
		writeTag(&b, "PY", strconv.Itoa(ref.Year))
	}
	if ref.Journal != "" {
		writeTag(&b, "JO", ref.Journal)
	}
	if ref.Publisher != "" {
		writeTag(&b, "PB", ref.Publisher)
	}
	if ref.DOI != "" {
		writeTag(&b, "DO", ref.DOI)
	}
	for _, u := range ref.URLs {
		writeTag(&b, "UR", u)
	}
	for _, k := range ref.Keywords {
		writeTag(&b, "KW", k)
	}
	if ref.Abstract != "" {
		writeTag(&b, "AB", ref.Abstract)
	}
	for _, f := range ref.Extra {
		writeTag(&b, f.Tag, f.Value)
	}

	b.WriteString("ER  - \n")
	return b.String()
}

// WriteRIS writes references as consecutive RIS records separated by a blank line.
func WriteRIS(w io.Writer, refs []reference.Reference) error {
	bw := bufio.NewWriter(w)
	for i, ref := range refs {
		if i > 0 {
			if _, err := bw.WriteString("\n"); err != nil {
				return fmt.Errorf("writing separator: %w", err)
			}
		}
		if _, err := bw.WriteString(ToRIS(ref)); err != nil {
			return fmt.Errorf("writing record %d: %w", i+1, err)
		}
	}
	return bw.Flush()
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// writeTag writes one "XX  - value" line. Line breaks inside a value are
// folded to spaces so the value stays on its tag line.
func writeTag(b *strings.Builder, tag, value string) {
	value = strings.TrimSpace(lineBreaks.Replace(value))
	b.WriteString(tag)
	b.WriteString("  - ")
	b.WriteString(value)
	b.WriteString("\n")
}
