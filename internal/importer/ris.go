// Package importer provides functions to import references from external formats.
package importer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/matsen/litreview/internal/reference"
)

// MaxRISLineCapacity is the maximum buffer size for a single RIS line (1MB).
// Abstracts are usually exported on one line.
const MaxRISLineCapacity = 1024 * 1024

// ErrCorrupt marks an export that cannot be parsed as RIS.
var ErrCorrupt = errors.New("corrupt RIS data")

// ParseError describes where an export stopped making sense.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Unwrap lets errors.Is(err, ErrCorrupt) match every parse error.
func (e *ParseError) Unwrap() error {
	return ErrCorrupt
}

// tagLineRegex matches "XX  - value"; some exporters drop the space after the hyphen.
var tagLineRegex = regexp.MustCompile(`^([A-Z][A-Z0-9])  -(?: (.*))?$`)

// yearRegex finds the first four-digit run in a date value ("2021/05/03/").
var yearRegex = regexp.MustCompile(`\d{4}`)

// cleanText normalizes export text: BOM removal, non-breaking spaces to
// plain spaces, NFC composition.
func cleanText(r io.Reader) io.Reader {
	nbsp := runes.Map(func(r rune) rune {
		if r == '\u00a0' {
			return ' '
		}
		return r
	})
	return transform.NewReader(r, transform.Chain(
		unicode.BOMOverride(unicode.UTF8.NewDecoder()),
		nbsp,
		norm.NFC,
	))
}

// ParseRIS parses a RIS export and returns its references in file order.
//
// Content outside records that is not a tag line is ignored. A record that
// never terminates, an ER outside a record, or a tag line outside a record
// is reported as a *ParseError wrapping ErrCorrupt.
func ParseRIS(r io.Reader) ([]reference.Reference, error) {
	scanner := bufio.NewScanner(cleanText(r))
	buf := make([]byte, 64*1024)
	scanner.Buffer(buf, MaxRISLineCapacity)

	var refs []reference.Reference
	var fields []reference.Field
	inRecord := false
	recordStart := 0
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")

		m := tagLineRegex.FindStringSubmatch(line)
		if m == nil {
			if strings.TrimSpace(line) == "" {
				continue
			}
			if inRecord && len(fields) > 0 {
				// Continuation of a wrapped value
				last := &fields[len(fields)-1]
				last.Value = joinContinuation(last.Value, strings.TrimSpace(line))
			}
			continue
		}

		tag, value := m[1], strings.TrimSpace(m[2])
		switch {
		case tag == "TY":
			if inRecord {
				return nil, &ParseError{Line: lineNum, Msg: fmt.Sprintf("record starting at line %d has no ER before next TY", recordStart)}
			}
			inRecord = true
			recordStart = lineNum
			fields = []reference.Field{{Tag: tag, Value: value}}
		case tag == "ER":
			if !inRecord {
				return nil, &ParseError{Line: lineNum, Msg: "ER outside of a record"}
			}
			refs = append(refs, FromFields(fields))
			inRecord = false
			fields = nil
		case !inRecord:
			return nil, &ParseError{Line: lineNum, Msg: fmt.Sprintf("tag %s outside of a record", tag)}
		default:
			fields = append(fields, reference.Field{Tag: tag, Value: value})
		}
	}

	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, &ParseError{Line: lineNum + 1, Msg: "line exceeds maximum length"}
		}
		return nil, fmt.Errorf("reading RIS data: %w", err)
	}
	if inRecord {
		return nil, &ParseError{Line: lineNum, Msg: fmt.Sprintf("record starting at line %d is not terminated", recordStart)}
	}

	return refs, nil
}

func joinContinuation(prev, next string) string {
	if prev == "" {
		return next
	}
	return prev + " " + next
}

// FromFields converts the tagged fields of one record into a Reference.
// Tags the model does not name, and repeats of single-valued tags, are kept
// in Extra in their original order.
func FromFields(fields []reference.Field) reference.Reference {
	var ref reference.Reference
	var dateFallback string

	for _, f := range fields {
		v := f.Value
		switch f.Tag {
		case "TY":
			ref.Type = v
		case "DO":
			if ref.DOI == "" && v != "" {
				ref.DOI = v
			} else {
				ref.Extra = append(ref.Extra, f)
			}
		case "UR":
			if v != "" {
				ref.URLs = append(ref.URLs, v)
			}
		case "AB", "N2":
			if ref.Abstract == "" && v != "" {
				ref.Abstract = v
			} else {
				ref.Extra = append(ref.Extra, f)
			}
		case "TI", "T1":
			if ref.Title == "" && v != "" {
				ref.Title = v
			} else {
				ref.Extra = append(ref.Extra, f)
			}
		case "PY", "Y1":
			if year := parseYear(v); ref.Year == 0 && year > 0 {
				ref.Year = year
			} else {
				ref.Extra = append(ref.Extra, f)
			}
		case "JO", "JF", "JA":
			if ref.Journal == "" && v != "" {
				ref.Journal = v
			} else {
				ref.Extra = append(ref.Extra, f)
			}
		case "PB":
			if ref.Publisher == "" && v != "" {
				ref.Publisher = v
			} else {
				ref.Extra = append(ref.Extra, f)
			}
		case "AU", "A1":
			if a := reference.ParseAuthor(v); !a.IsZero() {
				ref.Authors = append(ref.Authors, a)
			}
		case "KW":
			if v != "" {
				ref.Keywords = append(ref.Keywords, v)
			}
		case "DA":
			dateFallback = v
			ref.Extra = append(ref.Extra, f)
		default:
			ref.Extra = append(ref.Extra, f)
		}
	}

	if ref.Year == 0 && dateFallback != "" {
		ref.Year = parseYear(dateFallback)
	}

	return ref
}

// parseYear extracts a publication year, returning 0 when none is present.
func parseYear(s string) int {
	m := yearRegex.FindString(s)
	if m == "" {
		return 0
	}
	year, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return year
}
