package importer

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/matsen/litreview/internal/reference"
)

// Format identifies an export file format.
type Format string

const (
	FormatRIS       Format = "ris"
	FormatPaperpile Format = "paperpile"
)

// ExportExtensions lists the file extensions recognised as exports.
var ExportExtensions = []string{".ris", ".txt", ".json"}

// FormatFor returns the format implied by a file name, or false if the
// extension is not an export extension.
func FormatFor(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ris", ".txt":
		return FormatRIS, true
	case ".json":
		return FormatPaperpile, true
	default:
		return "", false
	}
}

// File holds the references parsed from one export file.
type File struct {
	Path   string
	Format Format
	Refs   []reference.Reference

	// Skipped lists entries dropped from an otherwise readable export.
	Skipped []error
}

// ParseFile reads and parses one export file according to its extension.
// Unreadable content is reported as an error wrapping ErrCorrupt.
func ParseFile(path string) (File, error) {
	format, ok := FormatFor(path)
	if !ok {
		return File{}, fmt.Errorf("%s: unsupported export extension", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("reading %s: %w", path, err)
	}

	f := File{Path: path, Format: format}
	switch format {
	case FormatPaperpile:
		refs, errs := ParsePaperpile(data)
		if len(errs) == 1 && errors.Is(errs[0], ErrCorrupt) {
			return File{}, fmt.Errorf("%s: %w", path, errs[0])
		}
		f.Refs, f.Skipped = refs, errs
	default:
		refs, err := ParseRIS(bytes.NewReader(data))
		if err != nil {
			return File{}, fmt.Errorf("%s: %w", path, err)
		}
		f.Refs = refs
	}
	return f, nil
}
