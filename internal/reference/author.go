package reference

import "strings"

// Author represents a record author as exported ("Last, First").
type Author struct {
	First string `json:"first,omitempty"` // First/given name(s)
	Last  string `json:"last"`            // Last/family name
}

// ParseAuthor parses an exported author name into an Author.
//
// Supported formats:
//   - "Yu"            → last="Yu"
//   - "Yu, Timothy"   → first="Timothy", last="Yu" (RIS style)
//   - "Timothy Yu"    → first="Timothy", last="Yu"
//
// Names are trimmed but case is preserved.
func ParseAuthor(input string) Author {
	input = strings.TrimSpace(input)
	if input == "" {
		return Author{}
	}

	if idx := strings.Index(input, ","); idx > 0 {
		return Author{
			First: strings.TrimSpace(input[idx+1:]),
			Last:  strings.TrimSpace(input[:idx]),
		}
	}

	parts := strings.Fields(input)
	if len(parts) == 1 {
		return Author{Last: parts[0]}
	}
	return Author{
		First: strings.Join(parts[:len(parts)-1], " "),
		Last:  parts[len(parts)-1],
	}
}

// String formats the author back to export style: "Last, First".
func (a Author) String() string {
	if a.First != "" {
		return a.Last + ", " + a.First
	}
	return a.Last
}

// IsZero reports whether the author has no name at all.
func (a Author) IsZero() bool {
	return a.First == "" && a.Last == ""
}
