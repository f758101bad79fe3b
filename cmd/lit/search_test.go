package main

import (
	"testing"

	"github.com/matsen/litreview/internal/storage"
)

func TestParseYearRange(t *testing.T) {
	tests := []struct {
		expr     string
		wantFrom int
		wantTo   int
		wantErr  bool
	}{
		// Exact year
		{"2024", 2024, 2024, false},

		// Full range
		{"2020:2024", 2020, 2024, false},
		{"2020:2020", 2020, 2020, false},

		// Open-ended ranges
		{"2020:", 2020, 0, false},
		{":2024", 0, 2024, false},

		// Edge cases
		{"", 0, 0, false},
		{"  2024  ", 2024, 2024, false},
		{" 2020:2024 ", 2020, 2024, false},
		{":", 0, 0, false},

		// Errors
		{"abc", 0, 0, true},
		{"abc:2024", 0, 0, true},
		{"2020:abc", 0, 0, true},
		{"2024:2020", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			from, to, err := parseYearRange(tt.expr)

			if (err != nil) != tt.wantErr {
				t.Errorf("parseYearRange(%q) error = %v, wantErr %v", tt.expr, err, tt.wantErr)
				return
			}
			if !tt.wantErr && (from != tt.wantFrom || to != tt.wantTo) {
				t.Errorf("parseYearRange(%q) = %d, %d, want %d, %d", tt.expr, from, to, tt.wantFrom, tt.wantTo)
			}
		})
	}
}

func TestHasFilter(t *testing.T) {
	tests := []struct {
		name    string
		filters storage.SearchFilters
		want    bool
	}{
		{"empty", storage.SearchFilters{}, false},
		{"query", storage.SearchFilters{Keyword: "robots"}, true},
		{"author", storage.SearchFilters{Authors: []string{"Bers"}}, true},
		{"open year", storage.SearchFilters{YearTo: 2020}, true},
		{"type", storage.SearchFilters{Type: "JOUR"}, true},
		{"doi", storage.SearchFilters{DOI: "10.1/x"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hasFilter(tt.filters); got != tt.want {
				t.Errorf("hasFilter() = %v, want %v", got, tt.want)
			}
		})
	}
}
