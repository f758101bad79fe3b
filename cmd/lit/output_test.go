package main

import (
	"testing"

	"github.com/matsen/litreview/internal/cluster"
	"github.com/matsen/litreview/internal/reference"
)

func TestTruncateString(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"a longer title here", 10, "a longe..."},
		{"niños pequeños", 8, "niños..."},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := truncateString(tt.in, tt.maxLen); got != tt.want {
				t.Errorf("truncateString(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestFormatAuthorsShort(t *testing.T) {
	authors := []reference.Author{
		{First: "Marina", Last: "Bers"},
		{First: "Louise", Last: "Flannery"},
		{Last: "Kazakoff"},
		{First: "Amanda", Last: "Sullivan"},
	}
	tests := []struct {
		name     string
		authors  []reference.Author
		maxCount int
		want     string
	}{
		{"none", nil, 3, ""},
		{"one", authors[:1], 3, "Bers M"},
		{"last only", authors[2:3], 3, "Kazakoff"},
		{"et al", authors, 3, "Bers M, Flannery L, Kazakoff, et al."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatAuthorsShort(tt.authors, tt.maxCount); got != tt.want {
				t.Errorf("formatAuthorsShort() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatYear(t *testing.T) {
	if got := formatYear(reference.Reference{Year: 2019}); got != "2019" {
		t.Errorf("formatYear() = %q, want 2019", got)
	}
	if got := formatYear(reference.Reference{}); got != "n.d." {
		t.Errorf("formatYear() = %q, want n.d.", got)
	}
}

func TestParseMethods(t *testing.T) {
	got, err := parseMethods([]string{" Ward", "complete"})
	if err != nil {
		t.Fatalf("parseMethods() error = %v", err)
	}
	if len(got) != 2 || got[0] != cluster.Ward || got[1] != cluster.Complete {
		t.Errorf("parseMethods() = %v, want [ward complete]", got)
	}

	if _, err := parseMethods([]string{"centroid"}); err == nil {
		t.Error("parseMethods() should reject unknown methods")
	}
}

func TestFormatScore(t *testing.T) {
	v := 0.87654
	if got := formatScore(&v); got != "0.877" {
		t.Errorf("formatScore() = %q, want 0.877", got)
	}
	if got := formatScore(nil); got != "n/a" {
		t.Errorf("formatScore(nil) = %q, want n/a", got)
	}
}
