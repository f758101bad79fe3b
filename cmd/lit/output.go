package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/matsen/litreview/internal/reference"
)

// Constants for output formatting.
const (
	DefaultSearchLimit = 50 // Default limit for search commands

	SearchTitleMaxLen = 70 // Used in search result summaries
	RecordTitleMaxLen = 60 // Used in term record listings
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	runExitHooks()
	os.Exit(code)
}

var (
	exitHooksMu sync.Mutex
	exitHooks   []func() error
)

// atExit registers fn to run before exitWithError terminates the process.
// Hooks run in reverse registration order.
func atExit(fn func() error) {
	exitHooksMu.Lock()
	defer exitHooksMu.Unlock()
	exitHooks = append(exitHooks, fn)
}

// runExitHooks runs and clears the registered hooks.
func runExitHooks() {
	exitHooksMu.Lock()
	hooks := exitHooks
	exitHooks = nil
	exitHooksMu.Unlock()
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i](); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
	}
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// truncateString truncates a string to maxLen runes, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

// formatAuthorShort formats an author as "Last F" (abbreviated first name).
func formatAuthorShort(a reference.Author) string {
	if a.First != "" {
		return a.Last + " " + string([]rune(a.First)[0])
	}
	return a.Last
}

// formatAuthorsShort formats authors with abbreviation and "et al." for more than maxCount.
func formatAuthorsShort(authors []reference.Author, maxCount int) string {
	if len(authors) == 0 {
		return ""
	}

	var names []string
	for i, a := range authors {
		if i >= maxCount {
			names = append(names, "et al.")
			break
		}
		names = append(names, formatAuthorShort(a))
	}
	return strings.Join(names, ", ")
}

// formatYear renders a publication year, or "n.d." when unknown.
func formatYear(ref reference.Reference) string {
	if !ref.HasYear() {
		return "n.d."
	}
	return fmt.Sprintf("%d", ref.Year)
}

// printRefSummary prints one record in the style of search results.
func printRefSummary(label string, ref reference.Reference) {
	fmt.Printf("[%s] %s\n", label, truncateString(ref.Title, SearchTitleMaxLen))
	if len(ref.Authors) > 0 {
		fmt.Printf("    %s\n", formatAuthorsShort(ref.Authors, 3))
	}
	if ref.Journal != "" {
		fmt.Printf("    %s (%s)\n", ref.Journal, formatYear(ref))
	} else {
		fmt.Printf("    (%s)\n", formatYear(ref))
	}
	fmt.Println()
}
