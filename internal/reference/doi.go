package reference

import "strings"

// doiPrefixes are stripped, in order, before DOIs are compared.
var doiPrefixes = []string{
	"https://doi.org/",
	"http://doi.org/",
	"https://dx.doi.org/",
	"http://dx.doi.org/",
	"doi.org/",
	"doi:",
}

// NormalizeDOI normalizes a DOI for comparison.
// Removes common resolver prefixes and lowercases; DOIs are case-insensitive.
func NormalizeDOI(doi string) string {
	doi = strings.ToLower(strings.TrimSpace(doi))
	for _, p := range doiPrefixes {
		doi = strings.TrimPrefix(doi, p)
	}
	return strings.TrimSpace(doi)
}
