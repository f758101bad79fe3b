package analysis

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"
)

// Output file names written by WriteOutputs.
const (
	FrequenciesCSV   = "term_frequencies.csv"
	CoOccurrenceCSV  = "term_co_occurrences.csv"
	TrendsCSV        = "term_trends.csv"
	TfIdfCSV         = "tfidf.csv"
	FrequenciesJSON  = "frequencies.json"
	CombinedJSON     = "combined_frequencies.json"
	CoOccurrenceJSON = "co_occurrences.json"
	TrendsJSON       = "trends.json"
	TfIdfJSON        = "tfidf.json"
	SummaryJSON      = "summary.json"
	ManifestJSON     = "manifest.json"
)

// RunInfo describes the inputs of an analysis run.
type RunInfo struct {
	Input    string `json:"input"`
	Taxonomy string `json:"taxonomy"`
}

// Manifest records what an analysis run wrote.
type Manifest struct {
	RunID     string    `json:"run_id"`
	CreatedAt time.Time `json:"created_at"`
	RunInfo
	Records      int      `json:"records"`
	WithAbstract int      `json:"with_abstract"`
	UniqueTerms  int      `json:"unique_terms"`
	Files        []string `json:"files"`
}

// WriteOutputs writes the report as CSV and JSON files plus a manifest into
// dir, creating it if needed.
func WriteOutputs(dir string, report *Report, info RunInfo) (*Manifest, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}

	m := &Manifest{
		RunID:        ulid.Make().String(),
		CreatedAt:    time.Now().UTC(),
		RunInfo:      info,
		Records:      report.Summary.Entries,
		WithAbstract: report.Summary.WithAbstract,
		UniqueTerms:  report.Summary.UniqueTerms,
	}

	csvFiles := []struct {
		name   string
		header []string
		rows   [][]string
	}{
		{FrequenciesCSV, []string{"category", "term", "frequency"}, cellRows(report.Frequencies.ByCategory)},
		{CoOccurrenceCSV, []string{"term1", "term2", "count"}, cellRows(report.CoOccurrence)},
		{TrendsCSV, []string{"year", "term", "count"}, cellRows(report.Trends)},
		{TfIdfCSV, []string{"term", "weight"}, weightRows(report.TfIdf)},
	}
	for _, f := range csvFiles {
		if err := writeCSV(filepath.Join(dir, f.name), f.header, f.rows); err != nil {
			return nil, err
		}
		m.Files = append(m.Files, f.name)
	}

	jsonFiles := []struct {
		name string
		v    any
	}{
		{FrequenciesJSON, report.Frequencies.ByCategory},
		{CombinedJSON, report.Frequencies.Combined},
		{CoOccurrenceJSON, report.CoOccurrence},
		{TrendsJSON, report.Trends},
		{TfIdfJSON, report.TfIdf},
		{SummaryJSON, report.Summary},
	}
	for _, f := range jsonFiles {
		if err := WriteJSON(filepath.Join(dir, f.name), f.v); err != nil {
			return nil, err
		}
		m.Files = append(m.Files, f.name)
	}

	if err := WriteJSON(filepath.Join(dir, ManifestJSON), m); err != nil {
		return nil, err
	}
	return m, nil
}

func cellRows(t *Table) [][]string {
	var rows [][]string
	for _, c := range t.Cells() {
		rows = append(rows, []string{c.Row, c.Column, strconv.Itoa(c.Count)})
	}
	return rows
}

func weightRows(w *Weights) [][]string {
	var rows [][]string
	for _, e := range w.Entries() {
		rows = append(rows, []string{e.Term, strconv.FormatFloat(e.Weight, 'f', 6, 64)})
	}
	return rows
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

// WriteJSON writes v as indented JSON.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}
