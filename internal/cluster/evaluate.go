package cluster

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"

	"github.com/matsen/litreview/internal/reference"
)

// Options configures Evaluate.
type Options struct {
	// MaxRecords caps the eligible records used; <= 0 means DefaultMaxRecords.
	MaxRecords int

	// Methods lists the strategies compared; empty means DefaultMethods.
	Methods []Method
}

// MethodScore holds the scores of one linkage strategy.
type MethodScore struct {
	Method Method `json:"method"`

	// Cophenetic is nil when the correlation is undefined.
	Cophenetic *float64 `json:"cophenetic"`

	// ARI and NMI are nil when the labels have fewer than two classes.
	ARI *float64 `json:"adjusted_rand_index"`
	NMI *float64 `json:"normalized_mutual_info"`

	Clusters int     `json:"clusters"`
	Linkage  []Merge `json:"-"`
}

// Report compares linkage strategies on one corpus.
type Report struct {
	Records    int           `json:"records"`
	Labels     int           `json:"labels"`
	Vocabulary int           `json:"vocabulary"`
	Methods    []MethodScore `json:"methods"`

	// Best is the method with the highest cophenetic correlation.
	Best  Method   `json:"best,omitempty"`
	Notes []string `json:"notes,omitempty"`
}

// Evaluate prepares, vectorizes and scores refs.
func Evaluate(refs []reference.Reference, opts Options) (*Report, error) {
	docs := Prepare(refs, opts.MaxRecords)
	if len(docs) < 2 {
		return nil, fmt.Errorf("%w: %d records with abstract and keywords, need at least 2", ErrDegenerateInput, len(docs))
	}
	vec := Vectorize(Texts(docs))
	if vec.Matrix == nil {
		return nil, fmt.Errorf("%w: abstracts have no usable terms", ErrDegenerateInput)
	}
	report, err := CompareLinkageMethods(vec.Matrix, Labels(docs), opts.Methods)
	if err != nil {
		return nil, err
	}
	report.Vocabulary = len(vec.Vocabulary)
	return report, nil
}

// CompareLinkageMethods clusters the rows of x with each method and scores
// the result internally (cophenetic correlation) and against labels.
func CompareLinkageMethods(x mat.Matrix, labels []int, methods []Method) (*Report, error) {
	n, _ := x.Dims()
	if n < 2 {
		return nil, fmt.Errorf("%w: %d observations, need at least 2", ErrDegenerateInput, n)
	}
	if len(labels) != n {
		return nil, fmt.Errorf("got %d labels for %d observations", len(labels), n)
	}
	if len(methods) == 0 {
		methods = DefaultMethods
	}

	distinct := make(map[int]bool)
	for _, l := range labels {
		distinct[l] = true
	}
	report := &Report{Records: n, Labels: len(distinct)}
	if len(distinct) < 2 {
		report.Notes = append(report.Notes, "fewer than 2 distinct keyword labels; external scores omitted")
	}

	dists := PairwiseDistances(x)
	bestScore := 0.0
	for _, method := range methods {
		merges, err := Linkage(dists, n, method)
		if err != nil {
			return nil, err
		}
		score := MethodScore{Method: method, Linkage: merges}

		if r, ok := CopheneticCorrelation(merges, dists, n); ok {
			score.Cophenetic = &r
			if report.Best == "" || r > bestScore {
				report.Best, bestScore = method, r
			}
		}

		if len(distinct) >= 2 {
			pred := Cut(merges, n, len(distinct))
			score.Clusters = len(distinct)
			ari, err := AdjustedRandIndex(labels, pred)
			if err != nil {
				return nil, err
			}
			nmi, err := NormalizedMutualInfo(labels, pred)
			if err != nil {
				return nil, err
			}
			score.ARI, score.NMI = &ari, &nmi
		}
		report.Methods = append(report.Methods, score)
	}
	if report.Best == "" {
		report.Notes = append(report.Notes, "pairwise distances have no variance; cophenetic correlation undefined")
	}
	return report, nil
}

// WriteLinkages writes linkage_<method>.json for every scored method and
// returns the file names.
func WriteLinkages(dir string, report *Report) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}
	var names []string
	for _, m := range report.Methods {
		name := fmt.Sprintf("linkage_%s.json", m.Method)
		data, err := json.MarshalIndent(m.Linkage, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), append(data, '\n'), 0644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", name, err)
		}
		names = append(names, name)
	}
	return names, nil
}
