package cluster

import (
	"math"
	"regexp"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// tokenRegex matches tokens of two or more word characters.
var tokenRegex = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Vectors is a TF-IDF document-term matrix.
type Vectors struct {
	// Matrix has one L2-normalized row per document.
	Matrix *mat.Dense

	// Vocabulary lists the column terms, sorted.
	Vocabulary []string
}

// Vectorize builds TF-IDF vectors: raw term counts times the smoothed idf
// ln((1+n)/(1+df))+1, rows L2-normalized. An empty vocabulary yields a nil
// Matrix.
func Vectorize(texts []string) *Vectors {
	counts := make([]map[string]int, len(texts))
	df := make(map[string]int)
	for i, text := range texts {
		counts[i] = make(map[string]int)
		for _, tok := range tokenRegex.FindAllString(text, -1) {
			if counts[i][tok] == 0 {
				df[tok]++
			}
			counts[i][tok]++
		}
	}

	vocab := make([]string, 0, len(df))
	for term := range df {
		vocab = append(vocab, term)
	}
	sort.Strings(vocab)
	v := &Vectors{Vocabulary: vocab}
	if len(texts) == 0 || len(vocab) == 0 {
		return v
	}

	n := float64(len(texts))
	idf := make([]float64, len(vocab))
	for j, term := range vocab {
		idf[j] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	v.Matrix = mat.NewDense(len(texts), len(vocab), nil)
	for i := range texts {
		row := v.Matrix.RawRowView(i)
		for j, term := range vocab {
			row[j] = float64(counts[i][term]) * idf[j]
		}
		if norm := floats.Norm(row, 2); norm > 0 {
			floats.Scale(1/norm, row)
		}
	}
	return v
}

// PairwiseDistances returns the condensed Euclidean distances between rows
// (i<j in row-major order).
func PairwiseDistances(x mat.Matrix) []float64 {
	r, _ := x.Dims()
	out := make([]float64, 0, r*(r-1)/2)
	for i := 0; i < r; i++ {
		for j := i + 1; j < r; j++ {
			out = append(out, rowDistance(x, i, j))
		}
	}
	return out
}

func rowDistance(x mat.Matrix, i, j int) float64 {
	return floats.Distance(mat.Row(nil, i, x), mat.Row(nil, j, x), 2)
}

// condensedIndex maps (i, j), i != j, into the condensed distance slice.
func condensedIndex(n, i, j int) int {
	if i > j {
		i, j = j, i
	}
	return n*i - i*(i+1)/2 + (j - i - 1)
}
