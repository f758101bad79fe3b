package textproc

import "strings"

// MaxNGram is the longest n-gram the matcher considers.
const MaxNGram = 4

// NGrams returns the space-joined n-grams of tokens for every n in
// [minN, maxN], shortest first.
func NGrams(tokens []string, minN, maxN int) []string {
	if minN < 1 {
		minN = 1
	}
	var grams []string
	for n := minN; n <= maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			grams = append(grams, strings.Join(tokens[i:i+n], " "))
		}
	}
	return grams
}

// DistinctNGrams returns the 1..MaxNGram joins of tokens without repeats,
// in first-seen order.
func DistinctNGrams(tokens []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, g := range NGrams(tokens, 1, MaxNGram) {
		if !seen[g] {
			seen[g] = true
			out = append(out, g)
		}
	}
	return out
}
