package textproc

import (
	"reflect"
	"testing"
)

func TestLemmatize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"algorithms", "algorithm"},
		{"studies", "study"},
		{"classes", "class"},
		{"approaches", "approach"},
		{"boxes", "box"},
		{"process", "process"},
		{"analysis", "analysis"},
		{"status", "status"},
		{"children", "child"},
		{"loops", "loop"},
		{"debug", "debug"},
		{"its", "its"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Lemmatize(tt.input); got != tt.want {
				t.Errorf("Lemmatize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTokenizer_Tokenize(t *testing.T) {
	tok := NewDefaultTokenizer()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"stopwords and short tokens", "We debug the code", []string{"debug", "code"}},
		{"lemmatized plurals", "Children design Algorithms and loops.", []string{"child", "design", "algorithm", "loop"}},
		{"digits dropped", "Scratch 3.0 in 2021", []string{"scratch"}},
		{"hyphen splits", "problem-solving skills", []string{"problem", "solving", "skill"}},
		{"domain stopwords", "Computational thinking study of students", nil},
		{"spanish stopwords", "el pensamiento de los niños", []string{"pensamiento", "niño"}},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tok.Tokenize(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTokenizer_WithoutLemmatization(t *testing.T) {
	tok := NewDefaultTokenizer().WithoutLemmatization()
	got := tok.Tokenize("robots and loops")
	want := []string{"robots", "loops"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize() = %v, want %v", got, want)
	}
}

func TestWords(t *testing.T) {
	got := Words("Pre-test, POST-test; año 3")
	want := []string{"pre", "test", "post", "test", "año", "3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Words() = %v, want %v", got, want)
	}
}

func TestNGrams(t *testing.T) {
	tokens := []string{"pair", "programming", "activity"}

	got := NGrams(tokens, 1, 4)
	want := []string{
		"pair", "programming", "activity",
		"pair programming", "programming activity",
		"pair programming activity",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NGrams() = %v, want %v", got, want)
	}

	if got := NGrams(nil, 1, 4); got != nil {
		t.Errorf("NGrams(nil) = %v, want nil", got)
	}
}

func TestDistinctNGrams(t *testing.T) {
	got := DistinctNGrams([]string{"block", "programming", "block"})
	want := []string{"block", "programming", "block programming", "programming block", "block programming block"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DistinctNGrams() = %v, want %v", got, want)
	}
}
