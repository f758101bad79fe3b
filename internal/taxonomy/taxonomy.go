// Package taxonomy loads the category/term taxonomy, normalizes synonyms to
// canonical terms and finds terms in abstract text.
package taxonomy

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultYAML is the taxonomy shipped with the tool.
//
//go:embed default.yaml
var DefaultYAML []byte

var (
	// ErrTaxonomyNotFound is returned when the taxonomy file does not exist.
	ErrTaxonomyNotFound = errors.New("taxonomy file not found")

	// ErrInvalidTaxonomy is returned when the taxonomy file cannot be used.
	ErrInvalidTaxonomy = errors.New("invalid taxonomy")
)

// variantSeparators split an entry into its surface variants.
var variantSeparators = []string{" - ", " – "}

// Term is one taxonomy entry.
type Term struct {
	// Canonical is the first variant of the entry.
	Canonical string `json:"canonical"`

	// Variants lists every surface form, canonical first.
	Variants []string `json:"variants"`

	// Entry is the entry as written in the taxonomy file.
	Entry string `json:"entry"`
}

// Category is a named, ordered list of terms.
type Category struct {
	Name  string `json:"name"`
	Terms []Term `json:"terms"`
}

// Taxonomy is an ordered set of categories plus the derived synonym map.
// It is immutable after Load.
type Taxonomy struct {
	categories []Category

	// synonyms maps lower-cased alias -> canonical term
	synonyms map[string]string
	// canonical maps lower-cased canonical -> canonical term
	canonical map[string]string
	// aliases lists explicit aliases per canonical term, in declaration order
	aliases map[string][]string
	// termCategory maps canonical term -> first category containing it
	termCategory map[string]string
	// terms holds every distinct canonical term in taxonomy order
	terms []string
}

// ParseEntry splits a taxonomy entry into a Term.
func ParseEntry(entry string) Term {
	parts := []string{entry}
	for _, sep := range variantSeparators {
		var next []string
		for _, p := range parts {
			next = append(next, strings.Split(p, sep)...)
		}
		parts = next
	}

	var variants []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			variants = append(variants, p)
		}
	}
	if len(variants) == 0 {
		return Term{Entry: entry}
	}
	return Term{Canonical: variants[0], Variants: variants, Entry: entry}
}

// Load reads a taxonomy file. Both the sectioned layout
// (categories:/synonyms:) and a bare category -> terms mapping are accepted;
// JSON is read as YAML.
func Load(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrTaxonomyNotFound)
		}
		return nil, fmt.Errorf("reading taxonomy: %w", err)
	}
	tax, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tax, nil
}

// Default returns the shipped taxonomy.
func Default() *Taxonomy {
	tax, err := Parse(DefaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded taxonomy: %v", err))
	}
	return tax
}

// Parse builds a taxonomy from file contents.
func Parse(data []byte) (*Taxonomy, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTaxonomy, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidTaxonomy)
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top level must be a mapping", ErrInvalidTaxonomy)
	}

	categoriesNode := root
	var synonymsNode *yaml.Node
	if node := mappingValue(root, "categories"); node != nil {
		categoriesNode = node
		synonymsNode = mappingValue(root, "synonyms")
	}

	categories, err := parseCategories(categoriesNode)
	if err != nil {
		return nil, err
	}
	var explicit [][2]string
	if synonymsNode != nil {
		if explicit, err = parseSynonyms(synonymsNode); err != nil {
			return nil, err
		}
	}
	return build(categories, explicit)
}

// mappingValue returns the value node for key, or nil.
func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func parseCategories(node *yaml.Node) ([]Category, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: categories must be a mapping", ErrInvalidTaxonomy)
	}
	var categories []Category
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := strings.TrimSpace(node.Content[i].Value)
		list := node.Content[i+1]
		if list.Kind != yaml.SequenceNode {
			return nil, fmt.Errorf("%w: category %q must list terms", ErrInvalidTaxonomy, name)
		}
		cat := Category{Name: name}
		for _, item := range list.Content {
			if item.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("%w: category %q has a non-text term", ErrInvalidTaxonomy, name)
			}
			term := ParseEntry(item.Value)
			if term.Canonical == "" {
				continue
			}
			cat.Terms = append(cat.Terms, term)
		}
		categories = append(categories, cat)
	}
	if len(categories) == 0 {
		return nil, fmt.Errorf("%w: no categories", ErrInvalidTaxonomy)
	}
	return categories, nil
}

func parseSynonyms(node *yaml.Node) ([][2]string, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: synonyms must be a mapping", ErrInvalidTaxonomy)
	}
	var pairs [][2]string
	for i := 0; i+1 < len(node.Content); i += 2 {
		alias, target := node.Content[i], node.Content[i+1]
		if target.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%w: synonym %q must map to a term", ErrInvalidTaxonomy, alias.Value)
		}
		pairs = append(pairs, [2]string{alias.Value, target.Value})
	}
	return pairs, nil
}

func build(categories []Category, explicit [][2]string) (*Taxonomy, error) {
	t := &Taxonomy{
		categories:   categories,
		synonyms:     make(map[string]string),
		canonical:    make(map[string]string),
		aliases:      make(map[string][]string),
		termCategory: make(map[string]string),
	}

	setAlias := func(alias, canonical string) {
		key := normKey(alias)
		if key == "" {
			return
		}
		// First declaration wins among aliases
		if _, ok := t.synonyms[key]; !ok {
			t.synonyms[key] = canonical
		}
	}

	for _, cat := range categories {
		for _, term := range cat.Terms {
			if _, seen := t.termCategory[term.Canonical]; !seen {
				t.termCategory[term.Canonical] = cat.Name
				t.terms = append(t.terms, term.Canonical)
			}
			if _, ok := t.canonical[normKey(term.Canonical)]; !ok {
				t.canonical[normKey(term.Canonical)] = term.Canonical
			}
		}
	}

	for _, cat := range categories {
		for _, term := range cat.Terms {
			for _, v := range term.Variants[1:] {
				setAlias(v, term.Canonical)
			}
			if base, ok := thinkingBase(term.Canonical); ok {
				setAlias(base, term.Canonical)
			}
		}
	}

	for _, pair := range explicit {
		canonical, ok := t.resolveTarget(pair[1])
		if !ok {
			return nil, fmt.Errorf("%w: synonym %q maps to unknown term %q", ErrInvalidTaxonomy, pair[0], pair[1])
		}
		setAlias(pair[0], canonical)
		if normKey(pair[0]) != normKey(canonical) {
			t.aliases[canonical] = append(t.aliases[canonical], strings.TrimSpace(pair[0]))
		}
	}

	// Canonical terms always map to themselves
	for key, canonical := range t.canonical {
		t.synonyms[key] = canonical
	}

	return t, nil
}

// resolveTarget maps a synonym target (a canonical term or a full entry) to
// its canonical term.
func (t *Taxonomy) resolveTarget(target string) (string, bool) {
	term := ParseEntry(target)
	canonical, ok := t.canonical[normKey(term.Canonical)]
	return canonical, ok
}

// thinkingBase returns "X" for an entry "X thinking".
func thinkingBase(term string) (string, bool) {
	words := strings.Fields(term)
	if len(words) < 2 || !strings.EqualFold(words[len(words)-1], "thinking") {
		return "", false
	}
	return strings.Join(words[:len(words)-1], " "), true
}

func normKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Normalize maps a term to its canonical form: synonym lookup first, then a
// case-insensitive canonical lookup. Unknown terms are returned unchanged.
func (t *Taxonomy) Normalize(term string) string {
	key := normKey(term)
	if canonical, ok := t.synonyms[key]; ok {
		return canonical
	}
	if canonical, ok := t.canonical[key]; ok {
		return canonical
	}
	return term
}

// IsCanonical reports whether term is a canonical term (case-insensitive).
func (t *Taxonomy) IsCanonical(term string) bool {
	_, ok := t.canonical[normKey(term)]
	return ok
}

// Categories returns the categories in file order.
func (t *Taxonomy) Categories() []Category {
	out := make([]Category, len(t.categories))
	copy(out, t.categories)
	return out
}

// Category returns the named category.
func (t *Taxonomy) Category(name string) (Category, bool) {
	for _, c := range t.categories {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

// Terms returns every distinct canonical term in taxonomy order.
func (t *Taxonomy) Terms() []string {
	out := make([]string, len(t.terms))
	copy(out, t.terms)
	return out
}

// CategoryOf returns the first category containing the term after
// normalization.
func (t *Taxonomy) CategoryOf(term string) (string, bool) {
	cat, ok := t.termCategory[t.Normalize(term)]
	return cat, ok
}

// TermCategories returns canonical term -> first category.
func (t *Taxonomy) TermCategories() map[string]string {
	out := make(map[string]string, len(t.termCategory))
	for k, v := range t.termCategory {
		out[k] = v
	}
	return out
}

// Synonyms returns a copy of the lower-cased alias -> canonical map.
func (t *Taxonomy) Synonyms() map[string]string {
	out := make(map[string]string, len(t.synonyms))
	for k, v := range t.synonyms {
		out[k] = v
	}
	return out
}

// MatchForms returns the surface forms searched for a term: its entry
// variants followed by explicit aliases.
func (t *Taxonomy) MatchForms(term Term) []string {
	forms := append([]string(nil), term.Variants...)
	return append(forms, t.aliases[term.Canonical]...)
}

// TermFor looks up the Term of a canonical term, returning false for terms
// outside the taxonomy.
func (t *Taxonomy) TermFor(canonical string) (Term, bool) {
	for _, c := range t.categories {
		for _, term := range c.Terms {
			if term.Canonical == canonical {
				return term, true
			}
		}
	}
	return Term{}, false
}
