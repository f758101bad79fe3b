// Package dedupe merges export files into the persisted unique and
// duplicate reference tables.
package dedupe

import (
	"fmt"
	"strings"

	"github.com/matsen/litreview/internal/reference"
)

// Kind tells where an identity key came from.
type Kind string

const (
	KindDOI       Kind = "doi"
	KindURL       Kind = "url"
	KindSynthetic Kind = "synthetic"
)

// SyntheticPrefix starts every synthetic key.
const SyntheticPrefix = "no_identifier_"

// Key identifies the work a record refers to.
type Key struct {
	Kind  Kind   `json:"kind"`
	Value string `json:"value"`
}

func (k Key) String() string {
	return k.Value
}

// IsSynthetic reports whether the key was invented for a record that
// carries no identifier.
func (k Key) IsSynthetic() bool {
	return k.Kind == KindSynthetic
}

// KeyFor returns the identity key of a record: the normalized DOI if present,
// else the first non-empty URL. It returns false when the record has neither.
func KeyFor(ref reference.Reference) (Key, bool) {
	if doi := reference.NormalizeDOI(ref.DOI); doi != "" {
		return Key{Kind: KindDOI, Value: doi}, true
	}
	if u := strings.TrimSpace(ref.FirstURL()); u != "" {
		return Key{Kind: KindURL, Value: u}, true
	}
	return Key{}, false
}

// syntheticKey builds the key for the n-th entry of a table.
func syntheticKey(n int) Key {
	return Key{Kind: KindSynthetic, Value: fmt.Sprintf("%s%d", SyntheticPrefix, n)}
}
