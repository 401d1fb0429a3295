// Package fuzzy provides the substring/edit-distance similarity scoring
// shared by the resolver's fuzzy tier and the query engine's find fallback.
package fuzzy

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Score returns a similarity in [0,1] between a and b: 1.0 for an exact
// case-insensitive match, a substring-ratio score when one contains the
// other, otherwise a normalized edit-distance similarity.
func Score(a, b string) float64 {
	al, bl := strings.ToLower(a), strings.ToLower(b)
	if al == bl {
		return 1.0
	}
	longer, shorter := al, bl
	if len(shorter) > len(longer) {
		longer, shorter = shorter, longer
	}
	if len(longer) == 0 {
		return 0
	}
	if strings.Contains(longer, shorter) {
		return float64(len(shorter)) / float64(len(longer))
	}
	dist := levenshtein.ComputeDistance(al, bl)
	return 1 - float64(dist)/float64(len(longer))
}

// Floor is the minimum similarity score Find and ResolveQuerySymbol
// consider a candidate at all. The resolver takes its floor as a
// parameter instead (config.FuzzyFloor, whose default is also 0.3).
const Floor = 0.3
