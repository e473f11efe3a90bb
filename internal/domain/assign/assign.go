// Package assign numbers live example candidates deterministically.
package assign

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/koetsu-dev/exemplar/internal/domain/model"
)

const (
	slugMaxRunes = 60
	slugFallback = "example"
)

// Slugify converts a title to a filesystem-safe slug: NFKC normalization,
// lowercase, [a-z0-9-] only, collapsed hyphens, clamped to 60 runes.
func Slugify(title string) string {
	s := strings.ToLower(norm.NFKC.String(title))

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		default:
			if b.Len() > 0 && b.String()[b.Len()-1] != '-' {
				b.WriteRune('-')
			}
		}
	}
	slug := b.String()

	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	slug = strings.Trim(slug, "-")

	if runes := []rune(slug); len(runes) > slugMaxRunes {
		slug = strings.TrimRight(string(runes[:slugMaxRunes]), "-")
	}
	if slug == "" {
		slug = slugFallback
	}
	return slug
}

// Assign orders the live (non-deleted) candidates and assigns two-digit
// zero-padded sequence identifiers of the form NN-slug.
//
// Ordering: complexity tier (simple < moderate < complex), then
// case-insensitive title, then original discovery order. Numbering restarts
// at 1 within the full ordered set and is recomputed from scratch each run;
// the StableKey of each candidate is preserved so downstream folders can be
// renamed rather than orphaned. Assign is a pure, deterministic function of
// its input set: it returns a new ordered slice and never mutates the input.
func Assign(candidates []model.ExampleCandidate) []model.ExampleCandidate {
	ordered := make([]model.ExampleCandidate, len(candidates))
	copy(ordered, candidates)

	sort.SliceStable(ordered, func(i, j int) bool {
		ri, rj := ordered[i].Complexity.Rank(), ordered[j].Complexity.Rank()
		if ri != rj {
			return ri < rj
		}
		ti, tj := strings.ToLower(ordered[i].Title), strings.ToLower(ordered[j].Title)
		return ti < tj
	})

	for i := range ordered {
		ordered[i].ExampleID = fmt.Sprintf("%02d-%s", i+1, Slugify(ordered[i].Title))
		ordered[i].Folder = ordered[i].ExampleID
	}
	return ordered
}
