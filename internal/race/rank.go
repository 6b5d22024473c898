package race

import (
	"cmp"
	"slices"
)

// Rank orders a scoreboard snapshot: score descending, then current index
// descending (further progress wins ties), then name ascending so the order
// is total. The input slice is not modified.
func Rank(teams []*Team) []*Team {
	ranked := slices.Clone(teams)
	slices.SortFunc(ranked, func(a, b *Team) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		if c := cmp.Compare(b.CurrentIndex, a.CurrentIndex); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return ranked
}
