// Package selector ranks discovered funding routes and exposes the top choice.
package selector

import (
	"sort"

	"github.com/ClipFinance/funding-lib/common/types"
)

// Selection is the ranked outcome of one discovery cycle.
//
// Fields:
// - Routes: all viable routes, fastest first.
// - Best: the top-ranked route, nil when Routes is empty.
// - InsufficientBalance: true when source balances existed but none survived
//   filtering. Distinct from having no balances at all.
type Selection struct {
	Routes              []types.RouteData
	Best                *types.RouteData
	InsufficientBalance bool
}

// Rank sorts routes by estimated duration ascending, fastest first. The sort
// is stable: ties keep their discovery order. The input slice is not mutated.
func Rank(routes []types.RouteData) []types.RouteData {
	ranked := make([]types.RouteData, len(routes))
	copy(ranked, routes)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Route.ExecutionDuration < ranked[j].Route.ExecutionDuration
	})

	return ranked
}

// Select ranks the committed route list and derives the insufficient-balance
// state. hadBalances reports whether any source balance existed before the
// sufficiency and quoting filters ran; selection is a pure function of these
// inputs and is recomputed from scratch on every discovery cycle.
func Select(routes []types.RouteData, hadBalances bool) Selection {
	ranked := Rank(routes)

	selection := Selection{
		Routes:              ranked,
		InsufficientBalance: len(ranked) == 0 && hadBalances,
	}
	if len(ranked) > 0 {
		selection.Best = &ranked[0]
	}
	return selection
}
