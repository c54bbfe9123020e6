package selector

import (
	"testing"

	"github.com/ClipFinance/funding-lib/common/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func route(quoteID string, duration int) types.RouteData {
	return types.RouteData{
		Route: &types.Route{QuoteID: quoteID, ExecutionDuration: duration},
	}
}

func quoteIDs(routes []types.RouteData) []string {
	ids := make([]string, 0, len(routes))
	for _, r := range routes {
		ids = append(ids, r.Route.QuoteID)
	}
	return ids
}

func TestRank(t *testing.T) {
	t.Run("fastest first", func(t *testing.T) {
		ranked := Rank([]types.RouteData{
			route("slow", 900),
			route("fast", 60),
			route("mid", 300),
		})
		assert.Equal(t, []string{"fast", "mid", "slow"}, quoteIDs(ranked))
	})

	t.Run("ties keep discovery order", func(t *testing.T) {
		ranked := Rank([]types.RouteData{
			route("a", 120),
			route("b", 120),
			route("c", 60),
			route("d", 120),
		})
		assert.Equal(t, []string{"c", "a", "b", "d"}, quoteIDs(ranked))
	})

	t.Run("idempotent", func(t *testing.T) {
		routes := []types.RouteData{
			route("x", 500),
			route("y", 100),
			route("z", 100),
		}
		once := Rank(routes)
		twice := Rank(once)
		assert.Equal(t, quoteIDs(once), quoteIDs(twice))
	})

	t.Run("input not mutated", func(t *testing.T) {
		routes := []types.RouteData{route("slow", 900), route("fast", 60)}
		Rank(routes)
		assert.Equal(t, []string{"slow", "fast"}, quoteIDs(routes))
	})
}

func TestSelect(t *testing.T) {
	t.Run("best is the fastest route", func(t *testing.T) {
		selection := Select([]types.RouteData{route("slow", 900), route("fast", 60)}, true)
		require.NotNil(t, selection.Best)
		assert.Equal(t, "fast", selection.Best.Route.QuoteID)
		assert.False(t, selection.InsufficientBalance)
	})

	t.Run("empty with balances means insufficient", func(t *testing.T) {
		selection := Select(nil, true)
		assert.Nil(t, selection.Best)
		assert.True(t, selection.InsufficientBalance)
	})

	t.Run("empty without balances is not insufficient", func(t *testing.T) {
		selection := Select(nil, false)
		assert.Nil(t, selection.Best)
		assert.False(t, selection.InsufficientBalance)
	})
}
