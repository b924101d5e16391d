package usecase

import (
	"fmt"
	"sort"

	"github.com/voinetwork/swaprouter/domain"
	"github.com/voinetwork/swaprouter/graph"
)

// findRoutes does a BFS over the pool graph from src to dst, bounded by
// maxHops, grouped by token sequence with every pool covering
// each hop attached (not merely the pool the BFS walked), sorted ascending
// by hop count. Grounded on candidate_routes.go's BFS-and-group
// shape, adapted to the tagged-variant PoolConfig graph.
func findRoutes(g *graph.Graph, src, dst domain.TokenId, maxHops int, dexFilter map[domain.Dex]struct{}) []domain.Route {
	tokenSequences := graph.FindPaths(g, src, dst, maxHops)

	routes := make([]domain.Route, 0, len(tokenSequences))
	seen := make(map[string]struct{}, len(tokenSequences))
	for _, tokens := range tokenSequences {
		// FindPaths yields one path per pool walked, so parallel pools repeat
		// a token sequence; keep one route per sequence.
		key := fmt.Sprint(tokens)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		options := make([][]domain.PoolConfig, 0, len(tokens)-1)
		for i := 0; i < len(tokens)-1; i++ {
			options = append(options, filterByDex(g.PoolsForHop(tokens[i], tokens[i+1]), dexFilter))
		}
		routes = append(routes, domain.Route{Tokens: tokens, PoolOptions: options})
	}

	sort.SliceStable(routes, func(i, j int) bool {
		return routes[i].Hops() < routes[j].Hops()
	})

	return routes
}

func filterByDex(pools []domain.PoolConfig, dexFilter map[domain.Dex]struct{}) []domain.PoolConfig {
	if len(dexFilter) == 0 {
		return pools
	}
	out := make([]domain.PoolConfig, 0, len(pools))
	for _, p := range pools {
		if _, ok := dexFilter[p.Dex]; ok {
			out = append(out, p)
		}
	}
	return out
}

// directRoutes returns the subset of routes that are exactly one hop, used
// by the selector to compute the direct baseline separately from
// multi-hop candidates.
func directRoutes(routes []domain.Route) []domain.Route {
	var out []domain.Route
	for _, r := range routes {
		if r.Hops() == 1 {
			out = append(out, r)
		}
	}
	return out
}

// multiHopRoutes returns the subset of routes with more than one hop.
func multiHopRoutes(routes []domain.Route) []domain.Route {
	var out []domain.Route
	for _, r := range routes {
		if r.Hops() > 1 {
			out = append(out, r)
		}
	}
	return out
}
