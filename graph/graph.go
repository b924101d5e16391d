// Package graph builds the pool graph used by the route planner: an
// undirected multigraph whose vertices are underlying token IDs and whose
// edges are pools, grounded on the BFS-over-denoms approach in
// router/usecase/candidate_routes.go, generalized here into an adjacency
// map built once and walked by the planner.
package graph

import "github.com/voinetwork/swaprouter/domain"

// Edge is one pool's contribution to the graph: a hop from a vertex to
// OtherToken, tagged with the pool that implements it.
type Edge struct {
	OtherToken domain.TokenId
	Pool       domain.PoolConfig
}

// Graph is the adjacency map from underlying token to the pools touching it.
type Graph struct {
	adjacency map[domain.TokenId][]Edge
}

// Build constructs the graph from a pool catalog. dexFilter, when non-empty,
// restricts edges to the listed DEXes.
func Build(pools []domain.PoolConfig, dexFilter map[domain.Dex]struct{}) *Graph {
	g := &Graph{adjacency: make(map[domain.TokenId][]Edge)}

	for _, pool := range pools {
		if len(dexFilter) > 0 {
			if _, ok := dexFilter[pool.Dex]; !ok {
				continue
			}
		}

		a, b := pool.UnderlyingTokens()
		if a == b {
			continue
		}

		g.adjacency[a] = append(g.adjacency[a], Edge{OtherToken: b, Pool: pool})
		g.adjacency[b] = append(g.adjacency[b], Edge{OtherToken: a, Pool: pool})
	}

	return g
}

// Neighbors returns the edges leaving token.
func (g *Graph) Neighbors(token domain.TokenId) []Edge {
	return g.adjacency[token]
}

// PoolsForHop returns every pool (deduplicated by PoolId) in the graph that
// directly connects from and to, in either configured order.
func (g *Graph) PoolsForHop(from, to domain.TokenId) []domain.PoolConfig {
	seen := make(map[domain.TokenId]struct{})
	var out []domain.PoolConfig

	for _, edge := range g.adjacency[from] {
		if edge.OtherToken != to {
			continue
		}
		if _, ok := seen[edge.Pool.PoolId]; ok {
			continue
		}
		seen[edge.Pool.PoolId] = struct{}{}
		out = append(out, edge.Pool)
	}

	return out
}

// path is a BFS-in-progress sequence of tokens visited so far.
type path struct {
	tokens  []domain.TokenId
	visited map[domain.TokenId]struct{}
}

// FindPaths performs a bounded breadth-first enumeration of every simple
// path from src to dst of length in [1, maxHops], grouped implicitly by
// token sequence (callers dedupe by calling PoolsForHop per hop once the
// token sequences are known). No token is visited twice on the same path.
func FindPaths(g *Graph, src, dst domain.TokenId, maxHops int) [][]domain.TokenId {
	if src == dst {
		return nil
	}

	var results [][]domain.TokenId

	start := path{tokens: []domain.TokenId{src}, visited: map[domain.TokenId]struct{}{src: {}}}
	queue := []path{start}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		last := cur.tokens[len(cur.tokens)-1]
		if len(cur.tokens)-1 >= maxHops {
			continue
		}

		for _, edge := range g.adjacency[last] {
			if _, ok := cur.visited[edge.OtherToken]; ok {
				continue
			}

			nextTokens := make([]domain.TokenId, len(cur.tokens), len(cur.tokens)+1)
			copy(nextTokens, cur.tokens)
			nextTokens = append(nextTokens, edge.OtherToken)

			if edge.OtherToken == dst {
				results = append(results, nextTokens)
				continue
			}

			nextVisited := make(map[domain.TokenId]struct{}, len(cur.visited)+1)
			for k := range cur.visited {
				nextVisited[k] = struct{}{}
			}
			nextVisited[edge.OtherToken] = struct{}{}

			queue = append(queue, path{tokens: nextTokens, visited: nextVisited})
		}
	}

	return results
}
