package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/voinetwork/swaprouter/domain"
	"github.com/voinetwork/swaprouter/domain/workerpool"
	"github.com/voinetwork/swaprouter/log"
)

// AdapterRegistry dispatches a pool's Dex to its AMMAdapter; satisfied by
// amm.Registry.
type AdapterRegistry interface {
	For(dex domain.Dex) (domain.AMMAdapter, error)
}

// prefetchResult pairs a fetched state with the pool it came from, since
// workerpool.Run returns results positionally rather than keyed.
type prefetchResult struct {
	pool  domain.PoolConfig
	state domain.PoolState
}

// prefetchPoolStates fetches PoolState for every pool in pools exactly
// once, concurrently, bounded by maxConcurrent. Pools that fail to read
// are logged and omitted from the result map; they do not fail the
// request (degrade-gracefully per the error design).
func prefetchPoolStates(ctx context.Context, logger log.Logger, registry AdapterRegistry, pools []domain.PoolConfig, maxConcurrent int) map[domain.TokenId]domain.PoolState {
	results := workerpool.Run(ctx, maxConcurrent, pools, func(ctx context.Context, pool domain.PoolConfig) (prefetchResult, error) {
		adapter, err := registry.For(pool.Dex)
		if err != nil {
			return prefetchResult{}, err
		}
		state, err := adapter.FetchState(ctx, pool)
		if err != nil {
			return prefetchResult{}, err
		}
		return prefetchResult{pool: pool, state: state}, nil
	})

	states := make(map[domain.TokenId]domain.PoolState, len(pools))
	for i, res := range results {
		if res.Err != nil {
			logger.Debug("pool state unusable for this request",
				zap.Uint64("pool_id", uint64(pools[i].PoolId)), zap.Error(res.Err))
			continue
		}
		states[res.Result.pool.PoolId] = res.Result.state
	}
	return states
}

// dedupePools flattens every route's pool options into a single
// deduplicated-by-PoolId slice, for a single pre-fetch pass per planning
// call regardless of how many routes reference the same pool.
func dedupePools(routes []domain.Route) []domain.PoolConfig {
	seen := make(map[domain.TokenId]struct{})
	var out []domain.PoolConfig
	for _, route := range routes {
		for _, options := range route.PoolOptions {
			for _, pool := range options {
				if _, ok := seen[pool.PoolId]; ok {
					continue
				}
				seen[pool.PoolId] = struct{}{}
				out = append(out, pool)
			}
		}
	}
	return out
}
