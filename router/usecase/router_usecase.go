// Package usecase implements the route planner, quote engine, and route
// selector: the algorithmic core that turns a pool catalog and a swap
// request into a PlannedSwap, grounded on the router/usecase package shape
// (NewRouterUsecase / GetOptimalQuote), with Osmosis's route-overwrite/
// ranked-route caching dropped since this domain has no persisted-state
// collaborator to cache against.
package usecase

import (
	"context"
	"fmt"
	"math/big"

	"go.uber.org/zap"

	"github.com/voinetwork/swaprouter/domain"
	"github.com/voinetwork/swaprouter/graph"
	"github.com/voinetwork/swaprouter/log"
)

// QuoteRequest is the usecase-layer input for GetOptimalQuote, parsed and
// validated by the HTTP delivery layer from the POST /quote body.
type QuoteRequest struct {
	InputToken  domain.TokenId
	OutputToken domain.TokenId
	Amount      *big.Int
	SlippageBps uint32 // zero means "use RouterConfig.DefaultSlippageBps"
	PoolId      *domain.TokenId
	Dex         *domain.Dex
}

// QuoteResult bundles the selected plan with the route metadata the HTTP
// layer renders into its response shape.
type QuoteResult struct {
	Plan       domain.PlannedSwap
	IsMultiHop bool
	Tokens     []domain.TokenId
}

// RouterUsecase is the process-lifetime entry point for planning calls: it
// holds the immutable pool catalog, the chain gateway's adapter registry,
// and the router configuration, and builds a fresh pool graph on each call
// (catalogs are small and load-once; rebuilding costs nothing observable).
type RouterUsecase struct {
	catalog  domain.PoolCatalog
	registry AdapterRegistry
	config   domain.RouterConfig
	platform domain.PlatformConfig
	logger   log.Logger
}

// NewRouterUsecase constructs a RouterUsecase.
func NewRouterUsecase(catalog domain.PoolCatalog, registry AdapterRegistry, config domain.RouterConfig, platform domain.PlatformConfig, logger log.Logger) *RouterUsecase {
	return &RouterUsecase{catalog: catalog, registry: registry, config: config, platform: platform, logger: logger}
}

// GetOptimalQuote runs the full planning pipeline for one request: validate,
// find routes, pre-fetch pool state, plan and select the best route, apply
// the platform fee. It never returns a partial result: on any terminal
// condition it returns a single typed error (see domain/errors.go).
func (r *RouterUsecase) GetOptimalQuote(ctx context.Context, req QuoteRequest) (QuoteResult, error) {
	if err := r.validate(req); err != nil {
		return QuoteResult{}, err
	}

	slippageBps := req.SlippageBps
	if slippageBps == 0 {
		slippageBps = r.config.DefaultSlippageBps
	}

	ctx, cancel := context.WithTimeout(ctx, r.config.PlanningTimeout)
	defer cancel()

	if req.PoolId != nil {
		return r.quotePinnedPool(ctx, req, slippageBps)
	}

	var dexFilter map[domain.Dex]struct{}
	if req.Dex != nil {
		dexFilter = map[domain.Dex]struct{}{*req.Dex: {}}
	}

	g := graph.Build(r.catalog.Pools(), dexFilter)
	routes := findRoutes(g, req.InputToken, req.OutputToken, r.config.MaxHops, dexFilter)
	if len(routes) == 0 {
		return QuoteResult{}, domain.ErrNoRoute
	}

	pools := dedupePools(routes)
	maxConcurrent := r.config.MaxConcurrentChainReads
	if maxConcurrent <= 0 || maxConcurrent > len(pools) {
		maxConcurrent = len(pools)
	}
	states := prefetchPoolStates(ctx, r.logger, r.registry, pools, maxConcurrent)
	if len(states) == 0 {
		return QuoteResult{}, domain.ErrPoolStateUnavailable
	}

	plan, isMultiHop, ok := selectBest(routes, states, r.registry, req.Amount, slippageBps)
	if !ok {
		return QuoteResult{}, domain.ErrPoolStateUnavailable
	}

	singlePoolBest := bestSinglePoolOutput(routes, states, r.registry, req.Amount, slippageBps)
	plan = applyPlatformFee(plan, singlePoolBest, r.platform.FeeBps, r.platform.Address)

	tokens := routeTokensFor(plan, req.InputToken, req.OutputToken, isMultiHop)

	r.logger.Debug("quote planned",
		zap.Uint64("input_token", uint64(req.InputToken)),
		zap.Uint64("output_token", uint64(req.OutputToken)),
		zap.Bool("multi_hop", isMultiHop),
		zap.String("total_out", plan.TotalOut.String()))

	return QuoteResult{Plan: plan, IsMultiHop: isMultiHop, Tokens: tokens}, nil
}

// quotePinnedPool handles the poolId-pinned request variant: the caller
// asks for a specific pool rather than auto-routing.
func (r *RouterUsecase) quotePinnedPool(ctx context.Context, req QuoteRequest, slippageBps uint32) (QuoteResult, error) {
	pool, ok := r.catalog.Pool(*req.PoolId)
	if !ok {
		return QuoteResult{}, domain.PoolNotFoundError{PoolId: *req.PoolId}
	}

	a, b := pool.UnderlyingTokens()
	if !(a == req.InputToken && b == req.OutputToken) && !(a == req.OutputToken && b == req.InputToken) {
		return QuoteResult{}, fmt.Errorf("%w: pool %d does not trade %d<->%d", domain.ErrInvalidRequest, pool.PoolId, req.InputToken, req.OutputToken)
	}

	adapter, err := r.registry.For(pool.Dex)
	if err != nil {
		return QuoteResult{}, fmt.Errorf("%w: %s", domain.ErrInternal, err)
	}

	state, err := adapter.FetchState(ctx, pool)
	if err != nil {
		return QuoteResult{}, fmt.Errorf("%w: %s", domain.ErrPoolStateUnavailable, err)
	}

	states := map[domain.TokenId]domain.PoolState{pool.PoolId: state}
	route := domain.Route{Tokens: []domain.TokenId{req.InputToken, req.OutputToken}, PoolOptions: [][]domain.PoolConfig{{pool}}}

	plan, ok := planRoute(route, states, r.registry, req.Amount, slippageBps)
	if !ok {
		return QuoteResult{}, domain.ErrPoolStateUnavailable
	}

	return QuoteResult{Plan: plan, IsMultiHop: false, Tokens: route.Tokens}, nil
}

func (r *RouterUsecase) validate(req QuoteRequest) error {
	if req.InputToken == req.OutputToken {
		return domain.SameTokenError{TokenId: req.InputToken}
	}
	if req.Amount == nil || req.Amount.Sign() <= 0 {
		return fmt.Errorf("%w: amount must be positive", domain.ErrInvalidRequest)
	}
	if _, ok := r.catalog.Token(req.InputToken); !ok {
		return domain.TokenNotFoundError{TokenId: req.InputToken}
	}
	if _, ok := r.catalog.Token(req.OutputToken); !ok {
		return domain.TokenNotFoundError{TokenId: req.OutputToken}
	}
	return nil
}

// routeTokensFor recovers the token sequence actually used by the selected
// plan, which the HTTP layer passes to the group builder. Direct and pinned-pool
// plans are always [in, out]; multi-hop plans thread through every hop.
func routeTokensFor(plan domain.PlannedSwap, input, output domain.TokenId, isMultiHop bool) []domain.TokenId {
	if !isMultiHop {
		return []domain.TokenId{input, output}
	}
	tokens := make([]domain.TokenId, 0, len(plan.Hops)+1)
	tokens = append(tokens, input)
	cur := input
	for _, hop := range plan.Hops {
		if len(hop) == 0 {
			continue
		}
		next := hop[0].Pool.OtherUnderlying(cur)
		tokens = append(tokens, next)
		cur = next
	}
	return tokens
}
