package usecase

import (
	"math/big"

	"github.com/voinetwork/swaprouter/domain"
)

// planRoute assembles the multi-hop PlannedSwap for one route: iterate
// hops in order, feeding each hop's total expected output forward as the
// next hop's input, summing per-hop price impact (output/minOut
// accounting is left to the caller, which reads the final hop's splits).
//
// A hop with no usable candidate (every pool's state failed pre-fetch, or
// none remain after the dex filter) makes the whole route unusable for this
// request; planRoute returns ok=false rather than an error, since an
// unusable route is simply skipped by the selector, not a request failure.
func planRoute(route domain.Route, states map[domain.TokenId]domain.PoolState, registry AdapterRegistry, amountIn *big.Int, slippageBps uint32) (domain.PlannedSwap, bool) {
	hops := make([][]domain.HopSplit, 0, route.Hops())
	currentIn := amountIn
	var totalImpact float64

	for i := 0; i < route.Hops(); i++ {
		fromToken, toToken := route.Tokens[i], route.Tokens[i+1]

		var candidates []hopCandidate
		for _, pool := range route.PoolOptions[i] {
			state, ok := states[pool.PoolId]
			if !ok {
				continue
			}
			adapter, err := registry.For(pool.Dex)
			if err != nil {
				continue
			}
			candidates = append(candidates, hopCandidate{pool: pool, state: state, adapter: adapter})
		}

		if len(candidates) == 0 {
			return domain.PlannedSwap{}, false
		}

		splits, hopOut := splitHop(candidates, fromToken, toToken, currentIn, slippageBps)
		if len(splits) == 0 || hopOut.Sign() <= 0 {
			return domain.PlannedSwap{}, false
		}

		hops = append(hops, splits)
		totalImpact += weightedImpact(splits, hopOut)
		currentIn = hopOut
	}

	finalHop := hops[len(hops)-1]
	totalOut := big.NewInt(0)
	totalMinOut := big.NewInt(0)
	for _, s := range finalHop {
		totalOut.Add(totalOut, s.ExpectedOut)
		totalMinOut.Add(totalMinOut, s.MinOut)
	}

	return domain.PlannedSwap{
		Hops:                hops,
		TotalIn:             amountIn,
		TotalOut:            totalOut,
		TotalMinOut:         totalMinOut,
		WeightedPriceImpact: totalImpact,
		IsMultiHop:          route.Hops() > 1,
	}, true
}

// weightedImpact averages each split's price impact weighted by its share
// of the hop's total output.
func weightedImpact(splits []domain.HopSplit, hopOut *big.Int) float64 {
	if hopOut.Sign() <= 0 {
		return 0
	}
	hopOutF := new(big.Float).SetInt(hopOut)

	var sum float64
	for _, s := range splits {
		weight := new(big.Float).SetInt(s.ExpectedOut)
		weight.Quo(weight, hopOutF)
		w, _ := weight.Float64()
		sum += w * s.Quote.PriceImpact
	}
	return sum
}
