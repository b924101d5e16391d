package usecase

import (
	"math/big"

	"github.com/voinetwork/swaprouter/domain"
)

// selectBest computes the best direct plan (if any direct pools exist) and
// the best multi-hop plan, then chooses the overall maximum by total
// output. Ties go to direct, preferring the structurally simpler route
// when outputs are equal.
func selectBest(routes []domain.Route, states map[domain.TokenId]domain.PoolState, registry AdapterRegistry, amountIn *big.Int, slippageBps uint32) (domain.PlannedSwap, bool, bool) {
	var bestDirect domain.PlannedSwap
	haveDirect := false

	for _, route := range directRoutes(routes) {
		plan, ok := planRoute(route, states, registry, amountIn, slippageBps)
		if !ok {
			continue
		}
		if !haveDirect || plan.TotalOut.Cmp(bestDirect.TotalOut) > 0 {
			bestDirect = plan
			haveDirect = true
		}
	}

	var bestMulti domain.PlannedSwap
	haveMulti := false

	for _, route := range multiHopRoutes(routes) {
		plan, ok := planRoute(route, states, registry, amountIn, slippageBps)
		if !ok {
			continue
		}
		if !haveMulti || plan.TotalOut.Cmp(bestMulti.TotalOut) > 0 {
			bestMulti = plan
			haveMulti = true
		}
	}

	switch {
	case !haveDirect && !haveMulti:
		return domain.PlannedSwap{}, false, false
	case haveDirect && !haveMulti:
		return bestDirect, false, true
	case !haveDirect && haveMulti:
		return bestMulti, true, true
	default:
		if bestMulti.TotalOut.Cmp(bestDirect.TotalOut) > 0 {
			return bestMulti, true, true
		}
		return bestDirect, false, true
	}
}

// bestSinglePoolOutput returns the best output achievable using exactly one
// pool for the whole trade (the baseline the platform fee gain is measured
// against), or zero if no direct pool exists.
func bestSinglePoolOutput(routes []domain.Route, states map[domain.TokenId]domain.PoolState, registry AdapterRegistry, amountIn *big.Int, slippageBps uint32) *big.Int {
	best := big.NewInt(0)
	for _, route := range directRoutes(routes) {
		for _, pool := range route.PoolOptions[0] {
			state, ok := states[pool.PoolId]
			if !ok {
				continue
			}
			adapter, err := registry.For(pool.Dex)
			if err != nil {
				continue
			}
			quote := quotePool(adapter, state, pool, route.Tokens[0], route.Tokens[1], amountIn, slippageBps)
			if quote.AmountOut.Cmp(best) > 0 {
				best = quote.AmountOut
			}
		}
	}
	return best
}

// usesMultiplePools reports whether a plan's final assembly touches more
// than one pool, across hops and within any hop's split.
func usesMultiplePools(plan domain.PlannedSwap) bool {
	count := 0
	for _, hop := range plan.Hops {
		count += len(hop)
	}
	return count > 1
}

// applyPlatformFee skims a fee off a multi-pool plan's gain over the best
// single-pool alternative: considered only when the plan uses more than
// one pool and strictly beats the single-pool baseline.
// The fee is taken from the final hop's splits, proportional to each
// split's share of the hop's output, with the integer remainder absorbed
// by the last split.
func applyPlatformFee(plan domain.PlannedSwap, singlePoolBest *big.Int, feeBps uint32, feeAddress string) domain.PlannedSwap {
	if !usesMultiplePools(plan) {
		return plan
	}

	gain := new(big.Int).Sub(plan.TotalOut, singlePoolBest)
	if gain.Sign() <= 0 {
		return plan
	}

	fee := &domain.PlatformFee{Gain: gain, FeeBps: feeBps, FeeAddress: feeAddress}

	feeAmount := big.NewInt(0)
	if feeBps > 0 && feeAddress != "" {
		feeAmount = new(big.Int).Mul(gain, big.NewInt(int64(feeBps)))
		feeAmount.Quo(feeAmount, big.NewInt(10000))
	}
	fee.FeeAmount = feeAmount

	if feeAmount.Sign() <= 0 {
		plan.PlatformFee = fee
		return plan
	}
	fee.Applied = true

	finalHopIdx := len(plan.Hops) - 1
	finalHop := plan.Hops[finalHopIdx]
	hopTotalOut := big.NewInt(0)
	for _, s := range finalHop {
		hopTotalOut.Add(hopTotalOut, s.ExpectedOut)
	}

	skimmed := make([]domain.HopSplit, len(finalHop))
	skimmedTotal := big.NewInt(0)
	for i, s := range finalHop {
		share := new(big.Int).Mul(feeAmount, s.ExpectedOut)
		share.Quo(share, hopTotalOut)

		outAdj := new(big.Int).Sub(s.ExpectedOut, share)
		minAdj := new(big.Int).Sub(s.MinOut, share)
		if minAdj.Sign() < 0 {
			minAdj = big.NewInt(0)
		}

		skimmed[i] = s
		skimmed[i].ExpectedOut = outAdj
		skimmed[i].MinOut = minAdj
		skimmedTotal.Add(skimmedTotal, share)
	}

	// Absorb any remainder (from integer truncation of each share) into the
	// last split so the skim sums exactly to feeAmount.
	remainder := new(big.Int).Sub(feeAmount, skimmedTotal)
	if remainder.Sign() != 0 && len(skimmed) > 0 {
		last := len(skimmed) - 1
		skimmed[last].ExpectedOut = new(big.Int).Sub(skimmed[last].ExpectedOut, remainder)
		skimmed[last].MinOut = new(big.Int).Sub(skimmed[last].MinOut, remainder)
		if skimmed[last].MinOut.Sign() < 0 {
			skimmed[last].MinOut = big.NewInt(0)
		}
	}

	plan.Hops[finalHopIdx] = skimmed

	newTotalOut := big.NewInt(0)
	newTotalMinOut := big.NewInt(0)
	for _, s := range skimmed {
		newTotalOut.Add(newTotalOut, s.ExpectedOut)
		newTotalMinOut.Add(newTotalMinOut, s.MinOut)
	}
	plan.TotalOut = newTotalOut
	plan.TotalMinOut = newTotalMinOut
	plan.PlatformFee = fee

	return plan
}
