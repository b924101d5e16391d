package usecase

import (
	"math/big"
	"sort"

	"github.com/voinetwork/swaprouter/domain"
)

const bpsDenominator = 10000

// hopCandidate is one pool option for a hop, paired with its adapter and
// pre-fetched state. Candidates whose state failed to pre-fetch are never
// constructed; they are simply absent from the list the planner builds.
type hopCandidate struct {
	pool    domain.PoolConfig
	state   domain.PoolState
	adapter domain.AMMAdapter
}

// splitHop computes the optimal distribution of totalIn across candidates
// for one hop: N=1 passthrough, N=2 closed-form, N>=3 heuristic candidate
// list. Returns the per-pool splits (AmountIn summing exactly to totalIn)
// and the hop's total expected output.
func splitHop(candidates []hopCandidate, fromToken, toToken domain.TokenId, totalIn *big.Int, slippageBps uint32) ([]domain.HopSplit, *big.Int) {
	switch len(candidates) {
	case 0:
		return nil, big.NewInt(0)
	case 1:
		return splitSingle(candidates[0], fromToken, toToken, totalIn, slippageBps)
	case 2:
		return splitTwo(candidates[0], candidates[1], fromToken, toToken, totalIn, slippageBps)
	default:
		return splitMany(candidates, fromToken, toToken, totalIn, slippageBps)
	}
}

func splitSingle(c hopCandidate, fromToken, toToken domain.TokenId, totalIn *big.Int, slippageBps uint32) ([]domain.HopSplit, *big.Int) {
	quote := quotePool(c.adapter, c.state, c.pool, fromToken, toToken, totalIn, slippageBps)
	split := domain.HopSplit{Pool: c.pool, AmountIn: totalIn, ExpectedOut: quote.AmountOut, MinOut: quote.MinOut, Quote: quote}
	return []domain.HopSplit{split}, quote.AmountOut
}

// splitTwo implements the closed-form optimum for splitting across two
// pools. F_i =
// 10000-fee_i, D_i = reserveIn_i*10000, K_i = reserveOut_i*F_i*D_i; the
// output-maximizing split is
//
//	x* = (√K1·D2 + √K1·T·F2 - √K2·D1) / (√K2·F1 + √K1·F2)
//
// clamped to [0,T]. Three candidates, (T,0), (0,T), (x*,T-x*), are
// evaluated and the maximum-output one kept, tie-broken by lower total
// price impact, then by lower first pool ID.
func splitTwo(a, b hopCandidate, fromToken, toToken domain.TokenId, totalIn *big.Int, slippageBps uint32) ([]domain.HopSplit, *big.Int) {
	reserveInA, reserveOutA, okA := a.state.ReserveFor(fromToken)
	reserveInB, reserveOutB, okB := b.state.ReserveFor(fromToken)

	if !okA {
		return splitSingle(b, fromToken, toToken, totalIn, slippageBps)
	}
	if !okB {
		return splitSingle(a, fromToken, toToken, totalIn, slippageBps)
	}

	fA := bpsDenominator - int64(a.state.FeeBps)
	fB := bpsDenominator - int64(b.state.FeeBps)

	dA := new(big.Int).Mul(reserveInA, big.NewInt(bpsDenominator))
	dB := new(big.Int).Mul(reserveInB, big.NewInt(bpsDenominator))

	kA := new(big.Int).Mul(reserveOutA, big.NewInt(fA))
	kA.Mul(kA, dA)
	kB := new(big.Int).Mul(reserveOutB, big.NewInt(fB))
	kB.Mul(kB, dB)

	sqrtKA := bigFloatSqrt(kA)
	sqrtKB := bigFloatSqrt(kB)

	fBf := big.NewFloat(float64(fB))
	fAf := big.NewFloat(float64(fA))
	dAf := new(big.Float).SetInt(dA)
	dBf := new(big.Float).SetInt(dB)
	tF := new(big.Float).SetInt(totalIn)

	numerator := new(big.Float).Mul(sqrtKA, dBf)
	term2 := new(big.Float).Mul(sqrtKA, tF)
	term2.Mul(term2, fBf)
	numerator.Add(numerator, term2)
	term3 := new(big.Float).Mul(sqrtKB, dAf)
	numerator.Sub(numerator, term3)

	denominator := new(big.Float).Mul(sqrtKB, fAf)
	term4 := new(big.Float).Mul(sqrtKA, fBf)
	denominator.Add(denominator, term4)

	var xStar *big.Int
	if denominator.Sign() == 0 {
		xStar = new(big.Int).Div(totalIn, big.NewInt(2))
	} else {
		ratio := new(big.Float).Quo(numerator, denominator)
		xStar, _ = ratio.Int(nil)
		if xStar.Sign() < 0 {
			xStar = big.NewInt(0)
		}
		if xStar.Cmp(totalIn) > 0 {
			xStar = new(big.Int).Set(totalIn)
		}
	}

	// Collapse to a single-pool corner if either side would take less than
	// 0.1% of the total.
	threshold := new(big.Int).Div(totalIn, big.NewInt(1000))
	other := new(big.Int).Sub(totalIn, xStar)
	if xStar.Cmp(threshold) < 0 {
		xStar = big.NewInt(0)
		other = new(big.Int).Set(totalIn)
	} else if other.Cmp(threshold) < 0 {
		xStar = new(big.Int).Set(totalIn)
		other = big.NewInt(0)
	}

	candidates := [][2]*big.Int{
		{totalIn, big.NewInt(0)},
		{big.NewInt(0), totalIn},
		{xStar, other},
	}

	type evaluated struct {
		splitA, splitB domain.HopSplit
		totalOut       *big.Int
		priceImpact    float64
	}

	// firstPoolId is the ID of the first pool in (a, b) order that receives
	// any input under a candidate.
	firstPoolId := func(e *evaluated) domain.TokenId {
		if e.splitA.AmountIn.Sign() > 0 {
			return e.splitA.Pool.PoolId
		}
		return e.splitB.Pool.PoolId
	}

	var best *evaluated
	for _, cand := range candidates {
		qa := quotePool(a.adapter, a.state, a.pool, fromToken, toToken, cand[0], slippageBps)
		qb := quotePool(b.adapter, b.state, b.pool, fromToken, toToken, cand[1], slippageBps)

		total := new(big.Int).Add(qa.AmountOut, qb.AmountOut)
		impact := qa.PriceImpact + qb.PriceImpact

		cur := &evaluated{
			splitA:      domain.HopSplit{Pool: a.pool, AmountIn: cand[0], ExpectedOut: qa.AmountOut, MinOut: qa.MinOut, Quote: qa},
			splitB:      domain.HopSplit{Pool: b.pool, AmountIn: cand[1], ExpectedOut: qb.AmountOut, MinOut: qb.MinOut, Quote: qb},
			totalOut:    total,
			priceImpact: impact,
		}

		if best == nil {
			best = cur
			continue
		}

		switch total.Cmp(best.totalOut) {
		case 1:
			best = cur
		case 0:
			if impact < best.priceImpact {
				best = cur
			} else if impact == best.priceImpact && firstPoolId(cur) < firstPoolId(best) {
				best = cur
			}
		}
	}

	splits := []domain.HopSplit{best.splitA, best.splitB}
	// Drop a zero-amount leg so downstream adapter.BuildSwap is never asked
	// to build a zero-input transaction sequence.
	out := splits[:0]
	for _, s := range splits {
		if s.AmountIn.Sign() > 0 {
			out = append(out, s)
		}
	}
	return out, best.totalOut
}

// splitMany implements the heuristic used for three or more candidate
// pools: 100% to each pool, 50/50 over each unordered pair, and an equal
// split across all, discarding any candidate that reduces a per-pool
// amount below T/1000.
func splitMany(candidates []hopCandidate, fromToken, toToken domain.TokenId, totalIn *big.Int, slippageBps uint32) ([]domain.HopSplit, *big.Int) {
	threshold := new(big.Int).Div(totalIn, big.NewInt(1000))

	type allocation map[int]*big.Int

	var pool []allocation

	for i := range candidates {
		pool = append(pool, allocation{i: new(big.Int).Set(totalIn)})
	}

	half := new(big.Int).Div(totalIn, big.NewInt(2))
	otherHalf := new(big.Int).Sub(totalIn, half)
	for i := 0; i < len(candidates); i++ {
		for j := i + 1; j < len(candidates); j++ {
			pool = append(pool, allocation{i: half, j: otherHalf})
		}
	}

	equalShare := new(big.Int).Div(totalIn, big.NewInt(int64(len(candidates))))
	remainder := new(big.Int).Sub(totalIn, new(big.Int).Mul(equalShare, big.NewInt(int64(len(candidates)))))
	equalAlloc := allocation{}
	for i := range candidates {
		amt := new(big.Int).Set(equalShare)
		if i == len(candidates)-1 {
			amt.Add(amt, remainder)
		}
		equalAlloc[i] = amt
	}
	pool = append(pool, equalAlloc)

	var bestSplits []domain.HopSplit
	var bestOut *big.Int

	for _, alloc := range pool {
		valid := true
		for _, amt := range alloc {
			if amt.Sign() > 0 && amt.Cmp(threshold) < 0 {
				valid = false
				break
			}
		}
		if !valid {
			continue
		}

		var splits []domain.HopSplit
		total := big.NewInt(0)
		for i, amt := range alloc {
			if amt.Sign() <= 0 {
				continue
			}
			c := candidates[i]
			q := quotePool(c.adapter, c.state, c.pool, fromToken, toToken, amt, slippageBps)
			splits = append(splits, domain.HopSplit{Pool: c.pool, AmountIn: amt, ExpectedOut: q.AmountOut, MinOut: q.MinOut, Quote: q})
			total.Add(total, q.AmountOut)
		}

		sort.SliceStable(splits, func(i, j int) bool { return splits[i].Pool.PoolId < splits[j].Pool.PoolId })

		if bestOut == nil || total.Cmp(bestOut) > 0 {
			bestOut = total
			bestSplits = splits
		}
	}

	if bestOut == nil {
		return nil, big.NewInt(0)
	}
	return bestSplits, bestOut
}

func bigFloatSqrt(n *big.Int) *big.Float {
	if n.Sign() <= 0 {
		return big.NewFloat(0)
	}
	f := new(big.Float).SetInt(n)
	return new(big.Float).Sqrt(f)
}
