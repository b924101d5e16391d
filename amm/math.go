// Package amm holds the constant-product math shared by both DEX adapters
// and the adapter registry that dispatches PoolConfig.Dex to a concrete
// domain.AMMAdapter, grounded on the tagged-variant dispatch used
// for pool models in domain/routable_pool.go.
package amm

import (
	"math/big"

	"github.com/voinetwork/swaprouter/domain"
)

const bpsDenominator = 10000

// ComputeOutput implements the constant-product formula from the swap
// formula design: amountOut = (reserveOut*amountIn*(10000-fee)) /
// (reserveIn*10000 + amountIn*(10000-fee)), truncating toward zero. Returns
// zero when any input is nil or non-positive, the fee is 10000 bps or more,
// or the output would reach the whole output reserve.
func ComputeOutput(reserveIn, reserveOut *big.Int, feeBps uint32, amountIn *big.Int) *big.Int {
	if reserveIn == nil || reserveOut == nil || amountIn == nil {
		return big.NewInt(0)
	}
	if reserveIn.Sign() <= 0 || reserveOut.Sign() <= 0 || amountIn.Sign() <= 0 {
		return big.NewInt(0)
	}
	if feeBps >= bpsDenominator {
		return big.NewInt(0)
	}

	f := big.NewInt(int64(bpsDenominator - feeBps))

	numerator := new(big.Int).Mul(reserveOut, amountIn)
	numerator.Mul(numerator, f)

	denominator := new(big.Int).Mul(reserveIn, big.NewInt(bpsDenominator))
	scaledIn := new(big.Int).Mul(amountIn, f)
	denominator.Add(denominator, scaledIn)

	if denominator.Sign() <= 0 {
		return big.NewInt(0)
	}

	out := new(big.Int).Quo(numerator, denominator)
	if out.Cmp(reserveOut) >= 0 {
		return big.NewInt(0)
	}
	return out
}

// MinOut applies a basis-point slippage tolerance to an expected output,
// truncating toward zero: minOut = amountOut*floor((10000-slippageBps))/10000.
func MinOut(amountOut *big.Int, slippageBps uint32) *big.Int {
	if amountOut == nil || amountOut.Sign() <= 0 {
		return big.NewInt(0)
	}
	if slippageBps >= bpsDenominator {
		return big.NewInt(0)
	}
	keep := big.NewInt(int64(bpsDenominator - slippageBps))
	out := new(big.Int).Mul(amountOut, keep)
	return out.Quo(out, big.NewInt(bpsDenominator))
}

// SpotPrice returns reserveOut/reserveIn as a float64, used only for the
// price-impact estimate (never for amount arithmetic).
func SpotPrice(reserveIn, reserveOut *big.Int) float64 {
	if reserveIn == nil || reserveIn.Sign() <= 0 || reserveOut == nil {
		return 0
	}
	in := new(big.Float).SetInt(reserveIn)
	out := new(big.Float).SetInt(reserveOut)
	ratio := new(big.Float).Quo(out, in)
	f, _ := ratio.Float64()
	return f
}

// PriceImpact computes |spotAfter - spotBefore| / spotBefore for a trade of
// amountIn against (reserveIn, reserveOut), per the quote engine design.
func PriceImpact(reserveIn, reserveOut, amountIn, amountOut *big.Int) float64 {
	before := SpotPrice(reserveIn, reserveOut)
	if before == 0 {
		return 0
	}

	afterIn := new(big.Int).Add(reserveIn, amountIn)
	afterOut := new(big.Int).Sub(reserveOut, amountOut)
	if afterOut.Sign() <= 0 {
		return 0
	}

	after := SpotPrice(afterIn, afterOut)
	diff := before - after
	if diff < 0 {
		diff = -diff
	}
	return diff / before
}

// Sqrt returns the floor of the integer square root of n, for callers (the
// N=2 closed-form split) that need √K on big.Int reserve products.
func Sqrt(n *big.Int) *big.Int {
	if n.Sign() <= 0 {
		return big.NewInt(0)
	}
	return new(big.Int).Sqrt(n)
}
