package usecase

import (
	"math/big"

	"github.com/voinetwork/swaprouter/amm"
	"github.com/voinetwork/swaprouter/domain"
)

// quotePool computes a single-pool quote: amountOut via the
// constant-product formula, minOut from the slippage tolerance, and
// priceImpact from the pre/post-trade spot price. Returns a zero-amount
// quote (not an error) when the inputs are non-positive, matching the
// quote engine's degrade-in-place design.
func quotePool(adapter domain.AMMAdapter, state domain.PoolState, pool domain.PoolConfig, fromToken, toToken domain.TokenId, amountIn *big.Int, slippageBps uint32) domain.PoolQuote {
	amountOut := adapter.ComputeOutput(state, fromToken, toToken, amountIn)

	quote := domain.PoolQuote{
		Pool:      pool,
		AmountIn:  amountIn,
		AmountOut: amountOut,
		MinOut:    amm.MinOut(amountOut, slippageBps),
	}

	if amountOut.Sign() > 0 {
		reserveIn, reserveOut, ok := state.ReserveFor(fromToken)
		if ok {
			quote.PriceImpact = amm.PriceImpact(reserveIn, reserveOut, amountIn, amountOut)
		}
	}

	return quote
}
