package usecase

import (
	"context"
	"math/big"
	"testing"

	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/stretchr/testify/require"

	"github.com/voinetwork/swaprouter/amm"
	"github.com/voinetwork/swaprouter/domain"
)

// fakeAdapter computes outputs via the shared constant-product formula
// against whatever PoolState it's handed; FetchState/BuildSwap are never
// exercised by the split/planner/selector tests, which work entirely off
// pre-fetched state.
type fakeAdapter struct{}

func (fakeAdapter) FetchState(ctx context.Context, pool domain.PoolConfig) (domain.PoolState, error) {
	return domain.PoolState{}, nil
}

func (fakeAdapter) ComputeOutput(state domain.PoolState, fromToken, toToken domain.TokenId, amountIn *big.Int) *big.Int {
	reserveIn, reserveOut, ok := state.ReserveFor(fromToken)
	if !ok {
		return big.NewInt(0)
	}
	return amm.ComputeOutput(reserveIn, reserveOut, state.FeeBps, amountIn)
}

func (fakeAdapter) BuildSwap(ctx context.Context, req domain.BuildSwapRequest) ([]types.Transaction, error) {
	return nil, nil
}

func candidate(poolId, tokA, tokB domain.TokenId, dex domain.Dex, reserveA, reserveB int64, feeBps uint32) hopCandidate {
	return hopCandidate{
		pool:    domain.PoolConfig{PoolId: poolId, Dex: dex},
		state:   domain.PoolState{PoolId: poolId, Dex: dex, TokA: tokA, TokB: tokB, ReserveA: big.NewInt(reserveA), ReserveB: big.NewInt(reserveB), FeeBps: feeBps},
		adapter: fakeAdapter{},
	}
}

func TestSplitHop_SinglePoolPassthrough(t *testing.T) {
	c := candidate(1, 1, 2, domain.DexNomadex, 1_000_000, 1_000_000, 30)
	splits, out := splitHop([]hopCandidate{c}, 1, 2, big.NewInt(10_000), 100)

	require.Len(t, splits, 1)
	require.Equal(t, big.NewInt(10_000), splits[0].AmountIn)
	require.Equal(t, big.NewInt(9_871), out)
}

func TestSplitHop_TwoPool_NonTrivialSplitBeatsEitherAlone(t *testing.T) {
	// Two pools of different depth and fee; the optimal split should land
	// strictly between "all on pool 1" and "all on pool 2".
	p1 := candidate(1, 1, 2, domain.DexNomadex, 1e8, 1e8, 30)
	p2 := candidate(2, 1, 2, domain.DexHumbleSwap, 5e7, 5e7, 50)
	totalIn := big.NewInt(1_000_000)

	splits, totalOut := splitHop([]hopCandidate{p1, p2}, 1, 2, totalIn, 100)
	require.Len(t, splits, 2)

	sum := big.NewInt(0)
	for _, s := range splits {
		require.True(t, s.AmountIn.Sign() > 0, "both legs must receive a non-zero allocation")
		sum.Add(sum, s.AmountIn)
	}
	require.Equal(t, totalIn, sum, "split amounts must sum exactly to the hop's input (I1)")

	singleP1 := amm.ComputeOutput(big.NewInt(1e8), big.NewInt(1e8), 30, totalIn)
	singleP2 := amm.ComputeOutput(big.NewInt(5e7), big.NewInt(5e7), 50, totalIn)
	best := singleP1
	if singleP2.Cmp(best) > 0 {
		best = singleP2
	}

	require.True(t, totalOut.Cmp(best) > 0, "split output must exceed either single-pool alternative")
}

func TestSplitHop_Many_AllocatesAcrossThreePools(t *testing.T) {
	p1 := candidate(1, 1, 2, domain.DexNomadex, 1e8, 1e8, 30)
	p2 := candidate(2, 1, 2, domain.DexHumbleSwap, 5e7, 5e7, 50)
	p3 := candidate(3, 1, 2, domain.DexNomadex, 2e7, 2e7, 30)
	totalIn := big.NewInt(1_000_000)

	splits, totalOut := splitHop([]hopCandidate{p1, p2, p3}, 1, 2, totalIn, 100)
	require.NotEmpty(t, splits)
	require.True(t, totalOut.Sign() > 0)

	sum := big.NewInt(0)
	for _, s := range splits {
		sum.Add(sum, s.AmountIn)
	}
	require.Equal(t, totalIn, sum)
}

func TestSplitHop_ZeroCandidatesReturnsZero(t *testing.T) {
	splits, out := splitHop(nil, 1, 2, big.NewInt(1000), 100)
	require.Nil(t, splits)
	require.Equal(t, big.NewInt(0), out)
}
