package usecase

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voinetwork/swaprouter/domain"
)

func hopSplit(poolId domain.TokenId, amountIn, expectedOut, minOut int64) domain.HopSplit {
	return domain.HopSplit{
		Pool:        domain.PoolConfig{PoolId: poolId},
		AmountIn:    big.NewInt(amountIn),
		ExpectedOut: big.NewInt(expectedOut),
		MinOut:      big.NewInt(minOut),
	}
}

func TestApplyPlatformFee_ExactFromSpecScenario5(t *testing.T) {
	plan := domain.PlannedSwap{
		Hops: [][]domain.HopSplit{
			{hopSplit(1, 600, 600, 594), hopSplit(2, 500, 500, 495)},
		},
		TotalOut:    big.NewInt(1_100),
		TotalMinOut: big.NewInt(1_089),
	}

	out := applyPlatformFee(plan, big.NewInt(1_000), 100, "platformaddr")

	require.NotNil(t, out.PlatformFee)
	require.Equal(t, big.NewInt(100), out.PlatformFee.Gain)
	require.Equal(t, big.NewInt(1), out.PlatformFee.FeeAmount)
	require.True(t, out.PlatformFee.Applied)

	sum := big.NewInt(0)
	for _, s := range out.Hops[0] {
		sum.Add(sum, s.ExpectedOut)
	}
	require.Equal(t, big.NewInt(1_099), sum)
}

func TestApplyPlatformFee_SinglePoolPlanUntouched(t *testing.T) {
	plan := domain.PlannedSwap{
		Hops:     [][]domain.HopSplit{{hopSplit(1, 1000, 1000, 990)}},
		TotalOut: big.NewInt(1000),
	}
	out := applyPlatformFee(plan, big.NewInt(1000), 100, "addr")
	require.Nil(t, out.PlatformFee)
}

func TestApplyPlatformFee_NoGainSkipsFee(t *testing.T) {
	plan := domain.PlannedSwap{
		Hops:     [][]domain.HopSplit{{hopSplit(1, 500, 500, 495), hopSplit(2, 500, 500, 495)}},
		TotalOut: big.NewInt(1000),
	}
	out := applyPlatformFee(plan, big.NewInt(1000), 100, "addr")
	require.Nil(t, out.PlatformFee)
}

func TestSelectBest_PicksDirectOverWeakerMultiHop(t *testing.T) {
	states := map[domain.TokenId]domain.PoolState{
		1: poolState(1, 1, 2, domain.DexNomadex, 1e8, 1e8, 30),
		2: poolState(2, 1, 3, domain.DexNomadex, 1e8, 1e8, 30),
		3: poolState(3, 3, 2, domain.DexNomadex, 1e8, 1e8, 30),
	}

	directRoute := domain.Route{Tokens: []domain.TokenId{1, 2}, PoolOptions: [][]domain.PoolConfig{{{PoolId: 1, Dex: domain.DexNomadex}}}}
	multiRoute := domain.Route{Tokens: []domain.TokenId{1, 3, 2}, PoolOptions: [][]domain.PoolConfig{{{PoolId: 2, Dex: domain.DexNomadex}}, {{PoolId: 3, Dex: domain.DexNomadex}}}}

	plan, isMultiHop, ok := selectBest([]domain.Route{directRoute, multiRoute}, states, fakeRegistry{}, big.NewInt(100_000), 100)
	require.True(t, ok)
	require.False(t, isMultiHop, "a single deep pool must beat a two-hop route of identically-sized pools")
	require.NotNil(t, plan.TotalOut)
}

func TestSelectBest_NoRoutesReturnsNotOk(t *testing.T) {
	_, _, ok := selectBest(nil, map[domain.TokenId]domain.PoolState{}, fakeRegistry{}, big.NewInt(1000), 100)
	require.False(t, ok)
}
