package humbleswap_test

import (
	"context"
	"crypto/sha512"
	"encoding/base32"
	"encoding/binary"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voinetwork/swaprouter/amm"
	"github.com/voinetwork/swaprouter/amm/humbleswap"
	"github.com/voinetwork/swaprouter/domain"
)

type fakeGateway struct {
	globalState map[string][]byte
	arc200      map[domain.TokenId]*big.Int
}

func (g *fakeGateway) GetAccountState(ctx context.Context, address string) (domain.AccountState, error) {
	return domain.AccountState{}, nil
}

func (g *fakeGateway) GetApplicationGlobalState(ctx context.Context, appId uint64) (map[string][]byte, error) {
	return g.globalState, nil
}

func (g *fakeGateway) GetAssetDecimals(ctx context.Context, assetId domain.TokenId) (int, error) {
	return 6, nil
}

func (g *fakeGateway) GetArc200Balance(ctx context.Context, contractId domain.TokenId, address string) (*big.Int, error) {
	bal, ok := g.arc200[contractId]
	if !ok {
		return nil, errors.New("no balance configured")
	}
	return bal, nil
}

func (g *fakeGateway) GetSuggestedTxParams(ctx context.Context) (domain.SuggestedParams, error) {
	return domain.SuggestedParams{}, nil
}

func testAddress(fill byte) string {
	var pubKey [32]byte
	for i := range pubKey {
		pubKey[i] = fill
	}
	sum := sha512.Sum512_256(pubKey[:])
	checksum := sum[len(sum)-4:]
	buf := append(pubKey[:], checksum...)
	return strings.TrimRight(base32.StdEncoding.EncodeToString(buf), "=")
}

func beUint(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}

// wrappedPair wraps native (TokA=100) against underlying token 6 (TokB=101).
func wrappedPair() domain.WrappedPairConfig {
	return domain.WrappedPairConfig{
		TokA:                100,
		TokB:                101,
		UnderlyingToWrapped: map[domain.TokenId]domain.TokenId{0: 100, 6: 101},
		Unwrap:              map[domain.TokenId]struct{}{100: {}, 101: {}},
	}
}

func TestFetchState_ReadsReservesAndUnderlyingTokens(t *testing.T) {
	gw := &fakeGateway{
		globalState: map[string][]byte{
			"reserve_a": beUint(500_000),
			"reserve_b": beUint(600_000),
			"fee":       beUint(50),
		},
		arc200: map[domain.TokenId]*big.Int{
			100: big.NewInt(500_000),
			101: big.NewInt(600_000),
		},
	}
	a := humbleswap.New(gw, 42)
	pool := domain.PoolConfig{PoolId: 7, Dex: domain.DexHumbleSwap, WrappedPair: wrappedPair()}

	state, err := a.FetchState(context.Background(), pool)
	require.NoError(t, err)
	require.Equal(t, domain.NativeTokenId, state.TokA)
	require.Equal(t, domain.TokenId(6), state.TokB)
	require.Equal(t, big.NewInt(500_000), state.ReserveA)
	require.Equal(t, big.NewInt(600_000), state.ReserveB)
	require.Equal(t, uint32(50), state.FeeBps)
}

func TestFetchState_MissingReservesErrors(t *testing.T) {
	gw := &fakeGateway{globalState: map[string][]byte{}}
	a := humbleswap.New(gw, 42)
	pool := domain.PoolConfig{PoolId: 7, Dex: domain.DexHumbleSwap, WrappedPair: wrappedPair()}

	_, err := a.FetchState(context.Background(), pool)
	require.Error(t, err)
}

func TestComputeOutput_MatchesConstantProductFormula(t *testing.T) {
	a := humbleswap.New(&fakeGateway{}, 42)
	state := domain.PoolState{TokA: 0, TokB: 6, ReserveA: big.NewInt(500_000), ReserveB: big.NewInt(600_000), FeeBps: 50}

	got := a.ComputeOutput(state, 0, 6, big.NewInt(10_000))
	want := amm.ComputeOutput(big.NewInt(500_000), big.NewInt(600_000), 50, big.NewInt(10_000))
	require.Equal(t, want, got)
}

func TestComputeOutput_WrongPairReturnsZero(t *testing.T) {
	a := humbleswap.New(&fakeGateway{}, 42)
	state := domain.PoolState{TokA: 0, TokB: 6, ReserveA: big.NewInt(500_000), ReserveB: big.NewInt(600_000), FeeBps: 50}

	got := a.ComputeOutput(state, 0, 9, big.NewInt(10_000))
	require.Equal(t, big.NewInt(0), got)
}

func TestBuildSwap_NativeInput_IncludesDepositApprovalAndSwap(t *testing.T) {
	a := humbleswap.New(&fakeGateway{}, 42)
	pool := domain.PoolConfig{PoolId: 7, Dex: domain.DexHumbleSwap, WrappedPair: wrappedPair()}
	req := domain.BuildSwapRequest{
		Pool:         pool,
		Sender:       testAddress(1),
		FromToken:    domain.NativeTokenId,
		ToToken:      6,
		AmountIn:     big.NewInt(1000),
		MinAmountOut: big.NewInt(900),
	}

	txns, err := a.BuildSwap(context.Background(), req)
	require.NoError(t, err)
	// deposit (pay+app-call) + approval + output-box-ensure + swap + withdraw.
	require.Len(t, txns, 6)
}

func TestBuildSwap_SkipDepositAndWithdraw_OmitsBoundarySteps(t *testing.T) {
	a := humbleswap.New(&fakeGateway{}, 42)
	pool := domain.PoolConfig{PoolId: 7, Dex: domain.DexHumbleSwap, WrappedPair: wrappedPair()}
	req := domain.BuildSwapRequest{
		Pool:         pool,
		Sender:       testAddress(1),
		FromToken:    domain.NativeTokenId,
		ToToken:      6,
		AmountIn:     big.NewInt(1000),
		MinAmountOut: big.NewInt(900),
		SkipDeposit:  true,
		SkipWithdraw: true,
	}

	txns, err := a.BuildSwap(context.Background(), req)
	require.NoError(t, err)
	// approval + output-box-ensure + swap, no padding needed since two
	// transactions already precede the swap call.
	require.Len(t, txns, 3)
}

func TestBuildSwap_PureArc200Output_SkipsWithdraw(t *testing.T) {
	a := humbleswap.New(&fakeGateway{}, 42)
	// TokB's wrapped contract (101) has no underlying mapping, so trading
	// into it is a pure-ARC200 leg: nothing to withdraw.
	pair := domain.WrappedPairConfig{
		TokA:                100,
		TokB:                101,
		UnderlyingToWrapped: map[domain.TokenId]domain.TokenId{5: 100},
		Unwrap:              map[domain.TokenId]struct{}{100: {}},
	}
	pool := domain.PoolConfig{PoolId: 7, Dex: domain.DexHumbleSwap, WrappedPair: pair}
	req := domain.BuildSwapRequest{
		Pool:         pool,
		Sender:       testAddress(1),
		FromToken:    5,
		ToToken:      101, // traded directly in wrapped form
		AmountIn:     big.NewInt(1000),
		MinAmountOut: big.NewInt(900),
	}

	txns, err := a.BuildSwap(context.Background(), req)
	require.NoError(t, err)
	// deposit (asa-transfer+app-call) + approval + output-box-ensure + swap,
	// no withdraw transaction appended.
	require.Len(t, txns, 5)
}
