package nomadex_test

import (
	"context"
	"crypto/sha512"
	"encoding/base32"
	"encoding/binary"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voinetwork/swaprouter/amm"
	"github.com/voinetwork/swaprouter/amm/nomadex"
	"github.com/voinetwork/swaprouter/domain"
)

// testAddress builds a valid, checksummed Algorand address from a single
// repeated byte so transaction-building calls that decode the address
// string (rather than the boxref package's lenient box-ref decoder) succeed.
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

type fakeGateway struct {
	globalState map[string][]byte
	account     domain.AccountState
	arc200      map[domain.TokenId]*big.Int
}

func (g *fakeGateway) GetAccountState(ctx context.Context, address string) (domain.AccountState, error) {
	return g.account, nil
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
		return nil, errNotFound
	}
	return bal, nil
}

func (g *fakeGateway) GetSuggestedTxParams(ctx context.Context) (domain.SuggestedParams, error) {
	return domain.SuggestedParams{}, nil
}

var errNotFound = &notFoundErr{}

type notFoundErr struct{}

func (*notFoundErr) Error() string { return "not found" }

func beUint(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}

func TestFetchState_ReadsReservesAndFeeFromGlobalState(t *testing.T) {
	gw := &fakeGateway{
		globalState: map[string][]byte{
			"reserve_a": beUint(1_000_000),
			"reserve_b": beUint(2_000_000),
			"fee":       beUint(30),
		},
		account: domain.AccountState{
			NativeBalance: big.NewInt(1_000_000),
			Assets:        map[domain.TokenId]*big.Int{5: big.NewInt(2_000_000)},
		},
	}
	a := nomadex.New(gw, 999)
	pool := domain.PoolConfig{
		PoolId:      1,
		Dex:         domain.DexNomadex,
		NomadexTokA: domain.NomadexTokenRef{Id: 0, Type: domain.NomadexTokenNative},
		NomadexTokB: domain.NomadexTokenRef{Id: 5, Type: domain.NomadexTokenASA},
	}

	state, err := a.FetchState(context.Background(), pool)
	require.NoError(t, err)
	require.Equal(t, domain.TokenId(0), state.TokA)
	require.Equal(t, domain.TokenId(5), state.TokB)
	require.Equal(t, big.NewInt(1_000_000), state.ReserveA)
	require.Equal(t, big.NewInt(2_000_000), state.ReserveB)
	require.Equal(t, uint32(30), state.FeeBps)
}

func TestFetchState_FeeBpsOverrideWinsOverChainValue(t *testing.T) {
	gw := &fakeGateway{
		globalState: map[string][]byte{
			"reserve_a": beUint(100),
			"reserve_b": beUint(100),
			"fee":       beUint(30),
		},
		account: domain.AccountState{NativeBalance: big.NewInt(100), Assets: map[domain.TokenId]*big.Int{5: big.NewInt(100)}},
	}
	a := nomadex.New(gw, 999)
	override := uint32(75)
	pool := domain.PoolConfig{
		PoolId:      1,
		Dex:         domain.DexNomadex,
		FeeBps:      &override,
		NomadexTokA: domain.NomadexTokenRef{Id: 0, Type: domain.NomadexTokenNative},
		NomadexTokB: domain.NomadexTokenRef{Id: 5, Type: domain.NomadexTokenASA},
	}

	state, err := a.FetchState(context.Background(), pool)
	require.NoError(t, err)
	require.Equal(t, uint32(75), state.FeeBps)
}

func TestFetchState_MissingReservesErrors(t *testing.T) {
	gw := &fakeGateway{globalState: map[string][]byte{}}
	a := nomadex.New(gw, 999)
	pool := domain.PoolConfig{PoolId: 1, Dex: domain.DexNomadex}

	_, err := a.FetchState(context.Background(), pool)
	require.Error(t, err)
}

func TestComputeOutput_MatchesConstantProductFormula(t *testing.T) {
	a := nomadex.New(&fakeGateway{}, 999)
	state := domain.PoolState{TokA: 1, TokB: 2, ReserveA: big.NewInt(1_000_000), ReserveB: big.NewInt(1_000_000), FeeBps: 30}

	got := a.ComputeOutput(state, 1, 2, big.NewInt(10_000))
	want := amm.ComputeOutput(big.NewInt(1_000_000), big.NewInt(1_000_000), 30, big.NewInt(10_000))
	require.Equal(t, want, got)
}

func TestComputeOutput_WrongPairReturnsZero(t *testing.T) {
	a := nomadex.New(&fakeGateway{}, 999)
	state := domain.PoolState{TokA: 1, TokB: 2, ReserveA: big.NewInt(1_000_000), ReserveB: big.NewInt(1_000_000), FeeBps: 30}

	got := a.ComputeOutput(state, 1, 3, big.NewInt(10_000))
	require.Equal(t, big.NewInt(0), got)
}

func TestBuildSwap_NativeLeg_ProducesPaymentAndSwapCall(t *testing.T) {
	a := nomadex.New(&fakeGateway{}, 999)
	pool := domain.PoolConfig{
		PoolId:      1,
		Dex:         domain.DexNomadex,
		NomadexTokA: domain.NomadexTokenRef{Id: 0, Type: domain.NomadexTokenNative},
		NomadexTokB: domain.NomadexTokenRef{Id: 5, Type: domain.NomadexTokenASA},
	}
	req := domain.BuildSwapRequest{
		Pool:         pool,
		Sender:       testAddress(1),
		FromToken:    0,
		ToToken:      5,
		AmountIn:     big.NewInt(1000),
		MinAmountOut: big.NewInt(900),
	}

	txns, err := a.BuildSwap(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, txns, 2)
}

func TestBuildSwap_UnconfiguredPairErrors(t *testing.T) {
	a := nomadex.New(&fakeGateway{}, 999)
	pool := domain.PoolConfig{
		PoolId:      1,
		Dex:         domain.DexNomadex,
		NomadexTokA: domain.NomadexTokenRef{Id: 0, Type: domain.NomadexTokenNative},
		NomadexTokB: domain.NomadexTokenRef{Id: 5, Type: domain.NomadexTokenASA},
	}
	req := domain.BuildSwapRequest{
		Pool:      pool,
		Sender:    testAddress(1),
		FromToken: 0,
		ToToken:   7, // not one of the pool's sides
		AmountIn:  big.NewInt(1000),
	}

	_, err := a.BuildSwap(context.Background(), req)
	require.Error(t, err)
}
