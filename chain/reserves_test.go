package chain_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voinetwork/swaprouter/chain"
)

func TestParseGlobalUint_TriesAliasesInOrder(t *testing.T) {
	state := map[string][]byte{"reserveA": big.NewInt(42).Bytes()}
	v, ok := chain.ParseGlobalUint(state, chain.ReserveKeysA())
	require.True(t, ok)
	require.Equal(t, big.NewInt(42), v)
}

func TestParseGlobalUint_MissingReturnsFalse(t *testing.T) {
	_, ok := chain.ParseGlobalUint(map[string][]byte{}, chain.ReserveKeysA())
	require.False(t, ok)
}

func TestReconcile_Rule1_ConfiguredMatchesObserved(t *testing.T) {
	a, b := chain.Reconcile(big.NewInt(100), big.NewInt(200), big.NewInt(100), big.NewInt(200), true, true)
	require.Equal(t, big.NewInt(100), a)
	require.Equal(t, big.NewInt(200), b)
}

func TestReconcile_Rule2_ConfiguredSwapped(t *testing.T) {
	a, b := chain.Reconcile(big.NewInt(100), big.NewInt(200), big.NewInt(200), big.NewInt(100), true, true)
	require.Equal(t, big.NewInt(200), a)
	require.Equal(t, big.NewInt(100), b)
}

func TestReconcile_Rule3_NeitherMatches_TrustsObserved(t *testing.T) {
	a, b := chain.Reconcile(big.NewInt(1), big.NewInt(2), big.NewInt(500), big.NewInt(700), true, true)
	require.Equal(t, big.NewInt(500), a)
	require.Equal(t, big.NewInt(700), b)
}

func TestReconcile_Rule4_OnlyAObservable_MatchesOtherSlot(t *testing.T) {
	// actualA matches the configured B slot -> the slots are swapped, so the
	// known true value goes to A and the stale mislabeled value moves to B.
	a, b := chain.Reconcile(big.NewInt(100), big.NewInt(200), big.NewInt(200), nil, true, false)
	require.Equal(t, big.NewInt(200), a)
	require.Equal(t, big.NewInt(100), b)
}

func TestReconcile_Rule4_OnlyAObservable_NoMatch_OverwritesA(t *testing.T) {
	a, b := chain.Reconcile(big.NewInt(100), big.NewInt(200), big.NewInt(999), nil, true, false)
	require.Equal(t, big.NewInt(999), a)
	require.Equal(t, big.NewInt(200), b)
}

func TestReconcile_Rule4_OnlyBObservable_MatchesOtherSlot(t *testing.T) {
	// actualB matches the configured A slot -> the slots are swapped, so the
	// stale mislabeled value moves to A and the known true value goes to B.
	a, b := chain.Reconcile(big.NewInt(100), big.NewInt(200), nil, big.NewInt(100), false, true)
	require.Equal(t, big.NewInt(200), a)
	require.Equal(t, big.NewInt(100), b)
}

func TestReconcile_Rule4_OnlyBObservable_NoMatch_OverwritesB(t *testing.T) {
	a, b := chain.Reconcile(big.NewInt(100), big.NewInt(200), nil, big.NewInt(999), false, true)
	require.Equal(t, big.NewInt(100), a)
	require.Equal(t, big.NewInt(999), b)
}

func TestReconcile_Rule5_NothingObservable_TrustsConfigured(t *testing.T) {
	a, b := chain.Reconcile(big.NewInt(100), big.NewInt(200), nil, nil, false, false)
	require.Equal(t, big.NewInt(100), a)
	require.Equal(t, big.NewInt(200), b)
}
