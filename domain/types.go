// Package domain holds the core data model and collaborator interfaces for
// the swap aggregator: pool configuration, cached pool state, routes, and
// the planned swap that the atomic group builder consumes. Nothing in this
// package talks to the chain directly.
package domain

import (
	"math/big"
	"strconv"
)

// TokenId identifies an underlying chain asset. Zero denotes the chain's
// native token (VOI).
type TokenId uint64

// NativeTokenId is the reserved TokenId for the chain's native token.
const NativeTokenId TokenId = 0

func (t TokenId) String() string {
	return strconv.FormatUint(uint64(t), 10)
}

// Dex identifies which AMM protocol a pool belongs to.
type Dex string

const (
	DexHumbleSwap Dex = "humbleswap"
	DexNomadex    Dex = "nomadex"
)

// NomadexTokenType classifies how a Nomadex pool holds one side of its pair.
type NomadexTokenType string

const (
	NomadexTokenNative NomadexTokenType = "native"
	NomadexTokenASA    NomadexTokenType = "asa"
	NomadexTokenARC200 NomadexTokenType = "arc200"
)

// NomadexTokenRef describes one side of a Nomadex pool's configured pair.
type NomadexTokenRef struct {
	Id   TokenId
	Type NomadexTokenType
}

// WrappedPairConfig describes the wrapped-ARC200 contract pair a HumbleSwap
// pool trades, and how each underlying token maps onto it.
type WrappedPairConfig struct {
	// TokA, TokB are the wrapped-token (ARC200) contract IDs held by the pool.
	TokA, TokB TokenId

	// UnderlyingToWrapped maps an underlying token ID to the wrapped
	// contract ID that represents it in this pool.
	UnderlyingToWrapped map[TokenId]TokenId

	// Unwrap is the set of wrapped token IDs that support withdrawing back
	// to their underlying form.
	Unwrap map[TokenId]struct{}
}

// Underlying returns the underlying token for a wrapped ID, or the wrapped
// ID itself if no underlying mapping exists (a pure-ARC200 leg).
func (w WrappedPairConfig) Underlying(wrapped TokenId) TokenId {
	for underlying, w2 := range w.UnderlyingToWrapped {
		if w2 == wrapped {
			return underlying
		}
	}
	return wrapped
}

// CanUnwrap reports whether the wrapped token can be redeemed back to its
// underlying form directly by the contract (an "exchange" capability).
func (w WrappedPairConfig) CanUnwrap(wrapped TokenId) bool {
	_, ok := w.Unwrap[wrapped]
	return ok
}

// PoolConfig is the immutable, catalog-loaded description of one pool. It
// never changes for the lifetime of the process once loaded.
type PoolConfig struct {
	PoolId TokenId
	Dex    Dex

	// FeeBps optionally overrides the on-chain fee, in basis points.
	// A nil value means "read fee from chain state".
	FeeBps *uint32

	// HumbleSwap-specific configuration. Zero value when Dex != DexHumbleSwap.
	WrappedPair WrappedPairConfig

	// Nomadex-specific configuration. Zero value when Dex != DexNomadex.
	NomadexTokA NomadexTokenRef
	NomadexTokB NomadexTokenRef
}

// UnderlyingTokens returns the pair of underlying tokens this pool trades,
// used to build the pool graph's edge endpoints.
func (p PoolConfig) UnderlyingTokens() (TokenId, TokenId) {
	switch p.Dex {
	case DexHumbleSwap:
		return p.WrappedPair.Underlying(p.WrappedPair.TokA), p.WrappedPair.Underlying(p.WrappedPair.TokB)
	case DexNomadex:
		return p.NomadexTokA.Id, p.NomadexTokB.Id
	default:
		return 0, 0
	}
}

// OtherUnderlying returns the underlying token on the other side of the
// pool from token, used to thread a multi-hop route's token sequence
// forward from its selected plan.
func (p PoolConfig) OtherUnderlying(token TokenId) TokenId {
	a, b := p.UnderlyingTokens()
	if token == a {
		return b
	}
	return a
}

// PoolState is the mutable, on-chain-derived state of a pool, fetched lazily
// and cached for the duration of one planning call only.
type PoolState struct {
	PoolId TokenId
	Dex    Dex

	// ReserveA, ReserveB are reconciled so that ReserveA corresponds to TokA
	// (see the Chain Gateway's reserve-reconciliation rule).
	ReserveA, ReserveB *big.Int

	// FeeBps is the effective fee in basis points, after applying any
	// PoolConfig.FeeBps override.
	FeeBps uint32

	// TokA, TokB are the underlying token IDs in the pool's configured
	// order; reconciliation reorders the reserves to match them, never the
	// tokens.
	TokA, TokB TokenId
}

// ReserveFor returns the reserve backing `token`, and the reserve on the
// other side, in (reserveIn, reserveOut) order. ok is false if token is not
// one of the pool's two sides.
func (s PoolState) ReserveFor(token TokenId) (reserveIn, reserveOut *big.Int, ok bool) {
	switch token {
	case s.TokA:
		return s.ReserveA, s.ReserveB, true
	case s.TokB:
		return s.ReserveB, s.ReserveA, true
	default:
		return nil, nil, false
	}
}

// OtherToken returns the token on the other side of the pool from `token`.
func (s PoolState) OtherToken(token TokenId) TokenId {
	if token == s.TokA {
		return s.TokB
	}
	return s.TokA
}

// Route is one candidate path between two underlying tokens: an ordered
// token sequence of length hops+1, and, for each hop, every pool covering
// that hop's token pair.
type Route struct {
	Tokens      []TokenId
	PoolOptions [][]PoolConfig
}

// Hops returns the number of pool traversals in the route.
func (r Route) Hops() int {
	if len(r.Tokens) == 0 {
		return 0
	}
	return len(r.Tokens) - 1
}

// PoolQuote is the output of quoting a single pool for a given input.
type PoolQuote struct {
	Pool         PoolConfig
	AmountIn     *big.Int
	AmountOut    *big.Int
	MinOut       *big.Int
	PriceImpact  float64
}

// HopSplit is the distribution of one hop's input amount across its pool
// options; AmountIn over all splits sums exactly to the hop's input.
type HopSplit struct {
	Pool        PoolConfig
	AmountIn    *big.Int
	ExpectedOut *big.Int
	MinOut      *big.Int
	Quote       PoolQuote
}

// PlatformFee describes the optional fee skimmed from a multi-pool plan's
// gain over the best single-pool baseline.
type PlatformFee struct {
	Gain       *big.Int
	FeeAmount  *big.Int
	FeeBps     uint32
	FeeAddress string
	Applied    bool
}

// PlannedSwap is the result of route selection: one HopSplit list per hop,
// plus the aggregate amounts the atomic group builder and the HTTP layer
// report to the caller.
type PlannedSwap struct {
	Hops [][]HopSplit

	TotalIn          *big.Int
	TotalOut         *big.Int
	TotalMinOut      *big.Int
	WeightedPriceImpact float64

	IsMultiHop bool

	PlatformFee *PlatformFee
}

// TokenMetadata is the catalog-loaded descriptive data for a token.
type TokenMetadata struct {
	Id       TokenId
	Symbol   string
	Name     string
	Decimals int

	// WrappedTokenId is the ARC200 contract ID that wraps this token, if
	// any (zero when the token has no wrapped representation in the
	// catalog).
	WrappedTokenId TokenId
}
