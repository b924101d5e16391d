package domain

import (
	"context"
	"math/big"

	"github.com/algorand/go-algorand-sdk/v2/types"
)

// AccountState is the subset of on-chain account data the gateway exposes.
type AccountState struct {
	NativeBalance *big.Int
	Assets        map[TokenId]*big.Int
}

// SuggestedParams mirrors the fields of the chain's suggested transaction
// parameters that adapters need to build transactions.
type SuggestedParams = types.SuggestedParams

// ChainGateway is the read-only interface to the chain. Implementations may
// be HTTP clients against algod/indexer; the core is agnostic to transport.
type ChainGateway interface {
	GetAccountState(ctx context.Context, address string) (AccountState, error)

	// GetApplicationGlobalState returns the raw, bytes-decoded global state
	// key/value pairs for an application.
	GetApplicationGlobalState(ctx context.Context, appId uint64) (map[string][]byte, error)

	// GetAssetDecimals returns the number of decimals for an ASA, or 6 if
	// unknown. Native token decimals are always 6. Results are cached
	// process-globally, forever (decimals are immutable).
	GetAssetDecimals(ctx context.Context, assetId TokenId) (int, error)

	// GetArc200Balance performs a read-only balanceOf call against a
	// wrapped-token (ARC200) contract.
	GetArc200Balance(ctx context.Context, contractId TokenId, address string) (*big.Int, error)

	GetSuggestedTxParams(ctx context.Context) (SuggestedParams, error)
}

// AMMAdapter is the shared contract both DEX adapters implement. Pool is a
// tagged variant dispatched on PoolConfig.Dex at the adapter boundary; see
// amm.Registry.For for the dispatch helper.
type AMMAdapter interface {
	// FetchState reads and reconciles the current reserves and fee for pool.
	FetchState(ctx context.Context, pool PoolConfig) (PoolState, error)

	// ComputeOutput applies the constant-product formula for a swap of
	// amountIn from fromToken to toToken against state. Returns zero if the
	// inputs are non-positive or would drive reserves non-positive.
	ComputeOutput(state PoolState, fromToken, toToken TokenId, amountIn *big.Int) *big.Int

	// BuildSwap assembles the ordered transaction sequence that executes
	// one hop's swap on this pool for a single split.
	BuildSwap(ctx context.Context, req BuildSwapRequest) ([]types.Transaction, error)
}

// BuildSwapRequest carries everything an adapter needs to build one pool's
// leg of the transaction group.
type BuildSwapRequest struct {
	Pool          PoolConfig
	State         PoolState
	Sender        string
	FromToken     TokenId
	ToToken       TokenId
	AmountIn      *big.Int
	MinAmountOut  *big.Int
	IsFirstHop    bool
	IsFinalHop    bool
	// SkipDeposit/SkipWithdraw let the group builder ask an adapter to omit
	// the wrapped<->underlying boundary crossing when chaining hops whose
	// wrapped forms already match.
	SkipDeposit  bool
	SkipWithdraw bool
	Params       SuggestedParams
}

// PoolCatalog is the external collaborator that loads and exposes the
// immutable pool/token configuration for the process lifetime.
type PoolCatalog interface {
	Pools() []PoolConfig
	Pool(id TokenId) (PoolConfig, bool)
	Token(id TokenId) (TokenMetadata, bool)
	Tokens() map[TokenId]TokenMetadata
}
