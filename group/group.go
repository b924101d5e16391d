// Package group assembles the atomic transaction group returned to the
// client: one adapter call per split, in strict hop-then-split order, a
// single group ID assigned last. Grounded on the "build as data, assign
// the mutating step once" pattern, centralizing order-sensitive assembly
// in one place rather than mutating transactions as they're built.
package group

import (
	"context"
	"fmt"

	"github.com/algorand/go-algorand-sdk/v2/transaction"
	"github.com/algorand/go-algorand-sdk/v2/types"

	"github.com/voinetwork/swaprouter/domain"
)

// AdapterRegistry dispatches a pool's Dex to its AMMAdapter; satisfied by
// amm.Registry (mirrors router/usecase.AdapterRegistry to avoid an import
// cycle between group and router/usecase).
type AdapterRegistry interface {
	For(dex domain.Dex) (domain.AMMAdapter, error)
}

// Result is the assembled group plus the metadata the HTTP layer reports
// alongside it.
type Result struct {
	// Transactions is the ordered, group-ID-assigned sequence, ready to be
	// base64-encoded for the client to sign.
	Transactions []types.Transaction
	NetworkFee   uint64
}

// ChainParams is the narrow chain-gateway surface the Builder needs: fresh
// suggested transaction parameters for the group it is about to assemble.
type ChainParams interface {
	GetSuggestedTxParams(ctx context.Context) (domain.SuggestedParams, error)
}

// Builder binds Build to a registry and chain gateway so the HTTP layer can
// depend on the narrow interface it actually needs (see router/delivery/
// http.GroupBuilder).
type Builder struct {
	registry AdapterRegistry
	gateway  ChainParams
}

// NewBuilder constructs a Builder.
func NewBuilder(registry AdapterRegistry, gateway ChainParams) *Builder {
	return &Builder{registry: registry, gateway: gateway}
}

// Build fetches fresh suggested parameters and assembles plan's transaction
// group for sender.
func (b *Builder) Build(ctx context.Context, plan domain.PlannedSwap, tokens []domain.TokenId, sender string) (Result, error) {
	params, err := b.gateway.GetSuggestedTxParams(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("%w: suggested params: %s", domain.ErrBuildFailed, err)
	}
	return Build(ctx, b.registry, plan, tokens, sender, params, plan.PlatformFee)
}

// Build assembles the full transaction group for a PlannedSwap, following
// its hop-then-split ordering and wrapped-chaining rules. If any adapter
// fails to build its leg, it
// returns domain.ErrBuildFailed: callers are expected to degrade this into
// a quote-only response (empty transaction list) rather than fail the
// request outright, per the error-handling design.
func Build(ctx context.Context, registry AdapterRegistry, plan domain.PlannedSwap, tokens []domain.TokenId, sender string, params domain.SuggestedParams, fee *domain.PlatformFee) (Result, error) {
	var txns []types.Transaction

	hopCount := len(plan.Hops)
	for hopIdx, splits := range plan.Hops {
		fromToken, toToken := tokens[hopIdx], tokens[hopIdx+1]
		isFirstHop := hopIdx == 0
		isFinalHop := hopIdx == hopCount-1

		skipDeposit := !isFirstHop && hopChainsWrapped(plan.Hops, hopIdx-1, hopIdx, tokens[hopIdx])
		skipWithdraw := !isFinalHop && hopChainsWrapped(plan.Hops, hopIdx, hopIdx+1, tokens[hopIdx+1])

		for _, split := range splits {
			adapter, err := registry.For(split.Pool.Dex)
			if err != nil {
				return Result{}, fmt.Errorf("%w: %s", domain.ErrBuildFailed, err)
			}

			swapTxns, err := adapter.BuildSwap(ctx, domain.BuildSwapRequest{
				Pool:         split.Pool,
				FromToken:    fromToken,
				ToToken:      toToken,
				AmountIn:     split.AmountIn,
				MinAmountOut: split.MinOut,
				Sender:       sender,
				IsFirstHop:   isFirstHop,
				IsFinalHop:   isFinalHop,
				SkipDeposit:  skipDeposit,
				SkipWithdraw: skipWithdraw,
				Params:       params,
			})
			if err != nil {
				return Result{}, fmt.Errorf("%w: pool %d: %s", domain.ErrBuildFailed, split.Pool.PoolId, err)
			}
			txns = append(txns, swapTxns...)
		}
	}

	if fee != nil && fee.Applied {
		feeTxn, err := buildFeeTransaction(sender, fee, tokens[len(tokens)-1], params)
		if err != nil {
			return Result{}, fmt.Errorf("%w: fee transaction: %s", domain.ErrBuildFailed, err)
		}
		txns = append(txns, feeTxn)
	}

	if len(txns) == 0 {
		return Result{}, fmt.Errorf("%w: no transactions assembled", domain.ErrBuildFailed)
	}

	groupTxns, err := assignGroupID(txns)
	if err != nil {
		return Result{}, fmt.Errorf("%w: group ID assignment: %s", domain.ErrBuildFailed, err)
	}

	var networkFee uint64
	for _, t := range groupTxns {
		networkFee += t.Fee.Raw
	}

	return Result{Transactions: groupTxns, NetworkFee: networkFee}, nil
}

// assignGroupID clears any per-transaction group ID and assigns one group
// ID across the whole sequence, as the only mutating step in assembly.
func assignGroupID(txns []types.Transaction) ([]types.Transaction, error) {
	for i := range txns {
		txns[i].Group = types.Digest{}
	}
	groupID, err := transaction.ComputeGroupID(txns)
	if err != nil {
		return nil, err
	}
	for i := range txns {
		txns[i].Group = groupID
	}
	return txns, nil
}

// hopChainsWrapped reports whether consecutive hops a and b are both
// all-HumbleSwap and resolve connecting, the underlying token passing
// between them, to the same wrapped contract, in which case the
// deposit/withdraw boundary crossing can be skipped. Mixed-dex or
// Nomadex-adjacent hops never chain (Nomadex trades underlying tokens
// directly, so there is no wrapped form to carry forward). The wrapped id a
// pool resolves connecting to depends on that pool's actual swap direction,
// not on any fixed TokA/TokB convention, so each pool's wrapped id is
// resolved the same way the HumbleSwap adapter resolves it when building the
// swap.
func hopChainsWrapped(hops [][]domain.HopSplit, a, b int, connecting domain.TokenId) bool {
	if a < 0 || b >= len(hops) {
		return false
	}
	for _, outSplit := range hops[a] {
		if outSplit.Pool.Dex != domain.DexHumbleSwap {
			return false
		}
	}
	for _, inSplit := range hops[b] {
		if inSplit.Pool.Dex != domain.DexHumbleSwap {
			return false
		}
	}

	// Every pool on both sides must resolve connecting to the same wrapped
	// id (otherwise "the next hop's expected input form" differs per pool).
	var wrapped domain.TokenId
	first := true
	for _, s := range hops[a] {
		w := wrappedIdFor(s.Pool.WrappedPair, connecting)
		if first {
			wrapped, first = w, false
		} else if w != wrapped {
			return false
		}
	}
	for _, s := range hops[b] {
		w := wrappedIdFor(s.Pool.WrappedPair, connecting)
		if first {
			wrapped, first = w, false
		} else if w != wrapped {
			return false
		}
	}
	return wrapped != 0
}

// wrappedIdFor resolves the wrapped contract id connecting trades through
// for a pool: the configured mapping if one exists, or connecting itself
// when it has no underlying form (a pure-ARC200 leg). Mirrors
// amm/humbleswap's own wrappedFor, since the two must agree on which
// wrapped id a given underlying token resolves to.
func wrappedIdFor(pair domain.WrappedPairConfig, connecting domain.TokenId) domain.TokenId {
	if wrapped, ok := pair.UnderlyingToWrapped[connecting]; ok {
		return wrapped
	}
	return connecting
}

func buildFeeTransaction(sender string, fee *domain.PlatformFee, outputToken domain.TokenId, params domain.SuggestedParams) (types.Transaction, error) {
	if outputToken == domain.NativeTokenId {
		return transaction.MakePaymentTxn(sender, fee.FeeAddress, fee.FeeAmount.Uint64(), nil, "", params)
	}
	return transaction.MakeAssetTransferTxn(sender, fee.FeeAddress, fee.FeeAmount.Uint64(), "", params, "", uint64(outputToken))
}
