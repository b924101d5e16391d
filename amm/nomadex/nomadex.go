// Package nomadex implements the direct-token constant-product DEX
// adapter: unlike HumbleSwap it trades native/ASA/ARC200 tokens directly,
// so its transaction sequence is just a deposit followed by one ABI swap
// call referencing it.
package nomadex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/algorand/go-algorand-sdk/v2/abi"
	"github.com/algorand/go-algorand-sdk/v2/transaction"
	"github.com/algorand/go-algorand-sdk/v2/types"

	"github.com/voinetwork/swaprouter/amm"
	"github.com/voinetwork/swaprouter/amm/boxref"
	"github.com/voinetwork/swaprouter/chain"
	"github.com/voinetwork/swaprouter/domain"
)

var swapMethod = mustMethod("swap(txn,uint256)uint64")

func mustMethod(sig string) abi.Method {
	m, err := abi.MethodFromSignature(sig)
	if err != nil {
		panic(err)
	}
	return m
}

// Adapter implements domain.AMMAdapter for Nomadex pools.
type Adapter struct {
	gateway   domain.ChainGateway
	factoryId uint64
}

// New builds a Nomadex adapter. factoryId is the shared factory app every
// pool call must list as a foreign app.
func New(gateway domain.ChainGateway, factoryId uint64) *Adapter {
	return &Adapter{gateway: gateway, factoryId: factoryId}
}

func (a *Adapter) FetchState(ctx context.Context, pool domain.PoolConfig) (domain.PoolState, error) {
	globalState, err := a.gateway.GetApplicationGlobalState(ctx, uint64(pool.PoolId))
	if err != nil {
		return domain.PoolState{}, fmt.Errorf("nomadex: fetch state for pool %d: %w", pool.PoolId, err)
	}

	reserveA, haveReserveA := chain.ParseGlobalUint(globalState, chain.ReserveKeysA())
	reserveB, haveReserveB := chain.ParseGlobalUint(globalState, chain.ReserveKeysB())
	if !haveReserveA || !haveReserveB {
		return domain.PoolState{}, fmt.Errorf("nomadex: pool %d: reserves not found in global state", pool.PoolId)
	}

	feeBps := pool.FeeBps
	var effectiveFee uint32
	if feeBps != nil {
		effectiveFee = *feeBps
	} else if fee, ok := chain.ParseGlobalUint(globalState, chain.FeeKeys()); ok {
		effectiveFee = uint32(fee.Uint64())
	}

	poolAddress := types.AppID(pool.PoolId).Address().String()
	actualA, haveA := a.observeBalance(ctx, pool.NomadexTokA, poolAddress)
	actualB, haveB := a.observeBalance(ctx, pool.NomadexTokB, poolAddress)

	finalA, finalB := chain.Reconcile(reserveA, reserveB, actualA, actualB, haveA, haveB)

	return domain.PoolState{
		PoolId:   pool.PoolId,
		Dex:      domain.DexNomadex,
		ReserveA: finalA,
		ReserveB: finalB,
		FeeBps:   effectiveFee,
		TokA:     pool.NomadexTokA.Id,
		TokB:     pool.NomadexTokB.Id,
	}, nil
}

// observeBalance reads a pool's actual on-chain holding for one configured
// side, routing by the token's nature.
func (a *Adapter) observeBalance(ctx context.Context, ref domain.NomadexTokenRef, poolAddress string) (*big.Int, bool) {
	switch ref.Type {
	case domain.NomadexTokenNative:
		state, err := a.gateway.GetAccountState(ctx, poolAddress)
		if err != nil {
			return nil, false
		}
		return state.NativeBalance, true
	case domain.NomadexTokenASA:
		state, err := a.gateway.GetAccountState(ctx, poolAddress)
		if err != nil {
			return nil, false
		}
		bal, ok := state.Assets[ref.Id]
		return bal, ok
	case domain.NomadexTokenARC200:
		bal, err := a.gateway.GetArc200Balance(ctx, ref.Id, poolAddress)
		if err != nil {
			return nil, false
		}
		return bal, true
	default:
		return nil, false
	}
}

func (a *Adapter) ComputeOutput(state domain.PoolState, fromToken, toToken domain.TokenId, amountIn *big.Int) *big.Int {
	reserveIn, reserveOut, ok := state.ReserveFor(fromToken)
	if !ok || toToken != state.OtherToken(fromToken) {
		return big.NewInt(0)
	}
	return amm.ComputeOutput(reserveIn, reserveOut, state.FeeBps, amountIn)
}

// BuildSwap assembles the deposit transaction and the ABI swap call that
// references it.
func (a *Adapter) BuildSwap(ctx context.Context, req domain.BuildSwapRequest) ([]types.Transaction, error) {
	fromRef, _, err := sides(req.Pool, req.FromToken, req.ToToken)
	if err != nil {
		return nil, fmt.Errorf("nomadex: %w", err)
	}

	poolAddress := types.AppID(req.Pool.PoolId).Address().String()

	deposit, err := a.buildDeposit(req, fromRef, poolAddress)
	if err != nil {
		return nil, fmt.Errorf("nomadex: build deposit: %w", err)
	}

	swapCall, err := a.buildSwapCall(req, poolAddress)
	if err != nil {
		return nil, fmt.Errorf("nomadex: build swap call: %w", err)
	}

	return []types.Transaction{deposit, swapCall}, nil
}

func sides(pool domain.PoolConfig, from, to domain.TokenId) (fromRef, toRef domain.NomadexTokenRef, err error) {
	switch {
	case pool.NomadexTokA.Id == from && pool.NomadexTokB.Id == to:
		return pool.NomadexTokA, pool.NomadexTokB, nil
	case pool.NomadexTokB.Id == from && pool.NomadexTokA.Id == to:
		return pool.NomadexTokB, pool.NomadexTokA, nil
	default:
		return domain.NomadexTokenRef{}, domain.NomadexTokenRef{}, fmt.Errorf("pool %d does not trade %d->%d", pool.PoolId, from, to)
	}
}

func (a *Adapter) buildDeposit(req domain.BuildSwapRequest, fromRef domain.NomadexTokenRef, poolAddress string) (types.Transaction, error) {
	switch fromRef.Type {
	case domain.NomadexTokenNative:
		return transaction.MakePaymentTxn(req.Sender, poolAddress, req.AmountIn.Uint64(), nil, "", req.Params)
	case domain.NomadexTokenASA:
		return transaction.MakeAssetTransferTxn(req.Sender, poolAddress, req.AmountIn.Uint64(), "", req.Params, "", uint64(fromRef.Id))
	case domain.NomadexTokenARC200:
		boxes, err := boxref.ForTransfer(uint64(fromRef.Id), req.Sender, poolAddress)
		if err != nil {
			return types.Transaction{}, err
		}
		args, err := encodeTransfer(poolAddress, req.AmountIn)
		if err != nil {
			return types.Transaction{}, err
		}
		return transaction.MakeApplicationNoOpTx(uint64(fromRef.Id), args, nil, nil, boxes, req.Params, req.Sender, nil, types.Digest{}, [32]byte{}, types.Address{})
	default:
		return types.Transaction{}, fmt.Errorf("unknown token type %q", fromRef.Type)
	}
}

func (a *Adapter) buildSwapCall(req domain.BuildSwapRequest, poolAddress string) (types.Transaction, error) {
	selector, err := swapMethod.GetSelector()
	if err != nil {
		return types.Transaction{}, err
	}
	uint256Type, err := abi.TypeOf("uint256")
	if err != nil {
		return types.Transaction{}, err
	}
	minOutArg, err := uint256Type.Encode(req.MinAmountOut)
	if err != nil {
		return types.Transaction{}, err
	}

	foreignApps := []uint64{a.factoryId}
	var foreignAssets []uint64
	if req.FromToken != domain.NativeTokenId {
		foreignAssets = append(foreignAssets, uint64(req.FromToken))
	}
	if req.ToToken != domain.NativeTokenId {
		foreignAssets = append(foreignAssets, uint64(req.ToToken))
	}

	var boxes []types.AppBoxReference
	if req.FromToken != domain.NativeTokenId {
		if b, err := boxref.ForTransfer(uint64(req.FromToken), req.Sender, poolAddress); err == nil {
			boxes = append(boxes, b...)
		}
	}

	return transaction.MakeApplicationCallTxWithBoxes(
		uint64(req.Pool.PoolId),
		[][]byte{selector, minOutArg},
		nil, nil, foreignAssets, boxes,
		types.NoOpOC,
		nil, nil, nil,
		req.Params, req.Sender, nil,
		types.Digest{}, [32]byte{}, types.Address{},
		foreignApps,
	)
}

func encodeTransfer(to string, amount *big.Int) ([][]byte, error) {
	selector, err := mustMethod("transfer(address,uint256)bool").GetSelector()
	if err != nil {
		return nil, err
	}
	addrType, err := abi.TypeOf("address")
	if err != nil {
		return nil, err
	}
	addr, err := types.DecodeAddress(to)
	if err != nil {
		return nil, err
	}
	encodedAddr, err := addrType.Encode(addr[:])
	if err != nil {
		return nil, err
	}
	uint256Type, err := abi.TypeOf("uint256")
	if err != nil {
		return nil, err
	}
	encodedAmount, err := uint256Type.Encode(amount)
	if err != nil {
		return nil, err
	}
	return [][]byte{selector, encodedAddr, encodedAmount}, nil
}
