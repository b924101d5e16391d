// Package humbleswap implements the wrapped-ARC200 constant-product DEX
// adapter, grounded on the codebase's pattern of one adapter struct per
// external pool-model concern (router/usecase's pool-model files), adapted
// from Osmosis's CFMM pools to HumbleSwap's deposit/withdraw-wrapped-token
// model.
package humbleswap

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

const feeAllowance = 5000 // flat microunit fee allowance reserved for the swap call

var (
	swapAForBMethod = mustMethod("swapAForB(uint64,uint64,uint64)uint64")
	swapBForAMethod = mustMethod("swapBForA(uint64,uint64,uint64)uint64")
)

func mustMethod(sig string) abi.Method {
	m, err := abi.MethodFromSignature(sig)
	if err != nil {
		panic(err)
	}
	return m
}

// Adapter implements domain.AMMAdapter for HumbleSwap pools.
type Adapter struct {
	gateway     domain.ChainGateway
	beaconAppId uint64
}

// New builds a HumbleSwap adapter. beaconAppId is the designated padding
// app referenced in step 4 of the transaction sequence.
func New(gateway domain.ChainGateway, beaconAppId uint64) *Adapter {
	return &Adapter{gateway: gateway, beaconAppId: beaconAppId}
}

func (a *Adapter) FetchState(ctx context.Context, pool domain.PoolConfig) (domain.PoolState, error) {
	globalState, err := a.gateway.GetApplicationGlobalState(ctx, uint64(pool.PoolId))
	if err != nil {
		return domain.PoolState{}, fmt.Errorf("humbleswap: fetch state for pool %d: %w", pool.PoolId, err)
	}

	reserveA, haveReserveA := chain.ParseGlobalUint(globalState, chain.ReserveKeysA())
	reserveB, haveReserveB := chain.ParseGlobalUint(globalState, chain.ReserveKeysB())
	if !haveReserveA || !haveReserveB {
		return domain.PoolState{}, fmt.Errorf("humbleswap: pool %d: reserves not found in global state", pool.PoolId)
	}

	feeBps := pool.FeeBps
	var effectiveFee uint32
	if feeBps != nil {
		effectiveFee = *feeBps
	} else if fee, ok := chain.ParseGlobalUint(globalState, chain.FeeKeys()); ok {
		effectiveFee = uint32(fee.Uint64())
	}

	wrappedA := pool.WrappedPair.TokA
	wrappedB := pool.WrappedPair.TokB

	// Wrapped contracts are themselves ARC200 tokens; the pool's own
	// balance in each is the directly observable "actual" reserve.
	poolAddress := types.AppID(pool.PoolId).Address().String()
	actualA, errA := a.gateway.GetArc200Balance(ctx, wrappedA, poolAddress)
	actualB, errB := a.gateway.GetArc200Balance(ctx, wrappedB, poolAddress)

	haveA := errA == nil
	haveB := errB == nil
	if !haveA {
		actualA = big.NewInt(0)
	}
	if !haveB {
		actualB = big.NewInt(0)
	}

	finalA, finalB := chain.Reconcile(reserveA, reserveB, actualA, actualB, haveA, haveB)

	return domain.PoolState{
		PoolId:   pool.PoolId,
		Dex:      domain.DexHumbleSwap,
		ReserveA: finalA,
		ReserveB: finalB,
		FeeBps:   effectiveFee,
		TokA:     pool.WrappedPair.Underlying(wrappedA),
		TokB:     pool.WrappedPair.Underlying(wrappedB),
	}, nil
}

func (a *Adapter) ComputeOutput(state domain.PoolState, fromToken, toToken domain.TokenId, amountIn *big.Int) *big.Int {
	reserveIn, reserveOut, ok := state.ReserveFor(fromToken)
	if !ok || toToken != state.OtherToken(fromToken) {
		return big.NewInt(0)
	}
	return amm.ComputeOutput(reserveIn, reserveOut, state.FeeBps, amountIn)
}

// BuildSwap assembles one hop's transaction sequence: deposit,
// approval, output-box ensurement, optional padding, the swap call, then
// withdraw, skipping deposit/withdraw when chaining allows it.
func (a *Adapter) BuildSwap(ctx context.Context, req domain.BuildSwapRequest) ([]types.Transaction, error) {
	params := req.Params
	sender := req.Sender
	wrappedIn := wrappedFor(req.Pool.WrappedPair, req.FromToken)
	wrappedOut := wrappedFor(req.Pool.WrappedPair, req.ToToken)
	poolAddress := types.AppID(req.Pool.PoolId).Address().String()

	var txns []types.Transaction

	if !req.SkipDeposit {
		depositTxns, err := a.buildDeposit(sender, wrappedIn, req.FromToken, req.AmountIn, params)
		if err != nil {
			return nil, fmt.Errorf("humbleswap: build deposit: %w", err)
		}
		txns = append(txns, depositTxns...)
	}

	approveTxns, err := a.buildApproval(sender, poolAddress, wrappedIn, req.AmountIn, params)
	if err != nil {
		return nil, fmt.Errorf("humbleswap: build approval: %w", err)
	}
	txns = append(txns, approveTxns...)

	outputBoxTxns, err := a.buildOutputBoxEnsurement(sender, poolAddress, wrappedOut, params)
	if err != nil {
		return nil, fmt.Errorf("humbleswap: build output box: %w", err)
	}
	txns = append(txns, outputBoxTxns...)

	if len(txns) < 2 {
		padding, err := a.buildPadding(sender, params)
		if err != nil {
			return nil, fmt.Errorf("humbleswap: build padding: %w", err)
		}
		txns = append(txns, padding...)
	}

	swapTxn, err := a.buildSwapCall(req, wrappedIn, wrappedOut, params)
	if err != nil {
		return nil, fmt.Errorf("humbleswap: build swap call: %w", err)
	}
	txns = append(txns, swapTxn)

	if !req.SkipWithdraw {
		withdrawTxns, err := a.buildWithdraw(sender, wrappedOut, req.ToToken, params)
		if err != nil {
			return nil, fmt.Errorf("humbleswap: build withdraw: %w", err)
		}
		txns = append(txns, withdrawTxns...)
	}

	return txns, nil
}

// wrappedFor resolves the wrapped contract ID for an underlying token: the
// configured mapping if one exists, or the token itself when it is already
// a wrapped ID with no underlying form (a pure-ARC200 leg).
func wrappedFor(pair domain.WrappedPairConfig, underlying domain.TokenId) domain.TokenId {
	if wrapped, ok := pair.UnderlyingToWrapped[underlying]; ok {
		return wrapped
	}
	return underlying
}

// buildDeposit implements step 1: routes on the underlying token's nature.
func (a *Adapter) buildDeposit(sender string, wrapped, underlying domain.TokenId, amountIn *big.Int, params domain.SuggestedParams) ([]types.Transaction, error) {
	if underlying == domain.NativeTokenId {
		pay, err := transaction.MakePaymentTxn(sender, types.AppID(wrapped).Address().String(), amountIn.Uint64(), nil, "", params)
		if err != nil {
			return nil, err
		}
		depositCall, err := transaction.MakeApplicationNoOpTx(uint64(wrapped), [][]byte{[]byte("deposit")}, nil, nil, nil, params, sender, nil, types.Digest{}, [32]byte{}, types.Address{})
		if err != nil {
			return nil, err
		}
		return []types.Transaction{pay, depositCall}, nil
	}

	// Any other input is treated as an ASA: asset-transfer to the wrapped
	// app, then an app-call to credit the deposit. No "redeem" call is built
	// for redeem-capable wrapped ASAs, no balance-box payment is added, and
	// already-wrapped (pure ARC200) input is not special-cased.
	assetTransfer, err := transaction.MakeAssetTransferTxn(sender, types.AppID(wrapped).Address().String(), amountIn.Uint64(), "", params, "", uint64(underlying))
	if err != nil {
		return nil, err
	}
	depositCall, err := transaction.MakeApplicationNoOpTx(uint64(wrapped), [][]byte{[]byte("deposit")}, nil, nil, nil, params, sender, nil, types.Digest{}, [32]byte{}, types.Address{})
	if err != nil {
		return nil, err
	}
	return []types.Transaction{assetTransfer, depositCall}, nil
}

// buildApproval implements step 2: an ARC200 approve call for the pool to
// pull amountIn of the wrapped input token.
func (a *Adapter) buildApproval(sender, poolAddress string, wrappedIn domain.TokenId, amountIn *big.Int, params domain.SuggestedParams) ([]types.Transaction, error) {
	boxes, err := boxref.ForTransfer(uint64(wrappedIn), sender, poolAddress)
	if err != nil {
		return nil, err
	}

	approveArgs, err := encodeApprove(poolAddress, amountIn)
	if err != nil {
		return nil, err
	}

	tx, err := transaction.MakeApplicationNoOpTx(uint64(wrappedIn), approveArgs, nil, nil, boxes, params, sender, nil, types.Digest{}, [32]byte{}, types.Address{})
	if err != nil {
		return nil, err
	}
	return []types.Transaction{tx}, nil
}

// buildOutputBoxEnsurement implements step 3: an "ensure_box" app call on
// the output wrapped contract referencing the sender's and the pool's
// balance boxes. It is emitted on every call; whether the pool already
// holds a box there is not checked.
func (a *Adapter) buildOutputBoxEnsurement(sender, poolAddress string, wrappedOut domain.TokenId, params domain.SuggestedParams) ([]types.Transaction, error) {
	boxes, err := boxref.ForTransfer(uint64(wrappedOut), sender, poolAddress)
	if err != nil {
		return nil, err
	}
	tx, err := transaction.MakeApplicationNoOpTx(uint64(wrappedOut), [][]byte{[]byte("ensure_box")}, nil, nil, boxes, params, sender, nil, types.Digest{}, [32]byte{}, types.Address{})
	if err != nil {
		return nil, err
	}
	return []types.Transaction{tx}, nil
}

// buildPadding implements step 4: beacon no-op calls so the group has
// enough resource slots when fewer than two transactions precede the swap.
func (a *Adapter) buildPadding(sender string, params domain.SuggestedParams) ([]types.Transaction, error) {
	tx, err := transaction.MakeApplicationNoOpTx(a.beaconAppId, [][]byte{[]byte("noop")}, nil, nil, nil, params, sender, nil, types.Digest{}, [32]byte{}, types.Address{})
	if err != nil {
		return nil, err
	}
	return []types.Transaction{tx}, nil
}

func (a *Adapter) buildSwapCall(req domain.BuildSwapRequest, wrappedIn, wrappedOut domain.TokenId, params domain.SuggestedParams) (types.Transaction, error) {
	params.FlatFee = true
	params.Fee = types.MicroAlgos(feeAllowance)

	method := swapAForBMethod
	if req.FromToken == req.Pool.WrappedPair.Underlying(req.Pool.WrappedPair.TokB) {
		method = swapBForAMethod
	}

	selector, err := method.GetSelector()
	if err != nil {
		return types.Transaction{}, err
	}

	zero := make([]byte, 8)
	inArg, err := encodeUint64(req.AmountIn.Uint64())
	if err != nil {
		return types.Transaction{}, err
	}
	minOutArg, err := encodeUint64(req.MinAmountOut.Uint64())
	if err != nil {
		return types.Transaction{}, err
	}

	foreignApps := []uint64{uint64(wrappedIn), uint64(wrappedOut), a.beaconAppId}
	appArgs := [][]byte{selector, zero, inArg, minOutArg}

	return transaction.MakeApplicationNoOpTx(uint64(req.Pool.PoolId), appArgs, nil, foreignApps, nil, params, req.Sender, nil, types.Digest{}, [32]byte{}, types.Address{})
}

// buildWithdraw implements step 6. It emits nothing when the output is
// already in wrapped form (a pure-ARC200 leg); BuildSwap does not call it
// when SkipWithdraw is set. An auto-redeem ("exchange") capability of the
// output contract is not checked.
func (a *Adapter) buildWithdraw(sender string, wrappedOut, underlyingOut domain.TokenId, params domain.SuggestedParams) ([]types.Transaction, error) {
	if underlyingOut == wrappedOut {
		// Already the wanted form (pure ARC200 leg); nothing to withdraw.
		return nil, nil
	}
	tx, err := transaction.MakeApplicationNoOpTx(uint64(wrappedOut), [][]byte{[]byte("withdraw")}, nil, nil, nil, params, sender, nil, types.Digest{}, [32]byte{}, types.Address{})
	if err != nil {
		return nil, err
	}
	return []types.Transaction{tx}, nil
}

func encodeApprove(spender string, amount *big.Int) ([][]byte, error) {
	selector, err := mustMethod("approve(address,uint256)bool").GetSelector()
	if err != nil {
		return nil, err
	}
	addrType, err := abi.TypeOf("address")
	if err != nil {
		return nil, err
	}
	addr, err := types.DecodeAddress(spender)
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

func encodeUint64(v uint64) ([]byte, error) {
	t, err := abi.TypeOf("uint64")
	if err != nil {
		return nil, err
	}
	return t.Encode(new(big.Int).SetUint64(v))
}
