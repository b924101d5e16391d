package chain

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math/big"
	"strconv"

	"github.com/algorand/go-algorand-sdk/v2/abi"
	"github.com/algorand/go-algorand-sdk/v2/client/v2/algod"
	"github.com/algorand/go-algorand-sdk/v2/client/v2/common/models"
	"github.com/algorand/go-algorand-sdk/v2/client/v2/indexer"
	"github.com/algorand/go-algorand-sdk/v2/transaction"
	"github.com/algorand/go-algorand-sdk/v2/types"

	"github.com/voinetwork/swaprouter/domain"
	"github.com/voinetwork/swaprouter/domain/cache"
)

// nativeDecimals is fixed for the chain's native token; it is never looked
// up on-chain.
const nativeDecimals = 6

var balanceOfMethod = mustMethod("balanceOf(address)uint256")

func mustMethod(sig string) abi.Method {
	m, err := abi.MethodFromSignature(sig)
	if err != nil {
		panic(err)
	}
	return m
}

// Gateway implements domain.ChainGateway against an algod node and an
// indexer, mirroring chain/client.go's role as the sole network
// boundary, with a process-global decimals cache since asset decimals never
// change once set on-chain.
type Gateway struct {
	algod   *algod.Client
	indexer *indexer.Client

	decimals *cache.Cache
}

// New builds a Gateway from base URLs, with empty API tokens (public nodes).
func New(nodeURL, indexerURL string) (*Gateway, error) {
	algodClient, err := algod.MakeClient(nodeURL, "")
	if err != nil {
		return nil, fmt.Errorf("chain: algod client: %w", err)
	}
	indexerClient, err := indexer.MakeClient(indexerURL, "")
	if err != nil {
		return nil, fmt.Errorf("chain: indexer client: %w", err)
	}
	return &Gateway{
		algod:    algodClient,
		indexer:  indexerClient,
		decimals: cache.New(),
	}, nil
}

func (g *Gateway) GetAccountState(ctx context.Context, address string) (domain.AccountState, error) {
	info, err := g.algod.AccountInformation(address).Do(ctx)
	if err != nil {
		return domain.AccountState{}, fmt.Errorf("chain: account information: %w", err)
	}

	state := domain.AccountState{
		NativeBalance: new(big.Int).SetUint64(info.Amount),
		Assets:        make(map[domain.TokenId]*big.Int, len(info.Assets)),
	}
	for _, a := range info.Assets {
		state.Assets[domain.TokenId(a.AssetId)] = new(big.Int).SetUint64(a.Amount)
	}
	return state, nil
}

func (g *Gateway) GetApplicationGlobalState(ctx context.Context, appId uint64) (map[string][]byte, error) {
	app, err := g.algod.GetApplicationByID(appId).Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("chain: application %d: %w", appId, err)
	}

	out := make(map[string][]byte, len(app.Params.GlobalState))
	for _, kv := range app.Params.GlobalState {
		// algod reports state keys base64-encoded.
		key := kv.Key
		if decoded, err := base64.StdEncoding.DecodeString(kv.Key); err == nil {
			key = string(decoded)
		}
		out[key] = encodeTealValue(kv.Value)
	}
	return out, nil
}

// encodeTealValue normalizes algod's TealValue (a tagged uint/bytes union)
// into a plain byte slice: bytes are base64-decoded, and uints are stored
// big-endian so ParseGlobalUint can treat every alias uniformly.
func encodeTealValue(v models.TealValue) []byte {
	if v.Type == 1 { // bytes, base64-encoded by algod
		if decoded, err := base64.StdEncoding.DecodeString(v.Bytes); err == nil {
			return decoded
		}
		return []byte(v.Bytes)
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v.Uint)
	return buf
}

func (g *Gateway) GetAssetDecimals(ctx context.Context, assetId domain.TokenId) (int, error) {
	if assetId == domain.NativeTokenId {
		return nativeDecimals, nil
	}

	key := strconv.FormatUint(uint64(assetId), 10)
	if d, ok := g.decimals.Get(key); ok {
		return d.(int), nil
	}

	asset, err := g.algod.GetAssetByID(uint64(assetId)).Do(ctx)
	if err != nil {
		// Unknown asset: the design treats this as "6 when unknown" rather
		// than a hard failure, since decimals only affect display rounding.
		return nativeDecimals, nil
	}

	decimals := int(asset.Params.Decimals)
	g.decimals.Set(key, decimals, cache.NoExpirationTTL)

	return decimals, nil
}

func (g *Gateway) GetArc200Balance(ctx context.Context, contractId domain.TokenId, address string) (*big.Int, error) {
	params, err := g.GetSuggestedTxParams(ctx)
	if err != nil {
		return nil, err
	}

	selector, err := balanceOfMethod.GetSelector()
	if err != nil {
		return nil, fmt.Errorf("chain: arc200 selector: %w", err)
	}

	addrType, err := abi.TypeOf("address")
	if err != nil {
		return nil, fmt.Errorf("chain: arc200 address type: %w", err)
	}
	addr, err := types.DecodeAddress(address)
	if err != nil {
		return nil, fmt.Errorf("chain: decode address: %w", err)
	}
	encodedAddr, err := addrType.Encode(addr[:])
	if err != nil {
		return nil, fmt.Errorf("chain: encode address arg: %w", err)
	}

	appArgs := [][]byte{selector, encodedAddr}

	tx, err := transaction.MakeApplicationNoOpTx(uint64(contractId), appArgs, nil, nil, nil, params, address, nil, types.Digest{}, [32]byte{}, types.Address{})
	if err != nil {
		return nil, fmt.Errorf("chain: build read tx: %w", err)
	}

	result, err := g.algod.SimulateTransaction(models.SimulateRequest{
		TxnGroups: []models.SimulateRequestTransactionGroup{{
			Txns: []types.SignedTxn{{Txn: tx}},
		}},
		AllowEmptySignatures: true,
		AllowUnnamedResources: true,
	}).Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("chain: simulate arc200 read: %w", err)
	}

	logs := extractLastLog(result)
	if logs == nil {
		return big.NewInt(0), nil
	}

	uint256Type, err := abi.TypeOf("uint256")
	if err != nil {
		return nil, fmt.Errorf("chain: uint256 type: %w", err)
	}
	decoded, err := uint256Type.Decode(logs)
	if err != nil {
		return nil, fmt.Errorf("chain: decode arc200 balance: %w", err)
	}
	balance, ok := decoded.(*big.Int)
	if !ok {
		return nil, fmt.Errorf("chain: unexpected arc200 balance decode type %T", decoded)
	}
	return balance, nil
}

// extractLastLog pulls the last application log entry from the first
// transaction of a simulate response, which is where ARC200 read-only
// methods conventionally emit their ABI-encoded return value.
func extractLastLog(result models.SimulateResponse) []byte {
	if len(result.TxnGroups) == 0 || len(result.TxnGroups[0].TxnResults) == 0 {
		return nil
	}
	logs := result.TxnGroups[0].TxnResults[0].TxnResult.Logs
	if len(logs) == 0 {
		return nil
	}
	last := logs[len(logs)-1]
	if len(last) > 4 {
		return last[4:] // strip the ABI return-value prefix (0x151f7c75)
	}
	return last
}

func (g *Gateway) GetSuggestedTxParams(ctx context.Context) (domain.SuggestedParams, error) {
	params, err := g.algod.SuggestedParams().Do(ctx)
	if err != nil {
		return domain.SuggestedParams{}, fmt.Errorf("chain: suggested params: %w", err)
	}
	return params, nil
}
