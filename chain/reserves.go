// Package chain implements domain.ChainGateway against algod and indexer,
// grounded on chain/client.go's dial/retry shape, adapted here to the
// Algorand-family REST clients since the chain is AVM-based rather than
// Cosmos/gRPC.
package chain

import "math/big"

// reserveAAliases, reserveBAliases and feeAliases are the fixed key-name lists the reserve
// reconciliation step tries against a pool's global state: contracts are
// not consistent about naming their reserve and fee keys.
var (
	reserveAAliases = []string{"reserve_a", "reserveA", "r_a", "ra", "reserve0", "reserve_0"}
	reserveBAliases = []string{"reserve_b", "reserveB", "r_b", "rb", "reserve1", "reserve_1"}
	feeAliases      = []string{"fee", "tot_fee", "total_fee", "fee_bps"}
)

// ParseGlobalUint tries each alias in order against state and returns the
// first one present, decoded as a uint64 big-endian value (as stored by
// algod's global-state uint representation).
func ParseGlobalUint(state map[string][]byte, aliases []string) (*big.Int, bool) {
	for _, alias := range aliases {
		raw, ok := state[alias]
		if !ok {
			continue
		}
		return new(big.Int).SetBytes(raw), true
	}
	return nil, false
}

// ReserveKeysA, ReserveKeysB, FeeKeys expose the alias lists to callers that
// need to probe global state themselves (adapters' FetchState).
func ReserveKeysA() []string { return reserveAAliases }
func ReserveKeysB() []string { return reserveBAliases }
func FeeKeys() []string      { return feeAliases }

// Reconcile applies a five-rule precedence for reserve reconciliation:
// configured (reserveA, reserveB) are checked against independently
// observed (actualA, actualB); mismatches are corrected by swap or
// overwrite, in order of how much evidence is available.
func Reconcile(reserveA, reserveB *big.Int, actualA, actualB *big.Int, haveA, haveB bool) (*big.Int, *big.Int) {
	switch {
	case haveA && haveB && reserveA.Cmp(actualA) == 0 && reserveB.Cmp(actualB) == 0:
		// Rule 1: configured values already match observation.
		return reserveA, reserveB

	case haveA && haveB && reserveA.Cmp(actualB) == 0 && reserveB.Cmp(actualA) == 0:
		// Rule 2: configured values are swapped relative to observation.
		return reserveB, reserveA

	case haveA && haveB:
		// Rule 3: neither pairing matches; trust the observation outright.
		return actualA, actualB

	case haveA && !haveB:
		// Rule 4: only one side observable. Prefer whichever slot it already
		// matches; otherwise overwrite that slot and leave the other as
		// configured.
		if reserveB != nil && reserveB.Cmp(actualA) == 0 {
			return actualA, reserveA
		}
		return actualA, reserveB

	case haveB && !haveA:
		if reserveA != nil && reserveA.Cmp(actualB) == 0 {
			return reserveB, actualB
		}
		return reserveA, actualB

	default:
		// Rule 5: nothing observable (both sides pure ARC200 with no
		// readable balance); trust configured state as-is.
		return reserveA, reserveB
	}
}
