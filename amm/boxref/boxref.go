// Package boxref materializes the ARC200 box references every call touching
// a wrapped-token contract must attach, per the pool adapters' shared box
// convention: "balances" || 32-byte public key.
package boxref

import (
	"encoding/base32"
	"strings"

	"github.com/algorand/go-algorand-sdk/v2/types"
)

const balancesPrefix = "balances"

// Balances returns the box reference for an address's balance entry inside
// contractId, keyed as "balances" || address public key.
func Balances(contractId uint64, address string) (types.AppBoxReference, error) {
	pk, err := decodeAddress(address)
	if err != nil {
		return types.AppBoxReference{}, err
	}
	name := append([]byte(balancesPrefix), pk...)
	return types.AppBoxReference{AppID: contractId, Name: name}, nil
}

// ForTransfer returns the pair of box references an ARC200 transfer or
// transferFrom call must attach: the sender's and the pool's balance boxes.
func ForTransfer(contractId uint64, sender, pool string) ([]types.AppBoxReference, error) {
	senderBox, err := Balances(contractId, sender)
	if err != nil {
		return nil, err
	}
	poolBox, err := Balances(contractId, pool)
	if err != nil {
		return nil, err
	}
	return []types.AppBoxReference{senderBox, poolBox}, nil
}

// decodeAddress recovers the 32-byte public key backing an Algorand-style
// address (base32, no padding, with a 4-byte checksum suffix stripped).
func decodeAddress(address string) ([]byte, error) {
	padded := address
	if m := len(address) % 8; m != 0 {
		padded += strings.Repeat("=", 8-m)
	}
	raw, err := base32.StdEncoding.DecodeString(padded)
	if err != nil {
		return nil, err
	}
	if len(raw) < 32 {
		return raw, nil
	}
	return raw[:32], nil
}
