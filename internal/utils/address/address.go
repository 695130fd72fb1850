package address

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Parse validates a destination-ledger address string and returns its
// binary form. Addresses arrive hex-encoded over the API.
func Parse(addressStr string) (common.Address, error) {
	if !common.IsHexAddress(addressStr) {
		return common.Address{}, fmt.Errorf("invalid address: %s", addressStr)
	}
	return common.HexToAddress(addressStr), nil
}

// Checksummed validates an address and returns the checksummed form used
// for display and logging.
func Checksummed(addressStr string) (string, error) {
	a, err := Parse(addressStr)
	if err != nil {
		return "", err
	}
	return a.Hex(), nil
}
