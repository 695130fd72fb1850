package format

import (
	"btcbridge/core/internal/constants"

	"github.com/ethereum/go-ethereum/common"
)

// Pure well-formedness predicates for BTC-side values. These check length
// and zero patterns only; nothing here verifies signature authenticity,
// real verification belongs to the off-chain validator layer.

func IsValidTxHash(h []byte) bool {
	return len(h) == constants.TxHashLen && !allZero(h)
}

func IsValidBtcSender(b []byte) bool {
	return len(b) == constants.BtcSenderLen && !allZero(b)
}

func IsValidSignature(s []byte) bool {
	return len(s) == constants.SignatureLen && !allZero(s)
}

// IsValidBtcRecipient checks the length class of a withdrawal destination.
// The raw address string is otherwise opaque to the ledger.
func IsValidBtcRecipient(b []byte) bool {
	return len(b) == constants.BtcRecipientLen && !allZero(b)
}

func IsValidAmount(n uint64) bool {
	return n >= constants.MinDepositAmount && n <= constants.MaxDepositAmount
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// AddressRules names the principals that may never appear as an ordinary
// recipient or validator: the admin and the bridge's own address.
type AddressRules struct {
	Admin  common.Address
	Bridge common.Address
}

func (r AddressRules) IsValidAddress(a common.Address) bool {
	if a == (common.Address{}) {
		return false
	}
	return a != r.Admin && a != r.Bridge
}
