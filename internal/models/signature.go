package models

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Signature is one validator's submitted signature over a deposit. At most
// one exists per (tx hash, validator) pair.
type Signature struct {
	TxHash    string         `json:"tx_hash"`
	Validator common.Address `json:"validator"`
	Bytes     hexutil.Bytes  `json:"signature"` // 65 bytes, format-checked only
	Height    uint64         `json:"height"`
	CreatedAt time.Time      `json:"created_at"`
}

func (s *Signature) ID() string {
	return SignatureID(s.TxHash, s.Validator)
}

func SignatureID(txHash string, validator common.Address) string {
	return fmt.Sprintf("%s|%s", txHash, validator.Hex())
}
