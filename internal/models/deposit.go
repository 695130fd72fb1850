package models

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Deposit is a claimed BTC-origin transfer keyed by its transaction hash.
// Records are append-only: once Processed flips true the record never
// changes again.
type Deposit struct {
	TxHash        string         `json:"tx_hash"` // canonical chainhash string
	Amount        uint64         `json:"amount"`  // satoshi
	Recipient     common.Address `json:"recipient"`
	BtcSender     hexutil.Bytes  `json:"btc_sender"` // 33-byte compressed pubkey
	Processed     bool           `json:"processed"`
	Confirmations uint64         `json:"confirmations"`
	Height        uint64         `json:"height"` // ledger sequence height at creation
	CreatedAt     time.Time      `json:"created_at"`
}

func (d *Deposit) ID() string {
	return d.TxHash
}
