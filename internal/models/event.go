package models

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// WithdrawalEvent records a completed withdrawal from the balance ledger
// back toward the BTC side.
type WithdrawalEvent struct {
	ID           string         `json:"id"`
	Caller       common.Address `json:"caller"`
	Amount       uint64         `json:"amount"`
	BtcRecipient string         `json:"btc_recipient"`
	Height       uint64         `json:"height"`
	CreatedAt    time.Time      `json:"created_at"`
}
