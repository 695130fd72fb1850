package constants

// Deposit amount bounds and the attestation quorum are protocol constants
// shared with the on-chain contracts. Amounts are denominated in satoshi.
const (
	MinDepositAmount      uint64 = 100000
	MaxDepositAmount      uint64 = 1000000000
	RequiredConfirmations uint64 = 6
)

// Wire sizes for BTC-side values.
const (
	TxHashLen       = 32
	BtcSenderLen    = 33 // compressed public key
	SignatureLen    = 65 // r || s || v
	BtcRecipientLen = 34 // base58 P2PKH address
)

const (
	DefaultLedgerFile = "bridge.db"
	DefaultConfigPath = "./bridge.toml"
)
