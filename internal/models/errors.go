package models

import "fmt"

// BridgeError is a business failure reported to callers. Codes are part of
// the external contract and must stay stable; off-chain agents match on them
// when deciding whether to resubmit.
type BridgeError struct {
	Code uint32 `json:"code"`
	Msg  string `json:"error"`
}

func (e *BridgeError) Error() string {
	return fmt.Sprintf("%s (code %d)", e.Msg, e.Code)
}

var (
	ErrNotAuthorized           = &BridgeError{1000, "not authorized"}
	ErrInvalidAmount           = &BridgeError{1001, "invalid amount"}
	ErrInsufficientBalance     = &BridgeError{1002, "insufficient balance"}
	ErrInvalidBridgeStatus     = &BridgeError{1003, "invalid bridge status"}
	ErrInvalidSignature        = &BridgeError{1004, "invalid signature"}
	ErrAlreadyProcessed        = &BridgeError{1005, "already processed"}
	ErrBridgePaused            = &BridgeError{1006, "bridge paused"}
	ErrInvalidValidatorAddress = &BridgeError{1007, "invalid validator address"}
	ErrInvalidRecipientAddress = &BridgeError{1008, "invalid recipient address"}
	ErrInvalidBtcAddress       = &BridgeError{1009, "invalid btc address"}
	ErrInvalidTxHash           = &BridgeError{1010, "invalid tx hash"}
	ErrInvalidSignatureFormat  = &BridgeError{1011, "invalid signature format"}
)
