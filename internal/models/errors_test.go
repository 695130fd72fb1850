package models

import (
	"errors"
	"fmt"
	"testing"
)

// Error codes are a compatibility oracle for off-chain agents; they must
// never move.
func TestErrorCodesAreStable(t *testing.T) {
	want := map[*BridgeError]uint32{
		ErrNotAuthorized:           1000,
		ErrInvalidAmount:           1001,
		ErrInsufficientBalance:     1002,
		ErrInvalidBridgeStatus:     1003,
		ErrInvalidSignature:        1004,
		ErrAlreadyProcessed:        1005,
		ErrBridgePaused:            1006,
		ErrInvalidValidatorAddress: 1007,
		ErrInvalidRecipientAddress: 1008,
		ErrInvalidBtcAddress:       1009,
		ErrInvalidTxHash:           1010,
		ErrInvalidSignatureFormat:  1011,
	}
	for err, code := range want {
		if err.Code != code {
			t.Fatalf("%s: code = %d, want %d", err.Msg, err.Code, code)
		}
	}
}

func TestBridgeError_WrapsAndMatches(t *testing.T) {
	wrapped := fmt.Errorf("confirm deposit: %w", ErrAlreadyProcessed)
	if !errors.Is(wrapped, ErrAlreadyProcessed) {
		t.Fatal("wrapped error should match sentinel")
	}
	var be *BridgeError
	if !errors.As(wrapped, &be) || be.Code != 1005 {
		t.Fatalf("errors.As = %v, code = %v", be, be.Code)
	}
}
