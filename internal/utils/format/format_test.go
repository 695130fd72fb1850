package format

import (
	"bytes"
	"testing"

	"btcbridge/core/internal/constants"

	"github.com/ethereum/go-ethereum/common"
)

func filled(n int, b byte) []byte {
	return bytes.Repeat([]byte{b}, n)
}

func TestIsValidTxHash(t *testing.T) {
	if !IsValidTxHash(filled(32, 0x11)) {
		t.Fatal("32 non-zero bytes should be valid")
	}
	if IsValidTxHash(filled(32, 0)) {
		t.Fatal("all-zero hash should be invalid")
	}
	if IsValidTxHash(filled(31, 0x11)) || IsValidTxHash(filled(33, 0x11)) {
		t.Fatal("wrong length should be invalid")
	}
}

func TestIsValidBtcSender(t *testing.T) {
	if !IsValidBtcSender(filled(33, 0x22)) {
		t.Fatal("33 non-zero bytes should be valid")
	}
	if IsValidBtcSender(filled(33, 0)) {
		t.Fatal("all-zero sender should be invalid")
	}
	if IsValidBtcSender(filled(32, 0x22)) {
		t.Fatal("wrong length should be invalid")
	}
}

func TestIsValidSignature(t *testing.T) {
	if !IsValidSignature(filled(65, 0x33)) {
		t.Fatal("65 non-zero bytes should be valid")
	}
	if IsValidSignature(filled(65, 0)) {
		t.Fatal("all-zero signature should be invalid")
	}
	if IsValidSignature(filled(64, 0x33)) {
		t.Fatal("wrong length should be invalid")
	}
}

func TestIsValidAmount_Bounds(t *testing.T) {
	cases := []struct {
		amount uint64
		want   bool
	}{
		{constants.MinDepositAmount - 1, false},
		{constants.MinDepositAmount, true},
		{constants.MaxDepositAmount, true},
		{constants.MaxDepositAmount + 1, false},
	}
	for _, c := range cases {
		if got := IsValidAmount(c.amount); got != c.want {
			t.Fatalf("IsValidAmount(%d) = %v, want %v", c.amount, got, c.want)
		}
	}
}

func TestAddressRules(t *testing.T) {
	admin := common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	bridge := common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	rules := AddressRules{Admin: admin, Bridge: bridge}

	if !rules.IsValidAddress(common.HexToAddress("0xcccccccccccccccccccccccccccccccccccccccc")) {
		t.Fatal("ordinary address should be valid")
	}
	if rules.IsValidAddress(common.Address{}) {
		t.Fatal("zero address should be invalid")
	}
	if rules.IsValidAddress(admin) {
		t.Fatal("admin address should be invalid as recipient")
	}
	if rules.IsValidAddress(bridge) {
		t.Fatal("bridge address should be invalid as recipient")
	}
}
