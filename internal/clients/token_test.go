package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestTokenClient_Transfer(t *testing.T) {
	from := common.HexToAddress("0x1111111111111111111111111111111111111111")
	to := common.HexToAddress("0x2222222222222222222222222222222222222222")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transfer" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req transferRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req.Amount != 200000 || req.From != from.Hex() || req.To != to.Hex() {
			t.Fatalf("request = %+v", req)
		}
		json.NewEncoder(w).Encode(transferResponse{Ok: true})
	}))
	defer srv.Close()

	c := NewTokenClient(srv.URL)
	ok, err := c.Transfer(context.Background(), 200000, from, to)
	if err != nil {
		t.Fatalf("Transfer error: %v", err)
	}
	if !ok {
		t.Fatal("transfer should report ok")
	}
}

func TestTokenClient_GetBalance(t *testing.T) {
	addr := common.HexToAddress("0x1111111111111111111111111111111111111111")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/balance/"+addr.Hex() {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(balanceResponse{Balance: 420000})
	}))
	defer srv.Close()

	c := NewTokenClient(srv.URL)
	balance, err := c.GetBalance(context.Background(), addr)
	if err != nil {
		t.Fatalf("GetBalance error: %v", err)
	}
	if balance != 420000 {
		t.Fatalf("balance = %d, want 420000", balance)
	}
}

func TestTokenClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no funds", http.StatusConflict)
	}))
	defer srv.Close()

	c := NewTokenClient(srv.URL)
	if _, err := c.Transfer(context.Background(), 1, common.Address{}, common.Address{}); err == nil {
		t.Fatal("expected error on 4xx status")
	}
}
