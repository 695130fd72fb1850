package clients

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// TokenClient talks to the external token service that moves the wrapped
// asset. It satisfies the controller's TokenBackend capability; the ledger
// never depends on its availability.
type TokenClient struct {
	http *HttpClient
}

func NewTokenClient(baseURL string) *TokenClient {
	return &TokenClient{http: NewHttpClient(baseURL)}
}

type transferRequest struct {
	Amount uint64 `json:"amount"`
	From   string `json:"from"`
	To     string `json:"to"`
}

type transferResponse struct {
	Ok bool `json:"ok"`
}

type balanceResponse struct {
	Balance uint64 `json:"balance"`
}

func (c *TokenClient) Transfer(ctx context.Context, amount uint64, from, to common.Address) (bool, error) {
	body, err := c.http.Post(ctx, "/transfer", transferRequest{
		Amount: amount,
		From:   from.Hex(),
		To:     to.Hex(),
	})
	if err != nil {
		return false, fmt.Errorf("token transfer: %w", err)
	}
	var resp transferResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return false, fmt.Errorf("token transfer response: %w", err)
	}
	return resp.Ok, nil
}

func (c *TokenClient) GetBalance(ctx context.Context, principal common.Address) (uint64, error) {
	body, err := c.http.Get(ctx, "/balance/"+principal.Hex())
	if err != nil {
		return 0, fmt.Errorf("token balance: %w", err)
	}
	var resp balanceResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("token balance response: %w", err)
	}
	return resp.Balance, nil
}
