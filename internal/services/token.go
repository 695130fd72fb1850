package services

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// TokenBackend is the capability contract for the wrapped asset. The core
// only models it; a concrete implementation is supplied by the integration
// layer (see internal/clients).
type TokenBackend interface {
	Transfer(ctx context.Context, amount uint64, from, to common.Address) (bool, error)
	GetBalance(ctx context.Context, principal common.Address) (uint64, error)
}
