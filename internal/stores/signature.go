package stores

import (
	"context"
	"encoding/json"
	"errors"

	"btcbridge/core/internal/models"

	"github.com/ethereum/go-ethereum/common"
	bolt "go.etcd.io/bbolt"
)

var (
	ErrSignatureNotFound = errors.New("signature not found")
	ErrSignatureExists   = errors.New("signature exists")
)

// SignatureStore reads the per-(deposit, validator) signature log. Writes
// happen only inside Ledger.Confirm so the log can never disagree with the
// processed flag.
type SignatureStore interface {
	HasSignature(ctx context.Context, txHash string, validator common.Address) (bool, error)
	GetSignature(ctx context.Context, txHash string, validator common.Address) (*models.Signature, error)
}

func (l *LocalLedger) HasSignature(ctx context.Context, txHash string, validator common.Address) (bool, error) {
	var found bool
	err := l.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(bucketSignatures).Get([]byte(models.SignatureID(txHash, validator))) != nil
		return nil
	})
	return found, err
}

func (l *LocalLedger) GetSignature(ctx context.Context, txHash string, validator common.Address) (*models.Signature, error) {
	var out models.Signature
	err := l.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketSignatures).Get([]byte(models.SignatureID(txHash, validator)))
		if v == nil {
			return ErrSignatureNotFound
		}
		return json.Unmarshal(v, &out)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
