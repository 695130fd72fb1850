package stores

import (
	"context"
	"encoding/json"
	"errors"

	"btcbridge/core/internal/models"

	bolt "go.etcd.io/bbolt"
)

var (
	ErrDepositNotFound  = errors.New("deposit not found")
	ErrDepositExists    = errors.New("deposit exists")
	ErrDepositProcessed = errors.New("deposit processed")
)

// DepositStore is the keyed store of deposit records. Records are created
// once, mutated only through Attest and Confirm, and never deleted.
type DepositStore interface {
	PutDepositIfAbsent(ctx context.Context, dep *models.Deposit) error
	GetDeposit(ctx context.Context, txHash string) (*models.Deposit, error)
	ScanDeposits(ctx context.Context, visit func(*models.Deposit) error) error
}

// PutDepositIfAbsent inserts a new deposit record, assigning its creation
// height. Returns ErrDepositExists when the tx hash is already claimed.
func (l *LocalLedger) PutDepositIfAbsent(ctx context.Context, dep *models.Deposit) error {
	return l.db.Update(func(tx *bolt.Tx) error {
		deposits := tx.Bucket(bucketDeposits)
		if deposits.Get([]byte(dep.TxHash)) != nil {
			return ErrDepositExists
		}
		height, err := nextHeight(tx)
		if err != nil {
			return err
		}
		dep.Height = height
		blob, err := json.Marshal(dep)
		if err != nil {
			return err
		}
		return deposits.Put([]byte(dep.TxHash), blob)
	})
}

func (l *LocalLedger) GetDeposit(ctx context.Context, txHash string) (*models.Deposit, error) {
	var out models.Deposit
	err := l.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketDeposits).Get([]byte(txHash))
		if v == nil {
			return ErrDepositNotFound
		}
		return json.Unmarshal(v, &out)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (l *LocalLedger) ScanDeposits(ctx context.Context, visit func(*models.Deposit) error) error {
	return l.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketDeposits).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			var dep models.Deposit
			if err := json.Unmarshal(v, &dep); err != nil {
				return err
			}
			if err := visit(&dep); err != nil {
				return err
			}
		}
		return nil
	})
}
