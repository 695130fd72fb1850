package stores

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	bolt "go.etcd.io/bbolt"
)

// ValidatorStore is the membership set of addresses allowed to submit and
// attest deposits. Absent addresses are inactive.
type ValidatorStore interface {
	SetValidator(ctx context.Context, validator common.Address, active bool) error
	IsValidator(ctx context.Context, validator common.Address) (bool, error)
}

func (l *LocalLedger) SetValidator(ctx context.Context, validator common.Address, active bool) error {
	return l.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketValidators).Put(validator.Bytes(), boolByte(active))
	})
}

func (l *LocalLedger) IsValidator(ctx context.Context, validator common.Address) (bool, error) {
	var active bool
	err := l.db.View(func(tx *bolt.Tx) error {
		active = isTrue(tx.Bucket(bucketValidators).Get(validator.Bytes()))
		return nil
	})
	return active, err
}
