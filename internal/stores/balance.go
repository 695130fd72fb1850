package stores

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	bolt "go.etcd.io/bbolt"
)

// BalanceStore reads per-user balances and the global bridge counters.
// Balances change only through Confirm, Debit and Credit.
type BalanceStore interface {
	Balance(ctx context.Context, addr common.Address) (uint64, error)
	TotalBridged(ctx context.Context) (uint64, error)
	LastHeight(ctx context.Context) (uint64, error)

	Paused(ctx context.Context) (bool, error)
	SetPaused(ctx context.Context, paused bool) error
	Initialized(ctx context.Context) (bool, error)
	SetInitialized(ctx context.Context) error
}

func (l *LocalLedger) Balance(ctx context.Context, addr common.Address) (uint64, error) {
	var out uint64
	err := l.db.View(func(tx *bolt.Tx) error {
		out = getUint64(tx.Bucket(bucketBalances), addr.Bytes())
		return nil
	})
	return out, err
}

func (l *LocalLedger) TotalBridged(ctx context.Context) (uint64, error) {
	return l.metaUint64(metaTotalBridged)
}

func (l *LocalLedger) LastHeight(ctx context.Context) (uint64, error) {
	return l.metaUint64(metaLastHeight)
}

func (l *LocalLedger) Paused(ctx context.Context) (bool, error) {
	var out bool
	err := l.db.View(func(tx *bolt.Tx) error {
		out = isTrue(tx.Bucket(bucketMeta).Get(metaPaused))
		return nil
	})
	return out, err
}

func (l *LocalLedger) SetPaused(ctx context.Context, paused bool) error {
	return l.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMeta).Put(metaPaused, boolByte(paused))
	})
}

func (l *LocalLedger) Initialized(ctx context.Context) (bool, error) {
	var out bool
	err := l.db.View(func(tx *bolt.Tx) error {
		out = isTrue(tx.Bucket(bucketMeta).Get(metaInitialized))
		return nil
	})
	return out, err
}

func (l *LocalLedger) SetInitialized(ctx context.Context) error {
	return l.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMeta).Put(metaInitialized, boolByte(true))
	})
}

func (l *LocalLedger) metaUint64(key []byte) (uint64, error) {
	var out uint64
	err := l.db.View(func(tx *bolt.Tx) error {
		out = getUint64(tx.Bucket(bucketMeta), key)
		return nil
	})
	return out, err
}
