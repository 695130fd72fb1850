package stores

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"

	"btcbridge/core/internal/models"

	"github.com/ethereum/go-ethereum/common"
	bolt "go.etcd.io/bbolt"
)

var (
	bucketDeposits     = []byte("deposits")
	bucketSignatures   = []byte("signatures")
	bucketAttestations = []byte("attestations")
	bucketBalances     = []byte("balances")
	bucketValidators   = []byte("validators")
	bucketEvents       = []byte("events")
	bucketMeta         = []byte("meta")

	metaTotalBridged = []byte("total_bridged")
	metaPaused       = []byte("paused")
	metaLastHeight   = []byte("last_height")
	metaInitialized  = []byte("initialized")

	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrBalanceOverflow   = errors.New("balance overflow")
	ErrAlreadyAttested   = errors.New("already attested")
)

// Ledger is the full persistent state of the bridge: deposits, signatures,
// attestations, balances, the validator set and the global counters. The
// multi-table mutations (Confirm, Attest, Debit, Credit) each run in a
// single write transaction so callers observe them all-or-nothing.
type Ledger interface {
	DepositStore
	SignatureStore
	ValidatorStore
	BalanceStore

	Confirm(ctx context.Context, dep *models.Deposit, sig *models.Signature) error
	Attest(ctx context.Context, txHash string, validator common.Address) (*models.Deposit, error)
	Debit(ctx context.Context, ev *models.WithdrawalEvent) error
	Credit(ctx context.Context, recipient common.Address, amount uint64) error
	ScanWithdrawals(ctx context.Context, visit func(*models.WithdrawalEvent) error) error

	Close() error
}

type LocalLedger struct {
	db *bolt.DB
}

var _ Ledger = (*LocalLedger)(nil)

func NewLocalLedger(path string) (*LocalLedger, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{
			bucketDeposits, bucketSignatures, bucketAttestations,
			bucketBalances, bucketValidators, bucketEvents, bucketMeta,
		} {
			if _, e := tx.CreateBucketIfNotExists(name); e != nil {
				return e
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &LocalLedger{db: db}, nil
}

func (l *LocalLedger) Close() error {
	return l.db.Close()
}

// Confirm settles a deposit: records the validator signature, marks the
// deposit processed, credits the recipient and raises the bridged total.
func (l *LocalLedger) Confirm(ctx context.Context, dep *models.Deposit, sig *models.Signature) error {
	return l.db.Update(func(tx *bolt.Tx) error {
		deposits := tx.Bucket(bucketDeposits)
		raw := deposits.Get([]byte(dep.TxHash))
		if raw == nil {
			return ErrDepositNotFound
		}
		var stored models.Deposit
		if err := json.Unmarshal(raw, &stored); err != nil {
			return err
		}
		if stored.Processed {
			return ErrDepositProcessed
		}

		signatures := tx.Bucket(bucketSignatures)
		sigKey := []byte(sig.ID())
		if signatures.Get(sigKey) != nil {
			return ErrSignatureExists
		}

		height, err := nextHeight(tx)
		if err != nil {
			return err
		}
		sig.Height = height

		blob, err := json.Marshal(sig)
		if err != nil {
			return err
		}
		if err := signatures.Put(sigKey, blob); err != nil {
			return err
		}

		stored.Processed = true
		blob, err = json.Marshal(&stored)
		if err != nil {
			return err
		}
		if err := deposits.Put([]byte(stored.TxHash), blob); err != nil {
			return err
		}
		*dep = stored

		balances := tx.Bucket(bucketBalances)
		if err := addBalance(balances, stored.Recipient, stored.Amount); err != nil {
			return err
		}

		meta := tx.Bucket(bucketMeta)
		total := getUint64(meta, metaTotalBridged)
		if total+stored.Amount < total {
			return ErrBalanceOverflow
		}
		return putUint64(meta, metaTotalBridged, total+stored.Amount)
	})
}

// Attest records one validator's attestation for a pending deposit and
// advances its confirmation count. A validator attests a given deposit at
// most once.
func (l *LocalLedger) Attest(ctx context.Context, txHash string, validator common.Address) (*models.Deposit, error) {
	var out models.Deposit
	err := l.db.Update(func(tx *bolt.Tx) error {
		deposits := tx.Bucket(bucketDeposits)
		raw := deposits.Get([]byte(txHash))
		if raw == nil {
			return ErrDepositNotFound
		}
		if err := json.Unmarshal(raw, &out); err != nil {
			return err
		}
		if out.Processed {
			return ErrDepositProcessed
		}

		attestations := tx.Bucket(bucketAttestations)
		key := []byte(models.SignatureID(txHash, validator))
		if attestations.Get(key) != nil {
			return ErrAlreadyAttested
		}

		height, err := nextHeight(tx)
		if err != nil {
			return err
		}
		if err := attestations.Put(key, heightKey(height)); err != nil {
			return err
		}

		out.Confirmations++
		blob, err := json.Marshal(&out)
		if err != nil {
			return err
		}
		return deposits.Put([]byte(txHash), blob)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Debit withdraws from the caller's balance and lowers the bridged total,
// then appends the withdrawal event. The event's Height is assigned here.
func (l *LocalLedger) Debit(ctx context.Context, ev *models.WithdrawalEvent) error {
	return l.db.Update(func(tx *bolt.Tx) error {
		balances := tx.Bucket(bucketBalances)
		bal := getUint64(balances, ev.Caller.Bytes())
		if bal < ev.Amount {
			return ErrInsufficientFunds
		}
		if err := putUint64(balances, ev.Caller.Bytes(), bal-ev.Amount); err != nil {
			return err
		}

		meta := tx.Bucket(bucketMeta)
		total := getUint64(meta, metaTotalBridged)
		if total < ev.Amount {
			return ErrInsufficientFunds
		}
		if err := putUint64(meta, metaTotalBridged, total-ev.Amount); err != nil {
			return err
		}

		height, err := nextHeight(tx)
		if err != nil {
			return err
		}
		ev.Height = height

		blob, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		events := tx.Bucket(bucketEvents)
		return events.Put(append(heightKey(height), []byte(ev.ID)...), blob)
	})
}

// Credit raises a balance without touching the bridged total. This backs the
// admin emergency credit, which is deliberately not balanced by a deposit.
func (l *LocalLedger) Credit(ctx context.Context, recipient common.Address, amount uint64) error {
	return l.db.Update(func(tx *bolt.Tx) error {
		if err := addBalance(tx.Bucket(bucketBalances), recipient, amount); err != nil {
			return err
		}
		_, err := nextHeight(tx)
		return err
	})
}

// ScanWithdrawals visits withdrawal events in commit order.
func (l *LocalLedger) ScanWithdrawals(ctx context.Context, visit func(*models.WithdrawalEvent) error) error {
	return l.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketEvents).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			var ev models.WithdrawalEvent
			if err := json.Unmarshal(v, &ev); err != nil {
				return err
			}
			if err := visit(&ev); err != nil {
				return err
			}
		}
		return nil
	})
}

func addBalance(balances *bolt.Bucket, addr common.Address, amount uint64) error {
	old := getUint64(balances, addr.Bytes())
	if old+amount < old {
		return ErrBalanceOverflow
	}
	return putUint64(balances, addr.Bytes(), old+amount)
}

// nextHeight advances the ledger sequence height. Every committed mutation
// gets a distinct height, which stamps deposits and events.
func nextHeight(tx *bolt.Tx) (uint64, error) {
	meta := tx.Bucket(bucketMeta)
	h := getUint64(meta, metaLastHeight) + 1
	if err := putUint64(meta, metaLastHeight, h); err != nil {
		return 0, err
	}
	return h, nil
}

func heightKey(h uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], h)
	return b[:]
}

func getUint64(b *bolt.Bucket, key []byte) uint64 {
	v := b.Get(key)
	if len(v) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(v)
}

func putUint64(b *bolt.Bucket, key []byte, v uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return b.Put(key, buf[:])
}

func boolByte(v bool) []byte {
	if v {
		return []byte{1}
	}
	return []byte{0}
}

func isTrue(v []byte) bool {
	return len(v) == 1 && v[0] == 1
}
