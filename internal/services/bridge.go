package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"btcbridge/core/internal/constants"
	"btcbridge/core/internal/models"
	"btcbridge/core/internal/stores"
	"btcbridge/core/internal/utils/format"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// Bridge orchestrates every public bridge operation. A single mutex
// serializes all mutating commands, so callers observe them as if issued
// one at a time; queries read the latest committed ledger state directly.
//
// Every command fails closed: the first violated precondition returns its
// taxonomy error and nothing is written.
type Bridge struct {
	mu     sync.Mutex
	log    *slog.Logger
	ledger stores.Ledger
	rules  format.AddressRules
	token  TokenBackend
}

func NewBridge(log *slog.Logger, ledger stores.Ledger, rules format.AddressRules) *Bridge {
	return &Bridge{
		log:    log,
		ledger: ledger,
		rules:  rules,
	}
}

// AttachToken connects the integration-layer token backend used to release
// the backing asset after a confirmation. The ledger stays the source of
// truth; a failing backend never unwinds ledger state.
func (b *Bridge) AttachToken(token TokenBackend) {
	b.token = token
}

// Initialize bootstraps a fresh bridge. It can run once.
func (b *Bridge) Initialize(ctx context.Context, caller common.Address) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if caller != b.rules.Admin {
		return models.ErrNotAuthorized
	}
	initialized, err := b.ledger.Initialized(ctx)
	if err != nil {
		return err
	}
	if initialized {
		return models.ErrInvalidBridgeStatus
	}
	if err := b.ledger.SetInitialized(ctx); err != nil {
		return err
	}
	if err := b.ledger.SetPaused(ctx, false); err != nil {
		return err
	}
	b.log.Info("bridge initialized", "admin", caller.Hex())
	return nil
}

// Pause halts all deposit and withdrawal commands. Admin commands stay
// callable while paused.
func (b *Bridge) Pause(ctx context.Context, caller common.Address) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if caller != b.rules.Admin {
		return models.ErrNotAuthorized
	}
	if err := b.ledger.SetPaused(ctx, true); err != nil {
		return err
	}
	b.log.Warn("bridge paused")
	return nil
}

// Resume lifts a pause. The bridge must currently be paused.
func (b *Bridge) Resume(ctx context.Context, caller common.Address) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if caller != b.rules.Admin {
		return models.ErrNotAuthorized
	}
	paused, err := b.ledger.Paused(ctx)
	if err != nil {
		return err
	}
	if !paused {
		return models.ErrInvalidBridgeStatus
	}
	if err := b.ledger.SetPaused(ctx, false); err != nil {
		return err
	}
	b.log.Info("bridge resumed")
	return nil
}

func (b *Bridge) AddValidator(ctx context.Context, caller, validator common.Address) error {
	return b.setValidator(ctx, caller, validator, true)
}

func (b *Bridge) RemoveValidator(ctx context.Context, caller, validator common.Address) error {
	return b.setValidator(ctx, caller, validator, false)
}

func (b *Bridge) setValidator(ctx context.Context, caller, validator common.Address, active bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if caller != b.rules.Admin {
		return models.ErrNotAuthorized
	}
	if !b.rules.IsValidAddress(validator) {
		return models.ErrInvalidValidatorAddress
	}
	if err := b.ledger.SetValidator(ctx, validator, active); err != nil {
		return err
	}
	b.log.Info("validator set updated", "validator", validator.Hex(), "active", active)
	return nil
}

// InitiateDeposit claims a BTC transaction on the destination ledger. The
// tx hash is globally unique for the lifetime of the bridge; re-use is
// rejected.
func (b *Bridge) InitiateDeposit(ctx context.Context, caller common.Address, txHash []byte, amount uint64, recipient common.Address, btcSender []byte) (*models.Deposit, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	paused, err := b.ledger.Paused(ctx)
	if err != nil {
		return nil, err
	}
	if paused {
		return nil, models.ErrBridgePaused
	}
	if !format.IsValidAmount(amount) {
		return nil, models.ErrInvalidAmount
	}
	active, err := b.ledger.IsValidator(ctx, caller)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, models.ErrNotAuthorized
	}
	key, err := depositKey(txHash)
	if err != nil {
		return nil, models.ErrInvalidTxHash
	}
	if _, err := b.ledger.GetDeposit(ctx, key); err == nil {
		return nil, models.ErrAlreadyProcessed
	} else if !errors.Is(err, stores.ErrDepositNotFound) {
		return nil, err
	}
	if !b.rules.IsValidAddress(recipient) {
		return nil, models.ErrInvalidRecipientAddress
	}
	if !format.IsValidBtcSender(btcSender) {
		return nil, models.ErrInvalidBtcAddress
	}

	dep := &models.Deposit{
		TxHash:    key,
		Amount:    amount,
		Recipient: recipient,
		BtcSender: btcSender,
		CreatedAt: time.Now().UTC(),
	}
	if err := b.ledger.PutDepositIfAbsent(ctx, dep); err != nil {
		if errors.Is(err, stores.ErrDepositExists) {
			return nil, models.ErrAlreadyProcessed
		}
		return nil, err
	}

	b.log.Info("deposit initiated",
		"tx_hash", key,
		"amount", amount,
		"recipient", recipient.Hex(),
		"validator", caller.Hex(),
		"height", dep.Height,
	)
	return dep, nil
}

// RecordConfirmation registers one validator's attestation for a pending
// deposit, advancing its confirmation count toward the quorum. Each
// validator counts once per deposit.
func (b *Bridge) RecordConfirmation(ctx context.Context, caller common.Address, txHash []byte) (*models.Deposit, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	paused, err := b.ledger.Paused(ctx)
	if err != nil {
		return nil, err
	}
	if paused {
		return nil, models.ErrBridgePaused
	}
	key, err := depositKey(txHash)
	if err != nil {
		return nil, models.ErrInvalidTxHash
	}
	active, err := b.ledger.IsValidator(ctx, caller)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, models.ErrNotAuthorized
	}

	dep, err := b.ledger.Attest(ctx, key, caller)
	if err != nil {
		switch {
		case errors.Is(err, stores.ErrDepositNotFound):
			return nil, models.ErrInvalidBridgeStatus
		case errors.Is(err, stores.ErrDepositProcessed):
			return nil, models.ErrAlreadyProcessed
		case errors.Is(err, stores.ErrAlreadyAttested):
			return nil, models.ErrAlreadyProcessed
		}
		return nil, err
	}

	b.log.Info("confirmation recorded",
		"tx_hash", key,
		"validator", caller.Hex(),
		"confirmations", dep.Confirmations,
	)
	return dep, nil
}

// ConfirmDeposit settles a deposit that has reached the confirmation
// quorum. The signature is format-checked only; authenticity is the
// off-chain validator layer's problem. On success the signature is logged,
// the deposit flips processed, the recipient is credited and the bridged
// total rises, all atomically.
func (b *Bridge) ConfirmDeposit(ctx context.Context, caller common.Address, txHash, signature []byte) (*models.Deposit, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	key, err := depositKey(txHash)
	if err != nil {
		return nil, models.ErrInvalidTxHash
	}
	dep, err := b.ledger.GetDeposit(ctx, key)
	if err != nil {
		if errors.Is(err, stores.ErrDepositNotFound) {
			return nil, models.ErrInvalidBridgeStatus
		}
		return nil, err
	}
	paused, err := b.ledger.Paused(ctx)
	if err != nil {
		return nil, err
	}
	if paused {
		return nil, models.ErrBridgePaused
	}
	if !format.IsValidSignature(signature) {
		return nil, models.ErrInvalidSignatureFormat
	}
	if dep.Processed {
		return nil, models.ErrAlreadyProcessed
	}
	if dep.Confirmations < constants.RequiredConfirmations {
		return nil, models.ErrInvalidBridgeStatus
	}
	has, err := b.ledger.HasSignature(ctx, key, caller)
	if err != nil {
		return nil, err
	}
	if has {
		return nil, models.ErrAlreadyProcessed
	}

	sig := &models.Signature{
		TxHash:    key,
		Validator: caller,
		Bytes:     signature,
		CreatedAt: time.Now().UTC(),
	}
	if err := b.ledger.Confirm(ctx, dep, sig); err != nil {
		switch {
		case errors.Is(err, stores.ErrDepositProcessed):
			return nil, models.ErrAlreadyProcessed
		case errors.Is(err, stores.ErrSignatureExists):
			return nil, models.ErrAlreadyProcessed
		case errors.Is(err, stores.ErrBalanceOverflow):
			return nil, models.ErrInvalidAmount
		}
		return nil, err
	}

	b.log.Info("deposit confirmed",
		"tx_hash", key,
		"amount", dep.Amount,
		"recipient", dep.Recipient.Hex(),
		"validator", caller.Hex(),
	)
	b.releaseToken(ctx, dep)
	return dep, nil
}

// releaseToken hands the credited amount to the token backend, if one is
// attached. Failures are logged and left to the integration layer to retry.
func (b *Bridge) releaseToken(ctx context.Context, dep *models.Deposit) {
	if b.token == nil {
		return
	}
	ok, err := b.token.Transfer(ctx, dep.Amount, b.rules.Bridge, dep.Recipient)
	if err != nil || !ok {
		b.log.Error("token release failed",
			"tx_hash", dep.TxHash,
			"recipient", dep.Recipient.Hex(),
			"err", err,
		)
	}
}

// Withdraw debits the caller's bridged balance toward a BTC address and
// lowers the bridged total by the same amount.
func (b *Bridge) Withdraw(ctx context.Context, caller common.Address, amount uint64, btcRecipient []byte) (*models.WithdrawalEvent, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	paused, err := b.ledger.Paused(ctx)
	if err != nil {
		return nil, err
	}
	if paused {
		return nil, models.ErrBridgePaused
	}
	balance, err := b.ledger.Balance(ctx, caller)
	if err != nil {
		return nil, err
	}
	if balance < amount {
		return nil, models.ErrInsufficientBalance
	}
	if !format.IsValidAmount(amount) {
		return nil, models.ErrInvalidAmount
	}
	if !format.IsValidBtcRecipient(btcRecipient) {
		return nil, models.ErrInvalidBtcAddress
	}

	ev := &models.WithdrawalEvent{
		ID:           uuid.NewString(),
		Caller:       caller,
		Amount:       amount,
		BtcRecipient: string(btcRecipient),
		CreatedAt:    time.Now().UTC(),
	}
	if err := b.ledger.Debit(ctx, ev); err != nil {
		if errors.Is(err, stores.ErrInsufficientFunds) {
			return nil, models.ErrInsufficientBalance
		}
		return nil, err
	}

	b.log.Info("withdrawal",
		"id", ev.ID,
		"caller", caller.Hex(),
		"amount", amount,
		"btc_recipient", ev.BtcRecipient,
		"height", ev.Height,
	)
	return ev, nil
}

// EmergencyWithdraw credits a recipient without a backing deposit and
// without touching the bridged total. Despite the name this is an admin
// balance-correction escape hatch, bounded by the bridged total; it is not
// a withdrawal.
func (b *Bridge) EmergencyWithdraw(ctx context.Context, caller common.Address, amount uint64, recipient common.Address) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if caller != b.rules.Admin {
		return models.ErrNotAuthorized
	}
	total, err := b.ledger.TotalBridged(ctx)
	if err != nil {
		return err
	}
	if total < amount {
		return models.ErrInsufficientBalance
	}
	if !b.rules.IsValidAddress(recipient) {
		return models.ErrInvalidRecipientAddress
	}
	balance, err := b.ledger.Balance(ctx, recipient)
	if err != nil {
		return err
	}
	if balance+amount <= balance {
		return models.ErrInvalidAmount
	}

	if err := b.ledger.Credit(ctx, recipient, amount); err != nil {
		if errors.Is(err, stores.ErrBalanceOverflow) {
			return models.ErrInvalidAmount
		}
		return err
	}

	b.log.Warn("emergency credit",
		"recipient", recipient.Hex(),
		"amount", amount,
	)
	return nil
}

// Deposit returns the record for a claimed tx hash, or nil when absent.
func (b *Bridge) Deposit(ctx context.Context, txHash []byte) (*models.Deposit, error) {
	key, err := depositKey(txHash)
	if err != nil {
		return nil, models.ErrInvalidTxHash
	}
	dep, err := b.ledger.GetDeposit(ctx, key)
	if errors.Is(err, stores.ErrDepositNotFound) {
		return nil, nil
	}
	return dep, err
}

// Paused reports whether the bridge circuit-breaker is engaged.
func (b *Bridge) Paused(ctx context.Context) (bool, error) {
	return b.ledger.Paused(ctx)
}

func (b *Bridge) ValidatorStatus(ctx context.Context, validator common.Address) (bool, error) {
	return b.ledger.IsValidator(ctx, validator)
}

func (b *Bridge) Balance(ctx context.Context, addr common.Address) (uint64, error) {
	return b.ledger.Balance(ctx, addr)
}

func (b *Bridge) TotalBridged(ctx context.Context) (uint64, error) {
	return b.ledger.TotalBridged(ctx)
}

func (b *Bridge) LastHeight(ctx context.Context) (uint64, error) {
	return b.ledger.LastHeight(ctx)
}

func (b *Bridge) Withdrawals(ctx context.Context) ([]*models.WithdrawalEvent, error) {
	var out []*models.WithdrawalEvent
	err := b.ledger.ScanWithdrawals(ctx, func(ev *models.WithdrawalEvent) error {
		out = append(out, ev)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// depositKey canonicalizes a raw 32-byte tx hash into the string form used
// as the ledger key.
func depositKey(txHash []byte) (string, error) {
	if !format.IsValidTxHash(txHash) {
		return "", models.ErrInvalidTxHash
	}
	h, err := chainhash.NewHash(txHash)
	if err != nil {
		return "", err
	}
	return h.String(), nil
}
