package mocks

import (
	"context"
	"sync"

	"btcbridge/core/internal/models"
	"btcbridge/core/internal/stores"

	"github.com/ethereum/go-ethereum/common"
)

// MockLedger is an in-memory stores.Ledger for service tests. It mirrors
// the atomicity of the bolt implementation well enough for single-threaded
// tests: composite mutators apply either all of their writes or none.
type MockLedger struct {
	mu           sync.Mutex
	Deposits     map[string]*models.Deposit
	Signatures   map[string]*models.Signature
	Attestations map[string]uint64
	Balances     map[common.Address]uint64
	Validators   map[common.Address]bool
	Events       []*models.WithdrawalEvent

	Total       uint64
	PausedFlag  bool
	InitFlag    bool
	Height      uint64
}

var _ stores.Ledger = (*MockLedger)(nil)

func NewMockLedger() *MockLedger {
	return &MockLedger{
		Deposits:     make(map[string]*models.Deposit),
		Signatures:   make(map[string]*models.Signature),
		Attestations: make(map[string]uint64),
		Balances:     make(map[common.Address]uint64),
		Validators:   make(map[common.Address]bool),
	}
}

func (m *MockLedger) PutDepositIfAbsent(ctx context.Context, dep *models.Deposit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Deposits[dep.TxHash]; ok {
		return stores.ErrDepositExists
	}
	m.Height++
	dep.Height = m.Height
	cp := *dep
	m.Deposits[dep.TxHash] = &cp
	return nil
}

func (m *MockLedger) GetDeposit(ctx context.Context, txHash string) (*models.Deposit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	dep, ok := m.Deposits[txHash]
	if !ok {
		return nil, stores.ErrDepositNotFound
	}
	cp := *dep
	return &cp, nil
}

func (m *MockLedger) ScanDeposits(ctx context.Context, visit func(*models.Deposit) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, dep := range m.Deposits {
		cp := *dep
		if err := visit(&cp); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockLedger) HasSignature(ctx context.Context, txHash string, validator common.Address) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Signatures[models.SignatureID(txHash, validator)]
	return ok, nil
}

func (m *MockLedger) GetSignature(ctx context.Context, txHash string, validator common.Address) (*models.Signature, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sig, ok := m.Signatures[models.SignatureID(txHash, validator)]
	if !ok {
		return nil, stores.ErrSignatureNotFound
	}
	cp := *sig
	return &cp, nil
}

func (m *MockLedger) SetValidator(ctx context.Context, validator common.Address, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Validators[validator] = active
	return nil
}

func (m *MockLedger) IsValidator(ctx context.Context, validator common.Address) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Validators[validator], nil
}

func (m *MockLedger) Balance(ctx context.Context, addr common.Address) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Balances[addr], nil
}

func (m *MockLedger) TotalBridged(ctx context.Context) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Total, nil
}

func (m *MockLedger) LastHeight(ctx context.Context) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Height, nil
}

func (m *MockLedger) Paused(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.PausedFlag, nil
}

func (m *MockLedger) SetPaused(ctx context.Context, paused bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PausedFlag = paused
	return nil
}

func (m *MockLedger) Initialized(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.InitFlag, nil
}

func (m *MockLedger) SetInitialized(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InitFlag = true
	return nil
}

func (m *MockLedger) Confirm(ctx context.Context, dep *models.Deposit, sig *models.Signature) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.Deposits[dep.TxHash]
	if !ok {
		return stores.ErrDepositNotFound
	}
	if stored.Processed {
		return stores.ErrDepositProcessed
	}
	if _, ok := m.Signatures[sig.ID()]; ok {
		return stores.ErrSignatureExists
	}
	m.Height++
	sig.Height = m.Height
	cp := *sig
	m.Signatures[sig.ID()] = &cp
	stored.Processed = true
	m.Balances[stored.Recipient] += stored.Amount
	m.Total += stored.Amount
	*dep = *stored
	return nil
}

func (m *MockLedger) Attest(ctx context.Context, txHash string, validator common.Address) (*models.Deposit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.Deposits[txHash]
	if !ok {
		return nil, stores.ErrDepositNotFound
	}
	if stored.Processed {
		return nil, stores.ErrDepositProcessed
	}
	key := models.SignatureID(txHash, validator)
	if _, ok := m.Attestations[key]; ok {
		return nil, stores.ErrAlreadyAttested
	}
	m.Height++
	m.Attestations[key] = m.Height
	stored.Confirmations++
	cp := *stored
	return &cp, nil
}

func (m *MockLedger) Debit(ctx context.Context, ev *models.WithdrawalEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Balances[ev.Caller] < ev.Amount || m.Total < ev.Amount {
		return stores.ErrInsufficientFunds
	}
	m.Balances[ev.Caller] -= ev.Amount
	m.Total -= ev.Amount
	m.Height++
	ev.Height = m.Height
	cp := *ev
	m.Events = append(m.Events, &cp)
	return nil
}

func (m *MockLedger) Credit(ctx context.Context, recipient common.Address, amount uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	old := m.Balances[recipient]
	if old+amount < old {
		return stores.ErrBalanceOverflow
	}
	m.Balances[recipient] = old + amount
	m.Height++
	return nil
}

func (m *MockLedger) ScanWithdrawals(ctx context.Context, visit func(*models.WithdrawalEvent) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ev := range m.Events {
		cp := *ev
		if err := visit(&cp); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockLedger) Close() error { return nil }

// MockToken is a TokenBackend recording transfer calls.
type MockToken struct {
	Transfers []MockTransfer
	FailNext  bool
	Balances  map[common.Address]uint64
}

type MockTransfer struct {
	Amount   uint64
	From, To common.Address
}

func (m *MockToken) Transfer(ctx context.Context, amount uint64, from, to common.Address) (bool, error) {
	if m.FailNext {
		m.FailNext = false
		return false, nil
	}
	m.Transfers = append(m.Transfers, MockTransfer{Amount: amount, From: from, To: to})
	return true, nil
}

func (m *MockToken) GetBalance(ctx context.Context, principal common.Address) (uint64, error) {
	return m.Balances[principal], nil
}
