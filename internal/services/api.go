package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"btcbridge/core/internal/models"
	"btcbridge/core/internal/utils/address"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Api exposes the bridge command and query surface over JSON/HTTP. Caller
// identity comes from the X-Bridge-Caller header; transport-level
// authentication is out of scope and sits in front of this service.
type Api struct {
	server *http.Server
	bridge *Bridge
	log    *slog.Logger
}

func NewApi(log *slog.Logger, bridge *Bridge, listenAddr string) *Api {
	a := &Api{
		bridge: bridge,
		log:    log,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/admin/initialize", a.handleInitialize)
	r.Post("/admin/pause", a.handlePause)
	r.Post("/admin/resume", a.handleResume)
	r.Put("/admin/validators/{addr}", a.handleAddValidator)
	r.Delete("/admin/validators/{addr}", a.handleRemoveValidator)
	r.Post("/admin/credits", a.handleEmergencyCredit)

	r.Post("/deposits", a.handleInitiateDeposit)
	r.Post("/deposits/{hash}/attest", a.handleRecordConfirmation)
	r.Post("/deposits/{hash}/confirm", a.handleConfirmDeposit)
	r.Get("/deposits/{hash}", a.handleGetDeposit)

	r.Post("/withdrawals", a.handleWithdraw)
	r.Get("/withdrawals", a.handleListWithdrawals)

	r.Get("/status", a.handleStatus)
	r.Get("/validators/{addr}", a.handleValidatorStatus)
	r.Get("/balances/{addr}", a.handleBalance)

	a.server = &http.Server{
		Addr:    listenAddr,
		Handler: r,
	}
	return a
}

func (a *Api) Start() error {
	return a.server.ListenAndServe()
}

func (a *Api) Shutdown(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}

func (a *Api) Handler() http.Handler {
	return a.server.Handler
}

type initiateDepositRequest struct {
	TxHash    hexutil.Bytes `json:"tx_hash"`
	Amount    uint64        `json:"amount"`
	Recipient string        `json:"recipient"`
	BtcSender hexutil.Bytes `json:"btc_sender"`
}

type confirmDepositRequest struct {
	Signature hexutil.Bytes `json:"signature"`
}

type withdrawRequest struct {
	Amount       uint64 `json:"amount"`
	BtcRecipient string `json:"btc_recipient"`
}

type creditRequest struct {
	Amount    uint64 `json:"amount"`
	Recipient string `json:"recipient"`
}

type statusResponse struct {
	Paused       bool   `json:"paused"`
	TotalBridged uint64 `json:"total_bridged"`
	LastHeight   uint64 `json:"last_height"`
}

type validatorResponse struct {
	Validator string `json:"validator"`
	Active    bool   `json:"active"`
}

type balanceResponse struct {
	Address string `json:"address"`
	Balance uint64 `json:"balance"`
}

func (a *Api) handleInitialize(w http.ResponseWriter, r *http.Request) {
	caller, ok := a.caller(w, r)
	if !ok {
		return
	}
	a.respond(w, r, nil, a.bridge.Initialize(r.Context(), caller))
}

func (a *Api) handlePause(w http.ResponseWriter, r *http.Request) {
	caller, ok := a.caller(w, r)
	if !ok {
		return
	}
	a.respond(w, r, nil, a.bridge.Pause(r.Context(), caller))
}

func (a *Api) handleResume(w http.ResponseWriter, r *http.Request) {
	caller, ok := a.caller(w, r)
	if !ok {
		return
	}
	a.respond(w, r, nil, a.bridge.Resume(r.Context(), caller))
}

func (a *Api) handleAddValidator(w http.ResponseWriter, r *http.Request) {
	caller, ok := a.caller(w, r)
	if !ok {
		return
	}
	validator, err := address.Parse(chi.URLParam(r, "addr"))
	if err != nil {
		a.respond(w, r, nil, models.ErrInvalidValidatorAddress)
		return
	}
	a.respond(w, r, nil, a.bridge.AddValidator(r.Context(), caller, validator))
}

func (a *Api) handleRemoveValidator(w http.ResponseWriter, r *http.Request) {
	caller, ok := a.caller(w, r)
	if !ok {
		return
	}
	validator, err := address.Parse(chi.URLParam(r, "addr"))
	if err != nil {
		a.respond(w, r, nil, models.ErrInvalidValidatorAddress)
		return
	}
	a.respond(w, r, nil, a.bridge.RemoveValidator(r.Context(), caller, validator))
}

func (a *Api) handleEmergencyCredit(w http.ResponseWriter, r *http.Request) {
	caller, ok := a.caller(w, r)
	if !ok {
		return
	}
	var req creditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	recipient, err := address.Parse(req.Recipient)
	if err != nil {
		a.respond(w, r, nil, models.ErrInvalidRecipientAddress)
		return
	}
	a.respond(w, r, nil, a.bridge.EmergencyWithdraw(r.Context(), caller, req.Amount, recipient))
}

func (a *Api) handleInitiateDeposit(w http.ResponseWriter, r *http.Request) {
	caller, ok := a.caller(w, r)
	if !ok {
		return
	}
	var req initiateDepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	recipient, err := address.Parse(req.Recipient)
	if err != nil {
		a.respond(w, r, nil, models.ErrInvalidRecipientAddress)
		return
	}
	dep, err := a.bridge.InitiateDeposit(r.Context(), caller, req.TxHash, req.Amount, recipient, req.BtcSender)
	a.respond(w, r, dep, err)
}

func (a *Api) handleRecordConfirmation(w http.ResponseWriter, r *http.Request) {
	caller, ok := a.caller(w, r)
	if !ok {
		return
	}
	txHash, err := hexutil.Decode(chi.URLParam(r, "hash"))
	if err != nil {
		a.respond(w, r, nil, models.ErrInvalidTxHash)
		return
	}
	dep, err := a.bridge.RecordConfirmation(r.Context(), caller, txHash)
	a.respond(w, r, dep, err)
}

func (a *Api) handleConfirmDeposit(w http.ResponseWriter, r *http.Request) {
	caller, ok := a.caller(w, r)
	if !ok {
		return
	}
	txHash, err := hexutil.Decode(chi.URLParam(r, "hash"))
	if err != nil {
		a.respond(w, r, nil, models.ErrInvalidTxHash)
		return
	}
	var req confirmDepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	dep, err := a.bridge.ConfirmDeposit(r.Context(), caller, txHash, req.Signature)
	a.respond(w, r, dep, err)
}

func (a *Api) handleGetDeposit(w http.ResponseWriter, r *http.Request) {
	txHash, err := hexutil.Decode(chi.URLParam(r, "hash"))
	if err != nil {
		a.respond(w, r, nil, models.ErrInvalidTxHash)
		return
	}
	dep, err := a.bridge.Deposit(r.Context(), txHash)
	if err != nil {
		a.respond(w, r, nil, err)
		return
	}
	if dep == nil {
		http.Error(w, "deposit not found", http.StatusNotFound)
		return
	}
	a.respond(w, r, dep, nil)
}

func (a *Api) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	caller, ok := a.caller(w, r)
	if !ok {
		return
	}
	var req withdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	ev, err := a.bridge.Withdraw(r.Context(), caller, req.Amount, []byte(req.BtcRecipient))
	a.respond(w, r, ev, err)
}

func (a *Api) handleListWithdrawals(w http.ResponseWriter, r *http.Request) {
	events, err := a.bridge.Withdrawals(r.Context())
	if err != nil {
		a.respond(w, r, nil, err)
		return
	}
	if events == nil {
		events = []*models.WithdrawalEvent{}
	}
	a.respond(w, r, events, nil)
}

func (a *Api) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	paused, err := a.bridge.Paused(ctx)
	if err != nil {
		a.respond(w, r, nil, err)
		return
	}
	total, err := a.bridge.TotalBridged(ctx)
	if err != nil {
		a.respond(w, r, nil, err)
		return
	}
	height, err := a.bridge.LastHeight(ctx)
	if err != nil {
		a.respond(w, r, nil, err)
		return
	}
	a.respond(w, r, statusResponse{Paused: paused, TotalBridged: total, LastHeight: height}, nil)
}

func (a *Api) handleValidatorStatus(w http.ResponseWriter, r *http.Request) {
	addr, err := address.Parse(chi.URLParam(r, "addr"))
	if err != nil {
		a.respond(w, r, nil, models.ErrInvalidValidatorAddress)
		return
	}
	active, err := a.bridge.ValidatorStatus(r.Context(), addr)
	if err != nil {
		a.respond(w, r, nil, err)
		return
	}
	a.respond(w, r, validatorResponse{Validator: addr.Hex(), Active: active}, nil)
}

func (a *Api) handleBalance(w http.ResponseWriter, r *http.Request) {
	addr, err := address.Parse(chi.URLParam(r, "addr"))
	if err != nil {
		a.respond(w, r, nil, models.ErrInvalidRecipientAddress)
		return
	}
	balance, err := a.bridge.Balance(r.Context(), addr)
	if err != nil {
		a.respond(w, r, nil, err)
		return
	}
	a.respond(w, r, balanceResponse{Address: addr.Hex(), Balance: balance}, nil)
}

func (a *Api) caller(w http.ResponseWriter, r *http.Request) (common.Address, bool) {
	addr, err := address.Parse(r.Header.Get("X-Bridge-Caller"))
	if err != nil {
		http.Error(w, "missing or invalid X-Bridge-Caller header", http.StatusBadRequest)
		return common.Address{}, false
	}
	return addr, true
}

func (a *Api) respond(w http.ResponseWriter, r *http.Request, body any, err error) {
	if err != nil {
		var bridgeErr *models.BridgeError
		if errors.As(err, &bridgeErr) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(statusFor(bridgeErr))
			_ = json.NewEncoder(w).Encode(bridgeErr)
			return
		}
		a.log.Error("internal error", "path", r.URL.Path, "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if body == nil {
		body = map[string]string{"status": "ok"}
	}
	_ = json.NewEncoder(w).Encode(body)
}

func statusFor(err *models.BridgeError) int {
	switch err {
	case models.ErrNotAuthorized:
		return http.StatusForbidden
	case models.ErrAlreadyProcessed, models.ErrBridgePaused, models.ErrInvalidBridgeStatus:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
