package transactions

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/armand/immo-contracts/pkg/api"
	"github.com/armand/immo-contracts/pkg/handlers/respond"
	"github.com/armand/immo-contracts/pkg/mapping"
	"github.com/armand/immo-contracts/pkg/middleware"
	"github.com/armand/immo-contracts/pkg/models"
	"github.com/armand/immo-contracts/pkg/payments"
	"github.com/armand/immo-contracts/pkg/storage"
	"github.com/armand/immo-contracts/pkg/workflow"
	"github.com/go-chi/chi/v5"
)

// TransactionsHandler holds the dependencies for commission transaction handlers.
type TransactionsHandler struct {
	Store storage.ApiStore
}

// NewTransactionsHandler creates a new TransactionsHandler.
func NewTransactionsHandler(store storage.ApiStore) *TransactionsHandler {
	return &TransactionsHandler{Store: store}
}

// ListContractTransactions returns the commission transactions of a contract.
func (h *TransactionsHandler) ListContractTransactions(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		respond.Forbidden(w, "missing authentication")
		return
	}

	contract, err := h.Store.GetContract(r.Context(), chi.URLParam(r, "contractId"))
	if err != nil {
		respond.Error(w, err)
		return
	}
	if !contract.IsParty(claims.UserId) {
		respond.Error(w, workflow.ErrNotAParty)
		return
	}

	txs, err := h.Store.ListTransactionsByContract(r.Context(), contract.Id)
	if err != nil {
		respond.Error(w, err)
		return
	}

	apiTxs := make([]*api.Transaction, len(txs))
	for i, t := range txs {
		apiTxs[i] = mapping.ToApiTransaction(&t)
	}
	respond.JSON(w, http.StatusOK, apiTxs)
}

// GetTransaction returns a single commission transaction. Only the debtor may
// read it.
func (h *TransactionsHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		respond.Forbidden(w, "missing authentication")
		return
	}

	tx, err := h.Store.GetTransaction(r.Context(), chi.URLParam(r, "transactionId"))
	if err != nil {
		respond.Error(w, err)
		return
	}
	if tx.UserId != claims.UserId {
		respond.Forbidden(w, "transaction belongs to another user")
		return
	}

	respond.JSON(w, http.StatusOK, mapping.ToApiTransaction(tx))
}

// PayTransaction initiates a mobile-money payment for a commission and, when
// the provider accepts, marks the transaction paid.
func (h *TransactionsHandler) PayTransaction(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		respond.Forbidden(w, "missing authentication")
		return
	}

	var req api.PayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Validation(w, "invalid request body: "+err.Error())
		return
	}

	provider, err := payments.ForName(req.Provider)
	if err != nil {
		respond.Validation(w, err.Error())
		return
	}

	phone := req.PhoneNumber
	if phone == "" {
		phone = claims.Phone
	}

	tx, err := h.Store.GetTransaction(r.Context(), chi.URLParam(r, "transactionId"))
	if err != nil {
		respond.Error(w, err)
		return
	}
	if tx.UserId != claims.UserId {
		respond.Forbidden(w, "transaction belongs to another user")
		return
	}

	switch tx.Status {
	case models.TransactionPending, models.TransactionDue, models.TransactionOverdue:
		// Payable statuses.
	default:
		respond.Fail(w, http.StatusConflict, "invalid_state", fmt.Sprintf("transaction is %s", tx.Status))
		return
	}

	description := fmt.Sprintf("Commission for contract %s (%s)", tx.ContractId, tx.PartyType)
	initiation, err := provider.Initiate(r.Context(), phone, tx.Amount, description)
	if err != nil {
		respond.Error(w, err)
		return
	}

	if initiation.Status != payments.InitiationAccepted {
		respond.JSON(w, http.StatusOK, api.PaymentResult{
			Status:      string(initiation.Status),
			PaymentId:   initiation.PaymentId,
			Transaction: *mapping.ToApiTransaction(tx),
		})
		return
	}

	if err := h.Store.MarkTransactionPaid(r.Context(), tx.Id, time.Now()); err != nil {
		respond.Error(w, err)
		return
	}

	paid, err := h.Store.GetTransaction(r.Context(), tx.Id)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, api.PaymentResult{
		Status:      string(initiation.Status),
		PaymentId:   initiation.PaymentId,
		Transaction: *mapping.ToApiTransaction(paid),
	})
}
