package disputes

import (
	"encoding/json"
	"net/http"

	"github.com/armand/immo-contracts/pkg/api"
	"github.com/armand/immo-contracts/pkg/handlers/respond"
	"github.com/armand/immo-contracts/pkg/mapping"
	"github.com/armand/immo-contracts/pkg/middleware"
	"github.com/armand/immo-contracts/pkg/storage"
	"github.com/armand/immo-contracts/pkg/workflow"
	"github.com/go-chi/chi/v5"
)

// DisputesHandler holds the dependencies for dispute intake handlers.
type DisputesHandler struct {
	Store   storage.ApiStore
	Service *workflow.DisputeService
}

// NewDisputesHandler creates a new DisputesHandler.
func NewDisputesHandler(store storage.ApiStore, service *workflow.DisputeService) *DisputesHandler {
	return &DisputesHandler{Store: store, Service: service}
}

// CreateDispute opens a dispute on the contract, with its companion mediation
// record.
func (h *DisputesHandler) CreateDispute(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		respond.Forbidden(w, "missing authentication")
		return
	}

	var newDispute api.NewDispute
	if err := json.NewDecoder(r.Body).Decode(&newDispute); err != nil {
		respond.Validation(w, "invalid request body: "+err.Error())
		return
	}
	if newDispute.Reason == "" {
		respond.Validation(w, "reason is required")
		return
	}

	contract, err := h.Store.GetContract(r.Context(), chi.URLParam(r, "contractId"))
	if err != nil {
		respond.Error(w, err)
		return
	}

	initiator := workflow.User{Id: claims.UserId, Phone: claims.Phone}
	dispute, err := h.Service.Create(r.Context(), contract, initiator, workflow.DisputeInput{
		Type:        newDispute.Type,
		Reason:      newDispute.Reason,
		Description: newDispute.Description,
	})
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, mapping.ToApiDispute(dispute))
}

// ListDisputes returns the contract's disputes.
func (h *DisputesHandler) ListDisputes(w http.ResponseWriter, r *http.Request) {
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

	domainDisputes, err := h.Store.ListDisputes(r.Context(), contract.Id)
	if err != nil {
		respond.Error(w, err)
		return
	}

	apiDisputes := make([]*api.Dispute, len(domainDisputes))
	for i, d := range domainDisputes {
		apiDisputes[i] = mapping.ToApiDispute(&d)
	}
	respond.JSON(w, http.StatusOK, apiDisputes)
}

// ListMediations returns the mediation records of one dispute.
func (h *DisputesHandler) ListMediations(w http.ResponseWriter, r *http.Request) {
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

	mediations, err := h.Store.ListMediations(r.Context(), chi.URLParam(r, "disputeId"))
	if err != nil {
		respond.Error(w, err)
		return
	}

	apiMediations := make([]*api.Mediation, len(mediations))
	for i, m := range mediations {
		apiMediations[i] = mapping.ToApiMediation(&m)
	}
	respond.JSON(w, http.StatusOK, apiMediations)
}
