package contracts

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/armand/immo-contracts/pkg/api"
	"github.com/armand/immo-contracts/pkg/handlers/respond"
	"github.com/armand/immo-contracts/pkg/mapping"
	"github.com/armand/immo-contracts/pkg/middleware"
	"github.com/armand/immo-contracts/pkg/models"
	"github.com/armand/immo-contracts/pkg/storage"
	"github.com/armand/immo-contracts/pkg/workflow"
	"github.com/go-chi/chi/v5"
)

// ContractsHandler holds the dependencies for contract-related handlers.
type ContractsHandler struct {
	Store   storage.ApiStore
	Service *workflow.ContractService
}

// NewContractsHandler creates a new ContractsHandler.
func NewContractsHandler(store storage.ApiStore, service *workflow.ContractService) *ContractsHandler {
	return &ContractsHandler{Store: store, Service: service}
}

// CreateContract handles the logic for creating a new draft contract.
func (h *ContractsHandler) CreateContract(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		respond.Forbidden(w, "missing authentication")
		return
	}

	var newContract api.NewContract
	if err := json.NewDecoder(r.Body).Decode(&newContract); err != nil {
		respond.Validation(w, "invalid request body: "+err.Error())
		return
	}

	// The creator is always the landlord (seller on sale contracts).
	if newContract.Landlord.UserId == "" {
		newContract.Landlord.UserId = claims.UserId
	}
	if newContract.Landlord.UserId != claims.UserId {
		respond.Forbidden(w, "contracts can only be created on your own behalf")
		return
	}

	in := mapping.ToDomainContractInput(&newContract)
	contract, err := h.Service.Create(r.Context(), in)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, mapping.ToApiContract(contract))
}

// ListContracts returns every contract the authenticated user is a party to.
func (h *ContractsHandler) ListContracts(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		respond.Forbidden(w, "missing authentication")
		return
	}

	domainContracts, err := h.Store.ListContractsByUserID(r.Context(), claims.UserId)
	if err != nil {
		respond.Error(w, err)
		return
	}

	apiContracts := make([]*api.Contract, len(domainContracts))
	for i, c := range domainContracts {
		apiContracts[i] = mapping.ToApiContract(&c)
	}
	respond.JSON(w, http.StatusOK, apiContracts)
}

// GetContract returns a single contract. Only parties may read it.
func (h *ContractsHandler) GetContract(w http.ResponseWriter, r *http.Request) {
	contract, _, ok := h.loadForParty(w, r)
	if !ok {
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiContract(contract))
}

// ListVersions returns the immutable version history of a contract.
func (h *ContractsHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	contract, _, ok := h.loadForParty(w, r)
	if !ok {
		return
	}

	versions, err := h.Store.ListVersions(r.Context(), contract.Id)
	if err != nil {
		respond.Error(w, err)
		return
	}

	apiVersions := make([]*api.ContractVersion, len(versions))
	for i, v := range versions {
		apiVersions[i] = mapping.ToApiContractVersion(&v)
	}
	respond.JSON(w, http.StatusOK, apiVersions)
}

// SendContract transitions a draft to sent and notifies the parties.
func (h *ContractsHandler) SendContract(w http.ResponseWriter, r *http.Request) {
	contract, actor, ok := h.loadForParty(w, r)
	if !ok {
		return
	}

	if err := h.Service.Send(r.Context(), contract, actor); err != nil {
		respond.Error(w, err)
		return
	}

	// Re-read so the response reflects the committed transition.
	updated, err := h.Store.GetContract(r.Context(), contract.Id)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiContract(updated))
}

// RetractContract exercises the post-signing retraction window.
func (h *ContractsHandler) RetractContract(w http.ResponseWriter, r *http.Request) {
	contract, _, ok := h.loadForParty(w, r)
	if !ok {
		return
	}

	if err := h.Store.RetractContract(r.Context(), contract.Id, time.Now()); err != nil {
		respond.Error(w, err)
		return
	}

	updated, err := h.Store.GetContract(r.Context(), contract.Id)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiContract(updated))
}

// ProposeAmendment records a new amendment proposal on the contract.
func (h *ContractsHandler) ProposeAmendment(w http.ResponseWriter, r *http.Request) {
	contract, actor, ok := h.loadForParty(w, r)
	if !ok {
		return
	}

	var newAmendment api.NewAmendment
	if err := json.NewDecoder(r.Body).Decode(&newAmendment); err != nil {
		respond.Validation(w, "invalid request body: "+err.Error())
		return
	}
	if len(newAmendment.Changes) == 0 {
		respond.Validation(w, "changes must not be empty")
		return
	}

	amendment, err := h.Service.ProposeAmendment(r.Context(), contract, actor, newAmendment.Changes)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, mapping.ToApiAmendment(amendment))
}

// ListAmendments returns a contract's amendments, newest first.
func (h *ContractsHandler) ListAmendments(w http.ResponseWriter, r *http.Request) {
	contract, _, ok := h.loadForParty(w, r)
	if !ok {
		return
	}

	amendments, err := h.Store.ListAmendments(r.Context(), contract.Id)
	if err != nil {
		respond.Error(w, err)
		return
	}

	apiAmendments := make([]*api.Amendment, len(amendments))
	for i, a := range amendments {
		apiAmendments[i] = mapping.ToApiAmendment(&a)
	}
	respond.JSON(w, http.StatusOK, apiAmendments)
}

// RespondToAmendment accepts or rejects a pending amendment.
func (h *ContractsHandler) RespondToAmendment(w http.ResponseWriter, r *http.Request) {
	contract, actor, ok := h.loadForParty(w, r)
	if !ok {
		return
	}

	amendmentID := chi.URLParam(r, "amendmentId")
	amendment, err := h.Store.GetAmendment(r.Context(), amendmentID)
	if err != nil {
		respond.Error(w, err)
		return
	}
	if amendment.ContractId != contract.Id {
		respond.Fail(w, http.StatusNotFound, "not_found", "amendment does not belong to this contract")
		return
	}

	var response api.AmendmentResponse
	if err := json.NewDecoder(r.Body).Decode(&response); err != nil {
		respond.Validation(w, "invalid request body: "+err.Error())
		return
	}

	if err := h.Service.RespondToAmendment(r.Context(), contract, amendment, actor, response.Accept, response.Note); err != nil {
		respond.Error(w, err)
		return
	}

	updated, err := h.Store.GetAmendment(r.Context(), amendmentID)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiAmendment(updated))
}

// loadForParty fetches the contract from the URL and verifies the caller is
// one of its parties. On failure the response has already been written.
func (h *ContractsHandler) loadForParty(w http.ResponseWriter, r *http.Request) (*models.Contract, workflow.User, bool) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		respond.Forbidden(w, "missing authentication")
		return nil, workflow.User{}, false
	}

	contract, err := h.Store.GetContract(r.Context(), chi.URLParam(r, "contractId"))
	if err != nil {
		respond.Error(w, err)
		return nil, workflow.User{}, false
	}

	if !contract.IsParty(claims.UserId) {
		respond.Error(w, workflow.ErrNotAParty)
		return nil, workflow.User{}, false
	}

	return contract, workflow.User{Id: claims.UserId, Phone: claims.Phone}, true
}
