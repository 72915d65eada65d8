package signing

import (
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/armand/immo-contracts/pkg/api"
	"github.com/armand/immo-contracts/pkg/handlers/respond"
	"github.com/armand/immo-contracts/pkg/mapping"
	"github.com/armand/immo-contracts/pkg/middleware"
	"github.com/armand/immo-contracts/pkg/storage"
	"github.com/armand/immo-contracts/pkg/workflow"
	"github.com/go-chi/chi/v5"
)

// SigningHandler holds the dependencies for OTP and signature handlers.
type SigningHandler struct {
	Store  storage.ApiStore
	Engine *workflow.Engine
}

// NewSigningHandler creates a new SigningHandler.
func NewSigningHandler(store storage.ApiStore, engine *workflow.Engine) *SigningHandler {
	return &SigningHandler{Store: store, Engine: engine}
}

// SendOtp issues a fresh signing code for the caller's signature slot and
// dispatches it by SMS.
func (h *SigningHandler) SendOtp(w http.ResponseWriter, r *http.Request) {
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

	user := workflow.User{Id: claims.UserId, Phone: claims.Phone}
	sig, err := h.Engine.SendOTP(r.Context(), contract, user)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, mapping.ToApiSignature(sig, time.Now()))
}

// Sign verifies the submitted code and records the caller's signature.
func (h *SigningHandler) Sign(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		respond.Forbidden(w, "missing authentication")
		return
	}

	var req api.SignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Validation(w, "invalid request body: "+err.Error())
		return
	}
	if req.OtpCode == "" {
		respond.Validation(w, "otp_code is required")
		return
	}

	contract, err := h.Store.GetContract(r.Context(), chi.URLParam(r, "contractId"))
	if err != nil {
		respond.Error(w, err)
		return
	}

	user := workflow.User{Id: claims.UserId, Phone: claims.Phone}
	sig, err := h.Engine.VerifyAndSign(r.Context(), contract, user, req.OtpCode, clientIP(r), r.UserAgent())
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, mapping.ToApiSignature(sig, time.Now()))
}

// ListSignatures returns the contract's signature slots. Only parties may read
// them; OTP material is never included.
func (h *SigningHandler) ListSignatures(w http.ResponseWriter, r *http.Request) {
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

	sigs, err := h.Store.ListSignatures(r.Context(), contract.Id)
	if err != nil {
		respond.Error(w, err)
		return
	}

	apiSigs := make([]*api.Signature, len(sigs))
	for i, s := range sigs {
		apiSigs[i] = mapping.ToApiSignature(&s, time.Now())
	}
	respond.JSON(w, http.StatusOK, apiSigs)
}

// clientIP extracts the caller's address for the signature audit record,
// preferring the forwarding header set by the load balancer.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
