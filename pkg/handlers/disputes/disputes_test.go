package disputes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/armand/immo-contracts/pkg/api"
	"github.com/armand/immo-contracts/pkg/middleware"
	"github.com/armand/immo-contracts/pkg/models"
	storage_mocks "github.com/armand/immo-contracts/pkg/storage/mocks"
	"github.com/armand/immo-contracts/pkg/workflow"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestHandler(mockStorage *storage_mocks.Storage) *DisputesHandler {
	return NewDisputesHandler(mockStorage, workflow.NewDisputeService(mockStorage))
}

func authedRequest(method, target string, body []byte, userID string, params map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	ctx := middleware.WithClaims(req.Context(), &middleware.Claims{UserId: userID, Phone: "+237600000002"})
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	return req.WithContext(ctx)
}

func signedContract() *models.Contract {
	return &models.Contract{
		Id:         "c1",
		Type:       models.ContractLocation,
		LandlordId: "landlord-1",
		TenantId:   "tenant-1",
		Status:     models.ContractSigned,
	}
}

func TestCreateDispute(t *testing.T) {
	newDispute := api.NewDispute{Type: "payment", Reason: "deposit not returned"}

	t.Run("Success", func(t *testing.T) {
		mockStorage := new(storage_mocks.Storage)
		handler := newTestHandler(mockStorage)

		mockStorage.On("GetContract", mock.Anything, "c1").Return(signedContract(), nil)
		mockStorage.On("CreateDispute", mock.Anything, mock.AnythingOfType("*models.Dispute"), mock.AnythingOfType("*models.Mediation")).Return(nil)

		body, _ := json.Marshal(newDispute)
		req := authedRequest(http.MethodPost, "/contracts/c1/disputes", body, "tenant-1", map[string]string{"contractId": "c1"})
		rr := httptest.NewRecorder()

		handler.CreateDispute(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		var dispute api.Dispute
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&dispute))
		assert.Equal(t, "open", dispute.Status)
		assert.Equal(t, "tenant-1", dispute.InitiatorId)
		assert.Equal(t, "landlord-1", dispute.OtherId)
		mockStorage.AssertExpectations(t)
	})

	t.Run("A missing reason fails validation", func(t *testing.T) {
		handler := newTestHandler(new(storage_mocks.Storage))

		body, _ := json.Marshal(api.NewDispute{Type: "payment"})
		req := authedRequest(http.MethodPost, "/contracts/c1/disputes", body, "tenant-1", map[string]string{"contractId": "c1"})
		rr := httptest.NewRecorder()

		handler.CreateDispute(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("A stranger cannot open a dispute", func(t *testing.T) {
		mockStorage := new(storage_mocks.Storage)
		handler := newTestHandler(mockStorage)

		mockStorage.On("GetContract", mock.Anything, "c1").Return(signedContract(), nil)

		body, _ := json.Marshal(newDispute)
		req := authedRequest(http.MethodPost, "/contracts/c1/disputes", body, "stranger", map[string]string{"contractId": "c1"})
		rr := httptest.NewRecorder()

		handler.CreateDispute(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}

func TestListDisputes(t *testing.T) {
	t.Run("A party lists the contract's disputes", func(t *testing.T) {
		mockStorage := new(storage_mocks.Storage)
		handler := newTestHandler(mockStorage)

		mockStorage.On("GetContract", mock.Anything, "c1").Return(signedContract(), nil)
		mockStorage.On("ListDisputes", mock.Anything, "c1").Return([]models.Dispute{
			{Id: "d1", ContractId: "c1", InitiatorId: "tenant-1", OtherId: "landlord-1", Status: models.DisputeOpen},
		}, nil)

		req := authedRequest(http.MethodGet, "/contracts/c1/disputes", nil, "landlord-1", map[string]string{"contractId": "c1"})
		rr := httptest.NewRecorder()

		handler.ListDisputes(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var disputes []api.Dispute
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&disputes))
		assert.Len(t, disputes, 1)
	})
}

func TestListMediations(t *testing.T) {
	t.Run("A party lists a dispute's mediations", func(t *testing.T) {
		mockStorage := new(storage_mocks.Storage)
		handler := newTestHandler(mockStorage)

		mockStorage.On("GetContract", mock.Anything, "c1").Return(signedContract(), nil)
		mockStorage.On("ListMediations", mock.Anything, "d1").Return([]models.Mediation{
			{Id: "m1", DisputeId: "d1", Status: models.MediationPending},
		}, nil)

		req := authedRequest(http.MethodGet, "/contracts/c1/disputes/d1/mediations", nil, "tenant-1",
			map[string]string{"contractId": "c1", "disputeId": "d1"})
		rr := httptest.NewRecorder()

		handler.ListMediations(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var mediations []api.Mediation
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&mediations))
		assert.Len(t, mediations, 1)
	})

	t.Run("A stranger cannot list", func(t *testing.T) {
		mockStorage := new(storage_mocks.Storage)
		handler := newTestHandler(mockStorage)

		mockStorage.On("GetContract", mock.Anything, "c1").Return(signedContract(), nil)

		req := authedRequest(http.MethodGet, "/contracts/c1/disputes/d1/mediations", nil, "stranger",
			map[string]string{"contractId": "c1", "disputeId": "d1"})
		rr := httptest.NewRecorder()

		handler.ListMediations(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}
