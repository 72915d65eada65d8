package signing

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/armand/immo-contracts/pkg/api"
	"github.com/armand/immo-contracts/pkg/middleware"
	"github.com/armand/immo-contracts/pkg/models"
	"github.com/armand/immo-contracts/pkg/notify"
	scheduler_mocks "github.com/armand/immo-contracts/pkg/scheduler/mocks"
	"github.com/armand/immo-contracts/pkg/storage"
	storage_mocks "github.com/armand/immo-contracts/pkg/storage/mocks"
	"github.com/armand/immo-contracts/pkg/workflow"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestHandler(mockStorage *storage_mocks.Storage, mockScheduler *scheduler_mocks.Scheduler) *SigningHandler {
	engine := workflow.NewEngine(mockStorage, mockStorage, notify.LogDispatcher{}, mockScheduler, "test-secret")
	return NewSigningHandler(mockStorage, engine)
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

func sentContract() *models.Contract {
	return &models.Contract{
		Id:         "c1",
		Type:       models.ContractLocation,
		LandlordId: "landlord-1",
		TenantId:   "tenant-1",
		Status:     models.ContractSent,
		Version:    1,
	}
}

func TestSendOtp(t *testing.T) {
	t.Run("Issues a code for the caller's slot", func(t *testing.T) {
		mockStorage := new(storage_mocks.Storage)
		handler := newTestHandler(mockStorage, new(scheduler_mocks.Scheduler))

		mockStorage.On("GetContract", mock.Anything, "c1").Return(sentContract(), nil)
		mockStorage.On("GetSignature", mock.Anything, "c1", "tenant-1#tenant").Return(nil, storage.ErrNotFound)
		mockStorage.On("PutSignature", mock.Anything, mock.AnythingOfType("*models.Signature")).Return(nil)

		req := authedRequest(http.MethodPost, "/contracts/c1/otp", nil, "tenant-1", map[string]string{"contractId": "c1"})
		rr := httptest.NewRecorder()

		handler.SendOtp(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var sig api.Signature
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&sig))
		assert.Equal(t, "tenant-1", sig.UserId)
		assert.Equal(t, "otp_sent", sig.Status)
		// The code must never appear in the response body.
		assert.NotContains(t, rr.Body.String(), "otp_code")
		mockStorage.AssertExpectations(t)
	})

	t.Run("A stranger cannot request a code", func(t *testing.T) {
		mockStorage := new(storage_mocks.Storage)
		handler := newTestHandler(mockStorage, new(scheduler_mocks.Scheduler))

		mockStorage.On("GetContract", mock.Anything, "c1").Return(sentContract(), nil)

		req := authedRequest(http.MethodPost, "/contracts/c1/otp", nil, "stranger", map[string]string{"contractId": "c1"})
		rr := httptest.NewRecorder()

		handler.SendOtp(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("A draft is not open for signing", func(t *testing.T) {
		mockStorage := new(storage_mocks.Storage)
		handler := newTestHandler(mockStorage, new(scheduler_mocks.Scheduler))

		draft := sentContract()
		draft.Status = models.ContractDraft
		mockStorage.On("GetContract", mock.Anything, "c1").Return(draft, nil)

		req := authedRequest(http.MethodPost, "/contracts/c1/otp", nil, "tenant-1", map[string]string{"contractId": "c1"})
		rr := httptest.NewRecorder()

		handler.SendOtp(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}

func TestSign(t *testing.T) {
	otpSlot := func() *models.Signature {
		sentAt := time.Now().Add(-time.Minute)
		expiresAt := sentAt.Add(models.OtpValidity)
		return &models.Signature{
			ContractId:   "c1",
			SignerKey:    "tenant-1#tenant",
			UserId:       "tenant-1",
			Role:         models.RoleTenant,
			Status:       models.SignatureOtpSent,
			OtpCode:      "123456",
			OtpSentAt:    &sentAt,
			OtpExpiresAt: &expiresAt,
		}
	}

	t.Run("A correct code records the signature", func(t *testing.T) {
		mockStorage := new(storage_mocks.Storage)
		mockScheduler := new(scheduler_mocks.Scheduler)
		handler := newTestHandler(mockStorage, mockScheduler)

		mockStorage.On("GetContract", mock.Anything, "c1").Return(sentContract(), nil)
		mockStorage.On("GetSignature", mock.Anything, "c1", "tenant-1#tenant").Return(otpSlot(), nil)
		mockStorage.On("MarkSigned", mock.Anything, mock.AnythingOfType("*models.Signature")).Return(nil)
		// The landlord has not signed yet, so no finalization is enqueued.
		mockStorage.On("ListSignatures", mock.Anything, "c1").Return([]models.Signature{*otpSlot()}, nil)

		body, _ := json.Marshal(api.SignRequest{OtpCode: "123456"})
		req := authedRequest(http.MethodPost, "/contracts/c1/sign", body, "tenant-1", map[string]string{"contractId": "c1"})
		req.Header.Set("X-Forwarded-For", "41.202.1.9")
		rr := httptest.NewRecorder()

		handler.Sign(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var sig api.Signature
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&sig))
		assert.Equal(t, "signed", sig.Status)
		assert.NotEmpty(t, sig.Hash)
		mockScheduler.AssertNotCalled(t, "ScheduleFinalization", mock.Anything, mock.Anything)
		mockStorage.AssertExpectations(t)
	})

	t.Run("The last signature enqueues finalization", func(t *testing.T) {
		mockStorage := new(storage_mocks.Storage)
		mockScheduler := new(scheduler_mocks.Scheduler)
		handler := newTestHandler(mockStorage, mockScheduler)

		signedAt := time.Now()
		landlordSig := models.Signature{
			ContractId: "c1", SignerKey: "landlord-1#landlord", UserId: "landlord-1",
			Role: models.RoleLandlord, Status: models.SignatureSigned, SignedAt: &signedAt,
		}
		tenantSig := *otpSlot()
		tenantSig.Status = models.SignatureSigned
		tenantSig.SignedAt = &signedAt

		mockStorage.On("GetContract", mock.Anything, "c1").Return(sentContract(), nil)
		mockStorage.On("GetSignature", mock.Anything, "c1", "tenant-1#tenant").Return(otpSlot(), nil)
		mockStorage.On("MarkSigned", mock.Anything, mock.AnythingOfType("*models.Signature")).Return(nil)
		mockStorage.On("ListSignatures", mock.Anything, "c1").Return([]models.Signature{landlordSig, tenantSig}, nil)
		mockScheduler.On("ScheduleFinalization", mock.Anything, "c1").Return(nil)

		body, _ := json.Marshal(api.SignRequest{OtpCode: "123456"})
		req := authedRequest(http.MethodPost, "/contracts/c1/sign", body, "tenant-1", map[string]string{"contractId": "c1"})
		rr := httptest.NewRecorder()

		handler.Sign(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		mockScheduler.AssertExpectations(t)
	})

	t.Run("A wrong code is rejected", func(t *testing.T) {
		mockStorage := new(storage_mocks.Storage)
		handler := newTestHandler(mockStorage, new(scheduler_mocks.Scheduler))

		mockStorage.On("GetContract", mock.Anything, "c1").Return(sentContract(), nil)
		mockStorage.On("GetSignature", mock.Anything, "c1", "tenant-1#tenant").Return(otpSlot(), nil)

		body, _ := json.Marshal(api.SignRequest{OtpCode: "654321"})
		req := authedRequest(http.MethodPost, "/contracts/c1/sign", body, "tenant-1", map[string]string{"contractId": "c1"})
		rr := httptest.NewRecorder()

		handler.Sign(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		var apiErr api.Error
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&apiErr))
		assert.Equal(t, "invalid_otp", apiErr.Code)
		mockStorage.AssertNotCalled(t, "MarkSigned", mock.Anything, mock.Anything)
	})

	t.Run("An expired code is rejected", func(t *testing.T) {
		mockStorage := new(storage_mocks.Storage)
		handler := newTestHandler(mockStorage, new(scheduler_mocks.Scheduler))

		stale := otpSlot()
		staleSent := time.Now().Add(-time.Hour)
		staleExpiry := staleSent.Add(models.OtpValidity)
		stale.OtpSentAt = &staleSent
		stale.OtpExpiresAt = &staleExpiry

		mockStorage.On("GetContract", mock.Anything, "c1").Return(sentContract(), nil)
		mockStorage.On("GetSignature", mock.Anything, "c1", "tenant-1#tenant").Return(stale, nil)

		body, _ := json.Marshal(api.SignRequest{OtpCode: "123456"})
		req := authedRequest(http.MethodPost, "/contracts/c1/sign", body, "tenant-1", map[string]string{"contractId": "c1"})
		rr := httptest.NewRecorder()

		handler.Sign(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		var apiErr api.Error
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&apiErr))
		assert.Equal(t, "otp_expired", apiErr.Code)
	})

	t.Run("A missing code fails validation", func(t *testing.T) {
		handler := newTestHandler(new(storage_mocks.Storage), new(scheduler_mocks.Scheduler))

		body, _ := json.Marshal(api.SignRequest{})
		req := authedRequest(http.MethodPost, "/contracts/c1/sign", body, "tenant-1", map[string]string{"contractId": "c1"})
		rr := httptest.NewRecorder()

		handler.Sign(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestListSignatures(t *testing.T) {
	t.Run("Slots are returned without OTP material", func(t *testing.T) {
		mockStorage := new(storage_mocks.Storage)
		handler := newTestHandler(mockStorage, new(scheduler_mocks.Scheduler))

		mockStorage.On("GetContract", mock.Anything, "c1").Return(sentContract(), nil)
		mockStorage.On("ListSignatures", mock.Anything, "c1").Return([]models.Signature{
			{ContractId: "c1", UserId: "tenant-1", Role: models.RoleTenant, Status: models.SignatureOtpSent, OtpCode: "123456"},
		}, nil)

		req := authedRequest(http.MethodGet, "/contracts/c1/signatures", nil, "landlord-1", map[string]string{"contractId": "c1"})
		rr := httptest.NewRecorder()

		handler.ListSignatures(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.NotContains(t, rr.Body.String(), "123456")
	})

	t.Run("An overdue otp_sent slot is listed as expired", func(t *testing.T) {
		mockStorage := new(storage_mocks.Storage)
		handler := newTestHandler(mockStorage, new(scheduler_mocks.Scheduler))

		sentAt := time.Now().Add(-time.Hour)
		expiresAt := sentAt.Add(models.OtpValidity)
		mockStorage.On("GetContract", mock.Anything, "c1").Return(sentContract(), nil)
		mockStorage.On("ListSignatures", mock.Anything, "c1").Return([]models.Signature{
			{ContractId: "c1", UserId: "tenant-1", Role: models.RoleTenant, Status: models.SignatureOtpSent,
				OtpSentAt: &sentAt, OtpExpiresAt: &expiresAt},
		}, nil)

		req := authedRequest(http.MethodGet, "/contracts/c1/signatures", nil, "landlord-1", map[string]string{"contractId": "c1"})
		rr := httptest.NewRecorder()

		handler.ListSignatures(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var sigs []api.Signature
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&sigs))
		require.Len(t, sigs, 1)
		assert.Equal(t, "expired", sigs[0].Status)
	})

	t.Run("A stranger cannot list", func(t *testing.T) {
		mockStorage := new(storage_mocks.Storage)
		handler := newTestHandler(mockStorage, new(scheduler_mocks.Scheduler))

		mockStorage.On("GetContract", mock.Anything, "c1").Return(sentContract(), nil)

		req := authedRequest(http.MethodGet, "/contracts/c1/signatures", nil, "stranger", map[string]string{"contractId": "c1"})
		rr := httptest.NewRecorder()

		handler.ListSignatures(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = "10.0.0.7:52113"
	assert.Equal(t, "10.0.0.7", clientIP(req))

	req.Header.Set("X-Forwarded-For", "41.202.1.9")
	assert.Equal(t, "41.202.1.9", clientIP(req))
}
