package workflow

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/armand/immo-contracts/pkg/models"
	scheduler_mocks "github.com/armand/immo-contracts/pkg/scheduler/mocks"
	"github.com/armand/immo-contracts/pkg/storage"
	storage_mocks "github.com/armand/immo-contracts/pkg/storage/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var otpPattern = regexp.MustCompile(`\b\d{6}\b`)

func newTestEngine(store *storage_mocks.Storage, sms *fakeSMS, sched *scheduler_mocks.Scheduler) *Engine {
	e := NewEngine(store, store, sms, sched, "test-secret")
	e.now = func() time.Time { return testNow }
	return e
}

func TestSendOTP(t *testing.T) {
	t.Run("Creates a slot and dispatches a 6 digit code", func(t *testing.T) {
		mockStorage := new(storage_mocks.Storage)
		sms := &fakeSMS{}
		engine := newTestEngine(mockStorage, sms, nil)
		contract := locationContract()

		var saved *models.Signature
		mockStorage.On("GetSignature", mock.Anything, "c1", "tenant-1#tenant").Return(nil, storage.ErrNotFound)
		mockStorage.On("PutSignature", mock.Anything, mock.AnythingOfType("*models.Signature")).
			Run(func(args mock.Arguments) { saved = args.Get(1).(*models.Signature) }).
			Return(nil)

		sig, err := engine.SendOTP(context.Background(), contract, User{Id: "tenant-1", Phone: "+237670000002"})
		require.NoError(t, err)

		require.NotNil(t, saved)
		assert.Regexp(t, `^\d{6}$`, saved.OtpCode)
		assert.Equal(t, models.SignatureOtpSent, saved.Status)
		assert.Equal(t, models.RoleTenant, saved.Role)
		require.NotNil(t, saved.OtpExpiresAt)
		assert.Equal(t, testNow.Add(models.OtpValidity), *saved.OtpExpiresAt)

		// The code reaches the SMS but never the caller.
		assert.Empty(t, sig.OtpCode)
		require.Len(t, sms.sent, 1)
		assert.Equal(t, "+237670000002", sms.sent[0].To)
		assert.Regexp(t, otpPattern, sms.sent[0].Message)

		mockStorage.AssertExpectations(t)
	})

	t.Run("Reissues a code on an existing slot", func(t *testing.T) {
		mockStorage := new(storage_mocks.Storage)
		sms := &fakeSMS{}
		engine := newTestEngine(mockStorage, sms, nil)
		contract := locationContract()

		existing := &models.Signature{
			ContractId: "c1",
			SignerKey:  "tenant-1#tenant",
			UserId:     "tenant-1",
			Role:       models.RoleTenant,
			Status:     models.SignatureOtpSent,
			OtpCode:    "111111",
			CreatedAt:  testNow.Add(-time.Hour),
		}
		var saved *models.Signature
		mockStorage.On("GetSignature", mock.Anything, "c1", "tenant-1#tenant").Return(existing, nil)
		mockStorage.On("PutSignature", mock.Anything, mock.AnythingOfType("*models.Signature")).
			Run(func(args mock.Arguments) { saved = args.Get(1).(*models.Signature) }).
			Return(nil)

		_, err := engine.SendOTP(context.Background(), contract, User{Id: "tenant-1", Phone: "+237670000002"})
		require.NoError(t, err)

		require.NotNil(t, saved)
		assert.NotEqual(t, "111111", saved.OtpCode)
		assert.False(t, saved.OtpVerified)
		mockStorage.AssertExpectations(t)
	})

	t.Run("Rejects non-parties", func(t *testing.T) {
		engine := newTestEngine(new(storage_mocks.Storage), &fakeSMS{}, nil)

		_, err := engine.SendOTP(context.Background(), locationContract(), User{Id: "stranger"})
		assert.ErrorIs(t, err, ErrNotAParty)
	})

	t.Run("Rejects a draft contract", func(t *testing.T) {
		engine := newTestEngine(new(storage_mocks.Storage), &fakeSMS{}, nil)
		contract := locationContract()
		contract.Status = models.ContractDraft

		_, err := engine.SendOTP(context.Background(), contract, User{Id: "tenant-1"})
		assert.ErrorIs(t, err, storage.ErrInvalidState)
	})

	t.Run("Rejects an already signed slot", func(t *testing.T) {
		mockStorage := new(storage_mocks.Storage)
		engine := newTestEngine(mockStorage, &fakeSMS{}, nil)
		contract := locationContract()

		mockStorage.On("GetSignature", mock.Anything, "c1", "tenant-1#tenant").Return(&models.Signature{
			ContractId: "c1",
			Status:     models.SignatureSigned,
		}, nil)

		_, err := engine.SendOTP(context.Background(), contract, User{Id: "tenant-1"})
		assert.ErrorIs(t, err, storage.ErrInvalidState)
	})

	t.Run("A failed SMS does not roll back the code", func(t *testing.T) {
		mockStorage := new(storage_mocks.Storage)
		sms := &fakeSMS{err: errors.New("gateway down")}
		engine := newTestEngine(mockStorage, sms, nil)
		contract := locationContract()

		mockStorage.On("GetSignature", mock.Anything, "c1", "tenant-1#tenant").Return(nil, storage.ErrNotFound)
		mockStorage.On("PutSignature", mock.Anything, mock.Anything).Return(nil)

		_, err := engine.SendOTP(context.Background(), contract, User{Id: "tenant-1", Phone: "+237670000002"})
		assert.NoError(t, err)
	})
}

func otpSentSlot(code string) *models.Signature {
	expires := testNow.Add(models.OtpValidity)
	sent := testNow.Add(-time.Minute)
	return &models.Signature{
		ContractId:   "c1",
		SignerKey:    "tenant-1#tenant",
		UserId:       "tenant-1",
		Role:         models.RoleTenant,
		Status:       models.SignatureOtpSent,
		OtpCode:      code,
		OtpSentAt:    &sent,
		OtpExpiresAt: &expires,
	}
}

func TestVerifyAndSign(t *testing.T) {
	t.Run("Records the signature with its proof hash", func(t *testing.T) {
		mockStorage := new(storage_mocks.Storage)
		engine := newTestEngine(mockStorage, &fakeSMS{}, nil)
		contract := locationContract()

		var marked *models.Signature
		mockStorage.On("GetSignature", mock.Anything, "c1", "tenant-1#tenant").Return(otpSentSlot("123456"), nil)
		mockStorage.On("MarkSigned", mock.Anything, mock.AnythingOfType("*models.Signature")).
			Run(func(args mock.Arguments) { marked = args.Get(1).(*models.Signature) }).
			Return(nil)
		mockStorage.On("ListSignatures", mock.Anything, "c1").Return([]models.Signature{
			{ContractId: "c1", UserId: "tenant-1", Status: models.SignatureSigned},
		}, nil)

		sig, err := engine.VerifyAndSign(context.Background(), contract, User{Id: "tenant-1"}, "123456", "203.0.113.7", "integration-test")
		require.NoError(t, err)

		require.NotNil(t, marked)
		assert.Equal(t, models.SignatureSigned, marked.Status)
		assert.True(t, marked.OtpVerified)
		assert.Equal(t, "203.0.113.7", marked.IpAddress)
		assert.Equal(t, "integration-test", marked.UserAgent)
		assert.Len(t, marked.Hash, 64, "sha256 hex digest")
		require.NotNil(t, marked.SignedAt)
		assert.Equal(t, testNow, *marked.SignedAt)

		assert.Empty(t, sig.OtpCode)
		mockStorage.AssertExpectations(t)
	})

	t.Run("The last signature enqueues finalization", func(t *testing.T) {
		mockStorage := new(storage_mocks.Storage)
		mockScheduler := new(scheduler_mocks.Scheduler)
		engine := newTestEngine(mockStorage, &fakeSMS{}, mockScheduler)
		contract := locationContract()

		mockStorage.On("GetSignature", mock.Anything, "c1", "tenant-1#tenant").Return(otpSentSlot("123456"), nil)
		mockStorage.On("MarkSigned", mock.Anything, mock.Anything).Return(nil)
		mockStorage.On("ListSignatures", mock.Anything, "c1").Return([]models.Signature{
			{ContractId: "c1", UserId: "landlord-1", Status: models.SignatureSigned},
			{ContractId: "c1", UserId: "tenant-1", Status: models.SignatureSigned},
		}, nil)
		mockScheduler.On("ScheduleFinalization", mock.Anything, "c1").Return(nil)

		_, err := engine.VerifyAndSign(context.Background(), contract, User{Id: "tenant-1"}, "123456", "", "")
		require.NoError(t, err)

		mockScheduler.AssertExpectations(t)
	})

	t.Run("A failed enqueue surfaces as an error", func(t *testing.T) {
		mockStorage := new(storage_mocks.Storage)
		mockScheduler := new(scheduler_mocks.Scheduler)
		engine := newTestEngine(mockStorage, &fakeSMS{}, mockScheduler)
		contract := locationContract()

		mockStorage.On("GetSignature", mock.Anything, "c1", "tenant-1#tenant").Return(otpSentSlot("123456"), nil)
		mockStorage.On("MarkSigned", mock.Anything, mock.Anything).Return(nil)
		mockStorage.On("ListSignatures", mock.Anything, "c1").Return([]models.Signature{
			{ContractId: "c1", UserId: "landlord-1", Status: models.SignatureSigned},
			{ContractId: "c1", UserId: "tenant-1", Status: models.SignatureSigned},
		}, nil)
		mockScheduler.On("ScheduleFinalization", mock.Anything, "c1").Return(errors.New("queue unavailable"))

		_, err := engine.VerifyAndSign(context.Background(), contract, User{Id: "tenant-1"}, "123456", "", "")
		assert.Error(t, err)
	})

	t.Run("Wrong code", func(t *testing.T) {
		mockStorage := new(storage_mocks.Storage)
		engine := newTestEngine(mockStorage, &fakeSMS{}, nil)

		mockStorage.On("GetSignature", mock.Anything, "c1", "tenant-1#tenant").Return(otpSentSlot("123456"), nil)

		_, err := engine.VerifyAndSign(context.Background(), locationContract(), User{Id: "tenant-1"}, "654321", "", "")
		assert.ErrorIs(t, err, ErrInvalidOtp)
	})

	t.Run("Expired code", func(t *testing.T) {
		mockStorage := new(storage_mocks.Storage)
		engine := newTestEngine(mockStorage, &fakeSMS{}, nil)

		slot := otpSentSlot("123456")
		expired := testNow.Add(-time.Second)
		slot.OtpExpiresAt = &expired
		mockStorage.On("GetSignature", mock.Anything, "c1", "tenant-1#tenant").Return(slot, nil)

		_, err := engine.VerifyAndSign(context.Background(), locationContract(), User{Id: "tenant-1"}, "123456", "", "")
		assert.ErrorIs(t, err, ErrOtpExpired)
	})

	t.Run("No code issued", func(t *testing.T) {
		mockStorage := new(storage_mocks.Storage)
		engine := newTestEngine(mockStorage, &fakeSMS{}, nil)

		mockStorage.On("GetSignature", mock.Anything, "c1", "tenant-1#tenant").Return(&models.Signature{
			ContractId: "c1",
			Status:     models.SignaturePending,
		}, nil)

		_, err := engine.VerifyAndSign(context.Background(), locationContract(), User{Id: "tenant-1"}, "123456", "", "")
		assert.ErrorIs(t, err, storage.ErrInvalidState)
	})

	t.Run("Non-party", func(t *testing.T) {
		engine := newTestEngine(new(storage_mocks.Storage), &fakeSMS{}, nil)

		_, err := engine.VerifyAndSign(context.Background(), locationContract(), User{Id: "stranger"}, "123456", "", "")
		assert.ErrorIs(t, err, ErrNotAParty)
	})

	t.Run("A retracted contract no longer accepts a live code", func(t *testing.T) {
		mockStorage := new(storage_mocks.Storage)
		engine := newTestEngine(mockStorage, &fakeSMS{}, nil)

		contract := locationContract()
		contract.Status = models.ContractRetracted

		_, err := engine.VerifyAndSign(context.Background(), contract, User{Id: "tenant-1"}, "123456", "", "")
		assert.ErrorIs(t, err, storage.ErrInvalidState)
		mockStorage.AssertNotCalled(t, "MarkSigned", mock.Anything, mock.Anything)
	})

	t.Run("A draft cannot be signed", func(t *testing.T) {
		engine := newTestEngine(new(storage_mocks.Storage), &fakeSMS{}, nil)

		contract := locationContract()
		contract.Status = models.ContractDraft

		_, err := engine.VerifyAndSign(context.Background(), contract, User{Id: "tenant-1"}, "123456", "", "")
		assert.ErrorIs(t, err, storage.ErrInvalidState)
	})
}

func TestProofHash(t *testing.T) {
	e := &Engine{secret: "test-secret"}

	h1 := e.proofHash("c1", "u1", testNow, models.RoleTenant)
	h2 := e.proofHash("c1", "u1", testNow, models.RoleTenant)
	assert.Equal(t, h1, h2, "deterministic for identical inputs")

	assert.NotEqual(t, h1, e.proofHash("c2", "u1", testNow, models.RoleTenant))
	assert.NotEqual(t, h1, e.proofHash("c1", "u2", testNow, models.RoleTenant))
	assert.NotEqual(t, h1, e.proofHash("c1", "u1", testNow.Add(time.Second), models.RoleTenant))
	assert.NotEqual(t, h1, e.proofHash("c1", "u1", testNow, models.RoleLandlord))

	other := &Engine{secret: "other-secret"}
	assert.NotEqual(t, h1, other.proofHash("c1", "u1", testNow, models.RoleTenant))
}

func TestGenerateOtp(t *testing.T) {
	for i := 0; i < 32; i++ {
		code, err := generateOtp()
		require.NoError(t, err)
		assert.Regexp(t, `^\d{6}$`, code)
	}
}
