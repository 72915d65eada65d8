package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/armand/immo-contracts/pkg/models"
	storage_mocks "github.com/armand/immo-contracts/pkg/storage/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateDispute(t *testing.T) {
	input := DisputeInput{Type: "payment", Reason: "deposit not returned", Description: "two months after moving out"}

	t.Run("Opens a dispute with its mediation record", func(t *testing.T) {
		mockStorage := new(storage_mocks.Storage)
		service := NewDisputeService(mockStorage)
		service.now = func() time.Time { return testNow }

		var dispute *models.Dispute
		var mediation *models.Mediation
		mockStorage.On("CreateDispute", mock.Anything, mock.AnythingOfType("*models.Dispute"), mock.AnythingOfType("*models.Mediation")).
			Run(func(args mock.Arguments) {
				dispute = args.Get(1).(*models.Dispute)
				mediation = args.Get(2).(*models.Mediation)
			}).
			Return(nil)

		created, err := service.Create(context.Background(), locationContract(), User{Id: "tenant-1"}, input)
		require.NoError(t, err)

		require.NotNil(t, dispute)
		assert.Equal(t, models.DisputeOpen, dispute.Status)
		assert.Equal(t, "tenant-1", dispute.InitiatorId)
		assert.Equal(t, "landlord-1", dispute.OtherId, "the opposing party is resolved by elimination")

		require.NotNil(t, mediation)
		assert.Equal(t, models.MediationPending, mediation.Status)
		assert.Equal(t, dispute.Id, mediation.DisputeId)

		assert.Equal(t, dispute.Id, created.Id)
		mockStorage.AssertExpectations(t)
	})

	t.Run("Non-party cannot open a dispute", func(t *testing.T) {
		service := NewDisputeService(new(storage_mocks.Storage))

		_, err := service.Create(context.Background(), locationContract(), User{Id: "stranger"}, input)
		assert.ErrorIs(t, err, ErrNotAParty)
	})

	t.Run("A single-party contract cannot resolve the opposing side", func(t *testing.T) {
		service := NewDisputeService(new(storage_mocks.Storage))

		solo := locationContract()
		solo.TenantId = ""
		_, err := service.Create(context.Background(), solo, User{Id: "landlord-1"}, input)
		assert.ErrorIs(t, err, ErrAmbiguousParty)
	})

	t.Run("A reason is required", func(t *testing.T) {
		service := NewDisputeService(new(storage_mocks.Storage))

		_, err := service.Create(context.Background(), locationContract(), User{Id: "tenant-1"}, DisputeInput{Type: "payment"})
		assert.Error(t, err)
	})
}
