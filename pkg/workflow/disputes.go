package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/armand/immo-contracts/pkg/models"
	"github.com/armand/immo-contracts/pkg/storage"
	"github.com/google/uuid"
)

// DisputeService handles dispute intake. Each dispute spawns a pending
// mediation record in the same write; mediation progression is administrative
// and happens outside this service.
type DisputeService struct {
	store storage.DisputeStore

	now func() time.Time
}

// NewDisputeService creates a DisputeService.
func NewDisputeService(store storage.DisputeStore) *DisputeService {
	return &DisputeService{
		store: store,
		now:   time.Now,
	}
}

// DisputeInput carries the initiator's description of the disagreement.
type DisputeInput struct {
	Type        string
	Reason      string
	Description string
}

// Create opens a dispute against the contract's opposing party and its
// companion mediation record.
func (s *DisputeService) Create(ctx context.Context, contract *models.Contract, initiator User, in DisputeInput) (*models.Dispute, error) {
	if !contract.IsParty(initiator.Id) {
		return nil, ErrNotAParty
	}
	other, ok := contract.OtherParty(initiator.Id)
	if !ok {
		return nil, ErrAmbiguousParty
	}
	if in.Reason == "" {
		return nil, fmt.Errorf("dispute reason is required")
	}

	now := s.now()
	dispute := &models.Dispute{
		Id:          uuid.New().String(),
		ContractId:  contract.Id,
		InitiatorId: initiator.Id,
		OtherId:     other,
		Type:        in.Type,
		Reason:      in.Reason,
		Description: in.Description,
		Status:      models.DisputeOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	mediation := &models.Mediation{
		Id:        uuid.New().String(),
		DisputeId: dispute.Id,
		Status:    models.MediationPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateDispute(ctx, dispute, mediation); err != nil {
		return nil, err
	}

	return dispute, nil
}
