package storage

import (
	"context"

	"github.com/armand/immo-contracts/pkg/models"
)

// DisputeStore defines the interface for dispute and mediation records.
type DisputeStore interface {
	// CreateDispute persists a new dispute together with its automatically
	// spawned mediation record, atomically.
	CreateDispute(ctx context.Context, dispute *models.Dispute, mediation *models.Mediation) error

	// ListDisputes retrieves all disputes of a contract.
	ListDisputes(ctx context.Context, contractID string) ([]models.Dispute, error)

	// ListMediations retrieves the mediation records of a dispute.
	ListMediations(ctx context.Context, disputeID string) ([]models.Mediation, error)
}
