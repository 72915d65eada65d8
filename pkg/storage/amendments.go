package storage

import (
	"context"

	"github.com/armand/immo-contracts/pkg/models"
)

// AmendmentStore defines the interface for managing contract amendments.
type AmendmentStore interface {
	// CreateAmendment persists a pending amendment and moves the contract to
	// under_review in the same write.
	CreateAmendment(ctx context.Context, amendment *models.Amendment) error

	// GetAmendment retrieves an amendment by its ID.
	GetAmendment(ctx context.Context, amendmentID string) (*models.Amendment, error)

	// ListAmendments retrieves all amendments of a contract, newest first.
	ListAmendments(ctx context.Context, contractID string) ([]models.Amendment, error)

	// UpdateAmendmentStatus records the counter-party's response on a pending
	// amendment. Returns ErrInvalidState when the amendment is not pending.
	UpdateAmendmentStatus(ctx context.Context, amendmentID string, status models.AmendmentStatus, respondedBy, note string) error
}
