package storage

import (
	"context"
	"time"

	"github.com/armand/immo-contracts/pkg/models"
)

// ContractReader defines the interface for reading contract data.
type ContractReader interface {
	// GetContract retrieves a contract by its ID.
	GetContract(ctx context.Context, contractID string) (*models.Contract, error)

	// ListContractsByUserID retrieves all contracts where the user is a party.
	ListContractsByUserID(ctx context.Context, userID string) ([]models.Contract, error)

	// ListVersions retrieves the immutable version snapshots of a contract,
	// oldest first.
	ListVersions(ctx context.Context, contractID string) ([]models.ContractVersion, error)
}

// ContractManager defines the interface for creating and advancing contracts.
type ContractManager interface {
	// CreateContract persists a freshly built draft contract. The PDF must
	// already be rendered and stored; creation fails if the ID exists.
	CreateContract(ctx context.Context, contract *models.Contract) error

	// MarkSent transitions a draft contract to sent and stamps sent_at.
	MarkSent(ctx context.Context, contractID string, now time.Time) error

	// CommitVersion atomically snapshots the contract's previous content as an
	// immutable version row and applies the updated content with a bumped
	// version number. The write is guarded on the contract still being at the
	// snapshot's version; a lost race returns ErrVersionConflict.
	CommitVersion(ctx context.Context, snapshot *models.ContractVersion, updated *models.Contract) error

	// SetContractStatus transitions the contract between the two given
	// statuses. Returns ErrInvalidState when the contract is not at `from`.
	SetContractStatus(ctx context.Context, contractID string, from, to models.ContractStatus) error

	// RetractContract transitions a signed contract to retracted and cancels
	// its commission transactions. Returns ErrInvalidState when the contract
	// is outside its retraction window.
	RetractContract(ctx context.Context, contractID string, now time.Time) error
}

// ContractStore combines the reader and manager interfaces.
type ContractStore interface {
	ContractReader
	ContractManager
}
