package storage

import (
	"context"
	"time"

	"github.com/armand/immo-contracts/pkg/models"
)

// FinalizationStore defines the privileged interface for finalizing a fully
// signed contract. The operation commits the signed status, the retraction
// deadline and the commission transactions atomically across tables, guarded
// so it runs at most once per contract. It should only be exposed to the
// component responsible for finalization.
type FinalizationStore interface {
	// FinalizeContract CASes the contract from a not-yet-signed status to
	// signed, stamps signed_at and retraction_deadline, records the signed PDF
	// path and creates one pending transaction per commission. A contract that
	// is already signed returns ErrAlreadyFinalized; callers treat that as a
	// no-op.
	FinalizeContract(ctx context.Context, contract *models.Contract, signedPdfPath string, commissions []models.Commission, now time.Time) error
}

// SweepStore defines the privileged interface for the periodic transaction
// lifecycle sweep.
type SweepStore interface {
	// SweepTransactions advances pending transactions past their due date to
	// due, and due transactions past the overdue delay to overdue. The sweep
	// only ever moves statuses forward and is safe to run repeatedly. It
	// returns the number of transactions it advanced.
	SweepTransactions(ctx context.Context, now time.Time) (int, error)
}
