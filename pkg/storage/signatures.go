package storage

import (
	"context"

	"github.com/armand/immo-contracts/pkg/models"
)

// SignatureStore defines the interface for managing signature slots.
type SignatureStore interface {
	// GetSignature retrieves the signature slot for a signer key on a contract.
	GetSignature(ctx context.Context, contractID, signerKey string) (*models.Signature, error)

	// PutSignature upserts a signature slot. Used for OTP issuance, which may
	// overwrite a previous unverified code.
	PutSignature(ctx context.Context, sig *models.Signature) error

	// MarkSigned records a successful verification: status, otp_verified,
	// signed_at, ip, user agent and proof hash. The write is guarded on the
	// slot still being in otp_sent; any other state returns ErrInvalidState.
	MarkSigned(ctx context.Context, sig *models.Signature) error

	// ListSignatures retrieves all signature slots of a contract.
	ListSignatures(ctx context.Context, contractID string) ([]models.Signature, error)
}
