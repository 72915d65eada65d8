package workflow

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/armand/immo-contracts/pkg/models"
	"github.com/armand/immo-contracts/pkg/notify"
	"github.com/armand/immo-contracts/pkg/scheduler"
	"github.com/armand/immo-contracts/pkg/storage"
)

// User is the authenticated actor a workflow operation runs on behalf of.
type User struct {
	Id    string
	Phone string
}

// Engine drives the per-signature OTP state machine:
// pending -> otp_sent -> signed, with otp_sent treated as expired once the
// code's validity window lapses.
type Engine struct {
	store     storage.SignatureStore
	contracts storage.ContractReader
	sms       notify.SMSDispatcher
	scheduler scheduler.Scheduler
	secret    string

	// now is swapped in tests to pin the clock.
	now func() time.Time
}

// NewEngine creates a signing engine. secret feeds the signature proof hash.
func NewEngine(store storage.SignatureStore, contracts storage.ContractReader, sms notify.SMSDispatcher, sched scheduler.Scheduler, secret string) *Engine {
	return &Engine{
		store:     store,
		contracts: contracts,
		sms:       sms,
		scheduler: sched,
		secret:    secret,
		now:       time.Now,
	}
}

// CanSign reports whether the user is one of the contract's registered
// parties, and with which role.
func (e *Engine) CanSign(contract *models.Contract, userID string) (models.PartyRole, bool) {
	return contract.RoleOf(userID)
}

// SendOTP issues a fresh 6 digit code for the user's signature slot on the
// contract, creating the slot if needed, and dispatches it by SMS. The SMS is
// best-effort: a failed send is logged and does not roll back the issued code.
// The returned signature is sanitized, the code never leaves the engine.
func (e *Engine) SendOTP(ctx context.Context, contract *models.Contract, user User) (*models.Signature, error) {
	role, ok := e.CanSign(contract, user.Id)
	if !ok {
		return nil, ErrNotAParty
	}

	switch contract.Status {
	case models.ContractSent, models.ContractUnderReview, models.ContractAmended:
		// Signable statuses.
	default:
		return nil, fmt.Errorf("contract %s is not open for signing: %w", contract.Id, storage.ErrInvalidState)
	}

	now := e.now()
	signerKey := models.SignerKey(user.Id, role)

	sig, err := e.store.GetSignature(ctx, contract.Id, signerKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("failed to load signature slot: %w", err)
		}
		sig = &models.Signature{
			ContractId: contract.Id,
			SignerKey:  signerKey,
			UserId:     user.Id,
			Role:       role,
			Status:     models.SignaturePending,
			CreatedAt:  now,
		}
	}

	if sig.Status == models.SignatureSigned {
		return nil, fmt.Errorf("signature already recorded: %w", storage.ErrInvalidState)
	}

	code, err := generateOtp()
	if err != nil {
		return nil, fmt.Errorf("failed to generate OTP: %w", err)
	}

	expiresAt := now.Add(models.OtpValidity)
	sig.OtpCode = code
	sig.OtpSentAt = &now
	sig.OtpExpiresAt = &expiresAt
	sig.OtpVerified = false
	sig.Status = models.SignatureOtpSent
	sig.UpdatedAt = now

	if err := e.store.PutSignature(ctx, sig); err != nil {
		return nil, fmt.Errorf("failed to save signature slot: %w", err)
	}

	message := fmt.Sprintf("Your signing code is %s. It expires in 10 minutes.", code)
	if err := e.sms.Send(ctx, user.Phone, message); err != nil {
		slog.ErrorContext(ctx, "failed to dispatch OTP sms", "contract_id", contract.Id, "user_id", user.Id, "error", err)
	}

	sanitized := *sig
	sanitized.OtpCode = ""
	return &sanitized, nil
}

// VerifyAndSign checks the submitted code against the user's signature slot
// and, on success, records the signature with its proof hash. When the
// signature completes the contract's required count, the contract is enqueued
// for finalization; the queue consumer guarantees finalization runs once.
func (e *Engine) VerifyAndSign(ctx context.Context, contract *models.Contract, user User, submittedOtp, ipAddress, userAgent string) (*models.Signature, error) {
	role, ok := e.CanSign(contract, user.Id)
	if !ok {
		return nil, ErrNotAParty
	}

	// Same guard as SendOTP: a retracted or still-draft contract must not
	// accept signatures even when a live code is in hand.
	switch contract.Status {
	case models.ContractSent, models.ContractUnderReview, models.ContractAmended:
	default:
		return nil, fmt.Errorf("contract %s is not open for signing: %w", contract.Id, storage.ErrInvalidState)
	}

	signerKey := models.SignerKey(user.Id, role)
	sig, err := e.store.GetSignature(ctx, contract.Id, signerKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load signature slot: %w", err)
	}

	now := e.now()
	if sig.Status != models.SignatureOtpSent {
		return nil, fmt.Errorf("signature is %s: %w", sig.Status, storage.ErrInvalidState)
	}
	if sig.OtpExpired(now) {
		return nil, ErrOtpExpired
	}
	if sig.OtpCode != submittedOtp {
		return nil, ErrInvalidOtp
	}

	sig.OtpVerified = true
	sig.SignedAt = &now
	sig.IpAddress = ipAddress
	sig.UserAgent = userAgent
	sig.Hash = e.proofHash(contract.Id, user.Id, now, role)
	sig.Status = models.SignatureSigned

	if err := e.store.MarkSigned(ctx, sig); err != nil {
		return nil, fmt.Errorf("failed to record signature: %w", err)
	}

	// Re-read all signatures after the write so two signers finishing
	// concurrently both observe the final count; the finalize consumer's CAS
	// collapses the duplicate triggers.
	sigs, err := e.store.ListSignatures(ctx, contract.Id)
	if err != nil {
		return nil, fmt.Errorf("signature recorded but failed to check completion: %w", err)
	}

	if contract.IsFullySigned(sigs) {
		if err := e.scheduler.ScheduleFinalization(ctx, contract.Id); err != nil {
			slog.ErrorContext(ctx, "CRITICAL: contract fully signed but failed to enqueue finalization",
				"contract_id", contract.Id, "error", err)
			return nil, fmt.Errorf("signature recorded but failed to enqueue finalization: %w", err)
		}
	}

	sanitized := *sig
	sanitized.OtpCode = ""
	return &sanitized, nil
}

// proofHash computes the cryptographic proof digest for a recorded signature:
// SHA256(contract_id || user_id || signed_at RFC3339 || role || secret).
func (e *Engine) proofHash(contractID, userID string, signedAt time.Time, role models.PartyRole) string {
	h := sha256.New()
	h.Write([]byte(contractID))
	h.Write([]byte(userID))
	h.Write([]byte(signedAt.UTC().Format(time.RFC3339)))
	h.Write([]byte(role))
	h.Write([]byte(e.secret))
	return hex.EncodeToString(h.Sum(nil))
}

// generateOtp draws a uniformly random zero-padded 6 digit code.
func generateOtp() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
