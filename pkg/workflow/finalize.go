package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/armand/immo-contracts/pkg/blobstore"
	"github.com/armand/immo-contracts/pkg/models"
	"github.com/armand/immo-contracts/pkg/notify"
	"github.com/armand/immo-contracts/pkg/render"
	"github.com/armand/immo-contracts/pkg/storage"
	"github.com/armand/immo-contracts/pkg/template"
)

// FinalizerStore is the slice of the data layer the finalize consumer needs.
type FinalizerStore interface {
	storage.ContractReader
	storage.SignatureStore
	storage.FinalizationStore
}

// Finalizer consumes finalization messages: it verifies the contract is fully
// signed, renders the signed PDF with embedded signature proofs, and commits
// signed status, retraction deadline and commission transactions in one
// guarded write. Running it twice for the same contract is a no-op.
type Finalizer struct {
	store    FinalizerStore
	renderer render.Renderer
	files    blobstore.FileStore
	sms      notify.SMSDispatcher

	now func() time.Time
}

// NewFinalizer creates a Finalizer.
func NewFinalizer(store FinalizerStore, renderer render.Renderer, files blobstore.FileStore, sms notify.SMSDispatcher) *Finalizer {
	return &Finalizer{
		store:    store,
		renderer: renderer,
		files:    files,
		sms:      sms,
		now:      time.Now,
	}
}

// Finalize runs the finalization pipeline for one contract.
func (f *Finalizer) Finalize(ctx context.Context, contractID string) error {
	contract, err := f.store.GetContract(ctx, contractID)
	if err != nil {
		return fmt.Errorf("failed to load contract: %w", err)
	}

	// The queue delivers at-least-once; a contract already finalized by an
	// earlier delivery is done.
	if contract.Status == models.ContractSigned {
		slog.InfoContext(ctx, "contract already finalized, skipping", "contract_id", contractID)
		return nil
	}

	sigs, err := f.store.ListSignatures(ctx, contractID)
	if err != nil {
		return fmt.Errorf("failed to list signatures: %w", err)
	}
	if !contract.IsFullySigned(sigs) {
		return fmt.Errorf("contract %s: %w", contractID, ErrNotFullySigned)
	}

	pdf, err := f.renderer.Render(ctx, render.TemplateSignedContract, signedDocument(contract, sigs))
	if err != nil {
		return fmt.Errorf("failed to render signed PDF: %w", err)
	}

	signedPdfPath, err := f.files.Store(ctx, contractPdfPath(contract.Id, contract.Version, true), pdf, "application/pdf")
	if err != nil {
		return fmt.Errorf("failed to store signed PDF: %w", err)
	}

	monthlyRent := template.AmountAt(contract.TemplateData, "terms.monthly_rent")
	salePrice := template.AmountAt(contract.TemplateData, "terms.sale_price")
	commissions, err := contract.CommissionsFor(monthlyRent, salePrice)
	if err != nil {
		return fmt.Errorf("failed to compute commissions: %w", err)
	}

	now := f.now()
	if err := f.store.FinalizeContract(ctx, contract, signedPdfPath, commissions, now); err != nil {
		if errors.Is(err, storage.ErrAlreadyFinalized) {
			// Lost the race against a concurrent delivery. The other writer's
			// PDF is the canonical one, drop ours.
			if delErr := f.files.Delete(ctx, signedPdfPath); delErr != nil {
				slog.ErrorContext(ctx, "failed to delete duplicate signed PDF", "path", signedPdfPath, "error", delErr)
			}
			slog.InfoContext(ctx, "contract finalized concurrently, skipping", "contract_id", contractID)
			return nil
		}
		return fmt.Errorf("failed to finalize contract: %w", err)
	}

	for role, phone := range partyPhones(contract) {
		msg := fmt.Sprintf("Your contract is now fully signed. You may retract within %d hours.", int(models.RetractionWindow.Hours()))
		if err := f.sms.Send(ctx, phone, msg); err != nil {
			slog.ErrorContext(ctx, "failed to notify party of finalization", "contract_id", contractID, "role", role, "error", err)
		}
	}

	slog.InfoContext(ctx, "contract finalized", "contract_id", contractID, "commissions", len(commissions))
	return nil
}

// signedDocument merges the signature proofs into the contract content for the
// signed PDF rendering.
func signedDocument(contract *models.Contract, sigs []models.Signature) map[string]any {
	doc := template.ApplyChanges(contract.TemplateData, nil)

	proofs := make([]map[string]any, 0, len(sigs))
	for _, sig := range sigs {
		if sig.Status != models.SignatureSigned {
			continue
		}
		proof := map[string]any{
			"user_id": sig.UserId,
			"role":    string(sig.Role),
			"hash":    sig.Hash,
		}
		if sig.SignedAt != nil {
			proof["signed_at"] = sig.SignedAt.UTC().Format(time.RFC3339)
		}
		proofs = append(proofs, proof)
	}
	doc["signatures"] = proofs
	return doc
}
