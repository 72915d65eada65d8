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
	"github.com/google/uuid"
)

// ContractService owns contract creation, sending and the amendment flow.
type ContractService struct {
	store    storage.ApiStore
	renderer render.Renderer
	files    blobstore.FileStore
	sms      notify.SMSDispatcher

	now func() time.Time
}

// NewContractService creates a ContractService.
func NewContractService(store storage.ApiStore, renderer render.Renderer, files blobstore.FileStore, sms notify.SMSDispatcher) *ContractService {
	return &ContractService{
		store:    store,
		renderer: renderer,
		files:    files,
		sms:      sms,
		now:      time.Now,
	}
}

// Create builds the contract document, renders and stores its PDF, then
// persists the draft. Rendering happens before any database write: a render
// failure aborts creation with nothing persisted, and a failed persist
// deletes the already-uploaded PDF.
func (s *ContractService) Create(ctx context.Context, in template.Input) (*models.Contract, error) {
	data, err := template.Build(in)
	if err != nil {
		return nil, fmt.Errorf("failed to build contract document: %w", err)
	}

	pdf, err := s.renderer.Render(ctx, render.TemplateContract, data)
	if err != nil {
		return nil, fmt.Errorf("failed to render contract PDF: %w", err)
	}

	now := s.now()
	contract := &models.Contract{
		Id:           uuid.New().String(),
		PropertyId:   in.Property.Id,
		LandlordId:   in.Landlord.UserId,
		Type:         in.Type,
		Status:       models.ContractDraft,
		TemplateData: data,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.Tenant != nil {
		contract.TenantId = in.Tenant.UserId
	}
	if in.Buyer != nil {
		contract.BuyerId = in.Buyer.UserId
	}

	pdfPath, err := s.files.Store(ctx, contractPdfPath(contract.Id, contract.Version, false), pdf, "application/pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to store contract PDF: %w", err)
	}
	contract.PdfPath = pdfPath

	if err := s.store.CreateContract(ctx, contract); err != nil {
		// Compensate: the PDF was uploaded but the contract never existed.
		if delErr := s.files.Delete(ctx, pdfPath); delErr != nil {
			slog.ErrorContext(ctx, "failed to delete orphaned contract PDF", "path", pdfPath, "error", delErr)
		}
		return nil, fmt.Errorf("failed to persist contract: %w", err)
	}

	return contract, nil
}

// Send transitions a draft to sent and notifies the counter-parties by SMS.
func (s *ContractService) Send(ctx context.Context, contract *models.Contract, actor User) error {
	if contract.LandlordId != actor.Id {
		return ErrNotAParty
	}

	now := s.now()
	if err := s.store.MarkSent(ctx, contract.Id, now); err != nil {
		return err
	}

	for role, doc := range partyPhones(contract) {
		if err := s.sms.Send(ctx, doc, fmt.Sprintf("A contract is awaiting your review and signature (role: %s).", role)); err != nil {
			slog.ErrorContext(ctx, "failed to notify party", "contract_id", contract.Id, "role", role, "error", err)
		}
	}

	return nil
}

// ProposeAmendment records a pending amendment and puts the contract under
// review before any acceptance.
func (s *ContractService) ProposeAmendment(ctx context.Context, contract *models.Contract, proposer User, changes map[string]any) (*models.Amendment, error) {
	if !contract.IsParty(proposer.Id) {
		return nil, ErrNotAParty
	}
	if len(changes) == 0 {
		return nil, fmt.Errorf("amendment has no changes")
	}

	now := s.now()
	amendment := &models.Amendment{
		Id:         uuid.New().String(),
		ContractId: contract.Id,
		Changes:    changes,
		Status:     models.AmendmentPending,
		ProposedBy: proposer.Id,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.store.CreateAmendment(ctx, amendment); err != nil {
		return nil, err
	}

	return amendment, nil
}

// RespondToAmendment records the counter-party's decision on a pending
// amendment. Acceptance snapshots the current content as an immutable version,
// applies the changes, re-renders the PDF and moves the contract to amended.
// Rejection only updates the amendment; when no other amendment is still
// pending the contract reverts from under_review to sent so it does not
// linger in review with nothing to review.
func (s *ContractService) RespondToAmendment(ctx context.Context, contract *models.Contract, amendment *models.Amendment, responder User, accept bool, note string) error {
	if !contract.IsParty(responder.Id) {
		return ErrNotAParty
	}
	if responder.Id == amendment.ProposedBy {
		return fmt.Errorf("proposer cannot respond to their own amendment: %w", storage.ErrInvalidState)
	}
	if amendment.Status != models.AmendmentPending && amendment.Status != models.AmendmentNegotiating {
		return fmt.Errorf("amendment is %s: %w", amendment.Status, storage.ErrInvalidState)
	}

	if !accept {
		if err := s.store.UpdateAmendmentStatus(ctx, amendment.Id, models.AmendmentRejected, responder.Id, note); err != nil {
			return err
		}
		return s.maybeLeaveReview(ctx, contract.Id)
	}

	merged := template.ApplyChanges(contract.TemplateData, amendment.Changes)

	pdf, err := s.renderer.Render(ctx, render.TemplateContract, merged)
	if err != nil {
		return fmt.Errorf("failed to render amended contract PDF: %w", err)
	}

	newVersion := contract.Version + 1
	pdfPath, err := s.files.Store(ctx, contractPdfPath(contract.Id, newVersion, false), pdf, "application/pdf")
	if err != nil {
		return fmt.Errorf("failed to store amended contract PDF: %w", err)
	}

	now := s.now()
	snapshot := &models.ContractVersion{
		ContractId:    contract.Id,
		VersionNumber: contract.Version,
		TemplateData:  contract.TemplateData,
		PdfPath:       contract.PdfPath,
		CreatedAt:     now,
	}
	updated := *contract
	updated.TemplateData = merged
	updated.Version = newVersion
	updated.PdfPath = pdfPath
	updated.Status = models.ContractAmended
	updated.UpdatedAt = now

	if err := s.store.CommitVersion(ctx, snapshot, &updated); err != nil {
		if delErr := s.files.Delete(ctx, pdfPath); delErr != nil {
			slog.ErrorContext(ctx, "failed to delete orphaned amended PDF", "path", pdfPath, "error", delErr)
		}
		return err
	}

	if err := s.store.UpdateAmendmentStatus(ctx, amendment.Id, models.AmendmentAccepted, responder.Id, note); err != nil {
		return fmt.Errorf("version committed but failed to update amendment: %w", err)
	}

	return nil
}

// maybeLeaveReview reverts an under_review contract to sent once no pending
// amendments remain. A contract some other proposal still holds under review
// is left alone.
func (s *ContractService) maybeLeaveReview(ctx context.Context, contractID string) error {
	amendments, err := s.store.ListAmendments(ctx, contractID)
	if err != nil {
		return fmt.Errorf("failed to list amendments: %w", err)
	}
	for _, a := range amendments {
		if a.Status == models.AmendmentPending || a.Status == models.AmendmentNegotiating {
			return nil
		}
	}

	err = s.store.SetContractStatus(ctx, contractID, models.ContractUnderReview, models.ContractSent)
	if err != nil && !errors.Is(err, storage.ErrInvalidState) {
		return err
	}
	return nil
}

// contractPdfPath builds the object path for a contract version's PDF.
func contractPdfPath(contractID string, version int64, signed bool) string {
	if signed {
		return fmt.Sprintf("contracts/%s/v%d-signed.pdf", contractID, version)
	}
	return fmt.Sprintf("contracts/%s/v%d.pdf", contractID, version)
}

// partyPhones extracts each party's phone number from the contract document.
func partyPhones(contract *models.Contract) map[string]string {
	phones := make(map[string]string)
	parties, ok := contract.TemplateData["parties"].(map[string]any)
	if !ok {
		return phones
	}
	for role, v := range parties {
		doc, ok := v.(map[string]any)
		if !ok {
			continue
		}
		if phone, ok := doc["phone"].(string); ok && phone != "" {
			phones[role] = phone
		}
	}
	return phones
}
