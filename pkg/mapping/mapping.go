package mapping

import (
	"time"

	"github.com/armand/immo-contracts/pkg/api"
	"github.com/armand/immo-contracts/pkg/models"
	"github.com/armand/immo-contracts/pkg/template"
	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// toUUID parses a stored ID. IDs are generated server-side, so a parse failure
// only happens on hand-written fixtures and maps to the zero UUID.
func toUUID(s string) openapi_types.UUID {
	u, err := uuid.Parse(s)
	if err != nil {
		return openapi_types.UUID{}
	}
	return u
}

// ToDomainContractInput converts an API NewContract to the template input the
// contract document is built from.
func ToDomainContractInput(nc *api.NewContract) template.Input {
	in := template.Input{
		Type:     models.ContractType(nc.Type),
		Property: template.Property(nc.Property),
		Landlord: template.Party(nc.Landlord),
		Terms: template.Terms{
			MonthlyRent:    nc.Terms.MonthlyRent,
			Deposit:        nc.Terms.Deposit,
			SalePrice:      nc.Terms.SalePrice,
			PaymentDay:     nc.Terms.PaymentDay,
			DurationMonths: nc.Terms.DurationMonths,
			StartDate:      nc.Terms.StartDate,
			TacitRenewal:   nc.Terms.TacitRenewal,
			NoticeMonths:   nc.Terms.NoticeMonths,
		},
	}
	if nc.Tenant != nil {
		t := template.Party(*nc.Tenant)
		in.Tenant = &t
	}
	if nc.Buyer != nil {
		b := template.Party(*nc.Buyer)
		in.Buyer = &b
	}
	return in
}

// ToApiContract converts a domain Contract model to an API Contract model.
func ToApiContract(c *models.Contract) *api.Contract {
	return &api.Contract{
		Id:                 toUUID(c.Id),
		PropertyId:         c.PropertyId,
		LandlordId:         c.LandlordId,
		TenantId:           c.TenantId,
		BuyerId:            c.BuyerId,
		Type:               string(c.Type),
		Status:             string(c.Status),
		TemplateData:       c.TemplateData,
		Version:            c.Version,
		PdfPath:            c.PdfPath,
		SignedPdfPath:      c.SignedPdfPath,
		SentAt:             c.SentAt,
		SignedAt:           c.SignedAt,
		RetractionDeadline: c.RetractionDeadline,
		RetractionUsed:     c.RetractionUsed,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

// ToApiContractVersion converts a domain ContractVersion to its API model.
func ToApiContractVersion(v *models.ContractVersion) *api.ContractVersion {
	return &api.ContractVersion{
		ContractId:    toUUID(v.ContractId),
		VersionNumber: v.VersionNumber,
		TemplateData:  v.TemplateData,
		PdfPath:       v.PdfPath,
		CreatedAt:     v.CreatedAt,
	}
}

// ToApiAmendment converts a domain Amendment model to an API Amendment model.
func ToApiAmendment(a *models.Amendment) *api.Amendment {
	return &api.Amendment{
		Id:           toUUID(a.Id),
		ContractId:   toUUID(a.ContractId),
		Changes:      a.Changes,
		Status:       string(a.Status),
		ProposedBy:   a.ProposedBy,
		RespondedBy:  a.RespondedBy,
		ResponseNote: a.ResponseNote,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

// ToApiSignature converts a domain Signature model to an API Signature model.
// The OTP fields never cross this boundary. Expiry is lazy: an otp_sent row
// whose code lapsed is presented as expired without being written back.
func ToApiSignature(s *models.Signature, now time.Time) *api.Signature {
	status := s.Status
	if status == models.SignatureOtpSent && s.OtpExpired(now) {
		status = models.SignatureExpired
	}
	return &api.Signature{
		ContractId:  toUUID(s.ContractId),
		UserId:      s.UserId,
		Role:        string(s.Role),
		Status:      string(status),
		OtpVerified: s.OtpVerified,
		SignedAt:    s.SignedAt,
		Hash:        s.Hash,
		CreatedAt:   s.CreatedAt,
	}
}

// ToApiTransaction converts a domain Transaction model to an API Transaction model.
func ToApiTransaction(t *models.Transaction) *api.Transaction {
	return &api.Transaction{
		Id:         toUUID(t.Id),
		ContractId: toUUID(t.ContractId),
		UserId:     t.UserId,
		Type:       string(t.Type),
		PartyType:  string(t.PartyType),
		Amount:     t.Amount,
		Status:     string(t.Status),
		DueDate:    t.DueDate,
		PaidAt:     t.PaidAt,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}

// ToApiDispute converts a domain Dispute model to an API Dispute model.
func ToApiDispute(d *models.Dispute) *api.Dispute {
	return &api.Dispute{
		Id:          toUUID(d.Id),
		ContractId:  toUUID(d.ContractId),
		InitiatorId: d.InitiatorId,
		OtherId:     d.OtherId,
		Type:        d.Type,
		Reason:      d.Reason,
		Description: d.Description,
		Status:      string(d.Status),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// ToApiMediation converts a domain Mediation model to an API Mediation model.
func ToApiMediation(m *models.Mediation) *api.Mediation {
	return &api.Mediation{
		Id:         toUUID(m.Id),
		DisputeId:  toUUID(m.DisputeId),
		MediatorId: m.MediatorId,
		Status:     string(m.Status),
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
