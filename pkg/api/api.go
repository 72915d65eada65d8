// Package api defines the request and response models of the HTTP API.
package api

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Error is the JSON envelope returned on every non-2xx response.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Party identifies one contract party.
type Party struct {
	UserId   string `json:"user_id"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Address  string `json:"address,omitempty"`
}

// Property identifies the property a contract covers.
type Property struct {
	Id      string `json:"id"`
	Title   string `json:"title"`
	Address string `json:"address"`
	City    string `json:"city,omitempty"`
}

// Terms carries the caller-supplied contract terms. Omitted fields are
// defaulted server-side.
type Terms struct {
	MonthlyRent    int64      `json:"monthly_rent,omitempty"`
	Deposit        int64      `json:"deposit,omitempty"`
	SalePrice      int64      `json:"sale_price,omitempty"`
	PaymentDay     int        `json:"payment_day,omitempty"`
	DurationMonths int        `json:"duration_months,omitempty"`
	StartDate      *time.Time `json:"start_date,omitempty"`
	TacitRenewal   *bool      `json:"tacit_renewal,omitempty"`
	NoticeMonths   int        `json:"notice_months,omitempty"`
}

// NewContract is the request body for creating a contract.
type NewContract struct {
	Type     string   `json:"type"`
	Property Property `json:"property"`
	Landlord Party    `json:"landlord"`
	Tenant   *Party   `json:"tenant,omitempty"`
	Buyer    *Party   `json:"buyer,omitempty"`
	Terms    Terms    `json:"terms"`
}

// Contract is the API representation of a contract.
type Contract struct {
	Id                 openapi_types.UUID `json:"id"`
	PropertyId         string             `json:"property_id"`
	LandlordId         string             `json:"landlord_id"`
	TenantId           string             `json:"tenant_id,omitempty"`
	BuyerId            string             `json:"buyer_id,omitempty"`
	Type               string             `json:"type"`
	Status             string             `json:"status"`
	TemplateData       map[string]any     `json:"template_data"`
	Version            int64              `json:"version"`
	PdfPath            string             `json:"pdf_path,omitempty"`
	SignedPdfPath      string             `json:"signed_pdf_path,omitempty"`
	SentAt             *time.Time         `json:"sent_at,omitempty"`
	SignedAt           *time.Time         `json:"signed_at,omitempty"`
	RetractionDeadline *time.Time         `json:"retraction_deadline,omitempty"`
	RetractionUsed     bool               `json:"retraction_used"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// ContractVersion is one immutable snapshot of a contract's past content.
type ContractVersion struct {
	ContractId    openapi_types.UUID `json:"contract_id"`
	VersionNumber int64              `json:"version_number"`
	TemplateData  map[string]any     `json:"template_data"`
	PdfPath       string             `json:"pdf_path,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

// NewAmendment is the request body for proposing an amendment.
type NewAmendment struct {
	// Changes maps dotted template paths to their new values,
	// e.g. {"terms.monthly_rent": 550000}.
	Changes map[string]any `json:"changes"`
}

// AmendmentResponse is the request body for accepting or rejecting an amendment.
type AmendmentResponse struct {
	Accept bool   `json:"accept"`
	Note   string `json:"note,omitempty"`
}

// Amendment is the API representation of a proposed amendment.
type Amendment struct {
	Id           openapi_types.UUID `json:"id"`
	ContractId   openapi_types.UUID `json:"contract_id"`
	Changes      map[string]any     `json:"changes"`
	Status       string             `json:"status"`
	ProposedBy   string             `json:"proposed_by"`
	RespondedBy  string             `json:"responded_by,omitempty"`
	ResponseNote string             `json:"response_note,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// SignRequest is the request body for verifying an OTP and signing.
type SignRequest struct {
	OtpCode string `json:"otp_code"`
}

// Signature is the API representation of one signing slot. OTP material never
// appears here.
type Signature struct {
	ContractId  openapi_types.UUID `json:"contract_id"`
	UserId      string             `json:"user_id"`
	Role        string             `json:"role"`
	Status      string             `json:"status"`
	OtpVerified bool               `json:"otp_verified"`
	SignedAt    *time.Time         `json:"signed_at,omitempty"`
	Hash        string             `json:"hash,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

// Transaction is the API representation of a commission transaction.
type Transaction struct {
	Id         openapi_types.UUID `json:"id"`
	ContractId openapi_types.UUID `json:"contract_id"`
	UserId     string             `json:"user_id"`
	Type       string             `json:"type"`
	PartyType  string             `json:"party_type"`
	Amount     int64              `json:"amount"`
	Status     string             `json:"status"`
	DueDate    time.Time          `json:"due_date"`
	PaidAt     *time.Time         `json:"paid_at,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// PayRequest is the request body for paying a commission transaction.
type PayRequest struct {
	Provider    string `json:"provider"`
	PhoneNumber string `json:"phone_number"`
}

// PaymentResult is the response to a payment initiation.
type PaymentResult struct {
	Status      string      `json:"status"`
	PaymentId   string      `json:"payment_id,omitempty"`
	Transaction Transaction `json:"transaction"`
}

// NewDispute is the request body for opening a dispute.
type NewDispute struct {
	Type        string `json:"type"`
	Reason      string `json:"reason"`
	Description string `json:"description,omitempty"`
}

// Dispute is the API representation of a dispute.
type Dispute struct {
	Id          openapi_types.UUID `json:"id"`
	ContractId  openapi_types.UUID `json:"contract_id"`
	InitiatorId string             `json:"initiator_id"`
	OtherId     string             `json:"other_id"`
	Type        string             `json:"type"`
	Reason      string             `json:"reason"`
	Description string             `json:"description,omitempty"`
	Status      string             `json:"status"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// Mediation is the API representation of a dispute's mediation record.
type Mediation struct {
	Id         openapi_types.UUID `json:"id"`
	DisputeId  openapi_types.UUID `json:"dispute_id"`
	MediatorId string             `json:"mediator_id,omitempty"`
	Status     string             `json:"status"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}
