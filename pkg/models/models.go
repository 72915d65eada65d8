package models

import (
	"fmt"
	"time"
)

// ContractType identifies the kind of agreement a contract represents.
type ContractType string

const (
	ContractLocation     ContractType = "location"
	ContractSaleLand     ContractType = "sale_land"
	ContractSaleProperty ContractType = "sale_property"
)

// ContractStatus defines the possible states of a contract.
type ContractStatus string

const (
	ContractDraft       ContractStatus = "draft"
	ContractSent        ContractStatus = "sent"
	ContractUnderReview ContractStatus = "under_review"
	ContractAmended     ContractStatus = "amended"
	ContractSigned      ContractStatus = "signed"
	ContractCancelled   ContractStatus = "cancelled"
	ContractRetracted   ContractStatus = "retracted"
)

// PartyRole identifies which side of the contract a user signs for.
type PartyRole string

const (
	RoleLandlord PartyRole = "landlord"
	RoleTenant   PartyRole = "tenant"
	RoleSeller   PartyRole = "seller"
	RoleBuyer    PartyRole = "buyer"
)

// SignatureStatus defines the possible states of a single signature.
type SignatureStatus string

const (
	SignaturePending SignatureStatus = "pending"
	SignatureOtpSent SignatureStatus = "otp_sent"
	SignatureSigned  SignatureStatus = "signed"
	SignatureExpired SignatureStatus = "expired"
)

// TransactionStatus defines the possible states of a commission transaction.
type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionDue       TransactionStatus = "due"
	TransactionPaid      TransactionStatus = "paid"
	TransactionOverdue   TransactionStatus = "overdue"
	TransactionCancelled TransactionStatus = "cancelled"
)

// AmendmentStatus defines the possible states of a proposed amendment.
type AmendmentStatus string

const (
	AmendmentPending     AmendmentStatus = "pending"
	AmendmentAccepted    AmendmentStatus = "accepted"
	AmendmentRejected    AmendmentStatus = "rejected"
	AmendmentNegotiating AmendmentStatus = "negotiating"
)

// DisputeStatus defines the possible states of a dispute.
type DisputeStatus string

const (
	DisputeOpen        DisputeStatus = "open"
	DisputeInMediation DisputeStatus = "in_mediation"
	DisputeResolved    DisputeStatus = "resolved"
	DisputeEscalated   DisputeStatus = "escalated"
	DisputeClosed      DisputeStatus = "closed"
)

// MediationStatus defines the possible states of a mediation record.
type MediationStatus string

const (
	MediationPending    MediationStatus = "pending"
	MediationAssigned   MediationStatus = "assigned"
	MediationInProgress MediationStatus = "in_progress"
	MediationResolved   MediationStatus = "resolved"
	MediationFailed     MediationStatus = "failed"
)

const (
	// RequiredSignatures is the number of signed signatures that makes a
	// contract fully signed. Every current contract type needs exactly two.
	RequiredSignatures = 2

	// RetractionWindow is how long after full signing any party may
	// unilaterally retract the contract.
	RetractionWindow = 48 * time.Hour

	// OtpValidity is how long an issued OTP code remains usable.
	OtpValidity = 10 * time.Minute

	// CommissionDueDelay is how long a party has to pay a commission
	// transaction before it becomes due.
	CommissionDueDelay = 7 * 24 * time.Hour

	// OverdueDelay is how long past due_date a due transaction becomes overdue.
	OverdueDelay = 7 * 24 * time.Hour
)

// Contract represents the internal domain model for a contract.
// It includes dynamodbav tags for marshalling.
type Contract struct {
	Id                 string         `dynamodbav:"id"`
	PropertyId         string         `dynamodbav:"property_id"`
	LandlordId         string         `dynamodbav:"landlord_id"`
	TenantId           string         `dynamodbav:"tenant_id,omitempty"`
	BuyerId            string         `dynamodbav:"buyer_id,omitempty"`
	Type               ContractType   `dynamodbav:"type"`
	Status             ContractStatus `dynamodbav:"status"`
	TemplateData       map[string]any `dynamodbav:"template_data"`
	Version            int64          `dynamodbav:"version"`
	PdfPath            string         `dynamodbav:"pdf_path,omitempty"`
	SignedPdfPath      string         `dynamodbav:"signed_pdf_path,omitempty"`
	SentAt             *time.Time     `dynamodbav:"sent_at,omitempty"`
	SignedAt           *time.Time     `dynamodbav:"signed_at,omitempty"`
	RetractionDeadline *time.Time     `dynamodbav:"retraction_deadline,omitempty"`
	RetractionUsed     bool           `dynamodbav:"retraction_used"`
	CreatedAt          time.Time      `dynamodbav:"created_at"`
	UpdatedAt          time.Time      `dynamodbav:"updated_at"`
}

// ContractVersion is an immutable snapshot of a contract's content at a past version.
type ContractVersion struct {
	ContractId    string         `dynamodbav:"contract_id"`
	VersionNumber int64          `dynamodbav:"version_number"`
	TemplateData  map[string]any `dynamodbav:"template_data"`
	PdfPath       string         `dynamodbav:"pdf_path,omitempty"`
	CreatedAt     time.Time      `dynamodbav:"created_at"`
}

// Amendment is a proposed modification to an existing contract's terms.
type Amendment struct {
	Id           string          `dynamodbav:"id"`
	ContractId   string          `dynamodbav:"contract_id"`
	Changes      map[string]any  `dynamodbav:"changes"`
	Status       AmendmentStatus `dynamodbav:"status"`
	ProposedBy   string          `dynamodbav:"proposed_by"`
	RespondedBy  string          `dynamodbav:"responded_by,omitempty"`
	ResponseNote string          `dynamodbav:"response_note,omitempty"`
	CreatedAt    time.Time       `dynamodbav:"created_at"`
	UpdatedAt    time.Time       `dynamodbav:"updated_at"`
}

// Signature is one signing slot on a contract, keyed by (contract, signer, role).
type Signature struct {
	ContractId   string          `dynamodbav:"contract_id"`
	SignerKey    string          `dynamodbav:"signer_key"` // user_id#role, table sort key
	UserId       string          `dynamodbav:"user_id"`
	Role         PartyRole       `dynamodbav:"role"`
	Status       SignatureStatus `dynamodbav:"status"`
	OtpCode      string          `dynamodbav:"otp_code,omitempty"`
	OtpSentAt    *time.Time      `dynamodbav:"otp_sent_at,omitempty"`
	OtpExpiresAt *time.Time      `dynamodbav:"otp_expires_at,omitempty"`
	OtpVerified  bool            `dynamodbav:"otp_verified"`
	SignedAt     *time.Time      `dynamodbav:"signed_at,omitempty"`
	IpAddress    string          `dynamodbav:"ip_address,omitempty"`
	UserAgent    string          `dynamodbav:"user_agent,omitempty"`
	Hash         string          `dynamodbav:"hash,omitempty"`
	CreatedAt    time.Time       `dynamodbav:"created_at"`
	UpdatedAt    time.Time       `dynamodbav:"updated_at"`
}

// SignerKey builds the signatures table sort key for a (user, role) pair.
func SignerKey(userID string, role PartyRole) string {
	return userID + "#" + string(role)
}

// OtpExpired reports whether the signature's OTP window has lapsed at the given
// instant. Expiry is lazy: the row keeps status otp_sent, callers must check here.
func (s *Signature) OtpExpired(now time.Time) bool {
	return s.OtpExpiresAt != nil && now.After(*s.OtpExpiresAt)
}

// Transaction is a commission obligation owed by one contract party to the platform.
type Transaction struct {
	Id         string            `dynamodbav:"id"`
	ContractId string            `dynamodbav:"contract_id"`
	UserId     string            `dynamodbav:"user_id"`
	Type       ContractType      `dynamodbav:"type"`
	PartyType  PartyRole         `dynamodbav:"party_type"`
	Amount     int64             `dynamodbav:"amount"`
	Status     TransactionStatus `dynamodbav:"status"`
	DueDate    time.Time         `dynamodbav:"due_date"`
	PaidAt     *time.Time        `dynamodbav:"paid_at,omitempty"`
	CreatedAt  time.Time         `dynamodbav:"created_at"`
	UpdatedAt  time.Time         `dynamodbav:"updated_at"`
}

// Dispute records a disagreement raised by one contract party against the other.
type Dispute struct {
	Id          string        `dynamodbav:"id"`
	ContractId  string        `dynamodbav:"contract_id"`
	InitiatorId string        `dynamodbav:"initiator_id"`
	OtherId     string        `dynamodbav:"other_id"`
	Type        string        `dynamodbav:"type"`
	Reason      string        `dynamodbav:"reason"`
	Description string        `dynamodbav:"description"`
	Status      DisputeStatus `dynamodbav:"status"`
	CreatedAt   time.Time     `dynamodbav:"created_at"`
	UpdatedAt   time.Time     `dynamodbav:"updated_at"`
}

// Mediation tracks the mediation process spawned for a dispute. Progression is
// administrative; this service only creates the initial pending record.
type Mediation struct {
	Id         string          `dynamodbav:"id"`
	DisputeId  string          `dynamodbav:"dispute_id"`
	MediatorId string          `dynamodbav:"mediator_id,omitempty"`
	Status     MediationStatus `dynamodbav:"status"`
	CreatedAt  time.Time       `dynamodbav:"created_at"`
	UpdatedAt  time.Time       `dynamodbav:"updated_at"`
}

// Parties returns the contract's registered parties with their roles.
// The landlord reference doubles as the seller on sale contracts.
func (c *Contract) Parties() map[PartyRole]string {
	parties := make(map[PartyRole]string, 2)
	if c.LandlordId != "" {
		if c.Type == ContractLocation {
			parties[RoleLandlord] = c.LandlordId
		} else {
			parties[RoleSeller] = c.LandlordId
		}
	}
	if c.TenantId != "" {
		parties[RoleTenant] = c.TenantId
	}
	if c.BuyerId != "" {
		parties[RoleBuyer] = c.BuyerId
	}
	return parties
}

// RoleOf returns the role the given user holds on this contract, or false
// when the user is not a registered party.
func (c *Contract) RoleOf(userID string) (PartyRole, bool) {
	for role, id := range c.Parties() {
		if id == userID {
			return role, true
		}
	}
	return "", false
}

// IsParty reports whether the user is one of the contract's registered parties.
func (c *Contract) IsParty(userID string) bool {
	_, ok := c.RoleOf(userID)
	return ok
}

// OtherParty resolves the opposing party of the given user by elimination.
// The boolean is false when no opposing party exists, e.g. a contract with
// neither tenant nor buyer set.
func (c *Contract) OtherParty(userID string) (string, bool) {
	if !c.IsParty(userID) {
		return "", false
	}
	for _, id := range c.Parties() {
		if id != userID {
			return id, true
		}
	}
	return "", false
}

// CanRetract reports whether the contract is still inside its retraction window.
func (c *Contract) CanRetract(now time.Time) bool {
	return c.Status == ContractSigned &&
		!c.RetractionUsed &&
		c.RetractionDeadline != nil &&
		now.Before(*c.RetractionDeadline)
}

// IsFullySigned reports whether the given signatures satisfy the contract's
// required signature count. Only status=signed rows count; pending, otp_sent
// and expired slots are ignored.
func (c *Contract) IsFullySigned(signatures []Signature) bool {
	signed := 0
	for _, sig := range signatures {
		if sig.ContractId == c.Id && sig.Status == SignatureSigned {
			signed++
		}
	}
	return signed >= RequiredSignatures
}

// Commission is one party's commission obligation computed at finalization.
type Commission struct {
	UserId    string
	PartyType PartyRole
	Amount    int64
}

// CommissionsFor computes the commission owed by each party of the contract.
// Rates: location 25% of one month's rent per party; sale_land 0.5% of the
// sale price per party; sale_property 0.75% of the sale price per party.
// Zero-amount commissions are dropped.
func (c *Contract) CommissionsFor(monthlyRent, salePrice int64) ([]Commission, error) {
	var out []Commission
	add := func(role PartyRole, userID string, amount int64) {
		if userID != "" && amount > 0 {
			out = append(out, Commission{UserId: userID, PartyType: role, Amount: amount})
		}
	}
	switch c.Type {
	case ContractLocation:
		amount := monthlyRent * 25 / 100
		add(RoleLandlord, c.LandlordId, amount)
		add(RoleTenant, c.TenantId, amount)
	case ContractSaleLand:
		amount := salePrice * 5 / 1000
		add(RoleSeller, c.LandlordId, amount)
		add(RoleBuyer, c.BuyerId, amount)
	case ContractSaleProperty:
		amount := salePrice * 75 / 10000
		add(RoleSeller, c.LandlordId, amount)
		add(RoleBuyer, c.BuyerId, amount)
	default:
		return nil, fmt.Errorf("unknown contract type %q", c.Type)
	}
	return out, nil
}
