// Package payments holds the mobile-money provider adapters used to collect
// commission payments. The Orange Money and MTN Money integrations are stubs:
// they accept and log an initiation, no real provider call is made yet.
package payments

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// InitiationStatus is the provider's answer to an initiation request.
type InitiationStatus string

const (
	InitiationAccepted InitiationStatus = "accepted"
	InitiationRejected InitiationStatus = "rejected"
)

// Initiation is the result of starting a payment with a provider.
type Initiation struct {
	Status    InitiationStatus
	PaymentId string
}

// Provider initiates a mobile-money payment.
type Provider interface {
	// Initiate starts a payment of the given amount for the user's phone
	// number, with a human-readable description for the provider's prompt.
	Initiate(ctx context.Context, phoneNumber string, amount int64, description string) (*Initiation, error)
}

// StubProvider logs initiations and accepts them unconditionally.
type StubProvider struct {
	Name string // "orange_money" or "mtn_money"
}

// Make sure we conform to the interface
var _ Provider = (*StubProvider)(nil)

// Initiate logs and accepts the payment.
func (p *StubProvider) Initiate(ctx context.Context, phoneNumber string, amount int64, description string) (*Initiation, error) {
	paymentID := uuid.New().String()
	slog.InfoContext(ctx, "payment initiation (stub)",
		"provider", p.Name,
		"phone", phoneNumber,
		"amount", amount,
		"description", description,
		"payment_id", paymentID,
	)
	return &Initiation{Status: InitiationAccepted, PaymentId: paymentID}, nil
}

// ForName returns the provider adapter for a provider name.
func ForName(name string) (Provider, error) {
	switch name {
	case "orange_money", "mtn_money":
		return &StubProvider{Name: name}, nil
	default:
		return nil, fmt.Errorf("unknown payment provider %q", name)
	}
}
