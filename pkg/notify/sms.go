// Package notify dispatches SMS notifications to contract parties. Delivery
// is best-effort: the signing workflow never rolls back on a failed send.
package notify

import (
	"context"
	"log/slog"
)

// SMSDispatcher sends a text message to a phone number.
type SMSDispatcher interface {
	Send(ctx context.Context, phoneNumber, message string) error
}

// LogDispatcher logs outbound messages instead of sending them. Used in
// development and as the default until a gateway is wired in.
type LogDispatcher struct{}

// Make sure we conform to the interface
var _ SMSDispatcher = (*LogDispatcher)(nil)

// Send logs the message.
func (LogDispatcher) Send(ctx context.Context, phoneNumber, message string) error {
	slog.InfoContext(ctx, "sms dispatched", "to", phoneNumber, "message", message)
	return nil
}
