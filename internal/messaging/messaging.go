// Package messaging delivers reply text to a sender identifier. Delivery is
// fire-and-forget from the caller's perspective: one attempt, no retries.
package messaging

import "context"

// Sender delivers a text message to a recipient identifier (for WhatsApp,
// the "whatsapp:+<number>" form Twilio reports as the webhook From field).
type Sender interface {
	Send(ctx context.Context, to, body string) error
}
