package domain

import (
	"context"
	"net/http"
)

type Service interface {
	// CreateSession snapshots the cart and quotes it once, then opens a
	// hosted checkout session with the configured provider. No local state
	// is mutated; a provider failure is safe to retry.
	CreateSession(ctx context.Context, userID, brandID string, req SessionRequest) (*Session, error)

	// HandleWebhook verifies, deduplicates and materializes a provider
	// webhook. Redelivered events return ErrEventAlreadyProcessed and
	// unhandled event types return ErrEventIgnored; both are acknowledged
	// at the transport layer.
	HandleWebhook(ctx context.Context, provider string, payload []byte, headers http.Header) error
}
