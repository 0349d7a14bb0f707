// Package stub is an in-process checkout provider for development and
// tests. Sessions resolve to a fake hosted URL and completion payloads can
// be produced on demand, with the same metadata round-trip guarantees as a
// real provider.
package stub

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"

	"github.com/reelforge/reelforge/internal/checkout/domain"
)

const (
	providerName = "stub"

	eventCompleted = "checkout.completed"
)

type Adapter struct {
	mu       sync.Mutex
	entropy  *rand.Rand
	sessions map[string]domain.CreateSessionParams
}

func New() *Adapter {
	return &Adapter{
		entropy:  rand.New(rand.NewSource(time.Now().UnixNano())),
		sessions: make(map[string]domain.CreateSessionParams),
	}
}

func (a *Adapter) Provider() string { return providerName }

func (a *Adapter) CreateSession(_ context.Context, params domain.CreateSessionParams) (*domain.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := "cs_stub_" + ulid.MustNew(ulid.Timestamp(time.Now()), a.entropy).String()
	a.sessions[id] = params
	return &domain.Session{
		ID:       id,
		URL:      fmt.Sprintf("https://checkout.stub.invalid/pay/%s", id),
		Provider: providerName,
	}, nil
}

// Verify is a no-op: the stub has no shared secret.
func (a *Adapter) Verify(_ context.Context, _ []byte, _ http.Header) error {
	return nil
}

type stubEvent struct {
	ID               string                `json:"id"`
	Type             string                `json:"type"`
	SessionID        string                `json:"session_id"`
	PaymentReference string                `json:"payment_reference"`
	UserID           string                `json:"user_id"`
	BrandID          string                `json:"brand_id"`
	Items            []domain.ItemSnapshot `json:"items"`
	CreatedAt        time.Time             `json:"created_at"`
}

func (a *Adapter) ParseCompleted(_ context.Context, payload []byte) (*domain.CompletedEvent, error) {
	var event stubEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}
	if event.Type != eventCompleted {
		return nil, domain.ErrEventIgnored
	}
	if event.SessionID == "" || event.ID == "" {
		return nil, domain.ErrInvalidEvent
	}
	if len(event.Items) == 0 {
		return nil, fmt.Errorf("%w: empty items", domain.ErrInvalidMetadata)
	}

	brandID, err := snowflake.ParseString(event.BrandID)
	if err != nil {
		return nil, fmt.Errorf("%w: brand id: %v", domain.ErrInvalidMetadata, err)
	}

	occurredAt := event.CreatedAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	return &domain.CompletedEvent{
		Provider:         providerName,
		ProviderEventID:  event.ID,
		SessionID:        event.SessionID,
		PaymentReference: event.PaymentReference,
		UserID:           event.UserID,
		BrandID:          brandID,
		Items:            event.Items,
		OccurredAt:       occurredAt,
		RawPayload:       payload,
	}, nil
}

// CompletionPayload renders the webhook body the stub would deliver for a
// previously created session. Development tooling posts it back to the
// webhook endpoint to simulate a paid checkout.
func (a *Adapter) CompletionPayload(sessionID string) ([]byte, error) {
	a.mu.Lock()
	params, ok := a.sessions[sessionID]
	a.mu.Unlock()
	if !ok {
		return nil, domain.ErrInvalidEvent
	}

	a.mu.Lock()
	eventID := "evt_stub_" + ulid.MustNew(ulid.Timestamp(time.Now()), a.entropy).String()
	a.mu.Unlock()

	return json.Marshal(stubEvent{
		ID:               eventID,
		Type:             eventCompleted,
		SessionID:        sessionID,
		PaymentReference: "pi_stub_" + sessionID,
		UserID:           params.UserID,
		BrandID:          params.BrandID.String(),
		Items:            params.Items,
		CreatedAt:        time.Now().UTC(),
	})
}
