// Package stripecheckout integrates Stripe Checkout hosted sessions.
//
// Sessions are created against the Stripe REST API with the cart's frozen
// pricing serialized into session metadata, and completion webhooks are
// verified against the Stripe-Signature scheme before being normalized.
package stripecheckout

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	"github.com/reelforge/reelforge/internal/checkout/domain"
)

const (
	providerName = "stripe"

	defaultAPIBase = "https://api.stripe.com"

	eventCheckoutCompleted = "checkout.session.completed"

	metadataItemsKey   = "reelforge_items"
	metadataUserIDKey  = "reelforge_user_id"
	metadataBrandIDKey = "reelforge_brand_id"
)

type Config struct {
	APIKey        string
	WebhookSecret string
	APIBase       string
}

type Adapter struct {
	cfg    Config
	client *http.Client
	log    *zap.Logger
}

func New(cfg Config, log *zap.Logger) *Adapter {
	if cfg.APIBase == "" {
		cfg.APIBase = defaultAPIBase
	}
	return &Adapter{
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
		log:    log.Named("checkout.stripe"),
	}
}

func (a *Adapter) Provider() string { return providerName }

func (a *Adapter) CreateSession(ctx context.Context, params domain.CreateSessionParams) (*domain.Session, error) {
	items, err := json.Marshal(params.Items)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidMetadata, err)
	}

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("client_reference_id", params.BrandID.String())
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)
	form.Set(fmt.Sprintf("metadata[%s]", metadataItemsKey), string(items))
	form.Set(fmt.Sprintf("metadata[%s]", metadataUserIDKey), params.UserID)
	form.Set(fmt.Sprintf("metadata[%s]", metadataBrandIDKey), params.BrandID.String())
	for i, item := range params.Items {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[quantity]", "1")
		form.Set(prefix+"[price_data][currency]", "eur")
		form.Set(prefix+"[price_data][product_data][name]", item.RecipeName)
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(item.TotalChargedCents, 10))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.APIBase+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	if resp.StatusCode >= 500 {
		a.log.Warn("stripe session create failed", zap.Int("status_code", resp.StatusCode))
		return nil, fmt.Errorf("%w: status %d", domain.ErrProviderUnavailable, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("stripe rejected session: status %d: %s", resp.StatusCode, truncate(string(body), 256))
	}

	var session struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}
	if session.ID == "" || session.URL == "" {
		return nil, domain.ErrInvalidPayload
	}
	return &domain.Session{ID: session.ID, URL: session.URL, Provider: providerName}, nil
}

type stripeEvent struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Created int64           `json:"created"`
	Data    stripeEventData `json:"data"`
}

type stripeEventData struct {
	Object json.RawMessage `json:"object"`
}

type stripeCheckoutSession struct {
	ID            string            `json:"id"`
	PaymentIntent string            `json:"payment_intent"`
	Metadata      map[string]string `json:"metadata"`
}

func (a *Adapter) Verify(_ context.Context, payload []byte, headers http.Header) error {
	if a.cfg.WebhookSecret == "" {
		return nil
	}

	header := headers.Get("Stripe-Signature")
	if header == "" {
		return domain.ErrInvalidSignature
	}

	timestamp, signatures, err := parseStripeSignature(header)
	if err != nil {
		return domain.ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(a.cfg.WebhookSecret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range signatures {
		if hmac.Equal([]byte(sig), []byte(expected)) {
			return nil
		}
	}
	return domain.ErrInvalidSignature
}

func parseStripeSignature(header string) (timestamp string, signatures []string, err error) {
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return "", nil, fmt.Errorf("malformed signature header")
	}
	return timestamp, signatures, nil
}

func (a *Adapter) ParseCompleted(_ context.Context, payload []byte) (*domain.CompletedEvent, error) {
	var event stripeEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}
	if event.Type != eventCheckoutCompleted {
		return nil, domain.ErrEventIgnored
	}

	var session stripeCheckoutSession
	if err := json.Unmarshal(event.Data.Object, &session); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}
	if session.ID == "" {
		return nil, domain.ErrInvalidEvent
	}

	completed := &domain.CompletedEvent{
		Provider:         providerName,
		ProviderEventID:  event.ID,
		SessionID:        session.ID,
		PaymentReference: session.PaymentIntent,
		UserID:           session.Metadata[metadataUserIDKey],
		OccurredAt:       eventTime(event.Created),
		RawPayload:       payload,
	}

	brandID, err := snowflake.ParseString(session.Metadata[metadataBrandIDKey])
	if err != nil {
		return nil, fmt.Errorf("%w: brand id: %v", domain.ErrInvalidMetadata, err)
	}
	completed.BrandID = brandID

	rawItems := session.Metadata[metadataItemsKey]
	if rawItems == "" {
		return nil, fmt.Errorf("%w: missing %s", domain.ErrInvalidMetadata, metadataItemsKey)
	}
	if err := json.Unmarshal([]byte(rawItems), &completed.Items); err != nil {
		return nil, fmt.Errorf("%w: items: %v", domain.ErrInvalidMetadata, err)
	}
	if len(completed.Items) == 0 {
		return nil, fmt.Errorf("%w: empty items", domain.ErrInvalidMetadata)
	}
	return completed, nil
}

func eventTime(created int64) time.Time {
	if created <= 0 {
		return time.Now().UTC()
	}
	return time.Unix(created, 0).UTC()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
