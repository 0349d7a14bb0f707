package stripecheckout

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/reelforge/reelforge/internal/checkout/domain"
)

const testSecret = "whsec_test_secret"

func newTestAdapter(t *testing.T) *Adapter {
	t.Helper()
	return New(Config{APIKey: "sk_test_x", WebhookSecret: testSecret}, zap.NewNop())
}

func signPayload(secret, timestamp string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func signedHeaders(secret string, payload []byte) http.Header {
	timestamp := "1756339200"
	headers := http.Header{}
	headers.Set("Stripe-Signature", fmt.Sprintf("t=%s,v1=%s", timestamp, signPayload(secret, timestamp, payload)))
	return headers
}

func TestVerifyAcceptsValidSignature(t *testing.T) {
	adapter := newTestAdapter(t)
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)

	err := adapter.Verify(context.Background(), payload, signedHeaders(testSecret, payload))
	assert.NoError(t, err)
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	adapter := newTestAdapter(t)
	payload := []byte(`{"id":"evt_1"}`)
	headers := signedHeaders(testSecret, payload)

	err := adapter.Verify(context.Background(), []byte(`{"id":"evt_2"}`), headers)
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	adapter := newTestAdapter(t)
	payload := []byte(`{"id":"evt_1"}`)

	err := adapter.Verify(context.Background(), payload, signedHeaders("whsec_other", payload))
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)
}

func TestVerifyRejectsMissingHeader(t *testing.T) {
	adapter := newTestAdapter(t)

	err := adapter.Verify(context.Background(), []byte(`{}`), http.Header{})
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)
}

func completedPayload(t *testing.T, items []domain.ItemSnapshot, brandID string) []byte {
	t.Helper()
	rawItems, err := json.Marshal(items)
	require.NoError(t, err)

	session := map[string]any{
		"id":             "cs_test_abc",
		"payment_intent": "pi_test_123",
		"metadata": map[string]string{
			metadataItemsKey:   string(rawItems),
			metadataUserIDKey:  "user_42",
			metadataBrandIDKey: brandID,
		},
	}
	object, err := json.Marshal(session)
	require.NoError(t, err)

	payload, err := json.Marshal(map[string]any{
		"id":      "evt_test_1",
		"type":    "checkout.session.completed",
		"created": int64(1756339200),
		"data":    map[string]any{"object": json.RawMessage(object)},
	})
	require.NoError(t, err)
	return payload
}

func TestParseCompletedRoundTripsItemSnapshots(t *testing.T) {
	adapter := newTestAdapter(t)
	items := []domain.ItemSnapshot{
		{
			CartItemID:         1000001,
			RecipeID:           2000001,
			RecipeSlug:         "ugc-hook-pack",
			RecipeName:         "UGC Hook Pack",
			ListPriceCents:     15000,
			DiscountPercent:    10,
			DiscountCents:      1500,
			TotalChargedCents:  13500,
			PrimaryPlatform:    "tiktok",
			PrimaryAspectRatio: "9:16",
		},
		{
			CartItemID:            1000002,
			RecipeID:              2000002,
			RecipeSlug:            "product-demo",
			RecipeName:            "Product Demo",
			ListPriceCents:        9500,
			SurchargeCents:        2000,
			TotalChargedCents:     11500,
			PrimaryPlatform:       "instagram",
			PrimaryAspectRatio:    "9:16",
			NeedsAdditionalFormat: true,
			AdditionalAspectRatio: "16:9",
		},
	}

	event, err := adapter.ParseCompleted(context.Background(), completedPayload(t, items, "3000001"))
	require.NoError(t, err)

	assert.Equal(t, "evt_test_1", event.ProviderEventID)
	assert.Equal(t, "cs_test_abc", event.SessionID)
	assert.Equal(t, "pi_test_123", event.PaymentReference)
	assert.Equal(t, "user_42", event.UserID)
	assert.Equal(t, "3000001", event.BrandID.String())
	assert.Equal(t, items, event.Items)
}

func TestParseCompletedIgnoresOtherEventTypes(t *testing.T) {
	adapter := newTestAdapter(t)
	payload := []byte(`{"id":"evt_x","type":"payment_intent.succeeded","data":{"object":{}}}`)

	_, err := adapter.ParseCompleted(context.Background(), payload)
	assert.ErrorIs(t, err, domain.ErrEventIgnored)
}

func TestParseCompletedRejectsMissingItems(t *testing.T) {
	adapter := newTestAdapter(t)
	payload := []byte(`{"id":"evt_x","type":"checkout.session.completed",` +
		`"data":{"object":{"id":"cs_1","metadata":{"reelforge_brand_id":"3000001"}}}}`)

	_, err := adapter.ParseCompleted(context.Background(), payload)
	assert.ErrorIs(t, err, domain.ErrInvalidMetadata)
}
