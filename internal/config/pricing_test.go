package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePricingConfig(t *testing.T) {
	assert.NoError(t, validatePricingConfig(DefaultPricingConfig()))

	negative := DefaultPricingConfig()
	negative.BothAspectRatioSurchargeCents = -1
	assert.Error(t, validatePricingConfig(negative))

	zeroDuration := DefaultPricingConfig()
	zeroDuration.DefaultDiscountDurationDays = 0
	assert.Error(t, validatePricingConfig(zeroDuration))
}

func TestStaticHolderReturnsStoredConfig(t *testing.T) {
	cfg := DefaultPricingConfig()
	cfg.BothAspectRatioSurchargeCents = 2500

	holder := NewStaticPricingConfigHolder(cfg)
	assert.Equal(t, int64(2500), holder.Get().BothAspectRatioSurchargeCents)
	assert.Equal(t, 30, holder.Get().DefaultDiscountDurationDays)
}
