package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// PricingConfig carries the tunable pricing knobs that operations may adjust
// without a redeploy: the aspect-ratio surcharge, the fallback discount
// duration cap, and checkout rate limits.
type PricingConfig struct {
	// BothAspectRatioSurchargeCents is added once per item quoted with
	// aspect ratio "Both".
	BothAspectRatioSurchargeCents int64 `mapstructure:"bothAspectRatioSurchargeCents"`

	// DefaultDiscountDurationDays caps milestone discounts whose milestone
	// does not specify its own duration.
	DefaultDiscountDurationDays int `mapstructure:"defaultDiscountDurationDays"`

	CheckoutRateLimit RateLimitConfig `mapstructure:"checkoutRateLimit"`
	WebhookRateLimit  RateLimitConfig `mapstructure:"webhookRateLimit"`
}

type RateLimitConfig struct {
	Capacity   int64   `mapstructure:"capacity"`
	RefillRate float64 `mapstructure:"refillRate"` // tokens per second
}

func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		BothAspectRatioSurchargeCents: 2000,
		DefaultDiscountDurationDays:   30,
		CheckoutRateLimit:             RateLimitConfig{Capacity: 10, RefillRate: 0.5},
		WebhookRateLimit:              RateLimitConfig{Capacity: 60, RefillRate: 10},
	}
}

type PricingConfigHolder struct {
	current atomic.Value // holds PricingConfig
}

// NewStaticPricingConfigHolder wraps a fixed config. Used in tests.
func NewStaticPricingConfigHolder(cfg PricingConfig) *PricingConfigHolder {
	holder := &PricingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewPricingConfigHolder() (*PricingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("pricing")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/reelforge/config") // Volume-mounted config
	v.AddConfigPath("/etc/reelforge")            // System config
	v.AddConfigPath(".")                         // Current directory (dev mode)

	v.SetEnvPrefix("REELFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// if config file not found, use defaults
		defaults := DefaultPricingConfig()
		v.SetDefault("pricing.bothAspectRatioSurchargeCents", defaults.BothAspectRatioSurchargeCents)
		v.SetDefault("pricing.defaultDiscountDurationDays", defaults.DefaultDiscountDurationDays)
		v.SetDefault("pricing.checkoutRateLimit", defaults.CheckoutRateLimit)
		v.SetDefault("pricing.webhookRateLimit", defaults.WebhookRateLimit)
	}

	var cfg PricingConfig
	if err := v.UnmarshalKey("pricing", &cfg); err != nil {
		return nil, err
	}
	if err := validatePricingConfig(cfg); err != nil {
		return nil, err
	}

	holder := &PricingConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated PricingConfig
		if err := v.UnmarshalKey("pricing", &updated); err != nil {
			log.Printf("[pricing-config] reload failed: %v", err)
			return
		}
		if err := validatePricingConfig(updated); err != nil {
			log.Printf("[pricing-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[pricing-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *PricingConfigHolder) Get() PricingConfig {
	return h.current.Load().(PricingConfig)
}

func validatePricingConfig(cfg PricingConfig) error {
	if cfg.BothAspectRatioSurchargeCents < 0 {
		return errors.New("pricing.bothAspectRatioSurchargeCents cannot be negative")
	}
	if cfg.DefaultDiscountDurationDays <= 0 {
		return errors.New("pricing.defaultDiscountDurationDays must be positive")
	}
	return nil
}
