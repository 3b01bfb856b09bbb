package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper). Every recognized field
// is enumerated here with its default; nothing is read from ad-hoc maps.
type Config struct {
	Env         string
	Port        string
	DatabaseURL string
	RedisURL    string

	StripeSecretKey     string
	StripeWebhookSecret string
	Currency            string

	// ListingFeeAmount is the flat fee charged to list a property. Zero
	// disables the fee and listings go active immediately.
	ListingFeeAmount float64

	// Tokenomics policy. One set of constants for every call site.
	OwnershipCapFraction  float64 // max fraction of a property's value that may be sold
	MinInvestmentFraction float64 // minimum stake as a fraction of max shares
	PlatformFeeMultiplier float64 // applied to the token price at checkout only

	// Crypto risk gate.
	RiskScannerBaseURL     string
	RiskComplianceMinScore float64
	RiskScannerTimeout     time.Duration

	// Recurring scheduler.
	RecurringInterval time.Duration
	RecurringClaimTTL time.Duration
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("CURRENCY", "USD")
	viper.SetDefault("LISTING_FEE_AMOUNT", 250.0)
	viper.SetDefault("OWNERSHIP_CAP_FRACTION", 0.49)
	viper.SetDefault("MIN_INVESTMENT_FRACTION", 0.05)
	viper.SetDefault("PLATFORM_FEE_MULTIPLIER", 1.05)
	viper.SetDefault("RISK_COMPLIANCE_MIN_SCORE", 60.0)
	viper.SetDefault("RISK_SCANNER_TIMEOUT_SECONDS", 10)
	viper.SetDefault("RECURRING_INTERVAL_MINUTES", 15)
	viper.SetDefault("RECURRING_CLAIM_TTL_MINUTES", 10)

	env := viper.GetString("APP_ENV")

	dbURL := viper.GetString("DATABASE_URL")
	if env == "test" && viper.GetString("DATABASE_URL_TEST") != "" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}

	return &Config{
		Env:         env,
		Port:        viper.GetString("PORT"),
		DatabaseURL: dbURL,
		RedisURL:    viper.GetString("REDIS_URL"),

		StripeSecretKey:     viper.GetString("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: viper.GetString("STRIPE_WEBHOOK_SECRET"),
		Currency:            viper.GetString("CURRENCY"),
		ListingFeeAmount:    viper.GetFloat64("LISTING_FEE_AMOUNT"),

		OwnershipCapFraction:  capFraction(viper.GetFloat64("OWNERSHIP_CAP_FRACTION")),
		MinInvestmentFraction: viper.GetFloat64("MIN_INVESTMENT_FRACTION"),
		PlatformFeeMultiplier: viper.GetFloat64("PLATFORM_FEE_MULTIPLIER"),

		RiskScannerBaseURL:     viper.GetString("RISK_SCANNER_BASE_URL"),
		RiskComplianceMinScore: viper.GetFloat64("RISK_COMPLIANCE_MIN_SCORE"),
		RiskScannerTimeout:     time.Duration(viper.GetInt("RISK_SCANNER_TIMEOUT_SECONDS")) * time.Second,

		RecurringInterval: time.Duration(viper.GetInt("RECURRING_INTERVAL_MINUTES")) * time.Minute,
		RecurringClaimTTL: time.Duration(viper.GetInt("RECURRING_CLAIM_TTL_MINUTES")) * time.Minute,
	}, nil
}

// capFraction clamps to the sane regulatory range; a zero or out-of-range env
// value falls back to the 49% default rather than disabling the cap.
func capFraction(v float64) float64 {
	if v <= 0 || v > 1 {
		return 0.49
	}
	return v
}
