package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config carries every tunable the server reads from the environment.
// Defaults match the production storefront.
type Config struct {
	Port           string
	MongoURI       string
	MongoDatabase  string
	JWTSecret      string
	SendgridAPIKey string
	EmailSender    string

	// Checkout pricing knobs. TaxRate is a fraction of the subtotal.
	// ShippingFee applies below FreeShippingThreshold and is waived above it.
	TaxRate               float64
	ShippingFee           float64
	FreeShippingThreshold float64

	// RefundOnCancel credits the order total back to the user when they
	// cancel. Off by default: the storefront historically kept the balance.
	RefundOnCancel bool
}

// Load reads configuration from the environment. It fails only when a value
// that has no sensible default is missing.
func Load() (*Config, error) {
	cfg := &Config{
		Port:                  getEnv("PORT", "8000"),
		MongoURI:              getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:         getEnv("MONGO_DB", "fashion_store"),
		JWTSecret:             os.Getenv("JWT_SECRET"),
		SendgridAPIKey:        os.Getenv("SENDGRID_API_KEY"),
		EmailSender:           getEnv("EMAIL_SENDER", "orders@fashion-store.example"),
		TaxRate:               0.08,
		ShippingFee:           10.00,
		FreeShippingThreshold: 50.00,
		RefundOnCancel:        false,
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	var err error
	if cfg.TaxRate, err = getFloat("TAX_RATE", cfg.TaxRate); err != nil {
		return nil, err
	}
	if cfg.ShippingFee, err = getFloat("SHIPPING_FEE", cfg.ShippingFee); err != nil {
		return nil, err
	}
	if cfg.FreeShippingThreshold, err = getFloat("FREE_SHIPPING_THRESHOLD", cfg.FreeShippingThreshold); err != nil {
		return nil, err
	}
	if v := os.Getenv("REFUND_ON_CANCEL"); v != "" {
		cfg.RefundOnCancel, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid REFUND_ON_CANCEL %q: %w", v, err)
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return f, nil
}
