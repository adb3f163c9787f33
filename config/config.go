package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"quotebuilder/services"
)

// Config holds the settings the quote builder reads from the environment.
// Server address and data directory stay with PocketBase's own flags.
type Config struct {
	Company        services.CompanyInfo
	QuoteValidDays int
	Seed           bool
	MetricsPrefix  string
}

// Load reads the given .env files (default ".env") when present, then builds
// the config from environment variables. Missing files are not an error.
func Load(files ...string) *Config {
	if err := godotenv.Load(files...); err != nil {
		log.Printf("config: no .env loaded, using environment: %v", err)
	}

	return &Config{
		Company: services.CompanyInfo{
			Name:  getEnv("QB_COMPANY_NAME", "Quote Builder"),
			ABN:   getEnv("QB_COMPANY_ABN", ""),
			Phone: getEnv("QB_COMPANY_PHONE", ""),
			Email: getEnv("QB_COMPANY_EMAIL", ""),
		},
		QuoteValidDays: getEnvAsInt("QB_QUOTE_VALID_DAYS", 30),
		Seed:           getEnvAsBool("QB_SEED", true),
		MetricsPrefix:  getEnv("QB_METRICS_PREFIX", "quotebuilder"),
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		log.Printf("config: invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvAsBool(key string, fallback bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("config: invalid %s=%q, using %t", key, v, fallback)
		return fallback
	}
	return b
}
