// Package config loads service configuration from the environment.
//
// A .env file in the working directory is honored when present; real
// environment variables always win.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/cashlytics/ledger-engine/ledger"
)

type Config struct {
	// HTTP server
	Port string

	// Storage
	DBPath       string
	StoreTimeout time.Duration

	// Logging
	LogLevel string
	LogDev   bool

	// Auth: "credential:principal" pairs, comma separated.
	// Stand-in for a real identity provider.
	AuthTokens map[ledger.Credential]ledger.PrincipalID
}

// Load reads configuration, applying defaults for anything unset.
func Load() *Config {
	_ = godotenv.Load() // best effort; absence of .env is fine

	return &Config{
		Port:         getEnv("PORT", "8080"),
		DBPath:       getEnv("DB_PATH", "./data/ledger.db"),
		StoreTimeout: getEnvDuration("STORE_TIMEOUT", 5*time.Second),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogDev:       getEnv("LOG_DEV", "") == "true",
		AuthTokens:   parseTokens(getEnv("AUTH_TOKENS", "")),
	}
}

// Validate returns an error describing every invalid setting.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port %q: must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.StoreTimeout <= 0 {
		problems = append(problems, "store timeout must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(problems, "; "))
	}
	return nil
}

// parseTokens parses "cred1:principal1,cred2:principal2". Malformed pairs are
// skipped rather than failing startup.
func parseTokens(raw string) map[ledger.Credential]ledger.PrincipalID {
	tokens := make(map[ledger.Credential]ledger.PrincipalID)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		cred, principal, ok := strings.Cut(pair, ":")
		if !ok || cred == "" || principal == "" {
			continue
		}
		tokens[ledger.Credential(cred)] = ledger.PrincipalID(principal)
	}
	return tokens
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
