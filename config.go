package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// Config holds process settings. Environment (optionally from .env) is read
// first, then command-line flags override it.
type Config struct {
	Addr           string
	ClientDir      string
	PublicURL      string
	LogLevel       string
	HistoryDSN     string
	ReservedNames  string // "Name=password;Other=password2"
	TicketSecret   string
	AllowedOrigins []string
	BcryptCost     int
}

// LoadConfig reads an optional .env file and the environment
func LoadConfig(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	cfg := Config{
		Addr:          getenv("TAG_ADDR", ":3000"),
		ClientDir:     getenv("TAG_CLIENT_DIR", "public"),
		PublicURL:     os.Getenv("TAG_PUBLIC_URL"),
		LogLevel:      getenv("TAG_LOG_LEVEL", "info"),
		HistoryDSN:    getenv("TAG_HISTORY_DSN", DefaultHistoryDSN),
		ReservedNames: os.Getenv("TAG_RESERVED_NAMES"),
		TicketSecret:  os.Getenv("TAG_TICKET_SECRET"),
		BcryptCost:    bcrypt.DefaultCost,
	}
	if origins := os.Getenv("TAG_ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = splitList(origins)
	}
	if port := os.Getenv("PORT"); port != "" && os.Getenv("TAG_ADDR") == "" {
		cfg.Addr = ":" + port
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail late
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("listen address is empty")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	if _, err := ParseReservedNames(c.ReservedNames); err != nil {
		return err
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt cost %d out of range", c.BcryptCost)
	}
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
