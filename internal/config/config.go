// Package config reads famdesk's settings from the environment, after
// loading a .env file when one is present.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIURL         string
	APITimeout     time.Duration
	Port           string
	DBPath         string
	LogLevel       string
	LogFormat      string
	Secret         string
	CSRFKey        []byte
	SecureCookies  bool
	TrustedOrigins []string
	VisitorIdle    time.Duration

	// Generated is true for each secret that was not configured and had to
	// be made up for this run.
	GeneratedSecret  bool
	GeneratedCSRFKey bool
}

// Load reads .env (if present) and then the FAMDESK_* variables. Variables
// already set in the environment win over .env.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		APIURL:    get("FAMDESK_API_URL", "http://localhost:5000/api"),
		Port:      get("FAMDESK_PORT", "8080"),
		DBPath:    get("FAMDESK_DB_PATH", "famdesk.db"),
		LogLevel:  get("FAMDESK_LOG_LEVEL", "info"),
		LogFormat: get("FAMDESK_LOG_FORMAT", "text"),
		Secret:    get("FAMDESK_SECRET", ""),
	}

	var err error
	if cfg.APITimeout, err = time.ParseDuration(get("FAMDESK_API_TIMEOUT", "10s")); err != nil {
		return Config{}, fmt.Errorf("FAMDESK_API_TIMEOUT: %w", err)
	}
	if cfg.VisitorIdle, err = time.ParseDuration(get("FAMDESK_VISITOR_IDLE", "24h")); err != nil {
		return Config{}, fmt.Errorf("FAMDESK_VISITOR_IDLE: %w", err)
	}
	if cfg.SecureCookies, err = strconv.ParseBool(get("FAMDESK_SECURE_COOKIES", "false")); err != nil {
		return Config{}, fmt.Errorf("FAMDESK_SECURE_COOKIES: %w", err)
	}
	if origins := get("FAMDESK_TRUSTED_ORIGINS", ""); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.TrustedOrigins = append(cfg.TrustedOrigins, o)
			}
		}
	}

	if cfg.Secret == "" {
		b, err := randomBytes(32)
		if err != nil {
			return Config{}, err
		}
		cfg.Secret = hex.EncodeToString(b)
		cfg.GeneratedSecret = true
	}

	if key := get("FAMDESK_CSRF_KEY", ""); key != "" {
		cfg.CSRFKey, err = hex.DecodeString(key)
		if err != nil || len(cfg.CSRFKey) != 32 {
			return Config{}, errors.New("FAMDESK_CSRF_KEY must be 64 hex characters")
		}
	} else {
		if cfg.CSRFKey, err = randomBytes(32); err != nil {
			return Config{}, err
		}
		cfg.GeneratedCSRFKey = true
	}

	return cfg, nil
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return b, nil
}
