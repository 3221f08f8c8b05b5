package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr       string
	DatabaseDSN    string
	RedisAddr      string
	TrayTTL        time.Duration
	Timezone       string
	PickupSlots    []string
	PickupLeadTime time.Duration
	WhatsAppPhone  string
	Brand          string
	SubmitTimeout  time.Duration
	IdempotencyTTL time.Duration
	LogLevel       string
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := &Config{
		HTTPAddr:      env("HTTP_ADDR", ":8080"),
		DatabaseDSN:   env("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=storefront port=5432 sslmode=disable TimeZone=UTC"),
		RedisAddr:     env("REDIS_ADDR", "localhost:6379"),
		Timezone:      env("TIMEZONE", "Asia/Kuala_Lumpur"),
		PickupSlots:   splitList(env("PICKUP_SLOTS", "12:00–13:00,18:00–19:00")),
		WhatsAppPhone: env("WHATSAPP_PHONE", "+6596100333"),
		Brand:         env("BRAND", "Good2Go Express"),
		LogLevel:      env("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.TrayTTL, err = durationEnv("TRAY_TTL", 30*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.PickupLeadTime, err = durationEnv("PICKUP_LEAD_TIME", 4*time.Hour); err != nil {
		return nil, err
	}
	if cfg.SubmitTimeout, err = durationEnv("SUBMIT_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.IdempotencyTTL, err = durationEnv("IDEMPOTENCY_TTL", 10*time.Minute); err != nil {
		return nil, err
	}
	if len(cfg.PickupSlots) == 0 {
		return nil, fmt.Errorf("PICKUP_SLOTS must name at least one slot")
	}
	return cfg, nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func durationEnv(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", k, err)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
