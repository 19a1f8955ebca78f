package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMemoryDefaults(t *testing.T) {
	t.Setenv("STORAGE", StorageMemory)
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("KAFKA_BROKERS", " a:9092, ,b:9092 ")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessTokenTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, "X-Sharer-User-Id", cfg.UserIDHeader)
	assert.False(t, cfg.TrustUserHeader)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "booking.events", cfg.KafkaBookingTopic)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "./data/photos", cfg.PhotoDir)
	assert.Equal(t, int64(5<<20), cfg.PhotoMaxBytes)
	assert.Equal(t, int64(40_000_000), cfg.PhotoMaxPixels)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"postgres without dsn", map[string]string{"STORAGE": StoragePostgres, "DB_DSN": "", "JWT_SECRET": "s"}},
		{"unknown storage", map[string]string{"STORAGE": "redis", "JWT_SECRET": "s"}},
		{"missing secret", map[string]string{"STORAGE": StorageMemory, "JWT_SECRET": ""}},
		{"bad ttl", map[string]string{"STORAGE": StorageMemory, "JWT_SECRET": "s", "JWT_ACCESS_TOKEN_TTL": "soon"}},
		{"bad bool", map[string]string{"STORAGE": StorageMemory, "JWT_SECRET": "s", "TRUST_USER_HEADER": "maybe"}},
		{"zero photo limit", map[string]string{"STORAGE": StorageMemory, "JWT_SECRET": "s", "PHOTO_MAX_BYTES": "0"}},
		{"negative pixel limit", map[string]string{"STORAGE": StorageMemory, "JWT_SECRET": "s", "PHOTO_MAX_PIXELS": "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
