package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvPrefersLoadedFileOverProcess(t *testing.T) {
	Env = map[string]string{"APP_ENV": "dev"}
	defer func() { Env = nil }()
	t.Setenv("APP_ENV", "prod")

	assert.Equal(t, "dev", GetEnv("APP_ENV", "prod"))
	assert.True(t, IsDev())
}

func TestGetEnvFallsBackToProcessThenDefault(t *testing.T) {
	Env = nil
	t.Setenv("APP_PORT", "8080")

	assert.Equal(t, "8080", GetEnv("APP_PORT", "4000"))
	assert.Equal(t, "default", GetEnv("DOES_NOT_EXIST", "default"))
}

func TestGetEnvInt(t *testing.T) {
	Env = map[string]string{
		"BILLING_GRACE_PERIOD_DAYS": "14",
		"BROKEN":                    "fourteen",
	}
	defer func() { Env = nil }()

	assert.Equal(t, 14, GetEnvInt("BILLING_GRACE_PERIOD_DAYS", 7))
	assert.Equal(t, 7, GetEnvInt("UNSET", 7))
	assert.Equal(t, 7, GetEnvInt("BROKEN", 7))
}
