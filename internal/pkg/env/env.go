package env

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Env holds the settings read from the .env file. Process environment
// variables take over when a key is missing, so containerized deployments
// can run without any .env file at all.
var Env map[string]string

func GetEnv(key, def string) string {
	if val, ok := Env[key]; ok {
		return val
	}
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// GetEnvInt reads a numeric setting such as BILLING_GRACE_PERIOD_DAYS or
// APP_PORT. Unset or non-numeric values fall back to def.
func GetEnvInt(key string, def int) int {
	raw := GetEnv(key, "")
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return val
}

// SetupEnvFile loads the first .env file it finds, walking up from the
// binary's working directory (cmd/dokseo and cmd/migrate both start two
// levels below the project root).
func SetupEnvFile() {
	envFiles := []string{
		".env",
		"../../.env",
		"../../../.env",
	}

	var err error
	for _, envFile := range envFiles {
		Env, err = godotenv.Read(envFile)
		if err == nil {
			return
		}
	}

	// No .env file is fine in production, where everything comes in via
	// the process environment.
	log.Println("env: no .env file found, using process environment only")
}

func IsDev() bool {
	return GetEnv("APP_ENV", "prod") == "dev"
}
