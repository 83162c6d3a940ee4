package appenv

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Load pulls a local .env file into the environment when one is present.
// Deployed functions carry real environment variables, so a missing file is
// not an error.
func Load() {
	_ = godotenv.Load()
}

// Must returns the named variable or exits the process.
func Must(key string) string {
	v := os.Getenv(key)
	if v == "" {
		slog.Error("required environment variable is not set", "key", key)
		os.Exit(1)
	}
	return v
}

// Or returns the named variable, or def when unset.
func Or(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Int returns the named variable as an int, or def when unset or unparseable.
func Int(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
