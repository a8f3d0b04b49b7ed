// Env helpers shared by the binaries. Connection settings are read where each
// resource is constructed.
package config

import (
	"fmt"
	"os"
	"strconv"
)

func EnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvRequired(key string) (string, error) {
	if v := os.Getenv(key); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("env %s is not set", key)
}

// EnvOrDefaultInt falls back to def when the variable is unset, malformed or below 1.
func EnvOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
