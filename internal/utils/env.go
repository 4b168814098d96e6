package utils

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// SafeEnv returns the environment variable value for key, or fallback if empty.
func SafeEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

// EnvDuration parses key as a Go duration ("45s"); unset or malformed values yield fallback.
func EnvDuration(key string, fallback time.Duration) time.Duration {
	v := SafeEnv(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// EnvFloat parses key as a float; unset or malformed values yield fallback.
func EnvFloat(key string, fallback float64) float64 {
	v := SafeEnv(key, "")
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

// EnvList splits a comma-separated value, dropping blanks.
func EnvList(key string, fallback []string) []string {
	v := SafeEnv(key, "")
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
