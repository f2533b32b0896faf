package env

import (
	"os"
	"strings"
)

// First returns the first non-blank value among keys, in order, or fallback.
// It lets a GIVEHUB_-prefixed name shadow a conventional unprefixed one.
func First(fallback string, keys ...string) string {
	for _, key := range keys {
		if val := strings.TrimSpace(os.Getenv(key)); val != "" {
			return val
		}
	}
	return fallback
}
