package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

const separator = "|"

// AssignID derives a stable content-addressed identifier from an item's
// immutable fields. The same (source, url, title, publishedAt) quadruple
// always yields the same id, across processes and restarts.
//
// The key keeps all four slots even when url is empty, so an item without
// a link still distinguishes itself by title and publication time.
func AssignID(source, url, title string, publishedAt time.Time) string {
	key := strings.Join([]string{
		source,
		url,
		title,
		publishedAt.UTC().Format(time.RFC3339),
	}, separator)
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
