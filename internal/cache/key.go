package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// Key builds the cache key for a source call. Queries differing only in case or
// whitespace share an entry.
func Key(source, query string, limit int) string {
	return "news|" + source + "|" + NormalizeQuery(query) + "|" + strconv.Itoa(limit)
}

// SummaryKey builds the cache key for a (title, description) summary
func SummaryKey(provider, title, description string) string {
	sum := sha256.Sum256([]byte(title + "\x00" + description))
	return "summary|" + provider + "|" + hex.EncodeToString(sum[:16])
}

// MetadataKey builds the cache key for a ticker metadata lookup
func MetadataKey(provider, ticker string) string {
	return "meta|" + provider + "|" + strings.ToUpper(strings.TrimSpace(ticker))
}

// NormalizeQuery lower-cases q and collapses whitespace
func NormalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}
