package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"ListingCrawler/internal/domain"
)

// Fingerprint returns the SHA-256 of title|year|detailLink|posterLink in hex.
func Fingerprint(l domain.Listing) string {
	content := strings.Join([]string{l.Title, l.Year, l.DetailLink, l.PosterLink}, "|")
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
