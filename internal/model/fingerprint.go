package model

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"unicode"
)

// Fingerprint returns a stable hash identifying a saved voucher. Two saved
// items with the same fingerprint are the same real-world voucher. This is
// independent of the extraction response cache key, which only detects
// identical repeated requests.
func Fingerprint(store, code string, amount float64, expiryDate string) string {
	datePart := expiryDate
	if len(datePart) > 10 {
		datePart = datePart[:10]
	}
	raw := fmt.Sprintf("%s|%s|%.2f|%s",
		normalizeToken(store),
		normalizeToken(code),
		amount,
		datePart,
	)
	h := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%x", h)
}

// normalizeToken strips everything but letters and digits and uppercases the
// rest, so "Fox-999" and "FOX 999" collapse to the same token.
func normalizeToken(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}
