package catalog

import (
	"math/rand"
	"strings"
)

// isbnBookPrefix is the standard EAN prefix for books.
const isbnBookPrefix = "978"

// ISBN13CheckDigit computes the check digit for the 12 leading digits of an
// ISBN-13. Digits at even 0-based positions weigh 1, odd positions weigh 3;
// the check digit is (10 - sum mod 10) mod 10.
func ISBN13CheckDigit(digits string) int {
	sum := 0
	for i, r := range digits {
		d := int(r - '0')
		if i%2 == 0 {
			sum += d
		} else {
			sum += 3 * d
		}
	}
	return (10 - sum%10) % 10
}

// ValidISBN13 reports whether s is a 13-digit string whose trailing digit
// satisfies the ISBN-13 checksum.
func ValidISBN13(s string) bool {
	if len(s) != 13 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return ISBN13CheckDigit(s[:12]) == int(s[12]-'0')
}

// SynthesizeISBN produces a fictitious but checksum-valid ISBN-13 with the
// 978 book prefix. Only used when the source item carries no identifier.
func SynthesizeISBN(rng *rand.Rand) string {
	var sb strings.Builder
	sb.WriteString(isbnBookPrefix)
	for i := 0; i < 9; i++ {
		sb.WriteByte(byte('0' + rng.Intn(10)))
	}
	body := sb.String()
	sb.WriteByte(byte('0' + ISBN13CheckDigit(body)))
	return sb.String()
}
