package contextbuild

import "regexp"

// Free-text fields may carry addresses and numbers typed by end customers;
// they are masked before the payload leaves the process.
var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?\d[\d\s().\-]{6,}\d`)
)

const (
	emailMask = "[redacted-email]"
	phoneMask = "[redacted-phone]"
)

// Redact masks email addresses and phone numbers in free text. Text without
// matches is returned unchanged.
func Redact(s string) string {
	if s == "" {
		return s
	}
	s = emailPattern.ReplaceAllString(s, emailMask)
	s = phonePattern.ReplaceAllString(s, phoneMask)
	return s
}
