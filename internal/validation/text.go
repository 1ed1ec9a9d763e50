package validation

import (
	"regexp"
	"strings"
	"unicode"
)

// Saudi mobile numbers: 05XXXXXXXX, 9665XXXXXXXX or +9665XXXXXXXX.
var saudiPhonePattern = regexp.MustCompile(`^(\+?966|0)?5\d{8}$`)

// LooksLikeSaudiPhone reports whether phone matches the Saudi mobile dialing
// pattern. It is a display hint; submissions never fail on it.
func LooksLikeSaudiPhone(phone string) bool {
	return saudiPhonePattern.MatchString(stripPhone(phone))
}

// FormatSaudiPhone renders a Saudi mobile number as +966 5X XXX XXXX and
// returns anything else unchanged.
func FormatSaudiPhone(phone string) string {
	digits := stripPhone(phone)
	if !saudiPhonePattern.MatchString(digits) {
		return phone
	}
	digits = strings.TrimPrefix(digits, "+")
	switch {
	case strings.HasPrefix(digits, "966"):
		digits = digits[3:]
	case strings.HasPrefix(digits, "0"):
		digits = digits[1:]
	}
	return "+966 " + digits[:2] + " " + digits[2:5] + " " + digits[5:]
}

func stripPhone(phone string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' || r == '(' || r == ')' {
			return -1
		}
		return r
	}, strings.TrimSpace(phone))
}

var dashRuns = regexp.MustCompile(`-+`)

// Slugify lowercases text and joins its words with dashes. Arabic letters
// are kept as they are.
func Slugify(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(text)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '_':
			b.WriteRune('-')
		}
	}
	return strings.Trim(dashRuns.ReplaceAllString(b.String(), "-"), "-")
}
