package tours

import (
	"regexp"
	"strings"
)

// Phone numbers must land between these digit counts after cleaning,
// regardless of country (E.164 bounds).
const (
	minPhoneDigits = 7
	maxPhoneDigits = 15
)

var nonDigits = regexp.MustCompile(`\D`)

// countryPhonePatterns maps a calling code to the exact digit-count shape of
// a national number (digits remaining after the code is stripped off by the
// dialer UI). Numbers for codes without an entry only get the generic checks.
var countryPhonePatterns = map[string]*regexp.Regexp{
	"+1":   regexp.MustCompile(`^\d{10}$`),    // US/Canada
	"+44":  regexp.MustCompile(`^\d{10}$`),    // UK
	"+33":  regexp.MustCompile(`^\d{9}$`),     // France
	"+49":  regexp.MustCompile(`^\d{10,11}$`), // Germany
	"+91":  regexp.MustCompile(`^\d{10}$`),    // India
	"+222": regexp.MustCompile(`^\d{8}$`),     // Mauritania
}

// CleanPhone strips everything but digits. If the number was entered with
// the country code inline (e.g. "+1 555 123 4567"), the code's digits are
// removed so the remainder is the national number.
func CleanPhone(raw, countryCode string) string {
	digits := nonDigits.ReplaceAllString(raw, "")
	if code := nonDigits.ReplaceAllString(countryCode, ""); code != "" {
		if strings.HasPrefix(raw, "+") && strings.HasPrefix(digits, code) && len(digits) > len(code) {
			digits = digits[len(code):]
		}
	}
	return digits
}

// ValidatePhone checks a raw phone number against the selected country
// calling code. It is safe to call on every keystroke: it never panics and
// a nil return means the number is acceptable.
func ValidatePhone(raw, countryCode string) error {
	digits := CleanPhone(raw, countryCode)

	if len(digits) < minPhoneDigits {
		return ErrPhoneTooShort
	}
	if len(digits) > maxPhoneDigits {
		return ErrPhoneTooLong
	}
	if repeatedDigit(digits) {
		return ErrPhoneImplausible
	}
	if pattern, ok := countryPhonePatterns[strings.TrimSpace(countryCode)]; ok {
		if !pattern.MatchString(digits) {
			return ErrPhoneCountryFormat
		}
	}
	return nil
}

// repeatedDigit reports whether the number is a single digit repeated,
// which covers the all-zero case.
func repeatedDigit(digits string) bool {
	if digits == "" {
		return false
	}
	first := digits[0]
	for i := 1; i < len(digits); i++ {
		if digits[i] != first {
			return false
		}
	}
	return true
}
