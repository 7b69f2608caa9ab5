package core

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultCountryCode is prefixed to phone numbers that arrive without one
// (Brazilian numbers in the historical data set).
const DefaultCountryCode = "55"

// CleanPhone strips everything but digits from a phone number.
func CleanPhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizePhone cleans a phone number to its stored 10-11 digit form.
// Returns an error when the digit count is out of range.
func NormalizePhone(phone string) (string, error) {
	cleaned := CleanPhone(phone)
	if len(cleaned) < 10 || len(cleaned) > 11 {
		return "", fmt.Errorf("%w: phone must have 10 or 11 digits, got %d", ErrInvalid, len(cleaned))
	}
	return cleaned, nil
}

// FormatPhone renders a normalized phone in display form:
// (##) #####-#### for 11 digits, (##) ####-#### for 10. Anything else is
// returned unchanged.
func FormatPhone(phone string) string {
	cleaned := CleanPhone(phone)
	switch len(cleaned) {
	case 11:
		return fmt.Sprintf("(%s) %s-%s", cleaned[:2], cleaned[2:7], cleaned[7:])
	case 10:
		return fmt.Sprintf("(%s) %s-%s", cleaned[:2], cleaned[2:6], cleaned[6:])
	default:
		return phone
	}
}

// InternationalPhone cleans a phone number and prefixes the country code when
// it is missing. A leading trunk zero on an 11 digit number is replaced by
// the country code.
func InternationalPhone(phone, countryCode string) string {
	cleaned := CleanPhone(phone)
	if cleaned == "" {
		return ""
	}
	if len(cleaned) == 11 && strings.HasPrefix(cleaned, "0") {
		return countryCode + cleaned[1:]
	}
	if strings.HasPrefix(cleaned, countryCode) && len(cleaned) > 11 {
		return cleaned
	}
	return countryCode + cleaned
}

// BuildWhatsAppLinks builds one wa.me deep link per phone, all carrying the
// same URL-encoded message. Phones that clean to nothing are skipped.
func BuildWhatsAppLinks(phones []string, message, countryCode string) []string {
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}
	encoded := url.QueryEscape(message)

	var links []string
	for _, phone := range phones {
		intl := InternationalPhone(phone, countryCode)
		if intl == "" {
			continue
		}
		links = append(links, fmt.Sprintf("https://wa.me/%s?text=%s", intl, encoded))
	}
	return links
}
