package util

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jacoelho/banking/iban"
)

var (
	ErrIBANInvalid = errors.New("iban is invalid")
	ErrIBANCountry = errors.New("iban country is not supported")
)

// SEPA countries partners may be paid out to.
var payoutCountries = map[string]bool{
	"AT": true, "BE": true, "BG": true, "CH": true, "CY": true, "CZ": true, "DE": true,
	"DK": true, "EE": true, "ES": true, "FI": true, "FR": true, "GB": true, "GR": true,
	"HR": true, "HU": true, "IE": true, "IS": true, "IT": true, "LI": true, "LT": true,
	"LU": true, "LV": true, "MC": true, "MT": true, "NL": true, "NO": true, "PL": true,
	"PT": true, "RO": true, "SE": true, "SI": true, "SK": true, "SM": true,
}

// NormalizeIBAN removes spaces and upper-cases the value.
func NormalizeIBAN(value string) string {
	return strings.ToUpper(strings.Join(strings.Fields(value), ""))
}

// ValidateIBAN checks the ISO 13616 structure and checksum, then that the
// account sits in a payout country.
func ValidateIBAN(value string) error {
	s := NormalizeIBAN(value)
	if err := iban.Validate(s); err != nil {
		return fmt.Errorf("%w: %v", ErrIBANInvalid, err)
	}
	if !payoutCountries[s[:2]] {
		return ErrIBANCountry
	}
	return nil
}

// MaskIBAN keeps the country code and the last four characters.
func MaskIBAN(value string) string {
	s := NormalizeIBAN(value)
	if len(s) <= 6 {
		return s
	}
	return s[:2] + strings.Repeat("*", len(s)-6) + s[len(s)-4:]
}
