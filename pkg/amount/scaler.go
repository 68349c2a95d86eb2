// Package amount converts between displayed decimal amounts and the integer
// minor units stored on the ledger.
package amount

import (
	"math/big"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Klingon-tech/mptkit/pkg/fault"
)

// MaxScale is the largest supported number of decimal places.
const MaxScale = 15

// MaxMinorUnits is the largest amount the ledger accepts (63-bit unsigned).
const MaxMinorUnits uint64 = 0x7FFFFFFFFFFFFFFF

var (
	maxMinor = new(big.Int).SetUint64(MaxMinorUnits)

	displayRe = regexp.MustCompile(`^[0-9]*\.?[0-9]*$`)
	integerRe = regexp.MustCompile(`^[0-9]+$`)
)

// ToMinorUnits returns round(display * 10^scale) as an integer string.
func ToMinorUnits(display string, scale int) (string, error) {
	d, err := parseDisplay(display, scale)
	if err != nil {
		return "", err
	}
	minor, err := scaleUp(d, scale)
	if err != nil {
		return "", err
	}
	return minor.String(), nil
}

func scaleUp(d decimal.Decimal, scale int) (*big.Int, error) {
	minor := d.Shift(int32(scale)).Round(0).BigInt()
	if minor.Cmp(maxMinor) > 0 {
		return nil, &fault.ValidationError{Field: "amount", Reason: "exceeds maximum of 9223372036854775807 minor units", Err: fault.ErrInvalidAmount}
	}
	return minor, nil
}

// ToDisplay renders minor units with exactly scale fractional digits.
func ToDisplay(minor string, scale int) (string, error) {
	if err := checkScale(scale); err != nil {
		return "", err
	}
	minor = strings.TrimSpace(minor)
	if !integerRe.MatchString(minor) {
		return "", &fault.ValidationError{Field: "amount", Reason: "minor units must be a non-negative integer", Err: fault.ErrInvalidAmount}
	}
	d, err := decimal.NewFromString(minor)
	if err != nil {
		return "", &fault.ValidationError{Field: "amount", Reason: err.Error(), Err: fault.ErrInvalidAmount}
	}
	return d.Shift(-int32(scale)).StringFixed(int32(scale)), nil
}

// Validate rejects empty, non-numeric and non-positive amounts, amounts with
// more fractional digits than scale allows, and amounts ToMinorUnits would
// refuse for exceeding MaxMinorUnits.
func Validate(display string, scale int) error {
	d, err := parseDisplay(display, scale)
	if err != nil {
		return err
	}
	if frac := fractionDigits(strings.TrimSpace(display)); frac > scale {
		return &fault.ValidationError{Field: "amount", Reason: "more decimal places than the token scale", Err: fault.ErrInvalidAmount}
	}
	if d.Sign() <= 0 {
		return &fault.ValidationError{Field: "amount", Reason: "must be positive", Err: fault.ErrInvalidAmount}
	}
	_, err = scaleUp(d, scale)
	return err
}

// ParseMinor parses an integer minor-unit string.
func ParseMinor(minor string) (decimal.Decimal, error) {
	minor = strings.TrimSpace(minor)
	if !integerRe.MatchString(minor) {
		return decimal.Zero, &fault.ValidationError{Field: "amount", Reason: "minor units must be a non-negative integer", Err: fault.ErrInvalidAmount}
	}
	return decimal.NewFromString(minor)
}

// ValidateMaximum checks an optional maximum supply given in minor units.
func ValidateMaximum(minor string) error {
	return CheckMinor("MaximumAmount", minor)
}

// CheckMinor checks that minor is a positive integer no larger than
// MaxMinorUnits. field names the offending field in the returned error.
func CheckMinor(field, minor string) error {
	if strings.TrimSpace(minor) == "" {
		return &fault.ValidationError{Field: field, Reason: "required", Err: fault.ErrInvalidAmount}
	}
	d, err := ParseMinor(minor)
	if err != nil {
		return &fault.ValidationError{Field: field, Reason: "must be an integer number of minor units", Err: fault.ErrInvalidAmount}
	}
	if d.Sign() <= 0 {
		return &fault.ValidationError{Field: field, Reason: "must be positive", Err: fault.ErrInvalidAmount}
	}
	if d.BigInt().Cmp(maxMinor) > 0 {
		return &fault.ValidationError{Field: field, Reason: "exceeds 63-bit maximum", Err: fault.ErrInvalidAmount}
	}
	return nil
}

func parseDisplay(display string, scale int) (decimal.Decimal, error) {
	if err := checkScale(scale); err != nil {
		return decimal.Zero, err
	}
	display = strings.TrimSpace(display)
	if display == "" {
		return decimal.Zero, &fault.ValidationError{Field: "amount", Reason: "required", Err: fault.ErrMissingField}
	}
	if display == "." || !displayRe.MatchString(display) {
		return decimal.Zero, &fault.ValidationError{Field: "amount", Reason: "not a decimal number", Err: fault.ErrInvalidAmount}
	}
	d, err := decimal.NewFromString(display)
	if err != nil {
		return decimal.Zero, &fault.ValidationError{Field: "amount", Reason: err.Error(), Err: fault.ErrInvalidAmount}
	}
	return d, nil
}

func checkScale(scale int) error {
	if scale < 0 || scale > MaxScale {
		return fault.Invalid("AssetScale", "must be between 0 and %d, got %d", MaxScale, scale)
	}
	return nil
}

func fractionDigits(s string) int {
	i := strings.IndexByte(s, '.')
	if i < 0 {
		return 0
	}
	return len(s) - i - 1
}
