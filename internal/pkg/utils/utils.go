package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

// GenerateSessionID returns a new unique p24 session id.
func GenerateSessionID() string {
	return "P24-" + strings.ReplaceAll(uuid.New().String(), "-", "")
}

// ToGrosze converts a PLN amount such as "12.50" into the integer amount of
// grosze the gateway expects ("1250"). More than two decimals is rejected.
func ToGrosze(amount string) (string, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	if !d.IsPositive() {
		return "", fmt.Errorf("%w: must be positive", ErrInvalidAmount)
	}
	grosze := d.Shift(2)
	if !grosze.Equal(grosze.Truncate(0)) {
		return "", fmt.Errorf("%w: at most two decimals", ErrInvalidAmount)
	}
	return grosze.StringFixed(0), nil
}

// FormatGrosze renders an integer grosze amount as "12.50". Input that is not
// a number is returned unchanged.
func FormatGrosze(grosze string) string {
	d, err := decimal.NewFromString(grosze)
	if err != nil {
		return grosze
	}
	return d.Shift(-2).StringFixed(2)
}
