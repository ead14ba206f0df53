// Package currency formats money amounts for display. It is a presentation
// concern; quote calculations never depend on it.
package currency

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Default is the display currency used when none is configured.
const Default = "PKR"

var ErrUnknownCurrency = errors.New("currency: unknown ISO 4217 code")

var symbols = map[string]string{
	"PKR": "Rs ",
	"USD": "$",
}

var printer = message.NewPrinter(language.English)

// Validate normalizes code and reports whether it is a known ISO 4217 code.
func Validate(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = Default
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownCurrency, code)
	}
	return unit.String(), nil
}

// Format renders amount in the given currency, e.g. "Rs 1,150,000" or
// "$1,234.50". The amount is rounded half-up to the currency's cash digits.
// An empty code uses Default.
func Format(amount float64, code string) (string, error) {
	iso, err := Validate(code)
	if err != nil {
		return "", err
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}
	unit := currency.MustParseISO(iso)
	scale, _ := currency.Cash.Rounding(unit)

	d := decimal.NewFromFloat(amount).Round(int32(scale))
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	sym, ok := symbols[iso]
	if !ok {
		sym = iso + " "
	}
	digits := printer.Sprint(number.Decimal(d.InexactFloat64(), number.Scale(scale)))
	return sign + sym + digits, nil
}

// MustFormat is like Format but falls back to the bare number on an unknown
// currency code.
func MustFormat(amount float64, code string) string {
	s, err := Format(amount, code)
	if err != nil {
		return printer.Sprint(number.Decimal(amount, number.Scale(0)))
	}
	return s
}
