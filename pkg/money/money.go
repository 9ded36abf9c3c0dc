// Package money formats incident values as localized currency text
package money

import (
	"fmt"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	DefaultLocale   = "pt-BR"
	DefaultCurrency = "BRL"
)

// Formatter renders amounts for one locale and currency, eg: "R$ 1.234,50" for pt-BR/BRL
type Formatter struct {
	printer *message.Printer
	unit    currency.Unit
	symbol  string
}

// NewFormatter parses a BCP 47 locale and an ISO 4217 currency code. Empty values fall
// back to the defaults.
func NewFormatter(locale, code string) (*Formatter, error) {
	if locale == "" {
		locale = DefaultLocale
	}
	if code == "" {
		code = DefaultCurrency
	}

	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("money.NewFormatter(): invalid locale %q: %v", locale, err)
	}

	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("money.NewFormatter(): invalid currency %q: %v", code, err)
	}

	p := message.NewPrinter(tag)
	symbol := strings.TrimSpace(p.Sprint(currency.NarrowSymbol(unit)))
	if symbol == "" {
		symbol = unit.String()
	}

	return &Formatter{printer: p, unit: unit, symbol: symbol}, nil
}

// WithSymbol replaces the currency symbol taken from the locale data
func (f *Formatter) WithSymbol(symbol string) *Formatter {
	if symbol == "" {
		return f
	}
	c := *f
	c.symbol = symbol
	return &c
}

func (f *Formatter) Symbol() string {
	return f.symbol
}

// Format returns the amount with the currency symbol and locale digit grouping. A
// negative amount carries its sign before the symbol, eg: "-R$ 10,00".
func (f *Formatter) Format(v float64) string {
	scale, _ := currency.Standard.Rounding(f.unit)

	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return sign + f.symbol + " " + f.printer.Sprintf("%.*f", scale, v)
}
