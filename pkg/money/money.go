// Package money formatea importes para vistas HTML y cartas PDF.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// Format devuelve el importe con separador de miles y dos decimales: "$1,234.50".
func Format(d decimal.Decimal) string {
	return FormatWith(printer, d)
}

// FormatWith usa un printer concreto (otro locale).
func FormatWith(p *message.Printer, d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	if f < 0 {
		return p.Sprintf("-$%.2f", -f)
	}
	return p.Sprintf("$%.2f", f)
}
