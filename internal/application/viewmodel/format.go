package viewmodel

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Money formatea montos en la moneda y el idioma de la consola.
type Money struct {
	unit    currency.Unit
	printer *message.Printer
}

// NewMoney construye el formateador. Un código ISO desconocido cae a IDR y un
// locale inválido a inglés.
func NewMoney(code, locale string) Money {
	unit, err := currency.ParseISO(code)
	if err != nil {
		unit = currency.IDR
	}
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return Money{unit: unit, printer: message.NewPrinter(tag)}
}

// Code código ISO de la moneda.
func (m Money) Code() string { return m.unit.String() }

// Format devuelve amount con símbolo y separadores del locale, ej. "Rp 150.000".
func (m Money) Format(amount decimal.Decimal) string {
	f, _ := amount.Float64()
	return m.printer.Sprint(currency.Symbol(m.unit.Amount(f)))
}

// FormatMoney atajo de NewMoney(code, locale).Format(amount).
func FormatMoney(amount decimal.Decimal, code, locale string) string {
	return NewMoney(code, locale).Format(amount)
}

// FormatNumber agrupa miles según el locale (puntos, conteos).
func (m Money) FormatNumber(n decimal.Decimal) string {
	if n.IsInteger() {
		return m.printer.Sprintf("%d", n.IntPart())
	}
	f, _ := n.Float64()
	return m.printer.Sprintf("%.2f", f)
}
