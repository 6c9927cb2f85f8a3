package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var frPrinter = message.NewPrinter(language.French)

// FormatEUR renders an amount as a French-locale Euro string, e.g.
// "12 345,00 €".
func FormatEUR(amount decimal.Decimal) string {
	f, _ := amount.Round(2).Float64()
	return frPrinter.Sprintf("%.2f €", f)
}
