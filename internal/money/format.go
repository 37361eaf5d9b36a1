package money

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.MustParse("en-IN"))

// Format renders a paise amount as whole rupees with Indian digit grouping.
func Format(paise int64) string {
	return printer.Sprintf("₹%d", paise/100)
}
