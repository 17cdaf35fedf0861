package cursorapi

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var dollarPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatCentsToDollars renders cents as a grouped en-US dollar amount, e.g. "$1,000,000.00".
func FormatCentsToDollars(cents float64) string {
	if cents < 0 {
		return "-" + dollarPrinter.Sprintf("$%.2f", -cents/100)
	}
	return dollarPrinter.Sprintf("$%.2f", cents/100)
}

// CalculateIndividualContribution is the caller's share of the pooled spend in
// percent; 0 when nothing was pooled.
func CalculateIndividualContribution(individualUsed, pooledUsed float64) float64 {
	if pooledUsed == 0 {
		return 0
	}
	return individualUsed / pooledUsed * 100
}
