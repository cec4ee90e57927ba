package cli

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var amountPrinter = message.NewPrinter(language.English)

// formatAmount renders a deal amount with digit grouping, e.g.
// "125,000.00".
func formatAmount(v float64) string {
	return amountPrinter.Sprintf("%.2f", v)
}

// shortID trims server UUIDs for table output.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
