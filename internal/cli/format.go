package cli

import (
	"fmt"
	"strings"
	"time"

	"options-dashboard/pkg/utils"
)

// FormatPrice formats a stock or strike price in dollars.
func FormatPrice(price float64) string {
	return utils.FormatCurrency(price)
}

// FormatDateTime formats a timestamp in local time.
func FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("02-Jan-2006 15:04:05")
}

// FormatDate formats a date.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02-Jan-2006")
}

// FormatBreakevens lists breakeven prices, or "none".
func FormatBreakevens(prices []float64) string {
	if len(prices) == 0 {
		return "none"
	}
	parts := make([]string, len(prices))
	for i, p := range prices {
		parts[i] = FormatPrice(p)
	}
	return strings.Join(parts, ", ")
}

// FormatMultiplier describes the contract sizing of a curve.
func FormatMultiplier(contracts, sharesPerContract int) string {
	return fmt.Sprintf("%d x %d shares", contracts, sharesPerContract)
}

// TruncateString truncates a string to max length with ellipsis.
func TruncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// PadLeft pads a string to the left.
func PadLeft(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return strings.Repeat(" ", length-len(s)) + s
}
