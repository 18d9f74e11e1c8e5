// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FormatMoney formats a dollar amount with cents and comma separators.
// e.g., 12345.6 -> "$12,345.60", -5 -> "-$5.00"
func FormatMoney(d decimal.Decimal) string {
	d = d.Round(2)
	if d.IsNegative() {
		return "-" + FormatMoney(d.Neg())
	}
	whole := d.Truncate(0)
	cents := d.Sub(whole).Shift(2).IntPart()
	return fmt.Sprintf("$%s.%02d", FormatNumber(whole.IntPart()), cents)
}

// FormatDollars is FormatMoney for a float amount.
func FormatDollars(v float64) string {
	return FormatMoney(decimal.NewFromFloat(v))
}

// FormatWholeDollars drops the cents for amounts of $1,000 or more.
func FormatWholeDollars(v float64) string {
	d := decimal.NewFromFloat(v)
	if d.Abs().GreaterThanOrEqual(decimal.NewFromInt(1000)) {
		s := FormatMoney(d)
		return s[:len(s)-3]
	}
	return FormatMoney(d)
}

// FormatNights formats a bonus-night delta with an explicit sign.
// e.g., 2 -> "+2", -4 -> "-4", 0 -> ""
func FormatNights(n int) string {
	switch {
	case n > 0:
		return "+" + strconv.Itoa(n)
	case n < 0:
		return strconv.Itoa(n)
	default:
		return ""
	}
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a value already expressed in percent.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f)
}

// FormatSigned formats a dollar delta with an explicit sign.
func FormatSigned(v float64) string {
	if v >= 0 {
		return "+" + FormatDollars(v)
	}
	return FormatDollars(v)
}

// FormatDate renders a date as "Jan 02, 2006"; the zero time is "-".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("Jan 02, 2006")
}

// FormatShortDate renders a date as ISO "2006-01-02".
func FormatShortDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

// Truncate shortens s to n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
