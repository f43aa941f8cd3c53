// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
)

// FormatAmount formats a spend amount with thousands separators and two decimals.
// e.g., 1234.5 -> "1,234.50"
func FormatAmount(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}

// FormatKg formats an emission mass in kilograms.
// e.g., 1234.56 -> "1,234.6 kg", 8.5 -> "8.5 kg"
func FormatKg(v float64) string {
	return humanize.FormatFloat("#,###.#", v) + " kg"
}

// FormatUSD formats a dollar value. Amounts under a dollar keep three decimals
// so per-kg credit costs stay visible.
func FormatUSD(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs == 0:
		return "$0.00"
	case abs < 1:
		return fmt.Sprintf("$%.3f", v)
	default:
		return "$" + humanize.FormatFloat("#,###.##", v)
	}
}

// FormatPercent formats a value already scaled to 0-100.
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatFraction formats a 0-1 fraction as a percentage.
func FormatFraction(f float64) string {
	return fmt.Sprintf("%.0f%%", f*100)
}

// FormatDeltaKg formats a signed emission delta.
// e.g., 20 -> "+20.0 kg", -10 -> "-10.0 kg"
func FormatDeltaKg(v float64) string {
	if v >= 0 {
		return "+" + humanize.FormatFloat("#,###.#", v) + " kg"
	}
	return "-" + humanize.FormatFloat("#,###.#", -v) + " kg"
}

// FormatCount adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatCount(n int) string {
	return humanize.Comma(int64(n))
}

// FormatAgo formats a timestamp relative to now, e.g. "3 hours ago".
func FormatAgo(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}

// FormatBytes formats a file size, e.g. "4.2 kB".
func FormatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

// FormatTips joins reduction tips for a single table cell.
func FormatTips(tips []string) string {
	return strings.Join(tips, "; ")
}

// Truncate shortens s to max terminal cells, adding an ellipsis.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	return ansi.Truncate(s, max, "…")
}
