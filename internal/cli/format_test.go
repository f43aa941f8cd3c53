package cli

import (
	"testing"
	"time"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{100, "100.00"},
		{1234.5, "1,234.50"},
		{1234567.891, "1,234,567.89"},
	}
	for _, tt := range tests {
		if got := FormatAmount(tt.in); got != tt.want {
			t.Errorf("FormatAmount(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatKg(t *testing.T) {
	if got := FormatKg(8.5); got != "8.5 kg" {
		t.Errorf("FormatKg(8.5) = %q, want 8.5 kg", got)
	}
	if got := FormatKg(1234.56); got != "1,234.6 kg" {
		t.Errorf("FormatKg(1234.56) = %q, want 1,234.6 kg", got)
	}
}

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{0.085, "$0.085"},
		{12.5, "$12.50"},
		{1500, "$1,500.00"},
	}
	for _, tt := range tests {
		if got := FormatUSD(tt.in); got != tt.want {
			t.Errorf("FormatUSD(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatDeltaKg(t *testing.T) {
	if got := FormatDeltaKg(20); got != "+20.0 kg" {
		t.Errorf("FormatDeltaKg(20) = %q", got)
	}
	if got := FormatDeltaKg(-10); got != "-10.0 kg" {
		t.Errorf("FormatDeltaKg(-10) = %q", got)
	}
}

func TestFormatPercentAndFraction(t *testing.T) {
	if got := FormatPercent(15); got != "15.0%" {
		t.Errorf("FormatPercent(15) = %q", got)
	}
	if got := FormatFraction(0.35); got != "35%" {
		t.Errorf("FormatFraction(0.35) = %q", got)
	}
}

func TestFormatCount(t *testing.T) {
	if got := FormatCount(1234567); got != "1,234,567" {
		t.Errorf("FormatCount = %q", got)
	}
}

func TestFormatAgo(t *testing.T) {
	if got := FormatAgo(time.Time{}); got != "never" {
		t.Errorf("FormatAgo(zero) = %q, want never", got)
	}
	if got := FormatAgo(time.Now().Add(-3 * time.Hour)); got != "3 hours ago" {
		t.Errorf("FormatAgo(-3h) = %q, want 3 hours ago", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("Restaurants", 6); got != "Resta…" {
		t.Errorf("Truncate = %q, want Resta…", got)
	}
	if got := Truncate("東京都庁舎", 5); got != "東京…" {
		t.Errorf("Truncate wide = %q, want 東京…", got)
	}
	if got := Truncate("Food", 10); got != "Food" {
		t.Errorf("Truncate short = %q", got)
	}
}
