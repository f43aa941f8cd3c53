package theme

import (
	"testing"

	"github.com/muesli/termenv"
)

func TestByNameFallsBack(t *testing.T) {
	if got := ByName("canopy").Name; got != "canopy" {
		t.Fatalf("ByName(canopy) = %q", got)
	}
	if got := ByName("nope").Name; got != FlexokiDark.Name {
		t.Fatalf("ByName(nope) = %q, want %q", got, FlexokiDark.Name)
	}
}

func TestForProfile(t *testing.T) {
	tests := []struct {
		profile termenv.Profile
		want    string
	}{
		{termenv.TrueColor, "canopy"},
		{termenv.ANSI256, "canopy"},
		{termenv.ANSI, "terminal"},
		{termenv.Ascii, "terminal"},
	}
	for _, tt := range tests {
		if got := ForProfile(Canopy, tt.profile).Name; got != tt.want {
			t.Fatalf("ForProfile(canopy, %v) = %q, want %q", tt.profile, got, tt.want)
		}
	}
}

func TestNamesMatchesAll(t *testing.T) {
	names := Names()
	if len(names) != len(All) {
		t.Fatalf("len(Names) = %d, want %d", len(names), len(All))
	}
	for i, n := range names {
		if n != All[i].Name {
			t.Fatalf("Names[%d] = %q, want %q", i, n, All[i].Name)
		}
	}
}
