package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/theirongolddev/footprint/internal/model"
	"github.com/theirongolddev/footprint/internal/source"
	"github.com/theirongolddev/footprint/internal/tui/components"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

const testPayload = `{
  "statement_id": "stmt-42",
  "summary": {
    "Food": {"Groceries": {"amount": 100, "emission": 10}},
    "Travel": {"Fuel": {"amount": 60, "emission": 30}}
  },
  "totals": {"total_allotted_emission": 30, "total_actual_emission": 40},
  "budget_comparison_by_category": {
    "Travel": {"budgeted_kg": 20, "actual_kg": 30, "delta_kg": 10, "delta_pct": 50, "status": "over"}
  },
  "transactions_count": 12
}`

func writePayload(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stmt.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func update(t *testing.T, a App, msg tea.Msg) App {
	t.Helper()
	m, _ := a.Update(msg)
	app, ok := m.(App)
	if !ok {
		t.Fatalf("Update returned %T", m)
	}
	return app
}

func loadedApp(t *testing.T) App {
	t.Helper()
	a := NewApp(Options{PayloadPath: writePayload(t, testPayload)})
	a = update(t, a, tea.WindowSizeMsg{Width: 120, Height: 40})
	return update(t, a, load(a.opts))
}

func TestTabAtXMatchesTabWidths(t *testing.T) {
	for active := range components.Tabs {
		a := App{activeTab: active}
		pos := 0
		for i, tab := range components.Tabs {
			w := components.TabVisualWidth(tab, i == active)
			if got := a.tabAtX(pos + w/2); got != i {
				t.Fatalf("active=%d x=%d -> tab=%d, want %d", active, pos+w/2, got, i)
			}
			pos += w + 1
		}
		if got := a.tabAtX(pos + 5); got != -1 {
			t.Fatalf("tabAtX past the last tab = %d, want -1", got)
		}
	}
}

func TestLoad(t *testing.T) {
	msg := load(Options{PayloadPath: writePayload(t, testPayload)})
	if msg.Err != nil {
		t.Fatalf("load: %v", msg.Err)
	}
	if msg.Derived.StatementID != "stmt-42" {
		t.Errorf("StatementID = %q, want stmt-42", msg.Derived.StatementID)
	}
	if got := msg.Derived.Projection.Totals.Actual; got != 40 {
		t.Errorf("Actual = %v, want 40", got)
	}
	if len(msg.Derived.Recommendations) != 1 {
		t.Errorf("recommendations = %d, want 1", len(msg.Derived.Recommendations))
	}
}

func TestLoad_MissingDir(t *testing.T) {
	msg := load(Options{DataDir: filepath.Join(t.TempDir(), "nope")})
	if msg.Err == nil {
		t.Fatal("load on missing dir: want error")
	}
}

func TestLoadedMsgReplacesState(t *testing.T) {
	a := loadedApp(t)
	if !a.hasState || a.derived.StatementID != "stmt-42" {
		t.Fatalf("state not loaded: %+v", a.derived)
	}

	next := model.DerivedState{StatementID: "stmt-43"}
	a = update(t, a, LoadedMsg{Derived: next, File: source.DiscoveredFile{Path: "x.json"}})
	if a.derived.StatementID != "stmt-43" || len(a.derived.Categories) != 0 {
		t.Fatalf("derived = %+v, want wholesale replacement", a.derived)
	}
}

func TestFailedReloadKeepsState(t *testing.T) {
	a := loadedApp(t)
	a = update(t, a, LoadedMsg{Err: errors.New("boom")})
	if !a.hasState || a.derived.StatementID != "stmt-42" {
		t.Fatal("failed reload dropped the displayed state")
	}
	if !strings.Contains(a.sourceLabel(), "reload failed") {
		t.Errorf("sourceLabel = %q, want reload failure note", a.sourceLabel())
	}
}

func TestInitialFailureShowsError(t *testing.T) {
	a := NewApp(Options{DataDir: t.TempDir()})
	a = update(t, a, tea.WindowSizeMsg{Width: 100, Height: 30})
	a = update(t, a, load(a.opts))
	if a.hasState {
		t.Fatal("hasState after failed load")
	}
	if view := ansi.Strip(a.View()); !strings.Contains(view, "Could not load a payload") {
		t.Fatalf("view does not show the error:\n%s", view)
	}
}

func TestTabKeys(t *testing.T) {
	a := loadedApp(t)
	steps := []struct {
		key  string
		want int
	}{{"s", 1}, {"b", 2}, {"p", 3}, {"o", 0}}
	for _, st := range steps {
		a = update(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(st.key)})
		if a.activeTab != st.want {
			t.Fatalf("after %q activeTab = %d, want %d", st.key, a.activeTab, st.want)
		}
	}
	a = update(t, a, tea.KeyMsg{Type: tea.KeyRight})
	if a.activeTab != 1 {
		t.Fatalf("after right activeTab = %d, want 1", a.activeTab)
	}
	a = update(t, a, tea.KeyMsg{Type: tea.KeyLeft})
	a = update(t, a, tea.KeyMsg{Type: tea.KeyLeft})
	if a.activeTab != len(components.Tabs)-1 {
		t.Fatalf("left wraps to %d, want %d", a.activeTab, len(components.Tabs)-1)
	}
}

func TestViewsRenderDerivedValues(t *testing.T) {
	a := loadedApp(t)
	tests := []struct {
		tab  int
		want string
	}{
		{0, "Travel"},
		{1, "Groceries"},
		{2, "Over budget by 10 kg CO2"},
		{3, "Suggestions"},
	}
	for _, tt := range tests {
		a.activeTab = tt.tab
		view := ansi.Strip(a.View())
		if !strings.Contains(view, tt.want) {
			t.Fatalf("tab %d view missing %q:\n%s", tt.tab, tt.want, view)
		}
	}
}

func TestStatMsgTriggersReloadOnChange(t *testing.T) {
	a := loadedApp(t)

	same := update(t, a, statMsg{File: a.file})
	if same.reloading {
		t.Fatal("unchanged file triggered a reload")
	}

	changed := a.file
	changed.SizeBytes++
	next := update(t, a, statMsg{File: changed})
	if !next.reloading {
		t.Fatal("changed file did not trigger a reload")
	}
}

func TestViewTooNarrow(t *testing.T) {
	a := loadedApp(t)
	a = update(t, a, tea.WindowSizeMsg{Width: 60, Height: 20})
	if !strings.Contains(a.View(), "too narrow") {
		t.Fatal("narrow terminal should show a warning")
	}
}
