package cmd

import (
	"fmt"
	"time"

	"github.com/theirongolddev/footprint/internal/tui"
	"github.com/theirongolddev/footprint/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var flagTUINoReload bool

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	tuiCmd.Flags().BoolVar(&flagTUINoReload, "no-reload", false, "Do not reload when the payload file changes")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()
	theme.SetActive(cfg.Appearance.Theme)

	// Background fills need real color codes; lipgloss may otherwise pick a
	// lower profile when stdout is probed before the alt screen starts.
	if termenv.EnvColorProfile() != termenv.Ascii {
		lipgloss.SetColorProfile(termenv.TrueColor)
	}

	app := tui.NewApp(tui.Options{
		PayloadPath:      flagFile,
		DataDir:          dataDir(cfg),
		Pipeline:         pipelineOptions(cfg),
		TopSubcategories: topN(cfg),
		AutoReload:       cfg.General.AutoReload && !flagTUINoReload,
		ReloadInterval:   2 * time.Second,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
