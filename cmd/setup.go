package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/footprint/internal/config"
	"github.com/theirongolddev/footprint/internal/source"
	"github.com/theirongolddev/footprint/internal/tui/theme"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

// setupValues holds the form fields as strings so huh inputs can bind to them.
type setupValues struct {
	payloadDir string
	baseURL    string
	token      string
	top        string
	theme      string
	autoReload bool
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()

	v := setupValues{
		payloadDir: config.PayloadDir(cfg),
		baseURL:    cfg.Remote.BaseURL,
		token:      cfg.Remote.APIToken,
		top:        strconv.Itoa(topN(cfg)),
		theme:      cfg.Appearance.Theme,
		autoReload: cfg.General.AutoReload,
	}

	form := newSetupForm(&v)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup cancelled, nothing saved.")
			return nil
		}
		return fmt.Errorf("setup form: %w", err)
	}

	applySetup(&cfg, v)
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	if files, err := source.ScanDir(cfg.General.PayloadDir); err == nil {
		fmt.Printf("  Found %d payloads in %s\n", len(files), cfg.General.PayloadDir)
	}
	fmt.Printf("  Saved to %s\n", config.Path())
	fmt.Println("  Run `footprint setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}

func newSetupForm(v *setupValues) *huh.Form {
	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, name := range theme.Names() {
		themeOpts = append(themeOpts, huh.NewOption(name, name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to footprint").
				Description("A few settings for reading analysis payloads."),
			huh.NewInput().
				Title("Payload directory").
				Description("Where analysis payload JSON files are kept.").
				Value(&v.payloadDir).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Subcategories to chart").
				Value(&v.top).
				Validate(validatePositiveInt),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Analysis backend URL").
				Description("Used by `footprint fetch`. Leave blank to skip.").
				Value(&v.baseURL),
			huh.NewInput().
				Title("API token").
				EchoMode(huh.EchoModePassword).
				Value(&v.token),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&v.theme),
			huh.NewConfirm().
				Title("Reload the dashboard when the payload changes?").
				Value(&v.autoReload),
		),
	)
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return errors.New("enter a positive number")
	}
	return nil
}

// applySetup copies validated form values into cfg.
func applySetup(cfg *config.Config, v setupValues) {
	cfg.General.PayloadDir = strings.TrimSpace(v.payloadDir)
	if n, err := strconv.Atoi(strings.TrimSpace(v.top)); err == nil && n > 0 {
		cfg.General.TopSubcategories = n
	}
	cfg.General.AutoReload = v.autoReload
	cfg.Remote.BaseURL = strings.TrimSpace(v.baseURL)
	cfg.Remote.APIToken = strings.TrimSpace(v.token)
	cfg.Appearance.Theme = theme.ByName(v.theme).Name
}
