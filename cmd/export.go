package cmd

import (
	"fmt"
	"os"

	"github.com/theirongolddev/footprint/internal/export"

	"github.com/spf13/cobra"
)

var flagExportFormat string

var exportCmd = &cobra.Command{
	Use:   "export [output]",
	Short: "Export the derived state to an XLSX workbook or JSON",
	Long: "Export writes the rollups, budget comparison and projection of one payload.\n" +
		"The format follows --format, else the output extension; '-' writes to stdout.",
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&flagExportFormat, "format", "", "xlsx or json")
	rootCmd.AddCommand(exportCmd)
}

func runExport(_ *cobra.Command, args []string) error {
	d, df, err := loadPayload()
	if err != nil {
		return err
	}

	out := ""
	if len(args) == 1 {
		out = args[0]
	}

	format := export.FormatXLSX
	switch {
	case flagExportFormat != "":
		if format, err = export.ParseFormat(flagExportFormat); err != nil {
			return err
		}
	case out != "" && out != "-":
		format = export.FormatFromPath(out)
	}
	if out == "" {
		out = statementLabel(d, df) + "." + string(format)
	}

	if out == "-" {
		return export.Write(os.Stdout, d, format)
	}

	f, err := os.Create(out) //nolint:gosec // output path chosen by the user
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	if err := export.Write(f, d, format); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", out, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", out, err)
	}

	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Wrote %s\n", out)
	}
	return nil
}
