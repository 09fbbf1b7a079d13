// Package commands holds the CLI subcommands mounted on the PocketBase root
// command.
package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lightingboq/engine"
	"lightingboq/services"
)

// EngineFactory builds the engine once the application is bootstrapped.
type EngineFactory func(ctx context.Context) (*engine.Engine, error)

type exportFlags struct {
	project string
	version int
	format  string
	out     string
}

// NewExportCommand returns the "export" subcommand, which renders one BOQ
// version to a PDF or Excel file.
func NewExportCommand(newEngine EngineFactory) *cobra.Command {
	flags := &exportFlags{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a BOQ version as PDF or Excel",
		Long: `Render a frozen BOQ version of a project to a file. Any version may be
exported, approved or not; exporting never changes it.

Examples:
  lightingboq export --project abc123 --format pdf
  lightingboq export --project abc123 --version 2 --format xlsx --out boq.xlsx
  lightingboq export --project abc123 --out - > boq.pdf`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, newEngine, flags)
		},
	}
	cmd.Flags().StringVarP(&flags.project, "project", "p", "", "Project id")
	cmd.Flags().IntVarP(&flags.version, "version", "n", 0, "Version number (default: latest)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "pdf", "Output format: pdf, xlsx")
	cmd.Flags().StringVarP(&flags.out, "out", "o", "", "Output file path (use '-' for stdout, default: version reference)")
	cmd.MarkFlagRequired("project")
	return cmd
}

func runExport(cmd *cobra.Command, newEngine EngineFactory, flags *exportFlags) error {
	format, err := engine.ParseExportFormat(flags.format)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	eng, err := newEngine(ctx)
	if err != nil {
		return fmt.Errorf("start engine: %w", err)
	}

	var v engine.BOQVersion
	if flags.version > 0 {
		v, err = eng.Version(ctx, flags.project, flags.version)
		if err != nil {
			return err
		}
	} else {
		latest, err := eng.Latest(ctx, flags.project)
		if err != nil {
			return err
		}
		if latest == nil {
			return fmt.Errorf("project %q has no BOQ versions", flags.project)
		}
		v = *latest
	}

	body, err := eng.Export(ctx, flags.project, v.Number, format)
	if err != nil {
		return fmt.Errorf("export version %d: %w", v.Number, err)
	}

	if flags.out == "-" {
		_, err := cmd.OutOrStdout().Write(body)
		return err
	}
	out := flags.out
	if out == "" {
		out = services.VersionReference("", v.ProjectID, v.Number, v.CreatedAt) + "." + string(format)
	}
	if err := os.WriteFile(out, body, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "BOQ version %d (%s) written to: %s\n", v.Number, v.Status, out)
	return nil
}
