// Package cli wires the carboncalc command tree.
package cli

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rshade/carboncalc/internal/config"
	"github.com/rshade/carboncalc/internal/logging"
	"github.com/rshade/carboncalc/internal/report"
)

// isWriterTerminal reports whether w is a terminal file.
// Other writers (like bytes.Buffer in tests) never are.
func isWriterTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// Deps are the process-level collaborators of the command tree.
type Deps struct {
	// LookupEnv reads environment overrides.
	LookupEnv func(string) (string, bool)
	// Open displays the saved chart.
	Open report.Opener
	// IsTerminal decides whether output is styled and the chart opened.
	IsTerminal func(io.Writer) bool
}

func (d Deps) withDefaults() Deps {
	if d.LookupEnv == nil {
		d.LookupEnv = os.LookupEnv
	}
	if d.Open == nil {
		d.Open = report.OpenInViewer
	}
	if d.IsTerminal == nil {
		d.IsTerminal = isWriterTerminal
	}
	return d
}

// app holds state shared between the root command and its subcommands.
type app struct {
	deps   Deps
	cfg    *config.Config
	logger zerolog.Logger
}

// NewRootCmd creates the root Cobra command for the carboncalc CLI.
func NewRootCmd(ver string) *cobra.Command {
	return NewRootCmdWithDeps(ver, Deps{})
}

// NewRootCmdWithDeps creates the root command with explicit collaborators for testability.
func NewRootCmdWithDeps(ver string, deps Deps) *cobra.Command {
	a := &app{deps: deps.withDefaults(), logger: zerolog.Nop()}
	var logResult *logging.LogPathResult
	var flags runFlags

	cmd := &cobra.Command{
		Use:     "carboncalc",
		Short:   "Estimate an annual CO2 footprint from the Base Carbone",
		Long:    "carboncalc: merge Base Carbone emission factors, ask for your yearly consumption and report the resulting CO2 emissions",
		Version: ver,
		Example: rootCmdExample,
		Args:    cobra.NoArgs,
		// Errors are printed once by main.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := config.LoadWithEnv(path, a.deps.LookupEnv)
			if err != nil {
				return err
			}
			a.cfg = cfg

			result := setupLogging(cmd, a)
			logResult = &result
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return cleanupLogging(cmd, logResult)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, flags)
		},
	}

	cmd.PersistentFlags().String("config", "", "YAML file overriding built-in settings")
	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	addRunFlags(cmd, &flags)
	cmd.AddCommand(newMergeCmd(a))

	return cmd
}

const rootCmdExample = `  # Merge the reference files, answer the questionnaire and get the report
  carboncalc

  # Reuse a previously saved combined reference table
  carboncalc --reference

  # Use other input files and keep the chart closed
  carboncalc --sample my_sample.csv --full basecarbone-v17-fr.csv --no-open

  # Only build the combined reference table
  carboncalc merge

  # Override settings from a file
  carboncalc --config carboncalc.yaml`
