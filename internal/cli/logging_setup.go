package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/carboncalc/internal/logging"
)

// setupLogging configures logging based on config file, environment, and CLI flags,
// then stores the logger and a fresh trace ID in the command context.
func setupLogging(cmd *cobra.Command, a *app) logging.LogPathResult {
	loggingCfg := a.cfg.Logging

	debug, _ := cmd.Flags().GetBool("debug")
	if debug {
		loggingCfg.Level = "debug"
		loggingCfg.Format = logging.FormatConsole
		loggingCfg.File = ""
	}

	// Ensure log directory exists after all overrides have been applied.
	if loggingCfg.File != "" {
		if err := loggingCfg.EnsureLogDir(); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not create log directory: %v\n", err)
		}
	}

	var result logging.LogPathResult
	if loggingCfg.File == "" {
		result = logging.LogPathResult{Logger: logging.NewLogger(loggingCfg.ToLoggingConfig(), cmd.ErrOrStderr())}
	} else {
		result = logging.NewLoggerWithPath(loggingCfg.ToLoggingConfig())
	}

	if result.UsingFile {
		logging.PrintLogPathMessage(cmd.ErrOrStderr(), result.FilePath)
	} else if result.FallbackUsed {
		logging.PrintFallbackWarning(cmd.ErrOrStderr(), result.FallbackReason)
	}

	ctx := cmd.Context()
	traceID := logging.GetOrGenerateTraceID(ctx)
	ctx = logging.ContextWithTraceID(ctx, traceID)
	base := result.Logger.With().Str("trace_id", traceID).Logger()
	ctx = base.WithContext(ctx)
	cmd.SetContext(ctx)
	a.logger = logging.ComponentLogger(base, "cli")

	a.logger.Info().Str("command", cmd.Name()).Msg("command started")

	return result
}

// cleanupLogging closes the log file handle.
func cleanupLogging(_ *cobra.Command, logResult *logging.LogPathResult) error {
	if logResult != nil {
		return logResult.Close()
	}
	return nil
}
