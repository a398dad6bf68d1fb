package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/alnah/go-chapterize/internal/analyze"
	"github.com/alnah/go-chapterize/internal/apierr"
	"github.com/alnah/go-chapterize/internal/cli"
	"github.com/alnah/go-chapterize/internal/download"
	"github.com/alnah/go-chapterize/internal/interrupt"
	"github.com/alnah/go-chapterize/internal/lang"
	"github.com/alnah/go-chapterize/internal/media"
	"github.com/alnah/go-chapterize/internal/store"
	"github.com/alnah/go-chapterize/internal/template"
	"github.com/alnah/go-chapterize/internal/tools"
	"github.com/alnah/go-chapterize/internal/ytapi"
)

// Injected at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// Exit codes.
const (
	ExitOK          = 0
	ExitGeneral     = 1
	ExitUsage       = 2
	ExitSetup       = 3
	ExitValidation  = 4
	ExitAcquisition = 5
	ExitTranscode   = 6
	ExitAnalysis    = 7
	ExitInterrupt   = interrupt.ExitInterrupt
)

func main() {
	// Load .env file if present (ignore error if missing).
	_ = godotenv.Load()

	handler, ctx := interrupt.NewHandler(context.Background())
	defer handler.Stop()

	env := cli.DefaultEnv()

	rootCmd := &cobra.Command{
		Use:     "chapterize",
		Short:   "Download, analyze, and chapterize long-form video",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		// Silence Cobra's default error/usage printing; we handle it ourselves.
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.AddCommand(cli.ProcessCmd(env))
	rootCmd.AddCommand(cli.DownloadCmd(env))
	rootCmd.AddCommand(cli.PlaylistCmd(env))
	rootCmd.AddCommand(cli.TranscriptCmd(env))
	rootCmd.AddCommand(cli.AnalyzeCmd(env))
	rootCmd.AddCommand(cli.ChaptersCmd(env))
	rootCmd.AddCommand(cli.FormatCmd(env))
	rootCmd.AddCommand(cli.CoursesCmd(env))

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps errors to exit codes so scripts can branch on the kind
// of failure.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	// Interrupt (Ctrl+C) cancels the command context.
	if errors.Is(err, context.Canceled) {
		return ExitInterrupt
	}

	// Usage errors: Cobra flag/arg parsing errors. Cobra doesn't expose
	// typed errors, so known message patterns are the only handle.
	if isCobraUsageError(err) {
		return ExitUsage
	}

	// Setup errors: missing binaries or credentials.
	if errors.Is(err, tools.ErrNotFound) || errors.Is(err, apierr.ErrNotConfigured) {
		return ExitSetup
	}

	// Validation errors: bad input before any real work starts.
	if errors.Is(err, cli.ErrFileNotFound) || errors.Is(err, cli.ErrNotAPlaylist) ||
		errors.Is(err, cli.ErrOutputExists) || errors.Is(err, lang.ErrInvalid) ||
		errors.Is(err, template.ErrUnknown) || errors.Is(err, analyze.ErrUnknownMode) ||
		errors.Is(err, ytapi.ErrBadVideoURL) || errors.Is(err, store.ErrNotFound) {
		return ExitValidation
	}

	// Acquisition errors: probing or downloading the source failed.
	var acqErr *download.AcquisitionError
	if errors.As(err, &acqErr) || errors.Is(err, download.ErrProbeFailed) ||
		errors.Is(err, download.ErrNoTranscript) {
		return ExitAcquisition
	}

	// Transcode errors: ffmpeg work failed.
	if errors.Is(err, media.ErrExtractFailed) || errors.Is(err, media.ErrZeroDuration) {
		return ExitTranscode
	}

	// Analysis errors: provider API failures.
	if errors.Is(err, apierr.ErrRateLimit) || errors.Is(err, apierr.ErrQuotaExceeded) ||
		errors.Is(err, apierr.ErrTimeout) || errors.Is(err, apierr.ErrAuthFailed) ||
		errors.Is(err, apierr.ErrBadRequest) {
		return ExitAnalysis
	}

	return ExitGeneral
}

// cobraUsageErrorPatterns contains error message substrings that indicate
// Cobra usage errors. These patterns are stable across Cobra versions
// (tested with v1.8+).
var cobraUsageErrorPatterns = []string{
	"required flag",             // Missing required flag
	"unknown flag",              // Flag doesn't exist
	"unknown shorthand",         // Short flag doesn't exist
	"unknown command",           // Subcommand doesn't exist
	"flag needs an argument",    // Flag provided without value
	"invalid argument",          // Invalid flag value type
	"if any flags in the group", // Mutually exclusive flag violation
	"accepts ",                  // Wrong number of arguments (e.g., "accepts 1 arg(s)")
	"requires at least",         // Too few arguments
	"requires at most",          // Too many arguments
}

// isCobraUsageError checks if an error is a Cobra usage/parsing error.
func isCobraUsageError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := err.Error()
	for _, pattern := range cobraUsageErrorPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}
