// Package cli is the presentation collaborator: it translates flags and
// signals into core calls and renders progress events. All processing
// semantics live behind the bootstrap App.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"website-cleaner/internal/bootstrap"
	"website-cleaner/internal/config"
	"website-cleaner/internal/diagnostics"
	"website-cleaner/internal/domain"
	"website-cleaner/internal/jobs"
)

var (
	flagOutDir   string
	flagBaseName string
	flagFormat   string
	flagThreads  int
	flagChunk    int
	flagPattern  string
	flagTitle    []string
	flagWebsite  []string
	flagLogFile  string
	flagVerbose  bool
	flagPreview  bool
	flagOpen     bool
	flagReuse    bool
)

var rootCmd = &cobra.Command{
	Use:   "website-cleaner [flags] FILE...",
	Short: "Validate website columns in tabular files and emit cleaned copies",
	Long: `website-cleaner streams CSV/XLSX files in bounded chunks, finds the
website column by approximate header matching, validates every value
(well-formed URL by default, or a custom pattern), and writes a cleaned
copy containing only the rows that pass.

Files are processed in parallel under a configurable worker count.
Press Ctrl-C to stop: workers finish their current chunk and no partial
output is left at any final path.

Examples:
  website-cleaner --out ./cleaned contacts.csv partners.xlsx
  website-cleaner --pattern '^https?://.*' --threads 8 leads.csv
  website-cleaner --preview leads.csv`,
	Args:          cobra.MinimumNArgs(1),
	RunE:          runClean,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&flagOutDir, "out", "o", "", "output directory (default from settings)")
	f.StringVar(&flagBaseName, "base-name", "", "output base name (default from settings)")
	f.StringVar(&flagFormat, "format", "", "output format: csv or xlsx (default from settings)")
	f.IntVarP(&flagThreads, "threads", "t", 0, "worker count (default from settings)")
	f.IntVar(&flagChunk, "chunk-size", 0, "rows per chunk (default from settings)")
	f.StringVarP(&flagPattern, "pattern", "p", "", "custom validation regex instead of the URL check")
	f.BoolVar(&flagReuse, "reuse-pattern", false, "validate with the pattern saved from the previous run")
	f.StringSliceVar(&flagTitle, "title-aliases", nil, "header names treated as the title column")
	f.StringSliceVar(&flagWebsite, "website-aliases", nil, "header names treated as the website column")
	f.StringVar(&flagLogFile, "log-file", "app.log", "JSON log file path")
	f.BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
	f.BoolVar(&flagPreview, "preview", false, "show each file's header and first rows, then exit")
	f.BoolVar(&flagOpen, "open", false, "open each cleaned file with the default application")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func runClean(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	logger, closeLog := config.SetupLogger(flagLogFile, level)
	defer closeLog()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("resolve user home: %w", err)
	}
	store := config.NewJSONStore(filepath.Join(homeDir, ".website-cleaner", "settings.json"))

	app, err := bootstrap.New(store, logger)
	if err != nil {
		return err
	}
	applyOverrides(cmd, &app.Settings)

	if flagPreview {
		return runPreview(cmd, app, args)
	}

	report := diagnostics.NewChecker().Run(args, app.Settings.OutputDir)
	if report.HasFailures {
		for _, item := range report.Items {
			if item.Status == domain.DiagnosticStatusFail {
				fmt.Fprintf(cmd.ErrOrStderr(), "preflight: %s", item.Message)
				if item.Hint != "" {
					fmt.Fprintf(cmd.ErrOrStderr(), " (%s)", item.Hint)
				}
				fmt.Fprintln(cmd.ErrOrStderr())
			}
		}
		return fmt.Errorf("preflight checks failed")
	}

	if err := app.SaveSettings(app.Settings); err != nil {
		logger.Warn("settings not persisted", "error", err)
	}

	// Display names for event rendering, filled as jobs are submitted.
	names := make(map[string]string, len(args))
	app.SetEventSink(func(e jobs.Event) {
		fmt.Fprintln(cmd.OutOrStdout(), formatEvent(e, names[e.JobID]))
	})

	validation, err := resolveValidation(flagPattern, flagReuse, app.Settings.LastPattern)
	if err != nil {
		return err
	}

	if err := app.Start(app.Settings.NumThreads); err != nil {
		return err
	}

	for _, input := range args {
		spec := domain.JobSpec{
			InputPath: input,
			OutputPath: bootstrap.BuildOutputPath(
				app.Settings.OutputDir,
				app.Settings.OutputBaseName,
				app.Settings.OutputFormat,
				input,
			),
			ChunkSize:  app.Settings.ChunkSize,
			Validation: validation,
		}

		id, err := app.Submit(spec)
		if err != nil {
			app.Stop()
			return fmt.Errorf("submit %s: %w", input, err)
		}
		names[id] = filepath.Base(input)
	}
	app.CloseIntake()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	watchDone := make(chan struct{})
	go watchInterrupt(sigCh, watchDone, func() {
		fmt.Fprintln(cmd.ErrOrStderr(), "stop requested, finishing current chunks...")
		app.Stop()
	})

	app.Wait()
	close(watchDone)

	failed := 0
	for _, job := range app.Jobs() {
		if job.State == domain.JobStateFailed {
			failed++
		}
		if flagOpen && job.State == domain.JobStateCompleted {
			if err := app.OpenOutput(job.ID); err != nil {
				logger.Warn("open output failed", "job", job.ID, "error", err)
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d jobs failed", failed, len(args))
	}
	return nil
}

// runPreview prints each file's header and first rows.
func runPreview(cmd *cobra.Command, app *bootstrap.App, args []string) error {
	for _, input := range args {
		header, rows, err := app.Preview(input, 5)
		if err != nil {
			return fmt.Errorf("preview %s: %w", input, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s\n  %s\n", input, strings.Join(header, " | "))
		for _, row := range rows {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", strings.Join(row, " | "))
		}
	}
	return nil
}

// applyOverrides copies explicitly-set flags onto the persisted settings.
func applyOverrides(cmd *cobra.Command, settings *domain.Settings) {
	f := cmd.Flags()
	if f.Changed("out") {
		settings.OutputDir = flagOutDir
	}
	if f.Changed("base-name") {
		settings.OutputBaseName = flagBaseName
	}
	if f.Changed("format") {
		settings.OutputFormat = flagFormat
	}
	if f.Changed("threads") {
		settings.NumThreads = flagThreads
	}
	if f.Changed("chunk-size") {
		settings.ChunkSize = flagChunk
	}
	if f.Changed("title-aliases") {
		settings.TitleAliases = flagTitle
	}
	if f.Changed("website-aliases") {
		settings.WebsiteAliases = flagWebsite
	}
	if f.Changed("pattern") {
		settings.LastPattern = flagPattern
	}
}

// resolveValidation picks the validation mode for this run. An explicit
// --pattern wins; --reuse-pattern falls back to the pattern persisted
// from the previous run.
func resolveValidation(pattern string, reuseLast bool, lastPattern string) (domain.ValidationConfig, error) {
	if pattern != "" {
		return domain.ValidationConfig{
			Mode:    domain.ValidationModePattern,
			Pattern: pattern,
		}, nil
	}
	if reuseLast {
		if lastPattern == "" {
			return domain.ValidationConfig{}, fmt.Errorf("no saved pattern to reuse")
		}
		return domain.ValidationConfig{
			Mode:    domain.ValidationModePattern,
			Pattern: lastPattern,
		}, nil
	}
	return domain.ValidationConfig{Mode: domain.ValidationModeDefault}, nil
}

// watchInterrupt calls stop on the first signal and returns as soon as
// either a signal arrives or done is closed, so the watcher goroutine
// never outlives the run.
func watchInterrupt(sigCh <-chan os.Signal, done <-chan struct{}, stop func()) {
	select {
	case <-sigCh:
		stop()
	case <-done:
	}
}

// formatEvent renders one progress event as a log line for the terminal.
func formatEvent(e jobs.Event, name string) string {
	if name == "" {
		name = e.JobID
	}

	switch e.Type {
	case jobs.EventTypeChunk:
		return fmt.Sprintf("[%s] processed %d rows (%d total)", name, e.RowsProcessed, e.TotalRows)
	case jobs.EventTypeCompleted:
		return fmt.Sprintf("[%s] completed: kept %d of %d rows (%d row errors) -> %s",
			name, e.RowsKept, e.TotalRows, e.RowErrors, e.OutputPath)
	case jobs.EventTypeFailed:
		return fmt.Sprintf("[%s] failed: %s", name, e.Message)
	case jobs.EventTypeCancelled:
		return fmt.Sprintf("[%s] cancelled after %d rows", name, e.TotalRows)
	default:
		return fmt.Sprintf("[%s] %s", name, e.Message)
	}
}
