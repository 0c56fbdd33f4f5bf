package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bamsammich/cuesplit/internal/audio"
	"github.com/bamsammich/cuesplit/internal/config"
	"github.com/bamsammich/cuesplit/internal/cuesheet"
	"github.com/bamsammich/cuesplit/internal/engine"
	"github.com/bamsammich/cuesplit/internal/event"
	"github.com/bamsammich/cuesplit/internal/stats"
	"github.com/bamsammich/cuesplit/internal/ui"
)

var version = "dev"

func main() {
	os.Exit(run())
}

// formatFlag is a custom pflag.Value that lets --format be repeated
// while validating each value as it is parsed.
type formatFlag struct {
	formats *[]engine.Format
}

var _ pflag.Value = (*formatFlag)(nil)

func (*formatFlag) String() string { return "" }
func (*formatFlag) Type() string   { return "string" }

func (f *formatFlag) Set(val string) error {
	fm, err := engine.ParseFormat(val)
	if err != nil {
		return err
	}
	*f.formats = append(*f.formats, fm)
	return nil
}

//nolint:gocyclo,revive // cyclomatic,cognitive-complexity: main CLI entry point orchestrates all flag parsing
func run() int {
	var (
		outDir      string
		formats     []engine.Format
		swap        bool
		converter   string
		workers     int
		verifyFlag  bool
		bwLimitStr  string
		encodingStr string
		keepWAV     bool
		dryRun      bool
		quiet       bool
		verbose     bool
		noProgress  bool
		logFile     string
		showVersion bool
	)

	rootCmd := &cobra.Command{
		Use:   "cuesplit [flags] <sheet.cue>",
		Short: "Split a BIN/CUE disc image into per-track files with regenerated cue sheets",
		Args: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				return nil
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				fmt.Fprintf(os.Stdout, "cuesplit %s\n", version)
				return nil
			}

			// Load optional config file.
			cfg, err := config.Load()
			if err != nil {
				slog.Warn("failed to load config", "error", err)
			}

			// Apply config defaults for flags not explicitly set on CLI.
			if err := applyConfigDefaults(cmd, cfg.Defaults,
				&formats, &converter, &workers, &verifyFlag, &bwLimitStr, &keepWAV, &swap); err != nil {
				return err
			}

			// Parse bandwidth limit.
			var bwLimit int64
			if bwLimitStr != "" {
				bwLimit, err = config.ParseSize(bwLimitStr)
				if err != nil {
					return fmt.Errorf("invalid --bwlimit: %w", err)
				}
			}

			encoding, err := cuesheet.ParseEncoding(encodingStr)
			if err != nil {
				return err
			}

			// Configure logging.
			logLevel := slog.LevelWarn
			if verbose {
				logLevel = slog.LevelDebug
			} else if !quiet {
				logLevel = slog.LevelInfo
			}
			textHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: logLevel,
			})
			var logHandler slog.Handler = textHandler
			if logFile != "" {
				lf, lfErr := os.Create(logFile)
				if lfErr != nil {
					return fmt.Errorf("open log file: %w", lfErr)
				}
				defer lf.Close()
				jsonHandler := slog.NewJSONHandler(lf, &slog.HandlerOptions{
					Level: slog.LevelDebug,
				})
				logHandler = ui.NewMultiHandler(textHandler, jsonHandler)
			}
			logger := slog.New(logHandler)
			slog.SetDefault(logger)

			if dryRun {
				slog.Info("dry run mode")
			}

			conv, err := newConverter(converter, cfg.Tools)
			if err != nil {
				return err
			}

			// No --format anywhere means produce all three sheets.
			if len(formats) == 0 {
				formats = engine.AllFormats
			}

			// Set up context with signal handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// Create stats collector.
			collector := stats.NewCollector()

			// Create events channel.
			events := make(chan event.Event, 256)

			// When --log is set, tee events through a logging goroutine
			// that writes structured records before forwarding to the presenter.
			presenterEvents := (<-chan event.Event)(events)
			if logFile != "" {
				teed := make(chan event.Event, 256)
				go func() {
					for ev := range events {
						attrs := []slog.Attr{
							slog.String("type", ev.Type.String()),
							slog.Int("track", ev.Track),
							slog.String("path", ev.Path),
							slog.Int64("size", ev.Size),
							slog.Int("worker", ev.WorkerID),
						}
						if ev.Format != "" {
							attrs = append(attrs, slog.String("format", ev.Format))
						}
						if ev.Error != nil {
							attrs = append(attrs, slog.String("error", ev.Error.Error()))
						}
						slog.LogAttrs(context.Background(), slog.LevelInfo, "cuesplit.event", attrs...)
						teed <- ev
					}
					close(teed)
				}()
				presenterEvents = teed
			}

			engineCfg := engine.Config{
				SheetPath: args[0],
				OutDir:    outDir,
				Encoding:  encoding,
				Formats:   formats,
				Swap:      swap,
				Workers:   workers,
				Verify:    verifyFlag,
				DryRun:    dryRun,
				KeepWAV:   keepWAV,
				BWLimit:   bwLimit,
				Converter: conv,
				Lossy:     audio.NewOggEnc(cfg.Tools.OggEnc, cfg.Encode.Quality()),
				Lossless:  audio.NewFlac(cfg.Tools.Flac, cfg.Encode.Level(), !keepWAV),
				Events:    events,
				Stats:     collector,
			}

			// Create presenter.
			presenter := ui.NewPresenter(ui.Config{
				Writer:     os.Stdout,
				ErrWriter:  os.Stderr,
				IsTTY:      ui.IsTTY(os.Stderr),
				Quiet:      quiet,
				Verbose:    verbose,
				NoProgress: noProgress,
				Stats:      collector,
				Workers:    workers,
				OutDir:     displayOutDir(outDir, args[0]),
			})

			slog.Debug("starting split",
				"sheet", args[0],
				"formats", len(formats),
				"workers", workers,
				"swap", swap,
				"verify", verifyFlag,
			)

			// Run presenter in background, engine in foreground.
			var presenterErr error
			var presenterWg sync.WaitGroup
			presenterWg.Add(1)
			go func() {
				defer presenterWg.Done()
				presenterErr = presenter.Run(presenterEvents)
			}()

			result := engine.Run(ctx, engineCfg)
			stop()
			close(events)
			presenterWg.Wait()
			if presenterErr != nil {
				fmt.Fprintf(os.Stderr, "presenter: %v\n", presenterErr)
			}

			if !quiet {
				summary := presenter.Summary()
				if summary != "" {
					fmt.Fprintln(os.Stderr, summary)
				}
			}

			if result.Err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", result.Err)
				return &exitError{code: 1}
			}

			return nil
		},
	}

	// Version flag handled in RunE, but also register the flag.
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "print version and exit")

	rootCmd.Flags().
		StringVarP(&outDir, "output", "o", "", "output directory (default: named after the sheet, next to it)")
	rootCmd.Flags().
		Var(&formatFlag{formats: &formats}, "format", "cue sheet format to produce: native, lossy or lossless (repeatable; default all)")
	rootCmd.Flags().
		BoolVar(&swap, "swap", false, "invert audio byte order during extraction")
	rootCmd.Flags().
		StringVar(&converter, "converter", "ffmpeg", "audio conversion backend (ffmpeg or sox)")
	rootCmd.Flags().
		IntVarP(&workers, "workers", "n", 0, "number of extraction workers (default: min(NumCPU, 4))")
	rootCmd.Flags().BoolVar(&verifyFlag, "verify", false, "verify extracted tracks against the image (BLAKE3)")
	rootCmd.Flags().
		StringVar(&bwLimitStr, "bwlimit", "", "extraction read throughput limit (e.g. 100M, 1G)")
	rootCmd.Flags().
		StringVar(&encodingStr, "sheet-encoding", "utf-8", "cue sheet text encoding (utf-8 or latin1)")
	rootCmd.Flags().BoolVar(&keepWAV, "keep-wav", false, "keep intermediate WAV files after encoding")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "compute the layout without writing anything")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable progress display")
	rootCmd.Flags().
		StringVar(&logFile, "log", "", "write structured JSON log to FILE")

	// Register subcommands.
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(docsCmd)

	if err := rootCmd.Execute(); err != nil {
		if exitErr, ok := err.(*exitError); ok {
			return exitErr.code
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	return 0
}

// applyConfigDefaults applies config file defaults for flags not explicitly set on the CLI.
func applyConfigDefaults(
	cmd *cobra.Command,
	defaults config.DefaultsConfig,
	formats *[]engine.Format,
	converter *string,
	workers *int,
	verify *bool,
	bwLimit *string,
	keepWAV *bool,
	swap *bool,
) error {
	if !cmd.Flags().Changed("format") && len(defaults.Formats) > 0 {
		for _, s := range defaults.Formats {
			f, err := engine.ParseFormat(s)
			if err != nil {
				return fmt.Errorf("config formats: %w", err)
			}
			*formats = append(*formats, f)
		}
	}
	if !cmd.Flags().Changed("converter") && defaults.Converter != nil {
		*converter = *defaults.Converter
	}
	if !cmd.Flags().Changed("workers") && defaults.Workers != nil {
		*workers = *defaults.Workers
	}
	if !cmd.Flags().Changed("verify") && defaults.Verify != nil {
		*verify = *defaults.Verify
	}
	if !cmd.Flags().Changed("bwlimit") && defaults.BWLimit != nil {
		*bwLimit = *defaults.BWLimit
	}
	if !cmd.Flags().Changed("keep-wav") && defaults.KeepWAV != nil {
		*keepWAV = *defaults.KeepWAV
	}
	if !cmd.Flags().Changed("swap") && defaults.Swap != nil {
		*swap = *defaults.Swap
	}
	return nil
}

// newConverter builds the requested audio conversion backend.
//
//nolint:ireturn // factory returns interface by design
func newConverter(name string, tools config.ToolsConfig) (audio.Converter, error) {
	switch name {
	case "ffmpeg":
		return audio.NewFFmpeg(tools.FFmpeg), nil
	case "sox":
		return audio.NewSoX(tools.SoX), nil
	}
	return nil, fmt.Errorf("unknown converter %q (use ffmpeg or sox)", name)
}

// displayOutDir mirrors the engine's output directory default so the
// presenter can trim paths before the engine reports the real one.
func displayOutDir(outDir, sheetPath string) string {
	if outDir != "" {
		return outDir
	}
	base := filepath.Base(sheetPath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(sheetPath), name)
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}
