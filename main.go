package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"crossword-scraper/config"
	"crossword-scraper/db"
	"crossword-scraper/fetcher"
	"crossword-scraper/filter"
	"crossword-scraper/harvester"
	"crossword-scraper/models"
	"crossword-scraper/notify"
	"crossword-scraper/output"
	"crossword-scraper/parser"
	"crossword-scraper/sheets"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

const (
	// ExitCodeSuccess is the exit code of a completed harvest.
	ExitCodeSuccess int = iota
	// ExitCodeRequestError is the exit code when the first request fails.
	ExitCodeRequestError
	// ExitCodeConfigError is the exit code for a flag or configuration error.
	ExitCodeConfigError
	// ExitCodeHarvestError is the exit code for any later failure.
	ExitCodeHarvestError
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error returned by the app to the process exit code.
// Errors that are not cli.ExitCoder come from flag parsing.
func exitCode(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}
	var coder cli.ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return ExitCodeConfigError
}

func newApp() *cli.App {
	return &cli.App{
		Name:  filepath.Base(os.Args[0]),
		Usage: "Download the crossword dictionary's words and definitions.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "load configuration from `FILE` (ignored if missing)",
				Value:   "config.yaml",
			},
			&cli.StringFlag{
				Name:  "url",
				Usage: "dictionary listing `URL`",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "write the words to `FILE`",
			},
			&cli.IntFlag{
				Name:  "max-pages",
				Usage: "stop after `N` pages (0 for all)",
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "fail on malformed rows instead of skipping them",
			},
			&cli.BoolFlag{
				Name:  "fold-accents",
				Usage: "fold accented letters (È to E) instead of dropping them",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log every request",
			},
		},
		HideHelpCommand: true,
		Action: func(c *cli.Context) error {
			log := newLogger(c.App.ErrWriter, c.Bool("verbose"))

			cfg, err := loadConfig(c)
			if err != nil {
				return cli.Exit(err.Error(), ExitCodeConfigError)
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
			defer stop()

			if err := run(ctx, cfg, c.App.Writer, log); err != nil {
				if errors.Is(err, harvester.ErrInitialRequest) {
					return cli.Exit(fmt.Sprintf("Request error: %v", err), ExitCodeRequestError)
				}
				log.Error().Err(err).Msg("Harvest failed")
				return cli.Exit("", ExitCodeHarvestError)
			}
			return nil
		},
	}
}

func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()
}

// loadConfig reads the config file and applies the flags on top of it
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(c.String("config"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("url") {
		cfg.Endpoint = c.String("url")
	}
	if c.IsSet("output") {
		cfg.Output = c.String("output")
	}
	if c.IsSet("max-pages") {
		cfg.MaxPages = c.Int("max-pages")
	}
	if c.IsSet("strict") {
		cfg.Parser.Strict = c.Bool("strict")
	}
	if c.IsSet("fold-accents") {
		cfg.Parser.FoldAccents = c.Bool("fold-accents")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// run harvests every page, writes the output file and feeds the optional sinks.
// Progress for the user goes to stdout, diagnostics to log.
func run(ctx context.Context, cfg *config.Config, stdout io.Writer, log zerolog.Logger) error {
	var store *db.DB
	var runID int
	if cfg.Database.Enabled {
		var err error
		store, runID, err = openStore(ctx, cfg)
		if err != nil {
			log.Warn().Err(err).Msg("Database unavailable, continuing without it")
		} else {
			defer store.Close()
		}
	}

	var notifier *notify.Telegram
	if cfg.Telegram.Token != "" && cfg.Telegram.ChatID != 0 {
		var err error
		notifier, err = notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err != nil {
			log.Warn().Err(err).Msg("Telegram notifications disabled")
		}
	}

	f := fetcher.NewCollyFetcher(cfg.Endpoint,
		fetcher.WithPagingField(cfg.Pagination.Field),
		fetcher.WithExtraFields(cfg.Pagination.ExtraFields),
		fetcher.WithUserAgent(cfg.UserAgent),
		fetcher.WithTimeout(cfg.RequestTimeout),
		fetcher.WithMaxBodySize(cfg.MaxBodySize),
		fetcher.WithLogger(log),
	)
	p := parser.NewParser(cfg.Pagination.Marker,
		parser.WithStrict(cfg.Parser.Strict),
		parser.WithFoldAccents(cfg.Parser.FoldAccents),
		parser.WithLogger(log),
	)
	h := harvester.New(f, p, cfg.Pagination.Marker,
		harvester.WithMaxPages(cfg.MaxPages),
		harvester.WithProgress(stdout),
		harvester.WithLogger(log),
	)

	dict, stats, err := h.Run(ctx)
	if err != nil {
		if store != nil {
			if ferr := store.FinishRun(ctx, runID, stats.Pages, 0, stats.Skipped, err); ferr != nil {
				log.Warn().Err(ferr).Msg("Failed to record run")
			}
		}
		if notifier != nil {
			sendNotification(notifier, cfg, stats, 0, err, log)
		}
		return err
	}

	dict, dropped := filter.NewFilter(cfg).Apply(dict)
	if dropped > 0 {
		log.Info().Int("dropped", dropped).Int("kept", len(dict)).Msg("Filtered words")
	}

	fmt.Fprintln(stdout, "\nWriting words on file...")
	if err := output.WriteJSON(cfg.Output, dict); err != nil {
		return err
	}

	if store != nil {
		saveToStore(ctx, store, runID, dict, stats, log)
	}
	if cfg.Sheets.SpreadsheetURL != "" {
		exportToSheets(ctx, cfg, dict, log)
	}
	if notifier != nil {
		sendNotification(notifier, cfg, stats, len(dict), nil, log)
	}

	fmt.Fprintln(stdout, "DONE!")
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (*db.DB, int, error) {
	connStr := cfg.Database.URL
	if connStr == "" {
		connStr = db.ConnStringFromEnv()
	}

	store, err := db.NewDB(ctx, connStr)
	if err != nil {
		return nil, 0, err
	}

	harvestRun, err := store.StartRun(ctx, cfg.Endpoint)
	if err != nil {
		store.Close()
		return nil, 0, err
	}
	return store, harvestRun.ID, nil
}

func saveToStore(ctx context.Context, store *db.DB, runID int, dict models.Dictionary, stats harvester.Stats, log zerolog.Logger) {
	err := store.SaveDictionary(ctx, runID, dict)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to save words to database")
	}
	if ferr := store.FinishRun(ctx, runID, stats.Pages, len(dict), stats.Skipped, err); ferr != nil {
		log.Warn().Err(ferr).Msg("Failed to record run")
	}
}

func exportToSheets(ctx context.Context, cfg *config.Config, dict models.Dictionary, log zerolog.Logger) {
	spreadsheetID := sheets.ExtractSpreadsheetID(cfg.Sheets.SpreadsheetURL)
	if spreadsheetID == "" {
		log.Warn().Str("url", cfg.Sheets.SpreadsheetURL).Msg("Could not extract spreadsheet ID")
		return
	}

	writer, err := sheets.NewWriter(ctx, spreadsheetID, cfg.Sheets.CredentialsPath, log)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Google Sheets writer")
		return
	}
	if err := writer.WriteDictionary(ctx, cfg.Sheets.SheetName, dict); err != nil {
		log.Warn().Err(err).Msg("Failed to write to Google Sheets")
	}
}

func sendNotification(n *notify.Telegram, cfg *config.Config, stats harvester.Stats, words int, runErr error, log zerolog.Logger) {
	err := n.Notify(notify.Summary{
		Endpoint: cfg.Endpoint,
		Output:   cfg.Output,
		Pages:    stats.Pages,
		Words:    words,
		Skipped:  stats.Skipped,
		Err:      runErr,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to send notification")
	}
}
