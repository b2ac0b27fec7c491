package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/baxromumarov/pharma-pricer/internal/browser"
	"github.com/baxromumarov/pharma-pricer/internal/config"
	"github.com/baxromumarov/pharma-pricer/internal/core"
	"github.com/baxromumarov/pharma-pricer/internal/httpx"
	"github.com/baxromumarov/pharma-pricer/internal/model"
	"github.com/baxromumarov/pharma-pricer/internal/page"
	"github.com/baxromumarov/pharma-pricer/internal/report"
	"github.com/baxromumarov/pharma-pricer/internal/scraper"
	"github.com/baxromumarov/pharma-pricer/internal/sink"
	"github.com/baxromumarov/pharma-pricer/internal/store"
)

func main() {
	app := &cli.App{
		Name:  "pricer",
		Usage: "collect pharmacy prices for a product catalog",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "search every product on every site and write the price table",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML config file"},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "CSV output path"},
					&cli.StringFlag{Name: "mode", Usage: "session mode: browser or static"},
					&cli.StringSliceFlag{Name: "sites", Usage: "site ids to search (default: all)"},
					&cli.StringFlag{Name: "ean", Usage: "search a single product instead of the catalog"},
					&cli.StringFlag{Name: "keyword", Usage: "name keyword for --ean"},
					&cli.StringFlag{Name: "snapshot-dir", Usage: "where failure snapshots are written"},
					&cli.BoolFlag{Name: "headless", Usage: "run Chrome without a window"},
					&cli.BoolFlag{Name: "no-report", Usage: "skip printing the table after the run"},
					&cli.BoolFlag{Name: "debug", Usage: "verbose logging"},
				},
				Action: runAction,
			},
			{
				Name:  "sites",
				Usage: "list the supported site ids",
				Action: func(c *cli.Context) error {
					for _, id := range scraper.SiteIDs() {
						fmt.Fprintln(c.App.Writer, id)
					}
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("pricer failed", "error", err)
		os.Exit(1)
	}
}

func runAction(c *cli.Context) error {
	level := slog.LevelInfo
	if c.Bool("debug") {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	applyFlags(c, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sinks := sink.Multi{sink.NewCSV(cfg.Output)}
	if cfg.Store.DSN != "" {
		db, err := store.NewStore(cfg.Store.Driver, cfg.Store.DSN)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.RunMigrations(ctx); err != nil {
			return err
		}
		sinks = append(sinks, db)
	}

	session, err := openSession(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Warn("session close failed", "error", err)
		}
	}()

	dispatcher := scraper.NewDispatcher(session, cfg.Timeouts.Scraper(), logger)
	runner := core.NewRunner(dispatcher, core.NewBuilder(nil), sinks, logger)

	summary, runErr := runner.Run(ctx, cfg.Catalog, cfg.Sites)
	if runErr != nil {
		logger.Error("run aborted", "error", runErr, "records", summary.Total)
	}

	if !c.Bool("no-report") {
		if err := report.PrintCSV(c.App.Writer, cfg.Output); err != nil {
			logger.Warn("report failed", "error", err)
		}
	}
	return runErr
}

func applyFlags(c *cli.Context, cfg *config.Config) {
	if v := c.String("output"); v != "" {
		cfg.Output = v
	}
	if v := c.String("mode"); v != "" {
		cfg.Session.Mode = v
	}
	if v := c.StringSlice("sites"); len(v) > 0 {
		cfg.Sites = v
	}
	if v := c.String("snapshot-dir"); v != "" {
		cfg.SnapshotDir = v
	}
	if c.IsSet("headless") {
		cfg.Session.Headless = c.Bool("headless")
	}
	if ean := c.String("ean"); ean != "" {
		cfg.Catalog = []model.ProductQuery{{EAN: ean, Keyword: c.String("keyword")}}
	}
}

func openSession(ctx context.Context, cfg *config.Config, logger *slog.Logger) (page.Session, error) {
	switch cfg.Session.Mode {
	case config.ModeBrowser:
		s, err := browser.Open(ctx, browser.Config{
			RemoteURL:       cfg.Session.RemoteURL,
			Headless:        cfg.Session.Headless,
			UserAgent:       cfg.Session.UserAgent,
			PageLoadTimeout: cfg.Session.PageLoadTimeout,
			SnapshotDir:     cfg.SnapshotDir,
			Logger:          logger,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.ModeStatic:
		fetcher := httpx.NewCollyFetcher(cfg.Session.UserAgent, cfg.Session.PageLoadTimeout)
		return httpx.NewStaticSession(fetcher, cfg.SnapshotDir), nil
	default:
		return nil, errors.New("unknown session mode " + cfg.Session.Mode)
	}
}
