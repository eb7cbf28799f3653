// Command footy is the Footy Data CLI.
//
// Usage:
//
//	footy fetch ladder --season 2024 --round 5
//	footy fetch player_details --team Carlton --source footywire --orient records
//	footy rpkg check
//	footy rpkg install
//	footy snapshots prune --days 14
//	footy snapshots stats
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/albapepper/footy-data/internal/config"
	"github.com/albapepper/footy-data/internal/db"
	"github.com/albapepper/footy-data/internal/footy"
	"github.com/albapepper/footy-data/internal/footy/afl"
	"github.com/albapepper/footy-data/internal/footy/rbridge"
	"github.com/albapepper/footy-data/internal/footy/squiggle"
	"github.com/albapepper/footy-data/internal/frame"
	"github.com/albapepper/footy-data/internal/snapshot"
)

// Logs go to stderr; stdout carries the dataset.
var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:          "footy",
		Short:        "Footy Data CLI",
		SilenceUsage: true,
	}

	root.AddCommand(fetchCmd())
	root.AddCommand(rpkgCmd())
	root.AddCommand(snapshotsCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// fetch command
// --------------------------------------------------------------------------

func fetchCmd() *cobra.Command {
	var (
		season      int
		round       string
		source      string
		competition string
		team        string
		current     string
		orient      string
	)
	cmd := &cobra.Command{
		Use:   "fetch <dataset>",
		Short: "Fetch a dataset and write it to stdout as JSON",
		Long: "Fetch one of: fixture, ladder, lineup, player_details, player_statistics, results.\n" +
			"Flags follow the HTTP query parameters and are validated the same way.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dataset, err := footy.ParseDataset(args[0])
			if err != nil {
				return err
			}
			o, err := frame.ParseOrient(orient)
			if err != nil {
				return err
			}

			params := url.Values{}
			if cmd.Flags().Changed("season") {
				params.Set("season", strconv.Itoa(season))
			}
			if cmd.Flags().Changed("round") {
				params.Set("round_number", round)
			}
			setIf(params, "source", source)
			setIf(params, "competition", competition)
			setIf(params, "team", team)
			setIf(params, "current", current)

			q, err := footy.ParseQuery(dataset, params, time.Now())
			if err != nil {
				return err
			}
			for _, w := range q.Warnings {
				logger.Warn(w)
			}

			return withSignals(func(ctx context.Context) error {
				cfg, err := config.Load()
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				svc := newService(cfg)

				start := time.Now()
				f, err := svc.Fetch(ctx, q)
				if err != nil {
					return err
				}
				logger.Info("Fetched dataset",
					"dataset", q.Dataset, "source", q.Source, "season", q.Season, "round", q.RoundString(),
					"rows", f.NRow(), "duration", time.Since(start).Round(time.Millisecond))

				if err := frame.Encode(os.Stdout, f, o); err != nil {
					return err
				}
				_, err = fmt.Fprintln(os.Stdout)
				return err
			})
		},
	}
	cmd.Flags().IntVar(&season, "season", time.Now().Year(), "Season year")
	cmd.Flags().StringVar(&round, "round", "", "Round number 0-30 (empty for every round where supported)")
	cmd.Flags().StringVar(&source, "source", "", "Data source (AFL, squiggle, footywire, fryzigg, afltables)")
	cmd.Flags().StringVar(&competition, "comp", "", "Competition (AFLM, AFLW)")
	cmd.Flags().StringVar(&team, "team", "", "Team for player_details")
	cmd.Flags().StringVar(&current, "current", "", "player_details: only the current season (true/false)")
	cmd.Flags().StringVar(&orient, "orient", "index", "JSON shape (index, columns, records)")
	return cmd
}

func setIf(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

// newService wires the same provider chain as the API server.
func newService(cfg *config.Config) *footy.Service {
	aflClient := afl.NewClient(cfg.AFLAPIURL, cfg.AFLCFSURL, cfg.UpstreamRequestsPerMinute, cfg.UpstreamTimeout, logger)
	providers := []footy.Provider{
		afl.New(aflClient, 4, logger),
		squiggle.New(cfg.SquiggleURL, cfg.SquiggleUserAgent, cfg.UpstreamRequestsPerMinute, cfg.UpstreamTimeout, logger),
	}
	var fallback footy.Provider
	if cfg.RBridgeEnabled {
		fallback = rbridge.New(rscript(cfg), cfg.RPackage, logger)
	}
	return footy.NewService(logger, fallback, providers...)
}

func rscript(cfg *config.Config) rbridge.Rscript {
	return rbridge.Rscript{Path: cfg.RscriptPath, Timeout: cfg.RTimeout}
}

// --------------------------------------------------------------------------
// rpkg command
// --------------------------------------------------------------------------

func rpkgCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rpkg",
		Short: "Manage the R data package used for non-native sources",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Compare the installed package version with CRAN",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPackages(func(ctx context.Context, m *rbridge.PackageManager) error {
				st, err := m.Status(ctx)
				if err != nil {
					return err
				}
				return printJSON(st)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "install",
		Short: "Install or update the package from CRAN when a newer version exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPackages(func(ctx context.Context, m *rbridge.PackageManager) error {
				start := time.Now()
				st, err := m.EnsureLatest(ctx)
				if err != nil {
					return err
				}
				logger.Info("R package ready",
					"package", st.Package, "version", st.Installed,
					"duration", time.Since(start).Round(time.Second))
				return printJSON(st)
			})
		},
	})
	return cmd
}

func runPackages(fn func(ctx context.Context, m *rbridge.PackageManager) error) error {
	return withSignals(func(ctx context.Context) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if !cfg.RBridgeEnabled {
			return fmt.Errorf("R bridge is disabled (R_BRIDGE_ENABLED=false)")
		}
		m := rbridge.NewPackageManager(rscript(cfg), cfg.RPackage, cfg.CRANMirror, logger)
		return fn(ctx, m)
	})
}

// --------------------------------------------------------------------------
// snapshots command
// --------------------------------------------------------------------------

func snapshotsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "Inspect and prune stored dataset snapshots",
	}

	var days int
	prune := &cobra.Command{
		Use:   "prune",
		Short: "Delete snapshots older than the retention window, keeping the newest per query",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshots(func(ctx context.Context, cfg *config.Config, store *snapshot.Store) error {
				if !cmd.Flags().Changed("days") {
					days = cfg.SnapshotRetentionDays
				}
				if days < 1 {
					return fmt.Errorf("--days must be at least 1")
				}
				n, err := store.Prune(ctx, days)
				if err != nil {
					return fmt.Errorf("prune snapshots: %w", err)
				}
				logger.Info("Pruned snapshots", "deleted", n, "retention_days", days)
				return nil
			})
		},
	}
	prune.Flags().IntVar(&days, "days", 30, "Retention in days (defaults to SNAPSHOT_RETENTION_DAYS)")
	cmd.AddCommand(prune)

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show snapshot table totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshots(func(ctx context.Context, _ *config.Config, store *snapshot.Store) error {
				st, err := store.Stats(ctx)
				if err != nil {
					return err
				}
				return printJSON(st)
			})
		},
	})
	return cmd
}

func runSnapshots(fn func(ctx context.Context, cfg *config.Config, store *snapshot.Store) error) error {
	return withSignals(func(ctx context.Context) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if !cfg.HasDatabase() {
			return fmt.Errorf("DATABASE_URL is required")
		}

		pool, err := db.New(ctx, cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer pool.Close()

		return fn(ctx, cfg, snapshot.NewStore(pool.Pool))
	})
}

// --------------------------------------------------------------------------
// helpers
// --------------------------------------------------------------------------

func withSignals(fn func(ctx context.Context) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	return fn(ctx)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
