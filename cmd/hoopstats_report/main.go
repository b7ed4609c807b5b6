// Package main prints the training log trends of a user as tables.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/vjpowerhouse/Basketball-Tracking-system/internal/config"
	"github.com/vjpowerhouse/Basketball-Tracking-system/internal/db"
	"github.com/vjpowerhouse/Basketball-Tracking-system/internal/hoopstats/observations"
	"github.com/vjpowerhouse/Basketball-Tracking-system/internal/hoopstats/trend"
	"github.com/vjpowerhouse/Basketball-Tracking-system/pkg"

	"github.com/fatih/color"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "hoopstats-report",
		Usage: "print the latest values and trends of a basketball training log",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env",
				Value: "development",
				Usage: "environment [prod | production | dev | development | ddev | dockerdev]",
			},
			&cli.StringFlag{
				Name:  "config",
				Value: "./config.toml",
				Usage: "path for the TOML config file",
			},
			&cli.StringFlag{
				Name:    "csv",
				Usage:   "read this CSV training log instead of the configured backend",
				EnvVars: []string{"HOOPSTATS_CSV"},
			},
			&cli.StringFlag{
				Name:     "user",
				Aliases:  []string{"u"},
				Usage:    "user whose training log is reported",
				Required: true,
				EnvVars:  []string{"HOOPSTATS_USER"},
			},
			&cli.StringFlag{
				Name:    "category",
				Aliases: []string{"c"},
				Usage:   "only report this category (games, practice, conditioning, dribbling)",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "disable colored output",
			},
		},
		Action: runReport,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error: %s", err))
		os.Exit(1)
	}
}

func runReport(c *cli.Context) error {
	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(c.String("env"), c.String("config"), c.String("csv"))
	if err != nil {
		return err
	}
	if cfg.StorageBackend == config.StorageCSV {
		if err := checkCsvFile(cfg.CsvPath); err != nil {
			return err
		}
	}

	var categories []trend.Category
	if raw := c.String("category"); raw != "" {
		category, err := trend.ParseCategory(raw)
		if err != nil {
			return err
		}
		categories = []trend.Category{category}
	}

	var dbPool *pgxpool.Pool
	if cfg.StorageBackend == config.StoragePsql {
		dbPool, err = db.NewDBPool(ctx, db.NewDBPoolParams{
			DBHost: cfg.PostgresHost,
			DBPort: cfg.PostgresPort,
			DBName: cfg.PostgresDBName,
		})
		if err != nil {
			return fmt.Errorf("db pool: %w", err)
		}
		defer dbPool.Close()
	}

	store, err := observations.OpenStore(ctx, observations.StoreParams{
		Backend:               cfg.StorageBackend,
		CsvPath:               cfg.CsvPath,
		SheetsSpreadsheetID:   cfg.SheetsSpreadsheetID,
		SheetsCredentialsFile: cfg.SheetsCredentialsFile,
		DBPool:                dbPool,
	})
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	evaluator := trend.NewEvaluator(trend.NewDirectionRules(cfg.LowerIsBetterMetrics...))
	analyzer := observations.NewAnalyzer(store, evaluator)

	dashboard, err := analyzer.Dashboard(ctx, c.String("user"))
	if err != nil {
		return err
	}

	return renderReport(c.App.Writer, dashboard, reportOptions{
		Categories: categories,
		Colored:    !c.Bool("no-color"),
	})
}

// loadConfig reads the env config; with a CSV override the config file is optional.
func loadConfig(env, path, csvPath string) (*config.Config, error) {
	cfg, err := config.Load(env, path)
	if csvPath == "" {
		return cfg, err
	}
	if err != nil {
		log.Debugf("config not loaded, using csv [%s] only: %s", csvPath, err)
		cfg = &config.Config{}
	}
	cfg.StorageBackend = config.StorageCSV
	cfg.CsvPath = csvPath
	return cfg, nil
}

// checkCsvFile fails on a missing file, the store itself would just report no data.
func checkCsvFile(path string) error {
	exists, err := pkg.PathExists(path, false)
	if err != nil {
		return fmt.Errorf("csv file: %w", err)
	}
	if !exists {
		return fmt.Errorf("csv file [%s] not found", path)
	}
	return nil
}
