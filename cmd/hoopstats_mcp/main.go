// Package main runs the hoopstats MCP server over stdio for local MCP clients.
// The same tools are mounted on the backend at /mcp over HTTP.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/vjpowerhouse/Basketball-Tracking-system/internal/config"
	"github.com/vjpowerhouse/Basketball-Tracking-system/internal/db"
	hoopstatsmcp "github.com/vjpowerhouse/Basketball-Tracking-system/internal/hoopstats/mcp"
	"github.com/vjpowerhouse/Basketball-Tracking-system/internal/hoopstats/observations"
	"github.com/vjpowerhouse/Basketball-Tracking-system/internal/hoopstats/trend"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development | ddev | dockerdev]")
	configPath := flag.String("config", "./config.toml", "path to TOML config file")
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()

	var dbPool *pgxpool.Pool
	if cfg.StorageBackend == config.StoragePsql {
		dbPool, err = db.NewDBPool(ctx, db.NewDBPoolParams{
			DBHost:         cfg.PostgresHost,
			DBPort:         cfg.PostgresPort,
			DBName:         cfg.PostgresDBName,
			TracingEnabled: false,
		})
		if err != nil {
			log.Fatalf("db pool: %v", err)
		}
		defer dbPool.Close()
	}

	// stdio sessions are short lived, the read cache is left out
	store, err := observations.OpenStore(ctx, observations.StoreParams{
		Backend:               cfg.StorageBackend,
		CsvPath:               cfg.CsvPath,
		SheetsSpreadsheetID:   cfg.SheetsSpreadsheetID,
		SheetsCredentialsFile: cfg.SheetsCredentialsFile,
		DBPool:                dbPool,
	})
	if err != nil {
		log.Fatalf("open store: %v", err)
	}

	evaluator := trend.NewEvaluator(trend.NewDirectionRules(cfg.LowerIsBetterMetrics...))
	server := hoopstatsmcp.NewServer(observations.NewAnalyzer(store, evaluator), "1.0.0")

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatal(err)
	}
}
