package observations

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/vjpowerhouse/Basketball-Tracking-system/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
	htransport "google.golang.org/api/transport/http"
)

type StoreParams struct {
	Backend               string
	CsvPath               string
	SheetsSpreadsheetID   string
	SheetsCredentialsFile string
	DBPool                *pgxpool.Pool
	// the read cache is enabled when both are set
	CacheSizeBytes int
	CacheTTL       time.Duration
}

// OpenStore builds the configured backend, wrapped in the read cache when enabled.
func OpenStore(ctx context.Context, params StoreParams) (Store, error) {
	var (
		store Store
		err   error
	)

	switch params.Backend {
	case config.StorageCSV:
		store = NewCsvRepo(params.CsvPath)
	case config.StorageSheets:
		store, err = openSheetsRepo(ctx, params)
	case config.StoragePsql:
		if params.DBPool == nil {
			return nil, errors.New("psql store: db pool not set")
		}
		psqlRepo := NewPsqlRepo(params.DBPool)
		if err := psqlRepo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		store = psqlRepo
	default:
		return nil, fmt.Errorf("unknown storage backend: [%s]", params.Backend)
	}
	if err != nil {
		return nil, err
	}

	if params.CacheSizeBytes > 0 && params.CacheTTL > 0 {
		log.Debugf("observations read cache enabled, %d bytes, ttl %s", params.CacheSizeBytes, params.CacheTTL)
		store = NewCachedRepo(store, params.CacheSizeBytes, params.CacheTTL)
	}

	return store, nil
}

func openSheetsRepo(ctx context.Context, params StoreParams) (*SheetsRepo, error) {
	opts := []option.ClientOption{
		option.WithScopes(sheets.SpreadsheetsScope),
	}
	if params.SheetsCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(params.SheetsCredentialsFile))
	}

	transport, err := htransport.NewTransport(ctx, otelhttp.NewTransport(http.DefaultTransport), opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets transport: %w", err)
	}

	return NewSheetsRepo(
		ctx,
		params.SheetsSpreadsheetID,
		option.WithHTTPClient(&http.Client{Transport: transport}),
	)
}
