package observations

import (
	"context"
	"fmt"
	"time"

	"github.com/vjpowerhouse/Basketball-Tracking-system/internal/hoopstats/trend"
	"github.com/vjpowerhouse/Basketball-Tracking-system/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

const Schema = `
CREATE TABLE IF NOT EXISTS hoopstats_observation (
	id          SERIAL PRIMARY KEY,
	entry_id    TEXT NOT NULL,
	user_id     TEXT NOT NULL,
	category    TEXT NOT NULL,
	metric      TEXT NOT NULL,
	value       DOUBLE PRECISION NOT NULL,
	recorded_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS hoopstats_observation_user_category_idx
	ON hoopstats_observation (user_id, category);
`

// PsqlRepo keeps observations in the hoopstats_observation table.
type PsqlRepo struct {
	db *pgxpool.Pool
}

func NewPsqlRepo(db *pgxpool.Pool) *PsqlRepo {
	return &PsqlRepo{
		db: db,
	}
}

func (r *PsqlRepo) EnsureSchema(ctx context.Context) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.hoopstats.psql.ensureSchema")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if _, err := r.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Add inserts all observations in a single transaction.
func (r *PsqlRepo) Add(ctx context.Context, list []Observation) (_ []Observation, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.hoopstats.psql.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("observations.count", len(list)))

	if err := validateAll(list); err != nil {
		return nil, err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		// no-op after commit
		_ = tx.Rollback(ctx)
	}()

	added := make([]Observation, 0, len(list))
	for _, o := range list {
		var id int
		if err := tx.QueryRow(
			ctx,
			`INSERT INTO hoopstats_observation
				(entry_id, user_id, category, metric, value, recorded_at)
				VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id;`,
			o.EntryID, o.UserID, string(o.Category), o.Metric, o.Value, o.RecordedAt,
		).Scan(&id); err != nil {
			return nil, fmt.Errorf("insert [%s]: %w", o.Metric, err)
		}
		o.ID = id
		added = append(added, o)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return added, nil
}

// ListAll returns the matching observations in insertion order.
func (r *PsqlRepo) ListAll(ctx context.Context, params ListParams) (_ []Observation, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.hoopstats.psql.listAll")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("user", params.UserID),
		attribute.String("category", string(params.Category)),
		attribute.String("metric", params.Metric),
	)

	rows, err := r.db.Query(
		ctx,
		`SELECT id, entry_id, user_id, category, metric, value, recorded_at
			FROM hoopstats_observation
			WHERE
				($1::text = '' OR user_id = $1)
				AND ($2::text = '' OR category = $2)
				AND ($3::text = '' OR metric = $3)
				AND ($4::timestamptz IS NULL OR recorded_at >= $4)
				AND ($5::timestamptz IS NULL OR recorded_at <= $5)
			ORDER BY id;`,
		params.UserID, string(params.Category), params.Metric, params.From, params.To,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list, err := rows2observations(rows)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("observations.count", len(list)))

	return list, nil
}

func rows2observations(rows pgx.Rows) ([]Observation, error) {
	var list []Observation
	for rows.Next() {
		var (
			o          Observation
			category   string
			recordedAt time.Time
		)
		if err := rows.Scan(
			&o.ID, &o.EntryID, &o.UserID, &category, &o.Metric, &o.Value, &recordedAt,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		o.Category = trend.Category(category)
		o.RecordedAt = recordedAt.UTC()
		list = append(list, o)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}
