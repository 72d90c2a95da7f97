package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/turtacn/APISource-Intelligence/internal/domain/sourcing"
	"github.com/turtacn/APISource-Intelligence/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/APISource-Intelligence/pkg/errors"
)

// DB is the slice of pgxpool.Pool the repositories use, kept small so tests
// can substitute a fake.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// QueryTimer observes database operation latency.  A nil timer disables
// instrumentation.
type QueryTimer interface {
	DBQuery(operation string, duration time.Duration)
}

func observeQuery(t QueryTimer, operation string, started time.Time) {
	if t != nil {
		t.DBQuery(operation, time.Since(started))
	}
}

const (
	manufacturerInsertSQL = `
		INSERT INTO manufacturers
			(api_name, manufacturer, country, usdmf, cep, source_name, source_url, imported_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (api_name, manufacturer, country) DO NOTHING
		RETURNING id`

	manufacturerQuerySQL = `
		SELECT id, api_name, manufacturer, country, usdmf, cep, source_name, source_url, imported_at
		FROM manufacturers
		WHERE api_name ILIKE '%' || $1 || '%'
		  AND country ILIKE '%' || $2 || '%'
		ORDER BY lower(manufacturer)`

	manufacturerDeleteBySourceSQL = `DELETE FROM manufacturers WHERE source_name = $1`
)

// ManufacturerRepo implements sourcing.ManufacturerRepository over PostgreSQL.
type ManufacturerRepo struct {
	db     DB
	timer  QueryTimer
	logger logging.Logger
}

// NewManufacturerRepo wires the repository.
func NewManufacturerRepo(db DB, logger logging.Logger) *ManufacturerRepo {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ManufacturerRepo{db: db, logger: logger.Named("manufacturer_repo")}
}

// WithMetrics installs a query timer.
func (r *ManufacturerRepo) WithMetrics(t QueryTimer) *ManufacturerRepo {
	r.timer = t
	return r
}

// Upsert inserts records with insert-if-absent semantics inside one
// transaction.  Conflicting rows are skipped silently and excluded from the
// returned result.
func (r *ManufacturerRepo) Upsert(
	ctx context.Context,
	records []sourcing.ManufacturerRecord,
) (*sourcing.ManufacturerUpsertResult, error) {
	result := &sourcing.ManufacturerUpsertResult{}
	if len(records) == 0 {
		return result, nil
	}
	defer observeQuery(r.timer, "manufacturer_upsert", time.Now())

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "begin upsert transaction")
	}
	defer tx.Rollback(ctx)

	for _, rec := range records {
		var id int64
		err := tx.QueryRow(ctx, manufacturerInsertSQL,
			rec.APIName, rec.Manufacturer, rec.Country,
			string(rec.USDMF), string(rec.CEP),
			rec.SourceName, rec.SourceURL, rec.ImportedAt,
		).Scan(&id)
		if errors.Is(err, pgx.ErrNoRows) {
			// Conflict: the triple already exists.
			continue
		}
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError,
				"insert manufacturer record").WithDetail(rec.Manufacturer)
		}
		rec.ID = id
		result.Inserted = append(result.Inserted, rec)
		result.InsertedCount++
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "commit upsert transaction")
	}
	return result, nil
}

// Query returns records whose api_name and country contain the given
// fragments, case-insensitively, ordered by manufacturer.  Empty fragments
// match everything.
func (r *ManufacturerRepo) Query(
	ctx context.Context,
	apiName, country string,
) ([]sourcing.ManufacturerRecord, error) {
	defer observeQuery(r.timer, "manufacturer_query", time.Now())
	rows, err := r.db.Query(ctx, manufacturerQuerySQL, apiName, country)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "query manufacturers")
	}
	defer rows.Close()

	var out []sourcing.ManufacturerRecord
	for rows.Next() {
		var rec sourcing.ManufacturerRecord
		var usdmf, cep string
		if err := rows.Scan(&rec.ID, &rec.APIName, &rec.Manufacturer, &rec.Country,
			&usdmf, &cep, &rec.SourceName, &rec.SourceURL, &rec.ImportedAt); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "scan manufacturer row")
		}
		rec.USDMF = sourcing.Flag(usdmf)
		rec.CEP = sourcing.Flag(cep)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "iterate manufacturer rows")
	}
	return out, nil
}

// DeleteBySource purges every record imported from sourceName and reports
// how many rows went away.
func (r *ManufacturerRepo) DeleteBySource(ctx context.Context, sourceName string) (int64, error) {
	defer observeQuery(r.timer, "manufacturer_delete_by_source", time.Now())
	tag, err := r.db.Exec(ctx, manufacturerDeleteBySourceSQL, sourceName)
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "delete by source")
	}
	deleted := tag.RowsAffected()
	r.logger.Info("purged records by source",
		logging.String("source", sourceName), logging.Int64("deleted", deleted))
	return deleted, nil
}

//Personal.AI order the ending
