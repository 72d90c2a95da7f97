package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/turtacn/APISource-Intelligence/internal/domain/sourcing"
	"github.com/turtacn/APISource-Intelligence/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/APISource-Intelligence/pkg/errors"
)

const (
	buyerInsertSQL = `
		INSERT INTO buyers
			(company, form, strength, verification_source, confidence, url,
			 additional_info, api, country, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (api, country, company) DO NOTHING
		RETURNING id`

	buyerQuerySQL = `
		SELECT id, company, form, strength, verification_source, confidence, url,
		       additional_info, api, country, created_at, updated_at
		FROM buyers
		WHERE api ILIKE '%' || $1 || '%'
		  AND country ILIKE '%' || $2 || '%'
		ORDER BY lower(company)`
)

// BuyerRepo implements sourcing.BuyerRepository over PostgreSQL.
type BuyerRepo struct {
	db     DB
	timer  QueryTimer
	logger logging.Logger
}

// NewBuyerRepo wires the repository.
func NewBuyerRepo(db DB, logger logging.Logger) *BuyerRepo {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &BuyerRepo{db: db, logger: logger.Named("buyer_repo")}
}

// WithMetrics installs a query timer.
func (r *BuyerRepo) WithMetrics(t QueryTimer) *BuyerRepo {
	r.timer = t
	return r
}

// Upsert inserts records keyed on (api, country, company); duplicates are
// skipped silently inside one transaction.
func (r *BuyerRepo) Upsert(
	ctx context.Context,
	records []sourcing.BuyerRecord,
) (*sourcing.BuyerUpsertResult, error) {
	result := &sourcing.BuyerUpsertResult{}
	if len(records) == 0 {
		return result, nil
	}
	defer observeQuery(r.timer, "buyer_upsert", time.Now())

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "begin upsert transaction")
	}
	defer tx.Rollback(ctx)

	for _, rec := range records {
		var id int64
		err := tx.QueryRow(ctx, buyerInsertSQL,
			rec.Company, rec.Form, rec.Strength, rec.VerificationSource,
			rec.Confidence, rec.URL, rec.AdditionalInfo,
			rec.API, rec.Country, rec.CreatedAt, rec.UpdatedAt,
		).Scan(&id)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError,
				"insert buyer record").WithDetail(rec.Company)
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

// Query returns buyers whose api and country contain the given fragments,
// case-insensitively, ordered by company.
func (r *BuyerRepo) Query(
	ctx context.Context,
	apiName, country string,
) ([]sourcing.BuyerRecord, error) {
	defer observeQuery(r.timer, "buyer_query", time.Now())
	rows, err := r.db.Query(ctx, buyerQuerySQL, apiName, country)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "query buyers")
	}
	defer rows.Close()

	var out []sourcing.BuyerRecord
	for rows.Next() {
		var rec sourcing.BuyerRecord
		if err := rows.Scan(&rec.ID, &rec.Company, &rec.Form, &rec.Strength,
			&rec.VerificationSource, &rec.Confidence, &rec.URL, &rec.AdditionalInfo,
			&rec.API, &rec.Country, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "scan buyer row")
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "iterate buyer rows")
	}
	return out, nil
}

//Personal.AI order the ending
