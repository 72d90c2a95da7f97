package postgres

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/APISource-Intelligence/internal/domain/sourcing"
	apperrors "github.com/turtacn/APISource-Intelligence/pkg/errors"
)

// fakeDB implements DB and records every statement.  Inserts emulate the
// ON CONFLICT DO NOTHING ... RETURNING contract: a key already present
// produces pgx.ErrNoRows, a fresh key returns the next id.
type fakeDB struct {
	statements []string
	queryRows  [][]any
	queryErr   error
	execTag    pgconn.CommandTag
	execErr    error

	keyIndex int
	existing map[string]bool
	nextID   int64
}

func newFakeDB(keyIndex int) *fakeDB {
	return &fakeDB{keyIndex: keyIndex, existing: map[string]bool{}, nextID: 1}
}

func (f *fakeDB) Begin(context.Context) (pgx.Tx, error) {
	return &fakeTx{db: f}, nil
}

func (f *fakeDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.statements = append(f.statements, sql)
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return &fakeRows{rows: f.queryRows}, nil
}

func (f *fakeDB) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.statements = append(f.statements, sql)
	return f.execTag, f.execErr
}

type fakeTx struct {
	db        *fakeDB
	committed bool
}

func (t *fakeTx) Begin(context.Context) (pgx.Tx, error) { return t, nil }
func (t *fakeTx) Commit(context.Context) error          { t.committed = true; return nil }
func (t *fakeTx) Rollback(context.Context) error        { return nil }

func (t *fakeTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	panic("not used")
}
func (t *fakeTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { panic("not used") }
func (t *fakeTx) LargeObjects() pgx.LargeObjects                         { return pgx.LargeObjects{} }
func (t *fakeTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	panic("not used")
}
func (t *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return t.db.Exec(ctx, sql, args...)
}
func (t *fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return t.db.Query(ctx, sql, args...)
}
func (t *fakeTx) Conn() *pgx.Conn { return nil }

func (t *fakeTx) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	t.db.statements = append(t.db.statements, sql)
	key := strings.ToLower(fmt.Sprintf("%v", args[t.db.keyIndex]))
	if t.db.existing[key] {
		return &fakeRow{err: pgx.ErrNoRows}
	}
	t.db.existing[key] = true
	id := t.db.nextID
	t.db.nextID++
	return &fakeRow{id: id}
}

type fakeRow struct {
	id  int64
	err error
}

func (r *fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if p, ok := dest[0].(*int64); ok {
		*p = r.id
	}
	return nil
}

type fakeRows struct {
	rows [][]any
	pos  int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return nil, nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.rows[r.pos-1]
	for i, d := range dest {
		switch p := d.(type) {
		case *int64:
			*p = row[i].(int64)
		case *int:
			*p = row[i].(int)
		case *string:
			*p = row[i].(string)
		case *time.Time:
			*p = row[i].(time.Time)
		default:
			return fmt.Errorf("unsupported scan target %T", d)
		}
	}
	return nil
}

func manufacturerRecord(name string) sourcing.ManufacturerRecord {
	return sourcing.ManufacturerRecord{
		APIName:      "aspirin",
		Manufacturer: name,
		Country:      "India",
		USDMF:        sourcing.FlagYes,
		CEP:          sourcing.FlagUnknown,
		SourceName:   "test-agent",
		ImportedAt:   time.Now().UTC(),
	}
}

func TestManufacturerUpsertDuplicateIsNoOp(t *testing.T) {
	db := newFakeDB(1) // manufacturer is the second insert argument
	repo := NewManufacturerRepo(db, nil)
	ctx := context.Background()

	first, err := repo.Upsert(ctx, []sourcing.ManufacturerRecord{manufacturerRecord("Acme")})
	require.NoError(t, err)
	assert.Equal(t, 1, first.InsertedCount)
	require.Len(t, first.Inserted, 1)
	assert.Equal(t, int64(1), first.Inserted[0].ID)

	second, err := repo.Upsert(ctx, []sourcing.ManufacturerRecord{manufacturerRecord("Acme")})
	require.NoError(t, err)
	assert.Equal(t, 0, second.InsertedCount)
	assert.Empty(t, second.Inserted)
}

func TestManufacturerUpsertMixedBatch(t *testing.T) {
	db := newFakeDB(1)
	db.existing["acme"] = true
	repo := NewManufacturerRepo(db, nil)

	res, err := repo.Upsert(context.Background(), []sourcing.ManufacturerRecord{
		manufacturerRecord("Acme"),
		manufacturerRecord("Beta"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.InsertedCount)
	require.Len(t, res.Inserted, 1)
	assert.Equal(t, "Beta", res.Inserted[0].Manufacturer)
}

func TestManufacturerUpsertStatementShape(t *testing.T) {
	db := newFakeDB(1)
	repo := NewManufacturerRepo(db, nil)
	_, err := repo.Upsert(context.Background(),
		[]sourcing.ManufacturerRecord{manufacturerRecord("Acme")})
	require.NoError(t, err)

	require.NotEmpty(t, db.statements)
	stmt := db.statements[0]
	assert.Contains(t, stmt, "ON CONFLICT (api_name, manufacturer, country) DO NOTHING")
	assert.Contains(t, stmt, "RETURNING id")
}

func TestManufacturerUpsertEmptyBatch(t *testing.T) {
	repo := NewManufacturerRepo(newFakeDB(1), nil)
	res, err := repo.Upsert(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, res.InsertedCount)
}

func TestManufacturerQueryLooseMatching(t *testing.T) {
	db := newFakeDB(1)
	now := time.Now().UTC()
	db.queryRows = [][]any{
		{int64(1), "Aspirin USP", "Acme Pharma", "India, South Asia",
			"Yes", "No", "import", "https://x", now},
	}
	repo := NewManufacturerRepo(db, nil)

	out, err := repo.Query(context.Background(), "aspirin", "india")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Aspirin USP", out[0].APIName)
	assert.Equal(t, sourcing.FlagYes, out[0].USDMF)

	stmt := db.statements[0]
	assert.Contains(t, stmt, "api_name ILIKE '%' || $1 || '%'")
	assert.Contains(t, stmt, "country ILIKE '%' || $2 || '%'")
	assert.Contains(t, stmt, "ORDER BY lower(manufacturer)")
}

func TestManufacturerQueryErrorWrapped(t *testing.T) {
	db := newFakeDB(1)
	db.queryErr = fmt.Errorf("connection refused")
	repo := NewManufacturerRepo(db, nil)

	_, err := repo.Query(context.Background(), "a", "b")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeDatabaseError))
}

func TestManufacturerDeleteBySource(t *testing.T) {
	db := newFakeDB(1)
	db.execTag = pgconn.NewCommandTag("DELETE 3")
	repo := NewManufacturerRepo(db, nil)

	deleted, err := repo.DeleteBySource(context.Background(), "legacy-import")
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
	assert.Contains(t, db.statements[0], "WHERE source_name = $1")
}

type fakeTimer struct {
	operations []string
}

func (f *fakeTimer) DBQuery(operation string, _ time.Duration) {
	f.operations = append(f.operations, operation)
}

func TestManufacturerRepoObservesQueryDurations(t *testing.T) {
	db := newFakeDB(1)
	db.execTag = pgconn.NewCommandTag("DELETE 1")
	timer := &fakeTimer{}
	repo := NewManufacturerRepo(db, nil).WithMetrics(timer)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, []sourcing.ManufacturerRecord{manufacturerRecord("Acme")})
	require.NoError(t, err)
	_, err = repo.Query(ctx, "aspirin", "")
	require.NoError(t, err)
	_, err = repo.DeleteBySource(ctx, "legacy-import")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"manufacturer_upsert",
		"manufacturer_query",
		"manufacturer_delete_by_source",
	}, timer.operations)
}

func TestBuyerRepoObservesQueryDurations(t *testing.T) {
	db := newFakeDB(0)
	timer := &fakeTimer{}
	repo := NewBuyerRepo(db, nil).WithMetrics(timer)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, []sourcing.BuyerRecord{buyerRecord("MedCo")})
	require.NoError(t, err)
	_, err = repo.Query(ctx, "aspirin", "")
	require.NoError(t, err)

	assert.Equal(t, []string{"buyer_upsert", "buyer_query"}, timer.operations)
}

func buyerRecord(company string) sourcing.BuyerRecord {
	now := time.Now().UTC()
	return sourcing.BuyerRecord{
		Company: company, Form: "tablet", Strength: "100mg",
		VerificationSource: "catalog", Confidence: 95,
		URL: "https://x", API: "aspirin", Country: "India",
		CreatedAt: now, UpdatedAt: now,
	}
}

func TestBuyerUpsertDuplicateIsNoOp(t *testing.T) {
	db := newFakeDB(0) // company is the first insert argument
	repo := NewBuyerRepo(db, nil)
	ctx := context.Background()

	first, err := repo.Upsert(ctx, []sourcing.BuyerRecord{buyerRecord("MedCo")})
	require.NoError(t, err)
	assert.Equal(t, 1, first.InsertedCount)

	second, err := repo.Upsert(ctx, []sourcing.BuyerRecord{buyerRecord("MedCo")})
	require.NoError(t, err)
	assert.Equal(t, 0, second.InsertedCount)
}

func TestBuyerUpsertStatementShape(t *testing.T) {
	db := newFakeDB(0)
	repo := NewBuyerRepo(db, nil)
	_, err := repo.Upsert(context.Background(), []sourcing.BuyerRecord{buyerRecord("MedCo")})
	require.NoError(t, err)
	assert.Contains(t, db.statements[0], "ON CONFLICT (api, country, company) DO NOTHING")
}

func TestBuyerQueryScansRecords(t *testing.T) {
	db := newFakeDB(0)
	now := time.Now().UTC()
	db.queryRows = [][]any{
		{int64(7), "MedCo", "tablet", "100mg", "catalog", 95, "https://x",
			"info", "aspirin", "India", now, now},
	}
	repo := NewBuyerRepo(db, nil)

	out, err := repo.Query(context.Background(), "aspirin", "india")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "MedCo", out[0].Company)
	assert.Equal(t, 95, out[0].Confidence)
	assert.Contains(t, db.statements[0], "ORDER BY lower(company)")
}
