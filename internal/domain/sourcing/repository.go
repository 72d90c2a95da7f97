package sourcing

import "context"

// UpsertResult reports the outcome of an insert-if-absent batch.  Duplicates
// are skipped silently, never treated as errors, and are excluded from
// Inserted.
type ManufacturerUpsertResult struct {
	InsertedCount int
	Inserted      []ManufacturerRecord
}

// BuyerUpsertResult mirrors ManufacturerUpsertResult for buyer rows.
type BuyerUpsertResult struct {
	InsertedCount int
	Inserted      []BuyerRecord
}

// ManufacturerRepository is the persistence contract for manufacturer rows.
//
// Implementations must key uniqueness on (api_name, manufacturer, country)
// and leave existing rows untouched on conflict.  Query performs
// case-insensitive substring matching on both arguments.
type ManufacturerRepository interface {
	Upsert(ctx context.Context, records []ManufacturerRecord) (*ManufacturerUpsertResult, error)
	Query(ctx context.Context, apiName, country string) ([]ManufacturerRecord, error)
	DeleteBySource(ctx context.Context, sourceName string) (int64, error)
}

// BuyerRepository is the persistence contract for buyer rows, keyed on
// (api, country, company).
type BuyerRepository interface {
	Upsert(ctx context.Context, records []BuyerRecord) (*BuyerUpsertResult, error)
	Query(ctx context.Context, apiName, country string) ([]BuyerRecord, error)
}

//Personal.AI order the ending
