package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/floorball-league/internal/domain/rawdata"
	qb "github.com/riskibarqy/floorball-league/internal/platform/querybuilder"
)

type RawDataRepository struct {
	db *sqlx.DB
}

func NewRawDataRepository(db *sqlx.DB) *RawDataRepository {
	return &RawDataRepository{db: db}
}

// UpsertMany writes the batch in one statement. Repeated keys inside a batch
// keep the last payload.
func (r *RawDataRepository) UpsertMany(ctx context.Context, items []rawdata.Payload) error {
	items = dedupePayloads(items)
	if len(items) == 0 {
		return nil
	}

	builder := qb.InsertInto("raw_data_payloads").
		Columns("source", "entity_type", "entity_key", "payload", "payload_hash", "fetched_at")
	for _, item := range items {
		fetchedAt := item.FetchedAt.UTC()
		if fetchedAt.IsZero() {
			fetchedAt = time.Now().UTC()
		}
		builder.Values(item.Source, item.EntityType, item.EntityKey, item.PayloadJSON, item.PayloadHash, fetchedAt)
	}
	query, args, err := builder.OnConflict(
		qb.OnConflict("source", "entity_type", "entity_key").
			DoUpdate("payload", "payload_hash", "fetched_at").
			Set("ingested_at", "NOW()"),
	).ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert raw payloads query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert raw payloads count=%d: %w", len(items), err)
	}
	return nil
}

func dedupePayloads(items []rawdata.Payload) []rawdata.Payload {
	if len(items) < 2 {
		return items
	}
	index := make(map[string]int, len(items))
	out := make([]rawdata.Payload, 0, len(items))
	for _, item := range items {
		if i, ok := index[item.Key()]; ok {
			out[i] = item
			continue
		}
		index[item.Key()] = len(out)
		out = append(out, item)
	}
	return out
}
