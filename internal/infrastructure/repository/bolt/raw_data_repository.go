package bolt

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/floorball-league/internal/domain/rawdata"
	bolt "go.etcd.io/bbolt"
)

type rawDataRecord struct {
	Source      string    `json:"source"`
	EntityType  string    `json:"entityType"`
	EntityKey   string    `json:"entityKey"`
	Payload     string    `json:"payload"`
	PayloadHash string    `json:"payloadHash"`
	FetchedAt   time.Time `json:"fetchedAt"`
}

type RawDataRepository struct {
	store *Store
}

func NewRawDataRepository(store *Store) *RawDataRepository {
	return &RawDataRepository{store: store}
}

// UpsertMany writes the batch in a single transaction.
func (r *RawDataRepository) UpsertMany(ctx context.Context, items []rawdata.Payload) error {
	if len(items) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	err := r.store.db.Update(func(tx *bolt.Tx) error {
		for _, item := range items {
			record := rawDataRecord{
				Source:      item.Source,
				EntityType:  item.EntityType,
				EntityKey:   item.EntityKey,
				Payload:     item.PayloadJSON,
				PayloadHash: item.PayloadHash,
				FetchedAt:   item.FetchedAt.UTC(),
			}
			if err := put(tx, bucketRawData, []byte(item.Key()), record); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("upsert raw payloads count=%d: %w", len(items), err)
	}
	return nil
}

func (r *RawDataRepository) Get(ctx context.Context, key string) (rawdata.Payload, bool, error) {
	if err := ctx.Err(); err != nil {
		return rawdata.Payload{}, false, err
	}

	var (
		record rawDataRecord
		found  bool
	)
	err := r.store.db.View(func(tx *bolt.Tx) error {
		var err error
		found, err = get(tx, bucketRawData, []byte(key), &record)
		return err
	})
	if err != nil || !found {
		return rawdata.Payload{}, false, err
	}
	return rawdata.Payload{
		Source:      record.Source,
		EntityType:  record.EntityType,
		EntityKey:   record.EntityKey,
		PayloadJSON: record.Payload,
		PayloadHash: record.PayloadHash,
		FetchedAt:   record.FetchedAt,
	}, true, nil
}
