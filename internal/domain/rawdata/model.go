package rawdata

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

const SourceInnebandy = "innebandy"

const (
	EntityGamesPage    = "games_page"
	EntityTimelinePage = "timeline_page"
)

// Payload is one upstream response body kept for replay and debugging.
// (Source, EntityType, EntityKey) identifies it; re-fetching upserts.
type Payload struct {
	Source      string
	EntityType  string
	EntityKey   string
	PayloadJSON string
	PayloadHash string
	FetchedAt   time.Time
}

func NewPayload(entityType, entityKey string, body []byte, fetchedAt time.Time) Payload {
	sum := sha256.Sum256(body)
	return Payload{
		Source:      SourceInnebandy,
		EntityType:  entityType,
		EntityKey:   entityKey,
		PayloadJSON: string(body),
		PayloadHash: hex.EncodeToString(sum[:]),
		FetchedAt:   fetchedAt.UTC(),
	}
}

func (p Payload) Key() string {
	return p.Source + "|" + p.EntityType + "|" + p.EntityKey
}

// Repository archives raw upstream bodies. Repeating a key overwrites the
// stored payload and its hash.
type Repository interface {
	UpsertMany(ctx context.Context, items []Payload) error
}
