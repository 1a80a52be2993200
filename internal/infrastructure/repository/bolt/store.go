package bolt

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	bolt "go.etcd.io/bbolt"
)

const (
	bucketGames      = "games"
	bucketPlayers    = "players"
	bucketRawData    = "raw_data"
	bucketIngestRuns = "ingest_runs"
)

// Store owns the bbolt file shared by every repository in this package.
type Store struct {
	db *bolt.DB
}

func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{bucketGames, bucketPlayers, bucketRawData, bucketIngestRuns} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create %s bucket: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func put(tx *bolt.Tx, bucket string, key []byte, value any) error {
	data, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s value: %w", bucket, err)
	}
	return tx.Bucket([]byte(bucket)).Put(key, data)
}

// get reports false when the key is absent.
func get(tx *bolt.Tx, bucket string, key []byte, out any) (bool, error) {
	data := tx.Bucket([]byte(bucket)).Get(key)
	if data == nil {
		return false, nil
	}
	if err := sonic.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("unmarshal %s value: %w", bucket, err)
	}
	return true, nil
}

// int64Key encodes ids big-endian so cursor order matches numeric order.
func int64Key(v int64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(v))
	return key
}
