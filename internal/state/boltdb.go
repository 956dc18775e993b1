package state

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.etcd.io/bbolt"
)

const bucketName = "parsed_files"

// BoltDBStore implements Store using BoltDB.
type BoltDBStore struct {
	db *bbolt.DB
}

// NewBoltDBStore opens (or creates) the state database at dbPath.
func NewBoltDBStore(dbPath string) (*BoltDBStore, error) {
	// A short timeout so a stale lock from a killed run surfaces as an
	// error instead of hanging forever.
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open state db (file may be locked by another process): %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	log.Debug().
		Str("db_path", dbPath).
		Msg("Parse state store opened")

	return &BoltDBStore{db: db}, nil
}

// Get returns the stored digest for path, or "" when unknown.
func (s *BoltDBStore) Get(ctx context.Context, path string) (string, error) {
	var digest string

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return fmt.Errorf("bucket not found")
		}
		digest = string(b.Get([]byte(path)))
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to get digest: %w", err)
	}

	return digest, nil
}

// Set records digest as the parsed content of path.
func (s *BoltDBStore) Set(ctx context.Context, path, digest string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return fmt.Errorf("bucket not found")
		}
		return b.Put([]byte(path), []byte(digest))
	})
	if err != nil {
		return fmt.Errorf("failed to set digest: %w", err)
	}

	log.Debug().
		Str("file_path", path).
		Str("digest", digest).
		Msg("File marked as parsed")

	return nil
}

// Delete forgets path.
func (s *BoltDBStore) Delete(ctx context.Context, path string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return fmt.Errorf("bucket not found")
		}
		return b.Delete([]byte(path))
	})
	if err != nil {
		return fmt.Errorf("failed to delete digest: %w", err)
	}

	return nil
}

// List returns all stored digests keyed by path.
func (s *BoltDBStore) List(ctx context.Context) (map[string]string, error) {
	result := make(map[string]string)

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return fmt.Errorf("bucket not found")
		}
		return b.ForEach(func(k, v []byte) error {
			result[string(k)] = string(v)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list digests: %w", err)
	}

	return result, nil
}

// Close closes the state database.
func (s *BoltDBStore) Close() error {
	log.Debug().Msg("Closing parse state store")
	return s.db.Close()
}
