// Package bolt provides a vector store on a bbolt key/value file.
package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/custodia-labs/chainaudit/internal/adapters/driven/vectorstore/similarity"
	"github.com/custodia-labs/chainaudit/internal/core/domain"
	"github.com/custodia-labs/chainaudit/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

const (
	// FileName is the database file inside the data directory.
	FileName = "vectors.bolt"

	chunksBucket = "audit_vectors"
	openTimeout  = time.Second
)

// record is the stored value. Keys are big-endian sequence numbers so a
// cursor walks chunks in insertion order.
type record struct {
	ID        string `json:"id"`
	DocID     string `json:"doc_id"`
	Content   string `json:"content"`
	Embedding []byte `json:"embedding"`
}

// Store is a bbolt-backed vector store.
type Store struct {
	db *bbolt.DB
}

// NewStore opens (creating if needed) the store in dataDir.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".chainaudit", "data")
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, FileName)
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: openTimeout})
	if err != nil {
		if strings.Contains(err.Error(), "timeout") {
			return nil, fmt.Errorf("database file %s is in use by another process: %w", dbPath, err)
		}
		return nil, fmt.Errorf("opening bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(chunksBucket))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating %s bucket: %w", chunksBucket, err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.db.Path()
}

// Insert writes all chunks in one transaction.
func (s *Store) Insert(_ context.Context, chunks []domain.EmbeddedChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(chunksBucket))
		for _, c := range chunks {
			seq, err := bucket.NextSequence()
			if err != nil {
				return fmt.Errorf("allocating key: %w", err)
			}
			id := c.ID
			if id == "" {
				id = uuid.New().String()
			}
			data, err := json.Marshal(record{
				ID:        id,
				DocID:     c.DocumentID,
				Content:   c.Content,
				Embedding: similarity.Encode(c.Embedding),
			})
			if err != nil {
				return fmt.Errorf("marshalling chunk %s: %w", id, err)
			}
			if err := bucket.Put(seqKey(seq), data); err != nil {
				return fmt.Errorf("storing chunk %s: %w", id, err)
			}
		}
		return nil
	})
}

// Match scans every chunk and ranks by cosine similarity.
func (s *Store) Match(_ context.Context, query []float32, threshold float64, count int) ([]domain.ScoredChunk, error) {
	ranker := similarity.NewRanker(query, threshold, count)
	err := s.each(func(c domain.EmbeddedChunk) bool {
		ranker.Add(c)
		return true
	})
	if err != nil {
		return nil, err
	}
	return ranker.Results(), nil
}

// List returns the oldest limit chunks.
func (s *Store) List(_ context.Context, limit int) ([]domain.EmbeddedChunk, error) {
	var out []domain.EmbeddedChunk
	err := s.each(func(c domain.EmbeddedChunk) bool {
		out = append(out, c)
		return limit <= 0 || len(out) < limit
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// each visits chunks in insertion order until fn returns false.
func (s *Store) each(fn func(domain.EmbeddedChunk) bool) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		cursor := tx.Bucket([]byte(chunksBucket)).Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			var r record
			if err := json.Unmarshal(v, &r); err != nil {
				return fmt.Errorf("decoding chunk %x: %w", k, err)
			}
			if !fn(domain.EmbeddedChunk{
				ID:         r.ID,
				DocumentID: r.DocID,
				Content:    r.Content,
				Embedding:  similarity.Decode(r.Embedding),
			}) {
				return nil
			}
		}
		return nil
	})
}

func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
