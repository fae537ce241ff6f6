// Package supabase provides a vector store on a Supabase (Postgres with
// pgvector) table, reached through its PostgREST API.
//
// The table needs doc_id, content and embedding columns, and a
// match_documents(query_embedding, match_threshold, match_count) function
// returning content and similarity.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/chainaudit/internal/core/domain"
	"github.com/custodia-labs/chainaudit/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Default configuration values.
const (
	DefaultTable         = "audit_vectors"
	DefaultMatchFunction = "match_documents"
	DefaultTimeout       = 30 * time.Second
)

// Configuration errors.
var (
	ErrMissingURL    = errors.New("supabase: project URL is required")
	ErrMissingAPIKey = errors.New("supabase: API key is required")
)

// Config holds the Supabase connection settings.
type Config struct {
	URL           string
	APIKey        string
	Table         string
	MatchFunction string
	Timeout       time.Duration
}

// Store talks to PostgREST at {URL}/rest/v1.
type Store struct {
	client  *http.Client
	restURL string
	apiKey  string
	table   string
	matchFn string
}

type row struct {
	DocID     string    `json:"doc_id"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"embedding"`
}

type matchRequest struct {
	QueryEmbedding []float32 `json:"query_embedding"`
	MatchThreshold float64   `json:"match_threshold"`
	MatchCount     int       `json:"match_count"`
}

type matchRow struct {
	ID         json.RawMessage `json:"id,omitempty"`
	DocID      string          `json:"doc_id,omitempty"`
	Content    string          `json:"content"`
	Similarity float64         `json:"similarity"`
}

type listRow struct {
	DocID   string `json:"doc_id"`
	Content string `json:"content"`
}

// NewStore creates a Supabase store.
func NewStore(cfg Config) (*Store, error) {
	if cfg.URL == "" {
		return nil, ErrMissingURL
	}
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Table == "" {
		cfg.Table = DefaultTable
	}
	if cfg.MatchFunction == "" {
		cfg.MatchFunction = DefaultMatchFunction
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Store{
		client:  &http.Client{Timeout: cfg.Timeout},
		restURL: strings.TrimSuffix(cfg.URL, "/") + "/rest/v1",
		apiKey:  cfg.APIKey,
		table:   cfg.Table,
		matchFn: cfg.MatchFunction,
	}, nil
}

// Insert posts all chunks as one bulk insert. PostgREST runs a bulk insert
// in a single statement, so it fails as a whole. Row IDs are left to the
// table's default.
func (s *Store) Insert(ctx context.Context, chunks []domain.EmbeddedChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	rows := make([]row, len(chunks))
	for i, c := range chunks {
		rows[i] = row{DocID: c.DocumentID, Content: c.Content, Embedding: c.Embedding}
	}

	resp, err := s.do(ctx, http.MethodPost, "/"+s.table, rows, map[string]string{"Prefer": "return=minimal"})
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// Match calls the similarity-search function.
func (s *Store) Match(ctx context.Context, query []float32, threshold float64, count int) ([]domain.ScoredChunk, error) {
	resp, err := s.do(ctx, http.MethodPost, "/rpc/"+s.matchFn, matchRequest{
		QueryEmbedding: query,
		MatchThreshold: threshold,
		MatchCount:     count,
	}, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var rows []matchRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("supabase: decode match response: %w", err)
	}

	out := make([]domain.ScoredChunk, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.ScoredChunk{
			EmbeddedChunk: domain.EmbeddedChunk{
				ID:         strings.Trim(string(r.ID), `"`),
				DocumentID: r.DocID,
				Content:    r.Content,
			},
			Similarity: r.Similarity,
		})
	}
	return out, nil
}

// List selects chunk text without ranking. Embeddings are not fetched.
func (s *Store) List(ctx context.Context, limit int) ([]domain.EmbeddedChunk, error) {
	q := url.Values{}
	q.Set("select", "doc_id,content")
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	resp, err := s.do(ctx, http.MethodGet, "/"+s.table+"?"+q.Encode(), nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var rows []listRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("supabase: decode list response: %w", err)
	}

	out := make([]domain.EmbeddedChunk, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.EmbeddedChunk{DocumentID: r.DocID, Content: r.Content})
	}
	return out, nil
}

// Close releases idle connections.
func (s *Store) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

// do sends a request and returns the response only for 2xx statuses.
func (s *Store) do(ctx context.Context, method, path string, payload any, headers map[string]string) (*http.Response, error) {
	var body io.Reader = http.NoBody
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("supabase: marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.restURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("supabase: create request: %w", err)
	}
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("supabase: %s %s: %w", method, strings.SplitN(path, "?", 2)[0], err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("supabase: %s %s: status %d: %s",
			method, strings.SplitN(path, "?", 2)[0], resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return resp, nil
}
