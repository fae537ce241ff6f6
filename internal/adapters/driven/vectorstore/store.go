// Package vectorstore selects a vector store backend from settings.
// Each backend lives in its own subpackage.
package vectorstore

import (
	"context"
	"fmt"

	"github.com/custodia-labs/chainaudit/internal/adapters/driven/vectorstore/bolt"
	"github.com/custodia-labs/chainaudit/internal/adapters/driven/vectorstore/memory"
	"github.com/custodia-labs/chainaudit/internal/adapters/driven/vectorstore/sqlite"
	"github.com/custodia-labs/chainaudit/internal/adapters/driven/vectorstore/supabase"
	"github.com/custodia-labs/chainaudit/internal/core/domain"
	"github.com/custodia-labs/chainaudit/internal/core/ports/driven"
)

// Open creates the store named by settings.Backend. An empty backend
// means SQLite.
func Open(_ context.Context, settings domain.VectorStoreSettings) (driven.VectorStore, error) {
	switch settings.Backend {
	case domain.VectorStoreSQLite, "":
		return sqlite.NewStore(settings.DataDir)
	case domain.VectorStoreBolt:
		return bolt.NewStore(settings.DataDir)
	case domain.VectorStoreSupabase:
		return supabase.NewStore(supabase.Config{
			URL:           settings.URL,
			APIKey:        settings.APIKey,
			Table:         settings.Table,
			MatchFunction: settings.MatchFunction,
		})
	case domain.VectorStoreMemory:
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("%w: unknown vector store backend %q", domain.ErrInvalidInput, settings.Backend)
	}
}
