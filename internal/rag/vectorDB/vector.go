package vectorDB

import (
	"context"

	"github.com/proview/proview-api/internal/domain/docModel"
)

// SessionStore is the session-scoped view of the vector database. Every
// read and the session delete filters on session_id; the filter is the only
// isolation between concurrent users.
type SessionStore interface {
	UpsertChunks(ctx context.Context, chunks []docModel.Chunk, vectors [][]float32) error
	Search(ctx context.Context, queryVector []float32, sessionID string, k int) ([]docModel.Chunk, error)
	DeleteSession(ctx context.Context, sessionID string) (int, error)
	DeleteOlderThan(ctx context.Context, cutoffUnix int64) (int, error)
	SessionStats(ctx context.Context, sessionID string) (docModel.SessionStats, error)
}
