package rag_test

import (
	"context"

	"github.com/proview/proview-api/internal/domain/coachModel"
	"github.com/proview/proview-api/internal/domain/docModel"
)

// MockStore implements vectorDB.SessionStore
type MockStore struct {
	// Control fields to simulate different behaviors
	OnUpsertChunks    func(ctx context.Context, chunks []docModel.Chunk, vectors [][]float32) error
	OnSearch          func(ctx context.Context, queryVector []float32, sessionID string, k int) ([]docModel.Chunk, error)
	OnDeleteSession   func(ctx context.Context, sessionID string) (int, error)
	OnDeleteOlderThan func(ctx context.Context, cutoffUnix int64) (int, error)
	OnSessionStats    func(ctx context.Context, sessionID string) (docModel.SessionStats, error)
}

func (m *MockStore) UpsertChunks(ctx context.Context, chunks []docModel.Chunk, vectors [][]float32) error {
	if m.OnUpsertChunks != nil {
		return m.OnUpsertChunks(ctx, chunks, vectors)
	}
	return nil
}

func (m *MockStore) Search(ctx context.Context, v []float32, sessionID string, k int) ([]docModel.Chunk, error) {
	if m.OnSearch != nil {
		return m.OnSearch(ctx, v, sessionID, k)
	}
	return nil, nil
}

func (m *MockStore) DeleteSession(ctx context.Context, sessionID string) (int, error) {
	if m.OnDeleteSession != nil {
		return m.OnDeleteSession(ctx, sessionID)
	}
	return 0, nil
}

func (m *MockStore) DeleteOlderThan(ctx context.Context, cutoffUnix int64) (int, error) {
	if m.OnDeleteOlderThan != nil {
		return m.OnDeleteOlderThan(ctx, cutoffUnix)
	}
	return 0, nil
}

func (m *MockStore) SessionStats(ctx context.Context, sessionID string) (docModel.SessionStats, error) {
	if m.OnSessionStats != nil {
		return m.OnSessionStats(ctx, sessionID)
	}
	return docModel.SessionStats{}, nil
}

type MockEmbedder struct {
	OnGetEmbedding   func(ctx context.Context, query string) ([]float32, error)
	OnBatchEmbedding func(ctx context.Context, chunks []string) ([][]float32, error)
}

func (m *MockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, query)
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (m *MockEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	if m.OnBatchEmbedding != nil {
		return m.OnBatchEmbedding(ctx, chunks)
	}
	out := make([][]float32, len(chunks))
	for i := range out {
		out[i] = []float32{0.1, 0.2, 0.3}
	}
	return out, nil
}

type MockProvider struct {
	OnGenerate func(ctx context.Context, userInput string, contextBlock string, history []coachModel.Turn) (string, error)
}

func (m *MockProvider) Generate(ctx context.Context, userInput string, contextBlock string, history []coachModel.Turn) (string, error) {
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, userInput, contextBlock, history)
	}
	return `{"interviewer_chat":"default reply","suggested_replies":[]}`, nil
}
