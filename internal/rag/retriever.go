package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/proview/proview-api/internal/config"
	"github.com/proview/proview-api/internal/metrics"
)

const (
	noQueryMessage   = "No query provided."
	noContextMessage = "No relevant context available. Please upload your resume or job description to get personalized interview questions."
	storeDownMessage = "Error retrieving context. Please try again."

	contextSeparator = "\n\n---\n\n"
)

// retrieveContext embeds the query, searches the session-scoped store and
// formats the matches as numbered, source-attributed blocks. The formatted
// string is the only thing the generator ever sees. Read failures degrade
// to a fixed message - the chat path must not fail because retrieval did.
func (s *service) retrieveContext(ctx context.Context, query string, sessionID string, k int) string {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "session", shortSession(sessionID))

	query = strings.TrimSpace(query)
	if query == "" {
		log.Warn("empty retrieval query")
		return noQueryMessage
	}

	start := time.Now()
	vector, err := s.embedder.GetEmbedding(ctx, query)
	metrics.CaptureExecutionMetrics("embedding", time.Since(start))
	if err != nil {
		log.Error("query embedding failed", "error", err)
		return storeDownMessage
	}

	start = time.Now()
	chunks, err := s.store.Search(ctx, vector, sessionID, k)
	metrics.CaptureExecutionMetrics("vector_search", time.Since(start))
	if err != nil {
		log.Error("vector search failed", "error", err)
		return storeDownMessage
	}

	if len(chunks) == 0 {
		log.Info("no context found for session")
		return noContextMessage
	}

	parts := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		parts = append(parts, fmt.Sprintf("[Source %d: %s]\n%s", i+1, chunk.SourceFile, strings.TrimSpace(chunk.Content)))
	}

	log.Debug("retrieved context", "chunks", len(chunks))
	return strings.Join(parts, contextSeparator)
}
