package rag

import (
	"context"
	"strings"
	"time"

	"github.com/proview/proview-api/internal/config"
	"github.com/proview/proview-api/internal/domain/coachModel"
	"github.com/proview/proview-api/internal/domain/docModel"
	"github.com/proview/proview-api/internal/metrics"
	"github.com/proview/proview-api/internal/rag/embedding"
	"github.com/proview/proview-api/internal/rag/ingest"
	"github.com/proview/proview-api/internal/rag/llm"
	"github.com/proview/proview-api/internal/rag/vectorDB"
	"github.com/proview/proview-api/pkg/logger_i"
)

// Service is the public contract the handlers call. It hides the vector
// store, the embedder and the LLM provider behind one surface so the HTTP
// layer never touches store internals.
type Service interface {
	Chat(ctx context.Context, sessionID string, userMessage string, history []coachModel.Turn) coachModel.CoachReply
	IngestDocument(ctx context.Context, path string, sessionID string) (int, error)
	ClearSession(ctx context.Context, sessionID string) (int, error)
	SessionStats(ctx context.Context, sessionID string) (docModel.SessionStats, error)
}

type service struct {
	store    vectorDB.SessionStore
	provider llm.Provider
	embedder embedding.Embedder
	logger   *logger_i.Logger
}

// NewService constructor
func NewService(store vectorDB.SessionStore, provider llm.Provider, em embedding.Embedder) Service {
	return &service{
		store:    store,
		provider: provider,
		embedder: em,
		logger:   logger_i.NewLogger("Coach Service"),
	}
}

// Chat runs one coaching turn. It never returns an error: every upstream
// failure is absorbed into a safe structured reply, the user only ever sees
// conversation.
func (s *service) Chat(ctx context.Context, sessionID string, userMessage string, history []coachModel.Turn) coachModel.CoachReply {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "session", shortSession(sessionID))

	userMessage = strings.TrimSpace(userMessage)
	if userMessage == "" {
		log.Warn("empty user input")
		return coachModel.EmptyInputReply()
	}

	contextBlock := s.retrieveContext(ctx, userMessage, sessionID, config.RetrievalK)
	trimmed := trimHistory(history, config.MaxHistoryLength)

	llmCtx, cancel := context.WithTimeout(ctx, config.LLMCallTimeout)
	defer cancel()

	start := time.Now()
	raw, err := s.provider.Generate(llmCtx, userMessage, contextBlock, trimmed)
	metrics.CaptureExecutionMetrics("llm_generation", time.Since(start))
	if err != nil {
		log.Error("LLM call failed, serving fallback", "error", err)
		metrics.CountReplyOutcome(coachModel.OutcomeRejected.String())
		return coachModel.FailureReply()
	}

	reply, outcome := coachModel.ParseReply(raw)
	metrics.CountReplyOutcome(outcome.String())
	if outcome != coachModel.OutcomeValid {
		log.Warn("model reply needed normalization", "outcome", outcome.String())
	}

	log.Info("chat turn complete")
	return reply
}

func (s *service) IngestDocument(ctx context.Context, path string, sessionID string) (int, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_ingestion", time.Since(start)) }()

	return ingest.ProcessDocument(ctx, path, sessionID, s.store, s.embedder)
}

func (s *service) ClearSession(ctx context.Context, sessionID string) (int, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "session", shortSession(sessionID))

	deleted, err := s.store.DeleteSession(ctx, sessionID)
	if err != nil {
		log.Error("session clear failed", "error", err)
		return 0, err
	}
	log.Info("session cleared", "deleted", deleted)
	return deleted, nil
}

func (s *service) SessionStats(ctx context.Context, sessionID string) (docModel.SessionStats, error) {
	return s.store.SessionStats(ctx, sessionID)
}
