package rag_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/proview/proview-api/internal/domain/coachModel"
	"github.com/proview/proview-api/internal/domain/docModel"
	"github.com/proview/proview-api/internal/rag"
)

func chunk(session, file, content string) docModel.Chunk {
	return docModel.Chunk{SessionID: session, SourceFile: file, Content: content}
}

func TestChat_Scenarios(t *testing.T) {
	tests := []struct {
		name         string
		userMessage  string
		setupMocks   func(e *MockEmbedder, s *MockStore, p *MockProvider)
		expectedChat string
		wantFallback bool
	}{
		{
			name:        "Success_Full_Flow",
			userMessage: "Ask me a question about Go",
			setupMocks: func(e *MockEmbedder, s *MockStore, p *MockProvider) {
				s.OnSearch = func(ctx context.Context, v []float32, sessionID string, k int) ([]docModel.Chunk, error) {
					return []docModel.Chunk{chunk(sessionID, "resume.pdf", "Go developer, 5 years")}, nil
				}
				p.OnGenerate = func(ctx context.Context, q, c string, h []coachModel.Turn) (string, error) {
					return `{"interviewer_chat":"Tell me about your Go experience.","suggested_replies":["I built services"]}`, nil
				}
			},
			expectedChat: "Tell me about your Go experience.",
		},
		{
			name:        "LLM_Failure_Serves_Fallback",
			userMessage: "hello",
			setupMocks: func(e *MockEmbedder, s *MockStore, p *MockProvider) {
				p.OnGenerate = func(ctx context.Context, q, c string, h []coachModel.Turn) (string, error) {
					return "", errors.New("upstream 500")
				}
			},
			wantFallback: true,
		},
		{
			name:        "Undecodable_Reply_Serves_Fallback",
			userMessage: "hello",
			setupMocks: func(e *MockEmbedder, s *MockStore, p *MockProvider) {
				p.OnGenerate = func(ctx context.Context, q, c string, h []coachModel.Turn) (string, error) {
					return "sorry, no JSON today", nil
				}
			},
			wantFallback: true,
		},
		{
			name:        "Embedding_Failure_Still_Answers",
			userMessage: "hello",
			setupMocks: func(e *MockEmbedder, s *MockStore, p *MockProvider) {
				e.OnGetEmbedding = func(ctx context.Context, q string) ([]float32, error) {
					return nil, errors.New("quota")
				}
				p.OnGenerate = func(ctx context.Context, q, c string, h []coachModel.Turn) (string, error) {
					if !strings.Contains(c, "Error retrieving context") {
						t.Errorf("expected degraded context message, got %q", c)
					}
					return `{"interviewer_chat":"ok","suggested_replies":[]}`, nil
				}
			},
			expectedChat: "ok",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := &MockEmbedder{}
			s := &MockStore{}
			p := &MockProvider{}
			tc.setupMocks(e, s, p)

			service := rag.NewService(s, p, e)
			reply := service.Chat(context.Background(), "session-abc-123", tc.userMessage, nil)

			if tc.wantFallback {
				if !strings.Contains(reply.InterviewerChat, "I apologize") {
					t.Fatalf("expected failure fallback, got %q", reply.InterviewerChat)
				}
				if len(reply.SuggestedReplies) == 0 {
					t.Fatal("fallback reply must carry suggestions")
				}
				return
			}
			if reply.InterviewerChat != tc.expectedChat {
				t.Fatalf("expected chat %q, got %q", tc.expectedChat, reply.InterviewerChat)
			}
		})
	}
}

func TestChat_EmptyInputShortCircuits(t *testing.T) {
	p := &MockProvider{
		OnGenerate: func(ctx context.Context, q, c string, h []coachModel.Turn) (string, error) {
			t.Fatal("LLM must not be called for empty input")
			return "", nil
		},
	}
	e := &MockEmbedder{
		OnGetEmbedding: func(ctx context.Context, q string) ([]float32, error) {
			t.Fatal("embedder must not be called for empty input")
			return nil, nil
		},
	}

	service := rag.NewService(&MockStore{}, p, e)
	reply := service.Chat(context.Background(), "session-abc-123", "   \n\t ", nil)

	if !strings.Contains(reply.InterviewerChat, "didn't receive") {
		t.Fatalf("expected empty-input reply, got %q", reply.InterviewerChat)
	}
}

func TestChat_SearchIsSessionScoped(t *testing.T) {
	var searchedSession string
	s := &MockStore{
		OnSearch: func(ctx context.Context, v []float32, sessionID string, k int) ([]docModel.Chunk, error) {
			searchedSession = sessionID
			return nil, nil
		},
	}
	p := &MockProvider{
		OnGenerate: func(ctx context.Context, q, c string, h []coachModel.Turn) (string, error) {
			if !strings.Contains(c, "No relevant context available") {
				t.Errorf("empty search must produce the no-context message, got %q", c)
			}
			return `{"interviewer_chat":"ok","suggested_replies":[]}`, nil
		},
	}

	service := rag.NewService(s, p, &MockEmbedder{})
	service.Chat(context.Background(), "user-a-session", "question", nil)

	if searchedSession != "user-a-session" {
		t.Fatalf("search ran against session %q, want %q", searchedSession, "user-a-session")
	}
}

func TestChat_ContextFormatting(t *testing.T) {
	s := &MockStore{
		OnSearch: func(ctx context.Context, v []float32, sessionID string, k int) ([]docModel.Chunk, error) {
			return []docModel.Chunk{
				chunk(sessionID, "resume.pdf", "first chunk"),
				chunk(sessionID, "jd.txt", "second chunk"),
			}, nil
		},
	}
	var captured string
	p := &MockProvider{
		OnGenerate: func(ctx context.Context, q, c string, h []coachModel.Turn) (string, error) {
			captured = c
			return `{"interviewer_chat":"ok","suggested_replies":[]}`, nil
		},
	}

	service := rag.NewService(s, p, &MockEmbedder{})
	service.Chat(context.Background(), "session-abc-123", "question", nil)

	if !strings.Contains(captured, "[Source 1: resume.pdf]\nfirst chunk") {
		t.Errorf("first block malformed:\n%s", captured)
	}
	if !strings.Contains(captured, "[Source 2: jd.txt]\nsecond chunk") {
		t.Errorf("second block malformed:\n%s", captured)
	}
	if !strings.Contains(captured, "\n\n---\n\n") {
		t.Errorf("blocks must be separated:\n%s", captured)
	}
}

func TestChat_HistoryIsBounded(t *testing.T) {
	history := make([]coachModel.Turn, 25)
	for i := range history {
		history[i] = coachModel.Turn{Role: coachModel.RoleUser, Content: "turn"}
	}

	var passed int
	p := &MockProvider{
		OnGenerate: func(ctx context.Context, q, c string, h []coachModel.Turn) (string, error) {
			passed = len(h)
			return `{"interviewer_chat":"ok","suggested_replies":[]}`, nil
		},
	}

	service := rag.NewService(&MockStore{}, p, &MockEmbedder{})
	service.Chat(context.Background(), "session-abc-123", "question", history)

	if passed != 10 {
		t.Fatalf("provider received %d turns, want 10", passed)
	}
}

// memoryStore keeps upserted chunks and serves session-filtered searches,
// standing in for the vector database across a whole upload-then-chat flow.
type memoryStore struct {
	MockStore
	chunks []docModel.Chunk
}

func (m *memoryStore) UpsertChunks(ctx context.Context, chunks []docModel.Chunk, vectors [][]float32) error {
	m.chunks = append(m.chunks, chunks...)
	return nil
}

func (m *memoryStore) Search(ctx context.Context, v []float32, sessionID string, k int) ([]docModel.Chunk, error) {
	var out []docModel.Chunk
	for _, c := range m.chunks {
		if c.SessionID == sessionID && len(out) < k {
			out = append(out, c)
		}
	}
	return out, nil
}

func TestUploadThenChat_SourceAttribution(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	content := "Senior Go engineer with five years of distributed systems work."
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	store := &memoryStore{}
	var captured string
	p := &MockProvider{
		OnGenerate: func(ctx context.Context, q, c string, h []coachModel.Turn) (string, error) {
			captured = c
			return `{"interviewer_chat":"Tell me about that work.","suggested_replies":[]}`, nil
		},
	}
	service := rag.NewService(store, p, &MockEmbedder{})

	chunks, err := service.IngestDocument(context.Background(), path, "session-abc-123")
	if err != nil {
		t.Fatalf("ingestion failed: %v", err)
	}
	if chunks == 0 {
		t.Fatal("expected at least one chunk")
	}

	reply := service.Chat(context.Background(), "session-abc-123", "ask me something", nil)
	if reply.InterviewerChat != "Tell me about that work." {
		t.Fatalf("reply = %q", reply.InterviewerChat)
	}
	if !strings.Contains(captured, "[Source 1: notes.txt]") {
		t.Fatalf("context must attribute the uploaded file:\n%s", captured)
	}
	if !strings.Contains(captured, "Senior Go engineer") {
		t.Fatalf("context must carry the uploaded content:\n%s", captured)
	}

	// a different session must not see the upload
	other := service.Chat(context.Background(), "session-xyz-789", "ask me something", nil)
	if other.InterviewerChat == "" {
		t.Fatal("other session must still get a reply")
	}
	if !strings.Contains(captured, "No relevant context available") {
		t.Fatalf("other session must retrieve nothing:\n%s", captured)
	}
}

func TestClearSession(t *testing.T) {
	s := &MockStore{
		OnDeleteSession: func(ctx context.Context, sessionID string) (int, error) {
			if sessionID != "session-abc-123" {
				t.Errorf("delete ran against session %q", sessionID)
			}
			return 7, nil
		},
	}
	service := rag.NewService(s, &MockProvider{}, &MockEmbedder{})

	deleted, err := service.ClearSession(context.Background(), "session-abc-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != 7 {
		t.Fatalf("deleted = %d, want 7", deleted)
	}
}

func TestClearSession_StoreError(t *testing.T) {
	s := &MockStore{
		OnDeleteSession: func(ctx context.Context, sessionID string) (int, error) {
			return 0, errors.New("store offline")
		},
	}
	service := rag.NewService(s, &MockProvider{}, &MockEmbedder{})

	if _, err := service.ClearSession(context.Background(), "session-abc-123"); err == nil {
		t.Fatal("expected store error to propagate")
	}
}
