package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/proview/proview-api/internal/domain/coachModel"
	"github.com/proview/proview-api/internal/domain/docModel"
	"github.com/proview/proview-api/internal/handlers"
	"github.com/proview/proview-api/internal/janitor"
	"github.com/proview/proview-api/pkg/logger_i"
)

type stubService struct {
	chatReply     coachModel.CoachReply
	ingestChunks  int
	ingestErr     error
	clearDeleted  int
	statsResult   docModel.SessionStats
	lastSessionID string
}

func (s *stubService) Chat(ctx context.Context, sessionID string, userMessage string, history []coachModel.Turn) coachModel.CoachReply {
	s.lastSessionID = sessionID
	return s.chatReply
}
func (s *stubService) IngestDocument(ctx context.Context, path string, sessionID string) (int, error) {
	s.lastSessionID = sessionID
	return s.ingestChunks, s.ingestErr
}
func (s *stubService) ClearSession(ctx context.Context, sessionID string) (int, error) {
	s.lastSessionID = sessionID
	return s.clearDeleted, nil
}
func (s *stubService) SessionStats(ctx context.Context, sessionID string) (docModel.SessionStats, error) {
	s.lastSessionID = sessionID
	return s.statsResult, nil
}

type noopStore struct{}

func (noopStore) UpsertChunks(ctx context.Context, chunks []docModel.Chunk, vectors [][]float32) error {
	return nil
}
func (noopStore) Search(ctx context.Context, v []float32, sessionID string, k int) ([]docModel.Chunk, error) {
	return nil, nil
}
func (noopStore) DeleteSession(ctx context.Context, sessionID string) (int, error)   { return 0, nil }
func (noopStore) DeleteOlderThan(ctx context.Context, cutoffUnix int64) (int, error) { return 5, nil }
func (noopStore) SessionStats(ctx context.Context, sessionID string) (docModel.SessionStats, error) {
	return docModel.SessionStats{}, nil
}

func setup(t *testing.T, service *stubService) {
	t.Helper()
	logger_i.Init()
	handlers.Init(service, janitor.New(noopStore{}))
}

func TestChatHandler(t *testing.T) {
	service := &stubService{chatReply: coachModel.CoachReply{InterviewerChat: "hello", SuggestedReplies: []string{}}}
	setup(t, service)

	body := `{"session_id":"session-abc-123","user_message":"hi","history":[]}`
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handlers.ChatHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if service.lastSessionID != "session-abc-123" {
		t.Fatalf("handler passed session %q", service.lastSessionID)
	}
	var resp struct {
		AIResponse coachModel.CoachReply `json:"ai_response"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.AIResponse.InterviewerChat != "hello" {
		t.Fatalf("reply = %+v", resp.AIResponse)
	}
}

func TestChatHandler_RejectsBadSession(t *testing.T) {
	service := &stubService{}
	setup(t, service)

	body := `{"session_id":"bad id!","user_message":"hi"}`
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handlers.ChatHandler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ValidationError") {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestUploadHandler(t *testing.T) {
	service := &stubService{ingestChunks: 4}
	setup(t, service)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("session_id", "session-abc-123")
	fw, _ := mw.CreateFormFile("file", "resume.txt")
	fw.Write([]byte("plain text resume"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()

	handlers.UploadHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"chunks_created":4`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestUploadHandler_RejectsBadExtension(t *testing.T) {
	service := &stubService{}
	setup(t, service)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("session_id", "session-abc-123")
	fw, _ := mw.CreateFormFile("file", "malware.exe")
	fw.Write([]byte("nope"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()

	handlers.UploadHandler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestClearHandler(t *testing.T) {
	service := &stubService{clearDeleted: 9}
	setup(t, service)

	form := strings.NewReader("session_id=session-abc-123")
	req := httptest.NewRequest(http.MethodPost, "/clear", form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	handlers.ClearHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"documents_deleted":9`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestStatsHandler(t *testing.T) {
	service := &stubService{statsResult: docModel.SessionStats{DocumentCount: 3, SourceFiles: []string{"resume.pdf"}}}
	setup(t, service)

	r := chi.NewRouter()
	r.Get("/session/{id}/stats", handlers.StatsHandler)

	req := httptest.NewRequest(http.MethodGet, "/session/session-abc-123/stats", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if service.lastSessionID != "session-abc-123" {
		t.Fatalf("handler passed session %q", service.lastSessionID)
	}
	if !strings.Contains(rec.Body.String(), `"document_count":3`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestCleanupHandler(t *testing.T) {
	service := &stubService{}
	setup(t, service)

	form := strings.NewReader("hours=1.5")
	req := httptest.NewRequest(http.MethodPost, "/admin/cleanup", form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	handlers.CleanupHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"documents_deleted":5`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestCleanupHandler_RejectsNegativeHours(t *testing.T) {
	service := &stubService{}
	setup(t, service)

	form := strings.NewReader("hours=-1")
	req := httptest.NewRequest(http.MethodPost, "/admin/cleanup", form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	handlers.CleanupHandler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
