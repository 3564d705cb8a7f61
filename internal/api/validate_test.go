package api

import (
	"strings"
	"testing"

	"github.com/proview/proview-api/internal/domain/coachModel"
)

func TestValidSessionID(t *testing.T) {
	valid := []string{
		"abcd1234",
		"session_abc-123",
		strings.Repeat("a", 100),
	}
	for _, id := range valid {
		if !ValidSessionID(id) {
			t.Errorf("ValidSessionID(%q) = false, want true", id)
		}
	}

	invalid := []string{
		"",
		"short",                    // under 8 chars
		strings.Repeat("a", 101),   // over 100 chars
		"has space",
		"dot.dot",
		"semi;colon",
		"path/../traversal",
	}
	for _, id := range invalid {
		if ValidSessionID(id) {
			t.Errorf("ValidSessionID(%q) = true, want false", id)
		}
	}
}

func TestValidateStruct_ChatRequest(t *testing.T) {
	base := ChatRequest{
		SessionID:   "session-abc-123",
		UserMessage: "hello",
	}

	if err := ValidateStruct(base); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(r *ChatRequest)
	}{
		{"Empty_Message", func(r *ChatRequest) { r.UserMessage = "" }},
		{"Oversized_Message", func(r *ChatRequest) { r.UserMessage = strings.Repeat("a", 5001) }},
		{"Short_Session", func(r *ChatRequest) { r.SessionID = "abc" }},
		{"Bad_Session_Chars", func(r *ChatRequest) { r.SessionID = "abc def ghi" }},
		{"Oversized_History", func(r *ChatRequest) {
			r.History = make([]coachModel.Turn, 51)
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := base
			tc.mutate(&req)
			if err := ValidateStruct(req); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
