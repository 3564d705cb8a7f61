package rag

import "github.com/proview/proview-api/internal/domain/coachModel"

// trimHistory keeps the most recent turns so the prompt cannot grow without
// bound.
func trimHistory(history []coachModel.Turn, max int) []coachModel.Turn {
	if len(history) <= max {
		return history
	}
	return history[len(history)-max:]
}

// shortSession keeps logs readable without leaking the whole id.
func shortSession(sessionID string) string {
	if len(sessionID) <= 8 {
		return sessionID
	}
	return sessionID[:8]
}
