package api

import "github.com/proview/proview-api/internal/domain/coachModel"

// requests---------------------

type ChatRequest struct {
	SessionID   string            `json:"session_id" validate:"required,min=8,max=100,session_id"`
	UserMessage string            `json:"user_message" validate:"required,min=1,max=5000"`
	History     []coachModel.Turn `json:"history" validate:"max=50,dive"`
}

// responses--------------------

type ChatResponse struct {
	AIResponse coachModel.CoachReply `json:"ai_response"`
}

type UploadResponse struct {
	Status         string `json:"status" example:"success"`
	Message        string `json:"message"`
	FilesProcessed int    `json:"files_processed"`
	ChunksCreated  int    `json:"chunks_created"`
}

type ClearResponse struct {
	Status           string `json:"status" example:"success"`
	Message          string `json:"message"`
	DocumentsDeleted int    `json:"documents_deleted"`
}

type StatsResponse struct {
	SessionID     string   `json:"session_id"`
	DocumentCount int      `json:"document_count"`
	HasData       bool     `json:"has_data"`
	SourceFiles   []string `json:"source_files"`
	FileCount     int      `json:"file_count"`
}

type CleanupResponse struct {
	Status           string  `json:"status"`
	Message          string  `json:"message"`
	DocumentsDeleted int     `json:"documents_deleted"`
	CutoffHours      float64 `json:"cutoff_hours"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
	Version   string `json:"version"`
}

type ErrorResponse struct {
	Detail    string `json:"detail"`
	ErrorType string `json:"error_type"`
	Timestamp string `json:"timestamp"`
}
