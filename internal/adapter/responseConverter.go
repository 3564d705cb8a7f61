package adapter

import (
	"fmt"
	"time"

	"github.com/proview/proview-api/internal/api"
	"github.com/proview/proview-api/internal/domain/docModel"
)

func ToUploadResponse(filename string, chunks int) api.UploadResponse {
	return api.UploadResponse{
		Status:         "success",
		Message:        fmt.Sprintf("Successfully processed '%s'", filename),
		FilesProcessed: 1,
		ChunksCreated:  chunks,
	}
}

func ToClearResponse(deleted int) api.ClearResponse {
	return api.ClearResponse{
		Status:           "success",
		Message:          "Session data cleared successfully",
		DocumentsDeleted: deleted,
	}
}

func ToStatsResponse(sessionID string, stats docModel.SessionStats) api.StatsResponse {
	files := stats.SourceFiles
	if files == nil {
		files = []string{}
	}
	return api.StatsResponse{
		SessionID:     sessionID,
		DocumentCount: stats.DocumentCount,
		HasData:       stats.DocumentCount > 0,
		SourceFiles:   files,
		FileCount:     len(files),
	}
}

func ToCleanupResponse(deleted int, hours float64) api.CleanupResponse {
	return api.CleanupResponse{
		Status:           "success",
		Message:          "Cleanup completed",
		DocumentsDeleted: deleted,
		CutoffHours:      hours,
	}
}

func BadRequest(detail string, errorType string) api.ErrorResponse {
	return api.ErrorResponse{
		Detail:    detail,
		ErrorType: errorType,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
