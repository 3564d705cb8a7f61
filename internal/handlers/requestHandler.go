package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/proview/proview-api/internal/adapter"
	"github.com/proview/proview-api/internal/adapter/utils"
	"github.com/proview/proview-api/internal/api"
	"github.com/proview/proview-api/internal/config"
	"github.com/proview/proview-api/internal/janitor"
	"github.com/proview/proview-api/internal/rag"
	"github.com/proview/proview-api/pkg/logger_i"
)

var (
	coachService rag.Service
	cleaner      *janitor.Janitor
	logRH        *logger_i.Logger
)

func Init(service rag.Service, j *janitor.Janitor) {
	coachService = service
	cleaner = j
	logRH = logger_i.NewLogger("RequestHandler")
}

// HealthHandler godoc
// @Summary      Health check
// @Description  Liveness probe with service metadata.
// @Tags         Ops
// @Produce      json
// @Success      200  {object}  api.HealthResponse
// @Router       /health [get]
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, api.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Service:   "ProView AI Coach",
		Version:   "1.0.0",
	})
}

// UploadHandler godoc
// @Summary      Upload a document for a session
// @Description  Receives a resume or job description via multipart/form-data, chunks it and indexes it under the session.
// @Tags         Documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        session_id  formData  string  true  "Session identifier"
// @Param        file        formData  file    true  "The PDF, DOCX or TXT file"
// @Success      200  {object}  api.UploadResponse
// @Failure      400  {object}  api.ErrorResponse "Bad extension, bad session id or unreadable document"
// @Failure      413  {object}  api.ErrorResponse "File too large"
// @Router       /upload [post]
func UploadHandler(w http.ResponseWriter, r *http.Request) {
	log := logRH.With("traceId", r.Context().Value(config.TRACE_ID_KEY))

	maxBytes := int64(config.MaxFileSizeMB) << 20
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		WriteErrorResponse(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("File too large or bad request. Maximum size: %dMB", config.MaxFileSizeMB), "ValidationError")
		return
	}

	sessionID := r.FormValue("session_id")
	if !api.ValidSessionID(sessionID) {
		WriteErrorResponse(w, http.StatusBadRequest, "Invalid session_id", "ValidationError")
		return
	}

	fileReader, fileMetadata, err := r.FormFile("file")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "Could not retrieve file", "ValidationError")
		return
	}
	defer fileReader.Close()

	ext := strings.ToLower(filepath.Ext(fileMetadata.Filename))
	if ext != ".pdf" && ext != ".docx" && ext != ".txt" {
		WriteErrorResponse(w, http.StatusBadRequest,
			fmt.Sprintf("Unsupported file type '%s'. Allowed: .pdf, .docx, .txt", ext), "ValidationError")
		return
	}

	tempPath, err := saveUpload(fileReader, sessionID, ext, maxBytes)
	if err != nil {
		if errors.Is(err, errUploadTooLarge) {
			WriteErrorResponse(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("File exceeds maximum size of %dMB", config.MaxFileSizeMB), "ValidationError")
			return
		}
		log.Error("could not stage upload", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Storage error", "StoreError")
		return
	}
	defer func() {
		if err := os.Remove(tempPath); err != nil {
			log.Error("failed to cleanup temp file", "path", tempPath, "error", err)
		}
	}()

	chunks, err := coachService.IngestDocument(r.Context(), tempPath, sessionID)
	if err != nil {
		log.Error("ingestion failed", "file", fileMetadata.Filename, "error", err)
		writeIngestError(w, fileMetadata.Filename, err)
		return
	}

	log.Info("upload processed", "file", fileMetadata.Filename, "chunks", chunks)
	writeJsonResponse(w, http.StatusOK, adapter.ToUploadResponse(fileMetadata.Filename, chunks))
}

// ChatHandler godoc
// @Summary      One coaching turn
// @Description  Retrieves session context, invokes the coach model and returns a validated structured reply.
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Param        request  body      api.ChatRequest  true  "Session, message and bounded history"
// @Success      200      {object}  api.ChatResponse
// @Failure      400      {object}  api.ErrorResponse
// @Router       /chat [post]
func ChatHandler(w http.ResponseWriter, r *http.Request) {
	log := logRH.With("traceId", r.Context().Value(config.TRACE_ID_KEY))

	var requestData api.ChatRequest
	defer closeBody(r.Body)
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
		log.Warn("undecodable chat request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, "Bad Request", "ValidationError")
		return
	}
	requestData.UserMessage = strings.TrimSpace(requestData.UserMessage)
	if err := api.ValidateStruct(requestData); err != nil {
		log.Warn("invalid chat request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, "Invalid chat request: "+err.Error(), "ValidationError")
		return
	}

	reply := coachService.Chat(r.Context(), requestData.SessionID, requestData.UserMessage, requestData.History)
	writeJsonResponse(w, http.StatusOK, api.ChatResponse{AIResponse: reply})
}

// ClearHandler godoc
// @Summary      Clear a session
// @Description  Deletes every indexed chunk belonging to the session.
// @Tags         Sessions
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        session_id  formData  string  true  "Session identifier"
// @Success      200  {object}  api.ClearResponse
// @Failure      400  {object}  api.ErrorResponse
// @Router       /clear [post]
func ClearHandler(w http.ResponseWriter, r *http.Request) {
	log := logRH.With("traceId", r.Context().Value(config.TRACE_ID_KEY))

	sessionID := r.FormValue("session_id")
	if !api.ValidSessionID(sessionID) {
		WriteErrorResponse(w, http.StatusBadRequest, "Invalid session_id", "ValidationError")
		return
	}

	deleted, err := coachService.ClearSession(r.Context(), sessionID)
	if err != nil {
		log.Error("clear failed", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Failed to clear session", "StoreError")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToClearResponse(deleted))
}

// StatsHandler godoc
// @Summary      Session statistics
// @Description  Reports chunk count and distinct source files for a session.
// @Tags         Sessions
// @Produce      json
// @Param        id   path      string  true  "Session identifier"
// @Success      200  {object}  api.StatsResponse
// @Failure      400  {object}  api.ErrorResponse
// @Router       /session/{id}/stats [get]
func StatsHandler(w http.ResponseWriter, r *http.Request) {
	log := logRH.With("traceId", r.Context().Value(config.TRACE_ID_KEY))

	sessionID := utils.GetChiURLParam(r, "id")
	if !api.ValidSessionID(sessionID) {
		WriteErrorResponse(w, http.StatusBadRequest, "Invalid session_id", "ValidationError")
		return
	}

	stats, err := coachService.SessionStats(r.Context(), sessionID)
	if err != nil {
		log.Error("stats lookup failed", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Failed to get stats", "StoreError")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToStatsResponse(sessionID, stats))
}

// CleanupHandler godoc
// @Summary      Trigger the janitor
// @Description  Deletes chunks older than the given number of hours across all sessions. Best-effort.
// @Tags         Ops
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        hours  formData  number  false  "Eviction threshold in hours (default from config)"
// @Success      200  {object}  api.CleanupResponse
// @Failure      400  {object}  api.ErrorResponse
// @Router       /admin/cleanup [post]
func CleanupHandler(w http.ResponseWriter, r *http.Request) {
	hours := float64(config.SessionTimeoutHours)
	if raw := r.FormValue("hours"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			WriteErrorResponse(w, http.StatusBadRequest, "Hours must be a positive number", "ValidationError")
			return
		}
		hours = parsed
	}

	deleted := cleaner.RunOnce(r.Context(), hours)
	writeJsonResponse(w, http.StatusOK, adapter.ToCleanupResponse(deleted, hours))
}
