package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/proview/proview-api/internal/adapter/utils"
	"github.com/proview/proview-api/internal/api"
	"github.com/proview/proview-api/internal/config"
	"github.com/proview/proview-api/internal/rag/ingest"
)

var errUploadTooLarge = errors.New("upload exceeds size limit")

func writeJsonResponse(w http.ResponseWriter, httpCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logRH.Error("failed to encode response", "error", err)
	}
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, detail string, errorType string) {
	writeJsonResponse(w, httpCode, api.ErrorResponse{
		Detail:    detail,
		ErrorType: errorType,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func closeBody(body io.ReadCloser) {
	if err := body.Close(); err != nil {
		logRH.Error("failed to close request body", "error", err)
	}
}

// saveUpload streams the multipart part to a file under the temp upload
// directory. The filename never echoes client input beyond the already
// validated session id and extension.
func saveUpload(src io.Reader, sessionID string, ext string, maxBytes int64) (string, error) {
	dir, err := getTargetDirectory()
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s_%s_%d%s", sessionID, utils.GetNewUUID()[:8], time.Now().Unix(), ext)
	path := filepath.Join(dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	written, err := io.Copy(dst, io.LimitReader(src, maxBytes+1))
	if err != nil {
		os.Remove(path)
		return "", err
	}
	if written > maxBytes {
		os.Remove(path)
		return "", errUploadTooLarge
	}
	return path, nil
}

func getTargetDirectory() (string, error) {
	dir := config.TempUploadDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

func writeIngestError(w http.ResponseWriter, filename string, err error) {
	switch {
	case errors.Is(err, ingest.ErrUnsupportedType):
		WriteErrorResponse(w, http.StatusBadRequest,
			fmt.Sprintf("Unsupported file type for '%s'", filename), "ValidationError")
	case errors.Is(err, ingest.ErrEmptyExtraction), errors.Is(err, ingest.ErrNoChunksProduced):
		WriteErrorResponse(w, http.StatusBadRequest,
			fmt.Sprintf("Could not extract any text from '%s'", filename), "ExtractionError")
	default:
		WriteErrorResponse(w, http.StatusInternalServerError,
			fmt.Sprintf("Failed to process '%s'", filename), "StoreError")
	}
}
