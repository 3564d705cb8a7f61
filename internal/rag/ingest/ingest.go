package ingest

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/proview/proview-api/internal/adapter/utils"
	"github.com/proview/proview-api/internal/config"
	"github.com/proview/proview-api/internal/domain/docModel"
	"github.com/proview/proview-api/internal/rag/embedding"
	"github.com/proview/proview-api/internal/rag/vectorDB"
	"github.com/proview/proview-api/pkg/logger_i"
)

var (
	ErrUnsupportedType  = errors.New("unsupported file type")
	ErrEmptyExtraction  = errors.New("no content could be extracted from the file")
	ErrNoChunksProduced = errors.New("document splitting produced no chunks")
)

var logger = logger_i.NewLogger("Document Ingestion")

// LoadDocument extracts raw units from the file and stamps every unit with
// the session id, the ingestion time and the source file name. The three
// stamps are the only metadata the rest of the pipeline relies on.
func LoadDocument(path string, sessionID string) ([]docModel.RawUnit, error) {
	docType := getDocType(path)
	if docType == docModel.ERR {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, strings.ToLower(filepath.Ext(path)))
	}

	units, err := extractText(path, docType)
	if err != nil {
		return nil, err
	}
	if len(units) == 0 {
		return nil, ErrEmptyExtraction
	}

	now := time.Now().Unix()
	source := filepath.Base(path)
	for i := range units {
		units[i].SessionID = sessionID
		units[i].Timestamp = now
		units[i].SourceFile = source
	}

	logger.Debug("extracted document", "source", source, "units", len(units))
	return units, nil
}

// PrepareChunks runs the sliding-window splitter over every unit and maps
// the slices into persisted chunks, carrying the unit's stamps through.
func PrepareChunks(units []docModel.RawUnit, chunkSize int, overlap int) ([]docModel.Chunk, error) {
	var allChunks []docModel.Chunk

	for _, unit := range units {
		pieces := splitTextIntoChunks(unit.Content, chunkSize, overlap)
		for i, text := range pieces {
			allChunks = append(allChunks, docModel.Chunk{
				ChunkID:    utils.GetNewUUID(),
				Content:    text,
				SessionID:  unit.SessionID,
				Timestamp:  unit.Timestamp,
				SourceFile: unit.SourceFile,
				PageNum:    unit.PageNum,
				ChunkOrder: i,
			})
		}
	}

	if len(units) > 0 && len(allChunks) == 0 {
		return nil, ErrNoChunksProduced
	}
	return allChunks, nil
}

func getDocType(docPath string) docModel.DocType {
	switch strings.ToLower(filepath.Ext(docPath)) {
	case ".pdf":
		return docModel.PDF
	case ".docx":
		return docModel.DOC
	case ".txt":
		return docModel.TXT
	default:
		return docModel.ERR
	}
}

func extractText(path string, contentType docModel.DocType) ([]docModel.RawUnit, error) {
	switch contentType {
	case docModel.PDF:
		return extractPDF(path)
	case docModel.DOC, docModel.TXT:
		return extractFlat(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}
}

// BatchIngest embeds and upserts in fixed-size batches so one oversized
// upload cannot produce an unbounded embedding request.
func BatchIngest(ctx context.Context, chunks []docModel.Chunk, store vectorDB.SessionStore, embedder embedding.Embedder) error {
	const batchSize = 100

	for i := 0; i < len(chunks); i += batchSize {
		end := i + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		currentBatch := chunks[i:end]

		texts := make([]string, 0, len(currentBatch))
		for _, c := range currentBatch {
			texts = append(texts, c.Content)
		}

		logger.Debug("starting embedding call", "batch size", len(currentBatch))
		vectors, err := embedder.BatchEmbedding(ctx, texts)
		if err != nil {
			return fmt.Errorf("embedding batch failed: %w", err)
		}

		if err = store.UpsertChunks(ctx, currentBatch, vectors); err != nil {
			return fmt.Errorf("upserting to vector store failed: %w", err)
		}
	}
	return nil
}

// ProcessDocument is the whole write path: extract, stamp, chunk, embed,
// upsert. Returns the number of chunks created.
func ProcessDocument(ctx context.Context, path string, sessionID string, store vectorDB.SessionStore, embedder embedding.Embedder) (int, error) {
	units, err := LoadDocument(path, sessionID)
	if err != nil {
		return 0, err
	}

	chunks, err := PrepareChunks(units, config.ChunkSize, config.ChunkOverlap)
	if err != nil {
		return 0, err
	}

	if err := BatchIngest(ctx, chunks, store, embedder); err != nil {
		return 0, err
	}

	logger.Info("processed document", "source", filepath.Base(path), "chunks", len(chunks))
	return len(chunks), nil
}
