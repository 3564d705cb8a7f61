package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/proview/proview-api/internal/config"
	"github.com/proview/proview-api/internal/domain/docModel"
	"github.com/proview/proview-api/pkg/logger_i"
	"github.com/qdrant/go-client/qdrant"
)

var logger *logger_i.Logger
var qdrantInstance *qdrant.Client
var once sync.Once
var dimension = uint64(config.EmbeddingOutputDimensionality)
var collectionName = config.CollectionName

type ClientHolder struct {
	QObj *qdrant.Client
}

// GetQdrantClient constructs the process-wide client once and reuses it for
// the process lifetime. Returns nil when the store is unreachable.
func GetQdrantClient(ctx context.Context) *ClientHolder {
	once.Do(func() {
		logger = logger_i.NewLogger("Qdrant")
		res := newClient()
		if res != nil {
			qdrantInstance = res
			go closeQdrant(ctx, qdrantInstance)
		}
	})

	if qdrantInstance == nil {
		return nil
	}
	return &ClientHolder{
		QObj: qdrantInstance,
	}
}

func newClient() *qdrant.Client {
	host := os.Getenv("QDRANT_HOST")
	if host == "" {
		host = config.QdrantHost
	}
	port := config.EnvInt("QDRANT_PORT", config.QdrantGrpcPort)

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		logger.Error("could not instantiate: ", "error:", err)
		return nil
	}

	if err = ensureCollection(context.Background(), client); err != nil {
		logger.Error("could not create collection: ", "collectionName", collectionName, "error:", err)
		return nil
	}

	return client
}

func closeQdrant(ctx context.Context, qi *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	if err := qi.Close(); err != nil {
		logger.Error("could not close Qdrant: ", "error:", err)
	}
	logger.Info("Closed Qdrant")
}

func ensureCollection(ctx context.Context, client *qdrant.Client) error {
	if collectionName == "" {
		return errors.New("empty collection name")
	}

	exists, err := client.CollectionExists(ctx, collectionName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	err = client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return err
	}

	// session_id and timestamp are the two fields every filtered read,
	// delete and eviction pass depends on
	_, err = client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: collectionName,
		FieldName:      "session_id",
		FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
	})
	if err != nil {
		return err
	}
	_, err = client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: collectionName,
		FieldName:      "timestamp",
		FieldType:      qdrant.FieldType_FieldTypeInteger.Enum(),
	})
	return err
}

func sessionFilter(sessionID string) *qdrant.Filter {
	return &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("session_id", sessionID),
		},
	}
}

func (db *ClientHolder) UpsertChunks(ctx context.Context, chunks []docModel.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}

	qdrantPoints := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		qdrantPoints[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(chunk.ChunkID),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				"content":     chunk.Content,
				"session_id":  chunk.SessionID,
				"timestamp":   chunk.Timestamp,
				"source_file": chunk.SourceFile,
				"page_num":    chunk.PageNum,
				"chunk_order": chunk.ChunkOrder,
			}),
		}
	}

	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collectionName,
		Points:         qdrantPoints,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

// Search ranks by cosine similarity inside the session only. k is clamped,
// never rejected; zero matches is a valid empty result.
func (db *ClientHolder) Search(ctx context.Context, queryVector []float32, sessionID string, k int) ([]docModel.Chunk, error) {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	if k < config.RetrievalMinK || k > config.RetrievalMaxK {
		loggr.Warn("clamping out-of-range k", "requested", k)
		k = config.RetrievalK
	}

	result, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collectionName,
		Query:          qdrant.NewQuery(queryVector...),
		Filter:         sessionFilter(sessionID),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		loggr.Error("Error querying Qdrant: ", "error:", err)
		return nil, err
	}

	chunks := make([]docModel.Chunk, 0, len(result))
	for _, hit := range result {
		chunks = append(chunks, docModel.Chunk{
			Content:    hit.Payload["content"].GetStringValue(),
			SessionID:  hit.Payload["session_id"].GetStringValue(),
			Timestamp:  hit.Payload["timestamp"].GetIntegerValue(),
			SourceFile: hit.Payload["source_file"].GetStringValue(),
			PageNum:    int(hit.Payload["page_num"].GetIntegerValue()),
			ChunkOrder: int(hit.Payload["chunk_order"].GetIntegerValue()),
		})
	}

	loggr.Debug("qdrant search done", "matches", len(chunks))
	return chunks, nil
}

func (db *ClientHolder) DeleteSession(ctx context.Context, sessionID string) (int, error) {
	filter := sessionFilter(sessionID)

	count, err := db.QObj.Count(ctx, &qdrant.CountPoints{
		CollectionName: collectionName,
		Filter:         filter,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("qdrant count failed: %w", err)
	}
	if count == 0 {
		return 0, nil
	}

	_, err = db.QObj.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collectionName,
		Points:         qdrant.NewPointsSelectorFilter(filter),
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("qdrant delete failed: %w", err)
	}
	return int(count), nil
}

// DeleteOlderThan evicts across all sessions; the janitor owns the cutoff.
func (db *ClientHolder) DeleteOlderThan(ctx context.Context, cutoffUnix int64) (int, error) {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewRange("timestamp", &qdrant.Range{
				Lt: qdrant.PtrOf(float64(cutoffUnix)),
			}),
		},
	}

	count, err := db.QObj.Count(ctx, &qdrant.CountPoints{
		CollectionName: collectionName,
		Filter:         filter,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("qdrant count failed: %w", err)
	}
	if count == 0 {
		return 0, nil
	}

	_, err = db.QObj.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collectionName,
		Points:         qdrant.NewPointsSelectorFilter(filter),
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("qdrant delete failed: %w", err)
	}
	return int(count), nil
}

func (db *ClientHolder) SessionStats(ctx context.Context, sessionID string) (docModel.SessionStats, error) {
	filter := sessionFilter(sessionID)

	count, err := db.QObj.Count(ctx, &qdrant.CountPoints{
		CollectionName: collectionName,
		Filter:         filter,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return docModel.SessionStats{}, fmt.Errorf("qdrant count failed: %w", err)
	}

	points, err := db.QObj.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: collectionName,
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint32(config.StatsScrollLimit)),
		WithPayload:    qdrant.NewWithPayloadInclude("source_file"),
	})
	if err != nil {
		return docModel.SessionStats{}, fmt.Errorf("qdrant scroll failed: %w", err)
	}

	seen := make(map[string]struct{})
	var files []string
	for _, p := range points {
		name := p.Payload["source_file"].GetStringValue()
		if name == "" {
			continue
		}
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			files = append(files, name)
		}
	}

	return docModel.SessionStats{
		DocumentCount: int(count),
		SourceFiles:   files,
	}, nil
}
