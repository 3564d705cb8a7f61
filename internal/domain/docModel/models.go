package docModel

type DocType string

var (
	PDF DocType = "PDF"
	DOC DocType = "DOCX"
	TXT DocType = "TXT"
	ERR DocType = "ERROR"
)

// RawUnit is one extracted slice of a source document before chunking,
// usually a page. Metadata stamps are applied by the ingestor, not the
// extractors.
type RawUnit struct {
	PageNum    int    `json:"page_num"`
	Content    string `json:"content"`
	SessionID  string `json:"session_id"`
	Timestamp  int64  `json:"timestamp"`
	SourceFile string `json:"source_file"`
}

// Chunk is the atomic persisted unit. The session_id / timestamp /
// source_file triplet is the only metadata the store is required to keep
// filterable.
type Chunk struct {
	ChunkID    string `json:"chunk_id"`
	Content    string `json:"content"`
	SessionID  string `json:"session_id"`
	Timestamp  int64  `json:"timestamp"`
	SourceFile string `json:"source_file"`
	PageNum    int    `json:"page_num"`
	ChunkOrder int    `json:"chunk_order"`
}

// SessionStats summarizes what a session currently has in the store.
type SessionStats struct {
	DocumentCount int
	SourceFiles   []string
}
