package domain

import "time"

// Document is a processed source file: its text split into ordered chunks plus
// the file metadata the cache and the session report on.
// A Document is never mutated after the pipeline returns it.
type Document struct {
	SourcePath    string    `json:"source_path"`
	FileName      string    `json:"file_name"`
	FileExtension string    `json:"file_extension"`
	Chunks        []string  `json:"chunks"`
	ChunkCount    int       `json:"chunk_count"`
	TotalLength   int       `json:"total_length"`
	ProcessedTime time.Time `json:"processed_time"`
	ChunkSize     int       `json:"chunk_size"`
	FileSizeBytes int64     `json:"file_size_bytes"`
	ContentHash   string    `json:"content_hash"`
}

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single message in the conversation window.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// RequestKind selects the system prompt used for a generation request.
type RequestKind int

const (
	KindChat RequestKind = iota
	KindSummarize
	KindReview
)

func (k RequestKind) String() string {
	switch k {
	case KindChat:
		return "chat"
	case KindSummarize:
		return "summarize"
	case KindReview:
		return "review"
	default:
		return "unknown"
	}
}

// SummaryRecord is one entry of the session's summary log.
type SummaryRecord struct {
	Time           time.Time `json:"time"`
	Content        string    `json:"content"`
	ChunksCovered  int       `json:"chunks_covered"`
	QuestionsAsked int       `json:"questions_asked"`
}

// ProgressReport is a read-only snapshot of the learning progress.
type ProgressReport struct {
	FileName           string     `json:"file_name"`
	TotalChunks        int        `json:"total_chunks"`
	ReadChunks         int        `json:"read_chunks"`
	ProgressPercentage float64    `json:"progress_percentage"`
	QuestionsAsked     int        `json:"questions_asked"`
	SummariesCount     int        `json:"summaries_count"`
	StartTime          time.Time  `json:"start_time"`
	LastSummaryTime    *time.Time `json:"last_summary_time"`
	LastReviewTime     *time.Time `json:"last_review_time"`
}
