package documents

import (
	"io"
	"strings"
	"time"
)

type Status string

const (
	StatusProcessing Status = "processing"
	StatusProcessed  Status = "processed"
	// StatusReady is an older server spelling of StatusProcessed.
	StatusReady Status = "ready"
	StatusError Status = "error"
)

func ParseStatus(s string) Status {
	return Status(strings.ToLower(strings.TrimSpace(s)))
}

// Terminal reports whether no further transitions can follow. Unknown
// values are not terminal.
func (s Status) Terminal() bool {
	switch ParseStatus(string(s)) {
	case StatusProcessed, StatusReady, StatusError:
		return true
	default:
		return false
	}
}

type Document struct {
	ID             string    `json:"id" yaml:"id"`
	Filename       string    `json:"filename" yaml:"filename"`
	FileType       string    `json:"file_type" yaml:"file_type"`
	SizeBytes      int64     `json:"size_bytes" yaml:"size_bytes"`
	Status         Status    `json:"status" yaml:"status"`
	UploadDate     time.Time `json:"upload_date" yaml:"upload_date"`
	Processed      bool      `json:"processed" yaml:"processed"`
	EmbeddingCount *int      `json:"embedding_count,omitempty" yaml:"embedding_count,omitempty"`
	ErrorMessage   string    `json:"error_message,omitempty" yaml:"error_message,omitempty"`
}

// File is an upload candidate. Body is read once by the uploader.
type File struct {
	Name        string
	ContentType string
	SizeBytes   int64
	Body        io.Reader
}
