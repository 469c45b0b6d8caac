package view

import (
	"strconv"

	"github.com/yungbote/neurobridge-docchat/internal/domain"
)

type MessageRow struct {
	ID      string `json:"id" yaml:"id"`
	Role    string `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
	Time    string `json:"time" yaml:"time"`
	Pending bool   `json:"pending" yaml:"pending"`
}

func MessageRows(msgs []domain.Message) []MessageRow {
	rows := make([]MessageRow, 0, len(msgs))
	for _, m := range msgs {
		rows = append(rows, MessageRow{
			ID:      m.ID,
			Role:    string(m.Role),
			Content: m.Content,
			Time:    formatTime(m.CreatedAt),
			Pending: m.Optimistic(),
		})
	}
	return rows
}

type DocumentRow struct {
	ID       string `json:"id" yaml:"id"`
	Filename string `json:"filename" yaml:"filename"`
	Size     string `json:"size" yaml:"size"`
	Status   string `json:"status" yaml:"status"`
	Color    Color  `json:"color" yaml:"color"`
	Uploaded string `json:"uploaded" yaml:"uploaded"`
	Chunks   string `json:"chunks,omitempty" yaml:"chunks,omitempty"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
}

func DocumentRows(docs []domain.Document) []DocumentRow {
	rows := make([]DocumentRow, 0, len(docs))
	for _, d := range docs {
		row := DocumentRow{
			ID:       d.ID,
			Filename: d.Filename,
			Size:     FormatFileSize(d.SizeBytes),
			Status:   StatusLabel(d.Status),
			Color:    StatusToColor(d.Status),
			Uploaded: formatTime(d.UploadDate),
			Error:    d.ErrorMessage,
		}
		if d.EmbeddingCount != nil {
			row.Chunks = strconv.Itoa(*d.EmbeddingCount)
		}
		rows = append(rows, row)
	}
	return rows
}

type ConversationRow struct {
	ID      string `json:"id" yaml:"id"`
	Title   string `json:"title" yaml:"title"`
	Updated string `json:"updated" yaml:"updated"`
}

func ConversationRows(convs []domain.Conversation, previewLen int) []ConversationRow {
	rows := make([]ConversationRow, 0, len(convs))
	for _, c := range convs {
		updated := c.UpdatedAt
		if updated.IsZero() {
			updated = c.CreatedAt
		}
		rows = append(rows, ConversationRow{ID: c.ID, Title: Preview(c.Title, previewLen), Updated: formatTime(updated)})
	}
	return rows
}
