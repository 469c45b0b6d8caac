package view

import (
	"strings"

	"github.com/yungbote/neurobridge-docchat/internal/domain"
)

// Color is a presentation category, not a concrete color.
type Color string

const (
	ColorSuccess Color = "success"
	ColorWarning Color = "warning"
	ColorError   Color = "error"
	ColorDefault Color = "default"
)

func StatusToColor(status domain.DocumentStatus) Color {
	switch domain.DocumentStatus(strings.ToLower(strings.TrimSpace(string(status)))) {
	case domain.StatusProcessed, domain.StatusReady:
		return ColorSuccess
	case domain.StatusProcessing:
		return ColorWarning
	case domain.StatusError:
		return ColorError
	default:
		return ColorDefault
	}
}

func StatusLabel(status domain.DocumentStatus) string {
	switch domain.DocumentStatus(strings.ToLower(strings.TrimSpace(string(status)))) {
	case domain.StatusProcessed, domain.StatusReady:
		return "Ready"
	case domain.StatusProcessing:
		return "Processing"
	case domain.StatusError:
		return "Failed"
	case "":
		return "Unknown"
	default:
		return strings.TrimSpace(string(status))
	}
}
