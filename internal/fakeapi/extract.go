package fakeapi

import (
	"crypto/sha256"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// chunkRunes is the target size of one embedded chunk.
	chunkRunes = 1000
	// MaxExtractBytes caps how much of an upload is read for extraction.
	MaxExtractBytes = 1 << 20
)

// extraction is the outcome processing will report for a document.
type extraction struct {
	chunks int
	err    string
}

var htmlTag = regexp.MustCompile(`(?s)<[^>]*>`)

// extract classifies an upload and counts its chunks. Binary formats are
// checked by signature only and sized by byte count.
func extract(name, contentType string, data []byte, size int64) extraction {
	if len(data) == 0 {
		return extraction{err: "document is empty"}
	}
	switch classifyKind(name, contentType) {
	case "pdf":
		if !hasPrefix(data, "%PDF-") {
			return extraction{err: "could not extract text: not a valid PDF"}
		}
		return extraction{chunks: sizeChunks(size)}
	case "docx":
		if !hasPrefix(data, "PK\x03\x04") {
			return extraction{err: "could not extract text: not a valid DOCX"}
		}
		return extraction{chunks: sizeChunks(size)}
	case "text":
		return textChunks(name, contentType, data)
	default:
		if looksLikeText(data) {
			return textChunks(name, contentType, data)
		}
		return extraction{chunks: sizeChunks(size)}
	}
}

func classifyKind(name, contentType string) string {
	m := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(m, ';'); i >= 0 {
		m = strings.TrimSpace(m[:i])
	}
	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case m == "application/pdf" || ext == ".pdf":
		return "pdf"
	case strings.Contains(m, "wordprocessingml") || ext == ".docx":
		return "docx"
	case strings.HasPrefix(m, "text/"), m == "application/json", m == "application/javascript":
		return "text"
	default:
		return "unknown"
	}
}

func textChunks(name, contentType string, data []byte) extraction {
	s := sanitizeUTF8(string(data))
	if strings.Contains(strings.ToLower(contentType), "html") || strings.HasSuffix(strings.ToLower(name), ".html") {
		s = htmlTag.ReplaceAllString(s, " ")
	}
	chunks := normalizeChunks(segment(collapseWhitespace(s), chunkRunes))
	if len(chunks) == 0 {
		return extraction{err: "no extractable text"}
	}
	return extraction{chunks: len(chunks)}
}

// segment splits s on word boundaries into pieces of at most n runes. A
// single word longer than n becomes its own piece.
func segment(s string, n int) []string {
	var out []string
	var b strings.Builder
	runes := 0
	for _, w := range strings.Fields(s) {
		wl := utf8.RuneCountInString(w)
		if runes > 0 && runes+1+wl > n {
			out = append(out, b.String())
			b.Reset()
			runes = 0
		}
		if runes > 0 {
			b.WriteByte(' ')
			runes++
		}
		b.WriteString(w)
		runes += wl
	}
	if runes > 0 {
		out = append(out, b.String())
	}
	return out
}

// normalizeChunks drops empty and repeated chunks, keeping first occurrences.
func normalizeChunks(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[[sha256.Size]byte]bool, len(in))
	for _, c := range in {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		key := sha256.Sum256([]byte(c))
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}

func sizeChunks(size int64) int {
	return int(size/1024) + 1
}

func collapseWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}

func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, " ")
}

func looksLikeText(data []byte) bool {
	printable, total := 0, 0
	for _, r := range string(data) {
		total++
		if r == '\n' || r == '\r' || r == '\t' || (r >= 32 && r != 127 && r != utf8.RuneError) {
			printable++
		}
	}
	return total > 0 && float64(printable)/float64(total) > 0.90
}

func hasPrefix(b []byte, p string) bool {
	return len(b) >= len(p) && string(b[:len(p)]) == p
}
