// Package view derives presentable rows from session and document state.
// Everything here is pure.
package view

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

var sizeUnits = [...]string{"Bytes", "KB", "MB", "GB"}

// FormatFileSize renders bytes in base-1024 units rounded to two decimals
// with trailing zeros dropped. Sizes past GB stay in GB.
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	v := float64(bytes)
	i := 0
	for v >= 1024 && i < len(sizeUnits)-1 {
		v /= 1024
		i++
	}
	v = math.Round(v*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + sizeUnits[i]
}

// FormatDuration renders milliseconds as "850ms", "42s" or "3m 5s".
func FormatDuration(ms int64) string {
	switch {
	case ms < 0:
		return "0ms"
	case ms < 1000:
		return fmt.Sprintf("%dms", ms)
	case ms < 60_000:
		return fmt.Sprintf("%ds", ms/1000)
	default:
		d := time.Duration(ms) * time.Millisecond
		m := int64(d / time.Minute)
		s := int64((d % time.Minute) / time.Second)
		return fmt.Sprintf("%dm %ds", m, s)
	}
}

const DefaultPreviewLength = 150

// Preview collapses whitespace and cuts s to n runes, marking the cut with "...".
func Preview(s string, n int) string {
	if n <= 0 {
		n = DefaultPreviewLength
	}
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimRight(string(r[:n]), " ") + "..."
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04")
}
