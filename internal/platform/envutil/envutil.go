package envutil

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Lookup parses the trimmed value of name, falling back to def when the
// variable is unset, blank or unparsable.
func Lookup[T any](name string, def T, parse func(string) (T, error)) T {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	out, err := parse(v)
	if err != nil {
		return def
	}
	return out
}

func String(name, def string) string {
	return Lookup(name, def, func(s string) (string, error) { return s, nil })
}

func Int(name string, def int) int {
	return Lookup(name, def, strconv.Atoi)
}

func Float(name string, def float64) float64 {
	return Lookup(name, def, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

func Duration(name string, def time.Duration) time.Duration {
	return Lookup(name, def, time.ParseDuration)
}

// Bool accepts the usual spellings; any other non-empty value is false.
func Bool(name string, def bool) bool {
	return Lookup(name, def, func(s string) (bool, error) {
		switch strings.ToLower(s) {
		case "1", "t", "true", "y", "yes", "on":
			return true, nil
		default:
			return false, nil
		}
	})
}
