package slug

import (
	"regexp"
	"strings"
)

const maxLen = 48

var nonAlphaNum = regexp.MustCompile(`[^a-z0-9]+`)

// Make turns a free-form label into a file-name safe token, or fallback when
// nothing usable remains.
func Make(input, fallback string) string {
	s := nonAlphaNum.ReplaceAllString(strings.ToLower(strings.TrimSpace(input)), "-")
	s = strings.Trim(s, "-")
	if len(s) > maxLen {
		s = strings.TrimRight(s[:maxLen], "-")
	}
	if s == "" {
		return fallback
	}
	return s
}
