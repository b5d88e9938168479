package journey

import (
	"regexp"
	"strings"
)

const maxNotesLength = 500

var (
	scriptTagPattern     = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	htmlTagPattern       = regexp.MustCompile(`<[^>]*>`)
	jsProtocolPattern    = regexp.MustCompile(`(?i)javascript:`)
	eventHandlerPattern  = regexp.MustCompile(`(?i)on\w+\s*=`)
	hexEscapePattern     = regexp.MustCompile(`\\x[0-9a-fA-F]{2}`)
	unicodeEscapePattern = regexp.MustCompile(`\\u[0-9a-fA-F]{4}`)
)

// SanitizeNotes strips script and markup fragments from free text and bounds
// its length. Returns nil when nothing survives.
func SanitizeNotes(input string) *string {
	if strings.TrimSpace(input) == "" {
		return nil
	}

	sanitized := scriptTagPattern.ReplaceAllString(input, "")
	sanitized = htmlTagPattern.ReplaceAllString(sanitized, "")
	sanitized = jsProtocolPattern.ReplaceAllString(sanitized, "")
	sanitized = eventHandlerPattern.ReplaceAllString(sanitized, "")
	sanitized = hexEscapePattern.ReplaceAllString(sanitized, "")
	sanitized = unicodeEscapePattern.ReplaceAllString(sanitized, "")

	// The limit counts characters, not bytes.
	if runes := []rune(sanitized); len(runes) > maxNotesLength {
		sanitized = string(runes[:maxNotesLength])
	}
	if sanitized == "" {
		return nil
	}
	return &sanitized
}

// ContainsScript reports whether raw content still carries script markers.
// Used where the caller rejects instead of strips.
func ContainsScript(input string) bool {
	lowered := strings.ToLower(input)
	return strings.Contains(lowered, "<script") || strings.Contains(lowered, "javascript:")
}
