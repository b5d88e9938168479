package journey

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CoerceBool converts loosely typed client booleans. Accepts bool values, the
// strings "true"/"false" case-insensitively, and the literals 1/"1". Anything
// else falls back to the supplied default.
func CoerceBool(value any, fallback bool) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true":
			return true
		case "false":
			return false
		case "1":
			return true
		}
	case float64:
		if v == 1 {
			return true
		}
	case int:
		if v == 1 {
			return true
		}
	}
	return fallback
}

// CoerceID converts a client-supplied identifier to int64. JSON numbers and
// numeric strings are accepted; anything else reports false.
func CoerceID(value any) (int64, bool) {
	switch v := value.(type) {
	case float64:
		return int64(v), v != 0
	case int64:
		return v, v != 0
	case int:
		return int64(v), v != 0
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, false
		}
		return parsed, parsed != 0
	}
	return 0, false
}

// ValidateReason checks a migration reason against the accepted enumeration,
// returning nil for anything unrecognized.
func ValidateReason(reason string) *string {
	trimmed := strings.TrimSpace(reason)
	if trimmed == "" {
		return nil
	}
	if _, ok := migrationReasons[trimmed]; !ok {
		return nil
	}
	return &trimmed
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDate converts a client date string to UTC. Empty input yields nil
// without error; unparseable input yields ErrInvalidDate.
func ParseDate(value string) (*time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		parsed, err := time.Parse(layout, trimmed)
		if err == nil {
			utc := parsed.UTC()
			return &utc, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrInvalidDate, trimmed)
}
