package rewrite

import (
	"encoding/json"
	"errors"
	"strings"
)

// decodeModelJSON parses model output into dst, tolerating markdown code
// fences some providers wrap around JSON payloads.
func decodeModelJSON(content string, dst any) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return errors.New("empty payload")
	}
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
		trimmed = strings.TrimSpace(trimmed)
	}
	return json.Unmarshal([]byte(trimmed), dst)
}
