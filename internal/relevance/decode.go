package relevance

import (
	"encoding/json"
	"fmt"
	"strings"
)

// decodeJSON strictly decodes an LLM response into v. The only
// normalization applied is trimming whitespace and a single markdown
// code fence; anything else malformed is an error for the caller's
// fallback path, not a candidate for string surgery.
func decodeJSON(raw string, v any) error {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	if err := json.Unmarshal([]byte(s), v); err != nil {
		return fmt.Errorf("decode filter response: %w", err)
	}
	return nil
}
