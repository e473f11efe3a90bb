package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/koetsu-dev/exemplar/internal/domain/model"
)

// extractionPayload is the oracle response schema for the extraction stage.
type extractionPayload struct {
	Blocks []model.TestBlock `json:"test_blocks"`
}

// distilledExample is one planned example in a distillation response.
type distilledExample struct {
	Title          string               `json:"title"`
	Summary        string               `json:"summary"`
	Complexity     model.Complexity     `json:"complexity"`
	Potential      model.Potential      `json:"potential"`
	Classification model.Classification `json:"classification"`
	SourceTests    []model.SourceTest   `json:"source_tests"`
	Notes          string               `json:"notes"`
}

// distillationPayload is the oracle response schema for the distillation stage.
type distillationPayload struct {
	Examples []distilledExample `json:"examples"`
}

// generationPayload is the oracle response schema for the generation stage.
type generationPayload struct {
	Files map[string]string `json:"files"`
}

// refinementPayload is the oracle response schema for the refinement stage.
// Files maps relative paths to replacement content; Resolved lists the issue
// types the oracle believes it addressed.
type refinementPayload struct {
	Files    map[string]string `json:"files"`
	Resolved []string          `json:"resolved"`
}

// decodePayload unmarshals an oracle response into v. Responses wrapped in a
// markdown code fence are unwrapped first; anything before the first brace is
// discarded so chatty preambles do not break parsing.
func decodePayload(raw string, v any) error {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}

	if i := strings.IndexAny(s, "{["); i > 0 {
		s = s[i:]
	}

	if err := json.Unmarshal([]byte(s), v); err != nil {
		return fmt.Errorf("parse oracle payload: %w", err)
	}
	return nil
}
