package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"sql-rag/internal/models"
)

// ResponseFormatError reports a model response missing a required tag
// pair. The prompt instructs the model to always emit the tags, but
// that is not guaranteed; absence is a recoverable error for the
// caller (re-prompt or fall back), never a crash.
type ResponseFormatError struct {
	Tag string
}

func (e *ResponseFormatError) Error() string {
	return fmt.Sprintf("response format error: no %s section found", e.Tag)
}

// Compose renders the retrieved context and question into the prompt
// template. It is a pure function: equal inputs always produce
// byte-identical output. Each placeholder is substituted exactly once.
func Compose(question string, ddlUnits, exampleUnits []models.KnowledgeUnit) (string, error) {
	schemaBlock := renderSchema(ddlUnits)
	examplesBlock, err := renderExamples(exampleUnits)
	if err != nil {
		return "", err
	}

	text := models.SQLPromptTemplate
	text = strings.Replace(text, models.PlaceholderSchema, schemaBlock, 1)
	text = strings.Replace(text, models.PlaceholderExamples, examplesBlock, 1)
	text = strings.Replace(text, models.PlaceholderQuestion, question, 1)
	return text, nil
}

// ParseSQL extracts the SQL statement from the first <sql></sql>
// region of the response, trimmed of surrounding whitespace.
func ParseSQL(response string) (string, error) {
	return extractTagged(response, models.SQLOpenTag, models.SQLCloseTag)
}

// ParseScratchpad extracts the model's reasoning section. It is debug
// output only and is never validated further.
func ParseScratchpad(response string) (string, error) {
	return extractTagged(response, models.ScratchpadOpenTag, models.ScratchpadCloseTag)
}

func renderSchema(units []models.KnowledgeUnit) string {
	texts := make([]string, len(units))
	for i, u := range units {
		texts[i] = u.Text
	}
	return strings.Join(texts, "\n\n")
}

func renderExamples(units []models.KnowledgeUnit) (string, error) {
	rendered := make([]string, len(units))
	for i, u := range units {
		var example models.Example
		if err := json.Unmarshal([]byte(u.Text), &example); err != nil {
			return "", fmt.Errorf("malformed example unit %s: %w", u.ID, err)
		}
		rendered[i] = fmt.Sprintf("Question: %s\nSQL: %s", example.Question, example.Query)
	}
	return strings.Join(rendered, "\n\n"), nil
}

// extractTagged scans for the first open/close marker pair and returns
// the content strictly between them. Markers are exact, case-sensitive
// literals; content may span lines.
func extractTagged(response, openTag, closeTag string) (string, error) {
	start := strings.Index(response, openTag)
	if start == -1 {
		return "", &ResponseFormatError{Tag: openTag}
	}
	rest := response[start+len(openTag):]
	end := strings.Index(rest, closeTag)
	if end == -1 {
		return "", &ResponseFormatError{Tag: openTag}
	}
	return strings.TrimSpace(rest[:end]), nil
}
