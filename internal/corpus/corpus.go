package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"sql-rag/internal/models"
)

// FormatError reports a malformed corpus file. It is fatal for the
// current run and must surface before any indexing happens.
type FormatError struct {
	File   string
	Line   int
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("corpus format error: %s line %d: %s", e.File, e.Line, e.Reason)
	}
	return fmt.Sprintf("corpus format error: line %d: %s", e.Line, e.Reason)
}

func (e *FormatError) Unwrap() error { return e.Err }

const (
	commentPrefix       = "--"
	statementTerminator = ";"
)

// structural-definition keywords: only these statements are useful
// schema context, GRANT/BEGIN/INSERT etc. are dropped
var ddlKeywords = []string{"create", "alter"}

// ParseSchema splits schema SQL into one knowledge unit per retained
// statement. Lines are accumulated until the first ";" closes the
// statement; blank lines and "--" comments are skipped. Semicolons
// inside string literals are a known limitation: they terminate the
// statement early.
func ParseSchema(r io.Reader) ([]models.KnowledgeUnit, error) {
	var (
		units  []models.KnowledgeUnit
		buffer []string
	)

	flush := func() {
		statement := strings.TrimSpace(strings.Join(buffer, "\n"))
		buffer = buffer[:0]
		if statement == "" || !isStructural(statement) {
			return
		}
		units = append(units, models.KnowledgeUnit{
			ID:    models.UnitID(models.TopicDDL, len(units)),
			Text:  statement,
			Topic: models.TopicDDL,
		})
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, commentPrefix) {
			continue
		}
		buffer = append(buffer, line)
		if strings.Contains(line, statementTerminator) {
			flush()
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}
	flush()

	return units, nil
}

// ParseExamples reads one JSON object per line, each with non-empty
// "question" and "query" fields. The unit text keeps the raw line;
// deserialization for rendering happens at prompt-composition time.
func ParseExamples(r io.Reader) ([]models.KnowledgeUnit, error) {
	var units []models.KnowledgeUnit

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var example models.Example
		if err := json.Unmarshal([]byte(line), &example); err != nil {
			return nil, &FormatError{Line: lineNo, Reason: "invalid JSON pair", Err: err}
		}
		if example.Question == "" || example.Query == "" {
			return nil, &FormatError{Line: lineNo, Reason: `missing "question" or "query" field`}
		}

		units = append(units, models.KnowledgeUnit{
			ID:    models.UnitID(models.TopicQuery, len(units)),
			Text:  line,
			Topic: models.TopicQuery,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read examples: %w", err)
	}

	return units, nil
}

// LoadSchema parses a schema file from disk.
func LoadSchema(path string) ([]models.KnowledgeUnit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	units, err := ParseSchema(f)
	if err != nil {
		return nil, annotateFile(err, path)
	}
	return units, nil
}

// LoadExamples parses an example file from disk.
func LoadExamples(path string) ([]models.KnowledgeUnit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	units, err := ParseExamples(f)
	if err != nil {
		return nil, annotateFile(err, path)
	}
	return units, nil
}

func isStructural(statement string) bool {
	lower := strings.ToLower(statement)
	for _, kw := range ddlKeywords {
		if strings.HasPrefix(lower, kw) {
			return true
		}
	}
	return false
}

func annotateFile(err error, path string) error {
	if fe, ok := err.(*FormatError); ok {
		fe.File = path
		return fe
	}
	return err
}
