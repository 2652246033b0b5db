package prompt

import (
	"errors"
	"strings"
	"testing"

	"sql-rag/internal/models"
)

func ddlUnit(n int, text string) models.KnowledgeUnit {
	return models.KnowledgeUnit{ID: models.UnitID(models.TopicDDL, n), Text: text, Topic: models.TopicDDL}
}

func exampleUnit(n int, text string) models.KnowledgeUnit {
	return models.KnowledgeUnit{ID: models.UnitID(models.TopicQuery, n), Text: text, Topic: models.TopicQuery}
}

func TestCompose(t *testing.T) {
	ddl := []models.KnowledgeUnit{
		ddlUnit(0, "CREATE TABLE employees (id INT, name TEXT);"),
		ddlUnit(1, "CREATE TABLE orders (id INT, employee_id INT);"),
	}
	examples := []models.KnowledgeUnit{
		exampleUnit(0, `{"question":"count orders","query":"SELECT COUNT(*) FROM orders;"}`),
	}

	text, err := Compose("how many employees", ddl, examples)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}

	if !strings.Contains(text, "CREATE TABLE employees (id INT, name TEXT);\n\nCREATE TABLE orders (id INT, employee_id INT);") {
		t.Errorf("schema block not joined by blank line:\n%s", text)
	}
	if !strings.Contains(text, "Question: count orders\nSQL: SELECT COUNT(*) FROM orders;") {
		t.Errorf("example pair not rendered as two lines:\n%s", text)
	}
	if !strings.Contains(text, "Question: how many employees") {
		t.Errorf("question not substituted:\n%s", text)
	}
	for _, placeholder := range []string{models.PlaceholderSchema, models.PlaceholderExamples, models.PlaceholderQuestion} {
		if strings.Contains(text, placeholder) {
			t.Errorf("placeholder %s left in prompt", placeholder)
		}
	}
}

func TestComposeIsPure(t *testing.T) {
	ddl := []models.KnowledgeUnit{ddlUnit(0, "CREATE TABLE t (id INT);")}
	examples := []models.KnowledgeUnit{exampleUnit(0, `{"question":"q","query":"SELECT 1;"}`)}

	first, err := Compose("q", ddl, examples)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	second, err := Compose("q", ddl, examples)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if first != second {
		t.Error("Compose is not byte-deterministic for equal inputs")
	}
}

func TestComposeMalformedExample(t *testing.T) {
	_, err := Compose("q", nil, []models.KnowledgeUnit{exampleUnit(0, "not json")})
	if err == nil {
		t.Fatal("expected error for malformed example unit")
	}
}

func TestParseSQL(t *testing.T) {
	got, err := ParseSQL("<scratchpad>thinking</scratchpad>\n<sql>SELECT 1;</sql>")
	if err != nil {
		t.Fatalf("ParseSQL() error = %v", err)
	}
	if got != "SELECT 1;" {
		t.Errorf("ParseSQL() = %q, want %q", got, "SELECT 1;")
	}
}

func TestParseSQLMultiline(t *testing.T) {
	response := "<sql>\nSELECT name\nFROM employees\nWHERE id = 1;\n</sql>"
	got, err := ParseSQL(response)
	if err != nil {
		t.Fatalf("ParseSQL() error = %v", err)
	}
	if got != "SELECT name\nFROM employees\nWHERE id = 1;" {
		t.Errorf("ParseSQL() = %q", got)
	}
}

func TestParseSQLFirstMatchWins(t *testing.T) {
	got, err := ParseSQL("<sql>SELECT 1;</sql> and later <sql>SELECT 2;</sql>")
	if err != nil {
		t.Fatalf("ParseSQL() error = %v", err)
	}
	if got != "SELECT 1;" {
		t.Errorf("ParseSQL() = %q, want first match", got)
	}
}

func TestParseSQLMissingTag(t *testing.T) {
	_, err := ParseSQL("no tags here")
	var rfe *ResponseFormatError
	if !errors.As(err, &rfe) {
		t.Fatalf("expected ResponseFormatError, got %v", err)
	}
}

func TestParseSQLUnclosedTag(t *testing.T) {
	_, err := ParseSQL("<sql>SELECT 1;")
	var rfe *ResponseFormatError
	if !errors.As(err, &rfe) {
		t.Fatalf("expected ResponseFormatError, got %v", err)
	}
}

func TestParseScratchpad(t *testing.T) {
	got, err := ParseScratchpad("<scratchpad>join employees to orders</scratchpad><sql>SELECT 1;</sql>")
	if err != nil {
		t.Fatalf("ParseScratchpad() error = %v", err)
	}
	if got != "join employees to orders" {
		t.Errorf("ParseScratchpad() = %q", got)
	}
}
