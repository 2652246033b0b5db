package models

import "fmt"

// Topic is the retrieval filter dimension. Every knowledge unit is
// either a schema statement or an example question/SQL pair.
type Topic string

const (
	TopicDDL   Topic = "ddl"
	TopicQuery Topic = "query"
)

// Valid reports whether t is one of the two defined topics.
func (t Topic) Valid() bool {
	return t == TopicDDL || t == TopicQuery
}

// KnowledgeUnit is one indexable piece of context. The id prefix
// always matches the topic, e.g. "ddl-3" or "query-7".
type KnowledgeUnit struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Topic Topic  `json:"topic"`
}

// UnitID builds the stable id for the n-th unit (zero-based) of a topic.
func UnitID(topic Topic, n int) string {
	return fmt.Sprintf("%s-%d", topic, n)
}

// EmbeddedUnit is a knowledge unit plus its embedding vector, as
// persisted in the vector store.
type EmbeddedUnit struct {
	Unit      KnowledgeUnit
	Embedding []float32
}

// ScoredUnit is a retrieved knowledge unit with its similarity score.
type ScoredUnit struct {
	Unit  KnowledgeUnit
	Score float32
}

// Example is one serialized question/SQL pair from the example file.
type Example struct {
	Question string `json:"question"`
	Query    string `json:"query"`
}

// SQLAnswer is the end-to-end result for one question.
type SQLAnswer struct {
	Question   string
	SQL        string
	Scratchpad string
	DDLUnits   []ScoredUnit
	Examples   []ScoredUnit
}
