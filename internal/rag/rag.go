package rag

import (
	"context"

	"github.com/rs/zerolog/log"

	"sql-rag/internal/config"
	"sql-rag/internal/models"
	"sql-rag/internal/prompt"
)

// Generator produces free-text output for a rendered prompt.
type Generator interface {
	Generate(ctx context.Context, promptText string) (string, error)
}

// PairRetriever runs the two topic-scoped searches for one question.
type PairRetriever interface {
	RetrievePair(ctx context.Context, question string, ddlK, exampleK int) (ddl, examples []models.ScoredUnit, err error)
}

// RAG is the question-answering pipeline: retrieve context, compose
// the prompt, generate, parse the SQL out of the response.
type RAG struct {
	retriever PairRetriever
	generator Generator
	cfg       *config.RAGConfig
}

func NewRAG(retriever PairRetriever, generator Generator, cfg *config.RAGConfig) *RAG {
	return &RAG{retriever: retriever, generator: generator, cfg: cfg}
}

// Answer runs the pipeline once for the given question. No retries are
// built in; every failure surfaces to the caller.
func (r *RAG) Answer(ctx context.Context, question string) (*models.SQLAnswer, error) {
	ddl, examples, err := r.retriever.RetrievePair(ctx, question, r.cfg.DDLResults, r.cfg.ExampleResults)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("ddl_units", len(ddl)).Int("example_units", len(examples)).Msg("Retrieved context")

	promptText, err := prompt.Compose(question, unitsOf(ddl), unitsOf(examples))
	if err != nil {
		return nil, err
	}

	response, err := r.generator.Generate(ctx, promptText)
	if err != nil {
		return nil, err
	}

	sqlText, err := prompt.ParseSQL(response)
	if err != nil {
		return nil, err
	}

	// the scratchpad is debug output, its absence is not an error
	scratchpad, err := prompt.ParseScratchpad(response)
	if err != nil {
		scratchpad = ""
	}

	return &models.SQLAnswer{
		Question:   question,
		SQL:        sqlText,
		Scratchpad: scratchpad,
		DDLUnits:   ddl,
		Examples:   examples,
	}, nil
}

func unitsOf(scored []models.ScoredUnit) []models.KnowledgeUnit {
	units := make([]models.KnowledgeUnit, len(scored))
	for i, s := range scored {
		units[i] = s.Unit
	}
	return units
}
