package indexer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"

	"sql-rag/internal/models"
)

// Upserter writes embedded units into the vector store, overwriting
// any unit already stored under the same id.
type Upserter interface {
	Upsert(ctx context.Context, units []models.EmbeddedUnit) error
}

// Indexer embeds knowledge units and persists them.
type Indexer struct {
	embedder embeddings.Embedder
	store    Upserter
}

func New(embedder embeddings.Embedder, store Upserter) *Indexer {
	return &Indexer{embedder: embedder, store: store}
}

// Index embeds every unit and upserts the batch. All embeddings are
// computed before anything is written, so a single provider failure
// aborts the whole batch and leaves the store untouched: a partially
// indexed corpus produces misleading retrieval.
func (ix *Indexer) Index(ctx context.Context, units []models.KnowledgeUnit) error {
	if len(units) == 0 {
		return nil
	}

	texts := make([]string, len(units))
	for i, u := range units {
		texts[i] = u.Text
	}

	vectors, err := ix.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed units: %w", err)
	}
	if len(vectors) != len(units) {
		return fmt.Errorf("embedding provider returned %d vectors for %d units", len(vectors), len(units))
	}

	embedded := make([]models.EmbeddedUnit, len(units))
	for i, u := range units {
		embedded[i] = models.EmbeddedUnit{Unit: u, Embedding: vectors[i]}
	}

	if err := ix.store.Upsert(ctx, embedded); err != nil {
		return fmt.Errorf("failed to store units: %w", err)
	}

	log.Info().Int("units", len(units)).Msg("Indexed knowledge units")
	return nil
}
