package retriever

import (
	"context"
	"fmt"
	"sync"

	"github.com/tmc/langchaingo/embeddings"

	"sql-rag/internal/models"
)

// RetrievalError reports a provider or store failure during search.
// It is surfaced to the caller as-is; retrying is a caller policy.
type RetrievalError struct {
	Topic models.Topic
	Err   error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval failed for topic %q: %v", e.Topic, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// Searcher performs a topic-filtered nearest-neighbor search, returning
// at most k units ordered by similarity descending.
type Searcher interface {
	Search(ctx context.Context, queryEmbedding []float32, topic models.Topic, k int) ([]models.ScoredUnit, error)
}

// Retriever answers topic-scoped similarity queries against the
// knowledge collection.
type Retriever struct {
	embedder embeddings.Embedder
	store    Searcher
}

func New(embedder embeddings.Embedder, store Searcher) *Retriever {
	return &Retriever{embedder: embedder, store: store}
}

// Retrieve embeds the question and returns the top-k units for the
// topic. An empty store for the topic returns an empty sequence, not
// an error.
func (r *Retriever) Retrieve(ctx context.Context, question string, topic models.Topic, k int) ([]models.ScoredUnit, error) {
	if k < 1 {
		return nil, fmt.Errorf("k must be >= 1, got %d", k)
	}
	if !topic.Valid() {
		return nil, fmt.Errorf("unknown topic: %q", topic)
	}

	queryEmbedding, err := r.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, &RetrievalError{Topic: topic, Err: err}
	}

	return r.search(ctx, queryEmbedding, topic, k)
}

// RetrievePair runs the two independent searches for one question: DDL
// statements and example pairs. The question is embedded once; the two
// searches share nothing and run concurrently.
func (r *Retriever) RetrievePair(ctx context.Context, question string, ddlK, exampleK int) (ddl, examples []models.ScoredUnit, err error) {
	if ddlK < 1 || exampleK < 1 {
		return nil, nil, fmt.Errorf("result counts must be >= 1, got ddl=%d example=%d", ddlK, exampleK)
	}

	queryEmbedding, err := r.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, nil, &RetrievalError{Topic: models.TopicDDL, Err: err}
	}

	var (
		wg            sync.WaitGroup
		ddlErr, exErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		ddl, ddlErr = r.search(ctx, queryEmbedding, models.TopicDDL, ddlK)
	}()
	go func() {
		defer wg.Done()
		examples, exErr = r.search(ctx, queryEmbedding, models.TopicQuery, exampleK)
	}()
	wg.Wait()

	if ddlErr != nil {
		return nil, nil, ddlErr
	}
	if exErr != nil {
		return nil, nil, exErr
	}
	return ddl, examples, nil
}

func (r *Retriever) search(ctx context.Context, queryEmbedding []float32, topic models.Topic, k int) ([]models.ScoredUnit, error) {
	units, err := r.store.Search(ctx, queryEmbedding, topic, k)
	if err != nil {
		return nil, &RetrievalError{Topic: topic, Err: err}
	}
	return units, nil
}
