package chromemdb

import (
	"context"
	"fmt"
	"runtime"

	"github.com/philippgille/chromem-go"

	"sql-rag/internal/models"
)

// Store encapsulates the chromem-go database operations for the
// knowledge collection.
type Store struct {
	db             *chromem.DB
	collection     *chromem.Collection
	collectionName string
}

const compress = false

// NewStore initializes the vector store and opens (or creates) the
// knowledge collection.
func NewStore(dbPath, collectionName string, inMemory bool) (*Store, error) {
	var (
		db  *chromem.DB
		err error
	)
	if inMemory {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(dbPath, compress)
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %w", err)
		}
	}

	c, err := db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %w", err)
	}

	return &Store{db: db, collection: c, collectionName: collectionName}, nil
}

// Upsert writes embedded units into the collection. chromem keys
// documents by id, so re-adding an existing id overwrites the stored
// text and embedding instead of duplicating it.
func (s *Store) Upsert(ctx context.Context, units []models.EmbeddedUnit) error {
	if len(units) == 0 {
		return nil
	}

	docs := make([]chromem.Document, len(units))
	for i, u := range units {
		docs[i] = chromem.Document{
			ID:        u.Unit.ID,
			Content:   u.Unit.Text,
			Metadata:  map[string]string{models.MetadataTopicKey: string(u.Unit.Topic)},
			Embedding: u.Embedding,
		}
	}

	if err := s.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}
	return nil
}

// Search returns the top-k units matching the topic filter, ordered by
// similarity descending. k is clamped to the collection size because
// chromem rejects nResults larger than the number of stored documents;
// an empty collection or empty filter match yields an empty result.
func (s *Store) Search(ctx context.Context, queryEmbedding []float32, topic models.Topic, k int) ([]models.ScoredUnit, error) {
	if count := s.collection.Count(); count < k {
		k = count
	}
	if k == 0 {
		return nil, nil
	}

	results, err := s.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: queryEmbedding,
		NResults:       k,
		Where:          map[string]string{models.MetadataTopicKey: string(topic)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %w", err)
	}

	units := make([]models.ScoredUnit, 0, len(results))
	for _, r := range results {
		units = append(units, models.ScoredUnit{
			Unit: models.KnowledgeUnit{
				ID:    r.ID,
				Text:  r.Content,
				Topic: models.Topic(r.Metadata[models.MetadataTopicKey]),
			},
			Score: r.Similarity,
		})
	}
	return units, nil
}

// Count returns the number of stored units.
func (s *Store) Count() int {
	return s.collection.Count()
}

// Reset drops and recreates the collection, for wholesale corpus
// replacement.
func (s *Store) Reset() error {
	if err := s.db.DeleteCollection(s.collectionName); err != nil {
		return fmt.Errorf("failed to drop collection: %w", err)
	}
	c, err := s.db.GetOrCreateCollection(s.collectionName, nil, nil)
	if err != nil {
		return fmt.Errorf("failed to recreate collection: %w", err)
	}
	s.collection = c
	return nil
}
