package indexer

import (
	"context"
	"errors"
	"testing"

	"sql-rag/internal/models"
)

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{float32(i), 1}
	}
	return vectors, nil
}

func (f *fakeEmbedder) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	return []float32{0, 1}, nil
}

// memStore keys units by id, like the real vector store.
type memStore struct {
	units map[string]models.EmbeddedUnit
	err   error
}

func newMemStore() *memStore {
	return &memStore{units: make(map[string]models.EmbeddedUnit)}
}

func (s *memStore) Upsert(_ context.Context, units []models.EmbeddedUnit) error {
	if s.err != nil {
		return s.err
	}
	for _, u := range units {
		s.units[u.Unit.ID] = u
	}
	return nil
}

func sampleUnits() []models.KnowledgeUnit {
	return []models.KnowledgeUnit{
		{ID: "ddl-0", Text: "CREATE TABLE employees (id INT);", Topic: models.TopicDDL},
		{ID: "ddl-1", Text: "CREATE TABLE orders (id INT);", Topic: models.TopicDDL},
		{ID: "query-0", Text: `{"question":"q","query":"SELECT 1;"}`, Topic: models.TopicQuery},
	}
}

func TestIndex(t *testing.T) {
	store := newMemStore()
	ix := New(&fakeEmbedder{}, store)

	if err := ix.Index(context.Background(), sampleUnits()); err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	if len(store.units) != 3 {
		t.Fatalf("expected 3 stored units, got %d", len(store.units))
	}
	if _, ok := store.units["ddl-1"]; !ok {
		t.Error("ddl-1 not stored")
	}
}

func TestIndexIsIdempotent(t *testing.T) {
	store := newMemStore()
	ix := New(&fakeEmbedder{}, store)
	units := sampleUnits()

	if err := ix.Index(context.Background(), units); err != nil {
		t.Fatalf("first Index() error = %v", err)
	}
	before := len(store.units)

	if err := ix.Index(context.Background(), units); err != nil {
		t.Fatalf("second Index() error = %v", err)
	}
	if len(store.units) != before {
		t.Fatalf("re-indexing changed stored unit count: %d -> %d", before, len(store.units))
	}
}

func TestIndexReplacesChangedText(t *testing.T) {
	store := newMemStore()
	ix := New(&fakeEmbedder{}, store)
	units := sampleUnits()

	if err := ix.Index(context.Background(), units); err != nil {
		t.Fatalf("Index() error = %v", err)
	}

	units[0].Text = "CREATE TABLE employees (id INT, name TEXT);"
	if err := ix.Index(context.Background(), units); err != nil {
		t.Fatalf("Index() error = %v", err)
	}

	if len(store.units) != 3 {
		t.Fatalf("overwrite duplicated units: got %d", len(store.units))
	}
	if got := store.units["ddl-0"].Unit.Text; got != units[0].Text {
		t.Errorf("stored text = %q, want overwritten text", got)
	}
}

func TestIndexAbortsOnEmbedFailure(t *testing.T) {
	store := newMemStore()
	ix := New(&fakeEmbedder{err: errors.New("provider down")}, store)

	if err := ix.Index(context.Background(), sampleUnits()); err == nil {
		t.Fatal("expected error when embedding fails")
	}
	if len(store.units) != 0 {
		t.Fatalf("partial corpus written despite embed failure: %d units", len(store.units))
	}
}

func TestIndexEmptyCorpus(t *testing.T) {
	store := newMemStore()
	ix := New(&fakeEmbedder{}, store)
	if err := ix.Index(context.Background(), nil); err != nil {
		t.Fatalf("Index(nil) error = %v", err)
	}
}
