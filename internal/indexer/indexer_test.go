package indexer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/reposage/reposage/internal/knowledge"
	"github.com/reposage/reposage/internal/log"
	"github.com/reposage/reposage/internal/source"
)

type fakeSources struct {
	issues   []source.Issue
	repos    []source.Repository
	issueErr error
	repoErr  error
}

func (f *fakeSources) ListIssues(ctx context.Context, userID int64) ([]source.Issue, error) {
	return f.issues, f.issueErr
}

func (f *fakeSources) ListRepositories(ctx context.Context, userID int64) ([]source.Repository, error) {
	return f.repos, f.repoErr
}

type fakeEmbedder struct {
	dimension int
	err       error
	calls     int
}

func (f *fakeEmbedder) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	vecs := make([][]float32, len(texts))
	for i := range texts {
		vecs[i] = make([]float32, f.dimension)
	}
	return vecs, nil
}

type fakeVectorStore struct {
	replaceErr   error
	replaceCalls int
	lastUserID   int64
	lastRecords  []knowledge.Record
}

func (f *fakeVectorStore) ReplaceForUser(ctx context.Context, userID int64, records []knowledge.Record) error {
	f.replaceCalls++
	f.lastUserID = userID
	f.lastRecords = records
	return f.replaceErr
}

func TestSync(t *testing.T) {
	ctx := context.Background()

	t.Run("one repository, no issues", func(t *testing.T) {
		sources := &fakeSources{repos: []source.Repository{
			{ID: 1, Name: "demo", Description: "a demo repo"},
		}}
		store := &fakeVectorStore{}
		s := New(sources, &fakeEmbedder{dimension: 4}, store, log.NewNop())

		report, err := s.Sync(ctx, 1)
		if err != nil {
			t.Fatalf("Sync: %v", err)
		}

		if report.ReposSynced != 1 || report.ChunksSynced != 0 {
			t.Errorf("report = %+v, want 1 repo / 0 chunks", report)
		}
		if len(store.lastRecords) != 1 {
			t.Fatalf("stored %d records, want 1", len(store.lastRecords))
		}
		rec := store.lastRecords[0]
		if rec.SourceType != knowledge.SourceTypeRepository || rec.SourceID != 1 {
			t.Errorf("record provenance = %s/%d", rec.SourceType, rec.SourceID)
		}
		if len(rec.Vector) != 4 {
			t.Errorf("record vector has %d dimensions, want 4", len(rec.Vector))
		}
	})

	t.Run("long issue produces three chunks", func(t *testing.T) {
		sources := &fakeSources{issues: []source.Issue{
			{ID: 7, Title: "Tracking", Body: strings.Repeat("b", 1200)},
		}}
		store := &fakeVectorStore{}
		s := New(sources, &fakeEmbedder{dimension: 4}, store, log.NewNop())

		report, err := s.Sync(ctx, 1)
		if err != nil {
			t.Fatalf("Sync: %v", err)
		}

		if report.ChunksSynced != 3 {
			t.Errorf("ChunksSynced = %d, want 3", report.ChunksSynced)
		}
		for i, rec := range store.lastRecords {
			m := rec.Metadata.(knowledge.IssueMetadata)
			if m.ChunkIndex != i || m.TotalChunks != 3 {
				t.Errorf("record %d position = %d/%d", i, m.ChunkIndex, m.TotalChunks)
			}
		}
	})

	t.Run("custom chunk policy changes segmentation", func(t *testing.T) {
		sources := &fakeSources{issues: []source.Issue{
			{ID: 7, Title: "Tracking", Body: strings.Repeat("b", 1200)},
		}}
		store := &fakeVectorStore{}
		s := New(sources, &fakeEmbedder{dimension: 4}, store, log.NewNop(),
			WithChunkPolicy(200, 20))

		report, err := s.Sync(ctx, 1)
		if err != nil {
			t.Fatalf("Sync: %v", err)
		}

		if report.ChunksSynced <= 3 {
			t.Errorf("ChunksSynced = %d, want more than the default policy's 3", report.ChunksSynced)
		}
		for i, rec := range store.lastRecords {
			if len([]rune(rec.Content)) > 200 {
				t.Errorf("record %d length %d exceeds policy max 200", i, len([]rune(rec.Content)))
			}
		}
	})

	t.Run("empty source data leaves the index untouched", func(t *testing.T) {
		store := &fakeVectorStore{}
		embedder := &fakeEmbedder{dimension: 4}
		s := New(&fakeSources{}, embedder, store, log.NewNop())

		report, err := s.Sync(ctx, 1)
		if err != nil {
			t.Fatalf("Sync: %v", err)
		}

		if report.ChunksSynced != 0 || report.ReposSynced != 0 {
			t.Errorf("report = %+v, want zeroes", report)
		}
		if store.replaceCalls != 0 {
			t.Error("replace must not run when there is no source content")
		}
		if embedder.calls != 0 {
			t.Error("embedder must not run when there is no source content")
		}
	})

	t.Run("one batch embed call per run", func(t *testing.T) {
		sources := &fakeSources{
			issues: []source.Issue{
				{ID: 1, Title: "a"},
				{ID: 2, Title: "b"},
			},
			repos: []source.Repository{{ID: 3, Name: "c"}},
		}
		embedder := &fakeEmbedder{dimension: 4}
		s := New(sources, embedder, &fakeVectorStore{}, log.NewNop())

		if _, err := s.Sync(ctx, 1); err != nil {
			t.Fatalf("Sync: %v", err)
		}
		if embedder.calls != 1 {
			t.Errorf("embedder called %d times, want 1 batch", embedder.calls)
		}
	})

	t.Run("embedding failure aborts before the store is touched", func(t *testing.T) {
		wantErr := errors.New("model unavailable")
		sources := &fakeSources{repos: []source.Repository{{ID: 1, Name: "demo"}}}
		store := &fakeVectorStore{}
		s := New(sources, &fakeEmbedder{err: wantErr}, store, log.NewNop())

		if _, err := s.Sync(ctx, 1); !errors.Is(err, wantErr) {
			t.Errorf("Sync error = %v, want wrapped %v", err, wantErr)
		}
		if store.replaceCalls != 0 {
			t.Error("replace must not run after an embedding failure")
		}
	})

	t.Run("source load failure propagates", func(t *testing.T) {
		wantErr := errors.New("connection refused")
		s := New(&fakeSources{issueErr: wantErr}, &fakeEmbedder{dimension: 4}, &fakeVectorStore{}, log.NewNop())

		if _, err := s.Sync(ctx, 1); !errors.Is(err, wantErr) {
			t.Errorf("Sync error = %v, want wrapped %v", err, wantErr)
		}
	})

	t.Run("store failure propagates", func(t *testing.T) {
		wantErr := errors.New("deadlock detected")
		sources := &fakeSources{repos: []source.Repository{{ID: 1, Name: "demo"}}}
		s := New(sources, &fakeEmbedder{dimension: 4}, &fakeVectorStore{replaceErr: wantErr}, log.NewNop())

		if _, err := s.Sync(ctx, 1); !errors.Is(err, wantErr) {
			t.Errorf("Sync error = %v, want wrapped %v", err, wantErr)
		}
	})

	t.Run("resync reports the same counts", func(t *testing.T) {
		sources := &fakeSources{
			issues: []source.Issue{{ID: 1, Title: "stable issue", Body: "body"}},
			repos:  []source.Repository{{ID: 2, Name: "stable repo"}},
		}
		store := &fakeVectorStore{}
		s := New(sources, &fakeEmbedder{dimension: 4}, store, log.NewNop())

		first, err := s.Sync(ctx, 1)
		if err != nil {
			t.Fatalf("first Sync: %v", err)
		}
		firstCount := len(store.lastRecords)

		second, err := s.Sync(ctx, 1)
		if err != nil {
			t.Fatalf("second Sync: %v", err)
		}

		if first != second {
			t.Errorf("reports differ: %+v vs %+v", first, second)
		}
		if len(store.lastRecords) != firstCount {
			t.Errorf("record count changed across resync: %d vs %d", firstCount, len(store.lastRecords))
		}
	})
}
