package blocks

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

type memoryRepo struct {
	mu      sync.Mutex
	records map[string]Record
}

func newMemoryRepo(records ...Record) *memoryRepo {
	r := &memoryRepo{records: map[string]Record{}}
	for _, rec := range records {
		r.records[rec.ID] = rec
	}
	return r
}

func (r *memoryRepo) ListByItem(ctx context.Context, itemID string) ([]Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, 0)
	for _, rec := range r.records {
		if rec.ItemID == itemID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *memoryRepo) Insert(ctx context.Context, records ...Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range records {
		r.records[rec.ID] = rec
	}
	return nil
}

func (r *memoryRepo) Replace(ctx context.Context, record Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, ok := r.records[record.ID]
	if !ok || prev.ItemID != record.ItemID {
		return mongo.ErrNoDocuments
	}
	r.records[record.ID] = record
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, itemID, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok || rec.ItemID != itemID {
		return false, nil
	}
	delete(r.records, id)
	return true, nil
}

func (r *memoryRepo) DeleteByItemExcept(ctx context.Context, itemID string, keep []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := map[string]bool{}
	for _, id := range keep {
		kept[id] = true
	}
	var n int64
	for id, rec := range r.records {
		if rec.ItemID == itemID && !kept[id] {
			delete(r.records, id)
			n++
		}
	}
	return n, nil
}

type itemSet map[string]bool

func (s itemSet) Exists(ctx context.Context, id string) (bool, error) {
	return s[id], nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(repo Repository) *Service {
	return NewService(repo, itemSet{"item-1": true, "item-2": true}, nil, time.UTC, discardLogger())
}

func record(id, itemID string, order int, content string) Record {
	return Record{
		ID:        id,
		ItemID:    itemID,
		Type:      TypeText,
		Order:     order,
		Content:   content,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, order, 0, time.UTC),
	}
}

func TestServiceListSkipsMalformed(t *testing.T) {
	repo := newMemoryRepo(
		record("a", "item-1", 0, `{"text":"first"}`),
		record("b", "item-1", 1, `{"text":`),
		record("c", "item-1", 2, `{"text":"third"}`),
	)
	svc := newTestService(repo)

	list, err := svc.List(context.Background(), "item-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, "c", list[1].ID)

	_, err = svc.List(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestServiceCreateDefaults(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	block, err := svc.Create(context.Background(), "item-1", CreateRequest{Type: TypeGallery})
	require.NoError(t, err)
	assert.NotEmpty(t, block.ID)
	assert.Equal(t, 0, block.Order)
	assert.Equal(t, ImagesContent{Images: []Image{}}, block.Content)
	assert.Equal(t, `{"images":[]}`, repo.records[block.ID].Content)

	_, err = svc.Create(context.Background(), "item-1", CreateRequest{Type: TypeLink, Content: "{bad"})
	assert.ErrorIs(t, err, ErrInvalidBlock)

	_, err = svc.Create(context.Background(), "nope", CreateRequest{Type: TypeText})
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestServiceReplaceAllPreservesOwnedIDs(t *testing.T) {
	repo := newMemoryRepo(
		record("a", "item-1", 0, `{"text":"a"}`),
		record("b", "item-1", 1, `{"text":"b"}`),
		record("c", "item-1", 2, `{"text":"c"}`),
		record("foreign", "item-2", 0, `{"text":"other item"}`),
	)
	svc := newTestService(repo)

	list, err := svc.ReplaceAll(context.Background(), "item-1", []Block{
		{ID: "c", Type: TypeText, Order: 9, Content: TextContent{Text: "c2"}},
		{Type: TypeTitle, Order: 0, Content: TextContent{Text: "new"}},
		{ID: "foreign", Type: TypeText, Content: TextContent{Text: "stolen"}},
		{ID: "a", Type: TypeText, Content: TextContent{Text: "a2"}},
	})
	require.NoError(t, err)
	require.Len(t, list, 4)

	assert.Equal(t, "c", list[0].ID)
	assert.Equal(t, TextContent{Text: "c2"}, list[0].Content)
	assert.NotEqual(t, "foreign", list[2].ID)
	assert.Equal(t, "a", list[3].ID)
	assert.Equal(t, []int{0, 1, 2, 3}, orders(list))

	_, stillB := repo.records["b"]
	assert.False(t, stillB)
	assert.Equal(t, "item-2", repo.records["foreign"].ItemID)
	assert.Equal(t, `{"text":"other item"}`, repo.records["foreign"].Content)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 2, 0, time.UTC), repo.records["c"].CreatedAt)
}

func TestServiceReplaceAllDuplicateIDGetsFreshID(t *testing.T) {
	repo := newMemoryRepo(record("a", "item-1", 0, `{"text":"a"}`))
	svc := newTestService(repo)

	list, err := svc.ReplaceAll(context.Background(), "item-1", []Block{
		{ID: "a", Type: TypeText, Content: TextContent{Text: "one"}},
		{ID: "a", Type: TypeText, Content: TextContent{Text: "two"}},
	})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID)
	assert.NotEqual(t, "a", list[1].ID)
}

func TestServiceReplaceAllEmptyClears(t *testing.T) {
	repo := newMemoryRepo(record("a", "item-1", 0, `{"text":"a"}`))
	svc := newTestService(repo)

	list, err := svc.ReplaceAll(context.Background(), "item-1", nil)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Empty(t, repo.records)
}

func TestServiceReplaceAllRejectsInvalid(t *testing.T) {
	repo := newMemoryRepo(record("a", "item-1", 0, `{"text":"a"}`))
	svc := newTestService(repo)

	_, err := svc.ReplaceAll(context.Background(), "item-1", []Block{
		{Type: TypeText, Content: TextContent{Text: "ok"}},
		{Type: TypePhoto, Content: TextContent{Text: "wrong"}},
	})
	assert.ErrorIs(t, err, ErrInvalidBlock)
	assert.Len(t, repo.records, 1)
}

func TestServiceDeleteAndOnChange(t *testing.T) {
	repo := newMemoryRepo(record("a", "item-1", 0, `{"text":"a"}`))
	svc := newTestService(repo)
	var changed []string
	svc.OnChange(func(ctx context.Context, itemID string) { changed = append(changed, itemID) })

	assert.ErrorIs(t, svc.Delete(context.Background(), "item-1", "zzz"), ErrNotFound)
	require.NoError(t, svc.Delete(context.Background(), "item-1", "a"))
	assert.Equal(t, []string{"item-1"}, changed)
}

func TestServiceDeleteAll(t *testing.T) {
	repo := newMemoryRepo(
		record("a", "item-1", 0, `{"text":"a"}`),
		record("b", "item-2", 0, `{"text":"b"}`),
	)
	svc := newTestService(repo)

	require.NoError(t, svc.DeleteAll(context.Background(), "item-1"))
	assert.Len(t, repo.records, 1)
	assert.Contains(t, repo.records, "b")
}
