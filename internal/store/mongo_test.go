package store

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// fakeCollection keeps documents in memory and serves them through real
// driver cursors, so BSON encoding is exercised end to end.
type fakeCollection struct {
	mu   sync.Mutex
	docs map[string]any
}

func newFakeCollection() *fakeCollection {
	return &fakeCollection{docs: make(map[string]any)}
}

func docName(d any) string {
	if c, ok := d.(companyDoc); ok {
		return c.Name
	}
	return ""
}

func docUpdated(d any) time.Time {
	switch v := d.(type) {
	case companyDoc:
		return v.UpdatedAt
	case comparisonDoc:
		return v.UpdatedAt
	}
	return time.Time{}
}

func (f *fakeCollection) Find(_ context.Context, filter any, _ ...*options.FindOptions) (*mongo.Cursor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	m, _ := filter.(bson.M)
	if id, ok := m["_id"].(string); ok {
		var matched []any
		if d, exists := f.docs[id]; exists {
			matched = append(matched, d)
		}
		return mongo.NewCursorFromDocuments(matched, nil, nil)
	}

	ids := make([]string, 0, len(f.docs))
	for id := range f.docs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return docName(f.docs[ids[i]]) < docName(f.docs[ids[j]]) })
	all := make([]any, 0, len(ids))
	for _, id := range ids {
		all = append(all, f.docs[id])
	}
	return mongo.NewCursorFromDocuments(all, nil, nil)
}

func (f *fakeCollection) ReplaceOne(_ context.Context, filter any, replacement any, _ ...*options.ReplaceOptions) (*mongo.UpdateResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := filter.(bson.M)["_id"].(string)
	_, existed := f.docs[id]
	f.docs[id] = replacement
	if existed {
		return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
	}
	return &mongo.UpdateResult{UpsertedCount: 1, UpsertedID: id}, nil
}

func (f *fakeCollection) DeleteMany(_ context.Context, filter any, _ ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cutoff := filter.(bson.M)["updatedAt"].(bson.M)["$lt"].(time.Time)
	var n int64
	for id, d := range f.docs {
		if docUpdated(d).Before(cutoff) {
			delete(f.docs, id)
			n++
		}
	}
	return &mongo.DeleteResult{DeletedCount: n}, nil
}

func (f *fakeCollection) Indexes() mongo.IndexView { return mongo.IndexView{} }

func newFakeMongoStore() *MongoStore {
	return &MongoStore{companies: newFakeCollection(), comparisons: newFakeCollection()}
}

func TestMongoStore(t *testing.T) {
	exerciseStore(t, newFakeMongoStore())
}

func TestMongoStore_Prune(t *testing.T) {
	st := newFakeMongoStore()
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, st.PutCompany(ctx, "old", sampleRecord("Old", now.Add(-48*time.Hour))))
	require.NoError(t, st.PutCompany(ctx, "new", sampleRecord("New", now)))

	n, err := st.Prune(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	list, err := st.ListCompanies(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "New", list[0].Name)
}

func TestMongoStore_NoClientLifecycle(t *testing.T) {
	st := newFakeMongoStore()
	ctx := context.Background()
	assert.NoError(t, st.Migrate(ctx))
	assert.NoError(t, st.Ping(ctx))
	assert.NoError(t, st.Close())
}
