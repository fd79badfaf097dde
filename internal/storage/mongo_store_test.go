package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

const (
	testConnectionString = "mongodb://localhost:27017"
	testDBName           = "keymerger_test"
)

func setupTestStore(t *testing.T) *MongoStore {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := NewMongoStore(ctx, testConnectionString, testDBName, "")
	if err != nil {
		t.Skipf("Skipping MongoDB integration test: %v", err)
	}

	// Clean up database before test
	err = store.database.Drop(ctx)
	require.NoError(t, err)

	return store
}

func teardownTestStore(t *testing.T, store *MongoStore) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := store.database.Drop(ctx)
	assert.NoError(t, err)

	err = store.Close(ctx)
	assert.NoError(t, err)
}

func TestMongoStore_Documents(t *testing.T) {
	store := setupTestStore(t)
	defer teardownTestStore(t, store)

	ctx := context.Background()

	t.Run("WriteThenRead", func(t *testing.T) {
		err := store.WriteDocument(ctx, "config.json", []byte(`{"b": 9}`))
		require.NoError(t, err)

		data, err := store.ReadDocument(ctx, "config.json")
		require.NoError(t, err)
		assert.Equal(t, `{"b": 9}`, string(data))
	})

	t.Run("WriteUpserts", func(t *testing.T) {
		require.NoError(t, store.WriteDocument(ctx, "twice.json", []byte(`{"v": 1}`)))
		require.NoError(t, store.WriteDocument(ctx, "twice.json", []byte(`{"v": 2}`)))

		data, err := store.ReadDocument(ctx, "twice.json")
		require.NoError(t, err)
		assert.Equal(t, `{"v": 2}`, string(data))

		count, err := store.documents.CountDocuments(ctx, bson.M{"_id": "twice.json"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := store.ReadDocument(ctx, "missing.json")
		assert.ErrorIs(t, err, ErrDocumentNotFound)
	})
}
