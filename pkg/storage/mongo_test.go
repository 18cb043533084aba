package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"profilegram/pkg/config"
)

// localClient builds a driver client without dialing a server.
func localClient(t *testing.T, ctx context.Context) (*mongo.Client, error) {
	t.Helper()
	return mongo.Connect(ctx, options.Client().ApplyURI("mongodb://localhost:27017"))
}

func TestMongoStoreConnectFailureIsNotSticky(t *testing.T) {
	store := NewMongoStore(config.MongoConfig{URI: "mongodb://localhost:27017", Database: "profilegram"})

	attempts := 0
	store.connect = func(ctx context.Context) (*mongo.Client, error) {
		attempts++
		if attempts == 1 {
			return nil, errors.New("transient network failure")
		}
		return localClient(t, ctx)
	}

	ctx := context.Background()

	_, err := store.collection(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect")

	coll, err := store.collection(ctx)
	require.NoError(t, err, "a later call must retry the connect")
	assert.Equal(t, "snapshots", coll.Name())
	assert.Equal(t, 2, attempts)

	// Once connected, the client is reused.
	_, err = store.collection(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestMongoStoreCollectionNameOverride(t *testing.T) {
	store := NewMongoStore(config.MongoConfig{
		URI:        "mongodb://localhost:27017",
		Database:   "profilegram",
		Collection: "profiles",
	})
	store.connect = func(ctx context.Context) (*mongo.Client, error) {
		return localClient(t, ctx)
	}

	coll, err := store.collection(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "profiles", coll.Name())
}
