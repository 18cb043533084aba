package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"profilegram/pkg/config"
	"profilegram/pkg/models"
)

// snapshotDoc is the document layout in the snapshots collection. The
// username doubles as the document ID, which makes ReplaceOne-with-upsert
// the whole write path.
type snapshotDoc struct {
	Username  string                 `bson:"_id"`
	Snapshot  models.ProfileSnapshot `bson:"snapshot"`
	UpdatedAt time.Time              `bson:"updated_at"`
}

// MongoStore persists snapshots in a MongoDB collection. The underlying
// client is created lazily on first use and then lives for the process
// lifetime; mongo-driver clients are safe for concurrent use, so a single
// shared instance needs no per-call handling. A failed connect is not
// cached, so the next call gets a fresh attempt.
type MongoStore struct {
	cfg config.MongoConfig

	mu      sync.Mutex
	client  *mongo.Client
	connect func(ctx context.Context) (*mongo.Client, error)
}

func NewMongoStore(cfg config.MongoConfig) *MongoStore {
	m := &MongoStore{cfg: cfg}
	m.connect = func(ctx context.Context) (*mongo.Client, error) {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return mongo.Connect(connectCtx, options.Client().ApplyURI(m.cfg.URI))
	}
	return m
}

func (m *MongoStore) Name() string { return "mongo" }

func (m *MongoStore) collection(ctx context.Context) (*mongo.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client == nil {
		client, err := m.connect(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
		}
		m.client = client
	}

	collection := m.cfg.Collection
	if collection == "" {
		collection = "snapshots"
	}
	return m.client.Database(m.cfg.Database).Collection(collection), nil
}

func (m *MongoStore) Upsert(ctx context.Context, username string, snapshot *models.ProfileSnapshot) error {
	coll, err := m.collection(ctx)
	if err != nil {
		return err
	}

	doc := snapshotDoc{
		Username:  sanitizeUsername(username),
		Snapshot:  *snapshot,
		UpdatedAt: time.Now().UTC(),
	}

	_, err = coll.ReplaceOne(ctx,
		bson.M{"_id": doc.Username},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}

	return nil
}

func (m *MongoStore) Get(ctx context.Context, username string) (*models.ProfileSnapshot, error) {
	coll, err := m.collection(ctx)
	if err != nil {
		return nil, err
	}

	var doc snapshotDoc
	err = coll.FindOne(ctx, bson.M{"_id": sanitizeUsername(username)}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch snapshot: %w", err)
	}

	return &doc.Snapshot, nil
}

// Close disconnects the shared client. Only called on shutdown.
func (m *MongoStore) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client == nil {
		return nil
	}
	return m.client.Disconnect(ctx)
}
