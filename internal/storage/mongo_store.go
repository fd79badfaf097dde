package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultCollection holds documents when no collection name is configured.
const DefaultCollection = "documents"

type MongoStore struct {
	client    *mongo.Client
	database  *mongo.Database
	documents *mongo.Collection
}

type document struct {
	ID        string    `bson:"_id"`
	Content   string    `bson:"content"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// NewMongoStore creates a new MongoStore with the given connection string, database and collection.
func NewMongoStore(ctx context.Context, connectionString, dbName, collection string) (*MongoStore, error) {
	clientOptions := options.Client().ApplyURI(connectionString)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	if collection == "" {
		collection = DefaultCollection
	}

	db := client.Database(dbName)
	return &MongoStore{
		client:    client,
		database:  db,
		documents: db.Collection(collection),
	}, nil
}

// Close closes the MongoDB connection.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// ReadDocument returns the content stored under ref.
func (s *MongoStore) ReadDocument(ctx context.Context, ref string) ([]byte, error) {
	var doc document
	err := s.documents.FindOne(ctx, bson.M{"_id": ref}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, ref)
		}
		return nil, err
	}
	return []byte(doc.Content), nil
}

// WriteDocument upserts the content stored under ref. A single upsert either
// replaces the whole content or leaves the old one.
func (s *MongoStore) WriteDocument(ctx context.Context, ref string, data []byte) error {
	_, err := s.documents.UpdateOne(
		ctx,
		bson.M{"_id": ref},
		bson.M{"$set": bson.M{"content": string(data), "updatedAt": time.Now()}},
		options.Update().SetUpsert(true),
	)
	return err
}
