package docstore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBackend stores each docstore collection as a MongoDB collection.
// Documents keep their application-level "id"; Mongo's own _id is stripped on
// reads so the two backends return identical documents.
type MongoBackend struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ Backend = (*MongoBackend)(nil)

// NewMongoBackend connects to the MongoDB deployment at uri and uses dbName.
// The connection is verified with a ping before the backend is returned.
func NewMongoBackend(ctx context.Context, uri, dbName string) (*MongoBackend, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("docstore: connecting to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("docstore: pinging mongodb: %w", err)
	}
	return &MongoBackend{client: client, db: client.Database(dbName)}, nil
}

// Put implements Backend.
func (b *MongoBackend) Put(ctx context.Context, collection, id string, doc map[string]any) error {
	_, err := b.db.Collection(collection).ReplaceOne(ctx,
		bson.M{"id": id}, doc, options.Replace().SetUpsert(true))
	return err
}

// Get implements Backend.
func (b *MongoBackend) Get(ctx context.Context, collection, id string) (map[string]any, error) {
	var doc bson.M
	err := b.db.Collection(collection).FindOne(ctx, bson.M{"id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	if err != nil {
		return nil, err
	}
	delete(doc, "_id")
	return doc, nil
}

// FindByHash implements Backend with a plain equality filter; create an index
// on the hash field for large collections.
func (b *MongoBackend) FindByHash(ctx context.Context, collection, hashField, digest string) ([]map[string]any, error) {
	return b.find(ctx, collection, bson.M{hashField: digest})
}

// List implements Backend.
func (b *MongoBackend) List(ctx context.Context, collection string) ([]map[string]any, error) {
	return b.find(ctx, collection, bson.M{})
}

func (b *MongoBackend) find(ctx context.Context, collection string, filter bson.M) ([]map[string]any, error) {
	cursor, err := b.db.Collection(collection).Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []map[string]any
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		delete(doc, "_id")
		docs = append(docs, doc)
	}
	return docs, cursor.Err()
}

// Delete implements Backend.
func (b *MongoBackend) Delete(ctx context.Context, collection, id string) error {
	_, err := b.db.Collection(collection).DeleteOne(ctx, bson.M{"id": id})
	return err
}

// ReplaceAll implements Backend. MongoDB has no cross-document transaction
// here without a replica set; the wipe and insert run as two operations.
func (b *MongoBackend) ReplaceAll(ctx context.Context, collection string, docs []map[string]any) error {
	coll := b.db.Collection(collection)
	if _, err := coll.DeleteMany(ctx, bson.M{}); err != nil {
		return err
	}
	if len(docs) == 0 {
		return nil
	}
	payload := make([]any, 0, len(docs))
	for _, doc := range docs {
		payload = append(payload, doc)
	}
	_, err := coll.InsertMany(ctx, payload)
	return err
}

// Close implements Backend.
func (b *MongoBackend) Close() error {
	return b.client.Disconnect(context.Background())
}
