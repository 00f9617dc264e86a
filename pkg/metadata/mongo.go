package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Defaults for [MongoSource].
const (
	DefaultMongoDatabase   = "flowgrid"
	DefaultMongoCollection = "default_metadata"
	defaultMongoTimeout    = 10 * time.Second
)

// MongoSource reads documents from a MongoDB collection, one metadata
// document per record. String "_id" values are used as document IDs.
type MongoSource struct {
	URI        string
	Database   string // Defaults to DefaultMongoDatabase
	Collection string // Defaults to DefaultMongoCollection
}

func (s MongoSource) String() string {
	return fmt.Sprintf("mongodb %s.%s", s.database(), s.collection())
}

func (s MongoSource) database() string {
	if s.Database == "" {
		return DefaultMongoDatabase
	}
	return s.Database
}

func (s MongoSource) collection() string {
	if s.Collection == "" {
		return DefaultMongoCollection
	}
	return s.Collection
}

// Documents implements [Source]. It connects, reads the whole collection
// sorted by _id and disconnects.
func (s MongoSource) Documents(ctx context.Context) ([]Document, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultMongoTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(s.URI))
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	coll := client.Database(s.database()).Collection(s.collection())
	cur, err := coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	var records []bson.M
	if err := cur.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("read cursor: %w", err)
	}

	docs := make([]Document, 0, len(records))
	for _, rec := range records {
		d, err := fromBSON(rec)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, nil
}

// fromBSON converts a record to a Document through relaxed extended JSON,
// so nested documents and arrays become plain maps and slices.
func fromBSON(rec bson.M) (Document, error) {
	data, err := bson.MarshalExtJSON(rec, false, false)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return d, nil
}
