package storage

import (
	"context"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore keeps each document key as a single record in one collection,
// replaced wholesale on every Save. Same contract as JSONStore; it exists
// so deployments with a shared database don't lose data on instance churn.
type MongoStore struct {
	client *mongo.Client
	docs   *mongo.Collection
}

func NewMongoStore(ctx context.Context, mongoURI, dbName string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	return &MongoStore{
		client: client,
		docs:   client.Database(dbName).Collection("documents"),
	}, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) Load(ctx context.Context, key string, into interface{}) error {
	var doc struct {
		Data bson.RawValue `bson:"data"`
	}

	err := s.docs.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil
		}
		return err
	}

	if err := doc.Data.Unmarshal(into); err != nil {
		log.Printf("[store] corrupt document %q, treating as absent: %v", key, err)
	}
	return nil
}

func (s *MongoStore) Save(ctx context.Context, key string, data interface{}) error {
	_, err := s.docs.ReplaceOne(ctx,
		bson.M{"_id": key},
		bson.M{"_id": key, "data": data},
		options.Replace().SetUpsert(true),
	)
	return err
}
