package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fitness-chatter/internal/history"
)

const duplicateKeyCode = 11000

type turnDoc struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	Role      string    `bson:"role"`
	Message   string    `bson:"message"`
	Timestamp time.Time `bson:"timestamp"`
}

// MongoStore keeps one document per turn in a single collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	coll := client.Database(database).Collection(collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ensure history index: %w", err)
	}
	return &MongoStore{client: client, coll: coll}, nil
}

func (s *MongoStore) History(ctx context.Context, userID string) ([]history.Turn, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, history.Unavailable("find turns", err)
	}
	var docs []turnDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, history.Unavailable("decode turns", err)
	}
	out := make([]history.Turn, 0, len(docs))
	for _, d := range docs {
		out = append(out, history.Turn{
			ID:        d.ID,
			UserID:    d.UserID,
			Role:      history.Role(d.Role),
			Message:   d.Message,
			Timestamp: d.Timestamp.UTC(),
		})
	}
	return out, nil
}

// Append sends every turn in one unordered insert. Turns already present
// fail with a duplicate key and count as written.
func (s *MongoStore) Append(ctx context.Context, turns ...history.Turn) error {
	if err := history.Validate(turns); err != nil {
		return err
	}
	if len(turns) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(turns))
	for _, t := range turns {
		docs = append(docs, turnDoc{
			ID:        t.ID,
			UserID:    t.UserID,
			Role:      string(t.Role),
			Message:   t.Message,
			Timestamp: t.Timestamp,
		})
	}
	_, err := s.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err != nil && !onlyDuplicates(err) {
		return history.Unavailable("insert turns", err)
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func onlyDuplicates(err error) bool {
	var bwe mongo.BulkWriteException
	if !errors.As(err, &bwe) {
		return false
	}
	if bwe.WriteConcernError != nil || len(bwe.WriteErrors) == 0 {
		return false
	}
	for _, we := range bwe.WriteErrors {
		if we.Code != duplicateKeyCode {
			return false
		}
	}
	return true
}
