package support

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("not found")

// MessageStore is the record-store surface the aggregators depend on.
type MessageStore interface {
	ListAll(ctx context.Context) ([]Message, error)
	ListByUser(ctx context.Context, userID string) ([]Message, error)
	Insert(ctx context.Context, m *Message) error
	DeleteByUser(ctx context.Context, userID string) error
}

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	r := &MongoRepository{coll: db.Collection("support_messages")}
	_, _ = r.coll.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: 1}},
	})
	return r
}

// ListAll returns every message ordered by created_at ascending. Ordering is
// global, not per conversation, so grouping preserves cross-conversation
// interleaving the way the store saw it.
func (r *MongoRepository) ListAll(ctx context.Context) ([]Message, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []Message{}
	for cur.Next(ctx) {
		var m Message
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, cur.Err()
}

func (r *MongoRepository) ListByUser(ctx context.Context, userID string) ([]Message, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []Message{}
	for cur.Next(ctx) {
		var m Message
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, cur.Err()
}

// Insert assigns CreatedAt server-side; the caller supplies everything else.
func (r *MongoRepository) Insert(ctx context.Context, m *Message) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	_, err := r.coll.InsertOne(ctx, m)
	return err
}

// DeleteByUser removes the whole conversation. There is no per-message delete.
func (r *MongoRepository) DeleteByUser(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.coll.DeleteMany(ctx, bson.M{"user_id": userID})
	return err
}
