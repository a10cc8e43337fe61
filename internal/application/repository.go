package application

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("application not found")

type Repository interface {
	Create(ctx context.Context, a *Application) error
	Update(ctx context.Context, a *Application) error
	FindByUser(ctx context.Context, userID string) (*Application, error)
	FindByID(ctx context.Context, id string) (*Application, error)
	List(ctx context.Context) ([]Application, error)
	Delete(ctx context.Context, id string) error
}

type mongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	col := db.Collection("applications")
	// One application per user.
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return &mongoRepo{col: col}
}

func (r *mongoRepo) Create(ctx context.Context, a *Application) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	a.CreatedAt = time.Now().UTC()
	a.UpdatedAt = a.CreatedAt
	_, err := r.col.InsertOne(ctx, a)
	return err
}

func (r *mongoRepo) Update(ctx context.Context, a *Application) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	a.UpdatedAt = time.Now().UTC()
	_, err := r.col.UpdateByID(ctx, a.ID, bson.M{"$set": a})
	return err
}

func (r *mongoRepo) FindByUser(ctx context.Context, userID string) (*Application, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var a Application
	err := r.col.FindOne(ctx, bson.M{"user_id": userID}).Decode(&a)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	return &a, err
}

func (r *mongoRepo) FindByID(ctx context.Context, id string) (*Application, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var a Application
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	return &a, err
}

func (r *mongoRepo) List(ctx context.Context) ([]Application, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []Application{}
	for cur.Next(ctx) {
		var a Application
		if err := cur.Decode(&a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, cur.Err()
}

func (r *mongoRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
