package profile

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrProfileNotFound = errors.New("profile not found")

// Profile is the denormalized per-identity record carrying the privilege
// flag. Callers must re-check IsAdmin per identity change instead of caching
// it in a token.
type Profile struct {
	ID        string    `bson:"_id" json:"id"`
	IsAdmin   bool      `bson:"is_admin" json:"is_admin"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

type Repository interface {
	Ensure(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*Profile, error)
	IsAdmin(ctx context.Context, id string) (bool, error)
	SetAdmin(ctx context.Context, id string, isAdmin bool) error
}

type mongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepo{col: db.Collection("profiles")}
}

// Ensure creates the profile row on first sign-up; later calls are no-ops.
func (r *mongoRepo) Ensure(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	doc := bson.M{"_id": id, "is_admin": false, "updated_at": time.Now().UTC()}
	_, err := r.col.UpdateByID(ctx, id, bson.M{"$setOnInsert": doc}, options.Update().SetUpsert(true))
	return err
}

func (r *mongoRepo) Get(ctx context.Context, id string) (*Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var p Profile
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, ErrProfileNotFound
	}
	return &p, err
}

func (r *mongoRepo) IsAdmin(ctx context.Context, id string) (bool, error) {
	p, err := r.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return false, nil
		}
		return false, err
	}
	return p.IsAdmin, nil
}

func (r *mongoRepo) SetAdmin(ctx context.Context, id string, isAdmin bool) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.col.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"is_admin": isAdmin, "updated_at": time.Now().UTC()},
	})
	return err
}
