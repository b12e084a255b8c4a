package users

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	FindByEmail(ctx context.Context, email string) (User, error)
	// Upsert creates the user or replaces its name and hash, keyed by email.
	Upsert(ctx context.Context, user User) error
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	var user User
	if err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return User{}, err
	}
	return user, nil
}

func (r *MongoRepository) Upsert(ctx context.Context, user User) error {
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateOne(ctx,
		bson.M{"email": user.Email},
		bson.M{
			"$set": bson.M{
				"name":          user.Name,
				"password_hash": user.PasswordHash,
				"updated_at":    user.UpdatedAt,
			},
			"$setOnInsert": bson.M{
				"_id":        user.ID,
				"created_at": user.CreatedAt,
			},
		},
		opts,
	)
	return err
}

func touch(user *User, now time.Time) {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
}
