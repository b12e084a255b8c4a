package skills

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	Create(ctx context.Context, skill Skill) error
	Update(ctx context.Context, id string, set bson.M) (Skill, error)
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context) ([]Skill, error)
	Count(ctx context.Context) (int64, error)
	SetOrder(ctx context.Context, id string, order int, now time.Time) (bool, error)
	UpsertByTitle(ctx context.Context, skill Skill) error
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, skill Skill) error {
	_, err := r.col.InsertOne(ctx, skill)
	return err
}

func (r *MongoRepository) Update(ctx context.Context, id string, set bson.M) (Skill, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated Skill
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated); err != nil {
		return Skill{}, err
	}
	return updated, nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *MongoRepository) List(ctx context.Context) ([]Skill, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "order", Value: 1},
		{Key: "created_at", Value: 1},
	})
	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]Skill, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *MongoRepository) Count(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{})
}

func (r *MongoRepository) SetOrder(ctx context.Context, id string, order int, now time.Time) (bool, error) {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"order": order, "updated_at": now}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// UpsertByTitle inserts skill unless one with the same title exists.
func (r *MongoRepository) UpsertByTitle(ctx context.Context, skill Skill) error {
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateOne(ctx,
		bson.M{"title": skill.Title},
		bson.M{"$setOnInsert": skill},
		opts,
	)
	return err
}
