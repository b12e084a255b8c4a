package blocks

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Record is the stored form of a block; Content is the serialized payload.
type Record struct {
	ID        string    `bson:"_id"`
	ItemID    string    `bson:"portfolio_item_id"`
	Type      Type      `bson:"type"`
	Order     int       `bson:"order"`
	Content   string    `bson:"content"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type Repository interface {
	ListByItem(ctx context.Context, itemID string) ([]Record, error)
	Insert(ctx context.Context, records ...Record) error
	Replace(ctx context.Context, record Record) error
	Delete(ctx context.Context, itemID, id string) (bool, error)
	DeleteByItemExcept(ctx context.Context, itemID string, keep []string) (int64, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) ListByItem(ctx context.Context, itemID string) ([]Record, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "order", Value: 1},
		{Key: "created_at", Value: 1},
	})

	cursor, err := r.col.Find(ctx, bson.M{"portfolio_item_id": itemID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := make([]Record, 0)
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *MongoRepository) Insert(ctx context.Context, records ...Record) error {
	if len(records) == 0 {
		return nil
	}
	docs := make([]interface{}, len(records))
	for i, rec := range records {
		docs[i] = rec
	}
	_, err := r.col.InsertMany(ctx, docs)
	return err
}

func (r *MongoRepository) Replace(ctx context.Context, record Record) error {
	filter := bson.M{"_id": record.ID, "portfolio_item_id": record.ItemID}
	res, err := r.col.ReplaceOne(ctx, filter, record)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *MongoRepository) Delete(ctx context.Context, itemID, id string) (bool, error) {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id, "portfolio_item_id": itemID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// DeleteByItemExcept removes the item's blocks whose ids are not in keep.
// An empty keep removes every block of the item.
func (r *MongoRepository) DeleteByItemExcept(ctx context.Context, itemID string, keep []string) (int64, error) {
	filter := bson.M{"portfolio_item_id": itemID}
	if len(keep) > 0 {
		filter["_id"] = bson.M{"$nin": keep}
	}
	res, err := r.col.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
