package portfolio

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	Create(ctx context.Context, item Item) error
	Update(ctx context.Context, id string, set bson.M, unset ...string) (Item, error)
	Delete(ctx context.Context, id string) (bool, error)
	Get(ctx context.Context, id string) (Item, error)
	Exists(ctx context.Context, id string) (bool, error)
	GetPublishedBySlug(ctx context.Context, slug string) (Item, error)
	ListPublished(ctx context.Context) ([]Item, error)
	ListAdmin(ctx context.Context, filter AdminListFilter, limit, offset int64) ([]Item, error)
	CountAdmin(ctx context.Context, filter AdminListFilter) (int64, error)
	SetOrder(ctx context.Context, id string, order int, now time.Time) (bool, error)
}

type MediaRepository interface {
	ListByItem(ctx context.Context, itemID string) ([]Media, error)
	Insert(ctx context.Context, media ...Media) error
	Delete(ctx context.Context, itemID, id string) (bool, error)
	DeleteByItem(ctx context.Context, itemID string, types ...MediaType) (int64, error)
}

var itemSort = bson.D{
	{Key: "order", Value: 1},
	{Key: "created_at", Value: -1},
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, item Item) error {
	_, err := r.col.InsertOne(ctx, item)
	return err
}

// Update applies set and removes the unset fields.
func (r *MongoRepository) Update(ctx context.Context, id string, set bson.M, unset ...string) (Item, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		fields := bson.M{}
		for _, field := range unset {
			fields[field] = ""
		}
		update["$unset"] = fields
	}

	var updated Item
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&updated); err != nil {
		return Item{}, err
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

func (r *MongoRepository) Get(ctx context.Context, id string) (Item, error) {
	var item Item
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&item); err != nil {
		return Item{}, err
	}
	return item, nil
}

func (r *MongoRepository) Exists(ctx context.Context, id string) (bool, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *MongoRepository) GetPublishedBySlug(ctx context.Context, slug string) (Item, error) {
	var item Item
	if err := r.col.FindOne(ctx, bson.M{"slug": slug, "published": true}).Decode(&item); err != nil {
		return Item{}, err
	}
	return item, nil
}

func (r *MongoRepository) ListPublished(ctx context.Context) ([]Item, error) {
	return r.find(ctx, bson.M{"published": true}, options.Find().SetSort(itemSort))
}

func (r *MongoRepository) ListAdmin(ctx context.Context, filter AdminListFilter, limit, offset int64) ([]Item, error) {
	opts := options.Find().
		SetSort(itemSort).
		SetLimit(limit).
		SetSkip(offset)
	return r.find(ctx, adminQuery(filter), opts)
}

func (r *MongoRepository) CountAdmin(ctx context.Context, filter AdminListFilter) (int64, error) {
	return r.col.CountDocuments(ctx, adminQuery(filter))
}

func (r *MongoRepository) SetOrder(ctx context.Context, id string, order int, now time.Time) (bool, error) {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"order": order, "updated_at": now}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *MongoRepository) find(ctx context.Context, query bson.M, opts *options.FindOptions) ([]Item, error) {
	cursor, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]Item, 0)
	for cursor.Next(ctx) {
		var item Item
		if err := cursor.Decode(&item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func adminQuery(filter AdminListFilter) bson.M {
	query := bson.M{}
	if filter.Type != "" {
		query["type"] = filter.Type
	}
	if filter.Published != nil {
		query["published"] = *filter.Published
	}
	return query
}

type MongoMediaRepository struct {
	col *mongo.Collection
}

func NewMediaRepository(col *mongo.Collection) *MongoMediaRepository {
	return &MongoMediaRepository{col: col}
}

func (r *MongoMediaRepository) ListByItem(ctx context.Context, itemID string) ([]Media, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "order", Value: 1},
		{Key: "created_at", Value: 1},
	})
	cursor, err := r.col.Find(ctx, bson.M{"portfolio_item_id": itemID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	media := make([]Media, 0)
	if err := cursor.All(ctx, &media); err != nil {
		return nil, err
	}
	return media, nil
}

func (r *MongoMediaRepository) Insert(ctx context.Context, media ...Media) error {
	if len(media) == 0 {
		return nil
	}
	docs := make([]interface{}, len(media))
	for i, m := range media {
		docs[i] = m
	}
	_, err := r.col.InsertMany(ctx, docs)
	return err
}

func (r *MongoMediaRepository) Delete(ctx context.Context, itemID, id string) (bool, error) {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id, "portfolio_item_id": itemID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// DeleteByItem removes the item's media of the given types, or all of them
// when no type is given.
func (r *MongoMediaRepository) DeleteByItem(ctx context.Context, itemID string, types ...MediaType) (int64, error) {
	filter := bson.M{"portfolio_item_id": itemID}
	if len(types) > 0 {
		filter["type"] = bson.M{"$in": types}
	}
	res, err := r.col.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
