package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/pkg/metrics"
)

// Collection names.
const (
	CategoriesCollection = "categories"
	ProductsCollection   = "products"
	UsersCollection      = "users"
	OrderItemsCollection = "orderitems"
	OrdersCollection     = "orders"
)

// NewMongoStore returns a Store backed by db.
func NewMongoStore(db *mongo.Database) *Store {
	return &Store{
		Categories: &mongoCategories{col: db.Collection(CategoriesCollection)},
		Products:   &mongoProducts{col: db.Collection(ProductsCollection)},
		Users:      &mongoUsers{col: db.Collection(UsersCollection)},
		OrderItems: &mongoOrderItems{col: db.Collection(OrderItemsCollection)},
		Orders:     &mongoOrders{col: db.Collection(OrdersCollection)},
	}
}

// ── shared helpers ───────────────────────────────────────────────────────────

func byID(id primitive.ObjectID) bson.M { return bson.M{"_id": id} }

func findOne[T any](ctx context.Context, col *mongo.Collection, filter bson.M) (T, error) {
	defer metrics.ObserveDBQuery(col.Name(), "find_one", time.Now())

	var out T
	err := col.FindOne(ctx, filter).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return out, ErrNotFound
	}
	if err != nil {
		return out, fmt.Errorf("%s: find one: %w", col.Name(), err)
	}
	return out, nil
}

func findMany[T any](ctx context.Context, col *mongo.Collection, filter bson.M, opts ...*options.FindOptions) ([]T, error) {
	defer metrics.ObserveDBQuery(col.Name(), "find", time.Now())

	cur, err := col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: find: %w", col.Name(), err)
	}
	out := make([]T, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", col.Name(), err)
	}
	return out, nil
}

func findByIDs[T any](ctx context.Context, col *mongo.Collection, ids []primitive.ObjectID) ([]T, error) {
	if len(ids) == 0 {
		return []T{}, nil
	}
	return findMany[T](ctx, col, bson.M{"_id": bson.M{"$in": ids}})
}

func insertOne(ctx context.Context, col *mongo.Collection, doc interface{}) error {
	defer metrics.ObserveDBQuery(col.Name(), "insert", time.Now())

	if _, err := col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("%s: insert: %w", col.Name(), err)
	}
	return nil
}

func replaceOne(ctx context.Context, col *mongo.Collection, id primitive.ObjectID, doc interface{}) error {
	defer metrics.ObserveDBQuery(col.Name(), "replace", time.Now())

	res, err := col.ReplaceOne(ctx, byID(id), doc)
	if err != nil {
		return fmt.Errorf("%s: replace: %w", col.Name(), err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func updateOne[T any](ctx context.Context, col *mongo.Collection, id primitive.ObjectID, set bson.M) (T, error) {
	defer metrics.ObserveDBQuery(col.Name(), "update", time.Now())

	var out T
	err := col.FindOneAndUpdate(ctx, byID(id), bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return out, ErrNotFound
	}
	if err != nil {
		return out, fmt.Errorf("%s: update: %w", col.Name(), err)
	}
	return out, nil
}

func deleteOne(ctx context.Context, col *mongo.Collection, id primitive.ObjectID) error {
	defer metrics.ObserveDBQuery(col.Name(), "delete", time.Now())

	res, err := col.DeleteOne(ctx, byID(id))
	if err != nil {
		return fmt.Errorf("%s: delete: %w", col.Name(), err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func count(ctx context.Context, col *mongo.Collection) (int64, error) {
	defer metrics.ObserveDBQuery(col.Name(), "count", time.Now())

	n, err := col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("%s: count: %w", col.Name(), err)
	}
	return n, nil
}

// ── Categories ───────────────────────────────────────────────────────────────

type mongoCategories struct{ col *mongo.Collection }

func (r *mongoCategories) All(ctx context.Context) ([]models.Category, error) {
	return findMany[models.Category](ctx, r.col, bson.M{})
}

func (r *mongoCategories) FindByID(ctx context.Context, id primitive.ObjectID) (models.Category, error) {
	return findOne[models.Category](ctx, r.col, byID(id))
}

func (r *mongoCategories) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Category, error) {
	return findByIDs[models.Category](ctx, r.col, ids)
}

func (r *mongoCategories) Create(ctx context.Context, c *models.Category) error {
	ensureID(&c.ID)
	return insertOne(ctx, r.col, c)
}

func (r *mongoCategories) Update(ctx context.Context, c *models.Category) error {
	return replaceOne(ctx, r.col, c.ID, c)
}

func (r *mongoCategories) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteOne(ctx, r.col, id)
}

// ── Products ─────────────────────────────────────────────────────────────────

type mongoProducts struct{ col *mongo.Collection }

func (r *mongoProducts) Find(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	filter := bson.M{}
	if len(f.Categories) > 0 {
		filter["category"] = bson.M{"$in": f.Categories}
	}
	if f.Featured != nil {
		filter["isFeatured"] = *f.Featured
	}
	opts := options.Find()
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}
	return findMany[models.Product](ctx, r.col, filter, opts)
}

func (r *mongoProducts) FindByID(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	return findOne[models.Product](ctx, r.col, byID(id))
}

func (r *mongoProducts) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	return findByIDs[models.Product](ctx, r.col, ids)
}

func (r *mongoProducts) Create(ctx context.Context, p *models.Product) error {
	ensureID(&p.ID)
	return insertOne(ctx, r.col, p)
}

func (r *mongoProducts) Update(ctx context.Context, p *models.Product) error {
	_, err := updateOne[models.Product](ctx, r.col, p.ID, bson.M{
		"name":            p.Name,
		"description":     p.Description,
		"richDescription": p.RichDescription,
		"image":           p.Image,
		"images":          p.Images,
		"brand":           p.Brand,
		"price":           p.Price,
		"category":        p.Category,
		"countInStock":    p.CountInStock,
		"rating":          p.Rating,
		"numReviews":      p.NumReviews,
		"isFeatured":      p.IsFeatured,
	})
	return err
}

func (r *mongoProducts) SetImages(ctx context.Context, id primitive.ObjectID, images []string) (models.Product, error) {
	return updateOne[models.Product](ctx, r.col, id, bson.M{"images": images})
}

func (r *mongoProducts) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteOne(ctx, r.col, id)
}

func (r *mongoProducts) Count(ctx context.Context) (int64, error) {
	return count(ctx, r.col)
}

// ── Users ────────────────────────────────────────────────────────────────────

type mongoUsers struct{ col *mongo.Collection }

func (r *mongoUsers) All(ctx context.Context) ([]models.User, error) {
	return findMany[models.User](ctx, r.col, bson.M{})
}

func (r *mongoUsers) FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	return findOne[models.User](ctx, r.col, byID(id))
}

func (r *mongoUsers) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	return findByIDs[models.User](ctx, r.col, ids)
}

func (r *mongoUsers) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return findOne[models.User](ctx, r.col, bson.M{"email": email})
}

// Create relies on the unique email index created by the migrate command.
func (r *mongoUsers) Create(ctx context.Context, u *models.User) error {
	ensureID(&u.ID)
	return insertOne(ctx, r.col, u)
}

func (r *mongoUsers) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteOne(ctx, r.col, id)
}

func (r *mongoUsers) Count(ctx context.Context) (int64, error) {
	return count(ctx, r.col)
}

// ── Order items ──────────────────────────────────────────────────────────────

type mongoOrderItems struct{ col *mongo.Collection }

func (r *mongoOrderItems) InsertMany(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	defer metrics.ObserveDBQuery(r.col.Name(), "insert_many", time.Now())

	docs := make([]interface{}, len(items))
	for i := range items {
		ensureID(&items[i].ID)
		docs[i] = items[i]
	}
	if _, err := r.col.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true)); err != nil {
		return fmt.Errorf("%s: insert many: %w", r.col.Name(), err)
	}
	return nil
}

func (r *mongoOrderItems) FindByID(ctx context.Context, id primitive.ObjectID) (models.OrderItem, error) {
	return findOne[models.OrderItem](ctx, r.col, byID(id))
}

func (r *mongoOrderItems) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.OrderItem, error) {
	return findByIDs[models.OrderItem](ctx, r.col, ids)
}

func (r *mongoOrderItems) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteOne(ctx, r.col, id)
}

func (r *mongoOrderItems) DeleteMany(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	defer metrics.ObserveDBQuery(r.col.Name(), "delete_many", time.Now())

	res, err := r.col.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, fmt.Errorf("%s: delete many: %w", r.col.Name(), err)
	}
	return res.DeletedCount, nil
}

// ── Orders ───────────────────────────────────────────────────────────────────

type mongoOrders struct{ col *mongo.Collection }

func (r *mongoOrders) All(ctx context.Context) ([]models.Order, error) {
	return findMany[models.Order](ctx, r.col, bson.M{},
		options.Find().SetSort(bson.D{{Key: "dateOrdered", Value: -1}}))
}

func (r *mongoOrders) FindByID(ctx context.Context, id primitive.ObjectID) (models.Order, error) {
	return findOne[models.Order](ctx, r.col, byID(id))
}

func (r *mongoOrders) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return findMany[models.Order](ctx, r.col, bson.M{"user": userID},
		options.Find().SetSort(bson.D{{Key: "dateOrdered", Value: -1}}))
}

func (r *mongoOrders) Create(ctx context.Context, o *models.Order) error {
	ensureID(&o.ID)
	return insertOne(ctx, r.col, o)
}

func (r *mongoOrders) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (models.Order, error) {
	return updateOne[models.Order](ctx, r.col, id, bson.M{"status": status})
}

func (r *mongoOrders) Delete(ctx context.Context, id primitive.ObjectID) (models.Order, error) {
	defer metrics.ObserveDBQuery(r.col.Name(), "find_one_delete", time.Now())

	var out models.Order
	err := r.col.FindOneAndDelete(ctx, byID(id)).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return out, ErrNotFound
	}
	if err != nil {
		return out, fmt.Errorf("%s: delete: %w", r.col.Name(), err)
	}
	return out, nil
}

func (r *mongoOrders) Count(ctx context.Context) (int64, error) {
	return count(ctx, r.col)
}

func (r *mongoOrders) TotalSales(ctx context.Context) (float64, error) {
	defer metrics.ObserveDBQuery(r.col.Name(), "aggregate", time.Now())

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "totalsales", Value: bson.D{{Key: "$sum", Value: "$totalPrice"}}},
		}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("%s: aggregate: %w", r.col.Name(), err)
	}

	var rows []struct {
		TotalSales float64 `bson:"totalsales"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("%s: decode aggregate: %w", r.col.Name(), err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].TotalSales, nil
}
