// Package migrations holds the MongoDB index migrations. Each file registers
// itself from init(); cmd/shopfront imports the package for that side effect.
package migrations

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/shopfront/pkg/migration"
)

func init() {
	migration.Register("20260101000000_users_email_unique", &index{
		collection: "users",
		name:       "email_unique",
		keys:       bson.D{{Key: "email", Value: 1}},
		unique:     true,
	})
	migration.Register("20260101000001_orders_user_date", &index{
		collection: "orders",
		name:       "user_dateOrdered",
		keys:       bson.D{{Key: "user", Value: 1}, {Key: "dateOrdered", Value: -1}},
	})
	migration.Register("20260101000002_orders_date", &index{
		collection: "orders",
		name:       "dateOrdered",
		keys:       bson.D{{Key: "dateOrdered", Value: -1}},
	})
	migration.Register("20260101000003_products_category", &index{
		collection: "products",
		name:       "category",
		keys:       bson.D{{Key: "category", Value: 1}},
	})
	migration.Register("20260101000004_products_featured", &index{
		collection: "products",
		name:       "isFeatured",
		keys:       bson.D{{Key: "isFeatured", Value: 1}},
	})
}

// index creates one named index and drops it on rollback.
type index struct {
	collection string
	name       string
	keys       bson.D
	unique     bool
}

func (m *index) Up(ctx context.Context, db *mongo.Database) error {
	opts := options.Index().SetName(m.name)
	if m.unique {
		opts.SetUnique(true)
	}
	_, err := db.Collection(m.collection).Indexes().CreateOne(ctx, mongo.IndexModel{Keys: m.keys, Options: opts})
	return err
}

func (m *index) Down(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(m.collection).Indexes().DropOne(ctx, m.name)
	return err
}
