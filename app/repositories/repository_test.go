package repositories_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/app/repositories"
)

func TestMemoryStore(t *testing.T) {
	runStoreContract(t, repositories.NewMemoryStore())
}

// TestMongoStore runs the same contract against a live server. Set
// MONGO_TEST_URI (e.g. mongodb://localhost:27017) to enable it.
func TestMongoStore(t *testing.T) {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	db := client.Database("shopfront_test_" + primitive.NewObjectID().Hex())
	t.Cleanup(func() { _ = db.Drop(context.Background()) })

	runStoreContract(t, repositories.NewMongoStore(db))
}

func runStoreContract(t *testing.T, store *repositories.Store) {
	ctx := context.Background()

	t.Run("categories", func(t *testing.T) {
		c := &models.Category{Name: "Books", Icon: "book", Color: "#fff"}
		require.NoError(t, store.Categories.Create(ctx, c))
		require.False(t, c.ID.IsZero())

		got, err := store.Categories.FindByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, "Books", got.Name)

		c.Name = "Novels"
		require.NoError(t, store.Categories.Update(ctx, c))
		got, _ = store.Categories.FindByID(ctx, c.ID)
		assert.Equal(t, "Novels", got.Name)

		missing := &models.Category{ID: primitive.NewObjectID(), Name: "x"}
		assert.ErrorIs(t, store.Categories.Update(ctx, missing), repositories.ErrNotFound)

		require.NoError(t, store.Categories.Delete(ctx, c.ID))
		_, err = store.Categories.FindByID(ctx, c.ID)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
		assert.ErrorIs(t, store.Categories.Delete(ctx, c.ID), repositories.ErrNotFound)
	})

	t.Run("products", func(t *testing.T) {
		catA, catB := primitive.NewObjectID(), primitive.NewObjectID()
		p1 := &models.Product{Name: "P1", Price: 10, Category: catA, IsFeatured: true}
		p2 := &models.Product{Name: "P2", Price: 5.5, Category: catB}
		require.NoError(t, store.Products.Create(ctx, p1))
		require.NoError(t, store.Products.Create(ctx, p2))

		onlyA, err := store.Products.Find(ctx, repositories.ProductFilter{Categories: []primitive.ObjectID{catA}})
		require.NoError(t, err)
		require.Len(t, onlyA, 1)
		assert.Equal(t, p1.ID, onlyA[0].ID)

		featured := true
		feat, err := store.Products.Find(ctx, repositories.ProductFilter{Featured: &featured, Limit: 5})
		require.NoError(t, err)
		require.Len(t, feat, 1)

		updated, err := store.Products.SetImages(ctx, p2.ID, []string{"a.png", "b.png"})
		require.NoError(t, err)
		assert.Equal(t, []string{"a.png", "b.png"}, updated.Images)

		byIDs, err := store.Products.FindByIDs(ctx, []primitive.ObjectID{p1.ID, p2.ID, primitive.NewObjectID()})
		require.NoError(t, err)
		assert.Len(t, byIDs, 2)

		n, err := store.Products.Count(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, int64(2))
	})

	t.Run("users", func(t *testing.T) {
		u := &models.User{Name: "Ana", Email: "ana-" + primitive.NewObjectID().Hex() + "@example.com"}
		require.NoError(t, store.Users.Create(ctx, u))

		got, err := store.Users.FindByEmail(ctx, u.Email)
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)

		_, err = store.Users.FindByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("orders and items", func(t *testing.T) {
		user := primitive.NewObjectID()
		items := []models.OrderItem{
			{ID: primitive.NewObjectID(), Quantity: 2, Product: primitive.NewObjectID()},
			{ID: primitive.NewObjectID(), Quantity: 1, Product: primitive.NewObjectID()},
		}
		require.NoError(t, store.OrderItems.InsertMany(ctx, items))

		older := &models.Order{OrderItems: []primitive.ObjectID{items[0].ID}, TotalPrice: 20, User: user,
			Status: "Pending", DateOrdered: time.Now().Add(-time.Hour).UTC().Truncate(time.Millisecond)}
		newer := &models.Order{OrderItems: []primitive.ObjectID{items[1].ID}, TotalPrice: 5.5,
			Status: "Pending", DateOrdered: time.Now().UTC().Truncate(time.Millisecond)}
		require.NoError(t, store.Orders.Create(ctx, older))
		require.NoError(t, store.Orders.Create(ctx, newer))

		all, err := store.Orders.All(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, newer.ID, all[0].ID)

		sales, err := store.Orders.TotalSales(ctx)
		require.NoError(t, err)
		assert.InDelta(t, 25.5, sales, 1e-9)

		mine, err := store.Orders.FindByUser(ctx, user)
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Equal(t, older.ID, mine[0].ID)

		shipped, err := store.Orders.UpdateStatus(ctx, older.ID, "Shipped")
		require.NoError(t, err)
		assert.Equal(t, "Shipped", shipped.Status)

		deleted, err := store.Orders.Delete(ctx, older.ID)
		require.NoError(t, err)
		assert.Equal(t, older.OrderItems, deleted.OrderItems)
		_, err = store.Orders.Delete(ctx, older.ID)
		assert.ErrorIs(t, err, repositories.ErrNotFound)

		n, err := store.OrderItems.DeleteMany(ctx, []primitive.ObjectID{items[0].ID, items[1].ID})
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
		_, err = store.OrderItems.FindByID(ctx, items[0].ID)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("total sales of empty collection is zero", func(t *testing.T) {
		empty := repositories.NewMemoryStore()
		sales, err := empty.Orders.TotalSales(ctx)
		require.NoError(t, err)
		assert.Zero(t, sales)
	})
}
