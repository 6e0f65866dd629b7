package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/shopfront/app/repositories"
	"github.com/shashiranjanraj/shopfront/app/services"
	"github.com/shashiranjanraj/shopfront/pkg/storage"
)

func TestCategoryCRUD(t *testing.T) {
	ctx := context.Background()
	svc := services.NewCategoryService(repositories.NewMemoryStore())

	_, err := svc.Create(ctx, services.CategoryInput{})
	require.ErrorIs(t, err, services.ErrValidation)

	_, err = svc.Create(ctx, services.CategoryInput{Name: "Paint", Color: "blue"})
	require.ErrorIs(t, err, services.ErrValidation)

	c, err := svc.Create(ctx, services.CategoryInput{Name: "Paint", Icon: "brush", Color: "#00f"})
	require.NoError(t, err)
	assert.False(t, c.ID.IsZero())

	got, err := svc.Get(ctx, c.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "brush", got.Icon)

	updated, err := svc.Update(ctx, c.ID.Hex(), services.CategoryInput{Name: "Paints"})
	require.NoError(t, err)
	assert.Equal(t, "Paints", updated.Name)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, svc.Delete(ctx, c.ID.Hex()))
	assert.ErrorIs(t, svc.Delete(ctx, c.ID.Hex()), services.ErrNotFound)

	_, err = svc.Get(ctx, "bogus")
	assert.ErrorIs(t, err, services.ErrValidation)
	_, err = svc.Update(ctx, primitive.NewObjectID().Hex(), services.CategoryInput{Name: "x"})
	assert.ErrorIs(t, err, services.ErrNotFound)
}

type catalog struct {
	store    *repositories.Store
	disk     *storage.LocalDisk
	products *services.ProductService
	category string
}

func newCatalog(t *testing.T) *catalog {
	t.Helper()
	store := repositories.NewMemoryStore()
	disk := storage.NewLocalDisk(t.TempDir(), "/public/uploads")
	cat, err := services.NewCategoryService(store).Create(context.Background(), services.CategoryInput{Name: "Garden"})
	require.NoError(t, err)
	return &catalog{
		store:    store,
		disk:     disk,
		products: services.NewProductService(store, disk),
		category: cat.ID.Hex(),
	}
}

func (c *catalog) input(name string) services.ProductInput {
	return services.ProductInput{Name: name, Description: name + " description", Price: 4.5, Category: c.category, CountInStock: 3}
}

func png(name string) *services.Upload {
	return &services.Upload{Filename: name, ContentType: "image/png", Content: strings.NewReader("\x89PNG")}
}

func TestCreateProductStoresImage(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()

	p, err := c.products.Create(ctx, c.input("Rake"), png("garden rake.png"), "http://shop.test")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(p.Image, "http://shop.test/public/uploads/garden-rake.png-"), p.Image)
	assert.True(t, strings.HasSuffix(p.Image, ".png"), p.Image)
	assert.False(t, p.DateCreated.IsZero())

	name := strings.TrimPrefix(p.Image, "http://shop.test/public/uploads/")
	assert.True(t, c.disk.Exists(ctx, name))
}

func TestCreateProductRejections(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()

	_, err := c.products.Create(ctx, c.input("Rake"), nil, "")
	assert.ErrorIs(t, err, services.ErrValidation, "image is required")

	gif := &services.Upload{Filename: "a.gif", ContentType: "image/gif", Content: strings.NewReader("GIF")}
	_, err = c.products.Create(ctx, c.input("Rake"), gif, "")
	assert.ErrorIs(t, err, services.ErrValidation)

	in := c.input("Rake")
	in.Category = primitive.NewObjectID().Hex()
	_, err = c.products.Create(ctx, in, png("a.png"), "")
	var se *services.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "Invalid Category", se.Message)

	in = c.input("Rake")
	in.Price = -1
	_, err = c.products.Create(ctx, in, png("a.png"), "")
	assert.ErrorIs(t, err, services.ErrValidation)

	n, err := c.products.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestProductListFilterAndFeatured(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()
	other, err := services.NewCategoryService(c.store).Create(ctx, services.CategoryInput{Name: "Kitchen"})
	require.NoError(t, err)

	_, err = c.products.Featured(ctx, 0)
	assert.ErrorIs(t, err, services.ErrNotFound)

	rake := c.input("Rake")
	rake.IsFeatured = true
	_, err = c.products.Create(ctx, rake, png("rake.png"), "")
	require.NoError(t, err)
	pan := c.input("Pan")
	pan.Category = other.ID.Hex()
	pan.IsFeatured = true
	_, err = c.products.Create(ctx, pan, png("pan.png"), "")
	require.NoError(t, err)
	_, err = c.products.Create(ctx, c.input("Hose"), png("hose.png"), "")
	require.NoError(t, err)

	all, err := c.products.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	garden, err := c.products.List(ctx, []string{c.category})
	require.NoError(t, err)
	assert.Len(t, garden, 2)

	both, err := c.products.List(ctx, []string{c.category, other.ID.Hex()})
	require.NoError(t, err)
	assert.Len(t, both, 3)

	_, err = c.products.List(ctx, []string{"nope"})
	assert.ErrorIs(t, err, services.ErrValidation)

	featured, err := c.products.Featured(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, featured, 2)

	one, err := c.products.Featured(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, one, 1)
}

func TestUpdateAndDeleteProduct(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()
	p, err := c.products.Create(ctx, c.input("Rake"), png("rake.png"), "")
	require.NoError(t, err)

	in := c.input("Steel rake")
	in.Price = 19.99
	updated, err := c.products.Update(ctx, p.ID.Hex(), in)
	require.NoError(t, err)
	assert.Equal(t, "Steel rake", updated.Name)
	assert.InDelta(t, 19.99, updated.Price, 1e-9)
	assert.Equal(t, p.DateCreated, updated.DateCreated)

	in.Category = primitive.NewObjectID().Hex()
	_, err = c.products.Update(ctx, p.ID.Hex(), in)
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = c.products.Update(ctx, "123", c.input("x"))
	assert.ErrorIs(t, err, services.ErrValidation)

	detail, err := c.products.Get(ctx, p.ID.Hex())
	require.NoError(t, err)
	require.NotNil(t, detail.Category)
	assert.Equal(t, "Garden", detail.Category.Name)

	require.NoError(t, c.products.Delete(ctx, p.ID.Hex()))
	_, err = c.products.Get(ctx, p.ID.Hex())
	assert.ErrorIs(t, err, services.ErrNotFound)
	assert.ErrorIs(t, c.products.Delete(ctx, p.ID.Hex()), services.ErrNotFound)
}

func TestGallery(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()
	p, err := c.products.Create(ctx, c.input("Rake"), png("rake.png"), "")
	require.NoError(t, err)

	uploads := []services.Upload{*png("front.png"), *png("back.png")}
	updated, err := c.products.Gallery(ctx, p.ID.Hex(), uploads, "https://cdn.test")
	require.NoError(t, err)
	require.Len(t, updated.Images, 2)
	assert.True(t, strings.HasPrefix(updated.Images[0], "https://cdn.test/public/uploads/front.png-"))

	tooMany := make([]services.Upload, services.MaxGalleryImages+1)
	for i := range tooMany {
		tooMany[i] = *png("x.png")
	}
	_, err = c.products.Gallery(ctx, p.ID.Hex(), tooMany, "")
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = c.products.Gallery(ctx, primitive.NewObjectID().Hex(), uploads[:1], "")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestUploadName(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	assert.Equal(t, "my-garden-rake.png-1700000000123.png", services.UploadName("my garden rake.png", "png", at))
	assert.Equal(t, "evil.jpg-1700000000123.jpeg", services.UploadName("../../evil.jpg", "jpeg", at))
}
