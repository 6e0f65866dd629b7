package seeders

import (
	"context"
	"errors"
	"time"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/app/repositories"
	"github.com/shashiranjanraj/shopfront/config"
	"github.com/shashiranjanraj/shopfront/pkg/auth"
)

func init() {
	Register("admin", seedAdmin)
	Register("catalog", seedCatalog)
}

// seedAdmin creates the administrator account unless its email is taken.
func seedAdmin(ctx context.Context, store *repositories.Store) error {
	email := config.Get("SEED_ADMIN_EMAIL", "admin@shopfront.local")
	if _, err := store.Users.FindByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return err
	}

	hash, err := auth.HashPassword(config.Get("SEED_ADMIN_PASSWORD", "change-me-now"))
	if err != nil {
		return err
	}
	return store.Users.Create(ctx, &models.User{
		Name:         "Administrator",
		Email:        email,
		PasswordHash: hash,
		Phone:        "0000000000",
		IsAdmin:      true,
	})
}

var demoCatalog = []struct {
	category models.Category
	products []models.Product
}{
	{
		category: models.Category{Name: "Electronics", Icon: "icon-laptop", Color: "#3b82f6"},
		products: []models.Product{
			{Name: "Wireless Headphones", Description: "Over-ear, 30h battery", Brand: "Sonora", Price: 89.90, CountInStock: 25, Rating: 4.5, NumReviews: 12, IsFeatured: true},
			{Name: "USB-C Charger", Description: "65W GaN charger", Brand: "Voltix", Price: 34.50, CountInStock: 80},
		},
	},
	{
		category: models.Category{Name: "Home", Icon: "icon-home", Color: "#10b981"},
		products: []models.Product{
			{Name: "Ceramic Mug", Description: "350ml stoneware mug", Brand: "Kiln", Price: 12.00, CountInStock: 120, IsFeatured: true},
			{Name: "Desk Lamp", Description: "Dimmable LED lamp", Brand: "Lumo", Price: 45.00, CountInStock: 15, Rating: 4.1, NumReviews: 3},
		},
	},
}

// seedCatalog inserts the demo categories and products once; it does nothing
// when any category already exists.
func seedCatalog(ctx context.Context, store *repositories.Store) error {
	existing, err := store.Categories.All(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	for _, entry := range demoCatalog {
		cat := entry.category
		if err := store.Categories.Create(ctx, &cat); err != nil {
			return err
		}
		for _, p := range entry.products {
			p.Category = cat.ID
			p.DateCreated = now
			if err := store.Products.Create(ctx, &p); err != nil {
				return err
			}
		}
	}
	return nil
}
