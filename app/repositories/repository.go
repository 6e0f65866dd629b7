// Package repositories is the entity store: one repository per collection,
// each with a MongoDB driver and an in-memory driver.
package repositories

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/shopfront/app/models"
)

var (
	// ErrNotFound is returned when no document matches the given identifier.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique field (user email) is already taken.
	ErrDuplicate = errors.New("duplicate record")
)

type CategoryRepository interface {
	All(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Category, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Category, error)
	Create(ctx context.Context, c *models.Category) error
	Update(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ProductFilter narrows Find. Zero values mean "no constraint".
type ProductFilter struct {
	Categories []primitive.ObjectID
	Featured   *bool
	Limit      int
}

type ProductRepository interface {
	Find(ctx context.Context, f ProductFilter) ([]models.Product, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Product, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product) error
	SetImages(ctx context.Context, id primitive.ObjectID, images []string) (models.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

type UserRepository interface {
	All(ctx context.Context) ([]models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	Create(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

type OrderItemRepository interface {
	// InsertMany persists items in slice order. Items must carry their ids.
	InsertMany(ctx context.Context, items []models.OrderItem) error
	FindByID(ctx context.Context, id primitive.ObjectID) (models.OrderItem, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.OrderItem, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteMany(ctx context.Context, ids []primitive.ObjectID) (int64, error)
}

type OrderRepository interface {
	// All returns every order, newest first.
	All(ctx context.Context) ([]models.Order, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Order, error)
	// FindByUser returns the user's orders, newest first.
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	Create(ctx context.Context, o *models.Order) error
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (models.Order, error)
	// Delete removes the order and returns the document as it was.
	Delete(ctx context.Context, id primitive.ObjectID) (models.Order, error)
	Count(ctx context.Context) (int64, error)
	// TotalSales sums totalPrice over all orders; 0 when there are none.
	TotalSales(ctx context.Context) (float64, error)
}

// Store bundles the repositories of one backend.
type Store struct {
	Categories CategoryRepository
	Products   ProductRepository
	Users      UserRepository
	OrderItems OrderItemRepository
	Orders     OrderRepository
}
