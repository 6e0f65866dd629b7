package services_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/app/repositories"
)

var (
	errDiskFull    = errors.New("disk full")
	errUnreachable = errors.New("replica unreachable")
)

// recordingItems remembers every line item id ever inserted.
type recordingItems struct {
	repositories.OrderItemRepository

	mu  sync.Mutex
	ids []primitive.ObjectID
}

func (r *recordingItems) InsertMany(ctx context.Context, items []models.OrderItem) error {
	if err := r.OrderItemRepository.InsertMany(ctx, items); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range items {
		r.ids = append(r.ids, it.ID)
	}
	return nil
}

func (r *recordingItems) inserted() []primitive.ObjectID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]primitive.ObjectID(nil), r.ids...)
}

// flakyItems refuses to delete one line item.
type flakyItems struct {
	repositories.OrderItemRepository
	failDelete primitive.ObjectID
}

func (r *flakyItems) Delete(ctx context.Context, id primitive.ObjectID) error {
	if id == r.failDelete {
		return errUnreachable
	}
	return r.OrderItemRepository.Delete(ctx, id)
}

// failingOrders rejects every insert.
type failingOrders struct {
	repositories.OrderRepository
}

func (r *failingOrders) Create(context.Context, *models.Order) error {
	return errDiskFull
}

// slowProducts delays lookups until delay passes or ctx ends.
type slowProducts struct {
	repositories.ProductRepository
	delay time.Duration
}

func (r *slowProducts) FindByID(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	select {
	case <-time.After(r.delay):
		return r.ProductRepository.FindByID(ctx, id)
	case <-ctx.Done():
		return models.Product{}, ctx.Err()
	}
}
