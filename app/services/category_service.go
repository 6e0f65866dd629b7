package services

import (
	"context"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/app/repositories"
	"github.com/shashiranjanraj/shopfront/pkg/logger"
)

type CategoryInput struct {
	Name  string `json:"name"  validate:"required,max=100"`
	Icon  string `json:"icon"  validate:"max=100"`
	Color string `json:"color" validate:"nullable,hexcolor"`
}

type CategoryService struct {
	store *repositories.Store
}

func NewCategoryService(store *repositories.Store) *CategoryService {
	return &CategoryService{store: store}
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	cats, err := s.store.Categories.All(ctx)
	if err != nil {
		return nil, persistence("list categories", err)
	}
	return cats, nil
}

func (s *CategoryService) Get(ctx context.Context, id string) (models.Category, error) {
	oid, err := parseID("category", id)
	if err != nil {
		return models.Category{}, err
	}
	c, err := s.store.Categories.FindByID(ctx, oid)
	if err != nil {
		return models.Category{}, lookup(err, "Category")
	}
	return c, nil
}

func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (models.Category, error) {
	if err := check(in); err != nil {
		return models.Category{}, err
	}
	c := models.Category{Name: in.Name, Icon: in.Icon, Color: in.Color}
	if err := s.store.Categories.Create(ctx, &c); err != nil {
		return models.Category{}, persistence("create category", err)
	}
	logger.WithCtx(ctx).Info("category created", "category_id", c.ID.Hex())
	return c, nil
}

// Update replaces every field of the category.
func (s *CategoryService) Update(ctx context.Context, id string, in CategoryInput) (models.Category, error) {
	oid, err := parseID("category", id)
	if err != nil {
		return models.Category{}, err
	}
	if err := check(in); err != nil {
		return models.Category{}, err
	}
	c := models.Category{ID: oid, Name: in.Name, Icon: in.Icon, Color: in.Color}
	if err := s.store.Categories.Update(ctx, &c); err != nil {
		return models.Category{}, lookup(err, "Category")
	}
	return c, nil
}

// Delete removes the category. Products that reference it keep the
// dangling id and render with a null category.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	oid, err := parseID("category", id)
	if err != nil {
		return err
	}
	if err := s.store.Categories.Delete(ctx, oid); err != nil {
		return lookup(err, "Category")
	}
	logger.WithCtx(ctx).Info("category deleted", "category_id", oid.Hex())
	return nil
}
