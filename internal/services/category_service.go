package services

import (
	"context"
	"fmt"

	"expensebot/internal/core"
	"expensebot/internal/storage"
)

// CategoryService loads a fresh catalog from storage on every call.
type CategoryService struct {
	reader storage.CategoryReader
}

func NewCategoryService(reader storage.CategoryReader) *CategoryService {
	return &CategoryService{reader: reader}
}

func (s *CategoryService) Catalog(ctx context.Context) (*core.Catalog, error) {
	records, err := s.reader.FetchCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	return core.NewCatalog(records), nil
}

// All returns the categories in catalog order.
func (s *CategoryService) All(ctx context.Context) ([]core.Category, error) {
	c, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return c.All(), nil
}

func (s *CategoryService) Resolve(ctx context.Context, text string) (core.Category, error) {
	c, err := s.Catalog(ctx)
	if err != nil {
		return core.Category{}, err
	}
	cat, err := c.Resolve(text)
	if err != nil {
		return core.Category{}, fmt.Errorf("resolve category %q: %w", text, err)
	}
	return cat, nil
}
