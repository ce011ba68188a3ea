package service

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/NicoGleichmann/shopWebsite/internal/domain"
	"github.com/NicoGleichmann/shopWebsite/internal/repository"
)

// CatalogService exposes the read-only product catalog.
type CatalogService struct {
	products repository.ProductRepository
}

func NewCatalogService(products repository.ProductRepository) *CatalogService {
	return &CatalogService{products: products}
}

func (s *CatalogService) List(ctx context.Context, category string, page repository.PageRequest) (repository.PageResult[domain.Product], error) {
	return s.products.List(ctx, repository.ProductListQuery{Category: category, Page: page})
}

func (s *CatalogService) Get(ctx context.Context, rawID string) (*domain.Product, error) {
	id, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		return nil, ErrNotFound
	}
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load product: %w", err)
	}
	return p, nil
}
