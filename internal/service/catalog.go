package service

import (
	"context"
	"fmt"

	"storefront-service/internal/models"
	"storefront-service/internal/repository"
)

type ProductQuery struct {
	CategoryID *uint
	Search     string
}

type CatalogService interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListProducts(ctx context.Context, q ProductQuery) ([]models.Product, error)
	GetProduct(ctx context.Context, id uint) (*models.Product, error)
}

type catalogService struct {
	repo repository.CatalogRepo
}

func NewCatalogService(repo repository.CatalogRepo) CatalogService {
	return &catalogService{repo: repo}
}

func (s *catalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	list, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return list, nil
}

func (s *catalogService) ListProducts(ctx context.Context, q ProductQuery) ([]models.Product, error) {
	list, err := s.repo.ListProducts(ctx, repository.ProductFilter{
		CategoryID: q.CategoryID,
		Search:     q.Search,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return list, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	return p, nil
}
