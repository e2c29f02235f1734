package service

import (
	"context"
	"sort"
	"strings"

	"storefront/pkg/storefront/domain/model"
)

type CatalogService interface {
	FindMerchant(ctx context.Context, slug string) (*model.Merchant, error)
	ListAvailableProducts(ctx context.Context, slug string) (*model.Merchant, []model.Product, error)
}

func NewCatalogService(merchants model.MerchantRepository, products model.ProductRepository) CatalogService {
	return &catalogService{merchants: merchants, products: products}
}

type catalogService struct {
	merchants model.MerchantRepository
	products  model.ProductRepository
}

func (s *catalogService) FindMerchant(ctx context.Context, slug string) (*model.Merchant, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, model.ErrMerchantNotFound
	}

	merchant, err := s.merchants.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !merchant.Active {
		return nil, model.ErrMerchantNotFound
	}
	return merchant, nil
}

func (s *catalogService) ListAvailableProducts(ctx context.Context, slug string) (*model.Merchant, []model.Product, error) {
	merchant, err := s.FindMerchant(ctx, slug)
	if err != nil {
		return nil, nil, err
	}

	products, err := s.products.ListAvailable(ctx, merchant.ID)
	if err != nil {
		return nil, nil, err
	}

	available := make([]model.Product, 0, len(products))
	for _, p := range products {
		if p.MerchantID == merchant.ID && p.Available() {
			available = append(available, p)
		}
	}
	sort.SliceStable(available, func(i, j int) bool {
		if available[i].Name != available[j].Name {
			return available[i].Name < available[j].Name
		}
		return available[i].ID.String() < available[j].ID.String()
	})

	return merchant, available, nil
}
