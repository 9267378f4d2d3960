package usecase

import (
	"context"
	"fmt"

	"lesson-booking/internal/data/repository"
	"lesson-booking/internal/dto/response"

	"go.uber.org/zap"
)

type ProductService interface {
	GetProducts(ctx context.Context) ([]response.ProductResponse, error)
}

type productService struct {
	repo repository.LessonProductRepository
	log  *zap.Logger
}

func NewProductService(repo repository.LessonProductRepository, log *zap.Logger) ProductService {
	return &productService{
		repo: repo,
		log:  log.With(zap.String("service", "product")),
	}
}

func (s *productService) GetProducts(ctx context.Context) ([]response.ProductResponse, error) {
	products, err := s.repo.FindAll(ctx)
	if err != nil {
		s.log.Error("Failed to get lesson products", zap.Error(err))
		return nil, fmt.Errorf("get lesson products: %w", err)
	}

	productResponses := make([]response.ProductResponse, len(products))
	for i, product := range products {
		productResponses[i] = response.ProductToResponse(product)
	}

	return productResponses, nil
}
