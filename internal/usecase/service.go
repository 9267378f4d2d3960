package usecase

import (
	"time"

	"lesson-booking/internal/data/repository"
	"lesson-booking/pkg/payment"
	"lesson-booking/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Order   OrderService
	Product ProductService
}

func NewService(repo *repository.Repository, gateway payment.Gateway, config *utils.Config, loc *time.Location, log *zap.Logger) *Service {
	return &Service{
		Order:   NewOrderService(repo, gateway, config, loc, log),
		Product: NewProductService(repo.LessonProduct, log),
	}
}
