package repository

import (
	"lesson-booking/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	LessonOrder   LessonOrderRepository
	LessonProduct LessonProductRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		LessonOrder:   NewLessonOrderRepository(db, log),
		LessonProduct: NewLessonProductRepository(db, log),
	}
}
