package repository

import (
	"context"
	"fmt"

	"lesson-booking/internal/data/entity"
	"lesson-booking/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type LessonProductRepository interface {
	FindByName(ctx context.Context, name string) (*entity.LessonProduct, error)
	FindAll(ctx context.Context) ([]*entity.LessonProduct, error)
}

type lessonProductRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewLessonProductRepository(db database.PgxIface, log *zap.Logger) LessonProductRepository {
	return &lessonProductRepository{
		db:  db,
		log: log.With(zap.String("repository", "lesson_product")),
	}
}

func (r *lessonProductRepository) FindByName(ctx context.Context, name string) (*entity.LessonProduct, error) {
	query := `
		SELECT id, name, price, description, created_at, updated_at
		FROM lesson_products
		WHERE name = $1
	`

	var product entity.LessonProduct
	err := r.db.QueryRow(ctx, query, name).Scan(
		&product.ID,
		&product.Name,
		&product.Price,
		&product.Description,
		&product.CreatedAt,
		&product.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find lesson product by name",
			zap.Error(err),
			zap.String("name", name),
		)
		return nil, fmt.Errorf("find lesson product by name %s: %w", name, err)
	}

	return &product, nil
}

func (r *lessonProductRepository) FindAll(ctx context.Context) ([]*entity.LessonProduct, error) {
	query := `
		SELECT id, name, price, description, created_at, updated_at
		FROM lesson_products
		ORDER BY name
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to find lesson products", zap.Error(err))
		return nil, fmt.Errorf("find lesson products: %w", err)
	}
	defer rows.Close()

	var products []*entity.LessonProduct
	for rows.Next() {
		var product entity.LessonProduct
		err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.Price,
			&product.Description,
			&product.CreatedAt,
			&product.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan lesson product row", zap.Error(err))
			return nil, fmt.Errorf("scan lesson product row: %w", err)
		}
		products = append(products, &product)
	}

	return products, nil
}
