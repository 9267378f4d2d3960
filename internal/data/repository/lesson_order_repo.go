package repository

import (
	"context"
	"fmt"

	"lesson-booking/internal/data/entity"
	"lesson-booking/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const lessonOrderColumns = `id, code, student_name, student_phone, subject, syllabus_id, preferred_at,
		       notes, amount, currency, status, payment_status, payment_provider,
		       snap_token, snap_redirect_url, expire_at, paid_at, created_at, updated_at`

type LessonOrderRepository interface {
	Create(ctx context.Context, order *entity.LessonOrder) error
	FindByCode(ctx context.Context, code string) (*entity.LessonOrder, error)
	FindAll(ctx context.Context, limit, offset int) ([]*entity.LessonOrder, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, order *entity.LessonOrder) error

	// Business queries
	UpdateStatus(ctx context.Context, code string, status entity.OrderStatus, paymentStatus entity.PaymentStatus) error
}

type lessonOrderRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewLessonOrderRepository(db database.PgxIface, log *zap.Logger) LessonOrderRepository {
	return &lessonOrderRepository{
		db:  db,
		log: log.With(zap.String("repository", "lesson_order")),
	}
}

func (r *lessonOrderRepository) Create(ctx context.Context, order *entity.LessonOrder) error {
	query := `
		INSERT INTO lesson_orders (id, code, student_name, student_phone, subject, syllabus_id, preferred_at,
		                           notes, amount, currency, status, payment_status, payment_provider,
		                           snap_token, snap_redirect_url, expire_at, paid_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	_, err := r.db.Exec(ctx, query,
		order.ID,
		order.Code,
		order.StudentName,
		order.StudentPhone,
		order.Subject,
		order.SyllabusID,
		order.PreferredAt,
		order.Notes,
		order.Amount,
		order.Currency,
		order.Status,
		order.PaymentStatus,
		order.PaymentProvider,
		order.SnapToken,
		order.SnapRedirectURL,
		order.ExpireAt,
		order.PaidAt,
		order.CreatedAt,
		order.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create lesson order",
			zap.Error(err),
			zap.String("code", order.Code),
			zap.String("subject", order.Subject),
		)
		return fmt.Errorf("create lesson order %s: %w", order.Code, err)
	}

	return nil
}

func (r *lessonOrderRepository) FindByCode(ctx context.Context, code string) (*entity.LessonOrder, error) {
	query := `
		SELECT ` + lessonOrderColumns + `
		FROM lesson_orders
		WHERE code = $1
	`

	var order entity.LessonOrder
	err := r.db.QueryRow(ctx, query, code).Scan(
		&order.ID,
		&order.Code,
		&order.StudentName,
		&order.StudentPhone,
		&order.Subject,
		&order.SyllabusID,
		&order.PreferredAt,
		&order.Notes,
		&order.Amount,
		&order.Currency,
		&order.Status,
		&order.PaymentStatus,
		&order.PaymentProvider,
		&order.SnapToken,
		&order.SnapRedirectURL,
		&order.ExpireAt,
		&order.PaidAt,
		&order.CreatedAt,
		&order.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find lesson order by code",
			zap.Error(err),
			zap.String("code", code),
		)
		return nil, fmt.Errorf("find lesson order by code %s: %w", code, err)
	}

	return &order, nil
}

func (r *lessonOrderRepository) FindAll(ctx context.Context, limit, offset int) ([]*entity.LessonOrder, error) {
	query := `
		SELECT ` + lessonOrderColumns + `
		FROM lesson_orders
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		r.log.Error("Failed to find lesson orders",
			zap.Error(err),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find lesson orders: %w", err)
	}
	defer rows.Close()

	var orders []*entity.LessonOrder
	for rows.Next() {
		var order entity.LessonOrder
		err := rows.Scan(
			&order.ID,
			&order.Code,
			&order.StudentName,
			&order.StudentPhone,
			&order.Subject,
			&order.SyllabusID,
			&order.PreferredAt,
			&order.Notes,
			&order.Amount,
			&order.Currency,
			&order.Status,
			&order.PaymentStatus,
			&order.PaymentProvider,
			&order.SnapToken,
			&order.SnapRedirectURL,
			&order.ExpireAt,
			&order.PaidAt,
			&order.CreatedAt,
			&order.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan lesson order row", zap.Error(err))
			return nil, fmt.Errorf("scan lesson order row: %w", err)
		}
		orders = append(orders, &order)
	}

	return orders, nil
}

func (r *lessonOrderRepository) Count(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM lesson_orders`

	var count int64
	err := r.db.QueryRow(ctx, query).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count lesson orders", zap.Error(err))
		return 0, fmt.Errorf("count lesson orders: %w", err)
	}

	return count, nil
}

func (r *lessonOrderRepository) Update(ctx context.Context, order *entity.LessonOrder) error {
	query := `
		UPDATE lesson_orders
		SET status = $2, payment_status = $3, payment_provider = $4,
		    snap_token = $5, snap_redirect_url = $6, paid_at = $7, updated_at = $8
		WHERE code = $1
	`

	result, err := r.db.Exec(ctx, query,
		order.Code,
		order.Status,
		order.PaymentStatus,
		order.PaymentProvider,
		order.SnapToken,
		order.SnapRedirectURL,
		order.PaidAt,
		order.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to update lesson order",
			zap.Error(err),
			zap.String("code", order.Code),
		)
		return fmt.Errorf("update lesson order %s: %w", order.Code, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("lesson order %s not found", order.Code)
	}

	return nil
}

func (r *lessonOrderRepository) UpdateStatus(ctx context.Context, code string, status entity.OrderStatus, paymentStatus entity.PaymentStatus) error {
	query := `UPDATE lesson_orders SET status = $2, payment_status = $3, updated_at = NOW() WHERE code = $1`

	result, err := r.db.Exec(ctx, query, code, status, paymentStatus)
	if err != nil {
		r.log.Error("Failed to update lesson order status",
			zap.Error(err),
			zap.String("code", code),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("update lesson order %s status to %s: %w", code, string(status), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("lesson order %s not found", code)
	}

	return nil
}
