package response

import (
	"time"

	"lesson-booking/internal/data/entity"
)

type CreateOrderResponse struct {
	Code string `json:"code"`
}

type PayOrderResponse struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirectUrl"`
	Code        string `json:"code"`
}

type WebhookAckResponse struct {
	OK bool `json:"ok"`
}

type OrderResponse struct {
	ID              string                 `json:"id"`
	Code            string                 `json:"code"`
	StudentName     string                 `json:"studentName"`
	StudentPhone    string                 `json:"studentPhone"`
	Subject         string                 `json:"subject"`
	SyllabusID      *string                `json:"syllabusId,omitempty"`
	PreferredAt     *time.Time             `json:"preferredAt,omitempty"`
	Notes           *string                `json:"notes,omitempty"`
	Amount          int64                  `json:"amount"`
	Currency        string                 `json:"currency"`
	Status          entity.OrderStatus     `json:"status"`
	PaymentStatus   entity.PaymentStatus   `json:"paymentStatus"`
	PaymentProvider entity.PaymentProvider `json:"paymentProvider"`
	SnapToken       *string                `json:"snapToken,omitempty"`
	SnapRedirectURL *string                `json:"snapRedirectUrl,omitempty"`
	ExpireAt        time.Time              `json:"expireAt"`
	PaidAt          *time.Time             `json:"paidAt,omitempty"`
	CreatedAt       time.Time              `json:"createdAt"`
	UpdatedAt       time.Time              `json:"updatedAt"`
}

type OrderListResponse struct {
	Orders  []OrderResponse `json:"orders"`
	Page    int             `json:"page"`
	PerPage int             `json:"perPage"`
	Total   int64           `json:"total"`
}

// Helper converters
func OrderToResponse(order *entity.LessonOrder) OrderResponse {
	return OrderResponse{
		ID:              order.ID.String(),
		Code:            order.Code,
		StudentName:     order.StudentName,
		StudentPhone:    order.StudentPhone,
		Subject:         order.Subject,
		SyllabusID:      order.SyllabusID,
		PreferredAt:     order.PreferredAt,
		Notes:           order.Notes,
		Amount:          order.Amount,
		Currency:        order.Currency,
		Status:          order.Status,
		PaymentStatus:   order.PaymentStatus,
		PaymentProvider: order.PaymentProvider,
		SnapToken:       order.SnapToken,
		SnapRedirectURL: order.SnapRedirectURL,
		ExpireAt:        order.ExpireAt,
		PaidAt:          order.PaidAt,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}
