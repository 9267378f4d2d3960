package entity

import (
	"time"
)

type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "PENDING"
	OrderStatusWaitingPayment OrderStatus = "WAITING_PAYMENT"
	OrderStatusPaid           OrderStatus = "PAID"
	OrderStatusExpired        OrderStatus = "EXPIRED"
	OrderStatusCancelled      OrderStatus = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "UNPAID"
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusExpired PaymentStatus = "EXPIRED"
)

type PaymentProvider string

const (
	PaymentProviderMidtrans PaymentProvider = "MIDTRANS"
	PaymentProviderCash     PaymentProvider = "CASH"
)

type LessonOrder struct {
	Base
	Code            string          `db:"code"`
	StudentName     string          `db:"student_name"`
	StudentPhone    string          `db:"student_phone"`
	Subject         string          `db:"subject"`
	SyllabusID      *string         `db:"syllabus_id"`
	PreferredAt     *time.Time      `db:"preferred_at"`
	Notes           *string         `db:"notes"`
	Amount          int64           `db:"amount"`
	Currency        string          `db:"currency"`
	Status          OrderStatus     `db:"status"`
	PaymentStatus   PaymentStatus   `db:"payment_status"`
	PaymentProvider PaymentProvider `db:"payment_provider"`
	SnapToken       *string         `db:"snap_token"`
	SnapRedirectURL *string         `db:"snap_redirect_url"`
	ExpireAt        time.Time       `db:"expire_at"`
	PaidAt          *time.Time      `db:"paid_at"`
}

// IsFinalized reports whether the order reached a terminal state.
// CANCELLED is not terminal: a denied/cancelled transaction may be retried.
func (o *LessonOrder) IsFinalized() bool {
	return o.Status == OrderStatusPaid || o.Status == OrderStatusExpired
}
