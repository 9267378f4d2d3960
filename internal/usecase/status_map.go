package usecase

import (
	"strings"
	"time"

	"lesson-booking/internal/data/entity"
	"lesson-booking/pkg/payment"
)

// mapGatewayStatuses translates a gateway transaction/fraud status pair into
// the internal order and payment statuses:
//
//	settlement            -> PAID / PAID
//	capture + accept      -> PAID / PAID
//	expire                -> EXPIRED / EXPIRED
//	deny, cancel          -> CANCELLED / UNPAID
//	anything else         -> WAITING_PAYMENT / PENDING
func mapGatewayStatuses(transactionStatus, fraudStatus string) (entity.OrderStatus, entity.PaymentStatus) {
	s := strings.ToLower(transactionStatus)
	f := strings.ToLower(fraudStatus)

	switch {
	case s == "settlement":
		return entity.OrderStatusPaid, entity.PaymentStatusPaid
	case s == "capture" && f == "accept":
		return entity.OrderStatusPaid, entity.PaymentStatusPaid
	case s == "expire":
		return entity.OrderStatusExpired, entity.PaymentStatusExpired
	case s == "deny" || s == "cancel":
		return entity.OrderStatusCancelled, entity.PaymentStatusUnpaid
	default:
		// pending, authorize, challenge, unknown
		return entity.OrderStatusWaitingPayment, entity.PaymentStatusPending
	}
}

// applyGatewayStatus merges a gateway transaction status into the order and
// reports whether anything changed. Terminal orders (PAID, EXPIRED) are never
// mutated, which makes repeated webhook delivery a no-op. paidAt is set
// exactly once, preferring the gateway-reported settlement time.
func applyGatewayStatus(order *entity.LessonOrder, status *payment.TransactionStatus, now time.Time) bool {
	if order.IsFinalized() {
		return false
	}

	orderStatus, paymentStatus := mapGatewayStatuses(status.TransactionStatus, status.FraudStatus)

	changed := order.Status != orderStatus || order.PaymentStatus != paymentStatus
	order.Status = orderStatus
	order.PaymentStatus = paymentStatus

	if paymentStatus == entity.PaymentStatusPaid && order.PaidAt == nil {
		paidAt := now
		if status.SettlementTime != nil {
			paidAt = *status.SettlementTime
		}
		order.PaidAt = &paidAt
		changed = true
	}

	return changed
}
