package usecase

import (
	"testing"
	"time"

	"lesson-booking/internal/data/entity"
	"lesson-booking/pkg/payment"
)

func TestMapGatewayStatuses(t *testing.T) {
	cases := []struct {
		name              string
		transactionStatus string
		fraudStatus       string
		wantStatus        entity.OrderStatus
		wantPayment       entity.PaymentStatus
	}{
		{"settlement", "settlement", "", entity.OrderStatusPaid, entity.PaymentStatusPaid},
		{"settlement uppercase", "SETTLEMENT", "", entity.OrderStatusPaid, entity.PaymentStatusPaid},
		{"capture accepted", "capture", "accept", entity.OrderStatusPaid, entity.PaymentStatusPaid},
		{"capture mixed case", "Capture", "Accept", entity.OrderStatusPaid, entity.PaymentStatusPaid},
		{"capture challenged", "capture", "challenge", entity.OrderStatusWaitingPayment, entity.PaymentStatusPending},
		{"expire", "expire", "", entity.OrderStatusExpired, entity.PaymentStatusExpired},
		{"deny", "deny", "", entity.OrderStatusCancelled, entity.PaymentStatusUnpaid},
		{"cancel", "cancel", "", entity.OrderStatusCancelled, entity.PaymentStatusUnpaid},
		{"pending", "pending", "", entity.OrderStatusWaitingPayment, entity.PaymentStatusPending},
		{"authorize", "authorize", "", entity.OrderStatusWaitingPayment, entity.PaymentStatusPending},
		{"unknown value", "refund", "", entity.OrderStatusWaitingPayment, entity.PaymentStatusPending},
		{"empty", "", "", entity.OrderStatusWaitingPayment, entity.PaymentStatusPending},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gotStatus, gotPayment := mapGatewayStatuses(tc.transactionStatus, tc.fraudStatus)
			if gotStatus != tc.wantStatus || gotPayment != tc.wantPayment {
				t.Errorf("mapGatewayStatuses(%q, %q) = %s/%s, want %s/%s",
					tc.transactionStatus, tc.fraudStatus, gotStatus, gotPayment, tc.wantStatus, tc.wantPayment)
			}
		})
	}
}

func TestApplyGatewayStatus(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("terminal order is never mutated", func(t *testing.T) {
		paidAt := now.Add(-time.Hour)
		order := &entity.LessonOrder{
			Status:        entity.OrderStatusPaid,
			PaymentStatus: entity.PaymentStatusPaid,
			PaidAt:        &paidAt,
		}

		changed := applyGatewayStatus(order, &payment.TransactionStatus{TransactionStatus: "expire"}, now)
		if changed {
			t.Error("terminal order reported as changed")
		}
		if order.Status != entity.OrderStatusPaid || !order.PaidAt.Equal(paidAt) {
			t.Errorf("terminal order mutated: %+v", order)
		}
	})

	t.Run("settlement time becomes paidAt", func(t *testing.T) {
		settledAt := now.Add(-10 * time.Minute)
		order := &entity.LessonOrder{
			Status:        entity.OrderStatusWaitingPayment,
			PaymentStatus: entity.PaymentStatusPending,
		}

		changed := applyGatewayStatus(order, &payment.TransactionStatus{
			TransactionStatus: "settlement",
			SettlementTime:    &settledAt,
		}, now)
		if !changed {
			t.Fatal("expected change")
		}
		if order.PaidAt == nil || !order.PaidAt.Equal(settledAt) {
			t.Errorf("paidAt = %v, want %v", order.PaidAt, settledAt)
		}
	})

	t.Run("missing settlement time falls back to now", func(t *testing.T) {
		order := &entity.LessonOrder{
			Status:        entity.OrderStatusWaitingPayment,
			PaymentStatus: entity.PaymentStatusPending,
		}

		if !applyGatewayStatus(order, &payment.TransactionStatus{TransactionStatus: "settlement"}, now) {
			t.Fatal("expected change")
		}
		if order.PaidAt == nil || !order.PaidAt.Equal(now) {
			t.Errorf("paidAt = %v, want %v", order.PaidAt, now)
		}
	})

	t.Run("unchanged pending state reports no change", func(t *testing.T) {
		order := &entity.LessonOrder{
			Status:        entity.OrderStatusWaitingPayment,
			PaymentStatus: entity.PaymentStatusPending,
		}

		if applyGatewayStatus(order, &payment.TransactionStatus{TransactionStatus: "pending"}, now) {
			t.Error("pending over pending reported as changed")
		}
	})
}
