package usecase

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"lesson-booking/internal/data/entity"
	"lesson-booking/internal/data/repository"
	"lesson-booking/internal/dto/request"
	"lesson-booking/pkg/payment"
	"lesson-booking/pkg/utils"

	"go.uber.org/zap"
)

const testServerKey = "SB-Mid-server-test-key"

var codePattern = regexp.MustCompile(`^LES-\d{8}-[A-Z0-9]{5}$`)

// ==================== FAKES ====================

type fakeLessonOrderRepo struct {
	orders      map[string]*entity.LessonOrder
	createCalls int
	updateCalls int
	updateErr   error
}

func newFakeLessonOrderRepo() *fakeLessonOrderRepo {
	return &fakeLessonOrderRepo{orders: make(map[string]*entity.LessonOrder)}
}

func cloneOrder(order *entity.LessonOrder) *entity.LessonOrder {
	c := *order
	return &c
}

func (f *fakeLessonOrderRepo) Create(_ context.Context, order *entity.LessonOrder) error {
	f.createCalls++
	if _, ok := f.orders[order.Code]; ok {
		return fmt.Errorf("create lesson order %s: duplicate code", order.Code)
	}
	f.orders[order.Code] = cloneOrder(order)
	return nil
}

func (f *fakeLessonOrderRepo) FindByCode(_ context.Context, code string) (*entity.LessonOrder, error) {
	order, ok := f.orders[code]
	if !ok {
		return nil, nil
	}
	return cloneOrder(order), nil
}

func (f *fakeLessonOrderRepo) FindAll(_ context.Context, limit, offset int) ([]*entity.LessonOrder, error) {
	var orders []*entity.LessonOrder
	for _, order := range f.orders {
		orders = append(orders, cloneOrder(order))
	}
	return orders, nil
}

func (f *fakeLessonOrderRepo) Count(_ context.Context) (int64, error) {
	return int64(len(f.orders)), nil
}

func (f *fakeLessonOrderRepo) Update(_ context.Context, order *entity.LessonOrder) error {
	f.updateCalls++
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.orders[order.Code]; !ok {
		return fmt.Errorf("lesson order %s not found", order.Code)
	}
	f.orders[order.Code] = cloneOrder(order)
	return nil
}

func (f *fakeLessonOrderRepo) UpdateStatus(_ context.Context, code string, status entity.OrderStatus, paymentStatus entity.PaymentStatus) error {
	order, ok := f.orders[code]
	if !ok {
		return fmt.Errorf("lesson order %s not found", code)
	}
	order.Status = status
	order.PaymentStatus = paymentStatus
	return nil
}

type fakeLessonProductRepo struct {
	prices map[string]int64
}

func (f *fakeLessonProductRepo) FindByName(_ context.Context, name string) (*entity.LessonProduct, error) {
	price, ok := f.prices[name]
	if !ok {
		return nil, nil
	}
	return &entity.LessonProduct{Name: name, Price: price}, nil
}

func (f *fakeLessonProductRepo) FindAll(_ context.Context) ([]*entity.LessonProduct, error) {
	var products []*entity.LessonProduct
	for name, price := range f.prices {
		products = append(products, &entity.LessonProduct{Name: name, Price: price})
	}
	return products, nil
}

type fakeGateway struct {
	createCalls   int
	createErr     error
	inquiryStatus *payment.TransactionStatus
	inquiryErr    error
}

func (f *fakeGateway) CreateSession(_ context.Context, input payment.CreateSessionInput) (*payment.Session, error) {
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &payment.Session{
		Token:       fmt.Sprintf("snap-token-%d", f.createCalls),
		RedirectURL: fmt.Sprintf("https://app.sandbox.midtrans.com/snap/v2/vtweb/snap-token-%d", f.createCalls),
	}, nil
}

func (f *fakeGateway) Inquiry(_ context.Context, orderCode string) (*payment.TransactionStatus, error) {
	if f.inquiryErr != nil {
		return nil, f.inquiryErr
	}
	return f.inquiryStatus, nil
}

func (f *fakeGateway) VerifySignature(orderID, statusCode, grossAmount, signature string) bool {
	return payment.VerifySignature(testServerKey, orderID, statusCode, grossAmount, signature)
}

// ==================== HELPERS ====================

func newTestService(t *testing.T) (OrderService, *fakeLessonOrderRepo, *fakeGateway) {
	t.Helper()

	orderRepo := newFakeLessonOrderRepo()
	repo := &repository.Repository{
		LessonOrder: orderRepo,
		LessonProduct: &fakeLessonProductRepo{prices: map[string]int64{
			"Gitar":     250000,
			"Piano":     250000,
			"Saxophone": 300000,
		}},
	}
	gateway := &fakeGateway{}
	config := &utils.Config{
		Order: utils.OrderConfig{
			SLAHours:     24,
			DefaultPrice: 250000,
			Currency:     "IDR",
		},
	}
	loc := time.FixedZone("WIB", 7*60*60)

	svc := NewOrderService(repo, gateway, config, loc, zap.NewNop())
	return svc, orderRepo, gateway
}

func createTestOrder(t *testing.T, svc OrderService) string {
	t.Helper()

	resp, err := svc.CreateOrder(context.Background(), &request.CreateOrderRequest{
		StudentName:  "Budi",
		StudentPhone: "08123456789",
		Subject:      "Gitar",
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return resp.Code
}

func signWebhook(orderID, statusCode, grossAmount string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + testServerKey))
	return hex.EncodeToString(sum[:])
}

func settlementWebhook(code string) *request.MidtransWebhookRequest {
	return &request.MidtransWebhookRequest{
		OrderID:           code,
		StatusCode:        "200",
		GrossAmount:       "250000.00",
		SignatureKey:      signWebhook(code, "200", "250000.00"),
		TransactionStatus: "settlement",
		SettlementTime:    "2025-03-01 10:30:00",
	}
}

// ==================== CREATE ====================

func TestCreateOrder(t *testing.T) {
	t.Run("valid input creates pending order", func(t *testing.T) {
		svc, repo, _ := newTestService(t)

		resp, err := svc.CreateOrder(context.Background(), &request.CreateOrderRequest{
			StudentName:  "  Budi ",
			StudentPhone: "0812 3456 789",
			Subject:      "Gitar",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !codePattern.MatchString(resp.Code) {
			t.Fatalf("code %q does not match LES-YYYYMMDD-XXXXX", resp.Code)
		}

		order := repo.orders[resp.Code]
		if order == nil {
			t.Fatal("order not persisted")
		}
		if order.Status != entity.OrderStatusPending {
			t.Errorf("status = %s, want PENDING", order.Status)
		}
		if order.PaymentStatus != entity.PaymentStatusUnpaid {
			t.Errorf("payment status = %s, want UNPAID", order.PaymentStatus)
		}
		if order.PaymentProvider != entity.PaymentProviderMidtrans {
			t.Errorf("provider = %s, want MIDTRANS", order.PaymentProvider)
		}
		if order.Amount != 250000 {
			t.Errorf("amount = %d, want 250000", order.Amount)
		}
		if order.Currency != "IDR" {
			t.Errorf("currency = %s, want IDR", order.Currency)
		}
		if order.StudentPhone != "08123456789" {
			t.Errorf("phone = %q, want whitespace stripped", order.StudentPhone)
		}
		if order.StudentName != "Budi" {
			t.Errorf("name = %q, want trimmed", order.StudentName)
		}
		if got, want := order.ExpireAt, order.CreatedAt.Add(24*time.Hour); !got.Equal(want) {
			t.Errorf("expireAt = %v, want creation time + 24h (%v)", got, want)
		}
		if order.PaidAt != nil {
			t.Errorf("paidAt = %v, want unset", order.PaidAt)
		}
	})

	t.Run("catalog price wins over default", func(t *testing.T) {
		svc, repo, _ := newTestService(t)

		resp, err := svc.CreateOrder(context.Background(), &request.CreateOrderRequest{
			StudentName:  "Sari",
			StudentPhone: "08123456789",
			Subject:      "Saxophone",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := repo.orders[resp.Code].Amount; got != 300000 {
			t.Errorf("amount = %d, want 300000", got)
		}
	})

	t.Run("unknown subject falls back to default price", func(t *testing.T) {
		svc, repo, _ := newTestService(t)

		resp, err := svc.CreateOrder(context.Background(), &request.CreateOrderRequest{
			StudentName:  "Sari",
			StudentPhone: "08123456789",
			Subject:      "Theremin",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := repo.orders[resp.Code].Amount; got != 250000 {
			t.Errorf("amount = %d, want default 250000", got)
		}
	})

	t.Run("invalid input has no side effect", func(t *testing.T) {
		svc, repo, _ := newTestService(t)

		cases := []request.CreateOrderRequest{
			{StudentName: "", StudentPhone: "08123456789", Subject: "Gitar"},
			{StudentName: "Budi", StudentPhone: "1234", Subject: "Gitar"},
			{StudentName: "Budi", StudentPhone: "0812-345-6789", Subject: "Gitar"},
			{StudentName: "Budi", StudentPhone: "08123456789", Subject: ""},
			// Normalization happens before validation: padding must not
			// carry a too-short value past the length rules.
			{StudentName: "   ", StudentPhone: "08123456789", Subject: "Gitar"},
			{StudentName: "Budi", StudentPhone: "  1234567  ", Subject: "Gitar"},
		}
		for _, req := range cases {
			if _, err := svc.CreateOrder(context.Background(), &req); err == nil {
				t.Errorf("expected validation error for %+v", req)
			} else if !strings.Contains(err.Error(), "validation failed") {
				t.Errorf("expected validation error, got %v", err)
			}
		}
		if repo.createCalls != 0 {
			t.Errorf("createCalls = %d, want 0", repo.createCalls)
		}
	})
}

// ==================== PAY ====================

func TestPayOrder(t *testing.T) {
	t.Run("unknown code", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, err := svc.PayOrder(context.Background(), "LES-20250101-XXXXX")
		if !errors.Is(err, ErrOrderNotFound) {
			t.Fatalf("expected ErrOrderNotFound, got %v", err)
		}
	})

	t.Run("finalized order is rejected", func(t *testing.T) {
		svc, repo, gateway := newTestService(t)
		code := createTestOrder(t, svc)
		repo.orders[code].Status = entity.OrderStatusPaid

		_, err := svc.PayOrder(context.Background(), code)
		if !errors.Is(err, ErrOrderFinalized) {
			t.Fatalf("expected ErrOrderFinalized, got %v", err)
		}
		if gateway.createCalls != 0 {
			t.Errorf("gateway called %d times for finalized order", gateway.createCalls)
		}
	})

	t.Run("pending session is reused", func(t *testing.T) {
		svc, repo, gateway := newTestService(t)
		code := createTestOrder(t, svc)

		first, err := svc.PayOrder(context.Background(), code)
		if err != nil {
			t.Fatalf("first pay: %v", err)
		}
		second, err := svc.PayOrder(context.Background(), code)
		if err != nil {
			t.Fatalf("second pay: %v", err)
		}

		if first.Token != second.Token {
			t.Errorf("tokens differ: %q vs %q", first.Token, second.Token)
		}
		if gateway.createCalls != 1 {
			t.Errorf("gateway createCalls = %d, want 1", gateway.createCalls)
		}

		order := repo.orders[code]
		if order.Status != entity.OrderStatusWaitingPayment {
			t.Errorf("status = %s, want WAITING_PAYMENT", order.Status)
		}
		if order.PaymentStatus != entity.PaymentStatusPending {
			t.Errorf("payment status = %s, want PENDING", order.PaymentStatus)
		}
		if order.SnapToken == nil || *order.SnapToken != first.Token {
			t.Errorf("stored token does not match returned token")
		}
	})

	t.Run("gateway failure leaves order untouched", func(t *testing.T) {
		svc, repo, gateway := newTestService(t)
		code := createTestOrder(t, svc)
		gateway.createErr = errors.New("midtrans 500")

		_, err := svc.PayOrder(context.Background(), code)
		if err == nil {
			t.Fatal("expected error")
		}

		order := repo.orders[code]
		if order.Status != entity.OrderStatusPending || order.SnapToken != nil {
			t.Errorf("order mutated after gateway failure: %+v", order)
		}
	})
}

// ==================== VERIFY ====================

func TestVerifyOrder(t *testing.T) {
	t.Run("unknown code", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, err := svc.VerifyOrder(context.Background(), "LES-20250101-XXXXX")
		if !errors.Is(err, ErrOrderNotFound) {
			t.Fatalf("expected ErrOrderNotFound, got %v", err)
		}
	})

	t.Run("no gateway transaction yet", func(t *testing.T) {
		svc, _, gateway := newTestService(t)
		code := createTestOrder(t, svc)
		gateway.inquiryErr = payment.ErrTransactionNotFound

		resp, err := svc.VerifyOrder(context.Background(), code)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Status != entity.OrderStatusPending {
			t.Errorf("status = %s, want PENDING", resp.Status)
		}
		if resp.PaymentStatus != entity.PaymentStatusUnpaid {
			t.Errorf("payment status = %s, want UNPAID", resp.PaymentStatus)
		}
	})

	t.Run("settlement marks order paid once", func(t *testing.T) {
		svc, repo, gateway := newTestService(t)
		code := createTestOrder(t, svc)
		settledAt := time.Date(2025, 3, 1, 10, 30, 0, 0, time.FixedZone("WIB", 7*60*60))
		gateway.inquiryStatus = &payment.TransactionStatus{
			TransactionStatus: "settlement",
			SettlementTime:    &settledAt,
		}

		resp, err := svc.VerifyOrder(context.Background(), code)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Status != entity.OrderStatusPaid || resp.PaymentStatus != entity.PaymentStatusPaid {
			t.Fatalf("got %s/%s, want PAID/PAID", resp.Status, resp.PaymentStatus)
		}
		if resp.PaidAt == nil || !resp.PaidAt.Equal(settledAt) {
			t.Fatalf("paidAt = %v, want settlement time %v", resp.PaidAt, settledAt)
		}

		// Repeated verify must not move paidAt.
		resp2, err := svc.VerifyOrder(context.Background(), code)
		if err != nil {
			t.Fatalf("second verify: %v", err)
		}
		if !resp2.PaidAt.Equal(settledAt) {
			t.Errorf("paidAt moved on repeated verify: %v", resp2.PaidAt)
		}
		if got := repo.orders[code].PaidAt; got == nil || !got.Equal(settledAt) {
			t.Errorf("stored paidAt = %v, want %v", got, settledAt)
		}
	})

	t.Run("capture accept is paid, capture challenge stays pending", func(t *testing.T) {
		svc, _, gateway := newTestService(t)

		code := createTestOrder(t, svc)
		gateway.inquiryStatus = &payment.TransactionStatus{TransactionStatus: "Capture", FraudStatus: "ACCEPT"}
		resp, err := svc.VerifyOrder(context.Background(), code)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Status != entity.OrderStatusPaid {
			t.Errorf("capture/accept status = %s, want PAID", resp.Status)
		}

		code2 := createTestOrder(t, svc)
		gateway.inquiryStatus = &payment.TransactionStatus{TransactionStatus: "capture", FraudStatus: "challenge"}
		resp, err = svc.VerifyOrder(context.Background(), code2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Status != entity.OrderStatusWaitingPayment || resp.PaymentStatus != entity.PaymentStatusPending {
			t.Errorf("capture/challenge = %s/%s, want WAITING_PAYMENT/PENDING", resp.Status, resp.PaymentStatus)
		}
	})

	t.Run("local expiry wins over stale gateway state", func(t *testing.T) {
		svc, repo, gateway := newTestService(t)
		code := createTestOrder(t, svc)
		repo.orders[code].ExpireAt = time.Now().Add(-time.Hour)
		gateway.inquiryStatus = &payment.TransactionStatus{TransactionStatus: "pending"}

		resp, err := svc.VerifyOrder(context.Background(), code)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Status != entity.OrderStatusExpired || resp.PaymentStatus != entity.PaymentStatusExpired {
			t.Fatalf("got %s/%s, want EXPIRED/EXPIRED", resp.Status, resp.PaymentStatus)
		}
		if got := repo.orders[code]; got.Status != entity.OrderStatusExpired {
			t.Errorf("stored status = %s, want EXPIRED", got.Status)
		}
	})

	t.Run("upstream failure is propagated", func(t *testing.T) {
		svc, _, gateway := newTestService(t)
		code := createTestOrder(t, svc)
		gateway.inquiryErr = errors.New("midtrans unavailable")

		if _, err := svc.VerifyOrder(context.Background(), code); err == nil {
			t.Fatal("expected error")
		}
	})
}

// ==================== WEBHOOK ====================

func TestHandleWebhook(t *testing.T) {
	t.Run("unknown provider", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		err := svc.HandleWebhook(context.Background(), "paypal", settlementWebhook("LES-20250101-AAAAA"))
		if !errors.Is(err, ErrUnknownProvider) {
			t.Fatalf("expected ErrUnknownProvider, got %v", err)
		}
	})

	t.Run("bad signature leaves order unchanged", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		code := createTestOrder(t, svc)
		before := *repo.orders[code]

		req := settlementWebhook(code)
		req.SignatureKey = "deadbeef"

		err := svc.HandleWebhook(context.Background(), "midtrans", req)
		if !errors.Is(err, ErrInvalidSignature) {
			t.Fatalf("expected ErrInvalidSignature, got %v", err)
		}

		after := *repo.orders[code]
		if before.Status != after.Status || before.PaymentStatus != after.PaymentStatus || after.PaidAt != nil {
			t.Errorf("order mutated by rejected webhook: before=%+v after=%+v", before, after)
		}
	})

	t.Run("unknown order", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		err := svc.HandleWebhook(context.Background(), "midtrans", settlementWebhook("LES-20250101-AAAAA"))
		if !errors.Is(err, ErrOrderNotFound) {
			t.Fatalf("expected ErrOrderNotFound, got %v", err)
		}
	})

	t.Run("settlement is idempotent under repeated delivery", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		code := createTestOrder(t, svc)
		req := settlementWebhook(code)

		if err := svc.HandleWebhook(context.Background(), "midtrans", req); err != nil {
			t.Fatalf("first delivery: %v", err)
		}

		order := repo.orders[code]
		if order.Status != entity.OrderStatusPaid || order.PaymentStatus != entity.PaymentStatusPaid {
			t.Fatalf("got %s/%s, want PAID/PAID", order.Status, order.PaymentStatus)
		}
		if order.PaidAt == nil {
			t.Fatal("paidAt not set")
		}
		paidAt := *order.PaidAt
		updates := repo.updateCalls

		// Midtrans redelivers notifications; the second one must be a no-op.
		if err := svc.HandleWebhook(context.Background(), "midtrans", req); err != nil {
			t.Fatalf("second delivery: %v", err)
		}
		order = repo.orders[code]
		if !order.PaidAt.Equal(paidAt) {
			t.Errorf("paidAt moved on redelivery: %v vs %v", order.PaidAt, paidAt)
		}
		if repo.updateCalls != updates {
			t.Errorf("redelivery wrote %d extra updates", repo.updateCalls-updates)
		}
	})

	t.Run("deny cancels the order but keeps it payable", func(t *testing.T) {
		svc, repo, gateway := newTestService(t)
		code := createTestOrder(t, svc)
		if _, err := svc.PayOrder(context.Background(), code); err != nil {
			t.Fatalf("pay: %v", err)
		}

		req := settlementWebhook(code)
		req.TransactionStatus = "deny"

		if err := svc.HandleWebhook(context.Background(), "midtrans", req); err != nil {
			t.Fatalf("webhook: %v", err)
		}

		order := repo.orders[code]
		if order.Status != entity.OrderStatusCancelled || order.PaymentStatus != entity.PaymentStatusUnpaid {
			t.Fatalf("got %s/%s, want CANCELLED/UNPAID", order.Status, order.PaymentStatus)
		}

		// A cancelled order may be paid again with a fresh session.
		resp, err := svc.PayOrder(context.Background(), code)
		if err != nil {
			t.Fatalf("re-pay after deny: %v", err)
		}
		if gateway.createCalls != 2 {
			t.Errorf("gateway createCalls = %d, want 2 (new session after deny)", gateway.createCalls)
		}
		if resp.Token == "" {
			t.Error("missing token on re-pay")
		}
	})
}

// ==================== MARK CASH ====================

func TestMarkCash(t *testing.T) {
	t.Run("unknown code", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, err := svc.MarkCash(context.Background(), "LES-20250101-XXXXX")
		if !errors.Is(err, ErrOrderNotFound) {
			t.Fatalf("expected ErrOrderNotFound, got %v", err)
		}
	})

	t.Run("settles any non-terminal order", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		code := createTestOrder(t, svc)

		resp, err := svc.MarkCash(context.Background(), code)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.PaymentProvider != entity.PaymentProviderCash {
			t.Errorf("provider = %s, want CASH", resp.PaymentProvider)
		}
		if resp.Status != entity.OrderStatusPaid || resp.PaymentStatus != entity.PaymentStatusPaid {
			t.Errorf("got %s/%s, want PAID/PAID", resp.Status, resp.PaymentStatus)
		}
		if resp.PaidAt == nil {
			t.Error("paidAt not set")
		}
		if repo.orders[code].PaymentProvider != entity.PaymentProviderCash {
			t.Error("provider not persisted")
		}
	})
}
