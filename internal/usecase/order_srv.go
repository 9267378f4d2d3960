package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"lesson-booking/internal/data/entity"
	"lesson-booking/internal/data/repository"
	"lesson-booking/internal/dto/request"
	"lesson-booking/internal/dto/response"
	"lesson-booking/pkg/payment"
	"lesson-booking/pkg/utils"

	"go.uber.org/zap"
)

var (
	ErrOrderNotFound    = errors.New("lesson order not found")
	ErrOrderFinalized   = errors.New("lesson order already finalized")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrUnknownProvider  = errors.New("unknown payment provider")
)

// providerMidtrans is the webhook path segment for the configured gateway.
const providerMidtrans = "midtrans"

type OrderService interface {
	CreateOrder(ctx context.Context, req *request.CreateOrderRequest) (*response.CreateOrderResponse, error)
	PayOrder(ctx context.Context, code string) (*response.PayOrderResponse, error)
	VerifyOrder(ctx context.Context, code string) (*response.OrderResponse, error)
	HandleWebhook(ctx context.Context, provider string, req *request.MidtransWebhookRequest) error
	MarkCash(ctx context.Context, code string) (*response.OrderResponse, error)

	GetOrder(ctx context.Context, code string) (*response.OrderResponse, error)
	ListOrders(ctx context.Context, req *request.PaginatedRequest) (*response.OrderListResponse, error)
}

type orderService struct {
	repo    *repository.Repository
	gateway payment.Gateway
	config  *utils.Config
	now     func() time.Time
	loc     *time.Location
	log     *zap.Logger
}

func NewOrderService(repo *repository.Repository, gateway payment.Gateway, config *utils.Config, loc *time.Location, log *zap.Logger) OrderService {
	return &orderService{
		repo:    repo,
		gateway: gateway,
		config:  config,
		now:     func() time.Time { return time.Now().In(loc) },
		loc:     loc,
		log:     log.With(zap.String("service", "order")),
	}
}

func (s *orderService) CreateOrder(ctx context.Context, req *request.CreateOrderRequest) (*response.CreateOrderResponse, error) {
	// Normalize before validating so length rules apply to what gets stored.
	// A padded name or phone must not slip past the minimums.
	req.StudentName = strings.TrimSpace(req.StudentName)
	req.StudentPhone = stripWhitespace(req.StudentPhone)

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create order validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	var preferredAt *time.Time
	if req.PreferredAt != nil && *req.PreferredAt != "" {
		t, err := time.Parse(time.RFC3339, *req.PreferredAt)
		if err != nil {
			return nil, fmt.Errorf("validation failed: preferredAt: invalid timestamp %s", *req.PreferredAt)
		}
		preferredAt = &t
	}

	// Resolve price from the catalog, falling back to the configured default
	// for subjects the catalog does not know.
	amount := s.config.Order.DefaultPrice
	product, err := s.repo.LessonProduct.FindByName(ctx, req.Subject)
	if err != nil {
		s.log.Error("Failed to resolve subject price", zap.Error(err), zap.String("subject", req.Subject))
		return nil, fmt.Errorf("resolve price for subject %s: %w", req.Subject, err)
	}
	if product != nil {
		amount = product.Price
	} else {
		s.log.Warn("Unknown subject, falling back to default price",
			zap.String("subject", req.Subject),
			zap.Int64("default_price", amount),
		)
	}

	now := s.now()
	order := &entity.LessonOrder{
		Base: entity.Base{
			ID:        utils.GenerateUUID(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Code:            utils.GenerateOrderCode(now),
		StudentName:     req.StudentName,
		StudentPhone:    req.StudentPhone,
		Subject:         req.Subject,
		SyllabusID:      req.SyllabusID,
		PreferredAt:     preferredAt,
		Notes:           req.Notes,
		Amount:          amount,
		Currency:        s.config.Order.Currency,
		Status:          entity.OrderStatusPending,
		PaymentStatus:   entity.PaymentStatusUnpaid,
		PaymentProvider: entity.PaymentProviderMidtrans,
		ExpireAt:        now.Add(time.Duration(s.config.Order.SLAHours) * time.Hour),
	}

	if err := s.repo.LessonOrder.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.log.Info("Lesson order created",
		zap.String("code", order.Code),
		zap.String("subject", order.Subject),
		zap.Int64("amount", order.Amount),
		zap.Time("expire_at", order.ExpireAt),
	)

	return &response.CreateOrderResponse{Code: order.Code}, nil
}

func (s *orderService) PayOrder(ctx context.Context, code string) (*response.PayOrderResponse, error) {
	order, err := s.repo.LessonOrder.FindByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("load order %s: %w", code, err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	if order.IsFinalized() {
		return nil, ErrOrderFinalized
	}

	// Reuse the stored session while it is still pending. Retried pay
	// requests must not open duplicate gateway sessions.
	if order.SnapToken != nil && *order.SnapToken != "" && order.PaymentStatus == entity.PaymentStatusPending {
		resp := &response.PayOrderResponse{
			Token: *order.SnapToken,
			Code:  order.Code,
		}
		if order.SnapRedirectURL != nil {
			resp.RedirectURL = *order.SnapRedirectURL
		}
		return resp, nil
	}

	session, err := s.gateway.CreateSession(ctx, payment.CreateSessionInput{
		OrderCode:     order.Code,
		Amount:        order.Amount,
		Description:   "Pembayaran Les Musik",
		CustomerName:  order.StudentName,
		CustomerPhone: order.StudentPhone,
	})
	if err != nil {
		s.log.Error("Failed to create payment session",
			zap.Error(err),
			zap.String("code", order.Code),
		)
		return nil, fmt.Errorf("create payment session for %s: %w", order.Code, err)
	}

	order.SnapToken = &session.Token
	order.SnapRedirectURL = &session.RedirectURL
	order.Status = entity.OrderStatusWaitingPayment
	order.PaymentStatus = entity.PaymentStatusPending
	order.UpdatedAt = s.now()

	if err := s.repo.LessonOrder.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("store payment session for %s: %w", order.Code, err)
	}

	s.log.Info("Payment session created",
		zap.String("code", order.Code),
		zap.Int64("amount", order.Amount),
	)

	return &response.PayOrderResponse{
		Token:       session.Token,
		RedirectURL: session.RedirectURL,
		Code:        order.Code,
	}, nil
}

func (s *orderService) VerifyOrder(ctx context.Context, code string) (*response.OrderResponse, error) {
	order, err := s.repo.LessonOrder.FindByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("load order %s: %w", code, err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	now := s.now()

	// Lazy expiry: the deadline is evaluated here, not by a background job.
	// Local expiry wins over stale gateway state.
	if now.After(order.ExpireAt) && order.Status != entity.OrderStatusPaid {
		order.Status = entity.OrderStatusExpired
		order.PaymentStatus = entity.PaymentStatusExpired
		if err := s.repo.LessonOrder.UpdateStatus(ctx, order.Code, order.Status, order.PaymentStatus); err != nil {
			return nil, fmt.Errorf("expire order %s: %w", order.Code, err)
		}
		s.log.Info("Lesson order expired", zap.String("code", order.Code), zap.Time("expire_at", order.ExpireAt))
	}

	status, err := s.gateway.Inquiry(ctx, order.Code)
	if err != nil {
		if errors.Is(err, payment.ErrTransactionNotFound) {
			// No checkout attempt yet; nothing to reconcile.
			resp := response.OrderToResponse(order)
			return &resp, nil
		}
		return nil, fmt.Errorf("inquiry order %s: %w", order.Code, err)
	}

	if applyGatewayStatus(order, status, now) {
		order.UpdatedAt = now
		if err := s.repo.LessonOrder.Update(ctx, order); err != nil {
			return nil, fmt.Errorf("reconcile order %s: %w", order.Code, err)
		}
		s.log.Info("Lesson order reconciled",
			zap.String("code", order.Code),
			zap.String("transaction_status", status.TransactionStatus),
			zap.String("status", string(order.Status)),
			zap.String("payment_status", string(order.PaymentStatus)),
		)
	}

	resp := response.OrderToResponse(order)
	return &resp, nil
}

func (s *orderService) HandleWebhook(ctx context.Context, provider string, req *request.MidtransWebhookRequest) error {
	if provider != providerMidtrans {
		return ErrUnknownProvider
	}

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Webhook validation failed", zap.Any("errors", errs))
		return fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	if !s.gateway.VerifySignature(req.OrderID, req.StatusCode, req.GrossAmount, req.SignatureKey) {
		s.log.Warn("Webhook signature mismatch", zap.String("order_id", req.OrderID))
		return ErrInvalidSignature
	}

	order, err := s.repo.LessonOrder.FindByCode(ctx, req.OrderID)
	if err != nil {
		return fmt.Errorf("load order %s: %w", req.OrderID, err)
	}
	if order == nil {
		return ErrOrderNotFound
	}

	status := &payment.TransactionStatus{
		TransactionStatus: req.TransactionStatus,
		FraudStatus:       req.FraudStatus,
		StatusCode:        req.StatusCode,
		GrossAmount:       req.GrossAmount,
	}
	if req.SettlementTime != "" {
		if t, err := time.ParseInLocation("2006-01-02 15:04:05", req.SettlementTime, s.loc); err == nil {
			status.SettlementTime = &t
		}
	}

	now := s.now()
	if applyGatewayStatus(order, status, now) {
		order.UpdatedAt = now
		if err := s.repo.LessonOrder.Update(ctx, order); err != nil {
			return fmt.Errorf("apply webhook for %s: %w", order.Code, err)
		}
	}

	s.log.Info("Webhook applied",
		zap.String("code", order.Code),
		zap.String("transaction_status", req.TransactionStatus),
		zap.String("fraud_status", req.FraudStatus),
		zap.String("status", string(order.Status)),
		zap.String("payment_status", string(order.PaymentStatus)),
	)

	return nil
}

func (s *orderService) MarkCash(ctx context.Context, code string) (*response.OrderResponse, error) {
	order, err := s.repo.LessonOrder.FindByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("load order %s: %w", code, err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	now := s.now()
	order.PaymentProvider = entity.PaymentProviderCash
	order.Status = entity.OrderStatusPaid
	order.PaymentStatus = entity.PaymentStatusPaid
	if order.PaidAt == nil {
		order.PaidAt = &now
	}
	order.UpdatedAt = now

	if err := s.repo.LessonOrder.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("mark order %s as cash: %w", code, err)
	}

	s.log.Info("Lesson order settled in cash", zap.String("code", order.Code))

	resp := response.OrderToResponse(order)
	return &resp, nil
}

func (s *orderService) GetOrder(ctx context.Context, code string) (*response.OrderResponse, error) {
	order, err := s.repo.LessonOrder.FindByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("load order %s: %w", code, err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	resp := response.OrderToResponse(order)
	return &resp, nil
}

func (s *orderService) ListOrders(ctx context.Context, req *request.PaginatedRequest) (*response.OrderListResponse, error) {
	orders, err := s.repo.LessonOrder.FindAll(ctx, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	total, err := s.repo.LessonOrder.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}

	orderResponses := make([]response.OrderResponse, len(orders))
	for i, order := range orders {
		orderResponses[i] = response.OrderToResponse(order)
	}

	return &response.OrderListResponse{
		Orders:  orderResponses,
		Page:    req.Page,
		PerPage: req.Limit(),
		Total:   total,
	}, nil
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
