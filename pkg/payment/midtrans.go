package payment

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"lesson-booking/pkg/utils"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
	"go.uber.org/zap"
)

// ErrTransactionNotFound is returned by Inquiry when the gateway has no
// transaction for the order yet (no checkout attempt happened).
var ErrTransactionNotFound = errors.New("transaction not found at gateway")

// settlementTimeLayout is the timestamp format Midtrans uses in
// settlement_time fields (local WIB time, no zone designator).
const settlementTimeLayout = "2006-01-02 15:04:05"

type CreateSessionInput struct {
	OrderCode     string
	Amount        int64
	Description   string
	CustomerName  string
	CustomerPhone string
}

type Session struct {
	Token       string
	RedirectURL string
}

type TransactionStatus struct {
	TransactionStatus string
	FraudStatus       string
	StatusCode        string
	GrossAmount       string
	SettlementTime    *time.Time
}

// Gateway is the payment collaborator consumed by the order service.
type Gateway interface {
	CreateSession(ctx context.Context, input CreateSessionInput) (*Session, error)
	Inquiry(ctx context.Context, orderCode string) (*TransactionStatus, error)
	VerifySignature(orderID, statusCode, grossAmount, signature string) bool
}

type midtransGateway struct {
	snap         snap.Client
	core         coreapi.Client
	serverKey    string
	redirectBase string
	loc          *time.Location
	log          *zap.Logger
}

func NewMidtransGateway(config utils.MidtransConfig, appBaseURL string, loc *time.Location, log *zap.Logger) Gateway {
	env := midtrans.Sandbox
	if config.Production {
		env = midtrans.Production
	}

	g := &midtransGateway{
		serverKey:    config.ServerKey,
		redirectBase: strings.TrimRight(appBaseURL, "/"),
		loc:          loc,
		log:          log.With(zap.String("gateway", "midtrans")),
	}
	g.snap.New(config.ServerKey, env)
	g.core.New(config.ServerKey, env)

	return g
}

// buildSnapRequest assembles the checkout request sent to Snap. The order
// code doubles as the gateway transaction identifier.
func buildSnapRequest(input CreateSessionInput, redirectBase string) *snap.Request {
	return &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  input.OrderCode,
			GrossAmt: input.Amount,
		},
		CreditCard: &snap.CreditCardDetails{Secure: true},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: input.CustomerName,
			Phone: input.CustomerPhone,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    input.OrderCode,
				Price: input.Amount,
				Qty:   1,
				Name:  input.Description,
			},
		},
		Callbacks: &snap.Callbacks{
			Finish: fmt.Sprintf("%s/payment/finish?order=%s", redirectBase, input.OrderCode),
		},
	}
}

func (g *midtransGateway) CreateSession(_ context.Context, input CreateSessionInput) (*Session, error) {
	req := buildSnapRequest(input, g.redirectBase)

	resp, mErr := g.snap.CreateTransaction(req)
	if mErr != nil {
		g.log.Error("Snap transaction creation failed",
			zap.Error(mErr),
			zap.String("order_code", input.OrderCode),
			zap.Int64("amount", input.Amount),
		)
		return nil, fmt.Errorf("create snap transaction for %s: %w", input.OrderCode, mErr)
	}

	if resp.Token == "" || resp.RedirectURL == "" {
		return nil, fmt.Errorf("invalid snap response for %s: missing token or redirect_url", input.OrderCode)
	}

	return &Session{
		Token:       resp.Token,
		RedirectURL: resp.RedirectURL,
	}, nil
}

func (g *midtransGateway) Inquiry(_ context.Context, orderCode string) (*TransactionStatus, error) {
	resp, mErr := g.core.CheckTransaction(orderCode)
	if mErr != nil {
		if mErr.StatusCode == http.StatusNotFound {
			return nil, ErrTransactionNotFound
		}
		g.log.Error("Transaction status inquiry failed",
			zap.Error(mErr),
			zap.String("order_code", orderCode),
		)
		return nil, fmt.Errorf("inquiry transaction %s: %w", orderCode, mErr)
	}

	if resp.TransactionStatus == "" {
		return nil, fmt.Errorf("invalid inquiry response for %s: missing transaction_status", orderCode)
	}

	status := &TransactionStatus{
		TransactionStatus: resp.TransactionStatus,
		FraudStatus:       resp.FraudStatus,
		StatusCode:        resp.StatusCode,
		GrossAmount:       resp.GrossAmount,
	}

	if resp.SettlementTime != "" {
		if t, err := time.ParseInLocation(settlementTimeLayout, resp.SettlementTime, g.loc); err == nil {
			status.SettlementTime = &t
		}
	}

	return status, nil
}

// VerifySignature checks the keyed digest Midtrans sends with HTTP
// notifications: sha512(order_id + status_code + gross_amount + server_key).
func (g *midtransGateway) VerifySignature(orderID, statusCode, grossAmount, signature string) bool {
	return VerifySignature(g.serverKey, orderID, statusCode, grossAmount, signature)
}

func VerifySignature(serverKey, orderID, statusCode, grossAmount, signature string) bool {
	raw := orderID + statusCode + grossAmount + serverKey
	sum := sha512.Sum512([]byte(raw))
	digest := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(digest), []byte(signature)) == 1
}
