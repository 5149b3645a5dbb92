package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/azmiruddin-143/Local-Guide-Server/pkg/client"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/config"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/logger"
)

// Gateway talks to the SSLCommerz-compatible payment provider. Session
// init returns a hosted checkout URL; Validate re-checks a callback
// against the provider before any money moves.
type Gateway interface {
	InitSession(ctx context.Context, req *SessionRequest) (*SessionResponse, error)
	Validate(ctx context.Context, valID string) (*ValidationResult, error)
}

type SessionRequest struct {
	TransactionID string
	Amount        float64
	Currency      string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	CustomerAddr  string
	ProductName   string
}

type SessionResponse struct {
	GatewayPageURL string         `json:"GatewayPageURL"`
	Status         string         `json:"status"`
	FailedReason   string         `json:"failedreason"`
	SessionKey     string         `json:"sessionkey"`
	Raw            map[string]any `json:"-"`
}

// ValidationResult is the provider's answer for a completed session.
// Status VALID or VALIDATED means the money actually moved.
type ValidationResult struct {
	Status        string `json:"status"`
	TransactionID string `json:"tran_id"`
	ValID         string `json:"val_id"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	CardType      string `json:"card_type"`
	BankTranID    string `json:"bank_tran_id"`
	TranDate      string `json:"tran_date"`
}

func (v *ValidationResult) IsValid() bool {
	return v.Status == "VALID" || v.Status == "VALIDATED"
}

const (
	initPath     = "/gwprocess/v4/api.php"
	validatePath = "/validator/api/validationserverAPI.php"
)

type sslGateway struct {
	http          *client.HttpClient
	storeID       string
	storePassword string
	callbackBase  string
	log           *logger.Logger
}

func New(cfg *config.Config) Gateway {
	return &sslGateway{
		http:          client.NewHttpClient(cfg.GatewayBaseURL),
		storeID:       cfg.GatewayStoreID,
		storePassword: cfg.GatewayStorePassword,
		callbackBase:  cfg.PaymentCallbackBase,
		log:           cfg.Log,
	}
}

func (g *sslGateway) InitSession(ctx context.Context, req *SessionRequest) (*SessionResponse, error) {
	form := url.Values{}
	form.Set("store_id", g.storeID)
	form.Set("store_passwd", g.storePassword)
	form.Set("total_amount", strconv.FormatFloat(req.Amount, 'f', 2, 64))
	form.Set("currency", req.Currency)
	form.Set("tran_id", req.TransactionID)
	form.Set("success_url", g.callbackBase+"/success?tran_id="+url.QueryEscape(req.TransactionID))
	form.Set("fail_url", g.callbackBase+"/fail?tran_id="+url.QueryEscape(req.TransactionID))
	form.Set("cancel_url", g.callbackBase+"/cancel?tran_id="+url.QueryEscape(req.TransactionID))
	form.Set("cus_name", req.CustomerName)
	form.Set("cus_email", req.CustomerEmail)
	form.Set("cus_phone", req.CustomerPhone)
	form.Set("cus_add1", req.CustomerAddr)
	form.Set("cus_country", "Bangladesh")
	form.Set("shipping_method", "NO")
	form.Set("product_name", req.ProductName)
	form.Set("product_category", "Service")
	form.Set("product_profile", "general")

	resp, err := g.http.POSTForm(ctx, initPath, form)
	if err != nil {
		return nil, fmt.Errorf("gateway session init failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway session init returned status %d", resp.StatusCode)
	}

	var session SessionResponse
	if err := resp.DecodeJSON(&session); err != nil {
		return nil, fmt.Errorf("failed to decode gateway session response: %w", err)
	}
	if session.Status != "SUCCESS" {
		g.log.Warn("Gateway rejected session init",
			"transaction_id", req.TransactionID,
			"status", session.Status,
			"reason", session.FailedReason,
		)
		return nil, fmt.Errorf("gateway rejected session: %s", session.FailedReason)
	}
	return &session, nil
}

func (g *sslGateway) Validate(ctx context.Context, valID string) (*ValidationResult, error) {
	query := url.Values{}
	query.Set("val_id", valID)
	query.Set("store_id", g.storeID)
	query.Set("store_passwd", g.storePassword)
	query.Set("format", "json")

	resp, err := g.http.GET(ctx, validatePath+"?"+query.Encode())
	if err != nil {
		return nil, fmt.Errorf("gateway validation failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway validation returned status %d", resp.StatusCode)
	}

	var result ValidationResult
	if err := resp.DecodeJSON(&result); err != nil {
		return nil, fmt.Errorf("failed to decode gateway validation response: %w", err)
	}
	return &result, nil
}
