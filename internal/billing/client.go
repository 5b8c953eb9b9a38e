package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/brightpath/guidance-service/internal/config"
	"github.com/brightpath/guidance-service/internal/domain"
)

// ErrNotConfigured is returned when no payments processor is set up.
var ErrNotConfigured = errors.New("payments processor not configured")

// CheckoutParams describes a checkout session to create.
type CheckoutParams struct {
	CustomerEmail string
	PriceID       string
	Quantity      int64
	CouponID      *string
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

// ProcessorClient is the payments processor surface the service needs:
// checkout session creation, subscription lookup/mutation and billing
// portal sessions.
type ProcessorClient interface {
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*domain.CheckoutSession, error)
	GetSubscription(ctx context.Context, customerEmail string) (*domain.Subscription, error)
	CancelSubscriptionAtPeriodEnd(ctx context.Context, subscriptionID string) error
	CreatePortalSession(ctx context.Context, customerEmail, returnURL string) (string, error)
}

// httpProcessor talks to the processor's form-encoded REST API.
type httpProcessor struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

// NewHTTPProcessor builds the processor client. A missing base URL or
// key yields a client that reports ErrNotConfigured on every call.
func NewHTTPProcessor(cfg config.BillingConfig) ProcessorClient {
	return &httpProcessor{
		baseURL:    strings.TrimRight(cfg.APIBaseURL, "/"),
		secretKey:  cfg.SecretKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *httpProcessor) configured() bool {
	return p.baseURL != "" && p.secretKey != ""
}

func (p *httpProcessor) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*domain.CheckoutSession, error) {
	if !p.configured() {
		return nil, ErrNotConfigured
	}

	form := url.Values{}
	form.Set("mode", "subscription")
	form.Set("customer_email", params.CustomerEmail)
	form.Set("line_items[0][price]", params.PriceID)
	form.Set("line_items[0][quantity]", fmt.Sprintf("%d", params.Quantity))
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)
	if params.CouponID != nil {
		form.Set("discounts[0][coupon]", *params.CouponID)
	}
	for key, value := range params.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", key), value)
	}

	var parsed struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := p.do(ctx, http.MethodPost, "/v1/checkout/sessions", form, &parsed); err != nil {
		return nil, err
	}
	return &domain.CheckoutSession{ID: parsed.ID, URL: parsed.URL}, nil
}

func (p *httpProcessor) GetSubscription(ctx context.Context, customerEmail string) (*domain.Subscription, error) {
	if !p.configured() {
		return nil, ErrNotConfigured
	}

	query := url.Values{}
	query.Set("customer_email", customerEmail)
	query.Set("limit", "1")

	var parsed struct {
		Data []struct {
			ID                string `json:"id"`
			Customer          string `json:"customer"`
			Status            string `json:"status"`
			CancelAtPeriodEnd bool   `json:"cancel_at_period_end"`
			CurrentPeriodEnd  int64  `json:"current_period_end"`
			Plan              struct {
				ID string `json:"id"`
			} `json:"plan"`
		} `json:"data"`
	}
	if err := p.do(ctx, http.MethodGet, "/v1/subscriptions?"+query.Encode(), nil, &parsed); err != nil {
		return nil, err
	}
	if len(parsed.Data) == 0 {
		return nil, nil
	}
	sub := parsed.Data[0]
	return &domain.Subscription{
		ID:                sub.ID,
		CustomerID:        sub.Customer,
		PlanID:            sub.Plan.ID,
		Status:            sub.Status,
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		CurrentPeriodEnd:  time.Unix(sub.CurrentPeriodEnd, 0),
	}, nil
}

func (p *httpProcessor) CancelSubscriptionAtPeriodEnd(ctx context.Context, subscriptionID string) error {
	if !p.configured() {
		return ErrNotConfigured
	}
	form := url.Values{}
	form.Set("cancel_at_period_end", "true")
	return p.do(ctx, http.MethodPost, "/v1/subscriptions/"+subscriptionID, form, nil)
}

func (p *httpProcessor) CreatePortalSession(ctx context.Context, customerEmail, returnURL string) (string, error) {
	if !p.configured() {
		return "", ErrNotConfigured
	}
	form := url.Values{}
	form.Set("customer_email", customerEmail)
	form.Set("return_url", returnURL)

	var parsed struct {
		URL string `json:"url"`
	}
	if err := p.do(ctx, http.MethodPost, "/v1/billing_portal/sessions", form, &parsed); err != nil {
		return "", err
	}
	return parsed.URL, nil
}

func (p *httpProcessor) do(ctx context.Context, method, endpoint string, form url.Values, out any) error {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+p.secretKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("processor request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		// provider error text stays server-side; callers surface a generic 500
		return fmt.Errorf("processor returned status %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
