package handlers_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/brightpath/guidance-service/internal/accesscontrol"
	httptransport "github.com/brightpath/guidance-service/internal/api/http"
	"github.com/brightpath/guidance-service/internal/api/http/handlers"
	"github.com/brightpath/guidance-service/internal/billing"
	"github.com/brightpath/guidance-service/internal/config"
	"github.com/brightpath/guidance-service/internal/domain"
)

type stubProcessor struct{}

func (stubProcessor) CreateCheckoutSession(context.Context, billing.CheckoutParams) (*domain.CheckoutSession, error) {
	return nil, billing.ErrNotConfigured
}

func (stubProcessor) GetSubscription(context.Context, string) (*domain.Subscription, error) {
	return nil, nil
}

func (stubProcessor) CancelSubscriptionAtPeriodEnd(context.Context, string) error {
	return nil
}

func (stubProcessor) CreatePortalSession(context.Context, string, string) (string, error) {
	return "", billing.ErrNotConfigured
}

func newBillingApp(t *testing.T) *fiber.App {
	t.Helper()
	svc := billing.NewService(stubProcessor{}, nil, config.BillingConfig{})
	h := handlers.NewBillingHandler(svc)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), nil, 0)
	app.Get("/billing/subscription", func(c *fiber.Ctx) error {
		accesscontrol.StoreViewer(c, &accesscontrol.Viewer{
			UserID: "student-1",
			Email:  "student@example.com",
			Role:   domain.RoleStudent,
		})
		return c.Next()
	}, h.GetSubscription)
	return app
}

func TestGetSubscriptionWithoutOneReturnsNotFound(t *testing.T) {
	app := newBillingApp(t)

	req := httptest.NewRequest(fiber.MethodGet, "/billing/subscription", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("status = %d, want %d", resp.StatusCode, fiber.StatusNotFound)
	}
}
