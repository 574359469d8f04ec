package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"app/internal/middleware"
	"app/internal/model"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v82"
)

type fakeHandlerStripeService struct {
	checkoutURL string
	portalURL   string
	priceIDs    []string
}

func (f *fakeHandlerStripeService) GetSubscription(_ context.Context, _ string) (*stripe.Subscription, error) {
	return nil, nil
}

func (f *fakeHandlerStripeService) CreateCustomer(_ context.Context, _, _ string) (*stripe.Customer, error) {
	return &stripe.Customer{ID: "cus_1"}, nil
}

func (f *fakeHandlerStripeService) UpdateCustomerBilling(_ context.Context, _ string, _ *stripe.PaymentMethodBillingDetails) error {
	return nil
}

func (f *fakeHandlerStripeService) CreateCheckoutSession(_ context.Context, _, priceID string) (string, error) {
	f.priceIDs = append(f.priceIDs, priceID)
	return f.checkoutURL, nil
}

func (f *fakeHandlerStripeService) CreatePortalSession(_ context.Context, _ string) (string, error) {
	return f.portalURL, nil
}

type fakeHandlerCustomerService struct {
	customerID string
}

func (f *fakeHandlerCustomerService) CreateOrRetrieveCustomer(_ context.Context, _, _ string) (string, error) {
	return f.customerID, nil
}

func (f *fakeHandlerCustomerService) UserIDByStripeCustomer(_ context.Context, _ string) (string, error) {
	return "", nil
}

type fakeHandlerUserRepo struct {
	user *model.User
}

func (f *fakeHandlerUserRepo) GetUserByID(_ context.Context, _ string) (*model.User, error) {
	return f.user, nil
}

func (f *fakeHandlerUserRepo) UpdateBillingDetails(_ context.Context, _ string, _ *model.BillingAddress, _ *model.PaymentCard) error {
	return nil
}

func newTestSubscriptionHandler(subs *fakeSubscriptionService, stripeSvc *fakeHandlerStripeService) *SubscriptionHandler {
	return NewSubscriptionHandler(
		stripeSvc,
		&fakeHandlerCustomerService{customerID: "cus_1"},
		subs,
		&fakeHandlerUserRepo{user: &model.User{UserID: "u1", Email: "u1@example.com"}},
		validator.New(validator.WithRequiredStructEnabled()),
		zerolog.Nop(),
	)
}

func authedRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	ctx := context.WithValue(req.Context(), middleware.UserContextKey, "u1")
	return req.WithContext(ctx)
}

func TestCurrentSubscription(t *testing.T) {
	subs := &fakeSubscriptionService{current: &model.Subscription{ID: "sub_1", UserID: "u1", Status: model.SubscriptionStatusActive}}
	h := newTestSubscriptionHandler(subs, &fakeHandlerStripeService{})

	rec := httptest.NewRecorder()
	h.Current(rec, authedRequest(http.MethodGet, "/subscriptions", ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"sub_1"`) {
		t.Fatalf("expected the subscription in the body, got %s", rec.Body.String())
	}
}

func TestCurrentSubscriptionRequiresUser(t *testing.T) {
	h := newTestSubscriptionHandler(&fakeSubscriptionService{}, &fakeHandlerStripeService{})
	rec := httptest.NewRecorder()
	h.Current(rec, httptest.NewRequest(http.MethodGet, "/subscriptions", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a user in context, got %d", rec.Code)
	}
}

func TestCheckoutCreatesSession(t *testing.T) {
	stripeSvc := &fakeHandlerStripeService{checkoutURL: "https://checkout.stripe.com/c/cs_1"}
	h := newTestSubscriptionHandler(&fakeSubscriptionService{}, stripeSvc)

	rec := httptest.NewRecorder()
	h.Checkout(rec, authedRequest(http.MethodPost, "/subscriptions/checkout", `{"price_id":"price_pro_month"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(stripeSvc.priceIDs) != 1 || stripeSvc.priceIDs[0] != "price_pro_month" {
		t.Fatalf("expected a checkout session for price_pro_month, got %v", stripeSvc.priceIDs)
	}
	if !strings.Contains(rec.Body.String(), stripeSvc.checkoutURL) {
		t.Fatalf("expected the session url in the body, got %s", rec.Body.String())
	}
}

func TestCheckoutRejectsMissingPrice(t *testing.T) {
	h := newTestSubscriptionHandler(&fakeSubscriptionService{}, &fakeHandlerStripeService{})
	rec := httptest.NewRecorder()
	h.Checkout(rec, authedRequest(http.MethodPost, "/subscriptions/checkout", `{}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a missing price id, got %d", rec.Code)
	}
}

func TestPortalCreatesSession(t *testing.T) {
	stripeSvc := &fakeHandlerStripeService{portalURL: "https://billing.stripe.com/p/session_1"}
	h := newTestSubscriptionHandler(&fakeSubscriptionService{}, stripeSvc)

	rec := httptest.NewRecorder()
	h.Portal(rec, authedRequest(http.MethodGet, "/subscriptions/portal", ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), stripeSvc.portalURL) {
		t.Fatalf("expected the portal url in the body, got %s", rec.Body.String())
	}
}
