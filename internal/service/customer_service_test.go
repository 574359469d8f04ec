package service

import (
	"context"
	"errors"
	"testing"

	"app/internal/model"
	"app/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v82"
)

type fakeBillingCustomerRepo struct {
	getByUser []*model.BillingCustomer
	byCust    map[string]*model.BillingCustomer
	insertErr error
	inserted  []*model.BillingCustomer
}

func (f *fakeBillingCustomerRepo) GetByUserID(_ context.Context, _ string) (*model.BillingCustomer, error) {
	if len(f.getByUser) == 0 {
		return nil, nil
	}
	link := f.getByUser[0]
	f.getByUser = f.getByUser[1:]
	return link, nil
}

func (f *fakeBillingCustomerRepo) GetByStripeCustomerID(_ context.Context, id string) (*model.BillingCustomer, error) {
	return f.byCust[id], nil
}

func (f *fakeBillingCustomerRepo) Insert(_ context.Context, link *model.BillingCustomer) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, link)
	return nil
}

type createdCustomer struct {
	email  string
	userID string
}

type fakeStripeService struct {
	subscription *stripe.Subscription
	subErr       error
	getCalls     int

	newCustomerID string
	created       []createdCustomer

	billingUpdates []string
	billingErr     error
}

func (f *fakeStripeService) GetSubscription(_ context.Context, _ string) (*stripe.Subscription, error) {
	f.getCalls++
	return f.subscription, f.subErr
}

func (f *fakeStripeService) CreateCustomer(_ context.Context, email, userID string) (*stripe.Customer, error) {
	f.created = append(f.created, createdCustomer{email: email, userID: userID})
	return &stripe.Customer{ID: f.newCustomerID}, nil
}

func (f *fakeStripeService) UpdateCustomerBilling(_ context.Context, customerID string, _ *stripe.PaymentMethodBillingDetails) error {
	if f.billingErr != nil {
		return f.billingErr
	}
	f.billingUpdates = append(f.billingUpdates, customerID)
	return nil
}

func (f *fakeStripeService) CreateCheckoutSession(_ context.Context, _, _ string) (string, error) {
	return "https://checkout.stripe.com/test", nil
}

func (f *fakeStripeService) CreatePortalSession(_ context.Context, _ string) (string, error) {
	return "https://billing.stripe.com/test", nil
}

func TestCreateOrRetrieveCustomerExistingLink(t *testing.T) {
	repo := &fakeBillingCustomerRepo{
		getByUser: []*model.BillingCustomer{{UserID: "u1", StripeCustomerID: "cus_1"}},
	}
	stripeSvc := &fakeStripeService{newCustomerID: "cus_should_not_be_created"}
	svc := NewCustomerService(repo, stripeSvc, zerolog.Nop())

	id, err := svc.CreateOrRetrieveCustomer(context.Background(), "u1", "u1@example.com")
	if err != nil {
		t.Fatalf("CreateOrRetrieveCustomer returned error: %v", err)
	}
	if id != "cus_1" {
		t.Fatalf("expected cus_1, got %q", id)
	}
	if len(stripeSvc.created) != 0 {
		t.Fatalf("expected no Stripe customer creation, got %d", len(stripeSvc.created))
	}
	if len(repo.inserted) != 0 {
		t.Fatalf("expected no link insert, got %d", len(repo.inserted))
	}
}

func TestCreateOrRetrieveCustomerCreatesOnFirstUse(t *testing.T) {
	repo := &fakeBillingCustomerRepo{getByUser: []*model.BillingCustomer{nil}}
	stripeSvc := &fakeStripeService{newCustomerID: "cus_new"}
	svc := NewCustomerService(repo, stripeSvc, zerolog.Nop())

	id, err := svc.CreateOrRetrieveCustomer(context.Background(), "u1", "u1@example.com")
	if err != nil {
		t.Fatalf("CreateOrRetrieveCustomer returned error: %v", err)
	}
	if id != "cus_new" {
		t.Fatalf("expected cus_new, got %q", id)
	}
	if len(stripeSvc.created) != 1 || stripeSvc.created[0].email != "u1@example.com" || stripeSvc.created[0].userID != "u1" {
		t.Fatalf("unexpected Stripe customer creation calls: %+v", stripeSvc.created)
	}
	if len(repo.inserted) != 1 || repo.inserted[0].StripeCustomerID != "cus_new" {
		t.Fatalf("unexpected link inserts: %+v", repo.inserted)
	}
}

func TestCreateOrRetrieveCustomerKeepsRaceWinner(t *testing.T) {
	repo := &fakeBillingCustomerRepo{
		getByUser: []*model.BillingCustomer{
			nil,
			{UserID: "u1", StripeCustomerID: "cus_winner"},
		},
		insertErr: repository.ErrDuplicateLink,
	}
	stripeSvc := &fakeStripeService{newCustomerID: "cus_loser"}
	svc := NewCustomerService(repo, stripeSvc, zerolog.Nop())

	id, err := svc.CreateOrRetrieveCustomer(context.Background(), "u1", "u1@example.com")
	if err != nil {
		t.Fatalf("CreateOrRetrieveCustomer returned error: %v", err)
	}
	if id != "cus_winner" {
		t.Fatalf("expected the winning link cus_winner, got %q", id)
	}
}

func TestUserIDByStripeCustomer(t *testing.T) {
	repo := &fakeBillingCustomerRepo{
		byCust: map[string]*model.BillingCustomer{
			"cus_1": {UserID: "u1", StripeCustomerID: "cus_1"},
		},
	}
	svc := NewCustomerService(repo, &fakeStripeService{}, zerolog.Nop())

	userID, err := svc.UserIDByStripeCustomer(context.Background(), "cus_1")
	if err != nil {
		t.Fatalf("UserIDByStripeCustomer returned error: %v", err)
	}
	if userID != "u1" {
		t.Fatalf("expected u1, got %q", userID)
	}

	_, err = svc.UserIDByStripeCustomer(context.Background(), "cus_missing")
	if !errors.Is(err, ErrUnknownCustomer) {
		t.Fatalf("expected ErrUnknownCustomer, got %v", err)
	}
}
