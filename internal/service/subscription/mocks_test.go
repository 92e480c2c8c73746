package subscription

import (
	"context"
	"time"

	"adscreen-service/internal/domain/audit"
	"adscreen-service/internal/domain/auth"
	"adscreen-service/internal/domain/invoice"
	"adscreen-service/internal/domain/notification"
	"adscreen-service/internal/domain/subscription"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

type fakeTx struct{ calls int }

func (f *fakeTx) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	f.calls++
	return fn(nil)
}

type mockSubs struct{ mock.Mock }

func (m *mockSubs) CreateTx(ctx context.Context, tx pgx.Tx, s *subscription.MerchantSubscription) error {
	return m.Called(ctx, tx, s).Error(0)
}

func (m *mockSubs) CancelActiveTx(ctx context.Context, tx pgx.Tx, merchantID int64, at time.Time) ([]int64, error) {
	args := m.Called(ctx, tx, merchantID, at)
	ids, _ := args.Get(0).([]int64)
	return ids, args.Error(1)
}

func (m *mockSubs) ExpireTx(ctx context.Context, tx pgx.Tx, id int64) (bool, error) {
	args := m.Called(ctx, tx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockSubs) FindActiveByMerchant(ctx context.Context, merchantID int64) (*subscription.MerchantSubscription, error) {
	args := m.Called(ctx, merchantID)
	s, _ := args.Get(0).(*subscription.MerchantSubscription)
	return s, args.Error(1)
}

func (m *mockSubs) ListByMerchant(ctx context.Context, merchantID int64) ([]subscription.MerchantSubscription, error) {
	args := m.Called(ctx, merchantID)
	s, _ := args.Get(0).([]subscription.MerchantSubscription)
	return s, args.Error(1)
}

func (m *mockSubs) FindEnded(ctx context.Context, now time.Time) ([]subscription.MerchantSubscription, error) {
	args := m.Called(ctx, now)
	s, _ := args.Get(0).([]subscription.MerchantSubscription)
	return s, args.Error(1)
}

type mockPlans struct{ mock.Mock }

func (m *mockPlans) Create(ctx context.Context, p *subscription.Plan) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockPlans) Update(ctx context.Context, p *subscription.Plan) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockPlans) FindByID(ctx context.Context, id int64) (*subscription.Plan, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*subscription.Plan)
	return p, args.Error(1)
}

func (m *mockPlans) FindByIDTx(ctx context.Context, tx pgx.Tx, id int64) (*subscription.Plan, error) {
	args := m.Called(ctx, tx, id)
	p, _ := args.Get(0).(*subscription.Plan)
	return p, args.Error(1)
}

func (m *mockPlans) ExistsByName(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *mockPlans) List(ctx context.Context, includeInactive bool) ([]subscription.Plan, error) {
	args := m.Called(ctx, includeInactive)
	p, _ := args.Get(0).([]subscription.Plan)
	return p, args.Error(1)
}

type mockMerchants struct{ mock.Mock }

func (m *mockMerchants) FindByIDForUpdateTx(ctx context.Context, tx pgx.Tx, id int64) (*auth.User, error) {
	args := m.Called(ctx, tx, id)
	u, _ := args.Get(0).(*auth.User)
	return u, args.Error(1)
}

func (m *mockMerchants) UpdateSubscriptionTx(ctx context.Context, tx pgx.Tx, userID int64, planName *string, expiry *time.Time, offerLimit int) error {
	return m.Called(ctx, tx, userID, planName, expiry, offerLimit).Error(0)
}

type mockInvoices struct{ mock.Mock }

func (m *mockInvoices) GenerateForSubscriptionTx(ctx context.Context, tx pgx.Tx, merchantID int64, plan *subscription.Plan) (*invoice.Invoice, error) {
	args := m.Called(ctx, tx, merchantID, plan)
	i, _ := args.Get(0).(*invoice.Invoice)
	return i, args.Error(1)
}

type mockAudit struct{ mock.Mock }

func (m *mockAudit) CreateTx(ctx context.Context, tx pgx.Tx, e *audit.Entry) error {
	return m.Called(ctx, tx, e).Error(0)
}

type recordingNotifier struct{ events []notification.Event }

func (r *recordingNotifier) Notify(ctx context.Context, ev notification.Event) {
	r.events = append(r.events, ev)
}
