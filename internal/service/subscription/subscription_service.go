// internal/service/subscription/subscription_service.go
package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"adscreen-service/internal/domain/audit"
	"adscreen-service/internal/domain/auth"
	"adscreen-service/internal/domain/invoice"
	"adscreen-service/internal/domain/notification"
	"adscreen-service/internal/domain/payment"
	"adscreen-service/internal/domain/subscription"
	xerrors "adscreen-service/internal/pkg/errors"
	"adscreen-service/internal/pkg/i18n"
	"adscreen-service/internal/pkg/money"
	"adscreen-service/internal/repository/postgres"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type SubscriptionStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, s *subscription.MerchantSubscription) error
	CancelActiveTx(ctx context.Context, tx pgx.Tx, merchantID int64, at time.Time) ([]int64, error)
	ExpireTx(ctx context.Context, tx pgx.Tx, id int64) (bool, error)
	FindActiveByMerchant(ctx context.Context, merchantID int64) (*subscription.MerchantSubscription, error)
	ListByMerchant(ctx context.Context, merchantID int64) ([]subscription.MerchantSubscription, error)
	FindEnded(ctx context.Context, now time.Time) ([]subscription.MerchantSubscription, error)
}

type PlanStore interface {
	FindByID(ctx context.Context, id int64) (*subscription.Plan, error)
	FindByIDTx(ctx context.Context, tx pgx.Tx, id int64) (*subscription.Plan, error)
}

type MerchantStore interface {
	FindByIDForUpdateTx(ctx context.Context, tx pgx.Tx, id int64) (*auth.User, error)
	UpdateSubscriptionTx(ctx context.Context, tx pgx.Tx, userID int64, planName *string, expiry *time.Time, offerLimit int) error
}

type InvoiceIssuer interface {
	GenerateForSubscriptionTx(ctx context.Context, tx pgx.Tx, merchantID int64, plan *subscription.Plan) (*invoice.Invoice, error)
}

type AuditWriter interface {
	CreateTx(ctx context.Context, tx pgx.Tx, e *audit.Entry) error
}

type Notifier interface {
	Notify(ctx context.Context, ev notification.Event)
}

// Checkout holds the Moyasar values handed to clients paying an invoice.
type Checkout struct {
	PublishableKey string
	CallbackURL    string
}

type SubscriptionService struct {
	tx        postgres.TxRunner
	subs      SubscriptionStore
	plans     PlanStore
	merchants MerchantStore
	invoices  InvoiceIssuer
	audit     AuditWriter
	notifier  Notifier
	checkout  Checkout
	logger    *zap.Logger
	now       func() time.Time
}

func NewSubscriptionService(
	tx postgres.TxRunner,
	subs SubscriptionStore,
	plans PlanStore,
	merchants MerchantStore,
	invoices InvoiceIssuer,
	auditLog AuditWriter,
	notifier Notifier,
	checkout Checkout,
	logger *zap.Logger,
) *SubscriptionService {
	return &SubscriptionService{
		tx:        tx,
		subs:      subs,
		plans:     plans,
		merchants: merchants,
		invoices:  invoices,
		audit:     auditLog,
		notifier:  notifier,
		checkout:  checkout,
		logger:    logger,
		now:       time.Now,
	}
}

// ActivateTx replaces the merchant's active subscription with a fresh one month
// period on planID and updates the merchant's plan fields. It runs inside the
// caller's transaction so payment capture and activation commit together.
func (s *SubscriptionService) ActivateTx(ctx context.Context, tx pgx.Tx, merchantID, planID int64, invoiceID, actorID *int64) (*subscription.MerchantSubscription, error) {
	merchant, err := s.merchants.FindByIDForUpdateTx(ctx, tx, merchantID)
	if err != nil {
		return nil, err
	}
	if !merchant.IsMerchant() {
		return nil, xerrors.NewValidationError("merchant_id", i18n.FieldInvalid)
	}

	plan, err := s.plans.FindByIDTx(ctx, tx, planID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	cancelled, err := s.subs.CancelActiveTx(ctx, tx, merchantID, now)
	if err != nil {
		return nil, err
	}
	for _, id := range cancelled {
		if err := s.audit.CreateTx(ctx, tx, &audit.Entry{
			ActorID:       actorID,
			Action:        audit.ActionSubscriptionCancel,
			EntityType:    audit.EntitySubscription,
			EntityID:      id,
			PreviousValue: statusPtr(subscription.StatusActive),
			NewValue:      statusPtr(subscription.StatusCancelled),
			Metadata:      map[string]interface{}{"replaced_by_plan": plan.Name},
		}); err != nil {
			return nil, err
		}
	}

	sub := &subscription.MerchantSubscription{
		MerchantID: merchantID,
		PlanID:     plan.ID,
		InvoiceID:  invoiceID,
		StartDate:  now,
		EndDate:    subscription.PeriodEnd(now),
		Status:     subscription.StatusActive,
		AutoRenew:  true,
		Plan:       plan,
	}
	if err := s.subs.CreateTx(ctx, tx, sub); err != nil {
		return nil, err
	}

	if err := s.merchants.UpdateSubscriptionTx(ctx, tx, merchantID, &plan.Name, &sub.EndDate, plan.OfferQuota); err != nil {
		return nil, err
	}

	metadata := map[string]interface{}{"plan": plan.Name, "offer_limit": plan.OfferQuota}
	if invoiceID != nil {
		metadata["invoice_id"] = *invoiceID
	}
	if err := s.audit.CreateTx(ctx, tx, &audit.Entry{
		ActorID:    actorID,
		Action:     audit.ActionSubscriptionActive,
		EntityType: audit.EntitySubscription,
		EntityID:   sub.ID,
		NewValue:   statusPtr(subscription.StatusActive),
		Metadata:   metadata,
	}); err != nil {
		return nil, err
	}

	return sub, nil
}

// Activate runs ActivateTx in its own transaction and notifies the merchant.
func (s *SubscriptionService) Activate(ctx context.Context, merchantID, planID int64, invoiceID, actorID *int64) (*subscription.MerchantSubscription, error) {
	var sub *subscription.MerchantSubscription
	err := s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		var err error
		sub, err = s.ActivateTx(ctx, tx, merchantID, planID, invoiceID, actorID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to activate subscription: %w", err)
	}

	s.logger.Info("subscription activated",
		zap.Int64("merchant_id", merchantID),
		zap.Int64("subscription_id", sub.ID),
		zap.String("plan", sub.Plan.Name))
	s.NotifyActivated(ctx, sub)
	return sub, nil
}

func (s *SubscriptionService) NotifyActivated(ctx context.Context, sub *subscription.MerchantSubscription) {
	nameAr, nameEn := "", ""
	if sub.Plan != nil {
		nameAr, nameEn = sub.Plan.DisplayNameAr, sub.Plan.DisplayNameEn
	}
	s.notifier.Notify(ctx, notification.Event{
		UserID:    sub.MerchantID,
		Type:      notification.TypeSubscription,
		TitleAr:   "تم تفعيل الاشتراك",
		TitleEn:   "Subscription activated",
		MessageAr: fmt.Sprintf("تم تفعيل باقة %s حتى %s", nameAr, sub.EndDate.Format("2006-01-02")),
		MessageEn: fmt.Sprintf("Your %s plan is active until %s", nameEn, sub.EndDate.Format("2006-01-02")),
		Metadata:  map[string]interface{}{"subscription_id": sub.ID, "plan_id": sub.PlanID},
	})
}

// Subscribe activates free plans immediately. Paid plans get a subscription
// invoice and activate once the payment callback confirms it.
func (s *SubscriptionService) Subscribe(ctx context.Context, merchantID int64, req *subscription.SubscribeRequest) (*subscription.SubscribeResponse, error) {
	plan, err := s.plans.FindByID(ctx, req.PlanID)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.NewValidationError("plan_id", i18n.FieldInvalid)
		}
		return nil, err
	}
	if !plan.IsActive {
		return nil, xerrors.NewValidationError("plan_id", i18n.FieldInvalid)
	}

	if plan.IsFree() {
		sub, err := s.Activate(ctx, merchantID, plan.ID, nil, &merchantID)
		if err != nil {
			return nil, err
		}
		return &subscription.SubscribeResponse{Subscription: sub}, nil
	}

	var inv *invoice.Invoice
	err = s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		var err error
		inv, err = s.invoices.GenerateForSubscriptionTx(ctx, tx, merchantID, plan)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to issue subscription invoice: %w", err)
	}

	s.logger.Info("subscription invoice issued",
		zap.Int64("merchant_id", merchantID),
		zap.String("plan", plan.Name),
		zap.String("invoice_number", inv.InvoiceNumber))

	s.notifier.Notify(ctx, notification.Event{
		UserID:    merchantID,
		Type:      notification.TypeInvoiceIssued,
		TitleAr:   "فاتورة اشتراك جديدة",
		TitleEn:   "New subscription invoice",
		MessageAr: fmt.Sprintf("تم إصدار الفاتورة %s بمبلغ %s ريال لباقة %s", inv.InvoiceNumber, inv.TotalAmount.StringFixed(2), plan.DisplayNameAr),
		MessageEn: fmt.Sprintf("Invoice %s for %s SAR was issued for the %s plan", inv.InvoiceNumber, inv.TotalAmount.StringFixed(2), plan.DisplayNameEn),
		Metadata:  map[string]interface{}{"invoice_id": inv.ID, "plan_id": plan.ID},
	})

	return &subscription.SubscribeResponse{
		Invoice: inv,
		Checkout: &payment.CheckoutInfo{
			PublishableKey: s.checkout.PublishableKey,
			CallbackURL:    s.checkout.CallbackURL,
			AmountHalalas:  money.ToHalalas(inv.TotalAmount),
			Currency:       inv.Currency,
			Description:    inv.InvoiceNumber,
			InvoiceID:      inv.ID,
		},
	}, nil
}

// AdminActivate assigns a plan without an invoice.
func (s *SubscriptionService) AdminActivate(ctx context.Context, adminID, merchantID int64, req *subscription.SubscribeRequest) (*subscription.MerchantSubscription, error) {
	return s.Activate(ctx, merchantID, req.PlanID, nil, &adminID)
}

func (s *SubscriptionService) GetActive(ctx context.Context, merchantID int64) (*subscription.MerchantSubscription, error) {
	return s.subs.FindActiveByMerchant(ctx, merchantID)
}

func (s *SubscriptionService) History(ctx context.Context, merchantID int64) ([]subscription.MerchantSubscription, error) {
	return s.subs.ListByMerchant(ctx, merchantID)
}

// Cancel ends the merchant's active subscription now and drops them back to
// the default offer limit.
func (s *SubscriptionService) Cancel(ctx context.Context, merchantID int64) error {
	err := s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := s.merchants.FindByIDForUpdateTx(ctx, tx, merchantID); err != nil {
			return err
		}

		ids, err := s.subs.CancelActiveTx(ctx, tx, merchantID, s.now())
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return xerrors.ErrNotFound
		}

		if err := s.merchants.UpdateSubscriptionTx(ctx, tx, merchantID, nil, nil, auth.DefaultOfferLimit); err != nil {
			return err
		}

		for _, id := range ids {
			if err := s.audit.CreateTx(ctx, tx, &audit.Entry{
				ActorID:       &merchantID,
				Action:        audit.ActionSubscriptionCancel,
				EntityType:    audit.EntitySubscription,
				EntityID:      id,
				PreviousValue: statusPtr(subscription.StatusActive),
				NewValue:      statusPtr(subscription.StatusCancelled),
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("subscription cancelled", zap.Int64("merchant_id", merchantID))
	return nil
}

// ExpireEnded expires active subscriptions whose period has passed. Each one
// commits on its own so a single failure does not block the rest.
func (s *SubscriptionService) ExpireEnded(ctx context.Context) (int, error) {
	ended, err := s.subs.FindEnded(ctx, s.now())
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, sub := range ended {
		var changed bool
		err := s.tx.WithTx(ctx, func(tx pgx.Tx) error {
			if _, err := s.merchants.FindByIDForUpdateTx(ctx, tx, sub.MerchantID); err != nil {
				return err
			}

			var err error
			changed, err = s.subs.ExpireTx(ctx, tx, sub.ID)
			if err != nil || !changed {
				return err
			}

			if err := s.merchants.UpdateSubscriptionTx(ctx, tx, sub.MerchantID, nil, nil, auth.DefaultOfferLimit); err != nil {
				return err
			}

			return s.audit.CreateTx(ctx, tx, &audit.Entry{
				Action:        audit.ActionSubscriptionExpire,
				EntityType:    audit.EntitySubscription,
				EntityID:      sub.ID,
				PreviousValue: statusPtr(subscription.StatusActive),
				NewValue:      statusPtr(subscription.StatusExpired),
			})
		})
		if err != nil {
			s.logger.Error("failed to expire subscription", zap.Int64("subscription_id", sub.ID), zap.Error(err))
			continue
		}
		if !changed {
			continue
		}

		expired++
		s.notifier.Notify(ctx, notification.Event{
			UserID:    sub.MerchantID,
			Type:      notification.TypeSubscription,
			TitleAr:   "انتهى الاشتراك",
			TitleEn:   "Subscription expired",
			MessageAr: "انتهت مدة اشتراكك، يمكنك التجديد في أي وقت",
			MessageEn: "Your subscription has expired. You can renew at any time",
			Metadata:  map[string]interface{}{"subscription_id": sub.ID},
		})
	}

	if expired > 0 {
		s.logger.Info("subscriptions expired", zap.Int("count", expired))
	}
	return expired, nil
}

func statusPtr(st subscription.SubscriptionStatus) *string {
	v := string(st)
	return &v
}
