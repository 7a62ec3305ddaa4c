package billing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/dokseo/dokseo/app/models"
	"github.com/dokseo/dokseo/internal/pkg/mail"
	"github.com/dokseo/dokseo/internal/pkg/subscription"
)

// ErrBadPayload marks a delivery the provider sent wrong. The HTTP layer
// answers these with 400 so the provider fixes the payload instead of
// retrying; everything else stays a retryable server error.
var ErrBadPayload = errors.New("invalid webhook payload")

// Notifier delivers user-facing billing notices. Injected so tests do not
// touch SMTP.
type Notifier func(to, subject, body string) error

// Service persists webhook deliveries idempotently and dispatches them to
// the subscription lifecycle.
type Service struct {
	repo   Repository
	subs   *subscription.Service
	notify Notifier
}

// NewService creates a billing service from injected collaborators.
func NewService(repo Repository, subs *subscription.Service, notify Notifier) *Service {
	if notify == nil {
		notify = mail.SendMail
	}
	return &Service{repo: repo, subs: subs, notify: notify}
}

// NewServiceFromDB creates a billing service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db), subscription.NewServiceFromDB(db), mail.SendMail)
}

// Outcome reports what one webhook delivery did.
type Outcome struct {
	Event *models.BillingWebhookEvent
	// UserID is the user whose subscription changed, 0 when nothing changed.
	UserID uint
	// Duplicate marks a redelivery of an event that was already processed.
	Duplicate bool
}

// HandleEvent persists the delivery exactly once and applies it. Redelivered
// events are acknowledged without reprocessing. The processing error, if any,
// is stored on the event row and returned.
func (s *Service) HandleEvent(ctx context.Context, in WebhookEventInput) (*Outcome, error) {
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	if provider == "" {
		return nil, fmt.Errorf("%w: provider is required", ErrBadPayload)
	}
	eventID := strings.TrimSpace(in.ProviderEventID)
	if eventID == "" {
		// Providers without event IDs get a content hash so redeliveries
		// of the same body still dedupe.
		sum := sha256.Sum256([]byte(in.PayloadJSON))
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	created, stored, err := s.repo.CreateWebhookEventIfNotExists(&models.BillingWebhookEvent{
		Provider:        provider,
		ProviderEventID: eventID,
		EventType:       strings.TrimSpace(in.EventType),
		PayloadJSON:     in.PayloadJSON,
		SignatureValid:  in.SignatureValid,
	})
	if err != nil {
		return nil, err
	}
	if !created && stored.ProcessedAt != nil {
		return &Outcome{Event: stored, Duplicate: true}, nil
	}

	userID, processErr := s.process(ctx, stored)

	errMsg := ""
	if processErr != nil {
		errMsg = processErr.Error()
	}
	if err := s.repo.MarkWebhookProcessed(stored.ID, errMsg); err != nil {
		log.Printf("billing: failed to mark webhook event %d processed: %v", stored.ID, err)
	}
	if processErr != nil {
		return &Outcome{Event: stored}, processErr
	}
	return &Outcome{Event: stored, UserID: userID}, nil
}

func (s *Service) process(ctx context.Context, event *models.BillingWebhookEvent) (uint, error) {
	var payload webhookPayload
	if err := json.Unmarshal([]byte(event.PayloadJSON), &payload); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if payload.SubscriptionID == 0 {
		return 0, fmt.Errorf("%w: missing subscription_id", ErrBadPayload)
	}

	switch event.EventType {
	case EventPaymentSucceeded:
		res, err := s.subs.ProcessRenewal(ctx, payload.SubscriptionID, true)
		if err != nil {
			return 0, err
		}
		return res.Subscription.UserID, nil

	case EventPaymentFailed:
		res, err := s.subs.ProcessRenewal(ctx, payload.SubscriptionID, false)
		if err != nil {
			return 0, err
		}
		s.sendPaymentFailureNotice(res.Subscription)
		return res.Subscription.UserID, nil

	case EventSubscriptionCancelled:
		sub, err := s.subs.CancelByID(ctx, payload.SubscriptionID)
		if err != nil {
			return 0, err
		}
		return sub.UserID, nil

	default:
		// Unknown event types are stored and acknowledged, not failed, so
		// the provider does not retry them forever.
		log.Printf("billing: ignoring webhook event type %q", event.EventType)
		return 0, nil
	}
}

// sendPaymentFailureNotice is best-effort: a lost email never fails the
// webhook.
func (s *Service) sendPaymentFailureNotice(sub *models.UserSubscription) {
	user, err := s.repo.GetUserByID(sub.UserID)
	if err != nil {
		log.Printf("billing: cannot load user %d for payment failure notice: %v", sub.UserID, err)
		return
	}
	if err := mail.SendPaymentFailureNotice(s.notify, user.Email, sub.GracePeriodEnd); err != nil {
		log.Printf("billing: payment failure notice to user %d failed: %v", sub.UserID, err)
	}
}
