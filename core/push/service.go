package push

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core"
)

var ErrNotFound = errors.New("subscription not found")

type (
	// Subscription is one browser push endpoint registered by a user.
	Subscription struct {
		ID        string    `json:"id"`
		UserID    string    `json:"user_id"`
		Endpoint  string    `json:"endpoint"`
		Keys      Keys      `json:"keys"`
		CreatedAt time.Time `json:"created_at"`
	}

	Keys struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	}

	NewSubscription struct {
		Endpoint string `json:"endpoint" validate:"required,url"`
		Keys     Keys   `json:"keys" validate:"required"`
	}

	// Notification is the payload pushed to subscribers.
	Notification struct {
		Title string `json:"title"`
		Body  string `json:"body"`
		URL   string `json:"url,omitempty"`
	}

	Repository interface {
		// UpsertSubscription replaces any subscription with the same endpoint.
		UpsertSubscription(ctx context.Context, sub Subscription) (Subscription, error)
		DeleteSubscriptionByEndpoint(ctx context.Context, userID, endpoint string) error
		QuerySubscriptionsByUsers(ctx context.Context, userIDs ...string) ([]Subscription, error)
	}

	// Sender dispatches one message to one endpoint. Implementations report
	// a gone endpoint via ErrGone so the subscription can be pruned.
	Sender interface {
		Send(ctx context.Context, sub Subscription, n Notification) error
	}

	Service struct {
		repo   Repository
		sender Sender
		log    core.Logger
	}
)

// ErrGone marks an endpoint the push service no longer serves (HTTP 404/410).
var ErrGone = errors.New("subscription endpoint gone")

func (ns *NewSubscription) Validate() error {
	return core.Validate.Struct(ns)
}

func NewService(repo Repository, sender Sender, log core.Logger) *Service {
	return &Service{repo: repo, sender: sender, log: log}
}

func (svc *Service) Subscribe(ctx context.Context, ns NewSubscription, userID string) (Subscription, error) {
	sub := Subscription{
		ID:        uuid.NewString(),
		UserID:    userID,
		Endpoint:  ns.Endpoint,
		Keys:      ns.Keys,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.UpsertSubscription(ctx, sub)
}

func (svc *Service) Unsubscribe(ctx context.Context, userID, endpoint string) error {
	return svc.repo.DeleteSubscriptionByEndpoint(ctx, userID, endpoint)
}

// NotifyUsers pushes to all subscriptions of the given users. Dispatch is
// fire-and-forget: failures are logged, gone endpoints are pruned, and the
// caller never observes an error.
func (svc *Service) NotifyUsers(ctx context.Context, n Notification, userIDs ...string) {
	subs, err := svc.repo.QuerySubscriptionsByUsers(ctx, userIDs...)
	if err != nil {
		svc.log.Error("querying push subscriptions", err)
		return
	}
	for _, sub := range subs {
		sub := sub
		go func() {
			if err := svc.sender.Send(context.Background(), sub, n); err != nil {
				if errors.Is(err, ErrGone) {
					_ = svc.repo.DeleteSubscriptionByEndpoint(context.Background(), sub.UserID, sub.Endpoint)
					return
				}
				svc.log.Warn("sending push notification", err)
			}
		}()
	}
}
