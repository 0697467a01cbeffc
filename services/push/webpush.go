package pushsvc

import (
	"context"
	"encoding/json"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/pkg/errors"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/push"
)

type webpushSender struct {
	vapidPublicKey  string
	vapidPrivateKey string
	subscriber      string
}

var _ push.Sender = (*webpushSender)(nil)

func NewWebpushSender() push.Sender {
	return &webpushSender{
		vapidPublicKey:  core.Conf.VAPIDPublicKey,
		vapidPrivateKey: core.Conf.VAPIDPrivateKey,
		subscriber:      core.Conf.DefaultFromEmail,
	}
}

func (s webpushSender) Send(ctx context.Context, sub push.Subscription, n push.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return errors.Wrap(err, "marshaling notification")
	}

	res, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.Keys.P256dh,
			Auth:   sub.Keys.Auth,
		},
	}, &webpush.Options{
		Subscriber:      s.subscriber,
		VAPIDPublicKey:  s.vapidPublicKey,
		VAPIDPrivateKey: s.vapidPrivateKey,
		TTL:             3600,
	})
	if err != nil {
		return errors.Wrap(err, "sending notification")
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound || res.StatusCode == http.StatusGone:
		return push.ErrGone
	case res.StatusCode >= http.StatusBadRequest:
		return errors.Errorf("push endpoint returned status %d", res.StatusCode)
	}
	return nil
}
