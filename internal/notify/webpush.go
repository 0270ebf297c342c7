package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/chisomo-phiri/studyhub/internal/config"
	"github.com/chisomo-phiri/studyhub/internal/models"
)

// WebPushSender delivers over the Web Push protocol with VAPID keys.
type WebPushSender struct {
	opts webpush.Options
}

func NewWebPush(cfg config.PushConfig) *WebPushSender {
	return &WebPushSender{
		opts: webpush.Options{
			Subscriber:      cfg.VAPIDSubscriber,
			VAPIDPublicKey:  cfg.VAPIDPublicKey,
			VAPIDPrivateKey: cfg.VAPIDPrivateKey,
			TTL:             3600,
		},
	}
}

func (s *WebPushSender) Send(ctx context.Context, sub models.Subscription, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &s.opts)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return ErrGone
	case resp.StatusCode >= 400:
		return fmt.Errorf("web push: status %d", resp.StatusCode)
	}
	return nil
}
