package notify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/chisomo-phiri/studyhub/internal/models"
	"github.com/chisomo-phiri/studyhub/internal/repositories"
)

const (
	deliveryTimeout = 30 * time.Second
	maxInFlight     = 8
)

// Sender delivers one message to one subscription. ErrGone means the endpoint
// should be pruned from the active set.
type Sender interface {
	Send(ctx context.Context, sub models.Subscription, msg Message) error
}

// Fanout delivers a message to every active subscription, dispatching by
// subscription kind. Delivery runs off the request path: a slow or dead
// subscriber can never delay or fail the upload that triggered it.
type Fanout struct {
	subs    *repositories.SubscriptionRepo
	senders map[string]Sender
}

func NewFanout(subs *repositories.SubscriptionRepo, senders map[string]Sender) *Fanout {
	return &Fanout{subs: subs, senders: senders}
}

// NotifyNewFile fires and forgets; errors never reach the caller.
func (f *Fanout) NotifyNewFile(rec *models.FileRecord) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
		defer cancel()
		f.Deliver(ctx, rec)
	}()
}

// Deliver sends to all active subscriptions with bounded concurrency. Failed
// sends are logged; permanently-invalid endpoints are removed.
func (f *Fanout) Deliver(ctx context.Context, rec *models.FileRecord) {
	subs, err := f.subs.ListActive(ctx)
	if err != nil {
		log.Printf("Notification fan-out: listing subscriptions failed: %v", err)
		return
	}
	if len(subs) == 0 {
		return
	}

	msg := Message{
		Title:    "StudyHub LUANAR",
		Body:     fmt.Sprintf("New %s notes uploaded for %s, semester %s", rec.Subject, rec.Program, rec.Semester),
		FileID:   rec.ID.String(),
		Program:  rec.Program,
		Semester: rec.Semester,
		Subject:  rec.Subject,
	}

	var g errgroup.Group
	g.SetLimit(maxInFlight)
	for _, sub := range subs {
		g.Go(func() error {
			sender, ok := f.senders[sub.Kind]
			if !ok {
				log.Printf("Notification fan-out: no sender for kind %q", sub.Kind)
				return nil
			}
			switch err := sender.Send(ctx, sub, msg); {
			case errors.Is(err, ErrGone):
				if derr := f.subs.DeleteByEndpoint(ctx, sub.Endpoint); derr != nil {
					log.Printf("Notification fan-out: pruning dead endpoint failed: %v", derr)
				}
			case err != nil:
				log.Printf("Notification fan-out: delivery to %q failed: %v", sub.Kind, err)
			}
			return nil
		})
	}
	_ = g.Wait()
}
