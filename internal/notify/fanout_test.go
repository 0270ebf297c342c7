package notify

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/chisomo-phiri/studyhub/internal/models"
	"github.com/chisomo-phiri/studyhub/internal/repositories"
)

type scriptedSender struct {
	mu   sync.Mutex
	errs map[string]error // by endpoint
	sent []string
}

func (s *scriptedSender) Send(ctx context.Context, sub models.Subscription, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sub.Endpoint)
	return s.errs[sub.Endpoint]
}

func newSubsRepo(t *testing.T) *repositories.SubscriptionRepo {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "notify.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, repositories.Migrate(db))
	return repositories.NewSubscriptionRepo(db)
}

func record() *models.FileRecord {
	return &models.FileRecord{
		ID:       uuid.New(),
		Program:  "Basics",
		Semester: "1",
		Subject:  "Math",
	}
}

func TestDeliverSendsToAllKinds(t *testing.T) {
	subs := newSubsRepo(t)
	ctx := context.Background()

	require.NoError(t, subs.Save(ctx, &models.Subscription{ID: uuid.New(), Kind: models.SubscriptionFCM, Endpoint: "fcm-1"}))
	require.NoError(t, subs.Save(ctx, &models.Subscription{ID: uuid.New(), Kind: models.SubscriptionWebPush, Endpoint: "push-1"}))

	fcm := &scriptedSender{}
	push := &scriptedSender{}
	f := NewFanout(subs, map[string]Sender{
		models.SubscriptionFCM:     fcm,
		models.SubscriptionWebPush: push,
	})

	f.Deliver(ctx, record())

	assert.Equal(t, []string{"fcm-1"}, fcm.sent)
	assert.Equal(t, []string{"push-1"}, push.sent)
}

func TestDeliverPrunesGoneEndpoints(t *testing.T) {
	subs := newSubsRepo(t)
	ctx := context.Background()

	require.NoError(t, subs.Save(ctx, &models.Subscription{ID: uuid.New(), Kind: models.SubscriptionFCM, Endpoint: "alive"}))
	require.NoError(t, subs.Save(ctx, &models.Subscription{ID: uuid.New(), Kind: models.SubscriptionFCM, Endpoint: "gone"}))

	sender := &scriptedSender{errs: map[string]error{"gone": ErrGone}}
	f := NewFanout(subs, map[string]Sender{models.SubscriptionFCM: sender})

	f.Deliver(ctx, record())

	active, err := subs.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "alive", active[0].Endpoint)
}

func TestDeliverKeepsTransientFailures(t *testing.T) {
	subs := newSubsRepo(t)
	ctx := context.Background()

	require.NoError(t, subs.Save(ctx, &models.Subscription{ID: uuid.New(), Kind: models.SubscriptionFCM, Endpoint: "flaky"}))

	sender := &scriptedSender{errs: map[string]error{"flaky": errors.New("timeout")}}
	f := NewFanout(subs, map[string]Sender{models.SubscriptionFCM: sender})

	// A transient failure is logged, not pruned and not surfaced.
	f.Deliver(ctx, record())

	active, err := subs.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestDeliverSkipsUnknownKinds(t *testing.T) {
	subs := newSubsRepo(t)
	ctx := context.Background()

	require.NoError(t, subs.Save(ctx, &models.Subscription{ID: uuid.New(), Kind: models.SubscriptionWebPush, Endpoint: "push-1"}))

	// No sender registered for webpush in this deployment.
	f := NewFanout(subs, map[string]Sender{})
	f.Deliver(ctx, record())

	active, err := subs.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestNotifyNewFileIsAsynchronous(t *testing.T) {
	subs := newSubsRepo(t)
	ctx := context.Background()

	require.NoError(t, subs.Save(ctx, &models.Subscription{ID: uuid.New(), Kind: models.SubscriptionFCM, Endpoint: "fcm-1"}))

	sender := &scriptedSender{}
	f := NewFanout(subs, map[string]Sender{models.SubscriptionFCM: sender})

	f.NotifyNewFile(record())

	// Fire-and-forget: delivery lands shortly after, off the calling path.
	require.Eventually(t, func() bool {
		sender.mu.Lock()
		defer sender.mu.Unlock()
		return len(sender.sent) == 1
	}, 2*time.Second, 10*time.Millisecond)
}
