//go:build unit

package worker

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"mentorhub-notify/internal/domain/notification"
	"mentorhub-notify/internal/infra"
	"mentorhub-notify/internal/pkg/clock"
	"mentorhub-notify/internal/pkg/errs"
	"mentorhub-notify/internal/queue"
	"mentorhub-notify/internal/sender"
	"mentorhub-notify/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecipients struct {
	views map[uuid.UUID]*queries.RecipientView
	err   error
}

func (f *fakeRecipients) FindByID(_ context.Context, id uuid.UUID) (*queries.RecipientView, error) {
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.views[id]
	if !ok {
		return nil, infra.WrapRepoErr("recipient not found", errors.New("no rows"), infra.KindNotFound)
	}
	return v, nil
}

type fakeRecords struct {
	created []*notification.Record
	err     error
}

func (f *fakeRecords) CreateRecord(_ context.Context, rec *notification.Record) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, rec)
	return nil
}

type fakeEmailSender struct {
	sent []sender.Email
	err  error
}

func (f *fakeEmailSender) Send(_ context.Context, msg sender.Email) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakeSMSSender struct {
	sent []sender.SMS
	err  error
}

func (f *fakeSMSSender) Send(_ context.Context, msg sender.SMS) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakePush struct {
	online bool
	pushed []string
}

func (f *fakePush) IsOnline(uuid.UUID) bool { return f.online }

func (f *fakePush) PushToUser(_ uuid.UUID, event string, _ any) {
	f.pushed = append(f.pushed, event)
}

type notificationFixture struct {
	recipients *fakeRecipients
	records    *fakeRecords
	email      *fakeEmailSender
	sms        *fakeSMSSender
	push       *fakePush
	handler    *NotificationHandler
	recipient  uuid.UUID
}

func newNotificationFixture() *notificationFixture {
	recipientID := uuid.New()
	email := "mentee@example.com"
	phone := "3001234567"

	f := &notificationFixture{
		recipients: &fakeRecipients{views: map[uuid.UUID]*queries.RecipientView{
			recipientID: {ID: recipientID, Email: &email, Phone: &phone, DisplayName: "Laura Gómez"},
		}},
		records:   &fakeRecords{},
		email:     &fakeEmailSender{},
		sms:       &fakeSMSSender{},
		push:      &fakePush{online: true},
		recipient: recipientID,
	}
	f.handler = NewNotificationHandler(
		f.recipients, f.records, f.email, f.sms, f.push,
		clock.NewMockClock(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)),
		time.Second,
		slog.New(slog.DiscardHandler),
	)
	return f
}

func (f *notificationFixture) job(t *testing.T, channels ...notification.Channel) *queue.Job {
	t.Helper()
	p := notification.Payload{
		RecipientUserID: f.recipient,
		Type:            notification.TypeSessionReminder,
		Title:           "Recordatorio de mentoría",
		Body:            "Tu mentoría con Carlos es mañana",
		Channels:        channels,
	}
	raw, err := p.Marshal()
	require.NoError(t, err)
	return &queue.Job{ID: uuid.New(), Queue: queue.Notifications, Payload: raw, MaxAttempts: 3}
}

func TestNotificationHandler_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("all channels succeed", func(t *testing.T) {
		f := newNotificationFixture()
		err := f.handler.Handle(ctx, f.job(t, notification.ChannelRealtime, notification.ChannelEmail, notification.ChannelSMS))
		require.NoError(t, err)

		require.Len(t, f.records.created, 1)
		rec := f.records.created[0]
		assert.Equal(t, notification.StatusSent, rec.Status)
		assert.Equal(t, f.recipient, rec.RecipientUserID)
		assert.Len(t, rec.Outcomes, 3)

		require.Len(t, f.email.sent, 1)
		assert.Equal(t, "mentee@example.com", f.email.sent[0].To)
		assert.Equal(t, "Recordatorio de mentoría", f.email.sent[0].Subject)

		require.Len(t, f.sms.sent, 1)
		assert.Equal(t, "+573001234567", f.sms.sent[0].To)

		assert.Equal(t, []string{"notification"}, f.push.pushed)
	})

	t.Run("one channel failing does not stop the others", func(t *testing.T) {
		f := newNotificationFixture()
		f.email.err = errs.Mark(errors.New("smtp 421"), errs.ErrTransient)

		err := f.handler.Handle(ctx, f.job(t, notification.ChannelEmail, notification.ChannelSMS))
		require.Error(t, err)
		assert.False(t, errs.Is(err, errs.ErrPermanent))

		require.Len(t, f.records.created, 1)
		rec := f.records.created[0]
		assert.Equal(t, notification.StatusPartial, rec.Status)
		assert.False(t, rec.Outcomes[notification.ChannelEmail].Succeeded)
		assert.True(t, rec.Outcomes[notification.ChannelSMS].Succeeded)
		require.Len(t, f.sms.sent, 1)
	})

	t.Run("offline recipient on realtime-only is failed permanently", func(t *testing.T) {
		f := newNotificationFixture()
		f.push.online = false

		err := f.handler.Handle(ctx, f.job(t, notification.ChannelRealtime))
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.ErrPermanent))

		require.Len(t, f.records.created, 1)
		rec := f.records.created[0]
		assert.Equal(t, notification.StatusFailed, rec.Status)
		assert.False(t, rec.Outcomes[notification.ChannelRealtime].Attempted)
		assert.Empty(t, f.push.pushed)
	})

	t.Run("missing contact info is skipped, not failed", func(t *testing.T) {
		f := newNotificationFixture()
		f.recipients.views[f.recipient].Email = nil
		f.recipients.views[f.recipient].Phone = nil

		err := f.handler.Handle(ctx, f.job(t, notification.ChannelRealtime, notification.ChannelEmail, notification.ChannelSMS))
		require.NoError(t, err)

		rec := f.records.created[0]
		assert.Equal(t, notification.StatusSent, rec.Status)
		assert.False(t, rec.Outcomes[notification.ChannelEmail].Attempted)
		assert.False(t, rec.Outcomes[notification.ChannelSMS].Attempted)
		assert.Empty(t, f.email.sent)
		assert.Empty(t, f.sms.sent)
	})

	t.Run("unknown recipient is permanent", func(t *testing.T) {
		f := newNotificationFixture()
		f.recipients.views = map[uuid.UUID]*queries.RecipientView{}

		err := f.handler.Handle(ctx, f.job(t, notification.ChannelEmail))
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.ErrPermanent))
		assert.True(t, errs.Is(err, errs.ErrRecipientNotFound))
		assert.Empty(t, f.records.created)
	})

	t.Run("malformed payload is permanent", func(t *testing.T) {
		f := newNotificationFixture()
		job := &queue.Job{ID: uuid.New(), Queue: queue.Notifications, Payload: []byte(`{not json`)}

		err := f.handler.Handle(ctx, job)
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.ErrPermanent))
	})

	t.Run("transient provider failure retries", func(t *testing.T) {
		f := newNotificationFixture()
		f.sms.err = errs.Mark(errors.New("twilio 503"), errs.ErrTransient)

		err := f.handler.Handle(ctx, f.job(t, notification.ChannelSMS))
		require.Error(t, err)
		assert.False(t, errs.Is(err, errs.ErrPermanent))

		rec := f.records.created[0]
		assert.Equal(t, notification.StatusFailed, rec.Status)
	})

	t.Run("permanent provider failure does not retry", func(t *testing.T) {
		f := newNotificationFixture()
		f.sms.err = errs.Mark(errors.New("invalid destination"), errs.ErrPermanent)

		err := f.handler.Handle(ctx, f.job(t, notification.ChannelSMS))
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.ErrPermanent))
	})

	t.Run("record persistence failure retries the whole job", func(t *testing.T) {
		f := newNotificationFixture()
		f.records.err = infra.WrapRepoErr("insert failed", errors.New("connection reset"))

		err := f.handler.Handle(ctx, f.job(t, notification.ChannelEmail))
		require.Error(t, err)
		assert.False(t, errs.Is(err, errs.ErrPermanent))
	})
}
