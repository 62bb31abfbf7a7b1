package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bossbruno/quick-bundles-notifications/internal/models"
	"github.com/bossbruno/quick-bundles-notifications/pkg/metrics"
)

type fakeEmailSender struct {
	sent []string
	err  error
}

func (f *fakeEmailSender) Send(_ context.Context, from, to, subject, htmlBody string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, subject)
	return nil
}

type routerFixture struct {
	router *EventRouter
	disp   *dispatcherFixture
	email  *fakeEmailSender
}

func newRouterFixture() *routerFixture {
	disp := newDispatcherFixture()
	email := &fakeEmailSender{}
	reports := NewReportNotifier(email, "no-reply@test", "ops@test", metrics.New(), testLogger())
	return &routerFixture{
		router: NewEventRouter(disp.dispatcher, reports, testLogger()),
		disp:   disp,
		email:  email,
	}
}

func mustJSON(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestRouterDispatchesNotificationCreation(t *testing.T) {
	f := newRouterFixture()
	n := pendingNotification("n-1", "tok-A")
	f.disp.store.records["n-1"] = n

	env := &models.ChangeEnvelope{
		Collection: models.CollectionNotifications,
		DocumentID: "n-1",
		Kind:       models.ChangeCreated,
		After:      mustJSON(t, n),
	}

	require.NoError(t, f.router.HandleChange(context.Background(), env))
	assert.Equal(t, 1, f.disp.push.calls)
	assert.Equal(t, models.StatusSent, f.disp.store.records["n-1"].Status)
}

func TestRouterDispatchesChatStatusTransition(t *testing.T) {
	f := newRouterFixture()
	f.disp.profiles.users["u1"] = &models.User{ID: "u1", DeviceToken: "tok-buyer"}

	env := &models.ChangeEnvelope{
		Collection: models.CollectionChats,
		DocumentID: "chat-1",
		Kind:       models.ChangeUpdated,
		ActorID:    "v1",
		Before:     mustJSON(t, transitionChat("processing")),
		After:      mustJSON(t, transitionChat("completed")),
	}

	require.NoError(t, f.router.HandleChange(context.Background(), env))
	assert.Equal(t, 1, f.disp.push.calls)
	assert.Equal(t, "tok-buyer", f.disp.push.lastMsg.Token)
}

func TestRouterSendsReportEmail(t *testing.T) {
	f := newRouterFixture()

	env := &models.ChangeEnvelope{
		Collection: models.CollectionReports,
		DocumentID: "r-1",
		Kind:       models.ChangeCreated,
		After: mustJSON(t, &models.Report{
			ID:         "r-1",
			ReporterID: "u-9",
			Reason:     "scam listing",
		}),
	}

	require.NoError(t, f.router.HandleChange(context.Background(), env))
	require.Len(t, f.email.sent, 1)
	assert.Equal(t, "New report: scam listing", f.email.sent[0])
	assert.Zero(t, f.disp.push.calls)
}

func TestRouterIgnoresUnrelatedEvents(t *testing.T) {
	f := newRouterFixture()

	tests := []*models.ChangeEnvelope{
		{Collection: "users", Kind: models.ChangeUpdated, After: json.RawMessage(`{}`)},
		{Collection: models.CollectionNotifications, Kind: models.ChangeUpdated, After: json.RawMessage(`{}`)},
		{Collection: models.CollectionChats, Kind: models.ChangeCreated, After: json.RawMessage(`{}`)},
	}
	for _, env := range tests {
		require.NoError(t, f.router.HandleChange(context.Background(), env))
	}
	assert.Zero(t, f.disp.push.calls)
	assert.Empty(t, f.email.sent)
}

func TestRouterRejectsMalformedImages(t *testing.T) {
	f := newRouterFixture()

	tests := []struct {
		name string
		env  *models.ChangeEnvelope
	}{
		{
			name: "bad notification json",
			env: &models.ChangeEnvelope{
				Collection: models.CollectionNotifications,
				Kind:       models.ChangeCreated,
				After:      json.RawMessage(`{broken`),
			},
		},
		{
			name: "notification without id",
			env: &models.ChangeEnvelope{
				Collection: models.CollectionNotifications,
				Kind:       models.ChangeCreated,
				After:      json.RawMessage(`{"status":"pending"}`),
			},
		},
		{
			name: "chat update without before image",
			env: &models.ChangeEnvelope{
				Collection: models.CollectionChats,
				DocumentID: "chat-1",
				Kind:       models.ChangeUpdated,
				After:      json.RawMessage(`{"status":"completed"}`),
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := f.router.HandleChange(context.Background(), tc.env)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrBadEvent)
		})
	}
	assert.Zero(t, f.disp.push.calls)
}

func TestReportNotifierWithoutRecipientIsNoOp(t *testing.T) {
	email := &fakeEmailSender{}
	notifier := NewReportNotifier(email, "no-reply@test", "", metrics.New(), testLogger())

	err := notifier.Notify(context.Background(), &models.Report{ID: "r-1"})

	require.NoError(t, err)
	assert.Empty(t, email.sent)
}
