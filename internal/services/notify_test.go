package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/glrv/reviewd/internal/db/models"
	"github.com/glrv/reviewd/internal/db/repos"
)

type recordingChannel struct {
	name  string
	calls int
	err   error
}

func (c *recordingChannel) Name() string { return c.name }

func (c *recordingChannel) Send(context.Context, uint, *Verdict) error {
	c.calls++
	return c.err
}

type panickyChannel struct{}

func (panickyChannel) Name() string                           { return "panicky" }
func (panickyChannel) Send(context.Context, uint, *Verdict) error { panic("channel bug") }

func TestDispatchAllIsolatesFailures(t *testing.T) {
	failing := &recordingChannel{name: "failing", err: errors.New("smtp down")}
	healthy := &recordingChannel{name: "healthy"}

	d := NewDispatcher(failing, panickyChannel{}, healthy)
	d.DispatchAll(context.Background(), 42, &Verdict{Info: "x", Level: models.RiskLevelBug})

	require.Equal(t, 1, failing.calls)
	require.Equal(t, 1, healthy.calls)
}

type fakeMailSender struct {
	mu   sync.Mutex
	sent []*gomail.Message
}

func (f *fakeMailSender) DialAndSend(m ...*gomail.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, m...)
	return nil
}

func TestEmailChannelSendsToMatchingRecipients(t *testing.T) {
	gdb := newServiceTestDB(t)
	users := repos.NewUserRepository(gdb)
	repoRepo := repos.NewRepositoryRepository(gdb)
	notifications := repos.NewNotificationRepository(gdb)
	ctx := context.Background()

	require.NoError(t, repoRepo.Create(ctx, &models.Repository{ID: 42, Name: "group/project"}))

	subscriber := &models.User{Email: "dev@example.com"}
	require.NoError(t, users.Create(ctx, subscriber))
	require.NoError(t, repoRepo.Bind(ctx, subscriber.ID, 42))
	require.NoError(t, notifications.UpsertSettings(ctx, &models.NotificationSettings{
		UserID:       subscriber.ID,
		NotifyLevel:  models.RiskLevelBug,
		EmailEnabled: true,
	}))

	sender := &fakeMailSender{}
	channel := &EmailChannel{
		enabled:    true,
		from:       "reviewd@example.com",
		sender:     sender,
		recipients: notifications,
	}

	// Below the threshold nothing is sent.
	require.NoError(t, channel.Send(ctx, 42, &Verdict{Info: "minor", Level: models.RiskLevelEvent}))
	require.Empty(t, sender.sent)

	require.NoError(t, channel.Send(ctx, 42, &Verdict{Info: "found a bug", Level: models.RiskLevelInsecure}))
	require.Len(t, sender.sent, 1)
	require.Equal(t, []string{"dev@example.com"}, sender.sent[0].GetHeader("To"))
}

func TestEmailChannelDisabledIsNoop(t *testing.T) {
	sender := &fakeMailSender{}
	channel := &EmailChannel{enabled: false, sender: sender}

	require.NoError(t, channel.Send(context.Background(), 42, &Verdict{Info: "x", Level: models.RiskLevelLeak}))
	require.Empty(t, sender.sent)
}

func TestWebhookChannelPostsSignedPayload(t *testing.T) {
	gdb := newServiceTestDB(t)
	users := repos.NewUserRepository(gdb)
	repoRepo := repos.NewRepositoryRepository(gdb)
	notifications := repos.NewNotificationRepository(gdb)
	ctx := context.Background()

	type delivery struct {
		secret string
		body   map[string]interface{}
	}
	received := make(chan delivery, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]interface{}
		_ = json.Unmarshal(raw, &body)
		received <- delivery{secret: r.Header.Get("X-Webhook-Secret"), body: body}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	require.NoError(t, repoRepo.Create(ctx, &models.Repository{ID: 42, Name: "group/project"}))
	subscriber := &models.User{Email: "dev@example.com"}
	require.NoError(t, users.Create(ctx, subscriber))
	require.NoError(t, repoRepo.Bind(ctx, subscriber.ID, 42))
	require.NoError(t, notifications.UpsertSettings(ctx, &models.NotificationSettings{
		UserID:         subscriber.ID,
		WebhookEnabled: true,
		WebhookURL:     srv.URL,
		WebhookSecret:  "s3cret",
	}))

	channel := NewWebhookChannel(notifications)
	require.NoError(t, channel.Send(ctx, 42, &Verdict{
		Info:       "leaked credential",
		Suggestion: json.RawMessage(`"rotate the key"`),
		Level:      models.RiskLevelLeak,
	}))

	got := <-received
	require.Equal(t, "s3cret", got.secret)
	require.EqualValues(t, 42, got.body["repo_id"])

	var verdict Verdict
	require.NoError(t, json.Unmarshal([]byte(got.body["review_json"].(string)), &verdict))
	require.Equal(t, "leaked credential", verdict.Info)
	require.Equal(t, models.RiskLevelLeak, verdict.Level)
}
