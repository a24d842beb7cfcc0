package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"gopkg.in/gomail.v2"

	"github.com/glrv/reviewd/internal/config"
	"github.com/glrv/reviewd/internal/db/repos"
	"github.com/glrv/reviewd/internal/logger"
)

// Channel delivers a completed verdict to its recipients. Implementations
// resolve their own recipient set and gate on per-user thresholds.
type Channel interface {
	Name() string
	Send(ctx context.Context, repoID uint, verdict *Verdict) error
}

// Dispatcher fans a verdict out to every registered channel. Channels are an
// explicit slice assembled at startup; a failing channel never prevents the
// others from running.
type Dispatcher struct {
	channels []Channel
}

// NewDispatcher creates a dispatcher over the given channels
func NewDispatcher(channels ...Channel) *Dispatcher {
	return &Dispatcher{channels: channels}
}

// DispatchAll invokes every channel, isolating per-channel failures.
func (d *Dispatcher) DispatchAll(ctx context.Context, repoID uint, verdict *Verdict) {
	for _, ch := range d.channels {
		if err := d.send(ctx, ch, repoID, verdict); err != nil {
			logger.Errorf("%s notification failed for repo %d: %v", ch.Name(), repoID, err)
		}
	}
}

func (d *Dispatcher) send(ctx context.Context, ch Channel, repoID uint, verdict *Verdict) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("channel panicked: %v", r)
		}
	}()
	return ch.Send(ctx, repoID, verdict)
}

var reviewEmailTemplate = template.Must(template.New("review-email").Parse(`<!DOCTYPE html>
<html>
<body>
  <h1>Code review result</h1>
  <p><strong>Risk level:</strong> {{.RiskLevel}}</p>
  <div>
    <strong>Review:</strong>
    <pre>{{.Review}}</pre>
  </div>
  <p>Please address the findings to keep the codebase healthy.</p>
  <p><em>This message was sent automatically by the code review service.</em></p>
</body>
</html>
`))

// MailSender abstracts gomail delivery. *gomail.Dialer satisfies it.
type MailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailChannel sends one rendered message per repository-bound recipient
// whose threshold the verdict level satisfies.
type EmailChannel struct {
	enabled    bool
	from       string
	sender     MailSender
	recipients *repos.NotificationRepository
}

// NewEmailChannel creates the email channel from SMTP configuration
func NewEmailChannel(cfg *config.Config, recipients *repos.NotificationRepository) *EmailChannel {
	return &EmailChannel{
		enabled:    cfg.EnableEmail,
		from:       cfg.EmailFrom,
		sender:     gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		recipients: recipients,
	}
}

// Name implements Channel
func (c *EmailChannel) Name() string { return "email" }

// Send implements Channel
func (c *EmailChannel) Send(ctx context.Context, repoID uint, verdict *Verdict) error {
	if !c.enabled {
		return nil
	}

	emails, err := c.recipients.EmailRecipients(ctx, repoID, verdict.Level)
	if err != nil {
		return err
	}
	if len(emails) == 0 {
		return nil
	}

	body, err := renderReviewEmail(verdict)
	if err != nil {
		return err
	}

	for _, to := range emails {
		m := gomail.NewMessage()
		m.SetHeader("From", c.from)
		m.SetHeader("To", to)
		m.SetHeader("Subject", "GitLab code review report")
		m.SetBody("text/html", body)
		if err := c.sender.DialAndSend(m); err != nil {
			return fmt.Errorf("failed to send to %s: %w", to, err)
		}
	}
	return nil
}

func renderReviewEmail(verdict *Verdict) (string, error) {
	buf := new(bytes.Buffer)
	err := reviewEmailTemplate.Execute(buf, struct {
		RiskLevel string
		Review    string
	}{
		RiskLevel: strings.ToUpper(verdict.Level.String()),
		Review:    verdict.Info,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WebhookChannel posts the verdict to each recipient's configured URL,
// signed with their shared secret. Delivery failures are logged per
// recipient and never retried.
type WebhookChannel struct {
	recipients *repos.NotificationRepository
	http       *resty.Client
}

// NewWebhookChannel creates the outbound webhook channel
func NewWebhookChannel(recipients *repos.NotificationRepository) *WebhookChannel {
	return &WebhookChannel{
		recipients: recipients,
		http:       resty.New().SetTimeout(10 * time.Second),
	}
}

// Name implements Channel
func (c *WebhookChannel) Name() string { return "webhook" }

// Send implements Channel
func (c *WebhookChannel) Send(ctx context.Context, repoID uint, verdict *Verdict) error {
	targets, err := c.recipients.WebhookRecipients(ctx, repoID, verdict.Level)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return nil
	}

	reviewJSON, err := json.Marshal(verdict)
	if err != nil {
		return err
	}

	for _, target := range targets {
		if target.WebhookURL == "" || target.WebhookSecret == "" {
			logger.Warnf("user %d has webhook notifications enabled without url or secret", target.UserID)
			continue
		}
		_, err := c.http.R().
			SetContext(ctx).
			SetHeader("X-Webhook-Secret", target.WebhookSecret).
			SetBody(map[string]interface{}{
				"repo_id":     repoID,
				"review_json": string(reviewJSON),
			}).
			Post(target.WebhookURL)
		if err != nil {
			logger.Errorf("webhook delivery to user %d failed: %v", target.UserID, err)
		}
	}
	return nil
}
