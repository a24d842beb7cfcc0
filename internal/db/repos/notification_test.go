package repos

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/glrv/reviewd/internal/db/models"
)

type NotificationRepoTestSuite struct {
	suite.Suite
	DB            *gorm.DB
	Notifications *NotificationRepository
	Users         *UserRepository
	Repos         *RepositoryRepository
	ctx           context.Context
}

func (s *NotificationRepoTestSuite) SetupTest() {
	s.DB = newTestDB(s.T())
	s.Notifications = NewNotificationRepository(s.DB)
	s.Users = NewUserRepository(s.DB)
	s.Repos = NewRepositoryRepository(s.DB)
	s.ctx = context.Background()

	s.Require().NoError(s.Repos.Create(s.ctx, &models.Repository{ID: 42, Name: "group/project"}))
}

func TestNotificationRepoTestSuite(t *testing.T) {
	suite.Run(t, new(NotificationRepoTestSuite))
}

// addUser creates a user bound to repo 42 with the given settings.
func (s *NotificationRepoTestSuite) addUser(email string, settings models.NotificationSettings) uint {
	user := &models.User{Email: email}
	s.Require().NoError(s.Users.Create(s.ctx, user))
	s.Require().NoError(s.Repos.Bind(s.ctx, user.ID, 42))

	settings.UserID = user.ID
	s.Require().NoError(s.Notifications.UpsertSettings(s.ctx, &settings))
	return user.ID
}

func (s *NotificationRepoTestSuite) TestGetSettingsDefaultsWithoutRow() {
	settings, err := s.Notifications.GetSettings(s.ctx, 999)
	s.Require().NoError(err)
	s.Equal(uint(999), settings.UserID)
	s.Equal(models.RiskLevelEvent, settings.NotifyLevel)
	s.False(settings.EmailEnabled)
	s.False(settings.WebhookEnabled)
}

func (s *NotificationRepoTestSuite) TestUpsertSettingsReplaces() {
	userID := s.addUser("a@example.com", models.NotificationSettings{
		NotifyLevel:  models.RiskLevelBug,
		EmailEnabled: true,
	})

	s.Require().NoError(s.Notifications.UpsertSettings(s.ctx, &models.NotificationSettings{
		UserID:      userID,
		NotifyLevel: models.RiskLevelLeak,
	}))

	settings, err := s.Notifications.GetSettings(s.ctx, userID)
	s.Require().NoError(err)
	s.Equal(models.RiskLevelLeak, settings.NotifyLevel)
	s.False(settings.EmailEnabled)
}

func (s *NotificationRepoTestSuite) TestEmailRecipientsFilterByThreshold() {
	s.addUser("low@example.com", models.NotificationSettings{
		NotifyLevel:  models.RiskLevelEvent,
		EmailEnabled: true,
	})
	s.addUser("high@example.com", models.NotificationSettings{
		NotifyLevel:  models.RiskLevelLeak,
		EmailEnabled: true,
	})
	s.addUser("muted@example.com", models.NotificationSettings{
		NotifyLevel:  models.RiskLevelEvent,
		EmailEnabled: false,
	})

	emails, err := s.Notifications.EmailRecipients(s.ctx, 42, models.RiskLevelBug)
	s.Require().NoError(err)
	s.Equal([]string{"low@example.com"}, emails)

	emails, err = s.Notifications.EmailRecipients(s.ctx, 42, models.RiskLevelLeak)
	s.Require().NoError(err)
	s.ElementsMatch([]string{"low@example.com", "high@example.com"}, emails)
}

func (s *NotificationRepoTestSuite) TestEmailRecipientsScopedToRepository() {
	s.addUser("bound@example.com", models.NotificationSettings{EmailEnabled: true})

	emails, err := s.Notifications.EmailRecipients(s.ctx, 77, models.RiskLevelLeak)
	s.Require().NoError(err)
	s.Empty(emails)
}

func (s *NotificationRepoTestSuite) TestWebhookRecipients() {
	hookedID := s.addUser("hooked@example.com", models.NotificationSettings{
		NotifyLevel:    models.RiskLevelBug,
		WebhookEnabled: true,
		WebhookURL:     "https://example.com/hook",
		WebhookSecret:  "s3cret",
	})
	s.addUser("email-only@example.com", models.NotificationSettings{EmailEnabled: true})

	targets, err := s.Notifications.WebhookRecipients(s.ctx, 42, models.RiskLevelInsecure)
	s.Require().NoError(err)
	s.Require().Len(targets, 1)
	s.Equal(hookedID, targets[0].UserID)
	s.Equal("https://example.com/hook", targets[0].WebhookURL)
	s.Equal("s3cret", targets[0].WebhookSecret)

	// Below the recipient's threshold nothing fires.
	targets, err = s.Notifications.WebhookRecipients(s.ctx, 42, models.RiskLevelEvent)
	s.Require().NoError(err)
	s.Empty(targets)
}
