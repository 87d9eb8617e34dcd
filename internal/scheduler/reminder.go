package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/inferno/inferno-bank/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CardScanner reads the full card population
type CardScanner interface {
	ScanAllCards(ctx context.Context) ([]models.Card, error)
}

// ProfileLookup resolves a user identifier to a profile
type ProfileLookup interface {
	GetProfile(ctx context.Context, userUUID string) (*models.User, error)
}

// ReminderNotifier sends the pending-card reminder email
type ReminderNotifier interface {
	SendPendingReminder(to, name string, count int) error
}

// ReminderJob mails every user who still has PENDING cards. Failures
// for one user do not stop the sweep.
type ReminderJob struct {
	store    CardScanner
	profiles ProfileLookup
	notifier ReminderNotifier
	log      *logrus.Logger
}

// NewReminderJob creates the pending-card reminder sweep
func NewReminderJob(store CardScanner, profiles ProfileLookup, notifier ReminderNotifier, log *logrus.Logger) *ReminderJob {
	return &ReminderJob{store: store, profiles: profiles, notifier: notifier, log: log}
}

// Run executes one sweep
func (j *ReminderJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cards, err := j.store.ScanAllCards(ctx)
	if err != nil {
		j.log.Errorf("Reminder sweep failed to scan cards: %v", err)
		return
	}

	pendingByUser := make(map[string]int)
	for _, card := range cards {
		if card.Status == models.CardStatusPending {
			pendingByUser[card.UserID]++
		}
	}

	for userID, count := range pendingByUser {
		user, err := j.profiles.GetProfile(ctx, userID)
		if err != nil {
			j.log.Warnf("Reminder sweep could not resolve user %s: %v", userID, err)
			continue
		}
		if err := j.notifier.SendPendingReminder(user.Email, user.Name, count); err != nil {
			j.log.Errorf("Failed to send reminder to %s: %v", user.Email, err)
		}
	}

	j.log.Infof("Reminder sweep completed: %d users with pending cards", len(pendingByUser))
}

// Start schedules the job and starts the cron runner
func Start(schedule string, job *ReminderJob, log *logrus.Logger) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddJob(schedule, job); err != nil {
		return nil, fmt.Errorf("failed to schedule reminder job: %w", err)
	}
	c.Start()
	log.Infof("Pending-card reminder scheduled: %q", schedule)
	return c, nil
}
