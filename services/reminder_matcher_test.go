package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/yeremiapane/projectdesk-app/models"
	"gorm.io/gorm"
)

func newTestMatcher(t *testing.T, db *gorm.DB, mailer Mailer, zones []string) *ReminderMatcher {
	t.Helper()
	calc, err := NewTimeSlotCalculator(zones)
	assert.NoError(t, err)
	store := NewNotificationStore(db)
	resolver := NewRecipientResolver(db)
	return NewReminderMatcher(db, store, resolver, mailer, calc)
}

// seedReminderScenario -> satu notifikasi unread untuk recipient di
// project yang sama dengan actor.
func seedReminderScenario(t *testing.T, db *gorm.DB, recipient *models.User) *models.Notification {
	t.Helper()
	actor := seedUser(t, db, "actor-"+recipient.Name)
	project := seedProject(t, db, "proj-"+recipient.Name, actor.ID, recipient.ID)
	wp := seedWorkPackage(t, db, project.ID, actor.ID)
	journal := seedJournal(t, db, wp.ID, actor.ID, 2, "an update")

	store := NewNotificationStore(db)
	notif, err := store.Create(recipient.ID, models.ReasonWatched, models.ResourceTypeJournal, journal.ID, actor.ID)
	assert.NoError(t, err)

	// Mundurkan created_at supaya berada sebelum window run yang
	// dipakai test.
	createdAt := time.Date(2021, 5, 1, 12, 0, 0, 0, time.UTC)
	assert.NoError(t, db.Model(notif).Update("created_at", createdAt).Error)
	notif.CreatedAt = createdAt
	return notif
}

func TestReminderMatcherSendsConfiguredSlot(t *testing.T) {
	db := setupTestDB(t)
	mailer := newRecordingMailer()
	matcher := newTestMatcher(t, db, mailer, []string{"UTC", "Pacific/Honolulu"})

	recipient := seedUser(t, db, "hawaii")
	config := models.UserReminderConfig{
		UserID:   recipient.ID,
		Enabled:  true,
		TimeZone: "Pacific/Honolulu",
	}
	assert.NoError(t, config.SetTimes([]string{"08:00"}))
	assert.NoError(t, db.Create(&config).Error)

	notif := seedReminderScenario(t, db, recipient)

	// 18:00 UTC == 08:00 di Honolulu.
	earliest := time.Date(2021, 5, 4, 17, 50, 0, 0, time.UTC)
	now := time.Date(2021, 5, 4, 18, 5, 0, 0, time.UTC)
	assert.NoError(t, matcher.Run(earliest, now))

	assert.Equal(t, 1, mailer.digestCalls[recipient.ID])
	assert.Len(t, mailer.digests[recipient.ID], 1)

	var stored models.Notification
	assert.NoError(t, db.First(&stored, notif.ID).Error)
	assert.NotNil(t, stored.MailDigestSentAt)

	// Run berikutnya tidak mengirim ulang.
	assert.NoError(t, matcher.Run(now, now.Add(15*time.Minute)))
	assert.Equal(t, 1, mailer.digestCalls[recipient.ID])
}

func TestReminderMatcherDefaultSlotFallback(t *testing.T) {
	db := setupTestDB(t)
	mailer := newRecordingMailer()
	matcher := newTestMatcher(t, db, mailer, []string{"UTC"})

	// Tanpa konfigurasi sama sekali: default 08:00 UTC, dan hanya itu.
	recipient := seedUser(t, db, "unconfigured")
	seedReminderScenario(t, db, recipient)

	earliest := time.Date(2021, 5, 4, 8, 46, 0, 0, time.UTC)
	now := time.Date(2021, 5, 4, 9, 1, 0, 0, time.UTC)
	assert.NoError(t, matcher.Run(earliest, now))
	assert.Zero(t, mailer.digestCalls[recipient.ID])

	earliest = time.Date(2021, 5, 4, 7, 46, 0, 0, time.UTC)
	now = time.Date(2021, 5, 4, 8, 1, 0, 0, time.UTC)
	assert.NoError(t, matcher.Run(earliest, now))
	assert.Equal(t, 1, mailer.digestCalls[recipient.ID])
}

func TestReminderMatcherDefaultUsesUserTimeZone(t *testing.T) {
	db := setupTestDB(t)
	mailer := newRecordingMailer()
	matcher := newTestMatcher(t, db, mailer, []string{"UTC", "Europe/Berlin"})

	// Tanpa UserReminderConfig tapi dengan zona user terisi: default
	// 08:00 berlaku di zona user, bukan UTC.
	recipient := seedUser(t, db, "berlin-default")
	assert.NoError(t, db.Model(recipient).Update("time_zone", "Europe/Berlin").Error)

	seedReminderScenario(t, db, recipient)

	// 08:00 UTC bukan slot user ini.
	earliest := time.Date(2021, 5, 4, 7, 46, 0, 0, time.UTC)
	now := time.Date(2021, 5, 4, 8, 1, 0, 0, time.UTC)
	assert.NoError(t, matcher.Run(earliest, now))
	assert.Zero(t, mailer.digestCalls[recipient.ID])

	// 4 Mei 2021: Berlin di CEST (UTC+2), 08:00 lokal == 06:00 UTC.
	earliest = time.Date(2021, 5, 4, 5, 46, 0, 0, time.UTC)
	now = time.Date(2021, 5, 4, 6, 1, 0, 0, time.UTC)
	assert.NoError(t, matcher.Run(earliest, now))
	assert.Equal(t, 1, mailer.digestCalls[recipient.ID])
}

func TestReminderMatcherDisabledSuppressesSending(t *testing.T) {
	db := setupTestDB(t)
	mailer := newRecordingMailer()
	matcher := newTestMatcher(t, db, mailer, []string{"UTC"})

	recipient := seedUser(t, db, "optout")
	config := models.UserReminderConfig{UserID: recipient.ID, Enabled: false}
	assert.NoError(t, config.SetTimes([]string{"08:00"}))
	assert.NoError(t, db.Create(&config).Error)

	seedReminderScenario(t, db, recipient)

	earliest := time.Date(2021, 5, 4, 7, 46, 0, 0, time.UTC)
	now := time.Date(2021, 5, 4, 8, 1, 0, 0, time.UTC)
	assert.NoError(t, matcher.Run(earliest, now))
	assert.Zero(t, mailer.digestCalls[recipient.ID])
}

func TestReminderMatcherEnabledWithoutTimesUsesDefault(t *testing.T) {
	db := setupTestDB(t)
	mailer := newRecordingMailer()
	matcher := newTestMatcher(t, db, mailer, []string{"UTC", "Europe/Berlin"})

	recipient := seedUser(t, db, "berlin")
	config := models.UserReminderConfig{
		UserID:   recipient.ID,
		Enabled:  true,
		TimeZone: "Europe/Berlin",
	}
	assert.NoError(t, db.Create(&config).Error)

	seedReminderScenario(t, db, recipient)

	// 4 Mei 2021: Berlin di CEST (UTC+2), 08:00 lokal == 06:00 UTC.
	earliest := time.Date(2021, 5, 4, 5, 46, 0, 0, time.UTC)
	now := time.Date(2021, 5, 4, 6, 1, 0, 0, time.UTC)
	assert.NoError(t, matcher.Run(earliest, now))
	assert.Equal(t, 1, mailer.digestCalls[recipient.ID])
}

func TestReminderMatcherSkipsReadNotifications(t *testing.T) {
	db := setupTestDB(t)
	mailer := newRecordingMailer()
	matcher := newTestMatcher(t, db, mailer, []string{"UTC"})

	recipient := seedUser(t, db, "reader")
	notif := seedReminderScenario(t, db, recipient)

	store := NewNotificationStore(db)
	assert.NoError(t, store.MarkRead(notif.ID, recipient.ID))

	earliest := time.Date(2021, 5, 4, 7, 46, 0, 0, time.UTC)
	now := time.Date(2021, 5, 4, 8, 1, 0, 0, time.UTC)
	assert.NoError(t, matcher.Run(earliest, now))

	// Tidak ada notifikasi eligible: digest tidak dikirim sama sekali.
	assert.Zero(t, mailer.digestCalls[recipient.ID])
}

func TestReminderMatcherPropagatesRangeError(t *testing.T) {
	db := setupTestDB(t)
	mailer := newRecordingMailer()
	matcher := newTestMatcher(t, db, mailer, []string{"UTC"})

	now := time.Date(2021, 5, 4, 8, 0, 0, 0, time.UTC)
	err := matcher.Run(now.Add(-25*time.Hour), now)
	assert.ErrorIs(t, err, ErrInvalidSlotRange)
}

func TestDigestSummaryHeadline(t *testing.T) {
	notifs := []models.Notification{
		{Reason: models.ReasonMentioned},
		{Reason: models.ReasonWatched},
		{Reason: models.ReasonInvolved},
	}
	// Mention mendorong headline meski ada tiga notifikasi.
	assert.Equal(t, "1 unread notification including a mention", DigestSummary(notifs))

	assert.Equal(t, "2 unread notifications including 2 mentions", DigestSummary([]models.Notification{
		{Reason: models.ReasonMentioned},
		{Reason: models.ReasonMentioned},
		{Reason: models.ReasonWatched},
	}))

	assert.Equal(t, "3 unread notifications", DigestSummary([]models.Notification{
		{Reason: models.ReasonWatched},
		{Reason: models.ReasonWatched},
		{Reason: models.ReasonInvolved},
	}))
}
