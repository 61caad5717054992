package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/yeremiapane/projectdesk-app/models"
)

func TestCreateIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	store := NewNotificationStore(db)

	actor := seedUser(t, db, "actor")
	recipient := seedUser(t, db, "recipient")

	first, err := store.Create(recipient.ID, models.ReasonWatched, models.ResourceTypeJournal, 1, actor.ID)
	assert.NoError(t, err)

	second, err := store.Create(recipient.ID, models.ReasonWatched, models.ResourceTypeJournal, 1, actor.ID)
	assert.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	db.Model(&models.Notification{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestCreateSupersedesStaleUnread(t *testing.T) {
	db := setupTestDB(t)
	store := NewNotificationStore(db)

	actor := seedUser(t, db, "actor")
	recipient := seedUser(t, db, "recipient")

	stale, err := store.Create(recipient.ID, models.ReasonWatched, models.ResourceTypeJournal, 1, actor.ID)
	assert.NoError(t, err)

	// Event baru untuk resource yang sama dengan reason lebih penting
	// menggantikan notifikasi unread yang lama.
	fresh, err := store.Create(recipient.ID, models.ReasonMentioned, models.ResourceTypeJournal, 1, actor.ID)
	assert.NoError(t, err)
	assert.NotEqual(t, stale.ID, fresh.ID)

	var count int64
	db.Model(&models.Notification{}).Count(&count)
	assert.EqualValues(t, 1, count)

	var remaining models.Notification
	assert.NoError(t, db.First(&remaining).Error)
	assert.Equal(t, models.ReasonMentioned, remaining.Reason)
}

func TestCreateKeepsReadNotifications(t *testing.T) {
	db := setupTestDB(t)
	store := NewNotificationStore(db)

	actor := seedUser(t, db, "actor")
	recipient := seedUser(t, db, "recipient")

	read, err := store.Create(recipient.ID, models.ReasonWatched, models.ResourceTypeJournal, 1, actor.ID)
	assert.NoError(t, err)
	assert.NoError(t, store.MarkRead(read.ID, recipient.ID))

	// Notifikasi yang sudah dibaca tidak dianggap basi.
	_, err = store.Create(recipient.ID, models.ReasonMentioned, models.ResourceTypeJournal, 1, actor.ID)
	assert.NoError(t, err)

	var count int64
	db.Model(&models.Notification{}).Count(&count)
	assert.EqualValues(t, 2, count)
}

func TestMarkMailSentIsMonotonic(t *testing.T) {
	db := setupTestDB(t)
	store := NewNotificationStore(db)

	actor := seedUser(t, db, "actor")
	recipient := seedUser(t, db, "recipient")

	notif, err := store.Create(recipient.ID, models.ReasonWatched, models.ResourceTypeJournal, 1, actor.ID)
	assert.NoError(t, err)

	firstAt := time.Date(2021, 5, 3, 10, 0, 0, 0, time.UTC)
	assert.NoError(t, store.MarkMailSent(notif.ID, firstAt))
	// Panggilan kedua no-op, timestamp pertama yang menang.
	assert.NoError(t, store.MarkMailSent(notif.ID, firstAt.Add(time.Hour)))

	var stored models.Notification
	assert.NoError(t, db.First(&stored, notif.ID).Error)
	assert.NotNil(t, stored.MailSentAt)
	assert.True(t, stored.MailSentAt.Equal(firstAt))
}

func TestUnsentMailFor(t *testing.T) {
	db := setupTestDB(t)
	store := NewNotificationStore(db)

	actor := seedUser(t, db, "actor")
	recipient := seedUser(t, db, "recipient")

	sent, err := store.Create(recipient.ID, models.ReasonWatched, models.ResourceTypeJournal, 1, actor.ID)
	assert.NoError(t, err)
	unsent, err := store.Create(recipient.ID, models.ReasonMentioned, models.ResourceTypeJournal, 2, actor.ID)
	assert.NoError(t, err)

	assert.NoError(t, store.MarkMailSent(sent.ID, time.Now()))

	notifs, err := store.UnsentMailFor([]uint{sent.ID, unsent.ID})
	assert.NoError(t, err)
	assert.Len(t, notifs, 1)
	assert.Equal(t, unsent.ID, notifs[0].ID)

	// Payload kosong adalah no-op yang valid.
	notifs, err = store.UnsentMailFor(nil)
	assert.NoError(t, err)
	assert.Empty(t, notifs)
}

func TestUnsentRemindersBefore(t *testing.T) {
	db := setupTestDB(t)
	store := NewNotificationStore(db)

	actor := seedUser(t, db, "actor")
	recipient := seedUser(t, db, "recipient")
	other := seedUser(t, db, "other")

	eligible, err := store.Create(recipient.ID, models.ReasonWatched, models.ResourceTypeJournal, 1, actor.ID)
	assert.NoError(t, err)

	readNotif, err := store.Create(recipient.ID, models.ReasonWatched, models.ResourceTypeJournal, 2, actor.ID)
	assert.NoError(t, err)
	assert.NoError(t, store.MarkRead(readNotif.ID, recipient.ID))

	digested, err := store.Create(recipient.ID, models.ReasonWatched, models.ResourceTypeJournal, 3, actor.ID)
	assert.NoError(t, err)
	assert.NoError(t, store.MarkDigestSent(digested.ID, time.Now()))

	_, err = store.Create(other.ID, models.ReasonWatched, models.ResourceTypeJournal, 4, actor.ID)
	assert.NoError(t, err)

	// Hanya recipient yang diminta, hanya yang unread dan belum masuk
	// digest.
	grouped, err := store.UnsentRemindersBefore([]uint{recipient.ID}, time.Now().Add(time.Minute))
	assert.NoError(t, err)
	assert.Len(t, grouped, 1)
	assert.Len(t, grouped[recipient.ID], 1)
	assert.Equal(t, eligible.ID, grouped[recipient.ID][0].ID)

	// Kandidat kosong -> hasil kosong, bukan error.
	grouped, err = store.UnsentRemindersBefore(nil, time.Now())
	assert.NoError(t, err)
	assert.Empty(t, grouped)
}
