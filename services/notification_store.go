package services

import (
	"errors"
	"time"

	"github.com/yeremiapane/projectdesk-app/models"
	"gorm.io/gorm"
)

// NotificationStore -> satu-satunya jalur mutasi untuk tabel
// notifications. Semua operasi mark bersifat idempoten dan hanya
// menulis field yang bersangkutan.
type NotificationStore struct {
	DB *gorm.DB
}

func NewNotificationStore(db *gorm.DB) *NotificationStore {
	return &NotificationStore{DB: db}
}

// Create membuat notifikasi untuk satu recipient. Idempoten per
// (recipient, resource, reason): baris unread yang sudah ada dengan
// reason sama dipakai ulang. Baris unread lama dengan reason berbeda
// untuk resource yang sama dianggap basi (journal di-supersede) dan
// dihapus, bukan diduplikasi.
func (s *NotificationStore) Create(recipientID uint, reason models.Reason, resourceType string, resourceID uint, actorID uint) (*models.Notification, error) {
	var result *models.Notification

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var stale []models.Notification
		err := tx.Where(
			"recipient_id = ? AND resource_type = ? AND resource_id = ? AND read_in_app = ? AND mail_sent_at IS NULL AND mail_digest_sent_at IS NULL",
			recipientID, resourceType, resourceID, false,
		).Find(&stale).Error
		if err != nil {
			return err
		}

		for _, n := range stale {
			if n.Reason == reason {
				existing := n
				result = &existing
				return nil
			}
		}
		if len(stale) > 0 {
			ids := make([]uint, 0, len(stale))
			for _, n := range stale {
				ids = append(ids, n.ID)
			}
			if err := tx.Delete(&models.Notification{}, ids).Error; err != nil {
				return err
			}
		}

		notif := models.Notification{
			RecipientID:  recipientID,
			ActorID:      actorID,
			ResourceType: resourceType,
			ResourceID:   resourceID,
			Reason:       reason,
		}
		if err := tx.Create(&notif).Error; err != nil {
			return err
		}
		result = &notif
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UnsentMailFor mengembalikan notifikasi dari id set yang mail-nya
// belum terkirim. Filter reason per recipient dilakukan pemanggil
// (dievaluasi ulang saat kirim lewat resolver).
func (s *NotificationStore) UnsentMailFor(ids []uint) ([]models.Notification, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var notifs []models.Notification
	err := s.DB.Preload("Recipient").Preload("Actor").
		Where("id IN ? AND mail_sent_at IS NULL", ids).
		Order("id ASC").
		Find(&notifs).Error
	if err != nil {
		return nil, err
	}
	return notifs, nil
}

// UnsentRemindersBefore mengembalikan notifikasi yang belum dibaca,
// belum masuk digest, dan dibuat sebelum t, dikelompokkan per
// recipient dari kandidat yang diberikan.
func (s *NotificationStore) UnsentRemindersBefore(recipientIDs []uint, t time.Time) (map[uint][]models.Notification, error) {
	grouped := make(map[uint][]models.Notification)
	if len(recipientIDs) == 0 {
		return grouped, nil
	}

	var notifs []models.Notification
	err := s.DB.Preload("Recipient").Preload("Actor").
		Where("recipient_id IN ? AND read_in_app = ? AND mail_digest_sent_at IS NULL AND created_at < ?",
			recipientIDs, false, t).
		Order("created_at ASC").
		Find(&notifs).Error
	if err != nil {
		return nil, err
	}

	for _, n := range notifs {
		grouped[n.RecipientID] = append(grouped[n.RecipientID], n)
	}
	return grouped, nil
}

// MarkMailSent menandai mail terkirim. Monoton: panggilan kedua
// no-op dan timestamp pertama yang menang.
func (s *NotificationStore) MarkMailSent(id uint, at time.Time) error {
	return s.DB.Model(&models.Notification{}).
		Where("id = ? AND mail_sent_at IS NULL", id).
		Update("mail_sent_at", at).Error
}

// MarkDigestSent menandai notifikasi sudah masuk digest mail.
func (s *NotificationStore) MarkDigestSent(id uint, at time.Time) error {
	return s.DB.Model(&models.Notification{}).
		Where("id = ? AND mail_digest_sent_at IS NULL", id).
		Update("mail_digest_sent_at", at).Error
}

// MarkRead menandai notifikasi sudah dibaca in-app oleh pemiliknya.
func (s *NotificationStore) MarkRead(id, recipientID uint) error {
	res := s.DB.Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Update("read_in_app", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.New("notification not found")
	}
	return nil
}

// MarkAllRead menandai semua notifikasi milik recipient sudah dibaca.
func (s *NotificationStore) MarkAllRead(recipientID uint) error {
	return s.DB.Model(&models.Notification{}).
		Where("recipient_id = ? AND read_in_app = ?", recipientID, false).
		Update("read_in_app", true).Error
}
