package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/yeremiapane/projectdesk-app/models"
	"github.com/yeremiapane/projectdesk-app/utils"
)

// Mailer -> kolaborator pengiriman mail. Transport dan template ada
// di luar core; core hanya menjamin pemanggilan paling banyak sekali
// per notifikasi yang belum ditandai sent.
type Mailer interface {
	SendImmediate(recipient models.User, notif models.Notification, actor models.User) error
	SendDigest(recipient models.User, notifs []models.Notification) error
}

// LogMailer -> implementasi Mailer yang hanya mencatat dispatch.
// Dipakai selama transport SMTP belum disambungkan.
type LogMailer struct {
	From string
}

func NewLogMailer(from string) *LogMailer {
	return &LogMailer{From: from}
}

func (m *LogMailer) SendImmediate(recipient models.User, notif models.Notification, actor models.User) error {
	utils.InfoLogger.Printf("mail out: from=%s to=%s reason=%s resource=%s#%d actor=%s message_id=%s",
		m.From, recipient.Email, notif.Reason, notif.ResourceType, notif.ResourceID, actor.Name,
		MessageID(notif.ResourceType, notif.ResourceID, recipient.ID))
	return nil
}

func (m *LogMailer) SendDigest(recipient models.User, notifs []models.Notification) error {
	utils.InfoLogger.Printf("digest out: from=%s to=%s subject=%q notifications=%d message_id=%s",
		m.From, recipient.Email, DigestSummary(notifs), len(notifs),
		MessageID("digest", 0, recipient.ID))
	return nil
}

// MessageID membuat Message-ID unik per (resource, recipient, kirim).
func MessageID(resourceType string, resourceID, userID uint) string {
	return fmt.Sprintf("projectdesk.%s-%d-%d.%s@projectdesk",
		resourceType, resourceID, userID, uuid.NewString())
}

// DigestSummary menyusun headline subject digest. Kalau ada mention,
// headline menghitung mention-nya saja; mention adalah reason dengan
// prioritas tertinggi dan mendorong judul ringkasan.
func DigestSummary(notifs []models.Notification) string {
	mentioned := 0
	for _, n := range notifs {
		if n.Reason == models.ReasonMentioned {
			mentioned++
		}
	}

	count := len(notifs)
	if mentioned > 0 {
		count = mentioned
	}

	summary := fmt.Sprintf("%d unread notification", count)
	if count > 1 {
		summary += "s"
	}

	if mentioned == 1 {
		summary += " including a mention"
	} else if mentioned > 1 {
		summary += fmt.Sprintf(" including %d mentions", mentioned)
	}
	return summary
}
