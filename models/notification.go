package models

import (
	"time"
)

// Reason -> alasan kenapa sebuah notifikasi dibuat untuk recipient.
// Satu notifikasi hanya menyimpan satu reason: yang prioritasnya
// paling tinggi kalau ada beberapa relasi sekaligus.
type Reason string

const (
	ReasonMentioned   Reason = "mentioned"
	ReasonInvolved    Reason = "involved"
	ReasonResponsible Reason = "responsible"
	ReasonWatched     Reason = "watched"
	ReasonCreated     Reason = "created"
	ReasonSubscribed  Reason = "subscribed"
)

// Urutan prioritas reason, nilai lebih besar menang.
var reasonRank = map[Reason]int{
	ReasonMentioned:   60,
	ReasonInvolved:    50,
	ReasonResponsible: 40,
	ReasonWatched:     30,
	ReasonCreated:     20,
	ReasonSubscribed:  10,
}

func (r Reason) Rank() int {
	return reasonRank[r]
}

// HighestReason memilih reason dengan prioritas tertinggi.
// Mengembalikan string kosong kalau slice kosong.
func HighestReason(reasons []Reason) Reason {
	var best Reason
	for _, r := range reasons {
		if r.Rank() > best.Rank() {
			best = r
		}
	}
	return best
}

// Notification -> catatan durable bahwa satu user harus diberi tahu
// tentang satu event. Tiga field channel-state diubah oleh tiga aktor
// yang berbeda (user membaca, mail stage, digest driver) dan selalu
// di-update per field, tidak pernah overwrite satu record penuh.
type Notification struct {
	ID               uint `gorm:"primaryKey"`
	RecipientID      uint `gorm:"not null;index"`
	Recipient        User `gorm:"foreignKey:RecipientID"`
	ActorID          uint `gorm:"not null"`
	Actor            User   `gorm:"foreignKey:ActorID"`
	ResourceType     string `gorm:"type:varchar(50);not null;index:idx_notification_resource"`
	ResourceID       uint   `gorm:"not null;index:idx_notification_resource"`
	Reason           Reason `gorm:"type:varchar(20);not null;index"`
	ReadInApp        bool   `gorm:"not null;default:false"`
	MailSentAt       *time.Time
	MailDigestSentAt *time.Time
	CreatedAt        time.Time `gorm:"not null"`
}
