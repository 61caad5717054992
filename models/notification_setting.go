package models

import "time"

// Channel untuk pengiriman notifikasi.
const (
	ChannelInApp      = "in_app"
	ChannelMail       = "mail"
	ChannelMailDigest = "mail_digest"
)

// NotificationSetting -> toggle per reason untuk satu channel.
// ProjectID nil artinya baris global (default). Maksimal satu baris
// per (user, project, channel); baris project meng-override baris
// global secara utuh, bukan per field.
type NotificationSetting struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"not null;index:idx_setting_user_project_channel,unique"`
	User      User
	ProjectID *uint  `gorm:"index:idx_setting_user_project_channel,unique"`
	Channel   string `gorm:"type:varchar(20);not null;index:idx_setting_user_project_channel,unique"`

	All         bool `gorm:"not null;default:false"`
	Mentioned   bool `gorm:"not null;default:false"`
	Involved    bool `gorm:"not null;default:false"`
	Responsible bool `gorm:"not null;default:false"`
	Watched     bool `gorm:"not null;default:false"`
	Created     bool `gorm:"not null;default:false"`
	Subscribed  bool `gorm:"not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EnabledFor melaporkan apakah setting ini mengizinkan reason r.
func (s *NotificationSetting) EnabledFor(r Reason) bool {
	if s.All {
		return true
	}
	switch r {
	case ReasonMentioned:
		return s.Mentioned
	case ReasonInvolved:
		return s.Involved
	case ReasonResponsible:
		return s.Responsible
	case ReasonWatched:
		return s.Watched
	case ReasonCreated:
		return s.Created
	case ReasonSubscribed:
		return s.Subscribed
	}
	return false
}

// DefaultNotificationSetting -> dipakai kalau user sama sekali tidak
// punya baris setting (global maupun project) untuk sebuah channel.
func DefaultNotificationSetting(userID uint, channel string) NotificationSetting {
	return NotificationSetting{
		UserID:      userID,
		Channel:     channel,
		Mentioned:   true,
		Involved:    true,
		Responsible: true,
		Watched:     true,
	}
}
