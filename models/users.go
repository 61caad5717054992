package models

import "time"

type User struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"type:varchar(255); not null"`
	Email     string `gorm:"type:varchar(255); unique;not null"`
	Password  string `gorm:"type:varchar(255); not null"`
	Role      string `gorm:"type:varchar(255); not null"`
	Active    bool   `gorm:"default:true"`
	// TimeZone -> zona IANA pilihan user; kosong berarti UTC. Dipakai
	// sebagai zona default reminder selama user belum punya
	// UserReminderConfig sendiri.
	TimeZone  string `gorm:"type:varchar(64)"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Zone mengembalikan zona efektif user, UTC kalau tidak diisi.
func (u *User) Zone() string {
	if u.TimeZone == "" {
		return "UTC"
	}
	return u.TimeZone
}
