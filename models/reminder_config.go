package models

import (
	"encoding/json"
	"time"
)

// DefaultReminderTime -> slot reminder default kalau user tidak
// mengkonfigurasi jam sendiri.
const DefaultReminderTime = "08:00"

// UserReminderConfig -> konfigurasi daily reminder per user.
// Times disimpan sebagai JSON array jam lokal "HH:MM" (hanya jam
// bulat yang bisa dikonfigurasi). TimeZone adalah nama zona IANA;
// kosong berarti UTC.
type UserReminderConfig struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"not null;uniqueIndex"`
	User      User
	Enabled   bool   `gorm:"not null;default:true"`
	TimeZone  string `gorm:"type:varchar(64)"`
	Times     string `gorm:"type:varchar(255)"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TimesList meng-decode kolom Times. Kolom kosong atau rusak
// diperlakukan sebagai tidak ada jam terkonfigurasi.
func (c *UserReminderConfig) TimesList() []string {
	if c.Times == "" {
		return nil
	}
	var times []string
	if err := json.Unmarshal([]byte(c.Times), &times); err != nil {
		return nil
	}
	return times
}

func (c *UserReminderConfig) SetTimes(times []string) error {
	raw, err := json.Marshal(times)
	if err != nil {
		return err
	}
	c.Times = string(raw)
	return nil
}

// Zone mengembalikan zona efektif, UTC kalau tidak diisi.
func (c *UserReminderConfig) Zone() string {
	if c.TimeZone == "" {
		return "UTC"
	}
	return c.TimeZone
}
