package models

import "time"

// ResourceTypeJournal -> nilai ResourceType untuk referensi polimorfik
// yang menunjuk ke journal.
const ResourceTypeJournal = "Journal"

// Journal -> satu entri riwayat untuk sebuah work package.
// Version 1 adalah journal pembuatan, versi selanjutnya adalah
// update/komentar. Journal adalah resource yang memicu pipeline
// notifikasi.
type Journal struct {
	ID            uint `gorm:"primaryKey"`
	WorkPackageID uint `gorm:"not null;index"`
	WorkPackage   WorkPackage
	UserID        uint `gorm:"not null"`
	User          User
	Version       int    `gorm:"not null;default:1"`
	Notes         string `gorm:"type:text"`
	CreatedAt     time.Time
}

// Initial melaporkan apakah journal ini adalah journal pembuatan
// resource (bukan update).
func (j *Journal) Initial() bool {
	return j.Version <= 1
}
