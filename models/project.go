package models

import "time"

type Project struct {
	ID         uint   `gorm:"primaryKey"`
	Name       string `gorm:"type:varchar(255);not null"`
	Identifier string `gorm:"type:varchar(100);unique;not null"`
	Public     bool   `gorm:"default:false"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Member -> keanggotaan user di sebuah project.
// Hanya member (atau siapa pun di project public) yang boleh melihat
// work package di dalamnya.
type Member struct {
	ID        uint `gorm:"primaryKey"`
	ProjectID uint `gorm:"not null;index:idx_member_project_user,unique"`
	Project   Project
	UserID    uint `gorm:"not null;index:idx_member_project_user,unique"`
	User      User
	Role      string `gorm:"type:varchar(50);not null"`
	CreatedAt time.Time
}
