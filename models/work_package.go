package models

import "time"

type WorkPackage struct {
	ID            uint   `gorm:"primaryKey"`
	ProjectID     uint   `gorm:"not null;index"`
	Project       Project
	Subject       string `gorm:"type:varchar(255);not null"`
	Description   string `gorm:"type:text"`
	AuthorID      uint   `gorm:"not null"`
	Author        User   `gorm:"foreignKey:AuthorID"`
	AssigneeID    *uint
	Assignee      *User `gorm:"foreignKey:AssigneeID"`
	ResponsibleID *uint
	Responsible   *User  `gorm:"foreignKey:ResponsibleID"`
	Watchers      []User `gorm:"many2many:work_package_watchers"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
