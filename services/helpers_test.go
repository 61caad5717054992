package services

import (
	"fmt"
	"testing"

	"github.com/yeremiapane/projectdesk-app/models"
	"github.com/yeremiapane/projectdesk-app/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	utils.InitLogger()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Member{},
		&models.WorkPackage{},
		&models.Journal{},
		&models.Notification{},
		&models.NotificationSetting{},
		&models.UserReminderConfig{},
		&models.ScheduledWorkflow{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := models.User{
		Name:     name,
		Email:    name + "@example.com",
		Password: "secret",
		Role:     "member",
		Active:   true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return &user
}

func seedProject(t *testing.T, db *gorm.DB, identifier string, memberIDs ...uint) *models.Project {
	t.Helper()
	project := models.Project{
		Name:       identifier,
		Identifier: identifier,
	}
	if err := db.Create(&project).Error; err != nil {
		t.Fatalf("failed to seed project: %v", err)
	}
	for _, id := range memberIDs {
		member := models.Member{ProjectID: project.ID, UserID: id, Role: "member"}
		if err := db.Create(&member).Error; err != nil {
			t.Fatalf("failed to seed member: %v", err)
		}
	}
	return &project
}

func seedWorkPackage(t *testing.T, db *gorm.DB, projectID, authorID uint) *models.WorkPackage {
	t.Helper()
	wp := models.WorkPackage{
		ProjectID: projectID,
		Subject:   "Test work package",
		AuthorID:  authorID,
	}
	if err := db.Create(&wp).Error; err != nil {
		t.Fatalf("failed to seed work package: %v", err)
	}
	return &wp
}

func seedJournal(t *testing.T, db *gorm.DB, wpID, userID uint, version int, notes string) *models.Journal {
	t.Helper()
	journal := models.Journal{
		WorkPackageID: wpID,
		UserID:        userID,
		Version:       version,
		Notes:         notes,
	}
	if err := db.Create(&journal).Error; err != nil {
		t.Fatalf("failed to seed journal: %v", err)
	}
	return &journal
}

// recordingMailer -> Mailer palsu yang merekam semua dispatch.
type recordingMailer struct {
	immediate   []models.Notification
	digests     map[uint][]models.Notification
	digestCalls map[uint]int
}

func newRecordingMailer() *recordingMailer {
	return &recordingMailer{
		digests:     make(map[uint][]models.Notification),
		digestCalls: make(map[uint]int),
	}
}

func (m *recordingMailer) SendImmediate(recipient models.User, notif models.Notification, actor models.User) error {
	m.immediate = append(m.immediate, notif)
	return nil
}

func (m *recordingMailer) SendDigest(recipient models.User, notifs []models.Notification) error {
	m.digests[recipient.ID] = append(m.digests[recipient.ID], notifs...)
	m.digestCalls[recipient.ID]++
	return nil
}
