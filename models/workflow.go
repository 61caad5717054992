package models

import (
	"encoding/json"
	"time"
)

// Stage dari sebuah ScheduledWorkflow. Transisi hanya maju:
// create_notifications -> send_mails -> done.
const (
	StageCreateNotifications = "create_notifications"
	StageSendMails           = "send_mails"
	StageDone                = "done"
)

// ScheduledWorkflow -> satu instance state machine per event.
// Stage send_mails hanya pernah dijadwalkan sebagai kelanjutan dari
// stage create_notifications pada baris yang sama, jadi mail tidak
// mungkin dikirim sebelum notifikasinya tersimpan.
type ScheduledWorkflow struct {
	ID               uint   `gorm:"primaryKey"`
	Stage            string `gorm:"type:varchar(30);not null;index:idx_workflow_due"`
	ResourceType     string `gorm:"type:varchar(50);not null"`
	ResourceID       uint   `gorm:"not null"`
	SendNotification bool   `gorm:"not null;default:true"`
	Payload          string `gorm:"type:text"`
	RunAt            time.Time `gorm:"not null;index:idx_workflow_due"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// PayloadIDs meng-decode daftar notification ID hasil stage
// sebelumnya. Payload kosong menghasilkan nil.
func (w *ScheduledWorkflow) PayloadIDs() []uint {
	if w.Payload == "" {
		return nil
	}
	var ids []uint
	if err := json.Unmarshal([]byte(w.Payload), &ids); err != nil {
		return nil
	}
	return ids
}

func (w *ScheduledWorkflow) SetPayloadIDs(ids []uint) error {
	raw, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	w.Payload = string(raw)
	return nil
}
