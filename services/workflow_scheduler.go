package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/yeremiapane/projectdesk-app/hub"
	"github.com/yeremiapane/projectdesk-app/models"
	"github.com/yeremiapane/projectdesk-app/utils"
	"gorm.io/gorm"
)

// WorkflowScheduler menjalankan state machine per event:
//  1. create_notifications -> notifikasi dibuat secepat mungkin supaya
//     langsung terlihat in-app.
//  2. send_mails -> setelah aggregation window lewat, mail langsung
//     dikirim untuk notifikasi yang masih eligible.
//
// Urutan ini wajib: stage send hanya pernah dijadwalkan sebagai
// kelanjutan stage create di baris workflow yang sama, jadi tidak ada
// eksekusi yang mencoba kirim mail sebelum notifikasinya tersimpan.
type WorkflowScheduler struct {
	DB       *gorm.DB
	Resolver *RecipientResolver
	Store    *NotificationStore
	Mailer   Mailer

	// AggregationWindow -> jeda antara create dan send; nol berarti
	// stage send langsung due.
	AggregationWindow time.Duration
	Interval          time.Duration
	StopChan          chan struct{}
}

func NewWorkflowScheduler(db *gorm.DB, resolver *RecipientResolver, store *NotificationStore, mailer Mailer, aggregationWindow time.Duration) *WorkflowScheduler {
	return &WorkflowScheduler{
		DB:                db,
		Resolver:          resolver,
		Store:             store,
		Mailer:            mailer,
		AggregationWindow: aggregationWindow,
		Interval:          1 * time.Second,
		StopChan:          make(chan struct{}),
	}
}

// Enqueue -> boundary event masuk dari domain layer: sebuah journal
// baru saja dibuat. Membuat instance workflow pada stage pertama.
func (ws *WorkflowScheduler) Enqueue(resourceType string, resourceID uint, sendNotification bool) (*models.ScheduledWorkflow, error) {
	wf := models.ScheduledWorkflow{
		Stage:            models.StageCreateNotifications,
		ResourceType:     resourceType,
		ResourceID:       resourceID,
		SendNotification: sendNotification,
		RunAt:            time.Now(),
	}
	if err := ws.DB.Create(&wf).Error; err != nil {
		return nil, err
	}
	return &wf, nil
}

func (ws *WorkflowScheduler) Start() {
	go func() {
		ticker := time.NewTicker(ws.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ws.RunDue(time.Now())
			case <-ws.StopChan:
				return
			}
		}
	}()
}

func (ws *WorkflowScheduler) Stop() {
	close(ws.StopChan)
}

// RunDue menjalankan semua workflow yang sudah due pada waktu now,
// urut berdasarkan jadwalnya. Satu baris hanya dieksekusi untuk stage
// yang sedang aktif.
func (ws *WorkflowScheduler) RunDue(now time.Time) {
	var due []models.ScheduledWorkflow
	err := ws.DB.Where("stage <> ? AND run_at <= ?", models.StageDone, now).
		Order("run_at ASC").
		Limit(100).
		Find(&due).Error
	if err != nil {
		utils.ErrorLogger.Printf("Error fetching due workflows: %v", err)
		return
	}

	for i := range due {
		if err := ws.RunStage(&due[i], now); err != nil {
			utils.ErrorLogger.Printf("Error running workflow %d stage %s: %v",
				due[i].ID, due[i].Stage, err)
		}
	}
}

// RunStage menjalankan stage aktif sebuah workflow dan mencatat
// transisi berikutnya. Retry dari job queue aman: create idempoten
// dan mark bersifat monoton.
func (ws *WorkflowScheduler) RunStage(wf *models.ScheduledWorkflow, now time.Time) error {
	switch wf.Stage {
	case models.StageCreateNotifications:
		return ws.runCreateStage(wf, now)
	case models.StageSendMails:
		return ws.runSendStage(wf)
	case models.StageDone:
		return nil
	default:
		return fmt.Errorf("unknown workflow stage %q", wf.Stage)
	}
}

func (ws *WorkflowScheduler) runCreateStage(wf *models.ScheduledWorkflow, now time.Time) error {
	journal, err := ws.loadJournal(wf)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Resource sudah dihapus di antara penjadwalan dan
			// eksekusi: tidak ada notifikasi yang terutang. Terminal
			// yang valid, bukan error.
			return ws.discard(wf)
		}
		return err
	}

	var ids []uint
	if wf.SendNotification {
		recipients, err := ws.Resolver.Resolve(journal)
		if err != nil {
			return err
		}

		for recipientID, notice := range recipients {
			notif, err := ws.Store.Create(recipientID, notice.Reason,
				wf.ResourceType, wf.ResourceID, journal.UserID)
			if err != nil {
				return err
			}
			ids = append(ids, notif.ID)

			if notice.Channels.InApp {
				hub.BroadcastNotificationCreated(*notif)
			}
		}
	}

	// Selalu maju, nol notifikasi pun valid.
	if err := wf.SetPayloadIDs(ids); err != nil {
		return err
	}
	wf.Stage = models.StageSendMails
	wf.RunAt = now.Add(ws.AggregationWindow)
	return ws.DB.Save(wf).Error
}

func (ws *WorkflowScheduler) runSendStage(wf *models.ScheduledWorkflow) error {
	ids := wf.PayloadIDs()
	if len(ids) == 0 {
		return ws.discard(wf)
	}

	journal, err := ws.loadJournal(wf)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ws.discard(wf)
		}
		return err
	}

	notifs, err := ws.Store.UnsentMailFor(ids)
	if err != nil {
		return err
	}

	for _, notif := range notifs {
		// Eligibility dicek ulang saat kirim: setting yang diubah
		// atau akses yang dicabut setelah create menahan mail-nya.
		ok, err := ws.mailStillEligible(&notif, journal)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		if err := ws.Mailer.SendImmediate(notif.Recipient, notif, notif.Actor); err != nil {
			return err
		}
		if err := ws.Store.MarkMailSent(notif.ID, time.Now()); err != nil {
			return err
		}
	}

	wf.Stage = models.StageDone
	return ws.DB.Save(wf).Error
}

func (ws *WorkflowScheduler) mailStillEligible(notif *models.Notification, journal *models.Journal) (bool, error) {
	var wp models.WorkPackage
	if err := ws.DB.First(&wp, journal.WorkPackageID).Error; err != nil {
		return false, err
	}

	canView, err := ws.Resolver.CanView(notif.RecipientID, wp.ProjectID)
	if err != nil {
		return false, err
	}
	if !canView {
		return false, nil
	}
	return ws.Resolver.MailEnabled(notif.RecipientID, wp.ProjectID, notif.Reason)
}

func (ws *WorkflowScheduler) loadJournal(wf *models.ScheduledWorkflow) (*models.Journal, error) {
	if wf.ResourceType != models.ResourceTypeJournal {
		return nil, fmt.Errorf("unsupported resource type %q", wf.ResourceType)
	}
	var journal models.Journal
	if err := ws.DB.First(&journal, wf.ResourceID).Error; err != nil {
		return nil, err
	}
	return &journal, nil
}

func (ws *WorkflowScheduler) discard(wf *models.ScheduledWorkflow) error {
	wf.Stage = models.StageDone
	return ws.DB.Save(wf).Error
}
