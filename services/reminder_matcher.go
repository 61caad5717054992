package services

import (
	"errors"
	"time"

	"github.com/yeremiapane/projectdesk-app/models"
	"github.com/yeremiapane/projectdesk-app/utils"
	"gorm.io/gorm"
)

// ReminderMatcher -> driver digest periodik. Tiap seperempat jam
// dihitung slot reminder lokal mana saja yang terlewati sejak run
// sebelumnya, lalu digest mail dikirim untuk user yang jam
// reminder-nya jatuh di window itu.
type ReminderMatcher struct {
	DB         *gorm.DB
	Store      *NotificationStore
	Resolver   *RecipientResolver
	Mailer     Mailer
	Calculator *TimeSlotCalculator

	Interval time.Duration
	StopChan chan struct{}
	lastRun  time.Time
}

func NewReminderMatcher(db *gorm.DB, store *NotificationStore, resolver *RecipientResolver, mailer Mailer, calc *TimeSlotCalculator) *ReminderMatcher {
	return &ReminderMatcher{
		DB:         db,
		Store:      store,
		Resolver:   resolver,
		Mailer:     mailer,
		Calculator: calc,
		Interval:   15 * time.Minute,
		StopChan:   make(chan struct{}),
		lastRun:    time.Now(),
	}
}

func (rm *ReminderMatcher) Start() {
	go func() {
		ticker := time.NewTicker(rm.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				now := time.Now()
				// earliest selalu akhir run sukses sebelumnya; tick
				// yang terlewat tertutup di run berikutnya selama
				// gap masih di bawah guard 24 jam.
				if err := rm.Run(rm.lastRun, now); err != nil {
					utils.ErrorLogger.Printf("Error running reminder matcher: %v", err)
					continue
				}
				rm.lastRun = now
			case <-rm.StopChan:
				return
			}
		}
	}()
}

func (rm *ReminderMatcher) Stop() {
	close(rm.StopChan)
}

// Run mencocokkan slot (earliest, now] dengan konfigurasi reminder
// semua user dan mengirim maksimal satu digest per user per run.
// Error range dari kalkulator diteruskan, tidak ditelan.
func (rm *ReminderMatcher) Run(earliest, now time.Time) error {
	slots, err := rm.Calculator.SlotsSince(earliest, now)
	if err != nil {
		return err
	}
	if len(slots) == 0 {
		return nil
	}

	slotSet := make(map[TimeSlot]bool, len(slots))
	for _, slot := range slots {
		slotSet[slot] = true
	}

	matched, err := rm.matchedUserIDs(slotSet)
	if err != nil {
		return err
	}
	if len(matched) == 0 {
		return nil
	}

	grouped, err := rm.Store.UnsentRemindersBefore(matched, now)
	if err != nil {
		return err
	}

	for recipientID, notifs := range grouped {
		eligible, err := rm.digestEligible(recipientID, notifs)
		if err != nil {
			return err
		}
		if len(eligible) == 0 {
			continue
		}

		if err := rm.Mailer.SendDigest(eligible[0].Recipient, eligible); err != nil {
			return err
		}
		sentAt := time.Now()
		for _, n := range eligible {
			if err := rm.Store.MarkDigestSent(n.ID, sentAt); err != nil {
				return err
			}
		}
		utils.InfoLogger.Printf("digest sent: recipient=%d notifications=%d", recipientID, len(eligible))
	}

	return nil
}

// matchedUserIDs -> join in-memory antara slot set dan konfigurasi
// reminder. User tanpa konfigurasi memakai default 08:00 di zona
// user-nya sendiri (UTC kalau kosong); konfigurasi yang enabled tapi
// tanpa jam memakai default 08:00 di zonanya; disabled menahan
// pengiriman sama sekali.
func (rm *ReminderMatcher) matchedUserIDs(slotSet map[TimeSlot]bool) ([]uint, error) {
	var users []models.User
	if err := rm.DB.Where("active = ?", true).Find(&users).Error; err != nil {
		return nil, err
	}

	var matched []uint
	for _, user := range users {
		var config models.UserReminderConfig
		err := rm.DB.Where("user_id = ?", user.ID).First(&config).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if slotSet[TimeSlot{LocalTime: models.DefaultReminderTime, Zone: user.Zone()}] {
				matched = append(matched, user.ID)
			}
			continue
		}
		if err != nil {
			return nil, err
		}

		if !config.Enabled {
			continue
		}

		times := config.TimesList()
		if len(times) == 0 {
			times = []string{models.DefaultReminderTime}
		}

		for _, localTime := range times {
			if slotSet[TimeSlot{LocalTime: localTime, Zone: config.Zone()}] {
				matched = append(matched, user.ID)
				break
			}
		}
	}
	return matched, nil
}

func (rm *ReminderMatcher) digestEligible(recipientID uint, notifs []models.Notification) ([]models.Notification, error) {
	var eligible []models.Notification
	for _, n := range notifs {
		projectID, err := rm.projectOf(&n)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Resource-nya sudah hilang, tidak ada yang terutang.
				continue
			}
			return nil, err
		}

		canView, err := rm.Resolver.CanView(recipientID, projectID)
		if err != nil {
			return nil, err
		}
		if !canView {
			continue
		}

		ok, err := rm.Resolver.DigestEnabled(recipientID, projectID, n.Reason)
		if err != nil {
			return nil, err
		}
		if ok {
			eligible = append(eligible, n)
		}
	}
	return eligible, nil
}

func (rm *ReminderMatcher) projectOf(n *models.Notification) (uint, error) {
	if n.ResourceType != models.ResourceTypeJournal {
		return 0, gorm.ErrRecordNotFound
	}
	var journal models.Journal
	if err := rm.DB.Preload("WorkPackage").First(&journal, n.ResourceID).Error; err != nil {
		return 0, err
	}
	return journal.WorkPackage.ProjectID, nil
}
