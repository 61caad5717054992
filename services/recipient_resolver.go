package services

import (
	"errors"
	"regexp"
	"strconv"

	"github.com/yeremiapane/projectdesk-app/models"
	"gorm.io/gorm"
)

// mentionPattern -> token mention "user#<id>" di dalam notes journal.
var mentionPattern = regexp.MustCompile(`user#(\d+)`)

// ChannelEligibility -> channel mana saja yang berlaku untuk satu
// recipient, dievaluasi terhadap satu reason terpilih.
type ChannelEligibility struct {
	InApp      bool
	Mail       bool
	MailDigest bool
}

func (e ChannelEligibility) Any() bool {
	return e.InApp || e.Mail || e.MailDigest
}

// RecipientNotice -> hasil resolusi untuk satu recipient: reason
// dengan prioritas tertinggi plus eligibility per channel.
type RecipientNotice struct {
	Reason   models.Reason
	Channels ChannelEligibility
}

// RecipientResolver menentukan siapa saja yang harus diberi tahu atas
// sebuah journal dan lewat channel apa. Murni membaca state; semua
// mutasi lewat NotificationStore.
type RecipientResolver struct {
	DB *gorm.DB
}

func NewRecipientResolver(db *gorm.DB) *RecipientResolver {
	return &RecipientResolver{DB: db}
}

// Resolve mengembalikan map recipient ID -> RecipientNotice untuk
// journal yang diberikan. Actor tidak pernah menotifikasi dirinya
// sendiri, dan user tanpa akses view ke project dikecualikan.
func (r *RecipientResolver) Resolve(journal *models.Journal) (map[uint]RecipientNotice, error) {
	var wp models.WorkPackage
	err := r.DB.Preload("Watchers").Preload("Project").
		First(&wp, journal.WorkPackageID).Error
	if err != nil {
		return nil, err
	}

	// Kumpulkan semua relasi kandidat per user.
	reasons := make(map[uint][]models.Reason)

	for _, id := range parseMentions(journal.Notes) {
		reasons[id] = append(reasons[id], models.ReasonMentioned)
	}
	if wp.AssigneeID != nil {
		reasons[*wp.AssigneeID] = append(reasons[*wp.AssigneeID], models.ReasonInvolved)
	}
	if wp.ResponsibleID != nil {
		reasons[*wp.ResponsibleID] = append(reasons[*wp.ResponsibleID], models.ReasonResponsible)
	}
	for _, w := range wp.Watchers {
		reasons[w.ID] = append(reasons[w.ID], models.ReasonWatched)
	}
	if journal.Initial() && wp.AuthorID != journal.UserID {
		reasons[wp.AuthorID] = append(reasons[wp.AuthorID], models.ReasonCreated)
	}

	result := make(map[uint]RecipientNotice)
	for userID, candidateReasons := range reasons {
		// Actor tidak menotifikasi dirinya sendiri.
		if userID == journal.UserID {
			continue
		}

		var user models.User
		if err := r.DB.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		if !user.Active {
			continue
		}

		ok, err := r.CanView(userID, wp.ProjectID)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		// Sebuah reason hanya applicable kalau minimal satu channel
		// mengizinkannya; reason tertinggi yang applicable yang dicatat.
		var applicable []models.Reason
		for _, reason := range candidateReasons {
			elig, err := r.eligibility(userID, wp.ProjectID, reason)
			if err != nil {
				return nil, err
			}
			if elig.Any() {
				applicable = append(applicable, reason)
			}
		}
		if len(applicable) == 0 {
			continue
		}

		reason := models.HighestReason(applicable)
		elig, err := r.eligibility(userID, wp.ProjectID, reason)
		if err != nil {
			return nil, err
		}
		result[userID] = RecipientNotice{Reason: reason, Channels: elig}
	}

	return result, nil
}

// CanView -> cek otorisasi membaca resource di sebuah project.
func (r *RecipientResolver) CanView(userID, projectID uint) (bool, error) {
	var project models.Project
	if err := r.DB.First(&project, projectID).Error; err != nil {
		return false, err
	}
	if project.Public {
		return true, nil
	}

	var count int64
	err := r.DB.Model(&models.Member{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// MailEnabled -> cek ulang eligibility channel mail saat kirim, bukan
// saat create, supaya perubahan preferensi terakhir tetap dihormati.
func (r *RecipientResolver) MailEnabled(userID, projectID uint, reason models.Reason) (bool, error) {
	return r.channelEnabled(userID, projectID, models.ChannelMail, reason)
}

// DigestEnabled -> eligibility channel mail_digest, dicek saat digest
// driver berjalan.
func (r *RecipientResolver) DigestEnabled(userID, projectID uint, reason models.Reason) (bool, error) {
	return r.channelEnabled(userID, projectID, models.ChannelMailDigest, reason)
}

func (r *RecipientResolver) eligibility(userID, projectID uint, reason models.Reason) (ChannelEligibility, error) {
	var elig ChannelEligibility

	inApp, err := r.channelEnabled(userID, projectID, models.ChannelInApp, reason)
	if err != nil {
		return elig, err
	}
	mail, err := r.channelEnabled(userID, projectID, models.ChannelMail, reason)
	if err != nil {
		return elig, err
	}
	digest, err := r.channelEnabled(userID, projectID, models.ChannelMailDigest, reason)
	if err != nil {
		return elig, err
	}

	elig.InApp = inApp
	elig.Mail = mail
	elig.MailDigest = digest
	return elig, nil
}

func (r *RecipientResolver) channelEnabled(userID, projectID uint, channel string, reason models.Reason) (bool, error) {
	setting, err := r.settingFor(userID, projectID, channel)
	if err != nil {
		return false, err
	}
	if setting == nil {
		def := models.DefaultNotificationSetting(userID, channel)
		return def.EnabledFor(reason), nil
	}
	return setting.EnabledFor(reason), nil
}

// settingFor -> lookup dua tingkat yang eksplisit:
// baris (user, project) kalau ada, kalau tidak baris global
// (project NULL), kalau tidak nil.
func (r *RecipientResolver) settingFor(userID, projectID uint, channel string) (*models.NotificationSetting, error) {
	var setting models.NotificationSetting

	err := r.DB.Where("user_id = ? AND project_id = ? AND channel = ?", userID, projectID, channel).
		First(&setting).Error
	if err == nil {
		return &setting, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	err = r.DB.Where("user_id = ? AND project_id IS NULL AND channel = ?", userID, channel).
		First(&setting).Error
	if err == nil {
		return &setting, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return nil, nil
}

func parseMentions(notes string) []uint {
	var ids []uint
	seen := make(map[uint]bool)
	for _, match := range mentionPattern.FindAllStringSubmatch(notes, -1) {
		id, err := strconv.ParseUint(match[1], 10, 64)
		if err != nil {
			continue
		}
		if !seen[uint(id)] {
			seen[uint(id)] = true
			ids = append(ids, uint(id))
		}
	}
	return ids
}
