package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/projectdesk-app/hub"
	"github.com/yeremiapane/projectdesk-app/models"
	"github.com/yeremiapane/projectdesk-app/services"
	"github.com/yeremiapane/projectdesk-app/utils"
	"gorm.io/gorm"
)

// NotificationController -> surface in-app: user melihat dan membaca
// notifikasinya sendiri. Mutasi read lewat NotificationStore supaya
// tetap berupa update per field.
type NotificationController struct {
	DB    *gorm.DB
	Store *services.NotificationStore
}

func NewNotificationController(db *gorm.DB, store *services.NotificationStore) *NotificationController {
	return &NotificationController{DB: db, Store: store}
}

// GetMyNotifications -> daftar notifikasi milik user, terbaru dulu.
// Query param unread=true hanya menampilkan yang belum dibaca.
func (nc *NotificationController) GetMyNotifications(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	query := nc.DB.Preload("Actor").
		Where("recipient_id = ?", userID).
		Order("created_at DESC")
	if c.Query("unread") == "true" {
		query = query.Where("read_in_app = ?", false)
	}

	var notifs []models.Notification
	if err := query.Find(&notifs).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "My notifications", notifs)
}

// GetUnreadCount -> badge counter untuk front end
func (nc *NotificationController) GetUnreadCount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	var count int64
	err := nc.DB.Model(&models.Notification{}).
		Where("recipient_id = ? AND read_in_app = ?", userID, false).
		Count(&count).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Unread count", gin.H{"count": count})
}

// MarkRead -> tandai satu notifikasi sudah dibaca
func (nc *NotificationController) MarkRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	idStr := c.Param("notif_id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid notification id"))
		return
	}

	if err := nc.Store.MarkRead(uint(id), userID); err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	hub.BroadcastNotificationRead(userID, uint(id))

	utils.RespondJSON(c, http.StatusOK, "Notification read", gin.H{"notif_id": id})
}

// MarkAllRead -> tandai semua notifikasi user sudah dibaca
func (nc *NotificationController) MarkAllRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	if err := nc.Store.MarkAllRead(userID); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "All notifications read", nil)
}
