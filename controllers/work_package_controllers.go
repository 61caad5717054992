package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/projectdesk-app/models"
	"github.com/yeremiapane/projectdesk-app/services"
	"github.com/yeremiapane/projectdesk-app/utils"
	"gorm.io/gorm"
)

// WorkPackageController -> boundary event masuk ke pipeline
// notifikasi: setiap pembuatan atau komentar work package menulis
// sebuah journal lalu meng-enqueue workflow.
type WorkPackageController struct {
	DB        *gorm.DB
	Scheduler *services.WorkflowScheduler
}

func NewWorkPackageController(db *gorm.DB, scheduler *services.WorkflowScheduler) *WorkPackageController {
	return &WorkPackageController{DB: db, Scheduler: scheduler}
}

// CreateWorkPackage -> work package baru plus journal awalnya
func (wc *WorkPackageController) CreateWorkPackage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	type request struct {
		ProjectID        uint   `json:"project_id" binding:"required"`
		Subject          string `json:"subject" binding:"required"`
		Description      string `json:"description"`
		AssigneeID       *uint  `json:"assignee_id"`
		ResponsibleID    *uint  `json:"responsible_id"`
		SendNotification *bool  `json:"send_notification"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	wp := models.WorkPackage{
		ProjectID:     req.ProjectID,
		Subject:       req.Subject,
		Description:   req.Description,
		AuthorID:      userID,
		AssigneeID:    req.AssigneeID,
		ResponsibleID: req.ResponsibleID,
	}
	if err := wc.DB.Create(&wp).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	journal := models.Journal{
		WorkPackageID: wp.ID,
		UserID:        userID,
		Version:       1,
		Notes:         req.Description,
	}
	if err := wc.DB.Create(&journal).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	sendNotification := true
	if req.SendNotification != nil {
		sendNotification = *req.SendNotification
	}
	if _, err := wc.Scheduler.Enqueue(models.ResourceTypeJournal, journal.ID, sendNotification); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Work package created: %d (project=%d)", wp.ID, wp.ProjectID)

	utils.RespondJSON(c, http.StatusCreated, "Work package created", wp)
}

// AddComment -> journal baru untuk work package yang sudah ada
func (wc *WorkPackageController) AddComment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	idStr := c.Param("wp_id")
	wpID, err := strconv.Atoi(idStr)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid work package id"))
		return
	}

	type request struct {
		Notes            string `json:"notes" binding:"required"`
		SendNotification *bool  `json:"send_notification"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var wp models.WorkPackage
	if err := wc.DB.First(&wp, wpID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var lastVersion int
	row := wc.DB.Model(&models.Journal{}).
		Where("work_package_id = ?", wp.ID).
		Select("COALESCE(MAX(version), 0)").
		Row()
	if err := row.Scan(&lastVersion); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	journal := models.Journal{
		WorkPackageID: wp.ID,
		UserID:        userID,
		Version:       lastVersion + 1,
		Notes:         req.Notes,
	}
	if err := wc.DB.Create(&journal).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	sendNotification := true
	if req.SendNotification != nil {
		sendNotification = *req.SendNotification
	}
	if _, err := wc.Scheduler.Enqueue(models.ResourceTypeJournal, journal.ID, sendNotification); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Comment added", journal)
}

// GetWorkPackage -> detail satu work package
func (wc *WorkPackageController) GetWorkPackage(c *gin.Context) {
	idStr := c.Param("wp_id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid work package id"))
		return
	}

	var wp models.WorkPackage
	err = wc.DB.Preload("Project").Preload("Author").Preload("Watchers").
		First(&wp, id).Error
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Work package detail", wp)
}

// AddWatcher -> user mulai watch sebuah work package
func (wc *WorkPackageController) AddWatcher(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	idStr := c.Param("wp_id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid work package id"))
		return
	}

	var wp models.WorkPackage
	if err := wc.DB.First(&wp, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var user models.User
	if err := wc.DB.First(&user, userID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if err := wc.DB.Model(&wp).Association("Watchers").Append(&user); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Watcher added", gin.H{"wp_id": wp.ID})
}
