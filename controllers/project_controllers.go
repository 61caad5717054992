package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/projectdesk-app/models"
	"github.com/yeremiapane/projectdesk-app/utils"
	"gorm.io/gorm"
)

// ProjectController -> administrasi project dan keanggotaan. Semua
// route-nya admin only; keanggotaan menentukan siapa yang boleh
// menerima notifikasi untuk resource di project private.
type ProjectController struct {
	DB *gorm.DB
}

func NewProjectController(db *gorm.DB) *ProjectController {
	return &ProjectController{DB: db}
}

// CreateProject -> project baru
func (pc *ProjectController) CreateProject(c *gin.Context) {
	type request struct {
		Name       string `json:"name" binding:"required"`
		Identifier string `json:"identifier" binding:"required"`
		Public     bool   `json:"public"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	project := models.Project{
		Name:       req.Name,
		Identifier: req.Identifier,
		Public:     req.Public,
	}
	if err := pc.DB.Create(&project).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Project created: %s (id=%d)", project.Identifier, project.ID)

	utils.RespondJSON(c, http.StatusCreated, "Project created", project)
}

// AddMember -> daftarkan user sebagai member sebuah project
func (pc *ProjectController) AddMember(c *gin.Context) {
	idStr := c.Param("project_id")
	projectID, err := strconv.Atoi(idStr)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid project id"))
		return
	}

	type request struct {
		UserID uint   `json:"user_id" binding:"required"`
		Role   string `json:"role"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Role == "" {
		req.Role = "member"
	}

	var project models.Project
	if err := pc.DB.First(&project, projectID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	var user models.User
	if err := pc.DB.First(&user, req.UserID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	member := models.Member{
		ProjectID: project.ID,
		UserID:    user.ID,
		Role:      req.Role,
	}
	if err := pc.DB.Create(&member).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Member added", gin.H{
		"project_id": project.ID,
		"user_id":    user.ID,
		"role":       member.Role,
	})
}
