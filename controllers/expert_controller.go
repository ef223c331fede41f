package controllers

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"farmwise/middlewares"
	"farmwise/models"
	"farmwise/utils"
)

type ExpertController struct {
	DB        *gorm.DB
	UploadDir string
}

// CreateExpert submits a verification application. Multipart form with the
// profile fields plus two credential documents.
func (ctl *ExpertController) CreateExpert(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "missing credentials")
		return
	}

	specialization := c.PostForm("specialization")
	if specialization == "" {
		utils.RespondError(c, http.StatusBadRequest, "specialization is required")
		return
	}

	degreeURL, err := ctl.saveDocument(c, "degreeDocument")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "degree document upload failed")
		return
	}
	proofURL, err := ctl.saveDocument(c, "proofDocument")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "proof document upload failed")
		return
	}

	expert := models.Expert{
		UserID:         user.ID,
		Specialization: specialization,
		Experience:     c.PostForm("experience"),
		City:           c.PostForm("city"),
		Country:        c.PostForm("country"),
		About:          c.PostForm("about"),
		DegreeDocument: degreeURL,
		ProofDocument:  proofURL,
		Status:         models.ExpertPending,
	}
	if err := ctl.DB.Create(&expert).Error; err != nil {
		log.Error().Err(err).Uint("user_id", user.ID).Msg("creating expert application failed")
		utils.RespondError(c, http.StatusInternalServerError, "failed to create expert")
		return
	}
	utils.RespondSuccess(c, http.StatusCreated, expert, "Expert application submitted")
}

func (ctl *ExpertController) GetAllExperts(c *gin.Context) {
	var experts []models.Expert
	tx := ctl.DB.Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		tx = tx.Where("status = ?", status)
	}
	if err := tx.Find(&experts).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "failed to fetch experts")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, experts, "")
}

func (ctl *ExpertController) GetExpertByID(c *gin.Context) {
	expert, ok := ctl.findExpert(c)
	if !ok {
		return
	}
	utils.RespondSuccess(c, http.StatusOK, expert, "")
}

// VerifyExpert is the admin-only pending→verified transition. The owning
// user's role is promoted alongside.
func (ctl *ExpertController) VerifyExpert(c *gin.Context) {
	ctl.transition(c, models.ExpertVerified)
}

// RejectExpert is the admin-only pending→rejected transition.
func (ctl *ExpertController) RejectExpert(c *gin.Context) {
	ctl.transition(c, models.ExpertRejected)
}

func (ctl *ExpertController) transition(c *gin.Context, status string) {
	expert, ok := ctl.findExpert(c)
	if !ok {
		return
	}

	expert.Status = status
	if err := ctl.DB.Save(expert).Error; err != nil {
		log.Error().Err(err).Uint("expert_id", expert.ID).Msg("expert status transition failed")
		utils.RespondError(c, http.StatusInternalServerError, "failed to update expert")
		return
	}
	if status == models.ExpertVerified {
		if err := ctl.DB.Model(&models.User{}).Where("id = ?", expert.UserID).
			Update("role", models.RoleExpert).Error; err != nil {
			log.Error().Err(err).Uint("user_id", expert.UserID).Msg("promoting user role failed")
		}
	}
	utils.RespondSuccess(c, http.StatusOK, expert, "Expert "+status)
}

func (ctl *ExpertController) findExpert(c *gin.Context) (*models.Expert, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "invalid expert id")
		return nil, false
	}
	var expert models.Expert
	if err := ctl.DB.First(&expert, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, "Expert not found")
		} else {
			utils.RespondError(c, http.StatusInternalServerError, "failed to fetch expert")
		}
		return nil, false
	}
	return &expert, true
}

func (ctl *ExpertController) saveDocument(c *gin.Context, field string) (string, error) {
	file, err := c.FormFile(field)
	if err != nil {
		return "", err
	}
	name := uuid.New().String() + filepath.Ext(file.Filename)
	if err := c.SaveUploadedFile(file, filepath.Join(ctl.UploadDir, name)); err != nil {
		return "", err
	}
	return "/uploads/" + name, nil
}
