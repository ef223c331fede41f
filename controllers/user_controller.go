package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"farmwise/middlewares"
	"farmwise/models"
	"farmwise/services"
	"farmwise/utils"
)

type UserController struct {
	DB     *gorm.DB
	Tokens *services.TokenService
}

type registerInput struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

func (ctl *UserController) Register(c *gin.Context) {
	var input registerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var existing models.User
	if err := ctl.DB.Where("username = ? OR email = ?", input.Username, input.Email).First(&existing).Error; err == nil {
		utils.RespondError(c, http.StatusBadRequest, "username or email already exists")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user := models.User{
		Username: input.Username,
		Email:    input.Email,
		Password: string(hashed),
		Role:     models.RoleFarmer,
	}
	if err := ctl.DB.Create(&user).Error; err != nil {
		log.Error().Err(err).Str("username", input.Username).Msg("creating user failed")
		utils.RespondError(c, http.StatusInternalServerError, "failed to create user")
		return
	}

	token, err := ctl.Tokens.Generate(&user)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "failed to generate token")
		return
	}
	utils.RespondSuccess(c, http.StatusCreated, gin.H{"token": token, "user": user.Public()}, "registered")
}

type loginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (ctl *UserController) Login(c *gin.Context) {
	var input loginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var user models.User
	if err := ctl.DB.Where("username = ?", input.Username).First(&user).Error; err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "invalid username or password")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "invalid username or password")
		return
	}

	now := time.Now()
	user.LastLogin = &now
	ctl.DB.Save(&user)

	token, err := ctl.Tokens.Generate(&user)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "failed to generate token")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, gin.H{"token": token, "user": user.Public()}, "logged in")
}

func (ctl *UserController) Me(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "missing credentials")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, user, "")
}
