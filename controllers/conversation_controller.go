package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"farmwise/middlewares"
	"farmwise/services"
	"farmwise/utils"
)

type ConversationController struct {
	Conversations *services.ConversationService
}

type createConversationInput struct {
	ReceiverID uint `json:"receiver_id" binding:"required"`
}

// CreateConversation returns the two-party conversation with the receiver,
// creating it on first contact.
func (ctl *ConversationController) CreateConversation(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "missing credentials")
		return
	}

	var input createConversationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	conv, err := ctl.Conversations.GetOrCreate(user.ID, input.ReceiverID)
	switch {
	case errors.Is(err, services.ErrSelfConversation):
		utils.RespondError(c, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, services.ErrReceiverNotFound):
		utils.RespondError(c, http.StatusNotFound, err.Error())
		return
	case err != nil:
		log.Error().Err(err).Msg("creating conversation failed")
		utils.RespondError(c, http.StatusInternalServerError, "failed to create conversation")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, gin.H{"conversation_id": conv.ConversationID}, "")
}

// ListConversations returns the caller's conversations with peers resolved.
func (ctl *ConversationController) ListConversations(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "missing credentials")
		return
	}

	views, err := ctl.Conversations.ListFor(user.ID)
	if err != nil {
		log.Error().Err(err).Msg("listing conversations failed")
		utils.RespondError(c, http.StatusInternalServerError, "failed to fetch conversations")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, views, "")
}
