package controllers

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"farmwise/middlewares"
	"farmwise/services"
	"farmwise/utils"
)

type MessageController struct {
	Chat *services.ChatService
	// UploadDir receives message image attachments; they are served back
	// under /uploads.
	UploadDir string
}

// SendMessage is the HTTP send path. Multipart form: message, optional
// threadId, replyTo and image. It runs the same send operation as the relay,
// broadcast included, so socket clients see HTTP-originated messages.
func (ctl *MessageController) SendMessage(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "missing credentials")
		return
	}

	in := services.SendInput{
		Body:     c.PostForm("message"),
		ThreadID: c.PostForm("threadId"),
	}
	if v := c.PostForm("replyTo"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, "invalid replyTo")
			return
		}
		replyTo := uint(id)
		in.ReplyToID = &replyTo
	}

	if file, err := c.FormFile("image"); err == nil {
		name := uuid.New().String() + filepath.Ext(file.Filename)
		dst := filepath.Join(ctl.UploadDir, name)
		if err := c.SaveUploadedFile(file, dst); err != nil {
			log.Error().Err(err).Str("file", file.Filename).Msg("saving attachment failed")
			utils.RespondError(c, http.StatusInternalServerError, "failed to store attachment")
			return
		}
		in.ImageURL = "/uploads/" + name
	}

	resolved, err := ctl.Chat.Send(user.ID, in, "http")
	if err != nil {
		respondChatError(c, err)
		return
	}
	utils.RespondSuccess(c, http.StatusCreated, resolved, "Message sent successfully")
}

// GetMessages returns bounded, ascending history for a thread. No threadId
// reads the community room.
func (ctl *MessageController) GetMessages(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "missing credentials")
		return
	}

	q := services.HistoryQuery{ThreadID: c.Query("threadId")}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			utils.RespondError(c, http.StatusBadRequest, "invalid limit")
			return
		}
		q.Limit = n
	}
	if v := c.Query("beforeId"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, "invalid beforeId")
			return
		}
		q.BeforeID = uint(n)
	}

	msgs, err := ctl.Chat.History(user.ID, q)
	if err != nil {
		respondChatError(c, err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, msgs, "Messages retrieved successfully")
}

func respondChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEmptyMessage):
		utils.RespondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrReplyNotFound), errors.Is(err, services.ErrThreadNotFound):
		utils.RespondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrNotParticipant):
		utils.RespondError(c, http.StatusForbidden, err.Error())
	default:
		log.Error().Err(err).Msg("chat operation failed")
		utils.RespondError(c, http.StatusInternalServerError, "internal error")
	}
}
