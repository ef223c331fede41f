package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"farmwise/models"
	"farmwise/services"
	"farmwise/utils"
)

// Fixed handshake rejection reasons. Clients branch on these strings.
const (
	ReasonAuthError    = "Authentication error"
	ReasonInvalidToken = "Invalid token"
	ReasonTokenExpired = "Token expired"
	ReasonUserMismatch = "Authentication error: user mismatch"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type WSController struct {
	DB     *gorm.DB
	Tokens *services.TokenService
	Hub    *services.Hub
	Chat   *services.ChatService
}

// Handle authenticates the handshake and, on success, hands the connection
// to the hub. Rejections happen before the upgrade so a failed connection
// never reaches the connected state.
func (ctl *WSController) Handle(c *gin.Context) {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		ctl.reject(c, "missing_token", ReasonAuthError)
		return
	}

	claims, err := ctl.Tokens.Verify(tokenStr)
	if err != nil {
		if errors.Is(err, services.ErrTokenExpired) {
			ctl.reject(c, "expired", ReasonTokenExpired)
		} else {
			ctl.reject(c, "invalid", ReasonInvalidToken)
		}
		return
	}

	// The claimed identity must match the token subject. The claimed id is
	// only ever used for this check; everything after trusts the token.
	if claimed := c.Query("userId"); claimed != "" {
		id, convErr := strconv.ParseUint(claimed, 10, 64)
		if convErr != nil || uint(id) != claims.UserID {
			ctl.reject(c, "mismatch", ReasonUserMismatch)
			return
		}
	}

	var user models.User
	if err := ctl.DB.First(&user, claims.UserID).Error; err != nil {
		ctl.reject(c, "unknown_user", ReasonAuthError)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := ctl.Hub.Attach(user.ID, user.Username, conn)
	defer ctl.Hub.Detach(client)
	client.ReadLoop(ctl.dispatch)
}

func (ctl *WSController) reject(c *gin.Context, reason, message string) {
	utils.WSAuthFailures.WithLabelValues(reason).Inc()
	utils.RespondError(c, http.StatusUnauthorized, message)
}

type sendPayload struct {
	Body     string `json:"message"`
	ThreadID string `json:"threadId"`
	ReplyTo  *uint  `json:"replyTo"`
}

type threadPayload struct {
	ThreadID string `json:"threadId"`
}

// dispatch routes one inbound event. Identity always comes from the
// authenticated client, never from the payload.
func (ctl *WSController) dispatch(client *services.Client, ev services.Event) {
	switch ev.Type {
	case services.EventSendMessage:
		var p sendPayload
		if err := json.Unmarshal(ev.Data, &p); err != nil {
			client.SendError("malformed sendMessage payload")
			return
		}
		_, err := ctl.Chat.Send(client.UserID, services.SendInput{
			Body:      p.Body,
			ThreadID:  p.ThreadID,
			ReplyToID: p.ReplyTo,
		}, "ws")
		if err != nil {
			client.SendError(chatErrorMessage(err))
		}

	case services.EventTyping:
		var p threadPayload
		if len(ev.Data) > 0 {
			_ = json.Unmarshal(ev.Data, &p)
		}
		if ctl.Chat.AuthorizeThread(client.UserID, p.ThreadID) != nil {
			return
		}
		ctl.Chat.Typing(client, p.ThreadID)

	case services.EventSubscribe:
		var p threadPayload
		if err := json.Unmarshal(ev.Data, &p); err != nil || p.ThreadID == "" {
			client.SendError("malformed subscribe payload")
			return
		}
		if err := ctl.Chat.AuthorizeThread(client.UserID, p.ThreadID); err != nil {
			client.SendError(chatErrorMessage(err))
			return
		}
		ctl.Hub.Join(p.ThreadID, client)
		client.Send(services.OutEvent{
			Type: services.EventSubscribed,
			Data: map[string]string{"thread_id": p.ThreadID},
		})

	case services.EventMarkRead:
		var p threadPayload
		if err := json.Unmarshal(ev.Data, &p); err != nil || p.ThreadID == "" {
			client.SendError("malformed markRead payload")
			return
		}
		if err := ctl.Chat.MarkRead(client.UserID, p.ThreadID); err != nil {
			client.SendError(chatErrorMessage(err))
		}

	case services.EventUnsubscribe:
		var p threadPayload
		if err := json.Unmarshal(ev.Data, &p); err != nil || p.ThreadID == "" {
			return
		}
		ctl.Hub.Leave(p.ThreadID, client)

	default:
		client.SendError("unknown event type: " + ev.Type)
	}
}

func chatErrorMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrEmptyMessage),
		errors.Is(err, services.ErrThreadNotFound),
		errors.Is(err, services.ErrNotParticipant),
		errors.Is(err, services.ErrReplyNotFound):
		return err.Error()
	default:
		return "request failed"
	}
}
