package services

import (
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"farmwise/models"
	"farmwise/utils"
)

// Chat-level failures the transports translate into their own error surface.
var (
	ErrEmptyMessage   = errors.New("message body is required")
	ErrThreadNotFound = errors.New("thread not found")
	ErrNotParticipant = errors.New("not a participant of this thread")
	ErrReplyNotFound  = errors.New("reply target not found")
)

// ChatService is the single source of truth for sending: persist, resolve,
// broadcast. Both the relay and the HTTP endpoint call into it, so the two
// paths cannot diverge.
type ChatService struct {
	db      *gorm.DB
	hub     *Hub
	pageCap int
}

func NewChatService(db *gorm.DB, hub *Hub, pageCap int) *ChatService {
	if pageCap <= 0 {
		pageCap = 200
	}
	return &ChatService{db: db, hub: hub, pageCap: pageCap}
}

// SendInput is a send request after transport-level decoding. The author is
// never part of it: identity comes from the authenticated caller.
type SendInput struct {
	Body      string
	ThreadID  string
	ReplyToID *uint
	ImageURL  string
}

// Send persists a message attributed to senderID, resolves author and reply
// target, and fans the resolved message out to the thread's room. The write
// is durable before the broadcast; the broadcast itself is best effort.
func (s *ChatService) Send(senderID uint, in SendInput, transport string) (models.ResolvedMessage, error) {
	in.Body = strings.TrimSpace(in.Body)
	if in.Body == "" && in.ImageURL == "" {
		return models.ResolvedMessage{}, ErrEmptyMessage
	}

	if in.ThreadID != "" {
		if err := s.authorizeThread(senderID, in.ThreadID); err != nil {
			return models.ResolvedMessage{}, err
		}
	}
	if in.ReplyToID != nil {
		var target models.Message
		if err := s.db.First(&target, *in.ReplyToID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ResolvedMessage{}, ErrReplyNotFound
			}
			return models.ResolvedMessage{}, err
		}
		// A reply target must live in the thread the message goes to; a
		// target elsewhere reads as missing so thread content never
		// resurfaces in rooms the sender cannot read.
		if target.ThreadID != in.ThreadID {
			return models.ResolvedMessage{}, ErrReplyNotFound
		}
	}

	msg := models.Message{
		UserID:    senderID,
		Body:      in.Body,
		ThreadID:  in.ThreadID,
		ReplyToID: in.ReplyToID,
		ImageURL:  in.ImageURL,
	}
	if err := s.db.Create(&msg).Error; err != nil {
		log.Error().Err(err).Uint("user_id", senderID).Msg("persisting message failed")
		return models.ResolvedMessage{}, err
	}

	resolved, err := s.resolve(msg.ID)
	if err != nil {
		return models.ResolvedMessage{}, err
	}

	utils.MessagesSent.WithLabelValues(transport).Inc()
	s.hub.Broadcast(msg.ThreadID, OutEvent{Type: EventReceiveMessage, Data: resolved})
	return resolved, nil
}

// Typing relays a stateless typing notice to the rest of the room. Nothing
// is persisted and the server does no debouncing.
func (s *ChatService) Typing(c *Client, threadID string) {
	s.hub.BroadcastExcept(threadID, OutEvent{
		Type: EventUserTyping,
		Data: map[string]interface{}{"user_id": c.UserID, "username": c.Username, "thread_id": threadID},
	}, c)
}

// MarkRead advances the caller's read marker on a thread.
func (s *ChatService) MarkRead(userID uint, threadID string) error {
	if err := s.authorizeThread(userID, threadID); err != nil {
		return err
	}
	return s.db.Model(&models.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", threadID, userID).
		Update("last_read", time.Now()).Error
}

// HistoryQuery bounds a history read.
type HistoryQuery struct {
	ThreadID string
	Limit    int
	BeforeID uint
}

// History returns resolved messages for a thread in ascending creation
// order. An empty thread id reads the community room; thread reads require
// membership. Reads are always bounded: Limit defaults to 50 and is capped.
func (s *ChatService) History(requesterID uint, q HistoryQuery) ([]models.ResolvedMessage, error) {
	if q.ThreadID != "" {
		if err := s.authorizeThread(requesterID, q.ThreadID); err != nil {
			return nil, err
		}
	}
	if q.Limit <= 0 {
		q.Limit = 50
	}
	if q.Limit > s.pageCap {
		q.Limit = s.pageCap
	}

	tx := s.db.
		Preload("User").
		Preload("ReplyTo").
		Preload("ReplyTo.User").
		Where("thread_id = ?", q.ThreadID)
	if q.BeforeID > 0 {
		tx = tx.Where("id < ?", q.BeforeID)
	}

	var msgs []models.Message
	if err := tx.Order("created_at DESC").Order("id DESC").Limit(q.Limit).Find(&msgs).Error; err != nil {
		return nil, err
	}

	// Queried newest-first for the cursor, reversed for ascending display.
	out := make([]models.ResolvedMessage, len(msgs))
	for i, m := range msgs {
		out[len(msgs)-1-i] = m.Resolve()
	}
	return out, nil
}

// AuthorizeThread reports whether userID may read and write a thread.
func (s *ChatService) AuthorizeThread(userID uint, threadID string) error {
	if threadID == CommunityRoom {
		return nil
	}
	return s.authorizeThread(userID, threadID)
}

func (s *ChatService) authorizeThread(userID uint, threadID string) error {
	var conv models.Conversation
	if err := s.db.Where("conversation_id = ?", threadID).First(&conv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrThreadNotFound
		}
		return err
	}
	if !conv.HasParticipant(userID) {
		return ErrNotParticipant
	}
	return nil
}

func (s *ChatService) resolve(id uint) (models.ResolvedMessage, error) {
	var msg models.Message
	err := s.db.
		Preload("User").
		Preload("ReplyTo").
		Preload("ReplyTo.User").
		First(&msg, id).Error
	if err != nil {
		return models.ResolvedMessage{}, err
	}
	return msg.Resolve(), nil
}
