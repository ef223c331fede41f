package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"farmwise/models"
)

var (
	ErrSelfConversation  = errors.New("cannot create a conversation with yourself")
	ErrReceiverNotFound  = errors.New("receiver does not exist")
	ErrConversationUnset = errors.New("conversation not found")
)

// ConversationService manages the two-party threads behind private chat.
type ConversationService struct {
	db *gorm.DB
}

func NewConversationService(db *gorm.DB) *ConversationService {
	return &ConversationService{db: db}
}

// GetOrCreate returns the conversation between two users, creating it on
// first use. Participants are normalized so a pair maps to one conversation.
func (s *ConversationService) GetOrCreate(userID, receiverID uint) (*models.Conversation, error) {
	if userID == receiverID {
		return nil, ErrSelfConversation
	}
	var receiver models.User
	if err := s.db.First(&receiver, receiverID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReceiverNotFound
		}
		return nil, err
	}

	a, b := userID, receiverID
	if a > b {
		a, b = b, a
	}

	var conv models.Conversation
	err := s.db.Where("participant_a = ? AND participant_b = ?", a, b).First(&conv).Error
	if err == nil {
		return &conv, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	conv = models.Conversation{
		ConversationID: uuid.New().String(),
		ParticipantA:   a,
		ParticipantB:   b,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&conv).Error; err != nil {
			return err
		}
		parts := []models.ConversationParticipant{
			{ConversationID: conv.ConversationID, UserID: a},
			{ConversationID: conv.ConversationID, UserID: b},
		}
		return tx.Create(&parts).Error
	})
	if err != nil {
		// A concurrent first contact may have won the unique pair index.
		var existing models.Conversation
		if lookupErr := s.db.Where("participant_a = ? AND participant_b = ?", a, b).First(&existing).Error; lookupErr == nil {
			return &existing, nil
		}
		return nil, err
	}
	return &conv, nil
}

// ConversationView is a listing entry with the peer resolved.
type ConversationView struct {
	ConversationID string            `json:"conversation_id"`
	Peer           models.PublicUser `json:"peer"`
	CreatedAt      time.Time         `json:"created_at"`
}

// ListFor returns the caller's conversations with the other participant
// expanded into display fields.
func (s *ConversationService) ListFor(userID uint) ([]ConversationView, error) {
	var convs []models.Conversation
	err := s.db.
		Preload("ParticipantAUser").
		Preload("ParticipantBUser").
		Where("participant_a = ? OR participant_b = ?", userID, userID).
		Order("created_at DESC").
		Find(&convs).Error
	if err != nil {
		return nil, err
	}

	out := make([]ConversationView, 0, len(convs))
	for _, conv := range convs {
		peer := conv.ParticipantAUser
		if conv.ParticipantA == userID {
			peer = conv.ParticipantBUser
		}
		out = append(out, ConversationView{
			ConversationID: conv.ConversationID,
			Peer:           peer.Public(),
			CreatedAt:      conv.CreatedAt,
		})
	}
	return out, nil
}

// Get loads a conversation by id.
func (s *ConversationService) Get(threadID string) (*models.Conversation, error) {
	var conv models.Conversation
	if err := s.db.Where("conversation_id = ?", threadID).First(&conv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationUnset
		}
		return nil, err
	}
	return &conv, nil
}
