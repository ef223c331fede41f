package models

import "time"

// Conversation is a private two-party thread. A message's ThreadID refers to
// ConversationID; an empty ThreadID means the community room.
type Conversation struct {
	ConversationID string `gorm:"primaryKey;type:varchar(36)" json:"conversation_id"`
	// ParticipantA < ParticipantB, normalized at creation so a pair of users
	// maps to at most one conversation.
	ParticipantA uint      `gorm:"uniqueIndex:idx_conversation_pair;not null" json:"participant_a"`
	ParticipantB uint      `gorm:"uniqueIndex:idx_conversation_pair;not null" json:"participant_b"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`

	ParticipantAUser User `gorm:"foreignKey:ParticipantA" json:"-"`
	ParticipantBUser User `gorm:"foreignKey:ParticipantB" json:"-"`
}

// HasParticipant reports whether userID belongs to the conversation.
func (c *Conversation) HasParticipant(userID uint) bool {
	return c.ParticipantA == userID || c.ParticipantB == userID
}

// Peer returns the other participant's id.
func (c *Conversation) Peer(userID uint) uint {
	if c.ParticipantA == userID {
		return c.ParticipantB
	}
	return c.ParticipantA
}

// ConversationParticipant tracks per-member read state.
type ConversationParticipant struct {
	ConversationID string    `gorm:"primaryKey;type:varchar(36)" json:"conversation_id"`
	UserID         uint      `gorm:"primaryKey" json:"user_id"`
	LastRead       time.Time `json:"last_read"`
	JoinedAt       time.Time `gorm:"autoCreateTime" json:"joined_at"`
}
