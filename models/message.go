package models

import "time"

// Message is one chat entry. Immutable once created; ordering for display is
// by (created_at, id) ascending.
type Message struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `json:"-" gorm:"index;not null"`
	Body      string    `json:"message" gorm:"column:message;type:text;not null"`
	ThreadID  string    `json:"thread_id,omitempty" gorm:"index;size:36"`
	ReplyToID *uint     `json:"-" gorm:"index"`
	ImageURL  string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`

	// Read-side associations, resolved with Preload. Weak references: no
	// cascade, a deleted reply target simply resolves to nil.
	User    User     `json:"-" gorm:"foreignKey:UserID"`
	ReplyTo *Message `json:"-" gorm:"foreignKey:ReplyToID"`
}

// ResolvedMessage is the display-ready shape broadcast over the relay and
// returned by the history endpoint: author and reply target expanded.
type ResolvedMessage struct {
	ID        uint           `json:"id"`
	User      PublicUser     `json:"user"`
	Body      string         `json:"message"`
	ThreadID  string         `json:"thread_id,omitempty"`
	ReplyTo   *ResolvedReply `json:"reply_to,omitempty"`
	ImageURL  string         `json:"image,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// ResolvedReply carries just the reply target's text and author.
type ResolvedReply struct {
	ID   uint       `json:"id"`
	Body string     `json:"message"`
	User PublicUser `json:"user"`
}

// Resolve expands the preloaded associations into the wire shape.
func (m *Message) Resolve() ResolvedMessage {
	out := ResolvedMessage{
		ID:        m.ID,
		User:      m.User.Public(),
		Body:      m.Body,
		ThreadID:  m.ThreadID,
		ImageURL:  m.ImageURL,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.ReplyTo != nil {
		out.ReplyTo = &ResolvedReply{
			ID:   m.ReplyTo.ID,
			Body: m.ReplyTo.Body,
			User: m.ReplyTo.User.Public(),
		}
	}
	return out
}
