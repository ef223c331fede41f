package models

import "time"

// Expert verification statuses.
const (
	ExpertPending  = "pending"
	ExpertVerified = "verified"
	ExpertRejected = "rejected"
)

// Expert is a verification application. Created on submission, mutated only
// by the verify/reject transitions, never deleted in normal flow.
type Expert struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         uint      `gorm:"index;not null" json:"user_id"`
	Specialization string    `gorm:"size:190;not null" json:"specialization"`
	Experience     string    `json:"experience"`
	City           string    `gorm:"size:120" json:"city"`
	Country        string    `gorm:"size:120" json:"country"`
	About          string    `gorm:"type:text" json:"about"`
	DegreeDocument string    `json:"degree_document"`
	ProofDocument  string    `json:"proof_document"`
	Status         string    `gorm:"size:16;index;default:'pending'" json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
