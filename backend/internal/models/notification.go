package models

import (
	"time"

	"github.com/gofrs/uuid"
)

const (
	NotificationComment     = "comment"
	NotificationAssigned    = "assigned"
	NotificationMemberAdded = "member_added"
	NotificationWelcome     = "welcome"
)

type Notification struct {
	ID        uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid"`
	UserID    uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	SenderID  *uuid.UUID `json:"sender_id" gorm:"type:uuid"`
	Type      string     `json:"type" gorm:"not null"`
	Title     string     `json:"title" gorm:"not null"`
	Message   string     `json:"message" gorm:"type:text"`
	TaskID    *uuid.UUID `json:"task_id" gorm:"type:uuid"`
	CommentID *uuid.UUID `json:"comment_id" gorm:"type:uuid"`
	Read      bool       `json:"read" gorm:"not null;default:false"`
	CreatedAt time.Time  `json:"created_at"`
}
