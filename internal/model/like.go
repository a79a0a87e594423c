package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Like struct {
	ID         string    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID     string    `gorm:"type:uuid;not null;index:idx_user_target,unique" json:"user_id"`
	TargetType string    `gorm:"type:varchar(20);not null;index:idx_user_target,unique" json:"target_type"` // post, comment
	TargetID   string    `gorm:"type:uuid;not null;index:idx_user_target,unique" json:"target_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relationships
	User User `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
}

// BeforeCreate hook to generate UUID
func (l *Like) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (Like) TableName() string {
	return "likes"
}

// Constants for target types
const (
	TargetTypePost    = "post"
	TargetTypeComment = "comment"
)

// LikeTarget is a tagged reference to the entity a like applies to: exactly
// one of a post or a comment. The two-nullable-ids wire shape is converted to
// this form at the boundary so "both set" and "both empty" cannot reach the
// like engine.
type LikeTarget struct {
	Type string
	ID   string
}

// PostTarget returns a like target pointing at a post.
func PostTarget(postID string) LikeTarget {
	return LikeTarget{Type: TargetTypePost, ID: postID}
}

// CommentTarget returns a like target pointing at a comment.
func CommentTarget(commentID string) LikeTarget {
	return LikeTarget{Type: TargetTypeComment, ID: commentID}
}

// Valid reports whether the target carries a known type and a non-empty id.
func (t LikeTarget) Valid() bool {
	return t.ID != "" && (t.Type == TargetTypePost || t.Type == TargetTypeComment)
}
