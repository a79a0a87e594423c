package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment is stored flat; the reply tree is materialized per request by the
// comment service from ParentID links. Deleting a parent is a hard delete and
// does not cascade to its children.
type Comment struct {
	ID        string    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	PostID    string    `gorm:"type:uuid;not null;index;references:posts(id)" json:"post_id"`
	AuthorID  *string   `gorm:"type:uuid;index;references:users(id)" json:"author_id,omitempty"` // nullable, author account may be removed
	ParentID  *string   `gorm:"type:uuid;index" json:"parent_id,omitempty"`                      // reply target, must be a comment on the same post
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Author *User `gorm:"foreignKey:AuthorID;references:ID" json:"author,omitempty"`
}

// BeforeCreate hook to generate UUID
func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (Comment) TableName() string {
	return "comments"
}
