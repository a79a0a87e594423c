package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"blogpulse/internal/model"
	"blogpulse/internal/util"

	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(comment *model.Comment) error
	FindByID(id string) (*model.Comment, error)
	FindByPostID(postID string) ([]*model.Comment, error)
	Update(comment *model.Comment) error
	Delete(id string) error
	CountByPostID(postID string) (int64, error)
}

type commentRepository struct {
	db    *gorm.DB
	redis *util.RedisClient
}

const (
	commentByPostCachePrefix = "comment:post:"
	commentCountCachePrefix  = "comment:count:"
	commentCacheExpiration   = 15 * time.Minute
)

func NewCommentRepository(db *gorm.DB, redis *util.RedisClient) CommentRepository {
	return &commentRepository{
		db:    db,
		redis: redis,
	}
}

// Create creates a new comment and invalidates the post's comment cache
func (r *commentRepository) Create(comment *model.Comment) error {
	if err := r.db.Create(comment).Error; err != nil {
		return err
	}

	if r.redis != nil {
		r.invalidatePostCache(comment.PostID)
	}

	return nil
}

// FindByID finds a comment by ID
func (r *commentRepository) FindByID(id string) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.Preload("Author").Where("id = ?", id).First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// FindByPostID loads every comment for a post in a single query, author rows
// included, ordered deterministically (creation time, then id). The reply
// tree is assembled by the caller, never by per-row follow-up queries.
func (r *commentRepository) FindByPostID(postID string) ([]*model.Comment, error) {
	cacheKey := commentByPostCachePrefix + postID
	if r.redis != nil {
		cached, err := r.redis.Get(cacheKey)
		if err == nil {
			var comments []*model.Comment
			if json.Unmarshal([]byte(cached), &comments) == nil {
				return comments, nil
			}
		}
	}

	var comments []*model.Comment
	err := r.db.Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}

	if r.redis != nil {
		if commentsJSON, err := json.Marshal(comments); err == nil {
			r.redis.Set(cacheKey, string(commentsJSON), commentCacheExpiration)
		}
	}

	return comments, nil
}

// Update updates a comment and invalidates cache
func (r *commentRepository) Update(comment *model.Comment) error {
	if err := r.db.Save(comment).Error; err != nil {
		return err
	}

	if r.redis != nil {
		r.invalidatePostCache(comment.PostID)
	}

	return nil
}

// Delete hard-deletes a comment. Children are left in place with a dangling
// ParentID; the tree builder decides how to render them.
func (r *commentRepository) Delete(id string) error {
	var comment model.Comment
	if err := r.db.Where("id = ?", id).First(&comment).Error; err != nil {
		return err
	}

	postID := comment.PostID

	if err := r.db.Unscoped().Delete(&comment).Error; err != nil {
		return err
	}

	if r.redis != nil {
		r.invalidatePostCache(postID)
	}

	return nil
}

// CountByPostID counts comments by post ID
func (r *commentRepository) CountByPostID(postID string) (int64, error) {
	cacheKey := commentCountCachePrefix + postID
	if r.redis != nil {
		cached, err := r.redis.Get(cacheKey)
		if err == nil {
			var count int64
			if _, err := fmt.Sscanf(cached, "%d", &count); err == nil {
				return count, nil
			}
		}
	}

	var count int64
	err := r.db.Model(&model.Comment{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	if r.redis != nil {
		r.redis.Set(cacheKey, fmt.Sprintf("%d", count), commentCacheExpiration)
	}

	return count, nil
}

func (r *commentRepository) invalidatePostCache(postID string) {
	if r.redis == nil {
		return
	}
	r.redis.Delete(commentByPostCachePrefix + postID)
	r.redis.Delete(commentCountCachePrefix + postID)
}
