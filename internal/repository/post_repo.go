package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"blogpulse/internal/model"
	"blogpulse/internal/util"

	"gorm.io/gorm"
)

type PostRepository interface {
	Create(post *model.Post) error
	FindByID(id string) (*model.Post, error)
	GetOwnerID(postID string) (string, error)
}

type postRepository struct {
	db    *gorm.DB
	redis *util.RedisClient
}

const (
	postCachePrefix     = "post:"
	postCacheExpiration = 15 * time.Minute
)

func NewPostRepository(db *gorm.DB, redis *util.RedisClient) PostRepository {
	return &postRepository{
		db:    db,
		redis: redis,
	}
}

func (r *postRepository) Create(post *model.Post) error {
	if err := r.db.Create(post).Error; err != nil {
		return err
	}
	if r.redis != nil {
		r.redis.Delete(postCachePrefix + post.ID)
	}
	return nil
}

// FindByID finds a post by ID, trying the cache first
func (r *postRepository) FindByID(id string) (*model.Post, error) {
	if r.redis != nil {
		cached, err := r.redis.Get(postCachePrefix + id)
		if err == nil {
			var post model.Post
			if json.Unmarshal([]byte(cached), &post) == nil {
				return &post, nil
			}
		}
	}

	var post model.Post
	err := r.db.Preload("Author").Where("id = ?", id).First(&post).Error
	if err != nil {
		return nil, err
	}

	if r.redis != nil {
		if postJSON, err := json.Marshal(&post); err == nil {
			r.redis.Set(postCachePrefix+id, string(postJSON), postCacheExpiration)
		}
	}

	return &post, nil
}

// GetOwnerID returns the author id for a post without loading the full row
func (r *postRepository) GetOwnerID(postID string) (string, error) {
	var authorID string
	err := r.db.Model(&model.Post{}).
		Select("author_id").
		Where("id = ?", postID).
		Scan(&authorID).Error
	if err != nil {
		return "", err
	}
	if authorID == "" {
		return "", fmt.Errorf("post not found: %s", postID)
	}
	return authorID, nil
}
