package repository

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"blogpulse/internal/model"
	"blogpulse/internal/util"

	"gorm.io/gorm"
)

// ErrDuplicateLike is returned when an insert hits the (user, target) unique
// index. The like engine treats it as "already liked", not as a failure.
var ErrDuplicateLike = errors.New("like already exists for user and target")

type LikeRepository interface {
	Create(like *model.Like) error
	FindByUserAndTarget(userID string, target model.LikeTarget) (*model.Like, error)
	DeleteByUserAndTarget(userID string, target model.LikeTarget) (bool, error)
	CountByTarget(target model.LikeTarget) (int64, error)
	CountByTargets(targetType string, targetIDs []string) (map[string]int64, error)
	FindUserLikedTargets(userID, targetType string, targetIDs []string) (map[string]bool, error)
}

type likeRepository struct {
	db    *gorm.DB
	redis *util.RedisClient
}

const (
	likeCountCachePrefix = "like:count:"
	likeCacheExpiration  = 10 * time.Minute
)

func NewLikeRepository(db *gorm.DB, redis *util.RedisClient) LikeRepository {
	return &likeRepository{
		db:    db,
		redis: redis,
	}
}

// Create inserts a like row. The unique index on (user_id, target_type,
// target_id) is the correctness guarantee under concurrent toggles; a
// violation comes back as ErrDuplicateLike.
func (r *likeRepository) Create(like *model.Like) error {
	if err := r.db.Create(like).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateLike
		}
		return err
	}

	if r.redis != nil {
		r.invalidateCountCache(like.TargetType, like.TargetID)
	}

	return nil
}

// FindByUserAndTarget finds the like row for a (user, target) pair, if any
func (r *likeRepository) FindByUserAndTarget(userID string, target model.LikeTarget) (*model.Like, error) {
	var like model.Like
	err := r.db.
		Where("user_id = ? AND target_type = ? AND target_id = ?", userID, target.Type, target.ID).
		First(&like).Error
	if err != nil {
		return nil, err
	}
	return &like, nil
}

// DeleteByUserAndTarget hard-deletes the like row for a (user, target) pair.
// Returns false when no row existed.
func (r *likeRepository) DeleteByUserAndTarget(userID string, target model.LikeTarget) (bool, error) {
	result := r.db.
		Where("user_id = ? AND target_type = ? AND target_id = ?", userID, target.Type, target.ID).
		Delete(&model.Like{})
	if result.Error != nil {
		return false, result.Error
	}

	if result.RowsAffected > 0 && r.redis != nil {
		r.invalidateCountCache(target.Type, target.ID)
	}

	return result.RowsAffected > 0, nil
}

// CountByTarget counts likes for a target, trying the cache first
func (r *likeRepository) CountByTarget(target model.LikeTarget) (int64, error) {
	cacheKey := fmt.Sprintf("%s%s:%s", likeCountCachePrefix, target.Type, target.ID)
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
	err := r.db.Model(&model.Like{}).
		Where("target_type = ? AND target_id = ?", target.Type, target.ID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	if r.redis != nil {
		r.redis.Set(cacheKey, fmt.Sprintf("%d", count), likeCacheExpiration)
	}

	return count, nil
}

// CountByTargets counts likes for multiple targets in one query
func (r *likeRepository) CountByTargets(targetType string, targetIDs []string) (map[string]int64, error) {
	if len(targetIDs) == 0 {
		return map[string]int64{}, nil
	}
	var results []struct {
		TargetID string
		Count    int64
	}
	err := r.db.Model(&model.Like{}).
		Select("target_id, count(*) as count").
		Where("target_type = ? AND target_id IN ?", targetType, targetIDs).
		Group("target_id").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	m := make(map[string]int64)
	for _, row := range results {
		m[row.TargetID] = row.Count
	}
	// Ensure all IDs have entry (0 if not found)
	for _, id := range targetIDs {
		if _, ok := m[id]; !ok {
			m[id] = 0
		}
	}
	return m, nil
}

// FindUserLikedTargets returns which of the given targets the user has liked
func (r *likeRepository) FindUserLikedTargets(userID, targetType string, targetIDs []string) (map[string]bool, error) {
	if len(targetIDs) == 0 {
		return map[string]bool{}, nil
	}
	var likes []model.Like
	err := r.db.Select("target_id").
		Where("user_id = ? AND target_type = ? AND target_id IN ?", userID, targetType, targetIDs).
		Find(&likes).Error
	if err != nil {
		return nil, err
	}
	m := make(map[string]bool)
	for _, like := range likes {
		m[like.TargetID] = true
	}
	return m, nil
}

func (r *likeRepository) invalidateCountCache(targetType, targetID string) {
	if r.redis == nil {
		return
	}
	r.redis.Delete(fmt.Sprintf("%s%s:%s", likeCountCachePrefix, targetType, targetID))
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// Postgres unique_violation surfaced without translation
	return strings.Contains(err.Error(), "duplicate key value") ||
		strings.Contains(err.Error(), "SQLSTATE 23505")
}
