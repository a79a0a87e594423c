package service

import (
	"testing"

	"blogpulse/internal/apperr"
	"blogpulse/internal/model"
	"blogpulse/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func TestToggleCreatesLikeWhenNoneExists(t *testing.T) {
	mockRepo := new(MockLikeRepository)
	service := NewLikeService(mockRepo)

	target := model.PostTarget("post-1")
	mockRepo.On("FindByUserAndTarget", "user-1", target).Return(nil, gorm.ErrRecordNotFound)
	mockRepo.On("Create", mock.AnythingOfType("*model.Like")).Return(nil)

	result, err := service.Toggle("user-1", target)
	assert.NoError(t, err)
	assert.True(t, result.Liked)
	mockRepo.AssertExpectations(t)
}

func TestToggleRemovesExistingLike(t *testing.T) {
	mockRepo := new(MockLikeRepository)
	service := NewLikeService(mockRepo)

	target := model.CommentTarget("comment-1")
	existing := &model.Like{ID: "like-1", UserID: "user-1", TargetType: model.TargetTypeComment, TargetID: "comment-1"}
	mockRepo.On("FindByUserAndTarget", "user-1", target).Return(existing, nil)
	mockRepo.On("DeleteByUserAndTarget", "user-1", target).Return(true, nil)

	result, err := service.Toggle("user-1", target)
	assert.NoError(t, err)
	assert.False(t, result.Liked)
	mockRepo.AssertExpectations(t)
}

func TestToggleTwiceReturnsToOriginalState(t *testing.T) {
	mockRepo := new(MockLikeRepository)
	service := NewLikeService(mockRepo)

	target := model.PostTarget("post-1")
	existing := &model.Like{ID: "like-1", UserID: "user-1", TargetType: model.TargetTypePost, TargetID: "post-1"}

	// First toggle: no row, insert
	mockRepo.On("FindByUserAndTarget", "user-1", target).Return(nil, gorm.ErrRecordNotFound).Once()
	mockRepo.On("Create", mock.AnythingOfType("*model.Like")).Return(nil).Once()

	first, err := service.Toggle("user-1", target)
	assert.NoError(t, err)
	assert.True(t, first.Liked)

	// Second toggle: row exists, delete
	mockRepo.On("FindByUserAndTarget", "user-1", target).Return(existing, nil).Once()
	mockRepo.On("DeleteByUserAndTarget", "user-1", target).Return(true, nil).Once()

	second, err := service.Toggle("user-1", target)
	assert.NoError(t, err)
	assert.False(t, second.Liked)
	mockRepo.AssertExpectations(t)
}

func TestToggleDuplicateInsertCollapsesToLiked(t *testing.T) {
	mockRepo := new(MockLikeRepository)
	service := NewLikeService(mockRepo)

	// A concurrent toggle inserted the row between our find and create
	target := model.PostTarget("post-1")
	mockRepo.On("FindByUserAndTarget", "user-1", target).Return(nil, gorm.ErrRecordNotFound)
	mockRepo.On("Create", mock.AnythingOfType("*model.Like")).Return(repository.ErrDuplicateLike)

	result, err := service.Toggle("user-1", target)
	assert.NoError(t, err)
	assert.True(t, result.Liked)
	mockRepo.AssertExpectations(t)
}

func TestToggleRejectsInvalidTarget(t *testing.T) {
	mockRepo := new(MockLikeRepository)
	service := NewLikeService(mockRepo)

	_, err := service.Toggle("user-1", model.LikeTarget{})
	assert.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidTarget, apperr.CodeOf(err))

	_, err = service.Toggle("user-1", model.LikeTarget{Type: "unknown", ID: "x"})
	assert.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidTarget, apperr.CodeOf(err))

	mockRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestIsLikedBy(t *testing.T) {
	mockRepo := new(MockLikeRepository)
	service := NewLikeService(mockRepo)

	target := model.PostTarget("post-1")
	existing := &model.Like{ID: "like-1"}
	mockRepo.On("FindByUserAndTarget", "user-1", target).Return(existing, nil)
	mockRepo.On("FindByUserAndTarget", "user-2", target).Return(nil, gorm.ErrRecordNotFound)

	liked, err := service.IsLikedBy("user-1", target)
	assert.NoError(t, err)
	assert.True(t, liked)

	liked, err = service.IsLikedBy("user-2", target)
	assert.NoError(t, err)
	assert.False(t, liked)
}
