package service

import (
	"testing"
	"time"

	"blogpulse/internal/apperr"
	"blogpulse/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func newNotificationTestService() (*MockNotificationRepository, *MockPostRepository, *MockCommentRepository, *fakeBroadcaster, NotificationService) {
	notificationRepo := new(MockNotificationRepository)
	postRepo := new(MockPostRepository)
	commentRepo := new(MockCommentRepository)
	hub := &fakeBroadcaster{}

	service := NewNotificationService(notificationRepo, postRepo, commentRepo, nil)
	service.SetHub(hub)

	return notificationRepo, postRepo, commentRepo, hub, service
}

func TestNotifyOnCommentTargetsPostOwner(t *testing.T) {
	notificationRepo, _, _, hub, service := newNotificationTestService()

	actor := &model.User{ID: "actor-1", FullName: "Alice"}
	post := &model.Post{ID: "post-1", AuthorID: "owner-1"}
	comment := &model.Comment{ID: "comment-1", PostID: "post-1", AuthorID: strPtr("actor-1")}

	notificationRepo.On("Create", mock.AnythingOfType("*model.Notification")).Return(nil)

	notification, err := service.NotifyOnComment(actor, comment, post, nil)
	assert.NoError(t, err)
	assert.NotNil(t, notification)
	assert.Equal(t, "owner-1", notification.UserID)
	assert.Equal(t, model.NotificationTypePostComment, notification.Type)
	assert.Equal(t, "Alice commented on your post.", notification.Message)

	// Broker is nil, so delivery went straight to the hub
	events := hub.recorded()
	assert.Len(t, events, 1)
	assert.Equal(t, "user_owner-1", events[0].room)
	assert.Equal(t, EventReceiveNotification, events[0].event)
	assert.Equal(t, "Alice commented on your post.", events[0].payload["message"])
}

func TestNotifyOnCommentReplyTargetsParentAuthor(t *testing.T) {
	notificationRepo, _, _, _, service := newNotificationTestService()

	actor := &model.User{ID: "actor-1", FullName: "Alice"}
	post := &model.Post{ID: "post-1", AuthorID: "owner-1"}
	parent := &model.Comment{ID: "parent-1", PostID: "post-1", AuthorID: strPtr("parent-author")}
	comment := &model.Comment{ID: "comment-1", PostID: "post-1", AuthorID: strPtr("actor-1"), ParentID: strPtr("parent-1")}

	notificationRepo.On("Create", mock.AnythingOfType("*model.Notification")).Return(nil)

	notification, err := service.NotifyOnComment(actor, comment, post, parent)
	assert.NoError(t, err)
	assert.Equal(t, "parent-author", notification.UserID)
	assert.Equal(t, model.NotificationTypeCommentReply, notification.Type)
	assert.Equal(t, "Alice replied to your comment.", notification.Message)
}

func TestNotifyOnCommentSuppressesSelfAction(t *testing.T) {
	notificationRepo, _, _, hub, service := newNotificationTestService()

	actor := &model.User{ID: "owner-1", FullName: "Owner"}
	post := &model.Post{ID: "post-1", AuthorID: "owner-1"}
	comment := &model.Comment{ID: "comment-1", PostID: "post-1", AuthorID: strPtr("owner-1")}

	notification, err := service.NotifyOnComment(actor, comment, post, nil)
	assert.NoError(t, err)
	assert.Nil(t, notification)
	assert.Empty(t, hub.recorded())
	notificationRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestNotifyOnCommentReplySkipsRemovedAuthor(t *testing.T) {
	notificationRepo, _, _, _, service := newNotificationTestService()

	actor := &model.User{ID: "actor-1", FullName: "Alice"}
	post := &model.Post{ID: "post-1", AuthorID: "owner-1"}
	parent := &model.Comment{ID: "parent-1", PostID: "post-1"} // author removed
	comment := &model.Comment{ID: "comment-1", PostID: "post-1", ParentID: strPtr("parent-1")}

	notification, err := service.NotifyOnComment(actor, comment, post, parent)
	assert.NoError(t, err)
	assert.Nil(t, notification)
	notificationRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestNotifyOnLikePost(t *testing.T) {
	notificationRepo, postRepo, _, _, service := newNotificationTestService()

	actor := &model.User{ID: "actor-1", FullName: "Alice"}
	postRepo.On("GetOwnerID", "post-1").Return("owner-1", nil)
	notificationRepo.On("Create", mock.AnythingOfType("*model.Notification")).Return(nil)

	notification, err := service.NotifyOnLike(actor, model.PostTarget("post-1"))
	assert.NoError(t, err)
	assert.Equal(t, "owner-1", notification.UserID)
	assert.Equal(t, model.NotificationTypePostLiked, notification.Type)
	assert.Equal(t, "Alice liked your post.", notification.Message)
}

func TestNotifyOnLikeComment(t *testing.T) {
	notificationRepo, _, commentRepo, _, service := newNotificationTestService()

	actor := &model.User{ID: "actor-1", FullName: "Alice"}
	comment := &model.Comment{ID: "comment-1", PostID: "post-1", AuthorID: strPtr("comment-author")}
	commentRepo.On("FindByID", "comment-1").Return(comment, nil)
	notificationRepo.On("Create", mock.AnythingOfType("*model.Notification")).Return(nil)

	notification, err := service.NotifyOnLike(actor, model.CommentTarget("comment-1"))
	assert.NoError(t, err)
	assert.Equal(t, "comment-author", notification.UserID)
	assert.Equal(t, "Alice liked your comment.", notification.Message)
}

func TestNotifyOnLikeSuppressesSelfLike(t *testing.T) {
	notificationRepo, postRepo, _, _, service := newNotificationTestService()

	actor := &model.User{ID: "owner-1", FullName: "Owner"}
	postRepo.On("GetOwnerID", "post-1").Return("owner-1", nil)

	notification, err := service.NotifyOnLike(actor, model.PostTarget("post-1"))
	assert.NoError(t, err)
	assert.Nil(t, notification)
	notificationRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestMessageRenderedOnceAtCreation(t *testing.T) {
	notificationRepo, _, _, _, service := newNotificationTestService()

	actor := &model.User{ID: "actor-1", FullName: "Old Name"}
	post := &model.Post{ID: "post-1", AuthorID: "owner-1"}
	comment := &model.Comment{ID: "comment-1", PostID: "post-1"}

	var stored *model.Notification
	notificationRepo.On("Create", mock.AnythingOfType("*model.Notification")).Run(func(args mock.Arguments) {
		stored = args.Get(0).(*model.Notification)
	}).Return(nil)

	_, err := service.NotifyOnComment(actor, comment, post, nil)
	assert.NoError(t, err)

	// Renaming the actor afterwards does not change the stored message
	actor.FullName = "New Name"
	assert.Equal(t, "Old Name commented on your post.", stored.Message)
}

func TestMarkAsReadOwnershipCheck(t *testing.T) {
	notificationRepo, _, _, _, service := newNotificationTestService()

	notification := &model.Notification{ID: "n-1", UserID: "owner-1", CreatedAt: time.Now()}
	notificationRepo.On("FindByID", "n-1").Return(notification, nil)

	err := service.MarkAsRead("n-1", "someone-else")
	assert.Equal(t, apperr.CodeForbidden, apperr.CodeOf(err))
	notificationRepo.AssertNotCalled(t, "MarkAsRead", mock.Anything)

	notificationRepo.On("MarkAsRead", "n-1").Return(nil)
	assert.NoError(t, service.MarkAsRead("n-1", "owner-1"))
}

func TestMarkAsReadUnknownNotification(t *testing.T) {
	notificationRepo, _, _, _, service := newNotificationTestService()

	notificationRepo.On("FindByID", "missing").Return(nil, gorm.ErrRecordNotFound)

	err := service.MarkAsRead("missing", "owner-1")
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
}
