package service

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"blogpulse/internal/apperr"
	"blogpulse/internal/model"
	"blogpulse/internal/repository"
	"blogpulse/internal/util"
)

const (
	// NotificationExchange is the durable direct exchange notifications are
	// published to
	NotificationExchange = "notification_exchange"

	// NotificationQueueName is the queue the delivery worker consumes
	NotificationQueueName = "notification_queue"

	// NotificationRoutingKey binds the queue to the exchange
	NotificationRoutingKey = "notification"
)

// NotificationMessage is the wire format between the publisher and the
// delivery worker
type NotificationMessage struct {
	NotificationID string    `json:"notification_id"`
	UserID         string    `json:"user_id"`
	Type           string    `json:"type"`
	Message        string    `json:"message"`
	CreatedAt      time.Time `json:"created_at"`
}

// InboxPusher delivers an event to one user's realtime inbox
type InboxPusher interface {
	BroadcastToUser(userID, event string, payload map[string]interface{})
}

// NotificationService renders, persists and dispatches notifications, and
// serves the inbox read side. Messages are rendered once at creation time
// from the actor's current display name.
type NotificationService interface {
	NotifyOnComment(actor *model.User, comment *model.Comment, post *model.Post, parent *model.Comment) (*model.Notification, error)
	NotifyOnLike(actor *model.User, target model.LikeTarget) (*model.Notification, error)
	GetByUserID(userID string, limit, offset int) ([]*model.Notification, error)
	GetUnread(userID string) ([]*model.Notification, error)
	UnreadCount(userID string) (int64, error)
	MarkAsRead(notificationID, userID string) error
	MarkAllAsRead(userID string) error
	SetHub(hub InboxPusher)
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
	postRepo         repository.PostRepository
	commentRepo      repository.CommentRepository
	rabbitmq         *util.RabbitMQClient
	hub              InboxPusher
}

func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	rabbitmq *util.RabbitMQClient,
) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		postRepo:         postRepo,
		commentRepo:      commentRepo,
		rabbitmq:         rabbitmq,
	}
}

// SetHub wires the realtime hub used as the direct delivery path when the
// message broker is unavailable
func (s *notificationService) SetHub(hub InboxPusher) {
	s.hub = hub
}

// NotifyOnComment notifies the owner of whatever the comment landed on: the
// parent comment's author for a reply, the post's author otherwise. Acting on
// your own content produces no notification, which is a success, not an error.
func (s *notificationService) NotifyOnComment(actor *model.User, comment *model.Comment, post *model.Post, parent *model.Comment) (*model.Notification, error) {
	var recipientID, notifType, message string

	if parent != nil {
		if parent.AuthorID == nil {
			return nil, nil
		}
		recipientID = *parent.AuthorID
		notifType = model.NotificationTypeCommentReply
		message = fmt.Sprintf("%s replied to your comment.", actor.FullName)
	} else {
		recipientID = post.AuthorID
		notifType = model.NotificationTypePostComment
		message = fmt.Sprintf("%s commented on your post.", actor.FullName)
	}

	if recipientID == actor.ID {
		return nil, nil
	}

	return s.dispatch(&model.Notification{
		UserID:   recipientID,
		SenderID: &actor.ID,
		Type:     notifType,
		Message:  message,
		TargetID: &comment.ID,
	})
}

// NotifyOnLike notifies the owner of the liked post or comment. Only called
// on the transition into the liked state; unlikes are silent.
func (s *notificationService) NotifyOnLike(actor *model.User, target model.LikeTarget) (*model.Notification, error) {
	var recipientID, notifType, message string

	switch target.Type {
	case model.TargetTypePost:
		ownerID, err := s.postRepo.GetOwnerID(target.ID)
		if err != nil {
			return nil, apperr.NotFound("post not found")
		}
		recipientID = ownerID
		notifType = model.NotificationTypePostLiked
		message = fmt.Sprintf("%s liked your post.", actor.FullName)

	case model.TargetTypeComment:
		comment, err := s.commentRepo.FindByID(target.ID)
		if err != nil {
			return nil, apperr.NotFound("comment not found")
		}
		if comment.AuthorID == nil {
			return nil, nil
		}
		recipientID = *comment.AuthorID
		notifType = model.NotificationTypeCommentLiked
		message = fmt.Sprintf("%s liked your comment.", actor.FullName)

	default:
		return nil, apperr.InvalidTarget("like target must be exactly one of post or comment")
	}

	if recipientID == actor.ID {
		return nil, nil
	}

	targetID := target.ID
	return s.dispatch(&model.Notification{
		UserID:   recipientID,
		SenderID: &actor.ID,
		Type:     notifType,
		Message:  message,
		TargetID: &targetID,
	})
}

// dispatch persists the notification, then hands delivery to the broker. When
// the broker is down, the worker never sees the message, so the hub is pushed
// directly instead; either way the row is already durable.
func (s *notificationService) dispatch(notification *model.Notification) (*model.Notification, error) {
	if err := s.notificationRepo.Create(notification); err != nil {
		return nil, apperr.Internal("failed to create notification", err)
	}

	msg := NotificationMessage{
		NotificationID: notification.ID,
		UserID:         notification.UserID,
		Type:           notification.Type,
		Message:        notification.Message,
		CreatedAt:      notification.CreatedAt,
	}

	if s.rabbitmq != nil {
		body, err := json.Marshal(msg)
		if err == nil {
			if err := s.rabbitmq.Publish(NotificationExchange, NotificationRoutingKey, body); err == nil {
				return notification, nil
			}
			log.Printf("notification: publish failed, falling back to direct push: %v", err)
		}
	}

	if s.hub != nil {
		s.hub.BroadcastToUser(notification.UserID, EventReceiveNotification, map[string]interface{}{
			"message": notification.Message,
		})
	}

	return notification, nil
}

// GetByUserID returns a page of the user's notifications, newest first
func (s *notificationService) GetByUserID(userID string, limit, offset int) ([]*model.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	notifications, err := s.notificationRepo.FindByUserID(userID, limit, offset)
	if err != nil {
		return nil, apperr.Internal("failed to load notifications", err)
	}
	return notifications, nil
}

// GetUnread returns the user's unread notifications, newest first
func (s *notificationService) GetUnread(userID string) ([]*model.Notification, error) {
	notifications, err := s.notificationRepo.FindUnreadByUserID(userID)
	if err != nil {
		return nil, apperr.Internal("failed to load unread notifications", err)
	}
	return notifications, nil
}

// UnreadCount returns how many unread notifications the user has
func (s *notificationService) UnreadCount(userID string) (int64, error) {
	count, err := s.notificationRepo.CountUnreadByUserID(userID)
	if err != nil {
		return 0, apperr.Internal("failed to count unread notifications", err)
	}
	return count, nil
}

// MarkAsRead marks one notification read. Users can only mark their own.
func (s *notificationService) MarkAsRead(notificationID, userID string) error {
	notification, err := s.notificationRepo.FindByID(notificationID)
	if err != nil {
		return apperr.NotFound("notification not found")
	}
	if notification.UserID != userID {
		return apperr.Forbidden("you can only mark your own notifications")
	}
	if err := s.notificationRepo.MarkAsRead(notificationID); err != nil {
		return apperr.Internal("failed to mark notification as read", err)
	}
	return nil
}

// MarkAllAsRead marks every unread notification of the user read
func (s *notificationService) MarkAllAsRead(userID string) error {
	if err := s.notificationRepo.MarkAllAsRead(userID); err != nil {
		return apperr.Internal("failed to mark notifications as read", err)
	}
	return nil
}
