package service

import (
	"log"

	"blogpulse/internal/apperr"
	"blogpulse/internal/model"
	"blogpulse/internal/repository"
)

// Realtime event names, shared with the frontend contract
const (
	EventCommentAdded        = "CommentAdded"
	EventCommentUpdated      = "CommentUpdated"
	EventPostUpdated         = "PostUpdated"
	EventReceiveNotification = "ReceiveNotification"
)

// Broadcaster pushes events to realtime rooms
type Broadcaster interface {
	BroadcastToPost(postID, event string, payload map[string]interface{})
	BroadcastToUser(userID, event string, payload map[string]interface{})
}

// ToggleLikeRequest carries the two-nullable-ids wire shape; exactly one of
// the ids must be set
type ToggleLikeRequest struct {
	PostID    *string `json:"postId"`
	CommentID *string `json:"commentId"`
}

// InteractionService is the single entry point the transport layer calls for
// social writes. Every operation runs the same sequence: authorize the actor,
// perform the primary write, then notify and broadcast. Notification and
// broadcast failures never undo or fail the primary write.
type InteractionService interface {
	AddComment(actorID string, req *CreateCommentRequest) (*CommentNode, error)
	UpdateComment(actorID, commentID string, req *UpdateCommentRequest) (*CommentNode, error)
	DeleteComment(actorID, commentID string) error
	ToggleLike(actorID string, req *ToggleLikeRequest) (*LikeResult, error)
	GetCommentTree(postID, viewerID string) ([]*CommentNode, error)
}

type interactionService struct {
	userRepo     repository.UserRepository
	commentRepo  repository.CommentRepository
	postRepo     repository.PostRepository
	comments     CommentService
	likes        LikeService
	notification NotificationService
	hub          Broadcaster
}

func NewInteractionService(
	userRepo repository.UserRepository,
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	comments CommentService,
	likes LikeService,
	notification NotificationService,
	hub Broadcaster,
) InteractionService {
	return &interactionService{
		userRepo:     userRepo,
		commentRepo:  commentRepo,
		postRepo:     postRepo,
		comments:     comments,
		likes:        likes,
		notification: notification,
		hub:          hub,
	}
}

// authorize loads the acting user and rejects unknown or blocked accounts
func (s *interactionService) authorize(actorID string) (*model.User, error) {
	if actorID == "" {
		return nil, apperr.Unauthenticated("authentication required")
	}
	actor, err := s.userRepo.FindByID(actorID)
	if err != nil {
		return nil, apperr.Unauthenticated("unknown user")
	}
	if actor.IsBlocked() {
		return nil, apperr.Forbidden("your account is blocked from interacting")
	}
	return actor, nil
}

// AddComment writes the comment, notifies the owner of the post or parent
// comment, and broadcasts CommentAdded to the post's room.
func (s *interactionService) AddComment(actorID string, req *CreateCommentRequest) (*CommentNode, error) {
	actor, err := s.authorize(actorID)
	if err != nil {
		return nil, err
	}

	comment, err := s.comments.Add(actor.ID, req)
	if err != nil {
		return nil, err
	}

	post, err := s.postRepo.FindByID(comment.PostID)
	if err == nil {
		var parent *model.Comment
		if comment.ParentID != nil {
			parent, _ = s.commentRepo.FindByID(*comment.ParentID)
		}
		if _, err := s.notification.NotifyOnComment(actor, comment, post, parent); err != nil {
			log.Printf("interaction: comment notification failed: %v", err)
		}
	}

	node := newCommentNode(comment, 0, false)

	var parentID interface{}
	if comment.ParentID != nil {
		parentID = *comment.ParentID
	}
	s.hub.BroadcastToPost(comment.PostID, EventCommentAdded, map[string]interface{}{
		"postId":    comment.PostID,
		"commentId": comment.ID,
		"parentId":  parentID,
		"content":   comment.Content,
		"author":    node.AuthorName,
	})

	return node, nil
}

// UpdateComment edits a comment and broadcasts CommentUpdated with the new
// content to the post's room
func (s *interactionService) UpdateComment(actorID, commentID string, req *UpdateCommentRequest) (*CommentNode, error) {
	actor, err := s.authorize(actorID)
	if err != nil {
		return nil, err
	}

	comment, err := s.comments.Update(actor.ID, commentID, req)
	if err != nil {
		return nil, err
	}

	s.hub.BroadcastToPost(comment.PostID, EventCommentUpdated, map[string]interface{}{
		"commentId":  comment.ID,
		"action":     "update",
		"newContent": comment.Content,
	})

	return newCommentNode(comment, 0, false), nil
}

// DeleteComment removes a comment and broadcasts the deletion to the post's
// room
func (s *interactionService) DeleteComment(actorID, commentID string) error {
	actor, err := s.authorize(actorID)
	if err != nil {
		return err
	}

	comment, err := s.comments.Delete(actor, commentID)
	if err != nil {
		return err
	}

	s.hub.BroadcastToPost(comment.PostID, EventCommentUpdated, map[string]interface{}{
		"commentId": comment.ID,
		"action":    "delete",
	})

	return nil
}

// ToggleLike validates the wire shape, resolves the target row, flips the
// like, and on the transition into liked notifies the owner and broadcasts to
// the post's room. Unlikes change no realtime state beyond the count.
func (s *interactionService) ToggleLike(actorID string, req *ToggleLikeRequest) (*LikeResult, error) {
	actor, err := s.authorize(actorID)
	if err != nil {
		return nil, err
	}

	if (req.PostID == nil) == (req.CommentID == nil) {
		return nil, apperr.InvalidTarget("exactly one of postId or commentId must be set")
	}

	var target model.LikeTarget
	var roomPostID string

	if req.PostID != nil {
		if _, err := s.postRepo.FindByID(*req.PostID); err != nil {
			return nil, apperr.NotFound("post not found")
		}
		target = model.PostTarget(*req.PostID)
		roomPostID = *req.PostID
	} else {
		comment, err := s.commentRepo.FindByID(*req.CommentID)
		if err != nil {
			return nil, apperr.NotFound("comment not found")
		}
		target = model.CommentTarget(comment.ID)
		roomPostID = comment.PostID
	}

	result, err := s.likes.Toggle(actor.ID, target)
	if err != nil {
		return nil, err
	}

	if result.Liked {
		if _, err := s.notification.NotifyOnLike(actor, target); err != nil {
			log.Printf("interaction: like notification failed: %v", err)
		}

		if target.Type == model.TargetTypePost {
			s.hub.BroadcastToPost(roomPostID, EventPostUpdated, map[string]interface{}{
				"postId": target.ID,
				"action": "like",
			})
		} else {
			s.hub.BroadcastToPost(roomPostID, EventCommentUpdated, map[string]interface{}{
				"commentId": target.ID,
				"action":    "like",
			})
		}
	}

	return result, nil
}

// GetCommentTree returns the materialized reply tree for a post. An unknown
// post id yields an empty thread, not an error; viewerID may be empty for
// anonymous readers.
func (s *interactionService) GetCommentTree(postID, viewerID string) ([]*CommentNode, error) {
	return s.comments.BuildTree(postID, viewerID)
}
