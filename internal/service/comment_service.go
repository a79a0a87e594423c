package service

import (
	"blogpulse/internal/apperr"
	"blogpulse/internal/model"
	"blogpulse/internal/repository"
)

// CommentService owns comment writes and the per-request materialization of a
// post's reply tree.
type CommentService interface {
	Add(authorID string, req *CreateCommentRequest) (*model.Comment, error)
	Update(actorID, commentID string, req *UpdateCommentRequest) (*model.Comment, error)
	Delete(actor *model.User, commentID string) (*model.Comment, error)
	GetByID(commentID string) (*model.Comment, error)
	BuildTree(postID, viewerID string) ([]*CommentNode, error)
	CountByPost(postID string) (int64, error)
}

// CreateCommentRequest is the payload for adding a comment or reply
type CreateCommentRequest struct {
	PostID   string  `json:"postId" binding:"required"`
	ParentID *string `json:"parentCommentId"`
	Content  string  `json:"content" binding:"required,max=2000"`
}

// UpdateCommentRequest is the payload for editing a comment's content
type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required,max=2000"`
}

// CommentNode is one comment in the materialized tree, enriched with author
// display fields and like state for the requesting viewer.
type CommentNode struct {
	ID             string         `json:"id"`
	Content        string         `json:"content"`
	AuthorID       *string        `json:"authorId,omitempty"`
	AuthorName     string         `json:"authorName"`
	AuthorAvatar   string         `json:"authorAvatar"`
	CreatedDate    string         `json:"createdDate"`
	ParentID       *string        `json:"parentCommentId,omitempty"`
	LikeCount      int64          `json:"likeCount"`
	ViewerHasLiked bool           `json:"viewerHasLiked"`
	Replies        []*CommentNode `json:"replies"`
}

type commentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	likeRepo    repository.LikeRepository
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	likeRepo repository.LikeRepository,
) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		likeRepo:    likeRepo,
	}
}

// Add creates a comment on a post, or a reply when ParentID is set. The
// parent must be an existing comment on the same post.
func (s *commentService) Add(authorID string, req *CreateCommentRequest) (*model.Comment, error) {
	if _, err := s.postRepo.FindByID(req.PostID); err != nil {
		return nil, apperr.NotFound("post not found")
	}

	if req.ParentID != nil {
		parent, err := s.commentRepo.FindByID(*req.ParentID)
		if err != nil {
			return nil, apperr.NotFound("parent comment not found")
		}
		if parent.PostID != req.PostID {
			return nil, apperr.InvalidTarget("parent comment belongs to a different post")
		}
	}

	comment := &model.Comment{
		PostID:   req.PostID,
		AuthorID: &authorID,
		ParentID: req.ParentID,
		Content:  req.Content,
	}

	if err := s.commentRepo.Create(comment); err != nil {
		return nil, apperr.Internal("failed to create comment", err)
	}

	// Reload to pick up the author relation for the response payload
	created, err := s.commentRepo.FindByID(comment.ID)
	if err != nil {
		return comment, nil
	}
	return created, nil
}

// Update edits a comment's content. Only the comment's author may edit it.
func (s *commentService) Update(actorID, commentID string, req *UpdateCommentRequest) (*model.Comment, error) {
	comment, err := s.commentRepo.FindByID(commentID)
	if err != nil {
		return nil, apperr.NotFound("comment not found")
	}

	if comment.AuthorID == nil || *comment.AuthorID != actorID {
		return nil, apperr.Forbidden("you can only edit your own comments")
	}

	comment.Content = req.Content
	if err := s.commentRepo.Update(comment); err != nil {
		return nil, apperr.Internal("failed to update comment", err)
	}

	return comment, nil
}

// Delete removes a comment. The author may delete their own comment;
// moderators may delete any. The deleted row is returned so callers can
// broadcast which post it belonged to.
func (s *commentService) Delete(actor *model.User, commentID string) (*model.Comment, error) {
	comment, err := s.commentRepo.FindByID(commentID)
	if err != nil {
		return nil, apperr.NotFound("comment not found")
	}

	isOwner := comment.AuthorID != nil && *comment.AuthorID == actor.ID
	if !isOwner && !actor.CanModerate() {
		return nil, apperr.Forbidden("you can only delete your own comments")
	}

	if err := s.commentRepo.Delete(commentID); err != nil {
		return nil, apperr.Internal("failed to delete comment", err)
	}

	return comment, nil
}

// GetByID returns one comment with its author loaded
func (s *commentService) GetByID(commentID string) (*model.Comment, error) {
	comment, err := s.commentRepo.FindByID(commentID)
	if err != nil {
		return nil, apperr.NotFound("comment not found")
	}
	return comment, nil
}

// BuildTree fetches every comment for the post in one query and assembles the
// reply tree in memory. Like counts come from one grouped query; when viewerID
// is set a third query marks which comments the viewer has liked. A comment
// whose parent no longer exists is promoted to the top level rather than
// hidden, so no row silently disappears from the thread. Ordering inside every
// level follows the fetch order (creation time, then id).
func (s *commentService) BuildTree(postID, viewerID string) ([]*CommentNode, error) {
	comments, err := s.commentRepo.FindByPostID(postID)
	if err != nil {
		return nil, apperr.Internal("failed to load comments", err)
	}

	if len(comments) == 0 {
		return []*CommentNode{}, nil
	}

	ids := make([]string, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.ID)
	}

	counts, err := s.likeRepo.CountByTargets(model.TargetTypeComment, ids)
	if err != nil {
		return nil, apperr.Internal("failed to load like counts", err)
	}

	liked := map[string]bool{}
	if viewerID != "" {
		liked, err = s.likeRepo.FindUserLikedTargets(viewerID, model.TargetTypeComment, ids)
		if err != nil {
			return nil, apperr.Internal("failed to load like state", err)
		}
	}

	nodes := make(map[string]*CommentNode, len(comments))
	for _, c := range comments {
		nodes[c.ID] = newCommentNode(c, counts[c.ID], liked[c.ID])
	}

	roots := make([]*CommentNode, 0)
	for _, c := range comments {
		node := nodes[c.ID]
		if c.ParentID != nil {
			if parent, ok := nodes[*c.ParentID]; ok {
				parent.Replies = append(parent.Replies, node)
				continue
			}
			// Orphan: parent was deleted, surface it at the top level
		}
		roots = append(roots, node)
	}

	return roots, nil
}

// CountByPost returns the total number of comments on a post
func (s *commentService) CountByPost(postID string) (int64, error) {
	return s.commentRepo.CountByPostID(postID)
}

func newCommentNode(c *model.Comment, likeCount int64, viewerHasLiked bool) *CommentNode {
	node := &CommentNode{
		ID:             c.ID,
		Content:        c.Content,
		AuthorID:       c.AuthorID,
		AuthorName:     "Unknown",
		CreatedDate:    c.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		ParentID:       c.ParentID,
		LikeCount:      likeCount,
		ViewerHasLiked: viewerHasLiked,
		Replies:        []*CommentNode{},
	}
	if c.Author != nil {
		node.AuthorName = c.Author.FullName
		node.AuthorAvatar = c.Author.DisplayAvatar()
	}
	return node
}
