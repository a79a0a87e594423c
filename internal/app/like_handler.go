package app

import (
	"net/http"

	"blogpulse/internal/model"
	"blogpulse/internal/service"
	"blogpulse/internal/util"

	"github.com/gin-gonic/gin"
)

type LikeHandler struct {
	interactions service.InteractionService
	likes        service.LikeService
}

func NewLikeHandler(interactions service.InteractionService, likes service.LikeService) *LikeHandler {
	return &LikeHandler{
		interactions: interactions,
		likes:        likes,
	}
}

// ToggleLike handles POST /likes/toggle. Exactly one of postId or commentId
// must be set in the body.
func (h *LikeHandler) ToggleLike(c *gin.Context) {
	var req service.ToggleLikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.interactions.ToggleLike(currentUserID(c), &req)
	if err != nil {
		util.AppError(c, err)
		return
	}

	message := "Unliked successfully"
	if result.Liked {
		message = "Liked successfully"
	}
	util.SuccessResponse(c, http.StatusOK, message, result)
}

// GetLikeCount handles GET /likes/count?postId= or ?commentId=
func (h *LikeHandler) GetLikeCount(c *gin.Context) {
	target, ok := targetFromQuery(c)
	if !ok {
		util.BadRequest(c, "Exactly one of postId or commentId query parameter is required")
		return
	}

	count, err := h.likes.Count(target)
	if err != nil {
		util.AppError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Like count retrieved successfully", gin.H{"count": count})
}

// GetLikeStatus handles GET /likes/status?postId= or ?commentId= for the
// authenticated user
func (h *LikeHandler) GetLikeStatus(c *gin.Context) {
	target, ok := targetFromQuery(c)
	if !ok {
		util.BadRequest(c, "Exactly one of postId or commentId query parameter is required")
		return
	}

	liked, err := h.likes.IsLikedBy(currentUserID(c), target)
	if err != nil {
		util.AppError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Like status retrieved successfully", gin.H{"liked": liked})
}

func targetFromQuery(c *gin.Context) (model.LikeTarget, bool) {
	postID := c.Query("postId")
	commentID := c.Query("commentId")

	if (postID == "") == (commentID == "") {
		return model.LikeTarget{}, false
	}
	if postID != "" {
		return model.PostTarget(postID), true
	}
	return model.CommentTarget(commentID), true
}
