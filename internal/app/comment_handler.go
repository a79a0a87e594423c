package app

import (
	"errors"
	"net/http"

	"blogpulse/internal/service"
	"blogpulse/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type CommentHandler struct {
	interactions service.InteractionService
	comments     service.CommentService
}

func NewCommentHandler(interactions service.InteractionService, comments service.CommentService) *CommentHandler {
	return &CommentHandler{
		interactions: interactions,
		comments:     comments,
	}
}

// CreateComment handles POST /comments
func (h *CommentHandler) CreateComment(c *gin.Context) {
	var req service.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, bindErrorMessage(err))
		return
	}

	node, err := h.interactions.AddComment(currentUserID(c), &req)
	if err != nil {
		util.AppError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Comment created successfully", node)
}

// UpdateComment handles PUT /comments/:id
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	var req service.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, bindErrorMessage(err))
		return
	}

	node, err := h.interactions.UpdateComment(currentUserID(c), c.Param("id"), &req)
	if err != nil {
		util.AppError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Comment updated successfully", node)
}

// DeleteComment handles DELETE /comments/:id
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	if err := h.interactions.DeleteComment(currentUserID(c), c.Param("id")); err != nil {
		util.AppError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Comment deleted successfully", nil)
}

// GetComment handles GET /comments/:id
func (h *CommentHandler) GetComment(c *gin.Context) {
	comment, err := h.comments.GetByID(c.Param("id"))
	if err != nil {
		util.AppError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Comment retrieved successfully", comment)
}

// GetCommentsByPost handles GET /posts/:id/comments. The response is the full
// reply tree; anonymous viewers get it without per-viewer like state.
func (h *CommentHandler) GetCommentsByPost(c *gin.Context) {
	tree, err := h.interactions.GetCommentTree(c.Param("id"), currentUserID(c))
	if err != nil {
		util.AppError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Comments retrieved successfully", tree)
}

// GetCommentCount handles GET /posts/:id/comments/count
func (h *CommentHandler) GetCommentCount(c *gin.Context) {
	count, err := h.comments.CountByPost(c.Param("id"))
	if err != nil {
		util.AppError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Comment count retrieved successfully", gin.H{"count": count})
}

// bindErrorMessage turns binding failures into user-facing messages
func bindErrorMessage(err error) string {
	var validationErr validator.ValidationErrors
	if errors.As(err, &validationErr) {
		for _, fieldErr := range validationErr {
			switch fieldErr.Field() {
			case "Content":
				if fieldErr.Tag() == "max" {
					return "Comment content must be at most 2000 characters"
				}
				return "Comment content is required"
			case "PostID":
				return "postId is required"
			}
		}
	}
	return "Invalid request body: " + err.Error()
}
