package app

import (
	"net/http"
	"strconv"

	"blogpulse/internal/service"
	"blogpulse/internal/util"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notifications service.NotificationService
}

func NewNotificationHandler(notifications service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// GetNotifications handles GET /notifications?limit=&offset=
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	notifications, err := h.notifications.GetByUserID(currentUserID(c), limit, offset)
	if err != nil {
		util.AppError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Notifications retrieved successfully", notifications)
}

// GetUnreadNotifications handles GET /notifications/unread
func (h *NotificationHandler) GetUnreadNotifications(c *gin.Context) {
	notifications, err := h.notifications.GetUnread(currentUserID(c))
	if err != nil {
		util.AppError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Unread notifications retrieved successfully", notifications)
}

// GetUnreadCount handles GET /notifications/unread/count
func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	count, err := h.notifications.UnreadCount(currentUserID(c))
	if err != nil {
		util.AppError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Unread count retrieved successfully", gin.H{"count": count})
}

// MarkAsRead handles PUT /notifications/:id/read
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	if err := h.notifications.MarkAsRead(c.Param("id"), currentUserID(c)); err != nil {
		util.AppError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Notification marked as read", nil)
}

// MarkAllAsRead handles PUT /notifications/read-all
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	if err := h.notifications.MarkAllAsRead(currentUserID(c)); err != nil {
		util.AppError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "All notifications marked as read", nil)
}
