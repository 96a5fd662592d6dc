package handler

import (
	"errors"
	"net/http"

	"github.com/brightclass/brightclass-backend/internal/middleware"
	"github.com/brightclass/brightclass-backend/internal/model"
	"github.com/brightclass/brightclass-backend/internal/response"
	"github.com/brightclass/brightclass-backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
}

func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// recipientRole maps the token type to the notification recipient role.
func recipientRole(c *gin.Context) (int, model.RecipientRole, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return 0, "", false
	}
	role := model.RoleStudent
	if claims.TokenType == service.TokenTypeTeacher {
		role = model.RoleTeacher
	}
	return claims.UserID, role, true
}

// List godoc
// GET /api/v1/notifications?filter=unread
func (h *NotificationHandler) List(c *gin.Context) {
	recipientID, role, ok := recipientRole(c)
	if !ok {
		return
	}

	unreadOnly := c.Query("filter") == "unread"

	notifications, unread, err := h.notificationService.List(c.Request.Context(), recipientID, role, unreadOnly)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if notifications == nil {
		notifications = []model.Notification{}
	}
	response.Success(c, http.StatusOK, gin.H{
		"notifications": notifications,
		"unread_count":  unread,
	})
}

// MarkRead godoc
// POST /api/v1/notifications/:notification_id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	recipientID, role, ok := recipientRole(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("notification_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.notificationService.MarkRead(c.Request.Context(), id, recipientID, role); err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "notification marked as read"})
}

// MarkAllRead godoc
// POST /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	recipientID, role, ok := recipientRole(c)
	if !ok {
		return
	}

	if err := h.notificationService.MarkAllRead(c.Request.Context(), recipientID, role); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "all notifications marked as read"})
}

// Delete godoc
// DELETE /api/v1/notifications/:notification_id
func (h *NotificationHandler) Delete(c *gin.Context) {
	recipientID, role, ok := recipientRole(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("notification_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.notificationService.Delete(c.Request.Context(), id, recipientID, role); err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "notification deleted"})
}
