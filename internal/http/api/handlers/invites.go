package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/groupable/groupable/internal/groupable"
)

// InviteHandler serves invite creation. Any member of a group may invite.
type InviteHandler struct {
	svc *groupable.Service
}

// NewInviteHandler constructs an InviteHandler.
func NewInviteHandler(svc *groupable.Service) *InviteHandler {
	return &InviteHandler{svc: svc}
}

// Create issues a new invite code for the group.
func (h *InviteHandler) Create(c *gin.Context) {
	groupID, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	invite, errCreate := h.svc.CreateInvite(c.Request.Context(), getUserID(c), groupID)
	if errCreate != nil {
		renderError(c, errCreate)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"code": invite.Code})
}
