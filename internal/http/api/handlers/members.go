package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/groupable/groupable/internal/groupable"
	"github.com/groupable/groupable/internal/models"
)

// MemberHandler serves the member listing and role management endpoints.
// Members are addressed by their host-application user ID.
type MemberHandler struct {
	svc *groupable.Service
}

// NewMemberHandler constructs a MemberHandler.
func NewMemberHandler(svc *groupable.Service) *MemberHandler {
	return &MemberHandler{svc: svc}
}

// List returns the group's members in creation order.
func (h *MemberHandler) List(c *gin.Context) {
	groupID, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	members, errList := h.svc.ListMembers(c.Request.Context(), getUserID(c), groupID)
	if errList != nil {
		renderError(c, errList)
		return
	}
	out := make([]gin.H, 0, len(members))
	for idx := range members {
		out = append(out, memberJSON(&members[idx]))
	}
	c.JSON(http.StatusOK, gin.H{"members": out})
}

// Get returns one member of the group.
func (h *MemberHandler) Get(c *gin.Context) {
	groupID, okGroup := pathID(c, "id")
	targetUserID, okUser := pathID(c, "user_id")
	if !okGroup || !okUser {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	member, errGet := h.svc.GetMember(c.Request.Context(), getUserID(c), groupID, targetUserID)
	if errGet != nil {
		renderError(c, errGet)
		return
	}
	c.JSON(http.StatusOK, memberJSON(member))
}

// updateMemberRequest defines the request body for role changes.
type updateMemberRequest struct {
	Role string `json:"role"`
}

// Update changes a member's role, running the full policy checks and the
// promotion demotion side effect atomically.
func (h *MemberHandler) Update(c *gin.Context) {
	groupID, okGroup := pathID(c, "id")
	targetUserID, okUser := pathID(c, "user_id")
	if !okGroup || !okUser {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	var body updateMemberRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	role, errParse := models.ParseRole(strings.TrimSpace(body.Role))
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "fields": gin.H{"role": "is not a valid role"}})
		return
	}
	errChange := h.svc.ChangeMemberRole(c.Request.Context(), getUserID(c), groupID, targetUserID, role)
	if errChange != nil {
		renderError(c, errChange)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Delete removes a member from the group.
func (h *MemberHandler) Delete(c *gin.Context) {
	groupID, okGroup := pathID(c, "id")
	targetUserID, okUser := pathID(c, "user_id")
	if !okGroup || !okUser {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	errRemove := h.svc.RemoveMember(c.Request.Context(), getUserID(c), groupID, targetUserID)
	if errRemove != nil {
		renderError(c, errRemove)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
