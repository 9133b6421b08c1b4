package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/groupable/groupable/internal/groupable"
	"github.com/groupable/groupable/internal/models"
	log "github.com/sirupsen/logrus"
)

// contextUserIDKey mirrors the auth middleware's context key.
const contextUserIDKey = "groupable_user_id"

// getUserID returns the authenticated actor's user ID, or 0.
func getUserID(c *gin.Context) uint64 {
	value, ok := c.Get(contextUserIDKey)
	if !ok {
		return 0
	}
	userID, ok := value.(uint64)
	if !ok {
		return 0
	}
	return userID
}

// pathID parses a numeric path parameter.
func pathID(c *gin.Context, name string) (uint64, bool) {
	id, errParse := strconv.ParseUint(c.Param(name), 10, 64)
	if errParse != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// renderError maps the membership error taxonomy onto HTTP statuses.
// NotFound never distinguishes "missing" from "not yours"; policy
// violations carry their reason text; validation failures report fields.
func renderError(c *gin.Context, err error) {
	if errors.Is(err, groupable.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	if errors.Is(err, groupable.ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}
	if policyErr, ok := groupable.AsPolicyError(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": policyErr.Reason})
		return
	}
	if validationErr, ok := groupable.AsValidationError(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "fields": validationErr.Fields})
		return
	}
	if errors.Is(err, groupable.ErrDuplicateMembership) {
		c.JSON(http.StatusConflict, gin.H{"error": "Already a member"})
		return
	}
	if errors.Is(err, groupable.ErrInvalidActor) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user"})
		return
	}
	log.WithError(err).Error("membership operation failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
}

// groupJSON renders a group for API responses.
func groupJSON(group *models.Group) gin.H {
	return gin.H{
		"id":         group.ID,
		"name":       group.Name,
		"active":     group.Active,
		"created_at": group.CreatedAt,
		"updated_at": group.UpdatedAt,
	}
}

// memberJSON renders a membership for API responses.
func memberJSON(member *models.Member) gin.H {
	return gin.H{
		"id":         member.ID,
		"group_id":   member.GroupID,
		"user_id":    member.UserID,
		"role":       member.Role.String(),
		"created_at": member.CreatedAt,
		"updated_at": member.UpdatedAt,
	}
}
