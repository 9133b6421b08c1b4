package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/groupable/groupable/internal/groupable"
)

// GroupHandler serves the group CRUD endpoints.
type GroupHandler struct {
	svc *groupable.Service
}

// NewGroupHandler constructs a GroupHandler.
func NewGroupHandler(svc *groupable.Service) *GroupHandler {
	return &GroupHandler{svc: svc}
}

// groupRequest defines the request body for group create/update.
type groupRequest struct {
	Name string `json:"name"`
}

// List returns the actor's active groups, optionally filtered by name.
func (h *GroupHandler) List(c *gin.Context) {
	groups, errList := h.svc.ListGroups(c.Request.Context(), getUserID(c), c.Query("name"))
	if errList != nil {
		renderError(c, errList)
		return
	}
	out := make([]gin.H, 0, len(groups))
	for idx := range groups {
		out = append(out, groupJSON(&groups[idx]))
	}
	c.JSON(http.StatusOK, gin.H{"groups": out})
}

// Get returns one group the actor belongs to.
func (h *GroupHandler) Get(c *gin.Context) {
	groupID, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	group, errGet := h.svc.GetGroup(c.Request.Context(), getUserID(c), groupID)
	if errGet != nil {
		renderError(c, errGet)
		return
	}
	c.JSON(http.StatusOK, groupJSON(group))
}

// Create creates a group with the actor as founding admin.
func (h *GroupHandler) Create(c *gin.Context) {
	var body groupRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	group, errCreate := h.svc.CreateGroup(c.Request.Context(), getUserID(c), body.Name)
	if errCreate != nil {
		renderError(c, errCreate)
		return
	}
	c.JSON(http.StatusCreated, groupJSON(group))
}

// Update renames a group. Editor or admin role required.
func (h *GroupHandler) Update(c *gin.Context) {
	groupID, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	var body groupRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	group, errUpdate := h.svc.UpdateGroup(c.Request.Context(), getUserID(c), groupID, body.Name)
	if errUpdate != nil {
		renderError(c, errUpdate)
		return
	}
	c.JSON(http.StatusOK, groupJSON(group))
}

// Delete soft-deletes a group. Admin role required.
func (h *GroupHandler) Delete(c *gin.Context) {
	groupID, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	if errDelete := h.svc.DeleteGroup(c.Request.Context(), getUserID(c), groupID); errDelete != nil {
		renderError(c, errDelete)
		return
	}
	c.Status(http.StatusNoContent)
}
