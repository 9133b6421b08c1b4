package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/groupable/groupable/internal/groupable"
	"github.com/groupable/groupable/internal/util"
	log "github.com/sirupsen/logrus"
)

// JoinHandler serves invite resolution and self-service joins.
type JoinHandler struct {
	svc *groupable.Service
}

// NewJoinHandler constructs a JoinHandler.
func NewJoinHandler(svc *groupable.Service) *JoinHandler {
	return &JoinHandler{svc: svc}
}

// Resolve returns the group summary behind a valid invite code.
func (h *JoinHandler) Resolve(c *gin.Context) {
	group, errResolve := h.svc.ResolveInvite(c.Request.Context(), c.Query("code"))
	if errResolve != nil {
		renderError(c, errResolve)
		return
	}
	c.JSON(http.StatusOK, groupJSON(group))
}

// joinRequest defines the request body for joining via invite code.
type joinRequest struct {
	Code string `json:"code"`
}

// Create joins the actor to the group behind the invite code. Joining a
// group the actor already belongs to responds 204 with no new membership.
func (h *JoinHandler) Create(c *gin.Context) {
	var body joinRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	outcome, _, errJoin := h.svc.Join(c.Request.Context(), getUserID(c), body.Code)
	if errJoin != nil {
		renderError(c, errJoin)
		return
	}
	if outcome == groupable.JoinOutcomeAlreadyMember {
		c.Status(http.StatusNoContent)
		return
	}
	log.WithFields(log.Fields{
		"user_id": getUserID(c),
		"code":    util.MaskCode(body.Code),
	}).Info("user joined group via invite")
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
