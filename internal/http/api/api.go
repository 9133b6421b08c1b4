package api

import (
	"github.com/gin-gonic/gin"
	"github.com/groupable/groupable/internal/groupable"
	internalhttp "github.com/groupable/groupable/internal/http"
	"github.com/groupable/groupable/internal/http/api/handlers"
)

// RegisterRoutes mounts the membership API under /groupable. Every route
// requires an authenticated actor token; authorization beyond that is the
// service's job.
func RegisterRoutes(engine *gin.Engine, svc *groupable.Service, jwtSecret string) {
	groupHandler := handlers.NewGroupHandler(svc)
	memberHandler := handlers.NewMemberHandler(svc)
	inviteHandler := handlers.NewInviteHandler(svc)
	joinHandler := handlers.NewJoinHandler(svc)

	root := engine.Group("/groupable")
	root.Use(internalhttp.ActorAuthMiddleware(jwtSecret))

	root.GET("/groups", groupHandler.List)
	root.POST("/groups", groupHandler.Create)
	root.GET("/groups/:id", groupHandler.Get)
	root.PUT("/groups/:id", groupHandler.Update)
	root.PATCH("/groups/:id", groupHandler.Update)
	root.DELETE("/groups/:id", groupHandler.Delete)

	root.POST("/groups/:id/invites", inviteHandler.Create)

	root.GET("/join", joinHandler.Resolve)
	root.POST("/join", joinHandler.Create)

	root.GET("/groups/:id/members", memberHandler.List)
	root.GET("/groups/:id/members/:user_id", memberHandler.Get)
	root.PUT("/groups/:id/members/:user_id", memberHandler.Update)
	root.DELETE("/groups/:id/members/:user_id", memberHandler.Delete)
}
