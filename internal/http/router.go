package httpx

import (
	"github.com/gin-gonic/gin"

	"github.com/you/authsvc/domain"
	"github.com/you/authsvc/internal/http/handlers"
	"github.com/you/authsvc/internal/http/middleware"
	"github.com/you/authsvc/internal/services"
)

// BuildRouter wires routes with their declared role sets. Routes with no
// RequireRoles declaration allow any authenticated caller; ownership of a
// record is deliberately not checked at this layer.
func BuildRouter(ah *handlers.AuthHandlers, uh *handlers.UserHandlers, authMW gin.HandlerFunc, access *services.AccessService) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	auth := r.Group("/auth")
	auth.POST("/register", ah.Register)
	auth.POST("/login", ah.Login)
	auth.POST("/login_otp", ah.LoginOTP)
	auth.POST("/google", ah.LoginGoogle)
	auth.GET("/me", authMW, ah.Me)

	admins := []string{domain.RoleAdmin, domain.RoleSuperAdmin}

	users := r.Group("/users", authMW)
	users.POST("", middleware.RequireRoles(access, admins...), uh.Create)
	users.GET("", middleware.RequireRoles(access, admins...), uh.List)
	users.GET("/admins/list", middleware.RequireRoles(access, domain.RoleSuperAdmin), uh.ListAdmins)
	users.GET("/:id", uh.Get)
	users.PATCH("/:id", uh.Update)
	users.DELETE("/:id", middleware.RequireRoles(access, admins...), uh.Delete)

	return r
}
