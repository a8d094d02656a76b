package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/you/authsvc/domain"
	"github.com/you/authsvc/internal/services"
)

// RequireRoles declares the roles allowed to reach the wrapped handlers. With
// no roles declared any authenticated caller passes. Both a missing principal
// and a role outside the declared set answer Forbidden; the messages differ
// only in naming the declared set, never in why the caller was denied.
func RequireRoles(access *services.AccessService, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := ""
		if v, ok := c.Get(CtxUserRole); ok {
			role, _ = v.(string)
		}

		err := access.Authorize(role, roles)
		if err == nil {
			c.Next()
			return
		}

		if errors.Is(err, domain.ErrNoPrincipal) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied: User role not found"})
		} else {
			c.JSON(http.StatusForbidden, gin.H{
				"error": fmt.Sprintf("Access denied: Requires one of the following roles: %s", strings.Join(roles, ", ")),
			})
		}
		c.Abort()
	}
}
