package middlewares

import (
	"net/http"
	"strings"

	fcore "fieldforce.com/fieldforce/fieldforce/core"
	"fieldforce.com/fieldforce/security"
	"fieldforce.com/fieldforce/web/common"
	"github.com/gin-gonic/gin"
)

const (
	CookieName = "fieldforce.session"
	viewerKey  = "viewer"
	claimsKey  = "claims"
)

// Authentication checks for a valid Bearer token (or session cookie) and
// stores the acting Viewer in the context.
func Authentication(jwtSecret []byte, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := ""

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			cookie, err := c.Cookie(CookieName)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse("missing credentials"))
				return
			}
			tokenStr = cookie
		} else {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse("malformed authorization header"))
				return
			}
			tokenStr = parts[1]
		}

		claims, err := security.ParseIdentityToken(tokenStr, jwtSecret, issuer)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse("invalid or expired token"))
			return
		}

		c.Set(claimsKey, claims)
		c.Set(viewerKey, fcore.Viewer{ID: claims.Subject, Role: claims.Role, BranchID: claims.BranchID})
		c.Next()
	}
}

// RequireAdmin lets only super and branch admins through.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		viewer, ok := ViewerFrom(c)
		if !ok || !viewer.Role.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, &common.ErrorResponse{Message: fcore.ErrForbidden.Error(), Kind: "forbidden"})
			return
		}
		c.Next()
	}
}

func ViewerFrom(c *gin.Context) (fcore.Viewer, bool) {
	v, ok := c.Get(viewerKey)
	if !ok {
		return fcore.Viewer{}, false
	}
	viewer, ok := v.(fcore.Viewer)
	return viewer, ok
}

// SetViewer is used by callers that authenticate by other means.
func SetViewer(c *gin.Context, viewer fcore.Viewer) {
	c.Set(viewerKey, viewer)
}
