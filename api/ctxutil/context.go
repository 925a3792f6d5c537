// Package ctxutil moves request-scoped values between gin and context.Context.
package ctxutil

import (
	"context"

	"jewelry/api/response"
	appOrder "jewelry/application/order"
	"jewelry/infrastructure/persistence"

	"github.com/gin-gonic/gin"
)

const (
	UserIDKey = "user_id"
	AdminKey  = "is_admin"
)

// WithRequestID returns the request context carrying the gin request ID, so
// repositories and the gorm logger can tag their output.
func WithRequestID(c *gin.Context) context.Context {
	return persistence.ContextWithRequestID(c.Request.Context(), response.GetRequestID(c))
}

func RequestIDFromContext(ctx context.Context) string {
	return persistence.RequestIDFromContext(ctx)
}

// SetViewer records the authenticated caller.
func SetViewer(c *gin.Context, v appOrder.Viewer) {
	c.Set(UserIDKey, v.UserID)
	c.Set(AdminKey, v.Admin)
}

// Viewer returns the caller; anonymous callers get the zero Viewer.
func Viewer(c *gin.Context) appOrder.Viewer {
	var v appOrder.Viewer
	if id, ok := c.Get(UserIDKey); ok {
		v.UserID, _ = id.(int64)
	}
	if admin, ok := c.Get(AdminKey); ok {
		v.Admin, _ = admin.(bool)
	}
	return v
}
