package middleware

import (
	"context"
	"strings"

	"jewelry/api/ctxutil"
	"jewelry/api/response"
	appOrder "jewelry/application/order"
	"jewelry/pkg/auth"
	"jewelry/pkg/errors"
	"jewelry/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminAuthorizer resolves a user ID into a viewer and refuses non-admins.
type AdminAuthorizer interface {
	Authorize(ctx context.Context, userID int64) (appOrder.Viewer, error)
	IsAdmin(ctx context.Context, userID int64) bool
}

// Authenticator reads the session token from the cookie or the bearer header.
type Authenticator struct {
	verifier   *auth.Verifier
	cookieName string
	admins     AdminAuthorizer
}

func NewAuthenticator(verifier *auth.Verifier, cookieName string, admins AdminAuthorizer) *Authenticator {
	if cookieName == "" {
		cookieName = "token"
	}
	return &Authenticator{verifier: verifier, cookieName: cookieName, admins: admins}
}

func (a *Authenticator) token(c *gin.Context) string {
	if cookie, err := c.Cookie(a.cookieName); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if rest, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(rest)
	}
	return ""
}

// authenticate returns the user ID behind the request, or 0.
func (a *Authenticator) authenticate(c *gin.Context) int64 {
	raw := a.token(c)
	if raw == "" || !a.verifier.Enabled() {
		return 0
	}
	userID, err := a.verifier.Verify(raw)
	if err != nil {
		logger.Debug("token rejected",
			zap.String("request_id", response.GetRequestID(c)),
			zap.Error(err))
		return 0
	}
	return userID
}

// Optional attaches the viewer when a valid token is present and lets
// anonymous requests through.
func (a *Authenticator) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID := a.authenticate(c); userID > 0 {
			viewer := appOrder.Viewer{UserID: userID}
			if a.admins != nil {
				viewer.Admin = a.admins.IsAdmin(c.Request.Context(), userID)
			}
			ctxutil.SetViewer(c, viewer)
		}
		c.Next()
	}
}

// Required answers 401 unless a valid token is present.
func (a *Authenticator) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := a.authenticate(c)
		if userID == 0 {
			response.HandleAppError(c, errors.Unauthorized("authentication required"))
			return
		}
		ctxutil.SetViewer(c, appOrder.Viewer{UserID: userID})
		c.Next()
	}
}

// Admin answers 401 without a valid token and 403 for non-admin accounts.
func (a *Authenticator) Admin() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := a.authenticate(c)
		if userID == 0 {
			response.HandleAppError(c, errors.Unauthorized("authentication required"))
			return
		}
		viewer, err := a.admins.Authorize(c.Request.Context(), userID)
		if err != nil {
			response.HandleAppError(c, err)
			return
		}
		ctxutil.SetViewer(c, viewer)
		c.Next()
	}
}
