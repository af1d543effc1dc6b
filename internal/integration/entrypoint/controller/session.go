// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finance-tracker/client/internal/application/session"
	"github.com/finance-tracker/client/internal/integration/entrypoint/dto"
)

// SessionController handles the session snapshot endpoint.
type SessionController struct {
	sessions *session.Controller
}

// NewSessionController creates a new session controller instance.
func NewSessionController(sessions *session.Controller) *SessionController {
	return &SessionController{
		sessions: sessions,
	}
}

// Get handles GET /session requests. The snapshot is served as-is, including
// the unknown state before the first identity callback has been observed.
func (c *SessionController) Get(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.ToSessionResponse(c.sessions.Snapshot()))
}
