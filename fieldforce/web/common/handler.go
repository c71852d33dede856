package common

import (
	"net/http"
	"time"

	"fieldforce.com/fieldforce/fieldforce/core"
	web "fieldforce.com/fieldforce/web/common"
	"fieldforce.com/fieldforce/web/middlewares"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	Service   *core.Service
	Sessions  *core.Registry
	Positions *core.ReportedPositions
	// Now stamps fixes posted without a capture time. Defaults to time.Now.
	Now func() time.Time
}

// Viewer returns the authenticated viewer or aborts with 401.
func (h *Handler) Viewer(c *gin.Context) (core.Viewer, bool) {
	viewer, ok := middlewares.ViewerFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, web.NewErrorResponse("not signed in"))
	}
	return viewer, ok
}

// Session returns the session of the authenticated viewer, opening it on first use.
func (h *Handler) Session(c *gin.Context) (*core.Session, bool) {
	viewer, ok := h.Viewer(c)
	if !ok {
		return nil, false
	}
	return h.Sessions.Open(viewer), true
}
