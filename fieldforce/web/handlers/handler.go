package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"fieldforce.com/fieldforce/fieldforce/core"
	"fieldforce.com/fieldforce/fieldforce/web/common"
	web "fieldforce.com/fieldforce/web/common"
	"fieldforce.com/fieldforce/web/middlewares"
	"github.com/gin-gonic/gin"
)

type Endpoint struct {
	base common.Handler
	now  func() time.Time
}

// Register mounts every authenticated route on r.
func Register(r *gin.RouterGroup, base common.Handler) {
	ep := &Endpoint{base: base, now: base.Now}
	if ep.now == nil {
		ep.now = time.Now
	}

	r.GET("/me", ep.Me)
	r.POST("/logout", ep.Logout)

	r.GET("/attendance/today", ep.Today)
	r.POST("/attendance/check-in", ep.CheckIn)
	r.POST("/attendance/check-out", ep.CheckOut)

	r.POST("/positions", ep.ReportPosition)
	r.POST("/positions/error", ep.ReportPositionError)
	r.GET("/positions/stream", ep.StreamPositions)

	r.GET("/tracking", ep.TrackingStatus)
	r.POST("/tracking/start", ep.StartTracking)
	r.POST("/tracking/stop", ep.StopTracking)

	r.GET("/live", ep.Live)
	r.GET("/live/stream", ep.StreamLive)

	r.GET("/dashboard", ep.Dashboard)
	r.POST("/assistant/advice", ep.Advice)

	r.GET("/expenses", ep.ListExpenses)
	r.POST("/expenses", ep.CreateExpense)
	r.GET("/reports/expenses", ep.ExpenseReport)
	r.GET("/reports/attendance", ep.AttendanceReport)

	admin := r.Group("", middlewares.RequireAdmin())
	admin.GET("/digest", ep.Digest)
	admin.DELETE("/users/:id", ep.RemoveUser)
}

// bindPosition reads the optional fix of an action. An empty body is fine.
func (ep *Endpoint) bindPosition(c *gin.Context, viewer core.Viewer) (*core.Fix, bool) {
	var body common.PositionBody
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return nil, false
	}
	if body.Fix == nil {
		return nil, true
	}
	fix := body.Fix.Fix(ep.now())
	if ep.base.Positions != nil {
		ep.base.Positions.Report(viewer.ID, fix)
	}
	return &fix, true
}
