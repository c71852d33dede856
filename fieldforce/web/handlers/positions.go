package handlers

import (
	"io"
	"net/http"

	"fieldforce.com/fieldforce/fieldforce/core"
	"fieldforce.com/fieldforce/fieldforce/web/common"
	web "fieldforce.com/fieldforce/web/common"
	"github.com/gin-gonic/gin"
)

type PositionErrorDTO struct {
	Kind core.LocationErrorKind `json:"kind" binding:"required,oneof=permission_denied unavailable timeout"`
}

func (ep *Endpoint) positions(c *gin.Context) (*core.ReportedPositions, bool) {
	if ep.base.Positions == nil {
		c.JSON(http.StatusServiceUnavailable, web.NewErrorResponse("position reports are not accepted"))
		return nil, false
	}
	return ep.base.Positions, true
}

// ReportPosition accepts a fix from the caller's device.
func (ep *Endpoint) ReportPosition(c *gin.Context) {
	viewer, ok := ep.base.Viewer(c)
	if !ok {
		return
	}
	positions, ok := ep.positions(c)
	if !ok {
		return
	}
	var dto common.FixDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}

	fix := dto.Fix(ep.now())
	positions.Report(viewer.ID, fix)
	c.JSON(http.StatusAccepted, web.NewSuccessResponse(fix))
}

// ReportPositionError records that the caller's device cannot produce fixes.
func (ep *Endpoint) ReportPositionError(c *gin.Context) {
	viewer, ok := ep.base.Viewer(c)
	if !ok {
		return
	}
	positions, ok := ep.positions(c)
	if !ok {
		return
	}
	var dto PositionErrorDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}

	positions.ReportError(viewer.ID, dto.Kind)
	c.JSON(http.StatusAccepted, web.NewSuccessResponse(gin.H{"kind": dto.Kind}))
}

// StreamPositions sends the caller's own fixes as server-sent events until
// the client goes away.
func (ep *Endpoint) StreamPositions(c *gin.Context) {
	viewer, ok := ep.base.Viewer(c)
	if !ok {
		return
	}
	positions, ok := ep.positions(c)
	if !ok {
		return
	}

	events := make(chan any, 16)
	push := func(ev any) {
		select {
		case events <- ev:
		default:
			// slow reader, drop
		}
	}
	if fix, ok := positions.Latest(viewer.ID); ok {
		push(fix)
	}
	h := positions.Watch(viewer.ID, func(f core.Fix) { push(f) }, func(err error) { push(err) })
	defer positions.ClearWatch(h)

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case ev := <-events:
			switch v := ev.(type) {
			case core.Fix:
				c.SSEvent("fix", v)
			case error:
				_, body := common.StatusFor(v)
				c.SSEvent("error", body)
			}
			return true
		}
	})
}
