package handlers

import (
	"io"
	"net/http"
	"time"

	"fieldforce.com/fieldforce/fieldforce/core"
	"fieldforce.com/fieldforce/fieldforce/model"
	"fieldforce.com/fieldforce/fieldforce/web/common"
	web "fieldforce.com/fieldforce/web/common"
	"github.com/gin-gonic/gin"
)

type TrackingDTO struct {
	Tracking bool                    `json:"tracking"`
	Stats    *core.TrackerStats      `json:"stats,omitempty"`
	Record   *model.AttendanceRecord `json:"record,omitempty"`
}

type LiveDTO struct {
	GeneratedAt time.Time        `json:"generatedAt"`
	Online      int              `json:"online"`
	Entries     []core.LiveEntry `json:"entries"`
}

func newLiveDTO(snap *core.LiveSnapshot) LiveDTO {
	return LiveDTO{GeneratedAt: snap.GeneratedAt, Online: snap.OnlineCount(), Entries: snap.Sorted()}
}

func (ep *Endpoint) TrackingStatus(c *gin.Context) {
	session, ok := ep.base.Session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, web.NewSuccessResponse(TrackingDTO{Tracking: session.Tracking(), Stats: session.TrackerStats()}))
}

// StartTracking starts a field visit: position sampling plus a status re-evaluation.
func (ep *Endpoint) StartTracking(c *gin.Context) {
	session, ok := ep.base.Session(c)
	if !ok {
		return
	}
	fix, ok := ep.bindPosition(c, session.Viewer())
	if !ok {
		return
	}

	rec, err := session.StartTracking(c.Request.Context(), fix)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, web.NewSuccessResponse(TrackingDTO{Tracking: true, Stats: session.TrackerStats(), Record: rec}))
}

func (ep *Endpoint) StopTracking(c *gin.Context) {
	session, ok := ep.base.Session(c)
	if !ok {
		return
	}
	fix, ok := ep.bindPosition(c, session.Viewer())
	if !ok {
		return
	}

	rec, err := session.StopTracking(c.Request.Context(), fix)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, web.NewSuccessResponse(TrackingDTO{Tracking: false, Record: rec}))
}

func (ep *Endpoint) Live(c *gin.Context) {
	viewer, ok := ep.base.Viewer(c)
	if !ok {
		return
	}
	snap, err := ep.base.Service.LiveSnapshot(c.Request.Context(), viewer)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, web.NewSuccessResponse(newLiveDTO(snap)))
}

// StreamLive pushes a live snapshot on every refresh (?interval=, default from
// configuration) as server-sent events.
func (ep *Endpoint) StreamLive(c *gin.Context) {
	session, ok := ep.base.Session(c)
	if !ok {
		return
	}
	var interval time.Duration
	if v := c.Query("interval"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < time.Second {
			c.JSON(http.StatusBadRequest, web.NewErrorResponse("interval must be a duration of at least 1s"))
			return
		}
		interval = d
	}

	snapshots := make(chan *core.LiveSnapshot, 4)
	watch, err := session.WatchLive(interval, func(snap *core.LiveSnapshot) {
		select {
		case snapshots <- snap:
		default:
		}
	})
	if err != nil {
		common.RespondError(c, err)
		return
	}
	defer session.StopWatching(watch)

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case snap := <-snapshots:
			c.SSEvent("live", newLiveDTO(snap))
			return true
		}
	})
}
