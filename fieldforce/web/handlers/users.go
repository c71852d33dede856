package handlers

import (
	"net/http"

	"fieldforce.com/fieldforce/fieldforce/web/common"
	web "fieldforce.com/fieldforce/web/common"
	"fieldforce.com/fieldforce/web/middlewares"
	"github.com/gin-gonic/gin"
)

func (ep *Endpoint) Me(c *gin.Context) {
	viewer, ok := ep.base.Viewer(c)
	if !ok {
		return
	}
	ac, err := ep.base.Service.LoadContext(c.Request.Context(), viewer.ID)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, web.NewSuccessResponse(gin.H{
		"profile":  ac.User,
		"branch":   ac.Branch,
		"geofence": ac.Fence,
	}))
}

// Logout closes the caller's session and every timer it owns.
func (ep *Endpoint) Logout(c *gin.Context) {
	viewer, ok := ep.base.Viewer(c)
	if !ok {
		return
	}
	closed := ep.base.Sessions.Close(viewer.ID)
	c.SetCookie(middlewares.CookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, web.NewSuccessResponse(gin.H{"closed": closed}))
}

func (ep *Endpoint) RemoveUser(c *gin.Context) {
	viewer, ok := ep.base.Viewer(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if err := ep.base.Service.RemoveUser(c.Request.Context(), viewer, id); err != nil {
		common.RespondError(c, err)
		return
	}
	ep.base.Sessions.Close(id)
	c.JSON(http.StatusOK, web.NewSuccessResponse(gin.H{"id": id}))
}
