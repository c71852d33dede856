package handlers

import (
	"net/http"

	"fieldforce.com/fieldforce/fieldforce/web/common"
	web "fieldforce.com/fieldforce/web/common"
	"github.com/gin-gonic/gin"
)

func (ep *Endpoint) Today(c *gin.Context) {
	viewer, ok := ep.base.Viewer(c)
	if !ok {
		return
	}
	rec, err := ep.base.Service.TodayRecord(c.Request.Context(), viewer.ID)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, web.NewSuccessResponse(rec))
}

func (ep *Endpoint) CheckIn(c *gin.Context) {
	viewer, ok := ep.base.Viewer(c)
	if !ok {
		return
	}
	fix, ok := ep.bindPosition(c, viewer)
	if !ok {
		return
	}

	rec, err := ep.base.Service.CheckInUser(c.Request.Context(), viewer.ID, fix)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, web.NewSuccessResponse(rec))
}

func (ep *Endpoint) CheckOut(c *gin.Context) {
	viewer, ok := ep.base.Viewer(c)
	if !ok {
		return
	}
	fix, ok := ep.bindPosition(c, viewer)
	if !ok {
		return
	}

	rec, err := ep.base.Service.CheckOutUser(c.Request.Context(), viewer.ID, fix)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, web.NewSuccessResponse(rec))
}
