package handlers

import (
	"net/http"

	"fieldforce.com/fieldforce/fieldforce/web/common"
	web "fieldforce.com/fieldforce/web/common"
	"github.com/gin-gonic/gin"
)

type AdviceDTO struct {
	Location string `json:"location" binding:"max=200"`
}

type DigestQuery struct {
	Date web.DateOnly `form:"date"`
}

func (ep *Endpoint) Dashboard(c *gin.Context) {
	viewer, ok := ep.base.Viewer(c)
	if !ok {
		return
	}
	d, err := ep.base.Service.Dashboard(c.Request.Context(), viewer)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, web.NewSuccessResponse(d))
}

func (ep *Endpoint) Advice(c *gin.Context) {
	viewer, ok := ep.base.Viewer(c)
	if !ok {
		return
	}
	var dto AdviceDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}
	advice, err := ep.base.Service.FieldAdvice(c.Request.Context(), viewer, dto.Location)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, web.NewSuccessResponse(gin.H{"advice": advice}))
}

// Digest returns the per-branch digest of ?date= (today by default).
func (ep *Endpoint) Digest(c *gin.Context) {
	var q DigestQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}
	date := q.Date.String()
	if date == "" {
		date = ep.base.Service.Today()
	}
	digest, err := ep.base.Service.DailyDigest(c.Request.Context(), date)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, web.NewSuccessResponse(gin.H{"digest": digest, "text": digest.Text()}))
}
