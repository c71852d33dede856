package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"fieldforce.com/fieldforce/fieldforce/core"
	"fieldforce.com/fieldforce/fieldforce/reports"
	"fieldforce.com/fieldforce/fieldforce/web/common"
	"fieldforce.com/fieldforce/utils"
	web "fieldforce.com/fieldforce/web/common"
	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

const maxVoucherSize = 10 << 20

// month reads ?month=, defaulting to the current local month.
func (ep *Endpoint) month(c *gin.Context) string {
	if m := c.Query("month"); m != "" {
		return m
	}
	return ep.now().In(ep.base.Service.Options().Location).Format(utils.MonthLayout)
}

func (ep *Endpoint) ListExpenses(c *gin.Context) {
	viewer, ok := ep.base.Viewer(c)
	if !ok {
		return
	}
	expenses, err := ep.base.Service.ListExpenses(c.Request.Context(), viewer, ep.month(c))
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, web.NewSearchResponse(expenses, int64(len(expenses))))
}

// CreateExpense accepts JSON or a multipart form with an optional "voucher" file.
func (ep *Endpoint) CreateExpense(c *gin.Context) {
	viewer, ok := ep.base.Viewer(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxVoucherSize+1<<20)

	var in core.ExpenseInput
	if err := c.ShouldBind(&in); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}

	var voucher *core.Voucher
	if c.ContentType() == gin.MIMEMultipartPOSTForm {
		header, err := c.FormFile("voucher")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			c.JSON(http.StatusBadRequest, web.NewErrorResponse(err.Error()))
			return
		case header.Size > maxVoucherSize:
			c.JSON(http.StatusRequestEntityTooLarge, web.NewErrorResponse("voucher is larger than 10 MB"))
			return
		default:
			file, err := header.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, web.NewErrorResponse(err.Error()))
				return
			}
			defer file.Close()
			voucher = &core.Voucher{Filename: header.Filename, ContentType: header.Header.Get("Content-Type"), Body: file}
		}
	}

	e, err := ep.base.Service.RecordExpense(c.Request.Context(), viewer, in, voucher)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, web.NewSuccessResponse(e))
}

func (ep *Endpoint) ExpenseReport(c *gin.Context) {
	viewer, ok := ep.base.Viewer(c)
	if !ok {
		return
	}
	month := ep.month(c)
	report, err := ep.base.Service.ExpenseReport(c.Request.Context(), viewer, month)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	if c.Query("format") == "xlsx" {
		ep.sendWorkbook(c, reports.ExpenseFilename(month), func() (*excelize.File, error) {
			return reports.ExpenseWorkbook(report)
		})
		return
	}
	c.JSON(http.StatusOK, web.NewSuccessResponse(report))
}

func (ep *Endpoint) AttendanceReport(c *gin.Context) {
	viewer, ok := ep.base.Viewer(c)
	if !ok {
		return
	}
	month := ep.month(c)
	rows, err := ep.base.Service.AttendanceReport(c.Request.Context(), viewer, month)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	if c.Query("format") == "xlsx" {
		ep.sendWorkbook(c, reports.AttendanceFilename(month), func() (*excelize.File, error) {
			return reports.AttendanceWorkbook(month, rows, ep.base.Service.Options().Location)
		})
		return
	}
	c.JSON(http.StatusOK, web.NewSearchResponse(rows, int64(len(rows))))
}

func (ep *Endpoint) sendWorkbook(c *gin.Context, filename string, build func() (*excelize.File, error)) {
	f, err := build()
	if err != nil {
		common.RespondError(c, err)
		return
	}
	b, err := reports.Bytes(f)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, reports.ContentType, b)
}
