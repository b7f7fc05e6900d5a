package main

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jadygoy/cafe_backend/models"
	"github.com/jadygoy/cafe_backend/models/reports"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	pdfContentType  = "application/pdf"
)

// exportReportsHandler serves the reports in [from, to] as a workbook.
// Both query bounds are optional.
func exportReportsHandler(ledger *models.ReportLedger) gin.HandlerFunc {
	return func(c *gin.Context) {
		from, to := c.Query("from"), c.Query("to")
		list, err := ledger.ListBetween(c.Request.Context(), from, to)
		if err != nil {
			respondError(c, err)
			return
		}

		// buffer so a failed render still gets a proper error status
		var buf bytes.Buffer
		if err := reports.WriteDailyReports(&buf, list); err != nil {
			respondError(c, err)
			return
		}
		c.Header("Content-Disposition", attachment(exportFileName(from, to)))
		c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
	}
}

func reportSlipHandler(ledger *models.ReportLedger) gin.HandlerFunc {
	return func(c *gin.Context) {
		report, err := ledger.GetByDate(c.Request.Context(), c.Param("date"))
		if err != nil {
			respondError(c, err)
			return
		}

		var buf bytes.Buffer
		if err := reports.WriteCashSlip(&buf, report); err != nil {
			respondError(c, err)
			return
		}
		c.Header("Content-Disposition", attachment("cash-slip-"+report.Date+".pdf"))
		c.Data(http.StatusOK, pdfContentType, buf.Bytes())
	}
}

func exportFileName(from, to string) string {
	switch {
	case from == "" && to == "":
		return "daily-reports.xlsx"
	case from == "":
		return "daily-reports-until-" + to + ".xlsx"
	case to == "":
		return "daily-reports-from-" + from + ".xlsx"
	default:
		return "daily-reports-" + from + "-" + to + ".xlsx"
	}
}

func attachment(name string) string {
	return fmt.Sprintf("attachment; filename=%q", name)
}
