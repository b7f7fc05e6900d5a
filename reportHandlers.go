package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jadygoy/cafe_backend/models"
)

func createReportHandler(ledger *models.ReportLedger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewDailyReport
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
		report, err := ledger.Create(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func listReportsHandler(ledger *models.ReportLedger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reports, err := ledger.List(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, reports)
	}
}

func getReportHandler(ledger *models.ReportLedger) gin.HandlerFunc {
	return func(c *gin.Context) {
		report, err := ledger.GetByDate(c.Request.Context(), c.Param("date"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func updateReportHandler(ledger *models.ReportLedger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewDailyReport
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
		report, err := ledger.Update(c.Request.Context(), c.Param("date"), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func deleteReportHandler(ledger *models.ReportLedger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := ledger.Delete(c.Request.Context(), c.Param("date")); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Report deleted successfully"})
	}
}
