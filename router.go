package main

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jadygoy/cafe_backend/metrics"
	"github.com/jadygoy/cafe_backend/middlewares"
	"github.com/jadygoy/cafe_backend/models"
	"github.com/jadygoy/cafe_backend/utils"
	"github.com/sirupsen/logrus"
)

const apiMessage = "Jadygoy Cafe Management API"

type app struct {
	ledger    *models.ReportLedger
	directory *models.UserDirectory
	limiter   *middlewares.RateLimiter
	logger    *logrus.Logger
}

func newRouter(a *app, corsConfig cors.Config) *gin.Engine {
	r := gin.New()
	r.Use(middlewares.CorrelationMiddleware())
	r.Use(cors.New(corsConfig))
	r.Use(middlewares.MetricsMiddleware())
	r.Use(middlewares.ErrorLogger(a.logger))
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	if a.limiter != nil {
		api.Use(a.limiter.RateLimitMiddleware)
	}
	api.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": apiMessage})
	})

	api.POST("/reports", createReportHandler(a.ledger))
	api.GET("/reports", listReportsHandler(a.ledger))
	api.GET("/reports/:date", getReportHandler(a.ledger))
	api.PUT("/reports/:date", updateReportHandler(a.ledger))
	api.DELETE("/reports/:date", deleteReportHandler(a.ledger))
	api.GET("/reports/:date/slip", reportSlipHandler(a.ledger))
	api.GET("/exports/reports.xlsx", exportReportsHandler(a.ledger))

	api.POST("/users", createUserHandler(a.directory))
	api.GET("/users", listUsersHandler(a.directory))
	api.POST("/login", loginHandler(a.directory))

	r.NoRoute(customNotFoundHandler)
	return r
}

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
}

// corsConfigFromEnv allows every origin outside production. In production
// only CORS_ALLOWED_ORIGINS (comma-separated) are allowed; unset denies all.
func corsConfigFromEnv() cors.Config {
	corsConfig := cors.DefaultConfig()
	allowedOrigins := utils.SplitAndTrim(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if len(allowedOrigins) == 0 {
			// cors.New rejects an empty allowlist, so deny through the func instead.
			corsConfig.AllowOriginFunc = func(string) bool { return false }
		} else {
			corsConfig.AllowOrigins = allowedOrigins
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type", middlewares.CorrelationHeader)
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition", middlewares.CorrelationHeader)
	corsConfig.AllowCredentials = true
	return corsConfig
}

// respondError maps ledger and directory outcomes to status codes.
// Anything unexpected is recorded on the context and answered with 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
	case errors.Is(err, utils.ErrorDuplicateReportDate):
		c.JSON(http.StatusConflict, gin.H{"error": "Report for this date already exists"})
	case errors.Is(err, utils.ErrorInvalidReportDate),
		errors.Is(err, utils.ErrorDateMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrorDuplicateUsername):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username already exists"})
	case errors.Is(err, utils.ErrorInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	case errors.Is(err, utils.ErrorResourceBusy):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func respondBindError(c *gin.Context, err error) {
	body := gin.H{"error": "invalid request"}
	if fields := utils.ProcessValidationErrors(err); fields != nil {
		body["fields"] = fields
	}
	c.JSON(http.StatusBadRequest, body)
}
