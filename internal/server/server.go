package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"sales-analytics/internal/report"
)

// New builds the HTTP surface over the report service. The KPI endpoint
// answers 200 with exactly one record for any report_date value; only
// storage failures surface as 500.
func New(svc *report.Service, logger *logrus.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	v1.GET("/reports/daily-kpi", func(c *gin.Context) {
		summary, err := svc.Daily(c.Request.Context(), c.Query("report_date"))
		if err != nil {
			logger.WithError(err).Error("daily kpi report failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "storage unavailable"})
			return
		}
		c.JSON(http.StatusOK, summary)
	})

	return router
}
