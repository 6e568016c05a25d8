package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tasktracker/internal/service"
)

// SettingsController exposes the notification settings record.
type SettingsController struct {
	Settings *service.SettingsService
	Notifier service.Notifier
}

func (sc *SettingsController) Get(c *gin.Context) {
	settings, err := sc.Settings.Get(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"hourly_report": settings.HourlyReport})
}

type hourlyReportRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

func (sc *SettingsController) SetHourlyReport(c *gin.Context) {
	var req hourlyReportRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	settings, err := sc.Settings.SetHourlyReport(c.Request.Context(), *req.Enabled)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	notify(sc.Notifier, service.HourlyReportToggledMessage(settings.HourlyReport))
	c.JSON(http.StatusOK, gin.H{"hourly_report": settings.HourlyReport})
}
