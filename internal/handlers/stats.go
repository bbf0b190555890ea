package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/asanalab/yogaflow-backend/internal/services"
)

type StatsHandler struct {
	statsService   services.StatsService
	sessionService services.SessionService
}

func NewStatsHandler(statsService services.StatsService, sessionService services.SessionService) *StatsHandler {
	return &StatsHandler{statsService: statsService, sessionService: sessionService}
}

func (sh *StatsHandler) GetDashboard(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}
	dashboard, err := sh.statsService.GetDashboard(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

func (sh *StatsHandler) GetAchievements(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}
	statuses, err := sh.statsService.GetAchievements(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"achievements": statuses})
}

func (sh *StatsHandler) GetHistory(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}
	history, err := sh.sessionService.GetHistory(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": history})
}

func (sh *StatsHandler) GetSession(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}
	session, err := sh.sessionService.GetSession(c.Request.Context(), userID, sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}
