package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/asanalab/yogaflow-backend/internal/services"
)

type PracticeHandler struct {
	practiceService services.PracticeService
}

func NewPracticeHandler(practiceService services.PracticeService) *PracticeHandler {
	return &PracticeHandler{practiceService: practiceService}
}

func (ph *PracticeHandler) StartSession(c *gin.Context) {
	var req struct {
		Pose string `json:"pose"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := ph.practiceService.StartSession(c.Request.Context(), req.Pose); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": "true"})
}

func (ph *PracticeHandler) StartPose(c *gin.Context) {
	var req struct {
		Pose string `json:"pose"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := ph.practiceService.StartPose(c.Request.Context(), req.Pose); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": "true"})
}

func (ph *PracticeHandler) EndPose(c *gin.Context) {
	if err := ph.practiceService.EndPose(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": "true"})
}

func (ph *PracticeHandler) IngestDetections(c *gin.Context) {
	var req struct {
		Detections []services.DetectionInput `json:"detections"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if len(req.Detections) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "detections required"})
		return
	}
	feedback, err := ph.practiceService.IngestDetections(c.Request.Context(), req.Detections)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"feedback": feedback})
}

func (ph *PracticeHandler) LiveStats(c *gin.Context) {
	stats, active, err := ph.practiceService.LiveStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"active": active, "stats": stats})
}

func (ph *PracticeHandler) EndSession(c *gin.Context) {
	var req struct {
		PlanID *string `json:"plan_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	var planID *uuid.UUID
	if req.PlanID != nil && *req.PlanID != "" {
		parsed, pErr := uuid.Parse(*req.PlanID)
		if pErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid plan id"})
			return
		}
		planID = &parsed
	}
	record, earned, err := ph.practiceService.EndSession(c.Request.Context(), planID)
	if err != nil {
		if record != nil {
			// Saved nothing, but the session summary is still usable.
			c.JSON(http.StatusOK, gin.H{"session": record, "new_achievements": earned, "warning": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": record, "new_achievements": earned})
}

func (ph *PracticeHandler) CancelSession(c *gin.Context) {
	if err := ph.practiceService.CancelSession(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": "true"})
}
