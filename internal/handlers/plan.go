package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/asanalab/yogaflow-backend/internal/services"
)

type PlanHandler struct {
	planService services.PlanService
}

func NewPlanHandler(planService services.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

func (ph *PlanHandler) GeneratePlan(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}
	row, plan, err := ph.planService.GeneratePlan(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"plan_id": row.ID, "source": row.Source, "plan": plan})
}

func (ph *PlanHandler) GetPlans(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}
	plans, err := ph.planService.GetPlans(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

func (ph *PlanHandler) DailyChallenge(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}
	challenge, err := ph.planService.DailyChallenge(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"challenge": challenge})
}
