package plan

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"

	"github.com/vasanthanrk/careerboost/internal/logger"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// ListPlans godoc
// @Summary      List purchasable plans
// @Tags         plans
// @Produce      json
// @Success      200  {array}  Plan
// @Router       /plans [get]
func (h *Handler) ListPlans(c *gin.Context) {
	plans, err := h.repo.ListActive(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load plans"})
		return
	}

	c.JSON(http.StatusOK, plans)
}

// CreatePlan godoc
// @Summary      Create a plan (admin)
// @Tags         plans
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      CreatePlanRequest  true  "Plan"
// @Success      201      {object}  Plan
// @Failure      400      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Router       /admin/plans [post]
func (h *Handler) CreatePlan(c *gin.Context) {
	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.repo.Create(c.Request.Context(), req)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			c.JSON(http.StatusConflict, gin.H{"error": "plan code already exists"})
			return
		}
		logger.Errorf("Failed to create plan %s: %v", req.Code, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create plan"})
		return
	}

	c.JSON(http.StatusCreated, p)
}

// DeactivatePlan godoc
// @Summary      Soft-disable a plan (admin)
// @Tags         plans
// @Produce      json
// @Security     BearerAuth
// @Param        code  path      string  true  "Plan code"
// @Success      200   {object}  api.MessageResponse
// @Failure      404   {object}  api.ErrorResponse
// @Router       /admin/plans/{code}/deactivate [post]
func (h *Handler) DeactivatePlan(c *gin.Context) {
	code := c.Param("code")

	if err := h.repo.Deactivate(c.Request.Context(), code); err != nil {
		if errors.Is(err, ErrPlanNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "plan not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to deactivate plan"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "plan deactivated"})
}
