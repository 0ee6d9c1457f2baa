package usage

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vasanthanrk/careerboost/internal/auth"
	"github.com/vasanthanrk/careerboost/internal/metrics"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// CheckFeature godoc
// @Summary      Check feature quota
// @Description  Returns allowed/used/limit for the feature. Paying users get
// @Description  limit "unlimited" regardless of stored counts; unknown
// @Description  features are denied with limit 0.
// @Tags         usage
// @Produce      json
// @Security     BearerAuth
// @Param        feature_name  path  string  true  "Feature name"
// @Success      200  {object}  Quota
// @Router       /check-feature/{feature_name} [get]
func (h *Handler) CheckFeature(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	feature := c.Param("feature_name")
	quota, err := h.service.Check(c.Request.Context(), userID, feature)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check feature usage"})
		return
	}

	metrics.RecordFeatureCheck(feature, quota.Allowed)
	c.JSON(http.StatusOK, quota)
}

// UpdateFeature godoc
// @Summary      Record one feature use
// @Description  Called after the gated action succeeded.
// @Tags         usage
// @Produce      json
// @Security     BearerAuth
// @Param        feature_name  path  string  true  "Feature name"
// @Success      200  {object}  gin.H
// @Router       /update-feature/{feature_name} [post]
func (h *Handler) UpdateFeature(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	feature := c.Param("feature_name")
	count, err := h.service.Increment(c.Request.Context(), userID, feature)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update feature usage"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "feature count updated", "count": count})
}

// ConsumeFeature godoc
// @Summary      Atomically admit and record one feature use
// @Description  Single-step alternative to check + update that cannot exceed
// @Description  the cap under concurrent requests.
// @Tags         usage
// @Produce      json
// @Security     BearerAuth
// @Param        feature_name  path  string  true  "Feature name"
// @Success      200  {object}  Quota
// @Failure      429  {object}  Quota
// @Router       /consume-feature/{feature_name} [post]
func (h *Handler) ConsumeFeature(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	feature := c.Param("feature_name")
	quota, err := h.service.Consume(c.Request.Context(), userID, feature)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to consume feature usage"})
		return
	}

	metrics.RecordFeatureCheck(feature, quota.Allowed)
	status := http.StatusOK
	if !quota.Allowed {
		status = http.StatusTooManyRequests
	}
	c.JSON(status, quota)
}
