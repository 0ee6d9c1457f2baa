package subscription

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vasanthanrk/careerboost/internal/auth"
	"github.com/vasanthanrk/careerboost/internal/gateway"
	"github.com/vasanthanrk/careerboost/internal/logger"
	"github.com/vasanthanrk/careerboost/internal/plan"
	"github.com/vasanthanrk/careerboost/internal/user"
)

// timeNow is swapped out in tests.
var timeNow = time.Now

// Notifier sends the cancellation notice. A nil Notifier disables it.
type Notifier interface {
	SendCancellationNotice(ctx context.Context, email, name string, entitledUntil time.Time) error
}

type Handler struct {
	service Service
	plans   plan.Repository
	gateway gateway.Gateway
	users   user.Repository
	mailer  Notifier
}

func NewHandler(service Service, plans plan.Repository, gw gateway.Gateway, users user.Repository, mailer Notifier) *Handler {
	return &Handler{
		service: service,
		plans:   plans,
		gateway: gw,
		users:   users,
		mailer:  mailer,
	}
}

type StartRequest struct {
	PlanCode string `json:"plan_id" binding:"required"`
}

type StartResponse struct {
	Gateway     string `json:"gateway"`
	OrderID     string `json:"order_id,omitempty"`
	CheckoutURL string `json:"checkout_url,omitempty"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
}

// Start godoc
// @Summary      Start a subscription purchase
// @Description  Looks up the plan and creates a provider purchase intent:
// @Description  a Razorpay order to pay against, or a Stripe checkout URL.
// @Tags         subscription
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      StartRequest  true  "Plan to purchase"
// @Success      200      {object}  StartResponse
// @Failure      404      {object}  api.ErrorResponse
// @Failure      502      {object}  api.ErrorResponse
// @Router       /subscription/start [post]
func (h *Handler) Start(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.plans.FindByCode(c.Request.Context(), req.PlanCode)
	if err != nil {
		if errors.Is(err, plan.ErrPlanNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "plan not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load plan"})
		return
	}
	if !p.Active {
		c.JSON(http.StatusNotFound, gin.H{"error": "plan not found"})
		return
	}

	intent, err := h.gateway.CreateIntent(c.Request.Context(), gateway.IntentParams{
		AmountCents: p.AmountCents,
		Currency:    p.Currency,
		UserID:      userID,
		PlanCode:    p.Code,
	})
	if err != nil {
		logger.Errorf("Failed to create %s intent for user %d plan %s: %v", h.gateway.Name(), userID, p.Code, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment provider unavailable"})
		return
	}

	c.JSON(http.StatusOK, StartResponse{
		Gateway:     intent.Gateway,
		OrderID:     intent.OrderID,
		CheckoutURL: intent.CheckoutURL,
		AmountCents: intent.AmountCents,
		Currency:    intent.Currency,
	})
}

// Status godoc
// @Summary      Current subscription status
// @Tags         subscription
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  StatusView
// @Router       /subscription/status [get]
func (h *Handler) Status(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	view, err := h.service.Status(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load subscription"})
		return
	}

	c.JSON(http.StatusOK, view)
}

// Cancel godoc
// @Summary      Cancel subscription at period end
// @Tags         subscription
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  api.MessageResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /subscription/cancel [post]
func (h *Handler) Cancel(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	sub, err := h.service.Cancel(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNoActiveSubscription) {
			c.JSON(http.StatusNotFound, gin.H{"error": "active subscription not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to cancel subscription"})
		return
	}

	h.sendCancellationNotice(c.Request.Context(), userID, sub.CurrentPeriodEnd)

	c.JSON(http.StatusOK, gin.H{"message": "subscription canceled, plan remains active until the end of the billing cycle"})
}

func (h *Handler) sendCancellationNotice(ctx context.Context, userID int, entitledUntil time.Time) {
	if h.mailer == nil {
		return
	}
	u, err := h.users.FindByID(ctx, userID)
	if err != nil {
		logger.Errorf("Failed to load user %d for cancellation notice: %v", userID, err)
		return
	}
	if err := h.mailer.SendCancellationNotice(ctx, u.Email, u.FullName, entitledUntil); err != nil {
		logger.Errorf("Failed to queue cancellation notice for user %d: %v", userID, err)
	}
}

// SweepNow godoc
// @Summary      Run the expiry sweep (admin)
// @Tags         subscription
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  gin.H
// @Router       /admin/subscriptions/sweep [post]
func (h *Handler) SweepNow(c *gin.Context) {
	n, err := h.service.Sweep(c.Request.Context(), timeNow())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sweep failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"expired": n})
}
