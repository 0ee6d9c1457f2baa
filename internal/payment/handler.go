package payment

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vasanthanrk/careerboost/internal/auth"
	"github.com/vasanthanrk/careerboost/internal/gateway"
	"github.com/vasanthanrk/careerboost/internal/logger"
	"github.com/vasanthanrk/careerboost/internal/metrics"
	"github.com/vasanthanrk/careerboost/internal/plan"
	"github.com/vasanthanrk/careerboost/internal/subscription"
	"github.com/vasanthanrk/careerboost/internal/user"
)

// Notifier sends the payment receipt after a successful transition. A nil
// Notifier disables notifications.
type Notifier interface {
	SendPaymentReceipt(ctx context.Context, email, name, planName string, amountCents int64, currency string) error
}

type Handler struct {
	gateway gateway.Gateway
	repo    Repository
	subs    subscription.Repository
	plans   plan.Repository
	users   user.Repository
	mailer  Notifier
}

func NewHandler(gw gateway.Gateway, repo Repository, subs subscription.Repository, plans plan.Repository, users user.Repository, mailer Notifier) *Handler {
	return &Handler{
		gateway: gw,
		repo:    repo,
		subs:    subs,
		plans:   plans,
		users:   users,
		mailer:  mailer,
	}
}

// Verify godoc
// @Summary      Verify a client-submitted payment proof
// @Description  Checks the provider signature over (order_id, payment_id).
// @Description  A valid proof activates a subscription; a tampered one is
// @Description  recorded in the ledger as failed and rejected.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      VerifyRequest  true  "Payment proof"
// @Success      200      {object}  api.MessageResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Router       /payments/verify [post]
func (h *Handler) Verify(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "user mismatch"})
		return
	}

	ctx := c.Request.Context()

	p, err := h.plans.FindByCode(ctx, req.PlanCode)
	if err != nil {
		if errors.Is(err, plan.ErrPlanNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "plan not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load plan"})
		return
	}

	if !h.gateway.VerifyClientProof(req.OrderID, req.PaymentID, req.Signature) {
		// The failure is still a ledger fact; the subscription is untouched.
		if _, err := h.repo.Record(ctx, userID, nil, req.PaymentID, p.AmountCents, p.Currency, StatusFailed); err != nil && !errors.Is(err, ErrDuplicatePayment) {
			logger.Errorf("Failed to record failed payment %s: %v", req.PaymentID, err)
		}
		metrics.RecordPayment(h.gateway.Name(), StatusFailed)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		return
	}

	sub, err := h.repo.ActivateSubscription(ctx, ActivateParams{
		UserID:           userID,
		PlanID:           p.ID,
		PlanCode:         p.Code,
		IntervalMonths:   p.IntervalMonths,
		GatewayOrderID:   req.OrderID,
		GatewayPaymentID: req.PaymentID,
		AmountCents:      p.AmountCents,
		Currency:         p.Currency,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicatePayment) {
			c.JSON(http.StatusConflict, gin.H{"error": "payment already processed"})
			return
		}
		logger.Errorf("Failed to activate subscription for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to activate subscription"})
		return
	}

	metrics.RecordPayment(h.gateway.Name(), StatusSuccess)
	metrics.RecordSubscription(p.Code)
	logger.Infof("Subscription %d activated for user %d on plan %s", sub.ID, userID, p.Code)
	h.sendReceipt(ctx, userID, p.Name, p.AmountCents, p.Currency)

	c.JSON(http.StatusOK, gin.H{"message": "payment verified"})
}

// Webhook godoc
// @Summary      Provider payment webhook
// @Description  Verifies the provider signature header over the raw body,
// @Description  then applies the payment: renewal for a known subscription,
// @Description  activation for a first payment. Replayed deliveries are
// @Description  detected by gateway payment id and ignored.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Success      200  {object}  api.StatusResponse
// @Failure      401  {object}  api.ErrorResponse
// @Router       /payments/webhook [post]
func (h *Handler) Webhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return
	}

	event, err := h.gateway.VerifyWebhook(body, c.GetHeader(h.gateway.WebhookHeader()))
	if err != nil {
		// Non-success status so the provider retries delivery.
		logger.Errorf("Webhook signature verification failed: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook signature"})
		return
	}

	if event.Type != gateway.EventPaymentSucceeded {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	ctx := c.Request.Context()

	sub, findErr := h.findSubscription(ctx, event)
	switch {
	case findErr == nil:
		h.renew(c, sub, event)
	case errors.Is(findErr, subscription.ErrNoActiveSubscription) && event.UserID > 0 && event.PlanCode != "":
		h.activate(c, event)
	case errors.Is(findErr, subscription.ErrNoActiveSubscription):
		logger.Errorf("Webhook payment %s matches no subscription and carries no metadata", event.PaymentID)
		c.JSON(http.StatusOK, gin.H{"status": "unmatched"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve subscription"})
	}
}

func (h *Handler) findSubscription(ctx context.Context, event *gateway.Event) (*subscription.Subscription, error) {
	if event.SubscriptionID != "" {
		return h.subs.FindByGatewaySubscriptionID(ctx, event.SubscriptionID)
	}
	if event.OrderID != "" {
		return h.subs.FindByGatewayOrderID(ctx, event.OrderID)
	}
	return nil, subscription.ErrNoActiveSubscription
}

func (h *Handler) renew(c *gin.Context, sub *subscription.Subscription, event *gateway.Event) {
	ctx := c.Request.Context()

	p, err := h.plans.FindByID(ctx, sub.PlanID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load plan"})
		return
	}

	renewed, err := h.repo.RenewSubscription(ctx, sub.ID, sub.UserID, p.IntervalMonths, event.PaymentID, event.AmountCents, event.Currency)
	if err != nil {
		if errors.Is(err, ErrDuplicatePayment) {
			metrics.RecordWebhookReplay()
			logger.Infof("Ignoring replayed webhook for payment %s", event.PaymentID)
			c.JSON(http.StatusOK, gin.H{"status": "duplicate"})
			return
		}
		logger.Errorf("Failed to renew subscription %d: %v", sub.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to renew subscription"})
		return
	}

	metrics.RecordPayment(h.gateway.Name(), StatusSuccess)
	metrics.RecordRenewal()
	logger.Infof("Subscription %d renewed until %s", renewed.ID, renewed.CurrentPeriodEnd.Format("2006-01-02"))
	h.sendReceipt(ctx, sub.UserID, p.Name, event.AmountCents, event.Currency)

	c.JSON(http.StatusOK, gin.H{"status": "renewed"})
}

func (h *Handler) activate(c *gin.Context, event *gateway.Event) {
	ctx := c.Request.Context()

	p, err := h.plans.FindByCode(ctx, event.PlanCode)
	if err != nil {
		logger.Errorf("Webhook payment %s references unknown plan %q", event.PaymentID, event.PlanCode)
		c.JSON(http.StatusOK, gin.H{"status": "unmatched"})
		return
	}

	sub, err := h.repo.ActivateSubscription(ctx, ActivateParams{
		UserID:                event.UserID,
		PlanID:                p.ID,
		PlanCode:              p.Code,
		IntervalMonths:        p.IntervalMonths,
		GatewayOrderID:        event.OrderID,
		GatewaySubscriptionID: event.SubscriptionID,
		GatewayPaymentID:      event.PaymentID,
		AmountCents:           event.AmountCents,
		Currency:              event.Currency,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicatePayment) {
			metrics.RecordWebhookReplay()
			c.JSON(http.StatusOK, gin.H{"status": "duplicate"})
			return
		}
		logger.Errorf("Failed to activate subscription from webhook for user %d: %v", event.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to activate subscription"})
		return
	}

	metrics.RecordPayment(h.gateway.Name(), StatusSuccess)
	metrics.RecordSubscription(p.Code)
	logger.Infof("Subscription %d activated from webhook for user %d", sub.ID, event.UserID)
	h.sendReceipt(ctx, event.UserID, p.Name, event.AmountCents, event.Currency)

	c.JSON(http.StatusOK, gin.H{"status": "activated"})
}

func (h *Handler) sendReceipt(ctx context.Context, userID int, planName string, amountCents int64, currency string) {
	if h.mailer == nil {
		return
	}
	u, err := h.users.FindByID(ctx, userID)
	if err != nil {
		logger.Errorf("Failed to load user %d for receipt: %v", userID, err)
		return
	}
	if err := h.mailer.SendPaymentReceipt(ctx, u.Email, u.FullName, planName, amountCents, currency); err != nil {
		logger.Errorf("Failed to queue receipt for user %d: %v", userID, err)
	}
}
