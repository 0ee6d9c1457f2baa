package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/vasanthanrk/careerboost/internal/auth"
	"github.com/vasanthanrk/careerboost/internal/config"
	"github.com/vasanthanrk/careerboost/internal/email"
	"github.com/vasanthanrk/careerboost/internal/gateway"
	"github.com/vasanthanrk/careerboost/internal/payment"
	"github.com/vasanthanrk/careerboost/internal/plan"
	"github.com/vasanthanrk/careerboost/internal/subscription"
	"github.com/vasanthanrk/careerboost/internal/usage"
	"github.com/vasanthanrk/careerboost/internal/user"
)

type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *sqlx.DB
	config *config.Config

	// Subscriptions exposes the lifecycle service so cmd/app can wire the
	// cron sweep to the same code path as the admin endpoint.
	Subscriptions subscription.Service
}

func New(db *sqlx.DB, cfg *config.Config, emailService *email.Service, gw gateway.Gateway) *Server {
	registerValidators()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())

	userRepo := user.NewRepository(db)
	planRepo := plan.NewRepository(db)
	subRepo := subscription.NewRepository(db)
	paymentRepo := payment.NewRepository(db)
	usageRepo := usage.NewRepository(db)

	userService := user.NewService(userRepo, cfg.JWTSecret)
	subService := subscription.NewService(subRepo, planRepo)
	usageService := usage.NewService(usageRepo, subService)

	userHandler := user.NewHandler(userService)
	planHandler := plan.NewHandler(planRepo)
	subHandler := subscription.NewHandler(subService, planRepo, gw, userRepo, emailService)
	paymentHandler := payment.NewHandler(gw, paymentRepo, subRepo, planRepo, userRepo, emailService)
	usageHandler := usage.NewHandler(usageService)

	public := router.Group("/auth")
	public.Use(RateLimitMiddleware(5, 10))
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
		public.POST("/refresh", userHandler.Refresh)
	}

	// Provider-initiated callback; authenticated by signature, not by JWT.
	router.POST("/payments/webhook", RateLimitMiddleware(20, 40), paymentHandler.Webhook)

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)
		protected.GET("/plans", planHandler.ListPlans)

		protected.POST("/subscription/start", subHandler.Start)
		protected.GET("/subscription/status", subHandler.Status)
		protected.POST("/subscription/cancel", subHandler.Cancel)
		protected.POST("/payments/verify", paymentHandler.Verify)

		protected.GET("/check-feature/:feature_name", usageHandler.CheckFeature)
		protected.POST("/update-feature/:feature_name", usageHandler.UpdateFeature)
		protected.POST("/consume-feature/:feature_name", usageHandler.ConsumeFeature)
	}

	adminMiddleware := auth.RequireRole("admin")
	admin := router.Group("/admin")
	admin.Use(authMiddleware, adminMiddleware)
	{
		admin.POST("/plans", planHandler.CreatePlan)
		admin.POST("/plans/:code/deactivate", planHandler.DeactivatePlan)
		admin.POST("/subscriptions/sweep", subHandler.SweepNow)
	}

	registerSystemRoutes(router, db)
	SetupSwagger(router)

	return &Server{
		router:        router,
		db:            db,
		config:        cfg,
		Subscriptions: subService,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
