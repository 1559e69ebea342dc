package server

import (
	"context"
	"net/http"
	"time"

	"eduledger/internal/attendance"
	"eduledger/internal/auth"
	"eduledger/internal/catalog"
	"eduledger/internal/code"
	"eduledger/internal/config"
	"eduledger/internal/entitlement"
	"eduledger/internal/notify"
	"eduledger/internal/pricing"
	"eduledger/internal/purchase"
	"eduledger/internal/revenue"
	"eduledger/internal/user"
	"eduledger/internal/wallet"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *sqlx.DB
	config *config.Config
}

type handlers struct {
	user        *user.Handler
	wallet      *wallet.Handler
	code        *code.Handler
	pricing     *pricing.Handler
	attendance  *attendance.Handler
	purchase    *purchase.Handler
	entitlement *entitlement.Handler
	catalog     *catalog.Handler
	revenue     *revenue.Handler
}

func New(db *sqlx.DB, cfg *config.Config, publisher notify.Publisher) *Server {
	walletRepo := wallet.NewRepository()
	userRepo := user.NewRepository(db)
	catalogRepo := catalog.NewRepository()
	pricingRepo := pricing.NewRepository()

	codeSvc := code.NewService(db, code.NewRepository(), userRepo, walletRepo, code.NewTokenizer(cfg.CodeSecret))

	h := handlers{
		user:        user.NewHandler(user.NewService(db, userRepo, walletRepo, cfg.JWTSecret)),
		wallet:      wallet.NewHandler(wallet.NewService(db, walletRepo)),
		code:        code.NewHandler(codeSvc),
		pricing:     pricing.NewHandler(pricing.NewService(db, pricingRepo)),
		attendance:  attendance.NewHandler(attendance.NewService(db, attendance.NewRepository(), catalogRepo, pricingRepo)),
		purchase:    purchase.NewHandler(purchase.NewService(db, purchase.NewRepository(), codeSvc, walletRepo, catalogRepo, userRepo, publisher)),
		entitlement: entitlement.NewHandler(entitlement.NewService(db, entitlement.NewRepository(), catalogRepo)),
		catalog:     catalog.NewHandler(catalog.NewService(db, catalogRepo)),
		revenue:     revenue.NewHandler(revenue.NewService(db, revenue.NewRepository())),
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(corsMiddleware())
	router.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))

	registerRoutes(router, h, cfg.JWTSecret)

	return &Server{
		router: router,
		db:     db,
		config: cfg,
	}
}

func registerRoutes(router *gin.Engine, h handlers, jwtSecret string) {
	router.GET("/health", Health)
	router.GET("/metrics", Metrics())

	public := router.Group("/auth")
	{
		public.POST("/register", h.user.Register)
		public.POST("/login", h.user.Login)
		public.POST("/refresh", h.user.RefreshToken)
	}

	authMiddleware := auth.AuthMiddleware(jwtSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", h.user.GetMe)
		protected.GET("/wallet", h.wallet.GetWallet)
		protected.GET("/wallet/lecturers/:lecturerID", h.wallet.GetLecturerBalance)

		protected.POST("/codes/redeem", h.purchase.RedeemCode)
		protected.POST("/purchases/lectures/:lectureID", h.purchase.BuyLecture)
		protected.POST("/purchases/containers/:containerID", h.purchase.BuyContainer)
		protected.POST("/purchases/packages/:packageID", h.purchase.BuyPackage)
		protected.GET("/purchases", h.purchase.List)

		protected.GET("/containers/:containerID", h.catalog.GetContainer)
		protected.GET("/containers/:containerID/children", h.catalog.ListChildren)
		protected.GET("/containers/:containerID/ancestors", h.catalog.Ancestors)
		protected.GET("/containers/:containerID/access", h.entitlement.ContainerAccess)
		protected.GET("/lectures/:lectureID/access", h.entitlement.LectureAccess)

		protected.GET("/attendance", h.attendance.MyHistory)
	}

	admin := router.Group("/admin")
	admin.Use(authMiddleware, auth.RequireRole("admin"))
	{
		admin.POST("/codes", h.code.Issue)
		admin.GET("/codes", h.code.List)
		admin.DELETE("/codes/:token", h.code.Revoke)

		admin.GET("/pricing", h.pricing.List)
		admin.POST("/pricing", h.pricing.Create)
		admin.GET("/pricing/resolve", h.pricing.Resolve)
		admin.PUT("/pricing/:ruleID", h.pricing.Update)
		admin.DELETE("/pricing/:ruleID", h.pricing.Delete)

		admin.POST("/attendance", h.attendance.Settle)
		admin.GET("/attendance/bank", h.attendance.Bank)

		admin.GET("/revenue", h.revenue.Summarize)

		admin.POST("/containers/:containerID/children", h.catalog.AttachChild)
		admin.DELETE("/containers/:containerID/parent", h.catalog.Detach)
	}
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:              ":" + port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
