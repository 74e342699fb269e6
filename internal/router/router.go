package router

import (
	"time"

	"messpos/internal/cart"
	"messpos/internal/config"
	"messpos/internal/handler"
	"messpos/internal/infra"
	"messpos/internal/middleware"
	"messpos/internal/repository"
	"messpos/internal/service"
	"messpos/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
// counterCB guards the bill counter; it is shared with the retry cron.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, counterCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	loc, err := cfg.Location()
	if err != nil {
		log.Warn().Err(err).Str("timezone", cfg.Timezone).Msg("unknown timezone, using local time")
		loc = time.Local
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	menuRepo := repository.NewMenuRepository(db)
	counterRepo := repository.NewBillCounterRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	receiptRepo := repository.NewReceiptRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	// Worker dispatcher, injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	authSvc := service.NewAuthService(userRepo, cfg)
	menuSvc := service.NewMenuService(menuRepo, rdb)
	sequencer := service.NewBillSequencer(counterRepo, counterCB, loc)
	cartSvc := service.NewCartService(cart.NewRedisStore(rdb), menuRepo, orderRepo, receiptRepo, sequencer, dispatcher)
	orderSvc := service.NewOrderService(orderRepo, receiptRepo, loc)
	reportSvc := service.NewReportService(orderRepo, loc)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	menuH := handler.NewMenuHandler(menuSvc)
	cartH := handler.NewCartHandler(cartSvc)
	ordersH := handler.NewOrdersHandler(orderSvc)
	reportsH := handler.NewReportsHandler(reportSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, counterCB))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	staff := middleware.RequireRole("cashier", "admin")
	admin := middleware.RequireRole("admin")
	v1 := r.Group("/v1", jwtMW)
	{
		v1.GET("/menu", staff, menuH.List)
		v1.GET("/menu/:id", staff, menuH.Get)
		menu := v1.Group("/menu", admin)
		{
			menu.POST("/import", menuH.Import)
			menu.PATCH("/:id/active", menuH.SetActive)
		}

		c := v1.Group("/cart", staff, middleware.TerminalID())
		{
			c.GET("", cartH.Get)
			c.DELETE("", cartH.Clear)
			c.POST("/items", cartH.AddItem)
			c.PATCH("/items/:lineId", cartH.ChangeQuantity)
			c.DELETE("/items/:lineId", cartH.RemoveLine)
			c.PUT("/details", cartH.SetDetails)
			c.POST("/checkout", cartH.Checkout)
			c.POST("/complete", cartH.Complete)
		}

		// Cashiers look up a bill to reprint its receipt; listing is admin only.
		v1.GET("/orders/:billNo", staff, ordersH.Get)
		v1.GET("/orders/:billNo/receipt", staff, ordersH.DownloadReceipt)
		v1.GET("/orders", admin, ordersH.List)

		reports := v1.Group("/reports", admin)
		{
			reports.GET("", reportsH.Report)
			reports.GET("/summary", reportsH.Summary)
			reports.GET("/export.csv", reportsH.ExportCSV)
		}

		users := v1.Group("/users", admin)
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.PUT("/:id", usersH.Update)
			users.DELETE("/:id", usersH.Deactivate)
			users.PATCH("/:id/reactivate", usersH.Reactivate)
		}
	}

	// Swagger UI, only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
