package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"padyai-portal/internal/adapters/http/handlers"
	"padyai-portal/internal/adapters/http/middleware"
	"padyai-portal/internal/adapters/persistence/repositories"
	"padyai-portal/internal/config"
	"padyai-portal/internal/core/domain"
	"padyai-portal/internal/core/services"
	"padyai-portal/internal/pkg/gateway"
	"padyai-portal/internal/pkg/tokenstore"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, rdb *redis.Client, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	kycRepo := repositories.NewKYCRepository(db)
	courseRepo := repositories.NewCourseRepository(db)
	enrollRepo := repositories.NewEnrollmentRepository(db)
	attRepo := repositories.NewAttendanceRepository(db)
	schemeRepo := repositories.NewSchemeRepository(db)
	feeRepo := repositories.NewFeeRepository(db)
	appRepo := repositories.NewApplicationRepository(db)
	payRepo := repositories.NewPaymentRepository(db)

	// Shared infrastructure
	tokens := tokenstore.New(rdb)
	gw := gateway.New(cfg.Gateway.BaseURL, cfg.Gateway.KeyID, cfg.Gateway.KeySecret)

	// Initialize services
	kycService := services.NewKYCService(kycRepo, rdb, cfg.KYC.CacheTTL)
	sessionService := services.NewSessionService(userRepo, kycService, tokens, cfg)
	courseService := services.NewCourseService(courseRepo, enrollRepo)
	attService := services.NewAttendanceService(enrollRepo, attRepo)
	financeService := services.NewFinanceService(appRepo, schemeRepo, feeRepo)
	userService := services.NewUserService(userRepo)
	paymentService := services.NewPaymentService(payRepo, feeRepo, appRepo, gw)
	dashboardService := services.NewDashboardService(db)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(rdb)
	authHandler := handlers.NewAuthHandler(sessionService, cfg)
	kycHandler := handlers.NewKYCHandler(kycService)
	courseHandler := handlers.NewCourseHandler(courseService)
	attHandler := handlers.NewAttendanceHandler(attService)
	financeHandler := handlers.NewFinanceHandler(financeService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	userHandler := handlers.NewUserHandler(userService, sessionService)

	// ============================================================
	// Public routes
	// ============================================================
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.Check)

	router := app.Group("/api/v1")

	// Auth routes (rate limited, never cached)
	authRoutes := router.Group("/auth")
	authRoutes.Use(middleware.NoCacheHeaders())
	authRoutes.Post("/:role/signup", middleware.AuthRateLimiter(), authHandler.Signup)
	authRoutes.Post("/:role/login", middleware.AuthRateLimiter(), authHandler.Login)
	authRoutes.Post("/refresh", authHandler.Refresh)
	authRoutes.Post("/logout", authHandler.Logout)
	authRoutes.Post("/logout-all", middleware.AuthMiddleware(cfg), authHandler.LogoutAll)
	authRoutes.Get("/session", middleware.AuthMiddleware(cfg), authHandler.Session)
	authRoutes.Get("/me", middleware.AuthMiddleware(cfg), authHandler.Me)

	// Public catalogues (cached)
	router.Get("/courses", middleware.CacheControl(10*time.Minute), courseHandler.List)
	router.Get("/courses/:id", middleware.CacheControl(10*time.Minute), courseHandler.Get)
	router.Get("/schemes", middleware.CacheControl(1*time.Hour), financeHandler.Schemes)
	router.Post("/schemes/estimate", financeHandler.Estimate)

	// ============================================================
	// Authenticated routes
	// ============================================================
	authed := router.Group("", middleware.AuthMiddleware(cfg))

	// Session-wide
	authed.Get("/dashboard", dashboardHandler.Me)
	authed.Get("/payments", paymentHandler.History)
	authed.Post("/payments/verify", paymentHandler.Verify)

	// Profile
	profileRoutes := authed.Group("/profile", middleware.NoCacheHeaders())
	profileRoutes.Get("", userHandler.GetProfile)
	profileRoutes.Put("", userHandler.UpdateProfile)
	profileRoutes.Put("/password", userHandler.ChangePassword)

	// KYC (any authenticated role may submit and check status)
	kycRoutes := authed.Group("/kyc")
	kycRoutes.Use(middleware.NoCacheHeaders())
	kycRoutes.Get("", kycHandler.Detail)
	kycRoutes.Get("/status", kycHandler.Status)
	kycRoutes.Post("/submit", kycHandler.Submit)

	// ============================================================
	// Admin routes
	// ============================================================
	// Registered before the member areas: the /:kind application
	// routes below would otherwise capture /admin/* paths
	adminRoutes := authed.Group("/admin", middleware.AdminOnly())
	adminRoutes.Get("/users", userHandler.ListUsers)
	adminRoutes.Put("/users/:id/active", userHandler.SetActive)
	adminRoutes.Delete("/users/:id", userHandler.DeleteUser)
	adminRoutes.Get("/kyc/pending", kycHandler.ListPending)
	adminRoutes.Post("/kyc/:id/review", kycHandler.Review)
	adminRoutes.Get("/fees/pending", financeHandler.ListFeesForReview)
	adminRoutes.Post("/fees/:id/review", financeHandler.ReviewFee)
	adminRoutes.Get("/:kind/pending", financeHandler.ListForReview)
	adminRoutes.Post("/applications/:id/review", financeHandler.Review)
	adminRoutes.Post("/attendance", attHandler.Mark)

	// ============================================================
	// Member areas
	// ============================================================
	// Student area; reads are open to any active student, financial
	// actions additionally require approved KYC
	studentRoutes := authed.Group("", middleware.RequireRole(domain.RoleStudent))
	studentRoutes.Post("/courses/:id/enroll", courseHandler.Enroll)
	studentRoutes.Get("/enrollments", courseHandler.MyEnrollments)
	studentRoutes.Get("/enrollments/:id", courseHandler.GetEnrollment)
	studentRoutes.Get("/enrollments/:id/attendance", attHandler.List)
	studentRoutes.Get("/enrollments/:id/attendance/summary", attHandler.Summary)
	studentRoutes.Get("/fees", financeHandler.MyFees)
	studentRoutes.Get("/fees/:id", financeHandler.GetFee)

	verifiedStudent := authed.Group("", middleware.RequireVerified(kycService, domain.RoleStudent))
	verifiedStudent.Post("/fees", financeHandler.CreateFee)
	verifiedStudent.Post("/payments/fees/:id/order", paymentHandler.CreateFeeOrder)

	// Society area; same split, and /emis/pending stays ahead of the
	// /:kind parameter routes
	societyRoutes := authed.Group("", middleware.RequireRole(domain.RoleSociety))
	societyRoutes.Get("/emis/pending", financeHandler.PendingEMIs)
	societyRoutes.Get("/:kind", financeHandler.MyApplications)
	societyRoutes.Get("/:kind/:id", financeHandler.GetApplication)

	verifiedSociety := authed.Group("", middleware.RequireVerified(kycService, domain.RoleSociety))
	verifiedSociety.Post("/payments/emis/:id/order", paymentHandler.CreateEMIOrder)
	verifiedSociety.Post("/:kind", financeHandler.Apply)
}
