package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stayloop/hotel-booking-backend/internal/cache"
	"github.com/stayloop/hotel-booking-backend/internal/config"
	"github.com/stayloop/hotel-booking-backend/internal/database"
	"github.com/stayloop/hotel-booking-backend/internal/handlers"
	"github.com/stayloop/hotel-booking-backend/internal/middleware"
	"github.com/stayloop/hotel-booking-backend/internal/queue"
	"github.com/stayloop/hotel-booking-backend/internal/services"
	"github.com/stayloop/hotel-booking-backend/pkg/jwt"
	"github.com/stayloop/hotel-booking-backend/pkg/mailer"
	"github.com/stayloop/hotel-booking-backend/pkg/refcode"
	"github.com/stayloop/hotel-booking-backend/pkg/validator"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting Stayloop Booking Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	searchCache, err := cache.New(cfg.Redis)
	if err != nil {
		logger.Fatalf("Failed to connect to redis: %v", err)
	}
	if searchCache != nil {
		defer searchCache.Close()
		logger.Info("Search cache enabled")
	} else {
		logger.Info("Search cache disabled (no REDIS_ADDR)")
	}

	// Services and repositories
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	inputValidator := validator.NewInputValidator(cfg.Security.MinPasswordLength)
	rateLimitService := services.NewRateLimitService(db, services.RateLimitConfig{
		MaxEmailAttempts: cfg.Security.LoginRateLimit,
		EmailWindow:      cfg.Security.LoginRateWindow,
	})

	userRepository := database.NewUserRepository(db)
	sessionRepository := database.NewSessionRepository(db)
	reviewRepository := database.NewReviewRepository(db)
	reportRepository := database.NewReportRepository(db)
	hotelRepository := database.NewHotelRepository(db.DB)
	roomRepository := database.NewRoomRepository(db.DB)
	bookingRepository := database.NewBookingRepository(db.DB)
	searchRepository := database.NewSearchRepository(db.DB)

	codeGenerator := refcode.NewGenerator(bookingRepository.ConfirmationCodeExists)
	searchService := services.NewSearchService(searchRepository, searchCache, logger)
	reportService := services.NewReportService(reportRepository)

	publisher := queue.NewPublisher(cfg.Queue.URL, logger)

	// Handlers
	authHandler := handlers.NewAuthHandler(
		jwtService,
		inputValidator,
		rateLimitService,
		userRepository,
		sessionRepository,
		cfg,
		logger,
	)
	hotelHandler := handlers.NewHotelHandler(searchService, hotelRepository, reviewRepository, logger)
	bookingHandler := handlers.NewBookingHandler(bookingRepository, codeGenerator, publisher, logger)
	userHandler := handlers.NewUserHandler(bookingRepository, logger)
	adminHandler := handlers.NewAdminHandler(hotelRepository, roomRepository, bookingRepository, reportService, logger)

	// Background workers
	rootCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	if cfg.Queue.URL != "" {
		consumer := queue.NewConsumer(cfg.Queue.URL, mailer.New(mailer.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		}), logger)
		go consumer.Run(rootCtx)
		logger.Info("Booking confirmation consumer started")
	}

	go rateLimitCleanupLoop(rootCtx, rateLimitService, logger)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", healthCheckHandler(db))

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.POST("/logout", authHandler.Logout)
		}

		hotels := v1.Group("/hotels")
		{
			hotels.GET("", hotelHandler.ListHotels)
			hotels.GET("/search", hotelHandler.Search)
			hotels.GET("/:id", hotelHandler.GetHotel)
			hotels.GET("/:id/reviews", hotelHandler.ListReviews)

			hotelsProtected := hotels.Group("")
			hotelsProtected.Use(middleware.AuthMiddleware(jwtService))
			{
				hotelsProtected.POST("/:id/reviews", hotelHandler.CreateReview)
			}
		}

		bookings := v1.Group("/bookings")
		bookings.Use(middleware.AuthMiddleware(jwtService))
		{
			bookings.POST("", bookingHandler.CreateBooking)
			bookings.POST("/:id/payment", bookingHandler.Pay)
			bookings.POST("/:id/cancel", bookingHandler.Cancel)
		}

		users := v1.Group("/users/me")
		users.Use(middleware.AuthMiddleware(jwtService))
		{
			users.GET("", authHandler.GetProfile)
			users.PUT("", authHandler.UpdateProfile)
			users.GET("/bookings", userHandler.MyBookings)
			users.GET("/bookings/:id", userHandler.BookingByID)
			users.GET("/bookings/:id/voucher", userHandler.Voucher)
		}

		admin := v1.Group("/admin")
		admin.Use(middleware.AuthMiddleware(jwtService), middleware.RequireAdmin())
		{
			admin.POST("/hotels", adminHandler.CreateHotel)
			admin.PUT("/hotels/:id", adminHandler.UpdateHotel)
			admin.DELETE("/hotels/:id", adminHandler.DeleteHotel)
			admin.POST("/hotels/:id/rooms", adminHandler.CreateRoom)
			admin.PUT("/rooms/:id", adminHandler.UpdateRoom)
			admin.DELETE("/rooms/:id", adminHandler.DeleteRoom)
			admin.GET("/bookings", adminHandler.ListBookings)
			admin.POST("/bookings/:id/cancel", adminHandler.CancelBooking)
			admin.GET("/reports/bookings", adminHandler.Report)
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stopWorkers()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// rateLimitCleanupLoop prunes stale login attempt records hourly
func rateLimitCleanupLoop(ctx context.Context, svc *services.RateLimitService, logger *logrus.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := svc.CleanupExpiredRateLimits()
			if err != nil {
				logger.WithError(err).Warn("Rate limit cleanup failed")
				continue
			}
			if removed > 0 {
				logger.WithField("removed", removed).Debug("Rate limit records pruned")
			}
		}
	}
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}

		if userCtx, exists := middleware.GetUserContext(c); exists {
			fields["user_id"] = userCtx.UserID
		}

		entry := logger.WithFields(fields)

		status := c.Writer.Status()
		switch {
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
