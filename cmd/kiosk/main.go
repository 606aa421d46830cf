package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"gymkiosk/internal/auth"
	"gymkiosk/internal/config"
	"gymkiosk/internal/httpmiddleware"
	"gymkiosk/internal/kiosk"
	"gymkiosk/internal/session"
	"gymkiosk/internal/store"
	"gymkiosk/internal/web"
)

func main() {
	cfg := config.Load()

	var log *zap.Logger
	var err error
	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
		log, err = zap.NewProduction()
	} else {
		log, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("kiosk failed", zap.Error(err))
	}
}

// healthChecker is implemented by backends that can report reachability.
type healthChecker interface {
	Healthy(ctx context.Context) bool
}

func run(cfg config.App, log *zap.Logger) error {
	ctx := context.Background()

	clock, err := kiosk.NewZoneClock(cfg.Timezone)
	if err != nil {
		return err
	}

	recordStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}

	var sessions session.Store
	if cfg.SessionBackend == "redis" {
		sessions = session.NewRedisStore(cfg.RedisAddr, cfg.SessionTTL)
		log.Info("session backend: redis", zap.String("addr", cfg.RedisAddr))
	} else {
		sessions = session.NewMemoryStore(cfg.SessionTTL)
		log.Info("session backend: memory")
	}

	svc := kiosk.NewService(recordStore, clock)
	h := web.New(svc, sessions, log)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	r.SetHTMLTemplate(web.Templates())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		storeHealthy := true
		if hc, ok := recordStore.(healthChecker); ok {
			storeHealthy = hc.Healthy(c.Request.Context())
		}
		sessionsHealthy := true
		if hc, ok := sessions.(healthChecker); ok {
			sessionsHealthy = hc.Healthy(c.Request.Context())
		}
		status := http.StatusOK
		if !storeHealthy || !sessionsHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "store": storeHealthy, "sessions": sessionsHealthy})
	})

	// Kiosk screens
	r.GET("/", h.Home)
	r.POST("/checkin", h.CheckIn)
	r.POST("/rectify", h.Rectify)
	r.POST("/register", h.SubmitForm)
	r.POST("/cancel", h.Cancel)

	// Terminal JSON API
	r.POST("/v1/devices/register", h.RegisterDevice(cfg.JWTIssuer, cfg.JWTSigningKey, cfg.AccessTTL, cfg.RefreshTTL))
	v1 := r.Group("/v1", auth.DeviceAuth(cfg.JWTSigningKey, cfg.JWTIssuer))
	v1.POST("/checkins", h.APICheckIn)
	v1.GET("/users/:id", h.APIGetUser)
	v1.POST("/users", h.APIRegisterUser)
	v1.PUT("/users/:id", h.APIUpdateUser)
	v1.GET("/visits", h.APIListVisits)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("starting server", zap.String("port", cfg.HTTPPort), zap.String("store", cfg.StoreBackend))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("server forced shutdown", zap.Error(err))
	}

	log.Info("server exited")
	return nil
}

// openStore builds the configured record store backend. Sheets is the
// default; missing credentials or unreachable tables abort startup.
func openStore(ctx context.Context, cfg config.App, log *zap.Logger) (store.RecordStore, error) {
	switch cfg.StoreBackend {
	case "postgres":
		pg, err := store.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		log.Info("record store: postgres")
		return pg, nil
	case "memory":
		log.Warn("record store: memory (data is lost on restart)")
		return store.NewMemory(), nil
	default:
		creds, err := cfg.Credentials()
		if err != nil {
			return nil, err
		}
		sh, err := store.NewSheets(ctx, creds, cfg.SpreadsheetID)
		if err != nil {
			return nil, err
		}
		if err := sh.Verify(ctx); err != nil {
			return nil, err
		}
		log.Info("record store: sheets", zap.String("spreadsheet", cfg.SpreadsheetID))
		return sh, nil
	}
}

// CORS middleware for browser requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
