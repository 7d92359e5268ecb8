package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fonto/internal/config"
	"fonto/internal/font"
	"fonto/internal/handler"
	"fonto/internal/integrations"
	"fonto/internal/janitor"
	"fonto/internal/logger"
	"fonto/internal/storage"
	"fonto/internal/store"
	"fonto/internal/version"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		fmt.Printf("Failed to create data directory: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize logger
	log, err := logger.Init(cfg.DataDir, cfg.Server.Debug)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	log.Info("Starting fonto",
		zap.String("version", version.Version),
		zap.String("data_dir", cfg.DataDir),
		zap.String("storage", cfg.Storage.Backend),
	)

	auth, err := authSettings(cfg, log)
	if err != nil {
		log.Fatal("Invalid admin credentials", zap.Error(err))
	}

	// 3. Open the record store
	dsn := cfg.DatabaseDSN()
	log.Info("Using database", zap.String("dsn", dsn))

	st, err := store.Open(dsn)
	if err != nil {
		log.Fatal("Failed to open database connection", zap.Error(err))
	}
	defer st.Close()

	if err := st.Migrate(context.Background()); err != nil {
		log.Warn("Schema migration failed, trying to continue", zap.Error(err))
	}

	// 4. File storage
	files, err := newBackend(context.Background(), cfg)
	if err != nil {
		log.Fatal("Failed to initialize file storage", zap.Error(err))
	}

	// 5. Font service and its adapters
	hooks := &font.Hooks{}
	disable := func(bool) bool { return false }
	if !cfg.Embed.Front {
		hooks.FrontEmbed.Add(disable)
	}
	if !cfg.Embed.Admin {
		hooks.AdminEmbed.Add(disable)
	}
	if !cfg.Embed.Editor {
		hooks.EditorCSS.Add(disable)
	}
	fonts := font.NewService(st, hooks, log.Named("fonts"))
	integrations.Register(fonts, log.Named("integrations"))

	// 6. Orphaned upload sweep
	j := janitor.New(st, files, log.Named("janitor"))
	if err := j.Start(cfg.Janitor.Schedule); err != nil {
		log.Fatal("Failed to schedule janitor", zap.Error(err))
	}
	defer j.Stop()

	// 7. Initialize Echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetOutput(logger.Writer(log.Named("echo")))

	e.Use(middleware.RequestID())
	e.Use(zapLoggerMiddleware(log.Named("http")))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.Secure())
	e.Use(middleware.Gzip())

	h := handler.NewHandler(st, fonts, files, auth, log.Named("handler"))
	h.Routes(e)

	// Serve uploaded files when they live on local disk
	if local, ok := files.(*storage.FileSystem); ok {
		e.StaticFS("/uploads", afero.NewIOFS(afero.NewBasePathFs(local.GetFs(), local.UploadsDir())))
	}

	// 8. Start server
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("Server starting", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
}

func authSettings(cfg config.Config, log *zap.Logger) (handler.AuthSettings, error) {
	hash := cfg.Auth.AdminPasswordHash
	if hash == "" && cfg.Auth.AdminPassword != "" {
		var err error
		if hash, err = handler.HashPassword(cfg.Auth.AdminPassword); err != nil {
			return handler.AuthSettings{}, err
		}
	}
	if hash == "" {
		log.Warn("No admin password configured, admin API is disabled")
	}

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		secret = uuid.NewString()
		log.Warn("No JWT secret configured, sessions will not survive a restart")
	}

	return handler.AuthSettings{
		AdminUser:         cfg.Auth.AdminUser,
		AdminPasswordHash: hash,
		JWTSecret:         secret,
		TokenTTL:          time.Duration(cfg.Auth.TokenHours) * time.Hour,
		NonceTTL:          time.Duration(cfg.Auth.NonceMinutes) * time.Minute,
	}, nil
}

func newBackend(ctx context.Context, cfg config.Config) (storage.Backend, error) {
	switch cfg.Storage.Backend {
	case config.BackendS3:
		s3cfg := cfg.Storage.S3
		return storage.NewS3(ctx, storage.S3Options{
			Endpoint:  s3cfg.Endpoint,
			Region:    s3cfg.Region,
			Bucket:    s3cfg.Bucket,
			AccessKey: s3cfg.AccessKey,
			SecretKey: s3cfg.SecretKey,
			PublicURL: cfg.Storage.PublicURL,
		})
	case config.BackendWebDAV:
		dav := cfg.Storage.WebDAV
		return storage.NewWebDAV(storage.WebDAVOptions{
			URL:       dav.URL,
			User:      dav.User,
			Password:  dav.Password,
			PublicURL: cfg.Storage.PublicURL,
		})
	default:
		return storage.NewFileSystem(cfg.DataDir, cfg.Storage.PublicURL), nil
	}
}

// zapLoggerMiddleware returns a middleware that logs HTTP requests using zap
func zapLoggerMiddleware(log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			res := c.Response()

			err := next(c)

			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("uri", req.RequestURI),
				zap.Int("status", res.Status),
				zap.Int64("bytes_out", res.Size),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote_ip", c.RealIP()),
				zap.String("user_agent", req.UserAgent()),
			}

			if reqID := res.Header().Get(echo.HeaderXRequestID); reqID != "" {
				fields = append(fields, zap.String("request_id", reqID))
			}

			// Log errors at error level, success at debug level
			switch {
			case err != nil:
				fields = append(fields, zap.Error(err))
				log.Error("Request failed", fields...)
			case res.Status >= 500:
				log.Error("Server error", fields...)
			case res.Status >= 400:
				log.Warn("Client error", fields...)
			default:
				log.Debug("Request completed", fields...)
			}

			return err
		}
	}
}
