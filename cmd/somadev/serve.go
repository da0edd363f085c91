package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"somadev/internal/app"
	"somadev/internal/config"
	"somadev/internal/scheduler"
	"somadev/internal/server"
)

func serveCmd() *cobra.Command {
	var addr, basePath string
	var watch bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("base-path") {
				cfg.Server.BasePath = basePath
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, watch)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address (overrides server.addr)")
	cmd.Flags().StringVar(&basePath, "base-path", "/v0", "API base path (overrides server.base_path)")
	cmd.Flags().BoolVar(&watch, "watch", true, "reload the log level when somadev.yml changes")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, watch bool) error {
	sched := scheduler.New(scheduler.WithLogger(logger.Named("scheduler")))
	a := app.New(app.Options{Config: cfg, Logger: logger, Scheduler: sched})
	defer a.Close()

	handler, err := server.New(server.Config{
		App:          a,
		BasePath:     cfg.Server.BasePath,
		Auth:         server.AuthConfig{JWTSecret: jwtSecret(cfg)},
		AllowOrigins: cfg.Server.AllowOrigins,
		ChatLimiter:  chatLimiter(cfg),
		Logger:       logger.Named("http"),
	})
	if err != nil {
		return err
	}
	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return err
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if watch {
		w := config.NewWatcher(viper.GetString("workspace"), logger.Named("config"), func(next *config.Config) {
			if err := applyLogLevel(next.Log.Level); err != nil {
				logger.Warn("log level not applied", zap.Error(err))
				return
			}
			logger.Info("log level set", zap.String("level", logLevel.String()))
		})
		g.Go(func() error {
			if err := w.Run(ctx); err != nil {
				logger.Warn("config watch disabled", zap.Error(err))
			}
			return nil
		})
	}

	base := cfg.Server.BasePath
	fmt.Printf("Serving SomaDev API on http://%s%s (OpenAPI at %s/openapi.json, Swagger UI at /docs, events at %s/events)\n",
		ln.Addr(), base, base, base)
	logger.Info("server started", zap.String("addr", ln.Addr().String()), zap.Bool("auth", jwtSecret(cfg) != ""))
	return g.Wait()
}

// jwtSecret prefers SOMADEV_JWT_SECRET over server.jwt_secret.
func jwtSecret(cfg *config.Config) string {
	if s := viper.GetString("jwt-secret"); s != "" {
		return s
	}
	return cfg.Server.JWTSecret
}

func chatLimiter(cfg *config.Config) *rate.Limiter {
	if cfg.Server.ChatRate <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(cfg.Server.ChatRate), cfg.Server.ChatBurst)
}
