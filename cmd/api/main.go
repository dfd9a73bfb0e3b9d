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

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"coinflip-ladder-backend/internal/config"
	"coinflip-ladder-backend/internal/events"
	"coinflip-ladder-backend/internal/handlers"
	"coinflip-ladder-backend/internal/logger"
	"coinflip-ladder-backend/internal/metrics"
	"coinflip-ladder-backend/internal/services"
)

var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	root := &cobra.Command{
		Use:           "coinflip",
		Short:         "Provably fair coin flip server with a ladder phase",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
	root.AddCommand(serveCmd(), verifyCmd(), versionCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP game server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func verifyCmd() *cobra.Command {
	var (
		serverSeed string
		clientSeed string
		nonce      uint64
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Recompute a roll from a disclosed server seed",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "server_seed_hash: %s\n", services.SeedHash(serverSeed))
			fmt.Fprintf(out, "roll:             %.17f\n", services.Roll(serverSeed, clientSeed, nonce))
			return nil
		},
	}

	cmd.Flags().StringVar(&serverSeed, "server-seed", "", "disclosed server seed")
	cmd.Flags().StringVar(&clientSeed, "client-seed", "", "client seed sent with the bet")
	cmd.Flags().Uint64Var(&nonce, "nonce", 0, "nonce returned with the bet")
	_ = cmd.MarkFlagRequired("server-seed")
	_ = cmd.MarkFlagRequired("nonce")

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

func serve(ctx context.Context) error {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(&logger.Options{Level: logger.ParseLevel(cfg.LogLevel)})
	if envErr != nil {
		logger.Info("No .env file found, using environment variables")
	}
	if cfg.UsesDefaultSeed() {
		logger.Warn("SERVER_SEED is not set, using the public default seed")
	}

	limiter, cleanup, err := newRateLimiter(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	feed := handlers.NewWebSocketHandler()
	defer feed.Close()

	broadcasters := []services.Broadcaster{feed}
	if cfg.NATSURL != "" {
		nc, err := events.Connect(cfg.NATSURL)
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer func() {
			if err := nc.Drain(); err != nil {
				logger.Warn("NATS drain failed", "error", err)
			}
		}()
		broadcasters = append(broadcasters, events.NewPublisher(nc, cfg.NATSSubject))
		logger.Info("Publishing round events to NATS", "subject", cfg.NATSSubject)
	}

	store := services.NewLadderStore(cfg.SessionTTL)
	gameEngine := services.NewGameEngine(
		services.NewFairness(cfg.ServerSeed),
		services.CryptoCoin{},
		store,
		services.MultiBroadcaster(broadcasters...),
	)

	if err := metrics.RegisterActiveSessions(gameEngine.ActiveSessions); err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := handlers.NewRouter(handlers.RouterDeps{
		Version:     version,
		GameEngine:  gameEngine,
		RateLimiter: limiter,
		Feed:        feed,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting",
			"port", cfg.Port,
			"env", cfg.Env,
			"server_seed_hash", gameEngine.ServerSeedHash(),
			"rate_limit_backend", cfg.RateLimitBackend,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

// newRateLimiter builds the configured limiter. The returned cleanup stops
// background work and releases connections.
func newRateLimiter(ctx context.Context, cfg *config.Config) (services.RateLimiter, func(), error) {
	if cfg.RateLimitBackend == "redis" {
		redisService, err := services.NewRedisService(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		limiter := services.NewRedisRateLimiter(redisService, cfg.RateLimitMax, cfg.RateLimitWindow)
		return limiter, func() { redisService.Close() }, nil
	}

	limiter := services.NewSlidingWindowLimiter(cfg.RateLimitMax, cfg.RateLimitWindow)
	sweepCtx, cancel := context.WithCancel(ctx)

	go func() {
		ticker := time.NewTicker(cfg.RateLimitSweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if n := limiter.Sweep(); n > 0 {
					logger.Debug("Swept idle rate limit buckets", "removed", n, "remaining", limiter.Clients())
				}
			case <-sweepCtx.Done():
				return
			}
		}
	}()

	return limiter, cancel, nil
}
