package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	grpc_logging "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"

	"github.com/KirkDiggler/deadgrid/internal/config"
	"github.com/KirkDiggler/deadgrid/internal/engine/narrative"
	"github.com/KirkDiggler/deadgrid/internal/handlers/feed"
	"github.com/KirkDiggler/deadgrid/internal/handlers/survival/v1alpha1"
	"github.com/KirkDiggler/deadgrid/internal/orchestrators/playthrough"
	"github.com/KirkDiggler/deadgrid/internal/pkg/clock"
	"github.com/KirkDiggler/deadgrid/internal/pkg/idgen"
	"github.com/KirkDiggler/deadgrid/internal/redis"
	journal "github.com/KirkDiggler/deadgrid/internal/repositories/playthrough"
)

var (
	grpcPort    int
	feedAddress string
	redisAddr   string
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the gRPC server and snapshot feed",
	Long: `Start the SimulationService gRPC server and the websocket snapshot feed.
Playthroughs are journaled to Redis when --redis is set, otherwise in memory.`,
	RunE: runServer,
}

func init() {
	serverCmd.Flags().IntVar(&grpcPort, "port", 0, "gRPC server port (overrides server.grpc_port)")
	serverCmd.Flags().StringVar(&feedAddress, "feed-addr", "", "websocket feed listen address (overrides server.feed_address)")
	serverCmd.Flags().StringVar(&redisAddr, "redis", "", "Redis address for the journal (overrides server.redis_address)")
}

func runServer(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.GRPCPort = grpcPort
	}
	if cmd.Flags().Changed("feed-addr") {
		cfg.Server.FeedAddress = feedAddress
	}
	if cmd.Flags().Changed("redis") {
		cfg.Server.RedisAddress = redisAddr
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := newJournal(ctx, cfg.Server)
	if err != nil {
		return err
	}

	var packs []*narrative.Pack
	if cfg.Events.TemplatePack != "" {
		pack, err := narrative.LoadPackFile(cfg.Events.TemplatePack)
		if err != nil {
			return fmt.Errorf("failed to load template pack: %w", err)
		}
		packs = append(packs, pack)
	}

	svc, err := playthrough.NewOrchestrator(&playthrough.Config{
		Repository:  repo,
		IDGenerator: idgen.NewUUID("pt"),
		Rules:       cfg.Game,
		Packs:       packs,
		JournalTTL:  cfg.Server.JournalTTL,
	})
	if err != nil {
		return fmt.Errorf("failed to create playthrough orchestrator: %w", err)
	}

	handler, err := v1alpha1.NewHandler(&v1alpha1.HandlerConfig{PlaythroughService: svc})
	if err != nil {
		return fmt.Errorf("failed to create simulation handler: %w", err)
	}
	feedServer, err := feed.NewServer(&feed.Config{PlaythroughService: svc})
	if err != nil {
		return fmt.Errorf("failed to create feed server: %w", err)
	}

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.GRPCPort))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			grpc_logging.UnaryServerInterceptor(grpc_logging.LoggerFunc(logFunc)),
			grpc_recovery.UnaryServerInterceptor(),
		),
		grpc.ChainStreamInterceptor(
			grpc_logging.StreamServerInterceptor(grpc_logging.LoggerFunc(logFunc)),
			grpc_recovery.StreamServerInterceptor(),
		),
	)
	v1alpha1.RegisterSimulationServiceServer(srv, handler)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(srv, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(v1alpha1.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	reflection.Register(srv)

	httpServer := &http.Server{
		Addr:              cfg.Server.FeedAddress,
		Handler:           feedServer.Mux(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("gRPC server starting", "port", cfg.Server.GRPCPort)
		if err := srv.Serve(lis); err != nil {
			return fmt.Errorf("failed to serve gRPC: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		slog.Info("feed server starting", "address", cfg.Server.FeedAddress)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve feed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		healthServer.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Warn("feed shutdown", "error", err)
		}

		stopped := make(chan struct{})
		go func() {
			srv.GracefulStop()
			close(stopped)
		}()
		select {
		case <-shutdownCtx.Done():
			slog.Warn("graceful shutdown timeout exceeded, forcing stop")
			srv.Stop()
		case <-stopped:
			slog.Info("server stopped gracefully")
		}
		return nil
	})

	return g.Wait()
}

func newJournal(ctx context.Context, cfg config.Server) (journal.Repository, error) {
	if cfg.RedisAddress == "" {
		slog.Info("journaling playthroughs in memory")
		return journal.NewInMemory(clock.New()), nil
	}

	client, err := redis.Connect(ctx, cfg.RedisAddress, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	repo, err := journal.NewRedisRepository(&journal.Config{Client: client, Clock: clock.New()})
	if err != nil {
		return nil, fmt.Errorf("failed to create journal: %w", err)
	}
	return repo, nil
}

func logFunc(ctx context.Context, level grpc_logging.Level, msg string, fields ...any) {
	slog.Log(ctx, slog.Level(level), msg, fields...)
}
