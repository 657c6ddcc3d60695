package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/grpc"

	barbershopv1 "barbershop/backend/internal/api/barbershop/v1"
	"barbershop/backend/internal/config"
	"barbershop/backend/internal/domain"
	"barbershop/backend/internal/events"
	"barbershop/backend/internal/service/appointments"
	"barbershop/backend/internal/service/calendar"
	"barbershop/backend/internal/service/schedules"
	"barbershop/backend/internal/store/cache"
	"barbershop/backend/internal/store/postgres"
	"barbershop/backend/internal/telemetry"
	grpcTransport "barbershop/backend/internal/transport/grpc"
	httpapi "barbershop/backend/internal/transport/http"
)

const serviceName = "barbershop-server"

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With(
		slog.String("service", serviceName),
	)
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)})).With(
		slog.String("service", serviceName),
	)
	slog.SetDefault(log)

	os.Exit(run(cfg, log))
}

// run serves until a signal or a server failure and returns the exit code.
// Deferred cleanup always runs before the process exits.
func run(cfg config.Config, log *slog.Logger) int {
	log.Info("starting",
		slog.String("grpc_addr", cfg.GRPCAddr()),
		slog.String("http_addr", cfg.HTTPAddr),
		slog.String("log_level", cfg.LogLevel),
		slog.String("timezone", cfg.TimeZone.String()),
		slog.Duration("booking_cutoff", cfg.BookingCutoff),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:      cfg.OTelEnabled,
		ServiceName:  serviceName,
		OTLPEndpoint: cfg.OTelEndpoint,
		SampleRatio:  cfg.OTelSampleRatio,
	})
	if err != nil {
		log.Error("telemetry setup failed", slog.Any("err", err))
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Warn("telemetry shutdown failed", slog.Any("err", err))
		}
	}()

	log.Info("connecting to database", databaseLogArgs(cfg.DatabaseURL)...)
	db, err := postgres.Open(cfg.DatabaseURL, postgres.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	})
	if err != nil {
		args := append([]any{slog.Any("err", err)}, databaseLogArgs(cfg.DatabaseURL)...)
		log.Error("database connection failed", args...)
		return 1
	}
	defer func() {
		if err := postgres.Close(db); err != nil {
			log.Warn("database close failed", slog.Any("err", err))
		}
	}()

	readyChecks := []httpapi.ReadyCheck{{Name: "postgres", Check: postgres.ReadyCheck(db)}}

	var publisher events.Publisher = events.Nop{}
	if brokers := events.SplitBrokers(cfg.KafkaBrokers); len(brokers) > 0 {
		kp := events.NewKafkaPublisher(events.KafkaConfig{
			Brokers:       brokers,
			BlocksTopic:   cfg.KafkaBlocksTopic,
			BookingsTopic: cfg.KafkaBookingsTopic,
		}, log)
		defer func() {
			if err := kp.Close(); err != nil {
				log.Warn("kafka writer close failed", slog.Any("err", err))
			}
		}()
		publisher = kp
		readyChecks = append(readyChecks, httpapi.ReadyCheck{Name: "kafka", Check: events.ReadyCheck(brokers)})
		log.Info("event publishing enabled", slog.Int("brokers", len(brokers)))
	} else {
		log.Info("event publishing disabled")
	}

	locations := make([]domain.Location, 0, len(cfg.Locations))
	for _, l := range cfg.Locations {
		locations = append(locations, domain.Location(l))
	}

	scheduleRepo := cache.NewSchedules(postgres.NewScheduleRepo(db), cfg.ScheduleCacheSize, cfg.ScheduleCacheTTL, log)
	staffRepo := postgres.NewStaffRepo(db)
	appointmentRepo := postgres.NewAppointmentRepo(db)

	calendarSvc := calendar.NewService(calendar.Deps{
		Schedules:    scheduleRepo,
		Appointments: appointmentRepo,
		Blocks:       postgres.NewBlockedSlotRepo(db),
		Staff:        staffRepo,
		Events:       publisher,
		Logger:       log,
	}, calendar.Config{
		TimeZone:    cfg.TimeZone,
		Cutoff:      cfg.BookingCutoff,
		Locations:   locations,
		BlockReason: cfg.BlockReason,
	})
	schedulesSvc := schedules.NewService(scheduleRepo, staffRepo, log)
	appointmentsSvc := appointments.NewService(appointmentRepo, calendarSvc, publisher, log)

	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.UnaryInterceptor(grpcTransport.DefaultRequestTimeoutInterceptor(cfg.GRPCRequestTimeout)),
	)
	barbershopv1.RegisterAvailabilityServiceServer(grpcServer,
		grpcTransport.NewAvailabilityServer(calendarSvc, schedulesSvc, appointmentsSvc, log))

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Warn("redis close failed", slog.Any("err", err))
			}
		}()
		readyChecks = append(readyChecks, httpapi.ReadyCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
	}

	mux := httpapi.NewMux(httpapi.NewHandler(calendarSvc, schedulesSvc, appointmentsSvc, log), readyChecks...)
	handler := httpapi.Chain(mux,
		httpapi.WithRequestID,
		httpapi.WithAccessLog(log),
		httpapi.WithBodyLimit(cfg.HTTPBodyLimit),
		rateLimitMiddleware(cfg, rdb, log),
	)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           otelhttp.NewHandler(handler, "barbershop"),
		ReadHeaderTimeout: 5 * time.Second,
	}

	lis, err := net.Listen("tcp", cfg.GRPCAddr())
	if err != nil {
		log.Error("grpc listen failed", slog.Any("err", err), slog.String("grpc_addr", cfg.GRPCAddr()))
		return 1
	}

	errCh := make(chan error, 2)
	go func() {
		errCh <- grpcServer.Serve(lis)
	}()
	go func() {
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	log.Info("servers started", slog.String("grpc_addr", cfg.GRPCAddr()), slog.String("http_addr", cfg.HTTPAddr))

	exitCode := 0
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			log.Error("server stopped with error", slog.Any("err", err))
			exitCode = 1
		}
	}

	shutdownHTTP(log, httpServer, cfg.ShutdownTimeout)
	shutdown(log, grpcServer, cfg.ShutdownTimeout)
	return exitCode
}

// rateLimitMiddleware shares counters through Redis when a client is
// given and falls back to a per-process limiter otherwise.
func rateLimitMiddleware(cfg config.Config, rdb *redis.Client, log *slog.Logger) httpapi.Middleware {
	if rdb == nil {
		log.Info("rate limiting enabled (in-memory)", slog.Int("limit", cfg.HTTPRateLimit), slog.Duration("window", cfg.HTTPRateWindow))
		return httpapi.NewRateLimiter(cfg.HTTPRateLimit, cfg.HTTPRateWindow).
			TrustForwardedFor(cfg.TrustForwardedFor).
			Middleware()
	}
	log.Info("rate limiting enabled (redis)",
		slog.Int("limit", cfg.HTTPRateLimit),
		slog.Duration("window", cfg.HTTPRateWindow),
		slog.String("redis_addr", cfg.RedisAddr),
	)
	rl := httpapi.NewRedisRateLimiter(rdb, cfg.HTTPRateLimit, cfg.HTTPRateWindow, "barbershop:rl").
		TrustForwardedFor(cfg.TrustForwardedFor)
	return rl.Middleware(log, cfg.RateLimitFailOpen)
}

func shutdown(log *slog.Logger, s *grpc.Server, timeout time.Duration) {
	log.Info("shutting down grpc server", slog.Duration("timeout", timeout))

	done := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		log.Info("grpc server stopped")
	case <-timer.C:
		log.Warn("grpc graceful shutdown timed out; forcing stop")
		s.Stop()
	}
}

func shutdownHTTP(log *slog.Logger, s *http.Server, timeout time.Duration) {
	log.Info("shutting down http server", slog.Duration("timeout", timeout))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		log.Warn("http graceful shutdown failed; closing", slog.Any("err", err))
		_ = s.Close()
		return
	}
	log.Info("http server stopped")
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func databaseLogArgs(databaseURL string) []any {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return []any{slog.String("db_url", "invalid")}
	}
	name := strings.TrimPrefix(u.Path, "/")
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "default"
	}
	if host == "" {
		host = "unknown"
	}
	if name == "" {
		name = "unknown"
	}
	return []any{
		slog.String("db_host", host),
		slog.String("db_port", port),
		slog.String("db_name", name),
	}
}
