package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/vovakirdan/math-arcade/internal/api"
	"github.com/vovakirdan/math-arcade/internal/auth"
	"github.com/vovakirdan/math-arcade/internal/config"
	"github.com/vovakirdan/math-arcade/internal/event"
	"github.com/vovakirdan/math-arcade/internal/leaderboard"
	"github.com/vovakirdan/math-arcade/internal/mathgame"
	"github.com/vovakirdan/math-arcade/internal/notify"
	"github.com/vovakirdan/math-arcade/internal/platform/tui"
	"github.com/vovakirdan/math-arcade/internal/storage"
	"github.com/vovakirdan/math-arcade/internal/telemetry"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

type Config struct {
	HTTP struct {
		Address string
	}

	GRPC struct {
		Address string
	}

	SSH struct {
		Enabled     bool
		Address     string
		HostKeyPath string
		IdleTimeout time.Duration
		TickRate    int
	}

	Storage struct {
		Driver string
		Path   string
	}

	Redis struct {
		Addrs  []string
		Pass   string
		Prefix string
	}

	Postgres struct {
		DSN string
	}

	Pubsub struct {
		Enabled bool
		Prefix  string
	}

	Auth struct {
		Secret   string
		TokenTTL time.Duration
	}

	Math struct {
		ConfigPath string
	}

	Log struct {
		Level string
	}
}

// DefaultConfig serves everything on the usual ports with a local sqlite store.
func DefaultConfig() Config {
	var c Config
	c.HTTP.Address = ":8080"
	c.GRPC.Address = ":9090"
	c.SSH.Enabled = true
	c.SSH.Address = ":23234"
	c.SSH.IdleTimeout = 30 * time.Minute
	c.SSH.TickRate = 60
	c.Storage.Driver = DriverSQLite
	c.Storage.Path = "~/.arcade/scores.db"
	c.Redis.Addrs = []string{"localhost:6379"}
	c.Redis.Prefix = "arcade"
	c.Pubsub.Prefix = "arcade"
	c.Auth.TokenTTL = auth.DefaultTokenDuration
	c.Log.Level = "info"
	return c
}

type Server struct {
	c      Config
	logger *log.Logger

	eb      *event.Bus
	metrics *telemetry.Metrics

	infra struct {
		redis  redis.UniversalClient
		closer func()
	}

	service struct {
		leaderboard *leaderboard.Service
		notify      *notify.RedisPublisher
	}

	http   *http.Server
	grpc   *grpc.Server
	health *health.Server
	ssh    *tui.SSHServer
}

// Init wires storage, services and every listener. reg receives the
// server's metrics; nil means the default prometheus registry.
func Init(c Config, reg prometheus.Registerer) (*Server, error) {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		level = log.InfoLevel
	}

	s := &Server{
		c: c,
		logger: log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "arcade",
			Level:           level,
		}),
	}

	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s.metrics = telemetry.NewMetrics(reg)

	s.eb = event.NewBus(event.WithLogger(s.logger.WithPrefix("events")))

	store, err := s.initInfra()
	if err != nil {
		s.eb.Stop()
		return nil, fmt.Errorf("server: init infra: %w", err)
	}

	if err := s.initService(store); err != nil {
		s.close()
		return nil, fmt.Errorf("server: init service: %w", err)
	}

	if err := s.initAPI(); err != nil {
		s.close()
		return nil, fmt.Errorf("server: init api: %w", err)
	}

	return s, nil
}

func (s *Server) initInfra() (leaderboard.Store, error) {
	switch s.c.Storage.Driver {
	case DriverRedis:
		if err := s.initRedis(); err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		s.infra.closer = func() { s.infra.redis.Close() }
		return storage.NewRedisStore(s.infra.redis, s.c.Redis.Prefix), nil

	case DriverPostgres:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		store, err := storage.OpenPostgres(ctx, s.c.Postgres.DSN)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		s.infra.closer = store.Close
		return store, s.initPubsubRedis()

	case DriverSQLite, "":
		store, err := storage.Open(s.c.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("sqlite: %w", err)
		}
		s.infra.closer = func() { store.Close() }
		return store, s.initPubsubRedis()

	default:
		return nil, fmt.Errorf("unknown storage driver %q", s.c.Storage.Driver)
	}
}

// initPubsubRedis connects Redis for notifications when the store does not already.
func (s *Server) initPubsubRedis() error {
	if !s.c.Pubsub.Enabled {
		return nil
	}
	if err := s.initRedis(); err != nil {
		return fmt.Errorf("pubsub: %w", err)
	}
	return nil
}

func (s *Server) initRedis() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	r := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    s.c.Redis.Addrs,
		Password: s.c.Redis.Pass,
	})

	if err := telemetry.MonitorRedis(r, s.logger.WithPrefix("redis")); err != nil {
		return err
	}

	if err := r.Ping(ctx).Err(); err != nil {
		r.Close()
		return err
	}

	s.infra.redis = r
	return nil
}

func (s *Server) initService(store leaderboard.Store) error {
	s.service.leaderboard = leaderboard.NewService(leaderboard.Config{
		Store:    store,
		Events:   s.eb,
		Observer: s.metrics,
		Logger:   s.logger.WithPrefix("leaderboard"),
	})

	if s.c.Pubsub.Enabled {
		s.service.notify = notify.New(notify.Config{
			EventBus: s.eb,
			Redis:    s.infra.redis,
			Prefix:   s.c.Pubsub.Prefix,
		})
	}

	mathgame.SetConfigPath(s.c.Math.ConfigPath)
	return nil
}

func (s *Server) initAPI() error {
	math, err := config.LoadMath(s.c.Math.ConfigPath)
	if err != nil {
		return err
	}

	tokens, err := auth.NewTokens(s.c.Auth.Secret, s.c.Auth.TokenTTL)
	if err != nil {
		return err
	}

	e := gin.New()
	e.GET("/metrics", gin.WrapH(promhttp.Handler()))
	pprof.Register(e, "/debug/pprof")
	e.Use(gin.Recovery(), s.metrics.GinMiddleware())

	api.New(api.Config{
		Leaderboard: s.service.leaderboard,
		Tokens:      tokens,
		Math:        math,
		Sessions:    s.metrics,
		Logger:      s.logger.WithPrefix("arcade-http"),
	}).Register(e)

	s.http = &http.Server{
		Addr:              s.c.HTTP.Address,
		Handler:           e,
		ReadHeaderTimeout: 60 * time.Second,
	}

	s.grpc = grpc.NewServer(telemetry.GRPCServerInterceptor(s.logger.WithPrefix("arcade-grpc")))
	s.health = health.NewServer()
	healthpb.RegisterHealthServer(s.grpc, s.health)

	if s.c.SSH.Enabled {
		s.ssh, err = tui.NewSSHServer(tui.SSHServerConfig{
			Address:     s.c.SSH.Address,
			HostKeyPath: s.c.SSH.HostKeyPath,
			IdleTimeout: s.c.SSH.IdleTimeout,
			TickRate:    s.c.SSH.TickRate,
			Logger:      s.logger.WithPrefix("arcade-ssh"),
		}, s.service.leaderboard)
		if err != nil {
			return fmt.Errorf("ssh: %w", err)
		}
	}

	return nil
}

// Handler returns the HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Start serves gRPC, HTTP and SSH until Shutdown. It returns the first
// listener error.
func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.c.GRPC.Address)
	if err != nil {
		return fmt.Errorf("server: grpc listen: %w", err)
	}

	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	eg, ctx := errgroup.WithContext(context.Background())
	go func() {
		// A failed listener takes the others down with it
		<-ctx.Done()
		if context.Cause(ctx) != context.Canceled {
			s.stopListeners()
		}
	}()

	eg.Go(func() error {
		s.logger.Info("gRPC listening", "address", s.c.GRPC.Address)
		return s.grpc.Serve(lis)
	})

	eg.Go(func() error {
		s.logger.Info("HTTP listening", "address", s.c.HTTP.Address)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if s.ssh != nil {
		eg.Go(s.ssh.ListenAndServe)
	}

	if err := eg.Wait(); err != nil {
		s.logger.Error("shutdown with error", "error", err)
		return err
	}
	return nil
}

func (s *Server) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.health.Shutdown()
	s.grpc.GracefulStop()
	if err := s.http.Shutdown(ctx); err != nil {
		s.logger.Error("shutdown HTTP failed", "error", err)
	}
	if s.ssh != nil {
		if err := s.ssh.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown SSH failed", "error", err)
		}
	}

	s.close()
	s.logger.Info("shutdown completed")
}

func (s *Server) stopListeners() {
	s.grpc.Stop()
	s.http.Close()
	if s.ssh != nil {
		s.ssh.Close()
	}
}

// close stops the bus, which drains pending notifications, then the stores.
func (s *Server) close() {
	s.eb.Stop()
	if s.infra.closer != nil {
		s.infra.closer()
	}
	if s.infra.redis != nil && s.c.Storage.Driver != DriverRedis {
		s.infra.redis.Close()
	}
}
