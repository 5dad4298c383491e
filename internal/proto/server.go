package proto

import (
	"context"
	"net"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/Rogue-Bear-Innovations/notekeeper-back/internal/config"
)

// ServiceName is reported alongside the overall ("") health status.
const ServiceName = "notekeeper"

type HealthServer struct {
	grpc   *grpc.Server
	health *health.Server
	logger *zap.SugaredLogger
	lis    net.Listener
}

func NewHealthServer(logger *zap.SugaredLogger) *HealthServer {
	instance := HealthServer{
		grpc:   grpc.NewServer(),
		health: health.NewServer(),
		logger: logger,
	}
	healthpb.RegisterHealthServer(instance.grpc, instance.health)
	return &instance
}

func NewGRPCServer(lc fx.Lifecycle, cfg *config.Config, logger *zap.SugaredLogger) *HealthServer {
	instance := NewHealthServer(logger)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return instance.Start(cfg.Host + ":" + cfg.GRPCPort)
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping GRPC server.")
			instance.Stop()
			return nil
		},
	})

	return instance
}

// Start binds addr and serves in the background with every service marked SERVING.
func (s *HealthServer) Start(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "listen %s", addr)
	}
	s.lis = lis

	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	go func() {
		if err := s.grpc.Serve(lis); err != nil && err != grpc.ErrServerStopped {
			s.logger.Errorw("grpc server stopped", "error", err)
		}
	}()
	s.logger.Infow("GRPC server started", "addr", lis.Addr().String())
	return nil
}

// Stop flips every service to NOT_SERVING and drains in-flight calls.
func (s *HealthServer) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}

// Addr is the bound listener address, nil before Start.
func (s *HealthServer) Addr() net.Addr {
	if s.lis == nil {
		return nil
	}
	return s.lis.Addr()
}
