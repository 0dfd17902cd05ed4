package srv

import (
	"context"

	"github.com/sandevgo/ragchat/pkg/log"
)

type Service interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

func StartServices(ctx context.Context, services []Service) {
	logger := log.FromCtx(ctx)
	for _, service := range services {
		go func(service Service) {
			if err := service.Start(ctx); err != nil {
				logger.Fatal().Err(err).Msgf("%T failed to start", service)
			}
		}(service)
	}
}

// ShutdownServices waits for ctx to end, then shuts services down in order.
// The shutdown itself gets a fresh context carrying the same logger.
func ShutdownServices(ctx context.Context, services []Service) {
	<-ctx.Done()
	shutdownCtx := log.FromCtx(ctx).WithContext(context.Background())
	for _, service := range services {
		if err := service.Shutdown(shutdownCtx); err != nil {
			log.FromCtx(ctx).Error().Err(err).Msgf("%T failed to shutdown", service)
		}
	}
}

// foregroundService ends the whole run when its Start returns, the way an
// interactive session ends when the user quits.
type foregroundService struct {
	Service
	stop context.CancelFunc
}

func (f *foregroundService) Start(ctx context.Context) error {
	defer f.stop()
	return f.Service.Start(ctx)
}

func Foreground(s Service, stop context.CancelFunc) Service {
	return &foregroundService{Service: s, stop: stop}
}
