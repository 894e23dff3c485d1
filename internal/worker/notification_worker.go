package worker

import (
	"context"

	"github.com/spec-kit/sweetshop/internal/service"
)

// StartNotificationWorker registers notification handlers and starts the
// delivery loop. The returned channel is closed once the loop has exited.
func StartNotificationWorker(ctx context.Context, notificationService *service.NotificationService) <-chan struct{} {
	done := make(chan struct{})
	if notificationService == nil {
		close(done)
		return done
	}
	notificationService.RegisterHandlers()
	go func() {
		defer close(done)
		notificationService.Run(ctx)
	}()
	return done
}
