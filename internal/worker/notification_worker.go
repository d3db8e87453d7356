package worker

import "github.com/spec-kit/lifebridge/internal/service"

// StartNotificationWorker subscribes the notification pipeline to the
// event dispatcher. Called once at startup, before the server listens,
// so the first request created already has its fan-out handler wired.
func StartNotificationWorker(notifications *service.NotificationService) {
	if notifications == nil {
		return
	}
	notifications.RegisterHandlers()
}
