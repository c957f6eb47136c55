package worker

import (
	"context"
	"log"

	"github.com/gofrs/uuid"
)

// NotificationQueue is the queue the comment and member mutators feed.
const NotificationQueue = "notifications"

// NotificationDispatcher bridges the service layer to the job queue; it
// satisfies services.NotificationEnqueuer.
type NotificationDispatcher struct {
	queue *JobQueue
}

func NewNotificationDispatcher(queue *JobQueue) *NotificationDispatcher {
	return &NotificationDispatcher{queue: queue}
}

func (d *NotificationDispatcher) EnqueueNotification(notificationID uuid.UUID) error {
	return d.queue.Enqueue(NotificationQueue, JobTypeNotificationDelivery, map[string]interface{}{
		"notification_id": notificationID.String(),
	})
}

// DeliveryHandler acknowledges notification jobs. The row is already
// committed by the mutator; pushing it over email or websockets is a
// separate transport this service does not implement.
func DeliveryHandler(ctx context.Context, job *Job) error {
	log.Printf("notification %v ready for delivery", job.Payload["notification_id"])
	return nil
}
