package service

import (
	"context"
	"fmt"
	"time"

	"dsa_arena/internal/domain/model"
	"dsa_arena/internal/platform/logger"

	"github.com/google/uuid"
)

// NotificationPublisher puts a job on the notification queue.
type NotificationPublisher interface {
	Publish(ctx context.Context, n model.Notification) error
}

type NotificationService struct {
	publisher  NotificationPublisher
	adminEmail string
	log        *logger.Logger
}

func NewNotificationService(publisher NotificationPublisher, adminEmail string, log *logger.Logger) *NotificationService {
	return &NotificationService{publisher: publisher, adminEmail: adminEmail, log: log.With("service", "NotificationService")}
}

// enqueue never fails the caller; a lost notification is only logged.
func (s *NotificationService) enqueue(ctx context.Context, n model.Notification) {
	n.ID = uuid.NewString()
	n.CreatedAt = time.Now().UTC()
	if err := s.publisher.Publish(ctx, n); err != nil {
		s.log.Error("failed to enqueue notification", "kind", n.Kind, "to", n.To, "error", err)
		return
	}
	s.log.Debug("notification enqueued", "id", n.ID, "kind", n.Kind)
}

func (s *NotificationService) RegistrationRequested(ctx context.Context, user *model.User) {
	s.enqueue(ctx, model.Notification{
		Kind:    model.NotificationRegistrationRequest,
		To:      s.adminEmail,
		Subject: "New registration request: " + user.Username,
		Body: fmt.Sprintf("A new user is waiting for approval.\n\nUsername: %s\nDisplay name: %s\nEmail: %s\nUser ID: %s\n",
			user.Username, user.DisplayName, user.Email, user.ID),
	})
}

func (s *NotificationService) AccountApproved(ctx context.Context, user *model.User) {
	s.enqueue(ctx, model.Notification{
		Kind:    model.NotificationAccountApproved,
		To:      user.Email,
		Subject: "Your account has been approved",
		Body:    fmt.Sprintf("Hi %s,\n\nYour account has been approved. You can now log in.\n", user.DisplayName),
	})
}
