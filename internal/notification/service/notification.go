package service

import (
	"context"
	"errors"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/azmiruddin-143/Local-Guide-Server/internal/notification/repository"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/config"
	apperrors "github.com/azmiruddin-143/Local-Guide-Server/pkg/errors"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/model"
)

type NotificationService interface {
	// Notify enqueues an outbox row. It never fails the caller: a broken
	// notification write is logged and dropped, the triggering operation
	// already succeeded.
	Notify(ctx context.Context, n *model.Notification)

	GetForUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]*model.Notification, int64, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

type notificationService struct {
	repo repository.NotificationRepository
	cfg  *config.Config
}

func NewNotificationService(repo repository.NotificationRepository, cfg *config.Config) NotificationService {
	return &notificationService{
		repo: repo,
		cfg:  cfg,
	}
}

func (s *notificationService) Notify(ctx context.Context, n *model.Notification) {
	if n.Priority == "" {
		n.Priority = model.PriorityMedium
	}
	n.Dispatched = false

	if err := s.repo.Create(ctx, n); err != nil {
		s.cfg.Log.Error("Failed to enqueue notification",
			"user_id", n.UserID,
			"type", n.Type,
			"error", err,
		)
		return
	}

	s.cfg.Log.Debug("Notification enqueued", "id", n.ID, "user_id", n.UserID, "type", n.Type)
}

func (s *notificationService) GetForUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]*model.Notification, int64, error) {
	sharedCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var count int64
	var notifications []*model.Notification
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.CountByUser(sharedCtx, userID, unreadOnly)
		if err != nil {
			s.cfg.Log.Error("Failed to count notifications", "user_id", userID, "error", err)
			errCount = apperrors.Internal("Failed to count notifications", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		notifications, err = s.repo.FindByUser(sharedCtx, userID, unreadOnly, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list notifications", "user_id", userID, "error", err)
			errFind = apperrors.Internal("Failed to retrieve notifications", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return notifications, count, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	count, err := s.repo.CountByUser(ctx, userID, true)
	if err != nil {
		s.cfg.Log.Error("Failed to count unread notifications", "user_id", userID, "error", err)
		return 0, apperrors.Internal("Failed to count notifications", err)
	}
	return count, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, id string) error {
	if err := s.repo.MarkRead(ctx, userID, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperrors.NotFoundWithID("Notification", id)
		}
		s.cfg.Log.Error("Failed to mark notification read", "id", id, "error", err)
		return apperrors.Internal("Failed to mark notification read", err)
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	updated, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		s.cfg.Log.Error("Failed to mark all notifications read", "user_id", userID, "error", err)
		return 0, apperrors.Internal("Failed to mark notifications read", err)
	}
	return updated, nil
}
