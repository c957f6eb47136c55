package services

import (
	"github.com/subhadeepchowdhury41/teamsync-sub000/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type NotificationService interface {
	ListNotifications(db *gorm.DB, actorID uuid.UUID, unreadOnly bool) ([]models.Notification, error)
	MarkRead(db *gorm.DB, actorID, notificationID uuid.UUID) error
	MarkAllRead(db *gorm.DB, actorID uuid.UUID) (int64, error)
	DeleteNotification(db *gorm.DB, actorID, notificationID uuid.UUID) error
}

type NotificationServiceImpl struct{}

func NewNotificationService() *NotificationServiceImpl {
	return &NotificationServiceImpl{}
}

func (s *NotificationServiceImpl) ListNotifications(db *gorm.DB, actorID uuid.UUID, unreadOnly bool) ([]models.Notification, error) {
	query := db.Where("user_id = ?", actorID)
	if unreadOnly {
		query = query.Where("read = ?", false)
	}

	var notifications []models.Notification
	err := query.Order("created_at DESC").Limit(100).Find(&notifications).Error
	return notifications, err
}

// MarkRead only ever touches the recipient's own rows; anybody else sees
// a missing notification.
func (s *NotificationServiceImpl) MarkRead(db *gorm.DB, actorID, notificationID uuid.UUID) error {
	result := db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, actorID).
		Update("read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *NotificationServiceImpl) MarkAllRead(db *gorm.DB, actorID uuid.UUID) (int64, error) {
	result := db.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", actorID, false).
		Update("read", true)
	return result.RowsAffected, result.Error
}

func (s *NotificationServiceImpl) DeleteNotification(db *gorm.DB, actorID, notificationID uuid.UUID) error {
	result := db.Where("id = ? AND user_id = ?", notificationID, actorID).
		Delete(&models.Notification{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
