package services

import (
	"fmt"
	"time"

	"github.com/subhadeepchowdhury41/teamsync-sub000/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type CommentInput struct {
	Content string `json:"content" binding:"required,min=1,max=4000"`
}

// NotificationEnqueuer hands a freshly written notification row off for
// out-of-band delivery. The row itself is already committed; delivery is
// best effort.
type NotificationEnqueuer interface {
	EnqueueNotification(notificationID uuid.UUID) error
}

type CommentService interface {
	CreateComment(db *gorm.DB, actorID, taskID uuid.UUID, input CommentInput) (*models.Comment, error)
	DeleteComment(db *gorm.DB, actorID, commentID uuid.UUID) error
	ListComments(db *gorm.DB, actorID, taskID uuid.UUID) ([]models.Comment, error)
}

type CommentServiceImpl struct {
	authz AuthorizationService
	queue NotificationEnqueuer
}

func NewCommentService(authz AuthorizationService, queue NotificationEnqueuer) *CommentServiceImpl {
	return &CommentServiceImpl{authz: authz, queue: queue}
}

// CreateComment writes the comment and, when the task is assigned to
// somebody other than the commenter, exactly one notification row for the
// assignee, all in one transaction.
func (s *CommentServiceImpl) CreateComment(db *gorm.DB, actorID, taskID uuid.UUID, input CommentInput) (*models.Comment, error) {
	var comment models.Comment
	var notifID uuid.UUID

	err := runInTx(db, func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.Where("id = ?", taskID).First(&task).Error; err != nil {
			return translateNotFound(err)
		}
		if _, err := s.authz.Authorize(tx, actorID, task.ProjectID, ActionComment); err != nil {
			return err
		}

		now := time.Now()
		comment = models.Comment{
			ID:        uuid.Must(uuid.NewV4()),
			TaskID:    task.ID,
			UserID:    actorID,
			Content:   input.Content,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}

		if task.AssigneeID == nil || *task.AssigneeID == actorID {
			return nil
		}

		notif := models.Notification{
			ID:        uuid.Must(uuid.NewV4()),
			UserID:    *task.AssigneeID,
			SenderID:  &actorID,
			Type:      models.NotificationComment,
			Title:     "New comment",
			Message:   fmt.Sprintf("New comment on %q", task.Title),
			TaskID:    &task.ID,
			CommentID: &comment.ID,
			CreatedAt: now,
		}
		if err := tx.Create(&notif).Error; err != nil {
			return err
		}
		notifID = notif.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	if notifID != uuid.Nil && s.queue != nil {
		// Delivery failures never fail the comment.
		_ = s.queue.EnqueueNotification(notifID)
	}

	return &comment, nil
}

func (s *CommentServiceImpl) DeleteComment(db *gorm.DB, actorID, commentID uuid.UUID) error {
	return runInTx(db, func(tx *gorm.DB) error {
		var comment models.Comment
		if err := tx.Where("id = ?", commentID).First(&comment).Error; err != nil {
			return translateNotFound(err)
		}

		var task models.Task
		if err := tx.Where("id = ?", comment.TaskID).First(&task).Error; err != nil {
			return translateNotFound(err)
		}

		decision, err := s.authz.Evaluate(tx, actorID, task.ProjectID, ActionView)
		if err != nil {
			return err
		}
		if decision.Role == "" {
			return ErrNotFound
		}

		authorOrManager := comment.UserID == actorID ||
			decision.Role == models.RoleOwner || decision.Role == models.RoleAdmin
		if !authorOrManager {
			return forbidden("only the author or a project manager may delete a comment")
		}

		return tx.Delete(&comment).Error
	})
}

func (s *CommentServiceImpl) ListComments(db *gorm.DB, actorID, taskID uuid.UUID) ([]models.Comment, error) {
	var task models.Task
	if err := db.Where("id = ?", taskID).First(&task).Error; err != nil {
		return nil, translateNotFound(err)
	}
	if _, err := s.authz.Authorize(db, actorID, task.ProjectID, ActionView); err != nil {
		return nil, err
	}

	var comments []models.Comment
	err := db.Preload("User").
		Where("task_id = ?", taskID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}
