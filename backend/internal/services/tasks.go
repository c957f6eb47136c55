package services

import (
	"fmt"
	"strconv"
	"time"

	"github.com/subhadeepchowdhury41/teamsync-sub000/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type TaskInput struct {
	Title       string       `json:"title" binding:"required,min=1,max=200"`
	Description string       `json:"description"`
	Status      string       `json:"status"`
	Priority    string       `json:"priority"`
	DueDate     *time.Time   `json:"due_date"`
	AssigneeID  *uuid.UUID   `json:"assignee_id"`
	TagIDs      *[]uuid.UUID `json:"tag_ids"`
}

type TaskFilter struct {
	Status     string
	AssigneeID *uuid.UUID
	SortBy     string
	Order      string
	Page       string
	PageSize   string
}

type TaskService interface {
	CreateTask(db *gorm.DB, actorID, projectID uuid.UUID, input TaskInput) (*models.Task, error)
	UpdateTask(db *gorm.DB, actorID, taskID uuid.UUID, input TaskInput) (*models.Task, error)
	DeleteTask(db *gorm.DB, actorID, taskID uuid.UUID) error
	GetTaskByID(db *gorm.DB, actorID, taskID uuid.UUID) (*models.Task, error)
	ListTasks(db *gorm.DB, actorID, projectID uuid.UUID, filter TaskFilter) ([]models.Task, int64, error)
}

type TaskServiceImpl struct {
	authz AuthorizationService
}

func NewTaskService(authz AuthorizationService) *TaskServiceImpl {
	return &TaskServiceImpl{authz: authz}
}

func (s *TaskServiceImpl) CreateTask(db *gorm.DB, actorID, projectID uuid.UUID, input TaskInput) (*models.Task, error) {
	status := input.Status
	if status == "" {
		status = models.StatusTodo
	}
	priority := input.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !models.ValidStatus(status) {
		return nil, validation(fmt.Sprintf("invalid status %q", status))
	}
	if !models.ValidPriority(priority) {
		return nil, validation(fmt.Sprintf("invalid priority %q", priority))
	}

	var task models.Task

	err := runInTx(db, func(tx *gorm.DB) error {
		if _, err := s.authz.Authorize(tx, actorID, projectID, ActionCreateTask); err != nil {
			return err
		}

		if input.AssigneeID != nil {
			if err := s.requireMembership(tx, projectID, *input.AssigneeID); err != nil {
				return err
			}
		}

		now := time.Now()
		task = models.Task{
			ID:          uuid.Must(uuid.NewV4()),
			ProjectID:   projectID,
			CreatorID:   actorID,
			AssigneeID:  input.AssigneeID,
			Title:       input.Title,
			Description: input.Description,
			Status:      status,
			Priority:    priority,
			DueDate:     input.DueDate,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.Create(&task).Error; err != nil {
			return err
		}

		if input.TagIDs != nil {
			if err := s.replaceTags(tx, &task, *input.TagIDs); err != nil {
				return err
			}
		}

		if task.AssigneeID != nil && *task.AssigneeID != actorID {
			if err := s.notifyAssigned(tx, &task, actorID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *TaskServiceImpl) UpdateTask(db *gorm.DB, actorID, taskID uuid.UUID, input TaskInput) (*models.Task, error) {
	var task models.Task

	err := runInTx(db, func(tx *gorm.DB) error {
		if err := s.loadVisibleTask(tx, actorID, taskID, &task); err != nil {
			return err
		}
		if err := s.authorizeTaskMutation(tx, actorID, &task, ActionEditAnyTask); err != nil {
			return err
		}

		if input.Status != "" && !models.ValidStatus(input.Status) {
			return validation(fmt.Sprintf("invalid status %q", input.Status))
		}
		if input.Priority != "" && !models.ValidPriority(input.Priority) {
			return validation(fmt.Sprintf("invalid priority %q", input.Priority))
		}

		previousAssignee := task.AssigneeID

		if input.AssigneeID != nil {
			if err := s.requireMembership(tx, task.ProjectID, *input.AssigneeID); err != nil {
				return err
			}
		}

		task.Title = input.Title
		task.Description = input.Description
		task.AssigneeID = input.AssigneeID
		task.DueDate = input.DueDate
		if input.Status != "" {
			task.Status = input.Status
		}
		if input.Priority != "" {
			task.Priority = input.Priority
		}
		task.UpdatedAt = time.Now()

		if err := tx.Save(&task).Error; err != nil {
			return err
		}

		if input.TagIDs != nil {
			if err := s.replaceTags(tx, &task, *input.TagIDs); err != nil {
				return err
			}
		}

		newAssignee := task.AssigneeID != nil && *task.AssigneeID != actorID &&
			(previousAssignee == nil || *previousAssignee != *task.AssigneeID)
		if newAssignee {
			if err := s.notifyAssigned(tx, &task, actorID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.loadTags(db, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *TaskServiceImpl) DeleteTask(db *gorm.DB, actorID, taskID uuid.UUID) error {
	return runInTx(db, func(tx *gorm.DB) error {
		var task models.Task
		if err := s.loadVisibleTask(tx, actorID, taskID, &task); err != nil {
			return err
		}
		if err := s.authorizeTaskMutation(tx, actorID, &task, ActionDeleteAnyTask); err != nil {
			return err
		}

		if err := tx.Where("task_id = ?", task.ID).Delete(&models.TaskTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", task.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&task).Error
	})
}

func (s *TaskServiceImpl) GetTaskByID(db *gorm.DB, actorID, taskID uuid.UUID) (*models.Task, error) {
	var task models.Task
	if err := s.loadVisibleTask(db, actorID, taskID, &task); err != nil {
		return nil, err
	}
	if err := s.loadTags(db, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *TaskServiceImpl) ListTasks(db *gorm.DB, actorID, projectID uuid.UUID, filter TaskFilter) ([]models.Task, int64, error) {
	if _, err := s.authz.Authorize(db, actorID, projectID, ActionView); err != nil {
		return nil, 0, err
	}

	allowedSort := map[string]bool{"created_at": true, "updated_at": true, "due_date": true, "title": true, "priority": true}
	sortBy := filter.SortBy
	if !allowedSort[sortBy] {
		sortBy = "created_at"
	}
	order := filter.Order
	if order != "asc" && order != "desc" {
		order = "desc"
	}

	p := 1
	ps := 20
	if v, err := strconv.Atoi(filter.Page); err == nil && v > 0 {
		p = v
	}
	if v, err := strconv.Atoi(filter.PageSize); err == nil && v > 0 && v <= 100 {
		ps = v
	}

	query := db.Model(&models.Task{}).Where("project_id = ?", projectID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.AssigneeID != nil {
		query = query.Where("assignee_id = ?", *filter.AssigneeID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tasks []models.Task
	err := query.Order(sortBy + " " + order).Offset((p - 1) * ps).Limit(ps).Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}

	for i := range tasks {
		if err := s.loadTags(db, &tasks[i]); err != nil {
			return nil, 0, err
		}
	}
	return tasks, total, nil
}

// loadVisibleTask fetches the task and hides it entirely from non-members.
func (s *TaskServiceImpl) loadVisibleTask(db *gorm.DB, actorID, taskID uuid.UUID, task *models.Task) error {
	if err := db.Where("id = ?", taskID).First(task).Error; err != nil {
		return translateNotFound(err)
	}
	_, err := s.authz.Authorize(db, actorID, task.ProjectID, ActionView)
	return err
}

// authorizeTaskMutation applies the creator override on top of the role
// table: the creator may always edit or delete their own task.
func (s *TaskServiceImpl) authorizeTaskMutation(db *gorm.DB, actorID uuid.UUID, task *models.Task, action Action) error {
	if task.CreatorID == actorID {
		return nil
	}
	_, err := s.authz.Authorize(db, actorID, task.ProjectID, action)
	return err
}

func (s *TaskServiceImpl) requireMembership(db *gorm.DB, projectID, userID uuid.UUID) error {
	member, err := s.authz.Membership(db, projectID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return validation("assignee is not a project member")
	}
	return nil
}

// replaceTags applies full-replace semantics: every existing association
// is dropped, then the new set is inserted.
func (s *TaskServiceImpl) replaceTags(tx *gorm.DB, task *models.Task, tagIDs []uuid.UUID) error {
	if err := tx.Where("task_id = ?", task.ID).Delete(&models.TaskTag{}).Error; err != nil {
		return err
	}
	for _, tagID := range tagIDs {
		var tag models.Tag
		if err := tx.Where("id = ? AND project_id = ?", tagID, task.ProjectID).First(&tag).Error; err != nil {
			return validation(fmt.Sprintf("tag %s does not belong to this project", tagID))
		}
		if err := tx.Create(&models.TaskTag{TaskID: task.ID, TagID: tagID}).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *TaskServiceImpl) loadTags(db *gorm.DB, task *models.Task) error {
	return db.
		Joins("JOIN task_tags ON task_tags.tag_id = tags.id").
		Where("task_tags.task_id = ?", task.ID).
		Find(&task.Tags).Error
}

func (s *TaskServiceImpl) notifyAssigned(tx *gorm.DB, task *models.Task, actorID uuid.UUID) error {
	notif := models.Notification{
		ID:        uuid.Must(uuid.NewV4()),
		UserID:    *task.AssigneeID,
		SenderID:  &actorID,
		Type:      models.NotificationAssigned,
		Title:     "Task assigned to you",
		Message:   fmt.Sprintf("You were assigned %q", task.Title),
		TaskID:    &task.ID,
		CreatedAt: time.Now(),
	}
	return tx.Create(&notif).Error
}
