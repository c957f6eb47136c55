package handlers

import (
	"net/http"

	"github.com/subhadeepchowdhury41/teamsync-sub000/backend/internal/models"
	"github.com/subhadeepchowdhury41/teamsync-sub000/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type TaskHandler struct {
	db          *gorm.DB
	taskService services.TaskService
	dashboards  DashboardInvalidator
}

func NewTaskHandler(db *gorm.DB, taskService services.TaskService, dashboards DashboardInvalidator) *TaskHandler {
	return &TaskHandler{db: db, taskService: taskService, dashboards: dashboards}
}

func (h *TaskHandler) invalidate(task *models.Task) {
	if h.dashboards == nil || task == nil {
		return
	}
	h.dashboards.InvalidateProject(task.ProjectID)
	if task.AssigneeID != nil {
		h.dashboards.InvalidateUser(*task.AssigneeID)
	}
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	projectID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var input services.TaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskService.CreateTask(h.db, actorID, projectID, input)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	h.invalidate(task)
	c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) ListTasks(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	projectID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	filter := services.TaskFilter{
		Status:   c.Query("status"),
		SortBy:   c.DefaultQuery("sortBy", "created_at"),
		Order:    c.DefaultQuery("order", "desc"),
		Page:     c.DefaultQuery("page", "1"),
		PageSize: c.DefaultQuery("pageSize", "20"),
	}
	if assignee := c.Query("assignee_id"); assignee != "" {
		id := uuid.FromStringOrNil(assignee)
		if id == uuid.Nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid assignee_id"})
			return
		}
		filter.AssigneeID = &id
	}

	tasks, total, err := h.taskService.ListTasks(h.db, actorID, projectID, filter)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tasks": tasks,
		"total": total,
	})
}

func (h *TaskHandler) GetTaskByID(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := pathUUID(c, "taskId")
	if !ok {
		return
	}

	task, err := h.taskService.GetTaskByID(h.db, actorID, taskID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := pathUUID(c, "taskId")
	if !ok {
		return
	}

	var input services.TaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskService.UpdateTask(h.db, actorID, taskID, input)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	h.invalidate(task)
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := pathUUID(c, "taskId")
	if !ok {
		return
	}

	// The row is gone after the delete, so note its project and assignee
	// up front for the cache invalidation.
	var doomed models.Task
	preRead := h.db.Select("project_id", "assignee_id").First(&doomed, "id = ?", taskID).Error

	if err := h.taskService.DeleteTask(h.db, actorID, taskID); err != nil {
		handleServiceError(c, err)
		return
	}
	if preRead == nil {
		h.invalidate(&doomed)
	}
	c.JSON(http.StatusNoContent, nil)
}
