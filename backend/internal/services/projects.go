package services

import (
	"time"

	"github.com/subhadeepchowdhury41/teamsync-sub000/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type ProjectInput struct {
	Name        string `json:"name" binding:"required,min=1,max=120"`
	Description string `json:"description"`
}

type ProjectService interface {
	CreateProject(db *gorm.DB, actorID uuid.UUID, input ProjectInput) (*models.Project, error)
	UpdateProject(db *gorm.DB, actorID, projectID uuid.UUID, input ProjectInput) (*models.Project, error)
	DeleteProject(db *gorm.DB, actorID, projectID uuid.UUID) error
	GetProject(db *gorm.DB, actorID, projectID uuid.UUID) (*models.Project, error)
	ListProjects(db *gorm.DB, actorID uuid.UUID) ([]models.Project, error)
}

type ProjectServiceImpl struct {
	authz AuthorizationService
}

func NewProjectService(authz AuthorizationService) *ProjectServiceImpl {
	return &ProjectServiceImpl{authz: authz}
}

// CreateProject inserts the project and its owner membership in one
// transaction; a project without an owner row must never exist.
func (s *ProjectServiceImpl) CreateProject(db *gorm.DB, actorID uuid.UUID, input ProjectInput) (*models.Project, error) {
	now := time.Now()
	project := models.Project{
		ID:          uuid.Must(uuid.NewV4()),
		Name:        input.Name,
		Description: input.Description,
		CreatorID:   actorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	if err := tx.Create(&project).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	owner := models.ProjectMember{
		ID:        uuid.Must(uuid.NewV4()),
		ProjectID: project.ID,
		UserID:    actorID,
		Role:      models.RoleOwner,
		CreatedAt: now,
	}
	if err := tx.Create(&owner).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return &project, nil
}

func (s *ProjectServiceImpl) UpdateProject(db *gorm.DB, actorID, projectID uuid.UUID, input ProjectInput) (*models.Project, error) {
	var project models.Project

	err := runInTx(db, func(tx *gorm.DB) error {
		if _, err := s.authz.Authorize(tx, actorID, projectID, ActionEditProject); err != nil {
			return err
		}
		if err := tx.Where("id = ?", projectID).First(&project).Error; err != nil {
			return translateNotFound(err)
		}
		project.Name = input.Name
		project.Description = input.Description
		project.UpdatedAt = time.Now()
		return tx.Save(&project).Error
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// DeleteProject removes the project and everything hanging off it:
// task_tags, comments, tasks, tags and memberships, then the row itself.
func (s *ProjectServiceImpl) DeleteProject(db *gorm.DB, actorID, projectID uuid.UUID) error {
	return runInTx(db, func(tx *gorm.DB) error {
		if _, err := s.authz.Authorize(tx, actorID, projectID, ActionDeleteProject); err != nil {
			return err
		}

		taskIDs := tx.Model(&models.Task{}).Select("id").Where("project_id = ?", projectID)
		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&models.TaskTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.Tag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", projectID).Delete(&models.Project{}).Error
	})
}

func (s *ProjectServiceImpl) GetProject(db *gorm.DB, actorID, projectID uuid.UUID) (*models.Project, error) {
	if _, err := s.authz.Authorize(db, actorID, projectID, ActionView); err != nil {
		return nil, err
	}

	var project models.Project
	if err := db.Where("id = ?", projectID).First(&project).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &project, nil
}

func (s *ProjectServiceImpl) ListProjects(db *gorm.DB, actorID uuid.UUID) ([]models.Project, error) {
	var projects []models.Project
	err := db.
		Joins("JOIN project_members ON project_members.project_id = projects.id").
		Where("project_members.user_id = ?", actorID).
		Order("projects.created_at DESC").
		Find(&projects).Error
	return projects, err
}
