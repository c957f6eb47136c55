package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/subhadeepchowdhury41/teamsync-sub000/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type TagInput struct {
	Name  string `json:"name" binding:"required,min=1,max=50"`
	Color string `json:"color"`
}

type TagService interface {
	CreateTag(db *gorm.DB, actorID, projectID uuid.UUID, input TagInput) (*models.Tag, error)
	UpdateTag(db *gorm.DB, actorID, tagID uuid.UUID, input TagInput) (*models.Tag, error)
	DeleteTag(db *gorm.DB, actorID, tagID uuid.UUID) error
	ListTags(db *gorm.DB, actorID, projectID uuid.UUID) ([]models.Tag, error)
}

type TagServiceImpl struct {
	authz AuthorizationService
}

func NewTagService(authz AuthorizationService) *TagServiceImpl {
	return &TagServiceImpl{authz: authz}
}

func (s *TagServiceImpl) CreateTag(db *gorm.DB, actorID, projectID uuid.UUID, input TagInput) (*models.Tag, error) {
	var tag models.Tag

	err := runInTx(db, func(tx *gorm.DB) error {
		if _, err := s.authz.Authorize(tx, actorID, projectID, ActionManageTags); err != nil {
			return err
		}

		if err := s.checkNameFree(tx, projectID, input.Name, uuid.Nil); err != nil {
			return err
		}

		now := time.Now()
		color := input.Color
		if color == "" {
			color = "#808080"
		}
		tag = models.Tag{
			ID:        uuid.Must(uuid.NewV4()),
			ProjectID: projectID,
			Name:      input.Name,
			Color:     color,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return tx.Create(&tag).Error
	})
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

func (s *TagServiceImpl) UpdateTag(db *gorm.DB, actorID, tagID uuid.UUID, input TagInput) (*models.Tag, error) {
	var tag models.Tag

	err := runInTx(db, func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", tagID).First(&tag).Error; err != nil {
			return translateNotFound(err)
		}
		if _, err := s.authz.Authorize(tx, actorID, tag.ProjectID, ActionManageTags); err != nil {
			return err
		}

		if err := s.checkNameFree(tx, tag.ProjectID, input.Name, tag.ID); err != nil {
			return err
		}

		tag.Name = input.Name
		if input.Color != "" {
			tag.Color = input.Color
		}
		tag.UpdatedAt = time.Now()
		return tx.Save(&tag).Error
	})
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// DeleteTag drops the task associations before the tag row itself.
func (s *TagServiceImpl) DeleteTag(db *gorm.DB, actorID, tagID uuid.UUID) error {
	return runInTx(db, func(tx *gorm.DB) error {
		var tag models.Tag
		if err := tx.Where("id = ?", tagID).First(&tag).Error; err != nil {
			return translateNotFound(err)
		}
		if _, err := s.authz.Authorize(tx, actorID, tag.ProjectID, ActionManageTags); err != nil {
			return err
		}

		if err := tx.Where("tag_id = ?", tag.ID).Delete(&models.TaskTag{}).Error; err != nil {
			return err
		}
		return tx.Delete(&tag).Error
	})
}

func (s *TagServiceImpl) ListTags(db *gorm.DB, actorID, projectID uuid.UUID) ([]models.Tag, error) {
	if _, err := s.authz.Authorize(db, actorID, projectID, ActionView); err != nil {
		return nil, err
	}

	var tags []models.Tag
	err := db.Where("project_id = ?", projectID).Order("name ASC").Find(&tags).Error
	return tags, err
}

// Tag names collide case-insensitively within a project.
func (s *TagServiceImpl) checkNameFree(tx *gorm.DB, projectID uuid.UUID, name string, excludeID uuid.UUID) error {
	var existing models.Tag
	query := tx.Where("project_id = ? AND LOWER(name) = LOWER(?)", projectID, name)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.First(&existing).Error
	if err == nil {
		return conflict(fmt.Sprintf("tag %q already exists in this project", name))
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}
