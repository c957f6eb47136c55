package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/subhadeepchowdhury41/teamsync-sub000/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type AddMemberInput struct {
	Email string      `json:"email" binding:"required,email"`
	Role  models.Role `json:"role" binding:"required"`
}

type UpdateMemberRoleInput struct {
	Role models.Role `json:"role" binding:"required"`
}

type MemberService interface {
	AddMember(db *gorm.DB, actorID, projectID uuid.UUID, input AddMemberInput) (*models.ProjectMember, error)
	UpdateMemberRole(db *gorm.DB, actorID, projectID, targetUserID uuid.UUID, role models.Role) (*models.ProjectMember, error)
	RemoveMember(db *gorm.DB, actorID, projectID, targetUserID uuid.UUID) error
	ListMembers(db *gorm.DB, actorID, projectID uuid.UUID) ([]models.ProjectMember, error)
}

type MemberServiceImpl struct {
	authz AuthorizationService
}

func NewMemberService(authz AuthorizationService) *MemberServiceImpl {
	return &MemberServiceImpl{authz: authz}
}

func (s *MemberServiceImpl) AddMember(db *gorm.DB, actorID, projectID uuid.UUID, input AddMemberInput) (*models.ProjectMember, error) {
	if !input.Role.Valid() {
		return nil, validation(fmt.Sprintf("invalid role %q", input.Role))
	}
	if input.Role == models.RoleOwner {
		return nil, forbidden("a project has exactly one owner")
	}

	var member models.ProjectMember

	err := runInTx(db, func(tx *gorm.DB) error {
		if _, err := s.authz.Authorize(tx, actorID, projectID, ActionManageMembers); err != nil {
			return err
		}

		var user models.User
		if err := tx.Where("email = ?", input.Email).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return validation("no user with that email")
			}
			return err
		}

		existing, err := s.authz.Membership(tx, projectID, user.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return conflict("user is already a project member")
		}

		now := time.Now()
		member = models.ProjectMember{
			ID:        uuid.Must(uuid.NewV4()),
			ProjectID: projectID,
			UserID:    user.ID,
			Role:      input.Role,
			CreatedAt: now,
		}
		if err := tx.Create(&member).Error; err != nil {
			return err
		}

		var project models.Project
		if err := tx.Where("id = ?", projectID).First(&project).Error; err != nil {
			return translateNotFound(err)
		}

		notif := models.Notification{
			ID:        uuid.Must(uuid.NewV4()),
			UserID:    user.ID,
			SenderID:  &actorID,
			Type:      models.NotificationMemberAdded,
			Title:     "Added to project",
			Message:   fmt.Sprintf("You were added to %q as %s", project.Name, input.Role),
			CreatedAt: now,
		}
		return tx.Create(&notif).Error
	})
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// UpdateMemberRole enforces the management hierarchy: the owner row is
// immutable, owner cannot be granted, and an admin may only touch plain
// members.
func (s *MemberServiceImpl) UpdateMemberRole(db *gorm.DB, actorID, projectID, targetUserID uuid.UUID, role models.Role) (*models.ProjectMember, error) {
	if !role.Valid() {
		return nil, validation(fmt.Sprintf("invalid role %q", role))
	}
	if role == models.RoleOwner {
		return nil, forbidden("ownership cannot be granted")
	}

	var target models.ProjectMember

	err := runInTx(db, func(tx *gorm.DB) error {
		decision, err := s.authz.Authorize(tx, actorID, projectID, ActionManageMembers)
		if err != nil {
			return err
		}

		if err := tx.Where("project_id = ? AND user_id = ?", projectID, targetUserID).First(&target).Error; err != nil {
			return translateNotFound(err)
		}

		if target.Role == models.RoleOwner {
			return forbidden("the owner role cannot be changed")
		}
		if decision.Role == models.RoleAdmin && target.Role == models.RoleAdmin {
			return forbidden("admins cannot modify other admins")
		}

		target.Role = role
		return tx.Save(&target).Error
	})
	if err != nil {
		return nil, err
	}
	return &target, nil
}

func (s *MemberServiceImpl) RemoveMember(db *gorm.DB, actorID, projectID, targetUserID uuid.UUID) error {
	return runInTx(db, func(tx *gorm.DB) error {
		actor, err := s.authz.Membership(tx, projectID, actorID)
		if err != nil {
			return err
		}
		if actor == nil {
			return ErrNotFound
		}

		var target models.ProjectMember
		if err := tx.Where("project_id = ? AND user_id = ?", projectID, targetUserID).First(&target).Error; err != nil {
			return translateNotFound(err)
		}

		if target.Role == models.RoleOwner {
			return forbidden("the owner cannot be removed from the project")
		}

		// Leaving a project is always allowed for non-owners; removing
		// someone else requires member management rights.
		if actorID != targetUserID {
			decision, err := s.authz.Authorize(tx, actorID, projectID, ActionManageMembers)
			if err != nil {
				return err
			}
			if decision.Role == models.RoleAdmin && target.Role == models.RoleAdmin {
				return forbidden("admins cannot remove other admins")
			}
		}

		return tx.Delete(&target).Error
	})
}

func (s *MemberServiceImpl) ListMembers(db *gorm.DB, actorID, projectID uuid.UUID) ([]models.ProjectMember, error) {
	if _, err := s.authz.Authorize(db, actorID, projectID, ActionView); err != nil {
		return nil, err
	}

	var members []models.ProjectMember
	err := db.Preload("User").
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&members).Error
	return members, err
}
