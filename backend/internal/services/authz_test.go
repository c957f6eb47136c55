package services

import (
	"errors"
	"testing"

	"github.com/subhadeepchowdhury41/teamsync-sub000/backend/internal/models"
)

func TestAuthorizeNonMemberHidesProject(t *testing.T) {
	db := openTestDB(t)
	owner := createTestUser(t, db, "Owner", "owner@example.com")
	outsider := createTestUser(t, db, "Outsider", "outsider@example.com")
	project := createTestProject(t, db, owner.ID, "Hidden")

	authz := NewAuthorizationService()

	decision, err := authz.Evaluate(db, outsider.ID, project.ID, ActionView)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if decision.Allowed || decision.Role != "" {
		t.Errorf("Expected empty decision for non-member, got %+v", decision)
	}

	_, err = authz.Authorize(db, outsider.ID, project.ID, ActionView)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for non-member, got %v", err)
	}
}

func TestRolePermissionMatrix(t *testing.T) {
	db := openTestDB(t)
	owner := createTestUser(t, db, "Owner", "owner@example.com")
	admin := createTestUser(t, db, "Admin", "admin@example.com")
	member := createTestUser(t, db, "Member", "member@example.com")
	project := createTestProject(t, db, owner.ID, "Matrix")
	addTestMember(t, db, project.ID, admin.ID, models.RoleAdmin)
	addTestMember(t, db, project.ID, member.ID, models.RoleMember)

	authz := NewAuthorizationService()

	cases := []struct {
		name    string
		actor   string
		action  Action
		allowed bool
	}{
		{"member can view", "member", ActionView, true},
		{"member can create tasks", "member", ActionCreateTask, true},
		{"member can comment", "member", ActionComment, true},
		{"member cannot edit any task", "member", ActionEditAnyTask, false},
		{"member cannot manage members", "member", ActionManageMembers, false},
		{"member cannot manage tags", "member", ActionManageTags, false},
		{"member cannot edit project", "member", ActionEditProject, false},
		{"admin can edit any task", "admin", ActionEditAnyTask, true},
		{"admin can delete any task", "admin", ActionDeleteAnyTask, true},
		{"admin can manage members", "admin", ActionManageMembers, true},
		{"admin can manage tags", "admin", ActionManageTags, true},
		{"admin can edit project", "admin", ActionEditProject, true},
		{"admin cannot delete project", "admin", ActionDeleteProject, false},
		{"owner can delete project", "owner", ActionDeleteProject, true},
		{"owner can manage members", "owner", ActionManageMembers, true},
	}

	actors := map[string]*models.User{"owner": owner, "admin": admin, "member": member}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			decision, err := authz.Evaluate(db, actors[tc.actor].ID, project.ID, tc.action)
			if err != nil {
				t.Fatalf("Evaluate failed: %v", err)
			}
			if decision.Allowed != tc.allowed {
				t.Errorf("Expected allowed=%v, got %+v", tc.allowed, decision)
			}

			_, err = authz.Authorize(db, actors[tc.actor].ID, project.ID, tc.action)
			if tc.allowed && err != nil {
				t.Errorf("Expected Authorize to pass, got %v", err)
			}
			if !tc.allowed && !isForbidden(err) {
				t.Errorf("Expected ForbiddenError, got %v", err)
			}
		})
	}
}

func TestMembershipReturnsNilForNonMember(t *testing.T) {
	db := openTestDB(t)
	owner := createTestUser(t, db, "Owner", "owner@example.com")
	outsider := createTestUser(t, db, "Outsider", "outsider@example.com")
	project := createTestProject(t, db, owner.ID, "Membership")

	authz := NewAuthorizationService()

	member, err := authz.Membership(db, project.ID, outsider.ID)
	if err != nil {
		t.Fatalf("Membership failed: %v", err)
	}
	if member != nil {
		t.Errorf("Expected nil membership, got %+v", member)
	}

	ownerRow, err := authz.Membership(db, project.ID, owner.ID)
	if err != nil {
		t.Fatalf("Membership failed: %v", err)
	}
	if ownerRow == nil || ownerRow.Role != models.RoleOwner {
		t.Errorf("Expected owner membership, got %+v", ownerRow)
	}
}
