package services

import (
	"errors"
	"testing"

	"github.com/subhadeepchowdhury41/teamsync-sub000/backend/internal/models"

	"github.com/gofrs/uuid"
)

func TestCreateProjectMakesCreatorOwner(t *testing.T) {
	db := openTestDB(t)
	user := createTestUser(t, db, "Alice", "alice@example.com")

	svc := NewProjectService(NewAuthorizationService())
	project, err := svc.CreateProject(db, user.ID, ProjectInput{Name: "Website", Description: "Relaunch"})
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}

	if project.CreatorID != user.ID {
		t.Errorf("Expected creator %s, got %s", user.ID, project.CreatorID)
	}

	var member models.ProjectMember
	if err := db.Where("project_id = ? AND user_id = ?", project.ID, user.ID).First(&member).Error; err != nil {
		t.Fatalf("Expected owner membership row: %v", err)
	}
	if member.Role != models.RoleOwner {
		t.Errorf("Expected owner role, got %s", member.Role)
	}
}

func TestUpdateProjectRequiresEditRights(t *testing.T) {
	db := openTestDB(t)
	owner := createTestUser(t, db, "Owner", "owner@example.com")
	admin := createTestUser(t, db, "Admin", "admin@example.com")
	member := createTestUser(t, db, "Member", "member@example.com")
	project := createTestProject(t, db, owner.ID, "Before")
	addTestMember(t, db, project.ID, admin.ID, models.RoleAdmin)
	addTestMember(t, db, project.ID, member.ID, models.RoleMember)

	svc := NewProjectService(NewAuthorizationService())

	_, err := svc.UpdateProject(db, member.ID, project.ID, ProjectInput{Name: "Nope"})
	if !isForbidden(err) {
		t.Errorf("Expected ForbiddenError for member, got %v", err)
	}

	updated, err := svc.UpdateProject(db, admin.ID, project.ID, ProjectInput{Name: "After", Description: "d"})
	if err != nil {
		t.Fatalf("UpdateProject by admin failed: %v", err)
	}
	if updated.Name != "After" {
		t.Errorf("Expected name After, got %s", updated.Name)
	}
}

func TestGetProjectHiddenFromNonMember(t *testing.T) {
	db := openTestDB(t)
	owner := createTestUser(t, db, "Owner", "owner@example.com")
	outsider := createTestUser(t, db, "Outsider", "outsider@example.com")
	project := createTestProject(t, db, owner.ID, "Secret")

	svc := NewProjectService(NewAuthorizationService())

	_, err := svc.GetProject(db, outsider.ID, project.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	_, err = svc.GetProject(db, owner.ID, uuid.Must(uuid.NewV4()))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing project, got %v", err)
	}
}

func TestListProjectsOnlyMemberships(t *testing.T) {
	db := openTestDB(t)
	alice := createTestUser(t, db, "Alice", "alice@example.com")
	bob := createTestUser(t, db, "Bob", "bob@example.com")

	createTestProject(t, db, alice.ID, "Alpha")
	shared := createTestProject(t, db, alice.ID, "Shared")
	createTestProject(t, db, bob.ID, "Bravo")
	addTestMember(t, db, shared.ID, bob.ID, models.RoleMember)

	svc := NewProjectService(NewAuthorizationService())

	aliceProjects, err := svc.ListProjects(db, alice.ID)
	if err != nil {
		t.Fatalf("ListProjects failed: %v", err)
	}
	if len(aliceProjects) != 2 {
		t.Errorf("Expected 2 projects for alice, got %d", len(aliceProjects))
	}

	bobProjects, err := svc.ListProjects(db, bob.ID)
	if err != nil {
		t.Fatalf("ListProjects failed: %v", err)
	}
	if len(bobProjects) != 2 {
		t.Errorf("Expected 2 projects for bob, got %d", len(bobProjects))
	}
}

func TestDeleteProjectCascades(t *testing.T) {
	db := openTestDB(t)
	owner := createTestUser(t, db, "Owner", "owner@example.com")
	admin := createTestUser(t, db, "Admin", "admin@example.com")
	project := createTestProject(t, db, owner.ID, "Doomed")
	addTestMember(t, db, project.ID, admin.ID, models.RoleAdmin)

	authz := NewAuthorizationService()
	taskSvc := NewTaskService(authz)
	tagSvc := NewTagService(authz)
	commentSvc := NewCommentService(authz, nil)

	tag, err := tagSvc.CreateTag(db, owner.ID, project.ID, TagInput{Name: "bug"})
	if err != nil {
		t.Fatalf("CreateTag failed: %v", err)
	}
	tagIDs := []uuid.UUID{tag.ID}
	task, err := taskSvc.CreateTask(db, owner.ID, project.ID, TaskInput{Title: "t", TagIDs: &tagIDs})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if _, err := commentSvc.CreateComment(db, owner.ID, task.ID, CommentInput{Content: "hi"}); err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}

	svc := NewProjectService(authz)

	// Only the owner may delete.
	if err := svc.DeleteProject(db, admin.ID, project.ID); !isForbidden(err) {
		t.Errorf("Expected ForbiddenError for admin, got %v", err)
	}

	if err := svc.DeleteProject(db, owner.ID, project.ID); err != nil {
		t.Fatalf("DeleteProject failed: %v", err)
	}

	tables := map[string]interface{}{
		"projects":        &models.Project{},
		"project_members": &models.ProjectMember{},
		"tasks":           &models.Task{},
		"tags":            &models.Tag{},
		"comments":        &models.Comment{},
	}
	for name, model := range tables {
		var count int64
		if err := db.Model(model).Count(&count).Error; err != nil {
			t.Fatalf("count %s failed: %v", name, err)
		}
		if count != 0 {
			t.Errorf("Expected %s to be empty after cascade, got %d rows", name, count)
		}
	}

	var taskTags int64
	if err := db.Model(&models.TaskTag{}).Count(&taskTags).Error; err != nil {
		t.Fatalf("count task_tags failed: %v", err)
	}
	if taskTags != 0 {
		t.Errorf("Expected task_tags to be empty after cascade, got %d rows", taskTags)
	}
}
