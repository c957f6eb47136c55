package services

import (
	"testing"

	"github.com/subhadeepchowdhury41/teamsync-sub000/backend/internal/models"

	"github.com/gofrs/uuid"
)

func TestCreateTagRequiresManageRights(t *testing.T) {
	db := openTestDB(t)
	owner := createTestUser(t, db, "Owner", "owner@example.com")
	member := createTestUser(t, db, "Member", "member@example.com")
	project := createTestProject(t, db, owner.ID, "Board")
	addTestMember(t, db, project.ID, member.ID, models.RoleMember)

	svc := NewTagService(NewAuthorizationService())

	_, err := svc.CreateTag(db, member.ID, project.ID, TagInput{Name: "bug"})
	if !isForbidden(err) {
		t.Errorf("Expected ForbiddenError for member, got %v", err)
	}

	tag, err := svc.CreateTag(db, owner.ID, project.ID, TagInput{Name: "bug"})
	if err != nil {
		t.Fatalf("CreateTag failed: %v", err)
	}
	if tag.Color != "#808080" {
		t.Errorf("Expected default color, got %s", tag.Color)
	}
}

func TestTagNameConflictIsCaseInsensitive(t *testing.T) {
	db := openTestDB(t)
	owner := createTestUser(t, db, "Owner", "owner@example.com")
	project := createTestProject(t, db, owner.ID, "Board")
	otherProject := createTestProject(t, db, owner.ID, "Other")

	svc := NewTagService(NewAuthorizationService())

	if _, err := svc.CreateTag(db, owner.ID, project.ID, TagInput{Name: "Bug"}); err != nil {
		t.Fatalf("CreateTag failed: %v", err)
	}

	_, err := svc.CreateTag(db, owner.ID, project.ID, TagInput{Name: "BUG"})
	if !isConflict(err) {
		t.Errorf("Expected ConflictError for case variant, got %v", err)
	}

	// Same name in a different project is fine.
	if _, err := svc.CreateTag(db, owner.ID, otherProject.ID, TagInput{Name: "bug"}); err != nil {
		t.Errorf("Expected no conflict across projects, got %v", err)
	}
}

func TestUpdateTagRenameConflict(t *testing.T) {
	db := openTestDB(t)
	owner := createTestUser(t, db, "Owner", "owner@example.com")
	project := createTestProject(t, db, owner.ID, "Board")

	svc := NewTagService(NewAuthorizationService())

	bug, err := svc.CreateTag(db, owner.ID, project.ID, TagInput{Name: "bug"})
	if err != nil {
		t.Fatalf("CreateTag failed: %v", err)
	}
	if _, err := svc.CreateTag(db, owner.ID, project.ID, TagInput{Name: "feature"}); err != nil {
		t.Fatalf("CreateTag failed: %v", err)
	}

	_, err = svc.UpdateTag(db, owner.ID, bug.ID, TagInput{Name: "Feature"})
	if !isConflict(err) {
		t.Errorf("Expected ConflictError renaming onto existing name, got %v", err)
	}

	// Renaming to itself (case change) is allowed.
	renamed, err := svc.UpdateTag(db, owner.ID, bug.ID, TagInput{Name: "BUG", Color: "#ff0000"})
	if err != nil {
		t.Fatalf("UpdateTag failed: %v", err)
	}
	if renamed.Name != "BUG" || renamed.Color != "#ff0000" {
		t.Errorf("Unexpected tag after rename: %+v", renamed)
	}
}

func TestDeleteTagClearsAssociations(t *testing.T) {
	db := openTestDB(t)
	owner := createTestUser(t, db, "Owner", "owner@example.com")
	project := createTestProject(t, db, owner.ID, "Board")

	authz := NewAuthorizationService()
	tagSvc := NewTagService(authz)
	taskSvc := NewTaskService(authz)

	tag, err := tagSvc.CreateTag(db, owner.ID, project.ID, TagInput{Name: "bug"})
	if err != nil {
		t.Fatalf("CreateTag failed: %v", err)
	}
	tagIDs := []uuid.UUID{tag.ID}
	task, err := taskSvc.CreateTask(db, owner.ID, project.ID, TaskInput{Title: "t", TagIDs: &tagIDs})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	if err := tagSvc.DeleteTag(db, owner.ID, tag.ID); err != nil {
		t.Fatalf("DeleteTag failed: %v", err)
	}

	var count int64
	if err := db.Model(&models.TaskTag{}).Where("task_id = ?", task.ID).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected no task_tags rows after delete, got %d", count)
	}

	got, err := taskSvc.GetTaskByID(db, owner.ID, task.ID)
	if err != nil {
		t.Fatalf("GetTaskByID failed: %v", err)
	}
	if len(got.Tags) != 0 {
		t.Errorf("Expected task with no tags, got %+v", got.Tags)
	}
}
