package services

import (
	"errors"
	"testing"
	"time"

	"github.com/subhadeepchowdhury41/teamsync-sub000/backend/internal/models"
)

func TestProjectSummaryCounts(t *testing.T) {
	db := openTestDB(t)
	owner := createTestUser(t, db, "Owner", "owner@example.com")
	member := createTestUser(t, db, "Member", "member@example.com")
	project := createTestProject(t, db, owner.ID, "Board")
	addTestMember(t, db, project.ID, member.ID, models.RoleMember)

	tasks := NewTaskService(NewAuthorizationService())
	if _, err := tasks.CreateTask(db, owner.ID, project.ID, TaskInput{Title: "a"}); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if _, err := tasks.CreateTask(db, owner.ID, project.ID, TaskInput{Title: "b", Status: models.StatusCompleted}); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if _, err := tasks.CreateTask(db, owner.ID, project.ID, TaskInput{Title: "c", Status: models.StatusCompleted}); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	svc := NewDashboardService(NewAuthorizationService())

	summary, err := svc.ProjectSummary(db, member.ID, project.ID)
	if err != nil {
		t.Fatalf("ProjectSummary failed: %v", err)
	}
	if summary.MemberCount != 2 {
		t.Errorf("Expected 2 members, got %d", summary.MemberCount)
	}
	if summary.TaskCount != 3 {
		t.Errorf("Expected 3 tasks, got %d", summary.TaskCount)
	}
	if summary.CompletedCount != 2 {
		t.Errorf("Expected 2 completed tasks, got %d", summary.CompletedCount)
	}
}

func TestProjectSummaryHiddenFromNonMember(t *testing.T) {
	db := openTestDB(t)
	owner := createTestUser(t, db, "Owner", "owner@example.com")
	outsider := createTestUser(t, db, "Outsider", "outsider@example.com")
	project := createTestProject(t, db, owner.ID, "Board")

	svc := NewDashboardService(NewAuthorizationService())

	if _, err := svc.ProjectSummary(db, outsider.ID, project.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for outsider, got %v", err)
	}
}

func TestUserSummaryOverdue(t *testing.T) {
	db := openTestDB(t)
	owner := createTestUser(t, db, "Owner", "owner@example.com")
	project := createTestProject(t, db, owner.ID, "Board")

	tasks := NewTaskService(NewAuthorizationService())
	past := time.Now().Add(-48 * time.Hour)
	future := time.Now().Add(48 * time.Hour)

	// Overdue: past due date, not completed.
	if _, err := tasks.CreateTask(db, owner.ID, project.ID, TaskInput{Title: "late", DueDate: &past, AssigneeID: &owner.ID}); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	// Past due date but completed, so not overdue.
	if _, err := tasks.CreateTask(db, owner.ID, project.ID, TaskInput{Title: "done late", DueDate: &past, Status: models.StatusCompleted, AssigneeID: &owner.ID}); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	// Future due date.
	if _, err := tasks.CreateTask(db, owner.ID, project.ID, TaskInput{Title: "upcoming", DueDate: &future, AssigneeID: &owner.ID}); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	// No due date is never overdue.
	if _, err := tasks.CreateTask(db, owner.ID, project.ID, TaskInput{Title: "open ended", AssigneeID: &owner.ID}); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	// Unassigned tasks never count toward anyone's summary.
	if _, err := tasks.CreateTask(db, owner.ID, project.ID, TaskInput{Title: "nobody's", DueDate: &past}); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	svc := NewDashboardService(NewAuthorizationService())

	summary, err := svc.UserSummary(db, owner.ID)
	if err != nil {
		t.Fatalf("UserSummary failed: %v", err)
	}
	if summary.TotalTasks != 4 {
		t.Errorf("Expected 4 assigned tasks, got %d", summary.TotalTasks)
	}
	if summary.CompletedTasks != 1 {
		t.Errorf("Expected 1 completed task, got %d", summary.CompletedTasks)
	}
	if summary.OverdueTasks != 1 {
		t.Errorf("Expected 1 overdue task, got %d", summary.OverdueTasks)
	}
}
