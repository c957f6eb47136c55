package services

import (
	"errors"
	"testing"
	"time"

	"github.com/subhadeepchowdhury41/teamsync-sub000/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

func seedNotification(t *testing.T, db *gorm.DB, userID uuid.UUID, read bool) *models.Notification {
	t.Helper()

	notif := models.Notification{
		ID:        uuid.Must(uuid.NewV4()),
		UserID:    userID,
		Type:      models.NotificationComment,
		Title:     "New comment",
		Read:      read,
		CreatedAt: time.Now(),
	}
	if err := db.Create(&notif).Error; err != nil {
		t.Fatalf("failed to seed notification: %v", err)
	}
	return &notif
}

func TestListNotificationsUnreadFilter(t *testing.T) {
	db := openTestDB(t)
	user := createTestUser(t, db, "User", "user@example.com")
	other := createTestUser(t, db, "Other", "other@example.com")

	seedNotification(t, db, user.ID, false)
	seedNotification(t, db, user.ID, true)
	seedNotification(t, db, other.ID, false)

	svc := NewNotificationService()

	all, err := svc.ListNotifications(db, user.ID, false)
	if err != nil {
		t.Fatalf("ListNotifications failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Expected 2 notifications, got %d", len(all))
	}

	unread, err := svc.ListNotifications(db, user.ID, true)
	if err != nil {
		t.Fatalf("ListNotifications failed: %v", err)
	}
	if len(unread) != 1 {
		t.Errorf("Expected 1 unread notification, got %d", len(unread))
	}
}

func TestMarkReadRecipientOnly(t *testing.T) {
	db := openTestDB(t)
	user := createTestUser(t, db, "User", "user@example.com")
	other := createTestUser(t, db, "Other", "other@example.com")
	notif := seedNotification(t, db, user.ID, false)

	svc := NewNotificationService()

	// Somebody else's notification reads as missing.
	if err := svc.MarkRead(db, other.ID, notif.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for non-recipient, got %v", err)
	}

	if err := svc.MarkRead(db, user.ID, notif.ID); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}

	var got models.Notification
	if err := db.First(&got, "id = ?", notif.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if !got.Read {
		t.Error("Expected notification to be read")
	}
}

func TestMarkAllRead(t *testing.T) {
	db := openTestDB(t)
	user := createTestUser(t, db, "User", "user@example.com")
	seedNotification(t, db, user.ID, false)
	seedNotification(t, db, user.ID, false)
	seedNotification(t, db, user.ID, true)

	svc := NewNotificationService()

	updated, err := svc.MarkAllRead(db, user.ID)
	if err != nil {
		t.Fatalf("MarkAllRead failed: %v", err)
	}
	if updated != 2 {
		t.Errorf("Expected 2 rows updated, got %d", updated)
	}

	unread, err := svc.ListNotifications(db, user.ID, true)
	if err != nil {
		t.Fatalf("ListNotifications failed: %v", err)
	}
	if len(unread) != 0 {
		t.Errorf("Expected no unread notifications, got %d", len(unread))
	}
}

func TestDeleteNotificationRecipientOnly(t *testing.T) {
	db := openTestDB(t)
	user := createTestUser(t, db, "User", "user@example.com")
	other := createTestUser(t, db, "Other", "other@example.com")
	notif := seedNotification(t, db, user.ID, false)

	svc := NewNotificationService()

	if err := svc.DeleteNotification(db, other.ID, notif.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for non-recipient, got %v", err)
	}

	if err := svc.DeleteNotification(db, user.ID, notif.ID); err != nil {
		t.Fatalf("DeleteNotification failed: %v", err)
	}

	if err := svc.DeleteNotification(db, user.ID, notif.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for already deleted, got %v", err)
	}
}
