package services

import (
	"errors"

	"gorm.io/gorm"
)

// runInTx wraps a mutator's check-then-act sequence in one transaction.
// Role lookups inside fn observe the same snapshot the mutation commits
// against, so a concurrent demotion cannot slip between check and write.
func runInTx(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
