package db

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/microsoft/vscode-pull-request-github-sub005/internal/pagination"
)

// StateStore saves and restores pagination state.
type StateStore struct {
	db Database
}

// NewStateStore creates a state store over an open database.
func NewStateStore(database Database) *StateStore {
	return &StateStore{db: database}
}

// Save upserts the cursor store's current snapshot.
func (s *StateStore) Save(store *pagination.CursorStore) error {
	cursors, progress := store.Snapshot()

	return s.db.DB().Transaction(func(tx *gorm.DB) error {
		for _, cur := range cursors {
			record := CursorRecord{
				SourceID: cur.Key.SourceID,
				QueryID:  cur.Key.QueryID,
				Page:     cur.Page,
				HasMore:  int(cur.HasMore),
			}

			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "source_id"}, {Name: "query_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"page", "has_more", "updated_at"}),
			}).Create(&record).Error
			if err != nil {
				return fmt.Errorf("failed to save cursor %s/%s: %w", cur.Key.SourceID, cur.Key.QueryID, err)
			}
		}

		for queryID, pages := range progress {
			record := ProgressRecord{QueryID: queryID, Pages: pages}

			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "query_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"pages", "updated_at"}),
			}).Create(&record).Error
			if err != nil {
				return fmt.Errorf("failed to save progress for %s: %w", queryID, err)
			}
		}

		return nil
	})
}

// Load replaces the cursor store's contents with the persisted state.
func (s *StateStore) Load(store *pagination.CursorStore) error {
	var cursorRecords []CursorRecord
	if err := s.db.DB().Find(&cursorRecords).Error; err != nil {
		return fmt.Errorf("failed to load cursors: %w", err)
	}

	var progressRecords []ProgressRecord
	if err := s.db.DB().Find(&progressRecords).Error; err != nil {
		return fmt.Errorf("failed to load progress: %w", err)
	}

	cursors := make([]pagination.Cursor, 0, len(cursorRecords))
	for _, record := range cursorRecords {
		cursors = append(cursors, pagination.Cursor{
			Key: pagination.CursorKey{
				SourceID: record.SourceID,
				QueryID:  record.QueryID,
			},
			Page:    record.Page,
			HasMore: pagination.HasMore(record.HasMore),
		})
	}

	progress := make(map[string]int, len(progressRecords))
	for _, record := range progressRecords {
		progress[record.QueryID] = record.Pages
	}

	store.Hydrate(cursors, progress)

	return nil
}
