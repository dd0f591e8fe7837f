package db

import "time"

// CursorRecord persists one (source, query) pagination cursor.
type CursorRecord struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	SourceID string `gorm:"uniqueIndex:idx_cursor_stream;size:512;not null"`
	QueryID  string `gorm:"uniqueIndex:idx_cursor_stream;size:512;not null"`
	Page     int    `gorm:"not null"`
	HasMore  int    `gorm:"not null"` // tri-state, mirrors the in-memory flag
}

// TableName overrides the default table name
func (CursorRecord) TableName() string {
	return "cursors"
}

// ProgressRecord persists the total-pages-fetched baseline of one query.
type ProgressRecord struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	QueryID string `gorm:"uniqueIndex;size:512;not null"`
	Pages   int    `gorm:"not null"`
}

// TableName overrides the default table name
func (ProgressRecord) TableName() string {
	return "progress"
}
