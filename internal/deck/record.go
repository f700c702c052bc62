package deck

import (
	"time"

	"gorm.io/gorm"
)

// Record is the persisted row for a deck the server has opened.
type Record struct {
	gorm.Model
	Path       string `gorm:"size:512;uniqueIndex:idx_decks_path;not null"`
	Checksum   string `gorm:"size:64;not null"`
	Title      string `gorm:"size:255"`
	SlideCount int    `gorm:"not null"`
	OpenedAt   time.Time
}

// TableName defines the table name for the Record model.
func (Record) TableName() string {
	return "decks"
}

// Bookmark stores the last-viewed slide index for a deck so a restarted
// presentation resumes where it left off.
type Bookmark struct {
	gorm.Model
	DeckID     uint `gorm:"uniqueIndex:idx_bookmarks_deck;not null"`
	SlideIndex int  `gorm:"not null"`
}

// TableName defines the table name for the Bookmark model.
func (Bookmark) TableName() string {
	return "bookmarks"
}
