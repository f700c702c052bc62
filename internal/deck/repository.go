package deck

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository defines persistence operations for deck records and their
// bookmarks.
type Repository interface {
	GetByPath(ctx context.Context, path string) (*Record, error)
	Upsert(ctx context.Context, record *Record) error
	SaveBookmark(ctx context.Context, deckID uint, index int) error
	GetBookmark(ctx context.Context, deckID uint) (int, bool, error)
}

// GormRepository persists deck records using a Gorm database connection.
type GormRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewRepository constructs a Gorm-backed repository implementation.
func NewRepository(db *gorm.DB, logger *logrus.Logger) (*GormRepository, error) {
	if db == nil {
		return nil, eris.New("gorm DB is required")
	}

	return &GormRepository{db: db, logger: logger}, nil
}

var _ Repository = (*GormRepository)(nil)

// GetByPath returns the deck record for the given source path or nil when
// the deck has never been opened.
func (r *GormRepository) GetByPath(ctx context.Context, path string) (*Record, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, eris.New("deck path is required")
	}

	var record Record
	err := r.db.WithContext(ctx).First(&record, "path = ?", trimmed).Error
	if err != nil {
		if eris.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logError(logrus.Fields{"path": trimmed}, err, "fetching deck by path")
		return nil, eris.Wrapf(err, "fetching deck by path: %s", trimmed)
	}

	return &record, nil
}

// Upsert stores the deck record, inserting or updating the row keyed by
// source path.
func (r *GormRepository) Upsert(ctx context.Context, record *Record) error {
	if record == nil {
		return eris.New("deck record is nil")
	}

	record.Path = strings.TrimSpace(record.Path)
	if record.Path == "" {
		return eris.New("deck path is required")
	}

	if record.OpenedAt.IsZero() {
		record.OpenedAt = time.Now()
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "path"}},
			DoUpdates: clause.AssignmentColumns([]string{"checksum", "title", "slide_count", "opened_at", "updated_at"}),
		}).
		Create(record).Error
	if err != nil {
		r.logError(logrus.Fields{"path": record.Path}, err, "saving deck record")
		return eris.Wrapf(err, "saving deck record: %s", record.Path)
	}

	if record.ID == 0 {
		stored, lookupErr := r.GetByPath(ctx, record.Path)
		if lookupErr != nil {
			return lookupErr
		}
		if stored != nil {
			record.ID = stored.ID
		}
	}

	return nil
}

// SaveBookmark persists the last-viewed slide index for a deck.
func (r *GormRepository) SaveBookmark(ctx context.Context, deckID uint, index int) error {
	if deckID == 0 {
		return eris.New("deck id is required")
	}
	if index < 0 {
		return eris.Errorf("bookmark index must not be negative: %d", index)
	}

	bookmark := Bookmark{DeckID: deckID, SlideIndex: index}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "deck_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"slide_index", "updated_at"}),
		}).
		Create(&bookmark).Error
	if err != nil {
		r.logError(logrus.Fields{"deck_id": deckID, "index": index}, err, "saving bookmark")
		return eris.Wrapf(err, "saving bookmark for deck %d", deckID)
	}

	return nil
}

// GetBookmark returns the stored slide index for a deck. The boolean is
// false when no bookmark exists yet.
func (r *GormRepository) GetBookmark(ctx context.Context, deckID uint) (int, bool, error) {
	if deckID == 0 {
		return 0, false, eris.New("deck id is required")
	}

	var bookmark Bookmark
	err := r.db.WithContext(ctx).First(&bookmark, "deck_id = ?", deckID).Error
	if err != nil {
		if eris.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		r.logError(logrus.Fields{"deck_id": deckID}, err, "fetching bookmark")
		return 0, false, eris.Wrapf(err, "fetching bookmark for deck %d", deckID)
	}

	return bookmark.SlideIndex, true, nil
}

func (r *GormRepository) logError(fields logrus.Fields, err error, message string) {
	if r.logger == nil {
		return
	}

	entry := r.logger.WithField("error", err.Error())
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Error(message)
}
