package deck

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Migrate applies the deck schema using Gorm's AutoMigrate and logs progress.
func Migrate(ctx context.Context, db *gorm.DB, logger *logrus.Logger) error {
	if db == nil {
		return eris.New("gorm DB is required")
	}

	logFields := logrus.Fields{"component": "deck.migrate"}
	if logger != nil {
		logger.WithFields(logFields).Info("applying deck schema")
	}

	if err := db.WithContext(ctx).AutoMigrate(&Record{}, &Bookmark{}); err != nil {
		if logger != nil {
			logger.WithFields(logFields).WithField("error", err.Error()).Error("deck schema migration failed")
		}
		return eris.Wrap(err, "auto migrating deck schema")
	}

	if logger != nil {
		logger.WithFields(logFields).Info("deck schema migration complete")
	}

	return nil
}
