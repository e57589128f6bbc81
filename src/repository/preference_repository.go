package repository

import (
	"context"
	"errors"

	"binarytrader/src/database"
	"binarytrader/src/model"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PreferenceRepository persists the UI preference row of each profile.
type PreferenceRepository struct {
	db *gorm.DB
}

// NewPreferenceRepository uses the main database.
func NewPreferenceRepository() *PreferenceRepository {
	logger.WithField("component", "PreferenceRepository").
		Info("Creating new PreferenceRepository with MainDB")

	return &PreferenceRepository{db: database.MainDB}
}

func (r *PreferenceRepository) WithDB(db *gorm.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// Load returns nil without error when the profile has no row yet.
func (r *PreferenceRepository) Load(ctx context.Context, profile string) (*model.Preference, error) {
	var pref model.Preference
	err := r.db.WithContext(ctx).Where("profile = ?", profile).First(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":    "PreferenceRepository",
			"op":      "Load",
			"profile": profile,
		}).WithError(err).Error("Failed to load preferences")
		return nil, err
	}
	return &pref, nil
}

// Save upserts by profile.
func (r *PreferenceRepository) Save(ctx context.Context, pref *model.Preference) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "profile"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"symbol",
				"timeframe",
				"demo_balance",
				"trading_mode",
				"expiry_minutes",
				"order_type",
				"updated_at",
			}),
		}).
		Create(pref).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":    "PreferenceRepository",
			"op":      "Save",
			"profile": pref.Profile,
		}).WithError(err).Error("Failed to save preferences")
		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo":    "PreferenceRepository",
		"profile": pref.Profile,
		"symbol":  pref.Symbol,
		"mode":    pref.TradingMode,
	}).Debug("Preferences saved")
	return nil
}
