package migrations

import (
	"gorm.io/gorm"
)

const preferencesTable = "binary_preferences"

// backfillTradingMode normalizes rows written before trading_mode had a default.
func backfillTradingMode(db *gorm.DB) error {
	if !db.Migrator().HasTable(preferencesTable) {
		return nil
	}
	if err := db.Exec("UPDATE binary_preferences SET trading_mode = 'demo' WHERE trading_mode IS NULL OR trading_mode = ''").Error; err != nil {
		return err
	}
	return db.Exec("UPDATE binary_preferences SET trading_mode = LOWER(trading_mode) WHERE trading_mode <> LOWER(trading_mode)").Error
}

// clearNegativeDemoBalance resets demo balances the store would refuse to load.
func clearNegativeDemoBalance(db *gorm.DB) error {
	if !db.Migrator().HasTable(preferencesTable) {
		return nil
	}
	return db.Exec("UPDATE binary_preferences SET demo_balance = 0 WHERE demo_balance < 0").Error
}
