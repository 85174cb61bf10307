package store

import (
	"log"

	"gorm.io/gorm"
)

// RegisterHooks registers GORM callbacks implementing write-through
// invalidation: any create or update whose context does not carry
// OriginSync forces synced_with_forcemanager=false on models that have
// the flag. The sync engine itself writes with OriginSync and is
// exempt.
func RegisterHooks(db *gorm.DB) {
	invalidate := func(tx *gorm.DB) {
		if tx.Error != nil || tx.Statement.Schema == nil {
			return
		}
		if OriginFrom(tx.Statement.Context) == OriginSync {
			return
		}
		field := tx.Statement.Schema.LookUpField("Synced")
		if field == nil || field.DBName != "synced_with_forcemanager" {
			return
		}
		tx.Statement.SetColumn("Synced", false)
	}

	db.Callback().Create().Before("gorm:create").Register("fmbridge:dirty_on_create", invalidate)
	db.Callback().Update().Before("gorm:update").Register("fmbridge:dirty_on_update", invalidate)

	log.Println("✅ Record store sync hooks registered")
}
