package dao

import "gorm.io/gorm"

func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(
		&Entrant{},
		&Event{},
		&RosterEntry{},
		&WaitlistEntry{},
		&InvitedEntry{},
		&CancelledEntry{},
		&Notification{},
	)
}
