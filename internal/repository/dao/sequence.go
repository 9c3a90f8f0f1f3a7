package dao

import "gorm.io/gorm"

// nextID computes the next id for a table as max(id)+1, or 1 when the
// table is empty. Inserts run it inside their own transaction so two
// concurrent creates against the same table serialize on the insert
// rather than racing the read.
func nextID(tx *gorm.DB, table string) (uint, error) {
	var next uint
	err := tx.Table(table).
		Select("COALESCE(MAX(id), 0) + 1").
		Scan(&next).Error
	if err != nil {
		return 0, err
	}

	return next, nil
}
