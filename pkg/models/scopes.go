package models

import "gorm.io/gorm"

// UserRefColumns limits a preloaded user to the fields listings expose.
func UserRefColumns(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "email", "role")
}

// CaseRefColumns limits a preloaded case to its identifying fields.
func CaseRefColumns(db *gorm.DB) *gorm.DB {
	return db.Select("id", "case_number", "title", "status")
}
