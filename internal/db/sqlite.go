package db

import (
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/teachmate/teachmate/internal/db/models"
)

// InitDB opens the SQLite database and runs migrations.
func InitDB(dbPath string) (*gorm.DB, error) {
	gdb, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	if err := gdb.AutoMigrate(
		&models.User{},
		&models.Account{},
		&models.Course{},
		&models.Document{},
		&models.Post{},
		&models.Comment{},
		&models.Quiz{},
		&models.QuizQuestion{},
	); err != nil {
		return nil, err
	}

	return gdb, nil
}
