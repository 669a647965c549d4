package database

import (
	"log"

	"todo-tracker-api/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// InitDB opens the SQLite database file and runs migrations.
// Using glebarez/sqlite which is a pure Go implementation (no CGO required).
// Foreign keys are switched on via pragma so cascade deletes apply.
func InitDB(path string) {
	var err error

	DB, err = gorm.Open(sqlite.Open(path+"?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})

	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatal("Failed to migrate database: ", err)
	}

	log.Println("Database connected and migrated")
}

// Migrate creates or updates the schema for every model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.GroupMember{},
		&models.Task{},
		&models.TaskAssignee{},
		&models.TaskAssignedGroup{},
		&models.TaskComment{},
		&models.Session{},
		&models.LoginAttempt{},
	)
}

// GetDB returns the database connection
func GetDB() *gorm.DB {
	return DB
}
