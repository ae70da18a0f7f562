package database

import (
	"client-feedback-admin/internal/models"
)

// Migrator handles database migrations
type Migrator struct {
	db *Connection
}

// NewMigrator creates a new migrator instance
func NewMigrator(db *Connection) *Migrator {
	return &Migrator{db: db}
}

// Up creates or alters the admins, clients and import_runs tables
func (m *Migrator) Up() error {
	return m.db.AutoMigrate(
		&models.Admin{},
		&models.Client{},
		&models.ImportRun{},
	)
}

// Down drops every table in reverse dependency order
func (m *Migrator) Down() error {
	return m.db.Migrator().DropTable(
		&models.ImportRun{},
		&models.Client{},
		&models.Admin{},
	)
}

// Tables reports which managed tables currently exist
func (m *Migrator) Tables() map[string]bool {
	migrator := m.db.Migrator()
	return map[string]bool{
		models.Admin{}.TableName():     migrator.HasTable(&models.Admin{}),
		models.Client{}.TableName():    migrator.HasTable(&models.Client{}),
		models.ImportRun{}.TableName(): migrator.HasTable(&models.ImportRun{}),
	}
}
