package store

import (
	"fmt"
	"log"

	"github.com/solace-app/solace/backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store wraps the SQLite database holding durable state: the append-only
// message transcript per room and the registered user accounts. The
// coordination engine treats it as an opaque append/query gateway.
type Store struct {
	db *gorm.DB
}

// Open connects to the SQLite database at the given path and runs
// migrations. Use ":memory:" for an ephemeral database in tests.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&models.Message{}, &models.User{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	log.Printf("[Store] Database ready at %s", path)
	return &Store{db: db}, nil
}

// DB exposes the underlying handle for package-internal queries.
func (s *Store) DB() *gorm.DB {
	return s.db
}
