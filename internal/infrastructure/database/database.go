package database

import (
	"yuime-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Open opens a GORM DB for driver ("postgres" or "sqlite").
// PreferSimpleProtocol disables prepared statement caching to avoid 42P05
// ("prepared statement already exists") behind connection poolers (PgBouncer).
func Open(driver, dsn string) (*gorm.DB, error) {
	if driver == DriverPostgres {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{})
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	// Every new connection to ":memory:" is a new empty database.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// Pinger adapts db to the health checker.
type Pinger struct {
	DB *gorm.DB
}

func (p Pinger) Ping() error {
	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// AutoMigrate creates the staff and organization tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.StaffMember{}, &domain.Organization{})
}
