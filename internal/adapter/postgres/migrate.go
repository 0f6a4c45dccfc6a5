package postgres

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// newMigrate builds a migrate instance over the embedded migrations.
// The returned close func releases the migration connection; the pool stays open.
func newMigrate(pool *pgxpool.Pool) (*migrate.Migrate, func(), error) {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, nil, fmt.Errorf("could not create source driver: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", driver)
	if err != nil {
		_ = driver.Close()
		return nil, nil, fmt.Errorf("could not create migrate instance: %w", err)
	}
	return m, func() { _, _ = m.Close() }, nil
}

// RunMigrations applies every pending up migration.
func RunMigrations(pool *pgxpool.Pool, logger *zap.Logger) error {
	m, closeDB, err := newMigrate(pool)
	if err != nil {
		return err
	}
	defer closeDB()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("No pending migrations")
			return nil
		}
		return fmt.Errorf("could not run up migrations: %w", err)
	}

	logger.Info("Migrations applied successfully")
	return nil
}

// MigrateDown rolls back steps migrations; a non-positive steps means one.
func MigrateDown(pool *pgxpool.Pool, steps int, logger *zap.Logger) error {
	m, closeDB, err := newMigrate(pool)
	if err != nil {
		return err
	}
	defer closeDB()

	if steps <= 0 {
		steps = 1
	}
	if err := m.Steps(-steps); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("No migrations to rollback")
			return nil
		}
		return fmt.Errorf("could not roll back migrations: %w", err)
	}

	logger.Info("Migrations rolled back successfully", zap.Int("steps", steps))
	return nil
}

// MigrationVersion reports the applied version. A fresh database is version 0.
func MigrationVersion(pool *pgxpool.Pool) (version uint, dirty bool, err error) {
	m, closeDB, err := newMigrate(pool)
	if err != nil {
		return 0, false, err
	}
	defer closeDB()

	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}
