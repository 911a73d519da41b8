// Package migrate applies the embedded schema migrations with golang-migrate.
package migrate

import (
	"errors"
	"fmt"

	"github.com/Dosada05/rank-ladder/db"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Run applies all migrations in direction against dsn. An already
// up-to-date schema is not an error.
func Run(dsn string, direction Direction) error {
	if dsn == "" {
		return errors.New("DATABASE_URL is not set")
	}
	if direction != Up && direction != Down {
		return fmt.Errorf("direction must be up or down, got %q", direction)
	}

	sourceDriver, err := iofs.New(db.MigrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("migrate source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, dsn)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	switch direction {
	case Up:
		err = m.Up()
	case Down:
		err = m.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate %s: %w", direction, err)
	}
	return nil
}
