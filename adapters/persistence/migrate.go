package persistence

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

// Migrator applies the SQL files under a migrations directory.
type Migrator struct {
	m      *migrate.Migrate
	logger logger.Logger
}

func NewMigrator(migrationsPath, dsn string, log logger.Logger) (*Migrator, error) {
	source := migrationsPath
	if !strings.Contains(source, "://") {
		source = "file://" + source
	}
	m, err := migrate.New(source, dsn)
	if err != nil {
		return nil, fmt.Errorf("create migrate instance failed: %w", err)
	}
	return &Migrator{m: m, logger: log}, nil
}

func (mg *Migrator) Up() error {
	if err := mg.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up failed: %w", err)
	}
	mg.logVersion("Migrations applied")
	return nil
}

// Down rolls back steps migrations, or all of them when steps <= 0.
func (mg *Migrator) Down(steps int) error {
	var err error
	if steps <= 0 {
		err = mg.m.Down()
	} else {
		err = mg.m.Steps(-steps)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down failed: %w", err)
	}
	mg.logVersion("Migrations rolled back")
	return nil
}

func (mg *Migrator) logVersion(msg string) {
	version, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		mg.logger.Info(msg, zap.String("version", "none"))
		return
	}
	mg.logger.Info(msg, zap.Uint("version", version), zap.Bool("dirty", dirty))
}

func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return errors.Join(srcErr, dbErr)
}
