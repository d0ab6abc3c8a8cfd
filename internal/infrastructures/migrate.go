package infrastructures

import (
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"
)

// RunMigrations applies all pending migrations from the embedded
// migrations directory. Safe to call on every startup.
func RunMigrations(migrationsFS fs.FS) {
	source, err := iofs.New(migrationsFS, ".")
	if err != nil {
		logrus.Fatalf("failed to load migration source: %v", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, Config.DatabaseURL)
	if err != nil {
		logrus.Fatalf("failed to create migrator: %v", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		logrus.Fatalf("failed to run migrations: %v", err)
	}
}
