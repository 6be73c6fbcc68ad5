package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ogurasousui/orbite-rh-api/internal/platform/config"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		configPath    string
		migrationsDir string
	)

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply database migrations for orbite-rh-api",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (defaults to CONFIG_PATH env or assets/local.yaml)")
	root.PersistentFlags().StringVar(&migrationsDir, "dir", "assets/migrations", "directory containing migration files")

	action := func(name string, run func(*migrate.Migrate) error) *cobra.Command {
		return &cobra.Command{
			Use:   name,
			Short: fmt.Sprintf("Run migration %s", name),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := config.LoadDotEnv(".env", ".env.local"); err != nil {
					return err
				}
				cfg, err := config.Load(config.ResolvePath(configPath))
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}

				m, err := newMigrate(migrationsDir, cfg.Database.DSN())
				if err != nil {
					return err
				}
				defer m.Close()

				if err := run(m); err != nil {
					return fmt.Errorf("migration %s: %w", name, err)
				}
				logrus.Infof("migration %s completed", name)
				return nil
			},
		}
	}

	root.AddCommand(
		action("up", ignoreNoChange(func(m *migrate.Migrate) error { return m.Up() })),
		action("down", ignoreNoChange(func(m *migrate.Migrate) error { return m.Down() })),
		action("drop", func(m *migrate.Migrate) error { return m.Drop() }),
		action("version", printVersion),
	)
	return root
}

func newMigrate(dir, dsn string) (*migrate.Migrate, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve path for %s: %w", dir, err)
	}

	m, err := migrate.New("file://"+filepath.ToSlash(absDir), dsn)
	if err != nil {
		return nil, fmt.Errorf("create migrate instance: %w", err)
	}
	return m, nil
}

func ignoreNoChange(run func(*migrate.Migrate) error) func(*migrate.Migrate) error {
	return func(m *migrate.Migrate) error {
		if err := run(m); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		return nil
	}
}

func printVersion(m *migrate.Migrate) error {
	version, dirty, err := m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			logrus.Info("no migration applied")
			return nil
		}
		return err
	}
	logrus.WithFields(logrus.Fields{"version": version, "dirty": dirty}).Info("current migration version")
	return nil
}
