package helper

//nolint:revive
import (
	"errors"
	"fmt"
	"net"
	"net/url"

	"visit/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"
)

const migrationSource = "file://migrations/postgres"

var ErrUnknownAction = errors.New("unknown migration action")

// Action is one migration command runnable from cmd/migrate or at startup.
type Action string

const (
	ActionUp      Action = "up"
	ActionStepUp  Action = "step-up"
	ActionDown    Action = "down"
	ActionDrop    Action = "drop"
	ActionVersion Action = "version"
)

var actions = map[Action]func(mig *migrate.Migrate) error{
	ActionUp:     func(mig *migrate.Migrate) error { return mig.Up() },
	ActionStepUp: func(mig *migrate.Migrate) error { return mig.Steps(1) },
	ActionDown:   func(mig *migrate.Migrate) error { return mig.Steps(-1) },
	ActionDrop:   func(mig *migrate.Migrate) error { return mig.Down() },
	ActionVersion: func(mig *migrate.Migrate) error {
		version, dirty, err := mig.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			log.Info().Msg("No migration applied yet")

			return nil
		}

		if err != nil {
			return err //nolint:wrapcheck
		}

		log.Info().Uint("version", version).Bool("dirty", dirty).Msg("Current schema version")

		return nil
	},
}

// DSN builds the migrate connection string for the write database. Migrations always run
// against the primary.
func DSN(cfg *config.Config) string {
	write := cfg.DB.Postgres.Write

	name := write.Name
	if cfg.DB.Postgres.Prefix != "" {
		name = cfg.DB.Postgres.Prefix + name
	}

	query := url.Values{}
	query.Set("sslmode", write.SSLMode)

	if cfg.DB.Postgres.MigrationTable != "" {
		query.Set("x-migrations-table", cfg.DB.Postgres.MigrationTable)
	}

	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(write.Username, write.Password),
		Host:     net.JoinHostPort(write.Host, write.Port),
		Path:     "/" + name,
		RawQuery: query.Encode(),
	}

	return dsn.String()
}

func Run(cfg *config.Config, action Action) error {
	run, ok := actions[action]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	mig, err := migrate.New(migrationSource, DSN(cfg))
	if err != nil {
		return fmt.Errorf("error creating migrate instance: %w", err)
	}

	defer mig.Close()

	if err := run(mig); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info().Str("action", string(action)).Msg("Schema already up to date")

			return nil
		}

		return fmt.Errorf("error running migration %s: %w", action, err)
	}

	log.Info().Str("action", string(action)).Msg("Database migration finished")

	return nil
}

// Force marks version as applied without running it, clearing the dirty flag a failed
// migration leaves behind.
func Force(cfg *config.Config, version int) error {
	mig, err := migrate.New(migrationSource, DSN(cfg))
	if err != nil {
		return fmt.Errorf("error creating migrate instance: %w", err)
	}

	defer mig.Close()

	if err := mig.Force(version); err != nil {
		return fmt.Errorf("error forcing version %d: %w", version, err)
	}

	log.Warn().Int("version", version).Msg("Schema version forced")

	return nil
}

func Up(cfg *config.Config) error {
	return Run(cfg, ActionUp)
}
