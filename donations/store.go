package donations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"

	_ "github.com/mattn/go-sqlite3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

type StoreConfig struct {
	// DatabaseURL selects a SQL backend: "file:" for sqlite3, "libsql://" for
	// libsql. When empty the donor log lives in DonorsFile.
	DatabaseURL    string
	DonorsFile     string
	ConnectTimeout time.Duration
	Logger         zerolog.Logger
}

func OpenStore(ctx context.Context, cfg StoreConfig) (Store, error) {
	if cfg.DatabaseURL == "" {
		if cfg.DonorsFile == "" {
			return nil, errors.New("either a DATABASE_URL or a donors file is required")
		}

		cfg.Logger.Info().Str("path", cfg.DonorsFile).Msg("using file donor store")

		return NewFileStore(cfg.DonorsFile), nil
	}

	var driver string

	switch {
	case strings.HasPrefix(cfg.DatabaseURL, "libsql://"):
		driver = "libsql"
	case strings.HasPrefix(cfg.DatabaseURL, "file:"):
		driver = "sqlite3"
	default:
		return nil, fmt.Errorf("unsupported DATABASE_URL: %s", redact(cfg.DatabaseURL))
	}

	db, err := sql.Open(driver, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("encountered an error connecting to the database: %w", err)
	}

	if driver == "sqlite3" {
		db.SetMaxOpenConns(1)
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	ping := func() (struct{}, error) {
		return struct{}{}, db.PingContext(ctx)
	}

	_, err = backoff.Retry(ctx, ping,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(timeout),
		backoff.WithNotify(func(err error, next time.Duration) {
			cfg.Logger.Warn().Err(err).Dur("retry_in", next).Msg("database not reachable yet")
		}),
	)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("encountered an error reaching the database: %w", err)
	}

	store, err := newSQLStore(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}

	cfg.Logger.Info().Str("driver", driver).Msg("using sql donor store")

	return store, nil
}

// redact drops the query string, which carries libsql auth tokens.
func redact(databaseURL string) string {
	if i := strings.IndexByte(databaseURL, '?'); i >= 0 {
		return databaseURL[:i]
	}

	return databaseURL
}
