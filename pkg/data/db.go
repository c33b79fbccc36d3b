package data

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DataFileName string = "data.db"

	driverSQLite   = "sqlite"
	driverPostgres = "postgres"
)

var (
	//go:embed sql/*.sql
	f embed.FS

	errDBNotInitialized = errors.New("database not initialized")
)

// Store holds the imported dataset.
type Store struct {
	db     *sql.DB
	driver string
}

// IsPostgres reports whether dsn points to a PostgreSQL server rather
// than a sqlite file.
func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Open connects to dsn and applies pending schema migrations.
// PostgreSQL URLs use lib/pq, anything else is treated as a sqlite file path.
func Open(dsn string) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("dsn not specified")
	}

	driver := driverSQLite
	if IsPostgres(dsn) {
		driver = driverPostgres
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == driverSQLite {
		// sqlite allows a single writer
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Store{db: db, driver: driver}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) migrate() error {
	src, err := iofs.New(f, "sql")
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}

	var drv database.Driver
	switch s.driver {
	case driverPostgres:
		drv, err = postgres.WithInstance(s.db, &postgres.Config{})
	default:
		drv, err = sqlite.WithInstance(s.db, &sqlite.Config{})
	}
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, s.driver, drv)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to migrate database schema: %w", err)
	}

	v, _, _ := m.Version()
	slog.Debug("db schema ready", "driver", s.driver, "version", v)
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ready() error {
	if s == nil || s.db == nil {
		return errDBNotInitialized
	}
	return nil
}

// rebind rewrites ? placeholders into the $n form PostgreSQL expects.
func (s *Store) rebind(q string) string {
	if s.driver != driverPostgres {
		return q
	}

	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
