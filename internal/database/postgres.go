package database

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"
)

var (
	// ErrDuplicateKey maps the store's unique-violation on a primary or
	// unique key, e.g. registering a handle that already exists.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrCodeConflict is the unique-violation on the machine code index:
	// the code is already bound to another handle.
	ErrCodeConflict = errors.New("machine code already bound")
)

type PgRepository struct {
	conn *sql.DB
}

func NewPgRepository(dsn string) (*PgRepository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &PgRepository{conn: db}, nil
}

func (db *PgRepository) Ping() error {
	return db.conn.Ping()
}

func (db *PgRepository) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// mapUniqueViolation rewrites lib/pq unique violations into the repository's
// sentinel errors so callers never inspect driver error codes.
func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		if strings.Contains(pqErr.Constraint, "machine_code") {
			return ErrCodeConflict
		}
		return ErrDuplicateKey
	}
	return err
}
