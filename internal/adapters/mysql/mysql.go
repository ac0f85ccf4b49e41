// Package mysql holds shared plumbing for the MySQL adapters.
package mysql

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	driver "github.com/go-sql-driver/mysql"
)

// DuplicateEntryCode is ER_DUP_ENTRY.
const DuplicateEntryCode = 1062

//go:embed migrations/*.sql
var migrationFS embed.FS

// Config parses dsn and forces the connection settings the adapters rely on: parsed UTC times,
// a case-insensitive collation and affected-row counts that include unchanged rows.
func Config(dsn string) (*driver.Config, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("empty mysql dsn")
	}
	cfg, err := driver.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.ClientFoundRows = true
	if cfg.Collation == "" {
		cfg.Collation = "utf8mb4_unicode_ci"
	}
	return cfg, nil
}

// Open returns a pinged *sql.DB for dsn.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	cfg, err := Config(dsn)
	if err != nil {
		return nil, err
	}
	connector, err := driver.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("mysql connector: %w", err)
	}
	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	return db, nil
}

// Migrate applies the embedded schema. Statements are idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	raw, err := migrationFS.ReadFile("migrations/0001_init.sql")
	if err != nil {
		return err
	}
	for _, stmt := range strings.Split(string(raw), ";\n") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// DuplicateKey reports the key name named by a duplicate-entry error.
// MySQL 8 qualifies the key with the table name ("students.students_ra_unique"); the prefix is dropped.
func DuplicateKey(err error) (string, bool) {
	var me *driver.MySQLError
	if !errors.As(err, &me) || me.Number != DuplicateEntryCode {
		return "", false
	}
	i := strings.LastIndex(me.Message, "for key '")
	if i < 0 {
		return "", true
	}
	key := strings.TrimSuffix(me.Message[i+len("for key '"):], "'")
	if dot := strings.LastIndex(key, "."); dot >= 0 {
		key = key[dot+1:]
	}
	return key, true
}
