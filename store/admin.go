package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
)

// Info describes the database file.
type Info struct {
	Path      string
	Size      int64 // bytes, 0 for in memory databases
	Entries   int
	History   int // history rows
	Snapshots int // distinct analysis runs
}

// Column is a row of PRAGMA table_info.
type Column struct {
	CID     int            `db:"cid"`
	Name    string         `db:"name"`
	Type    string         `db:"type"`
	NotNull bool           `db:"notnull"`
	Default sql.NullString `db:"dflt_value"`
	PK      int            `db:"pk"`
}

// Table is the schema of one user table.
type Table struct {
	Name    string
	Columns []Column
}

// Info returns the database file size and row counts.
func (s *Store) Info(ctx context.Context) (Info, error) {
	info := Info{Path: s.path}
	if fi, err := os.Stat(s.path); err == nil {
		info.Size = fi.Size()
		// the write-ahead log is part of the database until checkpointed.
		if wal, err := os.Stat(s.path + "-wal"); err == nil {
			info.Size += wal.Size()
		}
	}
	counts := []struct {
		dst   *int
		query string
	}{
		{&info.Entries, `SELECT COUNT(*) FROM portfolio`},
		{&info.History, `SELECT COUNT(*) FROM history`},
		{&info.Snapshots, `SELECT COUNT(DISTINCT snapshot_id) FROM history`},
	}
	for _, c := range counts {
		if err := s.db.GetContext(ctx, c.dst, c.query); err != nil {
			return info, fmt.Errorf("failed to count rows: %w", err)
		}
	}
	return info, nil
}

// Schema returns the columns of the application tables.
func (s *Store) Schema(ctx context.Context) ([]Table, error) {
	var names []string
	err := s.db.SelectContext(ctx, &names, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%' AND name NOT LIKE 'goose_%'
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	tables := make([]Table, 0, len(names))
	for _, name := range names {
		t := Table{Name: name}
		// table names come from sqlite_master, quoting keeps odd names safe.
		q := `PRAGMA table_info("` + strings.ReplaceAll(name, `"`, `""`) + `")`
		if err := s.db.SelectContext(ctx, &t.Columns, q); err != nil {
			return nil, fmt.Errorf("failed to read schema of %s: %w", name, err)
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// Vacuum rebuilds the database file to reclaim free pages.
func (s *Store) Vacuum(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `VACUUM`); err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `PRAGMA wal_checkpoint(TRUNCATE)`); err != nil {
		return fmt.Errorf("failed to checkpoint database: %w", err)
	}
	return nil
}
