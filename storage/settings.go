package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// SaveSettings stores JSON encoded value under key.
func (l *Library) SaveSettings(ctx context.Context, key string, value any) error {
	defer l.interrupt(ctx)()

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("unable to encode settings %s: %w", key, err)
	}
	err = sqlitex.Execute(l.conn, `INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		&sqlitex.ExecOptions{Args: []any{key, string(data)}})
	if err != nil {
		return fmt.Errorf("unable to store settings %s: %w", key, err)
	}
	return nil
}

// LoadSettings decodes value stored under key into v. It returns false when
// nothing was stored.
func (l *Library) LoadSettings(ctx context.Context, key string, v any) (bool, error) {
	defer l.interrupt(ctx)()

	var (
		data  string
		found bool
	)
	err := sqlitex.Execute(l.conn, `SELECT value FROM settings WHERE key = ?`,
		&sqlitex.ExecOptions{
			Args: []any{key},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				data, found = stmt.ColumnText(0), true
				return nil
			}})
	if err != nil {
		return false, fmt.Errorf("unable to read settings %s: %w", key, err)
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal([]byte(data), v); err != nil {
		return false, fmt.Errorf("unable to decode settings %s: %w", key, err)
	}
	return true, nil
}
