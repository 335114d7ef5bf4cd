// Package storage implements local template library on top of sqlite.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/maruel/natural"
	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitemigration"
	"zombiezen.com/go/sqlite/sqlitex"

	"wtpl/model"
)

// ErrNotFound is returned when requested template is not in the library.
var ErrNotFound = errors.New("template not found")

// duplicateSuffix is appended to names of duplicated templates.
const duplicateSuffix = " (副本)"

var schema = sqlitemigration.Schema{
	Migrations: []string{
		`CREATE TABLE templates (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			blocks      INTEGER NOT NULL DEFAULT 0,
			created     INTEGER NOT NULL,
			updated     INTEGER NOT NULL,
			payload     TEXT NOT NULL
		);`,
		`CREATE TABLE settings (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
	},
}

// Summary describes library entry without loading its content.
type Summary struct {
	ID          string
	Name        string
	Description string
	Blocks      int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Library is a single connection to template library file. It is not safe
// for concurrent use.
type Library struct {
	conn *sqlite.Conn
	log  *zap.Logger
	now  func() time.Time
}

// Open opens (creating if necessary) library at path and brings its schema
// up to date.
func Open(ctx context.Context, path string, log *zap.Logger) (*Library, error) {
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadWrite, sqlite.OpenCreate, sqlite.OpenWAL)
	if err != nil {
		return nil, fmt.Errorf("unable to open library '%s': %w", path, err)
	}
	if err := sqlitemigration.Migrate(ctx, conn, schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to migrate library '%s': %w", path, err)
	}
	l := &Library{conn: conn, log: log.Named("library"), now: time.Now}
	l.log.Debug("Library opened", zap.String("path", path))
	return l, nil
}

func (l *Library) Close() error {
	return l.conn.Close()
}

// interrupt makes long running statements honour context cancellation.
func (l *Library) interrupt(ctx context.Context) func() {
	l.conn.SetInterrupt(ctx.Done())
	return func() { l.conn.SetInterrupt(nil) }
}

// List returns summaries of all templates, most recently updated first,
// templates updated at the same time are in natural name order.
func (l *Library) List(ctx context.Context) ([]Summary, error) {
	defer l.interrupt(ctx)()

	var res []Summary
	err := sqlitex.Execute(l.conn, `SELECT id, name, description, blocks, created, updated FROM templates`,
		&sqlitex.ExecOptions{ResultFunc: func(stmt *sqlite.Stmt) error {
			res = append(res, Summary{
				ID:          stmt.ColumnText(0),
				Name:        stmt.ColumnText(1),
				Description: stmt.ColumnText(2),
				Blocks:      stmt.ColumnInt(3),
				CreatedAt:   time.UnixMilli(stmt.ColumnInt64(4)),
				UpdatedAt:   time.UnixMilli(stmt.ColumnInt64(5)),
			})
			return nil
		}})
	if err != nil {
		return nil, fmt.Errorf("unable to list templates: %w", err)
	}
	slices.SortStableFunc(res, func(a, b Summary) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		switch {
		case natural.Less(a.Name, b.Name):
			return -1
		case natural.Less(b.Name, a.Name):
			return 1
		}
		return 0
	})
	return res, nil
}

// Get loads template by id.
func (l *Library) Get(ctx context.Context, id string) (*model.Template, error) {
	defer l.interrupt(ctx)()

	var (
		payload string
		found   bool
	)
	err := sqlitex.Execute(l.conn, `SELECT payload FROM templates WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []any{id},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				payload, found = stmt.ColumnText(0), true
				return nil
			}})
	if err != nil {
		return nil, fmt.Errorf("unable to read template %s: %w", id, err)
	}
	if !found {
		return nil, fmt.Errorf("template %s: %w", id, ErrNotFound)
	}
	return model.Decode([]byte(payload))
}

// Save stores template. Templates which were never saved (short ids) get
// permanent id first. Update time is set to now. Stored copy is returned.
func (l *Library) Save(ctx context.Context, t *model.Template) (*model.Template, error) {
	defer l.interrupt(ctx)()

	saved, err := t.Clone()
	if err != nil {
		return nil, err
	}
	now := l.now()
	if model.IsShortID(saved.ID) {
		saved.ID = uuid.NewString()
		saved.CreatedAt = now
	}
	if saved.CreatedAt.IsZero() {
		saved.CreatedAt = now
	}
	saved.UpdatedAt = now

	if err := l.put(saved); err != nil {
		return nil, err
	}
	l.log.Debug("Template saved", zap.String("id", saved.ID), zap.String("name", saved.Name))
	return saved, nil
}

func (l *Library) put(t *model.Template) error {
	payload, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("unable to encode template %s: %w", t.ID, err)
	}
	err = sqlitex.Execute(l.conn, `INSERT INTO templates (id, name, description, blocks, created, updated, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			blocks = excluded.blocks,
			updated = excluded.updated,
			payload = excluded.payload`,
		&sqlitex.ExecOptions{Args: []any{
			t.ID, t.Name, t.Description, len(t.Content),
			t.CreatedAt.UnixMilli(), t.UpdatedAt.UnixMilli(), string(payload),
		}})
	if err != nil {
		return fmt.Errorf("unable to store template %s: %w", t.ID, err)
	}
	return nil
}

// Delete removes template from the library.
func (l *Library) Delete(ctx context.Context, id string) error {
	defer l.interrupt(ctx)()

	if err := sqlitex.Execute(l.conn, `DELETE FROM templates WHERE id = ?`, &sqlitex.ExecOptions{Args: []any{id}}); err != nil {
		return fmt.Errorf("unable to delete template %s: %w", id, err)
	}
	if l.conn.Changes() == 0 {
		return fmt.Errorf("template %s: %w", id, ErrNotFound)
	}
	l.log.Debug("Template deleted", zap.String("id", id))
	return nil
}

// Duplicate stores copy of template under new id and name.
func (l *Library) Duplicate(ctx context.Context, id string) (dup *model.Template, err error) {
	dup, err = l.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	defer l.interrupt(ctx)()
	defer sqlitex.Save(l.conn)(&err)

	now := l.now()
	dup.ID = uuid.NewString()
	dup.Name += duplicateSuffix
	dup.CreatedAt, dup.UpdatedAt = now, now
	if err = l.put(dup); err != nil {
		return nil, err
	}
	return dup, nil
}

// Export returns JSON of stored template.
func (l *Library) Export(ctx context.Context, id string) ([]byte, error) {
	t, err := l.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return model.Encode(t)
}

// Import stores template JSON as a new library entry.
func (l *Library) Import(ctx context.Context, data []byte) (*model.Template, error) {
	t, err := model.Decode(data)
	if err != nil {
		return nil, err
	}
	// always a new entry, never overwrite
	t.ID = ""
	return l.Save(ctx, t)
}
