// Package state remembers which toolbar items were active between runs.
package state

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/toolbar/pkg/debug"
	"github.com/vanderheijden86/toolbar/pkg/metrics"
	"github.com/vanderheijden86/toolbar/pkg/model"
	"github.com/vanderheijden86/toolbar/pkg/toolbar"
)

const schema = `
CREATE TABLE IF NOT EXISTS item_state (
	toolbar    TEXT    NOT NULL,
	item_id    TEXT    NOT NULL,
	group_name TEXT    NOT NULL DEFAULT '',
	active     INTEGER NOT NULL,
	saved_at   INTEGER NOT NULL,
	PRIMARY KEY (toolbar, item_id)
)`

// Store persists per-item active flags in a SQLite database, keyed by
// toolbar name.
type Store struct {
	db   *sql.DB
	path string
}

// Entry is the remembered state of one item.
type Entry struct {
	ItemID  string
	Group   string
	Active  bool
	SavedAt time.Time
}

// Open opens (creating if needed) the store at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open state database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating state schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save replaces the remembered state of the named toolbar with snap.
// Separators and expander proxies are not recorded; a proxy's look is
// derived from its group.
func (s *Store) Save(ctx context.Context, name string, snap toolbar.Snapshot) error {
	defer metrics.Timer(metrics.StateSync)()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin state transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM item_state WHERE toolbar = ?`, name); err != nil {
		return fmt.Errorf("clearing state: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO item_state (toolbar, item_id, group_name, active, saved_at)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing state insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, e := range EntriesFromSnapshot(snap) {
		if _, err := stmt.ExecContext(ctx, name, e.ItemID, e.Group, boolInt(e.Active), now); err != nil {
			return fmt.Errorf("saving state for %q: %w", e.ItemID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing state: %w", err)
	}
	debug.Log("state: saved %s to %s", name, s.path)
	return nil
}

// Load returns the remembered entries for the named toolbar.
func (s *Store) Load(ctx context.Context, name string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT item_id, group_name, active, saved_at
		FROM item_state
		WHERE toolbar = ?
		ORDER BY rowid`, name)
	if err != nil {
		return nil, fmt.Errorf("querying state: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e      Entry
			active int
			saved  int64
		)
		if err := rows.Scan(&e.ItemID, &e.Group, &active, &saved); err != nil {
			return nil, fmt.Errorf("scanning state: %w", err)
		}
		e.Active = active != 0
		e.SavedAt = time.Unix(saved, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Forget drops everything remembered for the named toolbar.
func (s *Store) Forget(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM item_state WHERE toolbar = ?`, name); err != nil {
		return fmt.Errorf("forgetting state: %w", err)
	}
	return nil
}

// Restore replays remembered state onto tb by selecting items, so the
// usual sibling exclusivity and handlers apply. Items that no longer exist
// are skipped. It returns the number of selections made.
func (s *Store) Restore(ctx context.Context, name string, tb *toolbar.Toolbar) (int, error) {
	entries, err := s.Load(ctx, name)
	if err != nil {
		return 0, err
	}
	return Apply(tb, entries), nil
}

// Apply selects every item whose remembered active flag differs from its
// current one. A grouped item can only be switched on; it is switched off
// by its sibling being switched on.
func Apply(tb *toolbar.Toolbar, entries []Entry) int {
	n := 0
	for _, e := range entries {
		it := tb.Item(toolbar.ByID(e.ItemID))
		if it == nil || it.Kind == model.KindExpanderProxy || it.Active() == e.Active {
			continue
		}
		switch {
		case it.Grouped() && !e.Active:
			continue
		case !it.Grouped() && it.Properties.Toggle == nil:
			continue
		}
		if _, err := tb.SelectItem(toolbar.Handle(it)); err != nil {
			debug.Log("state: restore %s: %v", e.ItemID, err)
			continue
		}
		n++
	}
	if n > 0 {
		// Selecting an expander member closes every expander; start closed.
		tb.HideAllExpanders()
	}
	return n
}

func allItems(snap toolbar.Snapshot) []toolbar.ItemSnapshot {
	items := append([]toolbar.ItemSnapshot(nil), snap.Items...)
	for _, exp := range snap.Expanders {
		items = append(items, exp.Items...)
	}
	return append(items, snap.Parked...)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// EntriesFromSnapshot converts a live snapshot into restorable entries, so
// state can be carried across a toolbar rebuild without the database.
func EntriesFromSnapshot(snap toolbar.Snapshot) []Entry {
	var entries []Entry
	for _, it := range allItems(snap) {
		if it.Kind == model.KindSeparator || it.Kind == model.KindExpanderProxy {
			continue
		}
		entries = append(entries, Entry{ItemID: it.ID, Group: it.Group, Active: it.Active})
	}
	return entries
}
