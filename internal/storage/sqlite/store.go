// Package sqlite provides a SQLite-backed storage.Repository.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"content-loader/internal/schema"
	"content-loader/internal/storage"
	"content-loader/internal/storage/sqlite/migrations"
)

// Store persists content objects in SQLite. Structural properties and field
// values are stored one row per value, JSON encoded.
type Store struct {
	db      *sql.DB
	schemas *schema.Registry
	now     func() time.Time
}

var _ storage.Repository = (*Store)(nil)

// Open opens a SQLite content store and applies embedded migrations.
func Open(path string, reg *schema.Registry) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}

	if reg == nil {
		return nil, errors.New("schema registry is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	ctx := context.Background()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db, schemas: reg, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

func (s *Store) HasType(name string) bool {
	return s.schemas.Has(name)
}

func (s *Store) Schema(name string) (*schema.TypeSchema, bool) {
	return s.schemas.Get(name)
}

// Create returns a new unsaved object with a random UUID.
func (s *Store) Create(ctx context.Context, typeName string, props map[string]any) (storage.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ts, ok := s.schemas.Get(typeName)
	if !ok {
		return nil, fmt.Errorf("%w %q", storage.ErrUnknownType, typeName)
	}

	return storage.NewEntity(ts, uuid.NewString(), props), nil
}

// Query returns saved objects of typeName matching all conditions, in first
// save order. Conditions on undeclared keys match nothing.
func (s *Store) Query(ctx context.Context, typeName string, conds []storage.Condition) ([]storage.Object, error) {
	ts, ok := s.schemas.Get(typeName)
	if !ok {
		return nil, fmt.Errorf("%w %q", storage.ErrUnknownType, typeName)
	}

	var (
		query strings.Builder
		args  = []any{typeName}
	)

	query.WriteString("SELECT o.id FROM objects o WHERE o.type = ?")

	for _, c := range conds {
		clause, value, ok := conditionClause(ts, c)
		if !ok {
			return nil, nil
		}

		query.WriteString(clause)
		args = append(args, c.Field, value)
	}

	query.WriteString(" ORDER BY o.seq")

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", typeName, err)
	}

	var ids []string

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan %s id: %w", typeName, err)
		}

		ids = append(ids, id)
	}

	if err := rows.Close(); err != nil {
		return nil, err
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", typeName, err)
	}

	out := make([]storage.Object, 0, len(ids))

	for _, id := range ids {
		obj, err := s.load(ctx, ts, id)
		if err != nil {
			return nil, err
		}

		out = append(out, obj)
	}

	return out, nil
}

// conditionClause returns the SQL predicate and encoded value for c. ok is
// false when the condition cannot match any stored object.
func conditionClause(ts *schema.TypeSchema, c storage.Condition) (string, string, bool) {
	if ts.IsStructural(c.Field) {
		value, err := encodeValue(c.Value)
		if err != nil {
			return "", "", false
		}

		return " AND EXISTS (SELECT 1 FROM object_properties p WHERE p.object_id = o.id AND p.key = ? AND p.value = ?)",
			value, true
	}

	fd, ok := ts.Field(c.Field)
	if !ok {
		return "", "", false
	}

	value, err := encodeFieldValue(fd, c.Value)
	if err != nil {
		return "", "", false
	}

	return " AND EXISTS (SELECT 1 FROM field_values f WHERE f.object_id = o.id AND f.field = ? AND f.value = ?)",
		value, true
}

func (s *Store) Load(ctx context.Context, typeName, id string) (storage.Object, error) {
	ts, ok := s.schemas.Get(typeName)
	if !ok {
		return nil, fmt.Errorf("%w %q", storage.ErrUnknownType, typeName)
	}

	return s.load(ctx, ts, id)
}

func (s *Store) load(ctx context.Context, ts *schema.TypeSchema, id string) (*storage.Entity, error) {
	var storedType string

	err := s.db.QueryRowContext(ctx, "SELECT type FROM objects WHERE id = ?", id).Scan(&storedType)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && storedType != ts.Name) {
		return nil, fmt.Errorf("%w: %s:%s", storage.ErrNotFound, ts.Name, id)
	}

	if err != nil {
		return nil, fmt.Errorf("load %s:%s: %w", ts.Name, id, err)
	}

	props, err := s.loadProperties(ctx, id)
	if err != nil {
		return nil, err
	}

	e := storage.NewEntity(ts, id, props)

	rows, err := s.db.QueryContext(ctx,
		"SELECT field, value FROM field_values WHERE object_id = ? ORDER BY field, delta", id)
	if err != nil {
		return nil, fmt.Errorf("load fields of %s:%s: %w", ts.Name, id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var field, raw string
		if err := rows.Scan(&field, &raw); err != nil {
			return nil, fmt.Errorf("scan field of %s:%s: %w", ts.Name, id, err)
		}

		fd, ok := ts.Field(field)
		if !ok {
			// Field dropped from the schema since the object was saved.
			continue
		}

		value, err := decodeFieldValue(fd, raw)
		if err != nil {
			return nil, fmt.Errorf("decode %s.%s of %s: %w", ts.Name, field, id, err)
		}

		if err := e.AppendField(field, value); err != nil {
			return nil, err
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fields of %s:%s: %w", ts.Name, id, err)
	}

	e.MarkSaved()

	return e, nil
}

func (s *Store) loadProperties(ctx context.Context, id string) (map[string]any, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM object_properties WHERE object_id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("load properties of %s: %w", id, err)
	}
	defer rows.Close()

	props := map[string]any{}

	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, fmt.Errorf("scan property of %s: %w", id, err)
		}

		value, err := decodeValue(raw)
		if err != nil {
			return nil, fmt.Errorf("decode property %s of %s: %w", key, id, err)
		}

		props[key] = value
	}

	return props, rows.Err()
}

// Save writes the object and all of its values in one transaction.
func (s *Store) Save(ctx context.Context, obj storage.Object) error {
	ts, ok := s.schemas.Get(obj.Type())
	if !ok {
		return fmt.Errorf("%w %q", storage.ErrUnknownType, obj.Type())
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save %s: %w", obj.ID(), err)
	}

	if err := s.save(ctx, tx, ts, obj); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save %s: %w", obj.ID(), err)
	}

	obj.MarkSaved()

	return nil
}

func (s *Store) save(ctx context.Context, tx *sql.Tx, ts *schema.TypeSchema, obj storage.Object) error {
	now := s.now().UTC().UnixMilli()
	id := obj.ID()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO objects (id, type, created_at, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET updated_at = excluded.updated_at`,
		id, ts.Name, now, now,
	); err != nil {
		return fmt.Errorf("save %s:%s: %w", ts.Name, id, err)
	}

	for _, table := range []string{"object_properties", "field_values"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE object_id = ?", id); err != nil {
			return fmt.Errorf("reset %s of %s: %w", table, id, err)
		}
	}

	props := obj.Properties()

	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	for _, k := range keys {
		value, err := encodeValue(props[k])
		if err != nil {
			return fmt.Errorf("encode property %s of %s: %w", k, id, err)
		}

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO object_properties (object_id, key, value) VALUES (?, ?, ?)", id, k, value,
		); err != nil {
			return fmt.Errorf("save property %s of %s: %w", k, id, err)
		}
	}

	for i := range ts.Fields {
		fd := &ts.Fields[i]

		for delta, v := range obj.Field(fd.Name) {
			value, err := encodeFieldValue(fd, v)
			if err != nil {
				return fmt.Errorf("encode %s.%s of %s: %w", ts.Name, fd.Name, id, err)
			}

			if _, err := tx.ExecContext(ctx,
				"INSERT INTO field_values (object_id, field, delta, value) VALUES (?, ?, ?, ?)",
				id, fd.Name, delta, value,
			); err != nil {
				return fmt.Errorf("save %s.%s of %s: %w", ts.Name, fd.Name, id, err)
			}
		}
	}

	return nil
}

// Delete removes the object and its values.
func (s *Store) Delete(ctx context.Context, obj storage.Object) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete %s: %w", obj.ID(), err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM objects WHERE id = ? AND type = ?", obj.ID(), obj.Type())
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete %s: %w", obj.ID(), err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		_ = tx.Rollback()
		return fmt.Errorf("%w: %s:%s", storage.ErrNotFound, obj.Type(), obj.ID())
	}

	for _, table := range []string{"object_properties", "field_values"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE object_id = ?", obj.ID()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("delete %s of %s: %w", table, obj.ID(), err)
		}
	}

	return tx.Commit()
}

// Count returns the number of stored objects of typeName.
func (s *Store) Count(ctx context.Context, typeName string) (int, error) {
	var n int

	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM objects WHERE type = ?", typeName).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", typeName, err)
	}

	return n, nil
}
