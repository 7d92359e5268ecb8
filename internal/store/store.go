// Package store persists content items and their metadata in SQLite.
package store

import (
	"context"
	stdsql "database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"fonto/internal/font"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	_ "github.com/lib-x/entsqlite"
)

// ErrNotFound is returned when no record has the requested id.
var ErrNotFound = errors.New("record not found")

var postColumns = []string{"id", "kind", "title", "content", "status", "menu_order", "author_id", "created_at", "updated_at"}

var orderColumns = map[string]string{
	font.OrderMenuOrder: "menu_order",
	font.OrderDate:      "created_at",
	font.OrderTitle:     "title",
	font.OrderID:        "id",
}

// Store is a font.Store backed by a SQL database.
type Store struct {
	drv *entsql.Driver
	db  *stdsql.DB
	now func() time.Time
}

// Open connects to the SQLite database at dsn.
func Open(dsn string) (*Store, error) {
	drv, err := entsql.Open(dialect.SQLite, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &Store{drv: drv, db: drv.DB(), now: time.Now}, nil
}

// Migrate creates or updates the tables.
func (s *Store) Migrate(ctx context.Context) error {
	m, err := schema.NewMigrate(s.drv)
	if err != nil {
		return fmt.Errorf("failed to create migration: %w", err)
	}
	if err := m.Create(ctx, tables...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.drv.Close()
}

func (s *Store) builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

// Find returns the records matching q in q's order. Ties are broken by id in
// the direction of the last sort key so results are deterministic.
func (s *Store) Find(ctx context.Context, q font.Query) ([]*font.Record, error) {
	sel := s.builder().
		Select(postColumns...).
		From(entsql.Table(postsTableName))

	var preds []*entsql.Predicate
	if q.Kind != "" {
		preds = append(preds, entsql.EQ("kind", string(q.Kind)))
	}
	if len(q.Statuses) > 0 {
		args := make([]any, len(q.Statuses))
		for i, st := range q.Statuses {
			args[i] = string(st)
		}
		preds = append(preds, entsql.In("status", args...))
	}
	if q.AuthorID != 0 {
		preds = append(preds, entsql.EQ("author_id", q.AuthorID))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}

	lastDesc := false
	for _, o := range q.OrderBy {
		col, ok := orderColumns[o.Field]
		if !ok {
			return nil, fmt.Errorf("unknown order field %q", o.Field)
		}
		sel.OrderBy(direction(col, o.Desc))
		lastDesc = o.Desc
	}
	sel.OrderBy(direction("id", lastDesc))
	if q.Limit > 0 {
		sel.Limit(q.Limit)
	}

	query, args := sel.Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	records, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	if err := s.loadMeta(ctx, records); err != nil {
		return nil, err
	}
	return records, nil
}

// Get returns the record with the given id regardless of status.
func (s *Store) Get(ctx context.Context, id int) (*font.Record, error) {
	query, args := s.builder().
		Select(postColumns...).
		From(entsql.Table(postsTableName)).
		Where(entsql.EQ("id", id)).
		Query()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query record %d: %w", id, err)
	}
	records, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNotFound
	}
	if err := s.loadMeta(ctx, records); err != nil {
		return nil, err
	}
	return records[0], nil
}

// Create inserts r and its metadata, filling in ID and timestamps.
func (s *Store) Create(ctx context.Context, r *font.Record) error {
	if r.Kind == "" {
		r.Kind = font.KindFont
	}
	if r.Status == "" {
		r.Status = font.StatusDraft
	}
	ks, ok := font.LookupKind(r.Kind)
	if !ok {
		return fmt.Errorf("unknown kind %q", r.Kind)
	}
	now := s.now()
	r.CreatedAt, r.UpdatedAt = now, now

	return s.withTx(ctx, func(tx *stdsql.Tx) error {
		query, args := s.builder().
			Insert(postsTableName).
			Columns("kind", "title", "content", "status", "menu_order", "author_id", "created_at", "updated_at").
			Values(string(r.Kind), strings.TrimSpace(r.Title), r.Content, string(r.Status), r.MenuOrder, r.AuthorID, r.CreatedAt, r.UpdatedAt).
			Query()
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to insert record: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read record id: %w", err)
		}
		r.ID = int(id)
		return s.writeMeta(ctx, tx, ks, r)
	})
}

// Update replaces r's columns and metadata.
func (s *Store) Update(ctx context.Context, r *font.Record) error {
	ks, ok := font.LookupKind(r.Kind)
	if !ok {
		return fmt.Errorf("unknown kind %q", r.Kind)
	}
	r.UpdatedAt = s.now()

	return s.withTx(ctx, func(tx *stdsql.Tx) error {
		query, args := s.builder().
			Update(postsTableName).
			Set("title", strings.TrimSpace(r.Title)).
			Set("content", r.Content).
			Set("status", string(r.Status)).
			Set("menu_order", r.MenuOrder).
			Set("author_id", r.AuthorID).
			Set("updated_at", r.UpdatedAt).
			Where(entsql.EQ("id", r.ID)).
			Query()
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to update record %d: %w", r.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return ErrNotFound
		}

		query, args = s.builder().
			Delete(metaTableName).
			Where(entsql.EQ("post_id", r.ID)).
			Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to clear metadata of record %d: %w", r.ID, err)
		}
		return s.writeMeta(ctx, tx, ks, r)
	})
}

// Delete removes the record and its metadata.
func (s *Store) Delete(ctx context.Context, id int) error {
	return s.withTx(ctx, func(tx *stdsql.Tx) error {
		query, args := s.builder().
			Delete(metaTableName).
			Where(entsql.EQ("post_id", id)).
			Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to delete metadata of record %d: %w", id, err)
		}

		query, args = s.builder().
			Delete(postsTableName).
			Where(entsql.EQ("id", id)).
			Query()
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to delete record %d: %w", id, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *Store) writeMeta(ctx context.Context, tx *stdsql.Tx, ks font.KindSpec, r *font.Record) error {
	meta := r.Meta()
	if len(meta) == 0 {
		return nil
	}
	ins := s.builder().
		Insert(metaTableName).
		Columns("post_id", "meta_key", "meta_value")
	for _, key := range font.MetaKeysSorted(meta) {
		if !ks.Allows(key) {
			return fmt.Errorf("meta key %q not allowed for kind %q", key, r.Kind)
		}
		ins.Values(r.ID, key, meta[key])
	}
	query, args := ins.Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to write metadata of record %d: %w", r.ID, err)
	}
	return nil
}

func (s *Store) loadMeta(ctx context.Context, records []*font.Record) error {
	if len(records) == 0 {
		return nil
	}
	byID := make(map[int]*font.Record, len(records))
	ids := make([]any, 0, len(records))
	for _, r := range records {
		byID[r.ID] = r
		ids = append(ids, r.ID)
	}

	query, args := s.builder().
		Select("post_id", "meta_key", "meta_value").
		From(entsql.Table(metaTableName)).
		Where(entsql.In("post_id", ids...)).
		OrderBy("id").
		Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query metadata: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			postID     int
			key, value string
		)
		if err := rows.Scan(&postID, &key, &value); err != nil {
			return fmt.Errorf("failed to scan metadata: %w", err)
		}
		r, ok := byID[postID]
		if !ok {
			continue
		}
		// Keys written by older versions are skipped.
		_ = r.SetMeta(key, value)
	}
	return rows.Err()
}

func scanRecords(rows *stdsql.Rows) ([]*font.Record, error) {
	defer rows.Close()

	var records []*font.Record
	for rows.Next() {
		var (
			r            font.Record
			kind, status string
		)
		if err := rows.Scan(&r.ID, &kind, &r.Title, &r.Content, &status, &r.MenuOrder, &r.AuthorID, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		r.Kind = font.Kind(kind)
		r.Status = font.Status(status)
		records = append(records, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}
	return records, nil
}

func (s *Store) withTx(ctx context.Context, fn func(tx *stdsql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func direction(col string, desc bool) string {
	if desc {
		return entsql.Desc(col)
	}
	return entsql.Asc(col)
}
