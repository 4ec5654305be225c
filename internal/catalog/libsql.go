package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/tursodatabase/go-libsql"

	"github.com/rendis/dsviz/internal/expressions"
	"github.com/rendis/dsviz/pkg/schema"
)

// LibSQLStore implements Store on libSQL (embedded SQLite fork).
type LibSQLStore struct {
	db  *sql.DB
	cel *expressions.CELEngine
}

// NewLibSQLStore opens a libSQL database at the given path. The path should
// be a file URI, e.g. "file:/path/to/catalog.db". cel may be nil, which
// disables expression filters.
func NewLibSQLStore(dbPath string, cel *expressions.CELEngine) (*LibSQLStore, error) {
	db, err := sql.Open("libsql", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open libsql: %w", err)
	}
	db.SetMaxOpenConns(1)

	// Some PRAGMAs return rows so we use QueryRow.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, p := range pragmas {
		var result string
		_ = db.QueryRow(p).Scan(&result)
	}

	return &LibSQLStore{db: db, cel: cel}, nil
}

// Close closes the database.
func (s *LibSQLStore) Close() error { return s.db.Close() }

// Migrate runs all pending database migrations.
func (s *LibSQLStore) Migrate(ctx context.Context) error {
	return runMigrations(ctx, s.db)
}

func (s *LibSQLStore) Put(ctx context.Context, item schema.Item) error {
	if item.ID == "" {
		return schema.NewError(schema.ErrCodeValidation, "item id is required")
	}
	status := item.Status
	if status == "" {
		status = schema.ItemStatusIdle
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO items (id, filename, content_type, size, status, uploaded_at) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET filename=excluded.filename, content_type=excluded.content_type,
		 size=excluded.size, status=excluded.status, updated_at=CURRENT_TIMESTAMP`,
		item.ID, item.Name, item.ContentType, item.Size, string(status), timeOrNow(item.UploadedAt),
	)
	if err != nil {
		return storeError("put", err)
	}
	return nil
}

func (s *LibSQLStore) Get(ctx context.Context, id string) (schema.Item, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, filename, content_type, size, status, uploaded_at FROM items WHERE id = ?`, id)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return schema.Item{}, storeNotFound(id)
	}
	if err != nil {
		return schema.Item{}, storeError("get", err)
	}
	return item, nil
}

// List pushes the column filters into SQL and applies the CEL expression,
// offset and limit in memory, since an expression can reject rows the
// database would otherwise count.
func (s *LibSQLStore) List(ctx context.Context, f ItemFilter) ([]schema.Item, error) {
	var (
		where []string
		args  []any
	)
	if f.ContentType != "" {
		where = append(where, "content_type = ?")
		args = append(args, f.ContentType)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	if !f.Since.IsZero() {
		where = append(where, "uploaded_at >= ?")
		args = append(args, f.Since)
	}

	query := `SELECT id, filename, content_type, size, status, uploaded_at FROM items`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY uploaded_at ASC, id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeError("list", err)
	}
	defer rows.Close()

	var items []schema.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, storeError("list", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("list", err)
	}
	if items == nil {
		items = []schema.Item{}
	}
	return applyFilter(ctx, s.cel, items, f)
}

func (s *LibSQLStore) UpdateStatus(ctx context.Context, id string, status schema.ItemStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE items SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, string(status), id)
	if err != nil {
		return storeError("update status", err)
	}
	return checkRowsAffected(res, id)
}

func (s *LibSQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return storeError("delete", err)
	}
	return checkRowsAffected(res, id)
}

func (s *LibSQLStore) Stats(ctx context.Context) (Stats, error) {
	st := Stats{ByType: map[string]int{}, ByStatus: map[string]int{}}

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(size), 0) FROM items`,
	).Scan(&st.Items, &st.TotalBytes); err != nil {
		return Stats{}, storeError("stats", err)
	}

	group := func(column string, into map[string]int) error {
		rows, err := s.db.QueryContext(ctx,
			fmt.Sprintf(`SELECT %s, COUNT(*) FROM items GROUP BY %s`, column, column))
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var key string
			var n int
			if err := rows.Scan(&key, &n); err != nil {
				return err
			}
			into[key] = n
		}
		return rows.Err()
	}
	if err := group("content_type", st.ByType); err != nil {
		return Stats{}, storeError("stats", err)
	}
	if err := group("status", st.ByStatus); err != nil {
		return Stats{}, storeError("stats", err)
	}
	return st, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(sc scanner) (schema.Item, error) {
	var (
		item   schema.Item
		status string
	)
	if err := sc.Scan(&item.ID, &item.Name, &item.ContentType, &item.Size, &status, &item.UploadedAt); err != nil {
		return schema.Item{}, err
	}
	item.Status = schema.ItemStatus(status)
	item.UploadedAt = item.UploadedAt.UTC()
	return item, nil
}

func checkRowsAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return storeError("rows affected", err)
	}
	if n == 0 {
		return storeNotFound(id)
	}
	return nil
}

func timeOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}

var _ Store = (*LibSQLStore)(nil)
