package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/giftvault/voucher-service/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS vouchers (
	id          TEXT PRIMARY KEY,
	fingerprint TEXT NOT NULL UNIQUE,
	draft       TEXT NOT NULL,
	store       TEXT,
	source_type TEXT NOT NULL,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_vouchers_store ON vouchers(store);
CREATE INDEX IF NOT EXISTS idx_vouchers_source_type ON vouchers(source_type);
CREATE INDEX IF NOT EXISTS idx_vouchers_created_at ON vouchers(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveVoucher inserts a draft keyed by its content fingerprint. A second save
// of the same store, code, amount, and expiry returns ErrDuplicate.
func (s *SQLiteStore) SaveVoucher(ctx context.Context, draft model.Draft, sourceType string) (*SavedVoucher, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	var amount float64
	if draft.Amount != nil {
		amount = *draft.Amount
	}
	fp := model.Fingerprint(draft.Store, draft.Code, amount, draft.ExpiryDate)

	draftJSON, err := json.Marshal(draft)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal draft")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO vouchers (id, fingerprint, draft, store, source_type, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, fp, string(draftJSON), draft.Store, sourceType, now,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ErrDuplicate
		}
		return nil, eris.Wrap(err, "sqlite: insert voucher")
	}

	return &SavedVoucher{
		ID:          id,
		Fingerprint: fp,
		Draft:       draft,
		SourceType:  sourceType,
		CreatedAt:   now,
	}, nil
}

func (s *SQLiteStore) GetVoucher(ctx context.Context, id string) (*SavedVoucher, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, fingerprint, draft, source_type, created_at FROM vouchers WHERE id = ?`,
		id,
	)
	return scanVoucher(row)
}

func (s *SQLiteStore) ListVouchers(ctx context.Context, filter Filter) ([]SavedVoucher, error) {
	query := `SELECT id, fingerprint, draft, source_type, created_at FROM vouchers WHERE 1=1`
	var args []any

	if filter.Store != "" {
		query += ` AND store = ?`
		args = append(args, filter.Store)
	}
	if filter.Source != "" {
		query += ` AND source_type = ?`
		args = append(args, filter.Source)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list vouchers")
	}
	defer rows.Close()

	var vouchers []SavedVoucher
	for rows.Next() {
		v, err := scanVoucher(rows)
		if err != nil {
			return nil, err
		}
		vouchers = append(vouchers, *v)
	}
	return vouchers, eris.Wrap(rows.Err(), "sqlite: list vouchers iterate")
}

func (s *SQLiteStore) DeleteVoucher(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM vouchers WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete voucher %s", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanVoucher(row scannable) (*SavedVoucher, error) {
	var v SavedVoucher
	var draftJSON string

	err := row.Scan(&v.ID, &v.Fingerprint, &draftJSON, &v.SourceType, &v.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan voucher")
	}
	if err := json.Unmarshal([]byte(draftJSON), &v.Draft); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal draft")
	}
	return &v, nil
}
