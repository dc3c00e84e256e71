package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apperrors "options-dashboard/internal/errors"
	"options-dashboard/internal/models"
)

// SQLiteStore implements QuoteStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based quote store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool for concurrent access
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS quote_lookups (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ticker TEXT NOT NULL,
		name TEXT,
		price REAL NOT NULL,
		as_of DATETIME,
		fallback INTEGER DEFAULT 0,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_quote_lookups_ticker ON quote_lookups(ticker, id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveQuote records a quote lookup.
func (s *SQLiteStore) SaveQuote(ctx context.Context, q models.Quote, fallback bool) (int64, error) {
	query := `
		INSERT INTO quote_lookups (ticker, name, price, as_of, fallback, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	var asOf any
	if !q.AsOf.IsZero() {
		asOf = q.AsOf.UTC()
	}

	res, err := s.db.ExecContext(ctx, query,
		strings.ToUpper(q.Ticker), q.Name, q.LastPrice, asOf, boolToInt(fallback), time.Now().UTC())
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrDatabaseError, err.Error())
	}
	return res.LastInsertId()
}

// RecentQuotes returns recorded lookups, newest first.
func (s *SQLiteStore) RecentQuotes(ctx context.Context, filter QuoteFilter) ([]models.QuoteRecord, error) {
	query := `SELECT id, ticker, name, price, as_of, fallback, created_at FROM quote_lookups WHERE 1=1`
	args := []any{}

	if filter.Ticker != "" {
		query += " AND ticker = ?"
		args = append(args, strings.ToUpper(filter.Ticker))
	}
	if !filter.IncludeFallback {
		query += " AND fallback = 0"
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseError, err.Error())
	}
	defer rows.Close()

	var records []models.QuoteRecord
	for rows.Next() {
		rec, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}

	return records, rows.Err()
}

// LastQuote returns the newest successful lookup for ticker.
func (s *SQLiteStore) LastQuote(ctx context.Context, ticker string) (*models.QuoteRecord, error) {
	query := `
		SELECT id, ticker, name, price, as_of, fallback, created_at FROM quote_lookups
		WHERE ticker = ? AND fallback = 0
		ORDER BY id DESC LIMIT 1
	`

	rec, err := scanQuote(s.db.QueryRowContext(ctx, query, strings.ToUpper(ticker)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Wrapf(apperrors.ErrDataNotFound, "no quote recorded for %s", ticker)
	}
	return rec, err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanQuote(row scanner) (*models.QuoteRecord, error) {
	var (
		rec      models.QuoteRecord
		name     sql.NullString
		asOf     sql.NullTime
		fallback int
	)
	if err := row.Scan(&rec.ID, &rec.Quote.Ticker, &name, &rec.Quote.LastPrice, &asOf, &fallback, &rec.CreatedAt); err != nil {
		return nil, err
	}
	rec.Quote.Name = name.String
	if asOf.Valid {
		rec.Quote.AsOf = asOf.Time
	}
	rec.Fallback = fallback != 0
	return &rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
