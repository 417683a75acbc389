package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/microsoft/go-mssqldb"
	_ "modernc.org/sqlite"

	"ListingCrawler/internal/domain"
	"ListingCrawler/internal/ports"
)

const listingsTable = "listings"

// Dialect ties a configured driver name to its database/sql driver,
// placeholder style and DDL.
type Dialect struct {
	Name        string
	SQLDriver   string
	Placeholder sq.PlaceholderFormat
	Schema      string
}

var dialects = map[string]Dialect{
	"sqlite": {
		Name:        "sqlite",
		SQLDriver:   "sqlite",
		Placeholder: sq.Question,
		Schema: `CREATE TABLE IF NOT EXISTS listings (
			detail_link TEXT PRIMARY KEY,
			source      TEXT NOT NULL,
			title       TEXT NOT NULL,
			year        TEXT NOT NULL,
			poster_link TEXT NOT NULL,
			fingerprint TEXT NOT NULL,
			first_seen  INTEGER NOT NULL,
			last_seen   INTEGER NOT NULL
		)`,
	},
	"postgres": {
		Name:        "postgres",
		SQLDriver:   "pgx",
		Placeholder: sq.Dollar,
		Schema: `CREATE TABLE IF NOT EXISTS listings (
			detail_link TEXT PRIMARY KEY,
			source      TEXT NOT NULL,
			title       TEXT NOT NULL,
			year        TEXT NOT NULL,
			poster_link TEXT NOT NULL,
			fingerprint CHAR(64) NOT NULL,
			first_seen  BIGINT NOT NULL,
			last_seen   BIGINT NOT NULL
		)`,
	},
	"sqlserver": {
		Name:        "sqlserver",
		SQLDriver:   "sqlserver",
		Placeholder: sq.AtP,
		Schema: `IF OBJECT_ID('listings', 'U') IS NULL
		CREATE TABLE listings (
			detail_link NVARCHAR(450) NOT NULL PRIMARY KEY,
			source      NVARCHAR(200) NOT NULL,
			title       NVARCHAR(MAX) NOT NULL,
			year        NVARCHAR(16) NOT NULL,
			poster_link NVARCHAR(MAX) NOT NULL,
			fingerprint CHAR(64) NOT NULL,
			first_seen  BIGINT NOT NULL,
			last_seen   BIGINT NOT NULL
		)`,
	},
}

// LookupDialect resolves a configured driver name.
func LookupDialect(driver string) (Dialect, error) {
	d, ok := dialects[driver]
	if !ok {
		return Dialect{}, fmt.Errorf("unsupported storage driver %q", driver)
	}
	return d, nil
}

// SQLRepository persists listings through database/sql and squirrel.
type SQLRepository struct {
	db      *sql.DB
	dialect Dialect
	builder sq.StatementBuilderType
	now     func() time.Time
}

var _ ports.ListingRepository = (*SQLRepository)(nil)

// Open connects to the configured database and makes sure the schema exists.
func Open(ctx context.Context, driver, dsn string) (*SQLRepository, error) {
	dialect, err := LookupDialect(driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(dialect.SQLDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	repo := NewSQLRepository(db, dialect)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// NewSQLRepository wraps an open database handle.
func NewSQLRepository(db *sql.DB, dialect Dialect) *SQLRepository {
	return &SQLRepository{
		db:      db,
		dialect: dialect,
		builder: sq.StatementBuilder.PlaceholderFormat(dialect.Placeholder),
		now:     time.Now,
	}
}

// EnsureSchema creates the listings table when it is missing.
func (r *SQLRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, r.dialect.Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Upsert stores listings keyed by detail link inside one transaction.
// Unchanged listings move to the latest source and have their last_seen
// stamp refreshed; neither counts as created or updated.
func (r *SQLRepository) Upsert(ctx context.Context, source string, listings []domain.Listing) (created, updated int, err error) {
	if len(listings) == 0 {
		return 0, 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	seenAt := r.now().UTC().Unix()
	for _, l := range listings {
		fingerprint := Fingerprint(l)

		stored, found, err := r.storedFingerprint(ctx, tx, l.DetailLink)
		if err != nil {
			return 0, 0, err
		}

		var query sq.Sqlizer
		switch {
		case !found:
			query = r.builder.Insert(listingsTable).
				Columns("detail_link", "source", "title", "year", "poster_link", "fingerprint", "first_seen", "last_seen").
				Values(l.DetailLink, source, l.Title, l.Year, l.PosterLink, fingerprint, seenAt, seenAt)
			created++
		case stored == fingerprint:
			query = r.builder.Update(listingsTable).
				Set("source", source).
				Set("last_seen", seenAt).
				Where(sq.Eq{"detail_link": l.DetailLink})
		default:
			query = r.builder.Update(listingsTable).
				SetMap(map[string]any{
					"source":      source,
					"title":       l.Title,
					"year":        l.Year,
					"poster_link": l.PosterLink,
					"fingerprint": fingerprint,
					"last_seen":   seenAt,
				}).
				Where(sq.Eq{"detail_link": l.DetailLink})
			updated++
		}

		if err := execTx(ctx, tx, query); err != nil {
			return 0, 0, fmt.Errorf("store %s: %w", l.DetailLink, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("commit: %w", err)
	}
	return created, updated, nil
}

func (r *SQLRepository) storedFingerprint(ctx context.Context, tx *sql.Tx, detailLink string) (string, bool, error) {
	query, args, err := r.builder.Select("fingerprint").
		From(listingsTable).
		Where(sq.Eq{"detail_link": detailLink}).
		ToSql()
	if err != nil {
		return "", false, fmt.Errorf("build select: %w", err)
	}

	var fingerprint string
	err = tx.QueryRowContext(ctx, query, args...).Scan(&fingerprint)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup %s: %w", detailLink, err)
	}
	return fingerprint, true, nil
}

// List returns the stored listings of one source; empty source lists all.
func (r *SQLRepository) List(ctx context.Context, source string) ([]domain.StoredListing, error) {
	q := r.builder.Select("detail_link", "source", "title", "year", "poster_link", "fingerprint", "first_seen", "last_seen").
		From(listingsTable).
		OrderBy("first_seen", "detail_link")
	if source != "" {
		q = q.Where(sq.Eq{"source": source})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query listings: %w", err)
	}

	var result []domain.StoredListing
	for rows.Next() {
		var (
			s                   domain.StoredListing
			firstSeen, lastSeen int64
		)
		if err := rows.Scan(&s.DetailLink, &s.Source, &s.Title, &s.Year, &s.PosterLink, &s.Fingerprint, &firstSeen, &lastSeen); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		s.FirstSeen = time.Unix(firstSeen, 0).UTC()
		s.LastSeen = time.Unix(lastSeen, 0).UTC()
		result = append(result, s)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return result, nil
}

// Count returns the number of stored listings.
func (r *SQLRepository) Count(ctx context.Context) (int, error) {
	query, args, err := r.builder.Select("COUNT(*)").From(listingsTable).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count listings: %w", err)
	}
	return count, nil
}

// Close releases the database handle.
func (r *SQLRepository) Close() error {
	return r.db.Close()
}

func execTx(ctx context.Context, tx *sql.Tx, q sq.Sqlizer) error {
	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build statement: %w", err)
	}
	_, err = tx.ExecContext(ctx, query, args...)
	return err
}
