package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"HeadlineTrends/internal/domain"
	"HeadlineTrends/internal/infrastructure/storage"
	"HeadlineTrends/internal/ports"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

const (
	entriesTable = "cache_entries"
	rawTable     = "raw_headlines"
	cleanedTable = "cleaned_headlines"
)

// Store keeps both headline tables in a SQL database, one row per article and position.
type Store struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

var _ ports.CacheStore = (*Store)(nil)

// Open connects to the database and makes sure the schema exists.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	store := New(db, driver)
	if err := store.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// New wraps an existing connection. The driver name picks the placeholder format.
func New(db *sql.DB, driver string) *Store {
	var format sq.PlaceholderFormat = sq.Question
	if driver == DriverPostgres {
		format = sq.Dollar
	}
	return &Store{db: db, sb: sq.StatementBuilder.PlaceholderFormat(format)}
}

// Migrate creates the cache tables when missing.
func (s *Store) Migrate(ctx context.Context) error {
	statements := []string{
		createTable(entriesTable, "tbl TEXT NOT NULL, country TEXT NOT NULL, PRIMARY KEY (tbl, country)"),
		createTable(rawTable, articleColumnsDDL(storage.RawColumns)),
		createTable(cleanedTable, articleColumnsDDL(storage.CleanedColumns)),
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) PutRaw(ctx context.Context, country string, articles []domain.Article) error {
	rows := make([]storage.Row, 0, len(articles))
	for _, a := range articles {
		rows = append(rows, storage.RawRow(a))
	}
	return s.put(ctx, domain.TableRaw, country, storage.RawColumns, rows)
}

func (s *Store) GetRaw(ctx context.Context, country string) ([]domain.Article, error) {
	rows, err := s.get(ctx, domain.TableRaw, country, storage.RawColumns)
	if err != nil {
		return nil, err
	}
	articles := make([]domain.Article, 0, len(rows))
	for _, r := range rows {
		articles = append(articles, storage.ArticleFromRow(r))
	}
	return articles, nil
}

func (s *Store) PutCleaned(ctx context.Context, country string, cleaned []domain.CleanedArticle) error {
	rows := make([]storage.Row, 0, len(cleaned))
	for _, c := range cleaned {
		rows = append(rows, storage.CleanedRow(c))
	}
	return s.put(ctx, domain.TableCleaned, country, storage.CleanedColumns, rows)
}

func (s *Store) GetCleaned(ctx context.Context, country string) ([]domain.CleanedArticle, error) {
	rows, err := s.get(ctx, domain.TableCleaned, country, storage.CleanedColumns)
	if err != nil {
		return nil, err
	}
	cleaned := make([]domain.CleanedArticle, 0, len(rows))
	for _, r := range rows {
		cleaned = append(cleaned, storage.CleanedFromRow(r))
	}
	return cleaned, nil
}

func (s *Store) Exists(ctx context.Context, table domain.Table, country string) (bool, error) {
	query, args, err := s.sb.Select("1").
		From(entriesTable).
		Where(sq.Eq{"tbl": string(table), "country": country}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists query: %w", err)
	}

	var one int
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&one)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	default:
		return false, fmt.Errorf("query %s entry for %s: %w", table, country, err)
	}
}

func (s *Store) Countries(ctx context.Context, table domain.Table) ([]string, error) {
	query, args, err := s.sb.Select("country").
		From(entriesTable).
		Where(sq.Eq{"tbl": string(table)}).
		OrderBy("country").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build countries query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query countries: %w", err)
	}

	countries := []string{}
	for rows.Next() {
		var cc string
		if err := rows.Scan(&cc); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan country: %w", err)
		}
		countries = append(countries, cc)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return countries, nil
}

func (s *Store) Clear(ctx context.Context) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{rawTable, cleanedTable, entriesTable} {
			query, args, err := s.sb.Delete(table).ToSql()
			if err != nil {
				return fmt.Errorf("build delete %s: %w", table, err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return nil
	})
}

// put replaces the whole entry for a country in one transaction.
func (s *Store) put(ctx context.Context, table domain.Table, country string, columns []string, rows []storage.Row) error {
	name := tableName(table)

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := s.exec(ctx, tx, s.sb.Delete(name).Where(sq.Eq{"country": country})); err != nil {
			return fmt.Errorf("delete %s rows for %s: %w", table, country, err)
		}
		if err := s.exec(ctx, tx, s.sb.Delete(entriesTable).Where(sq.Eq{"tbl": string(table), "country": country})); err != nil {
			return fmt.Errorf("delete %s entry for %s: %w", table, country, err)
		}

		if len(rows) > 0 {
			insert := s.sb.Insert(name).Columns(append([]string{"country", "position"}, columns...)...)
			for i, r := range rows {
				values := []any{country, i}
				for _, v := range r.Values(columns) {
					values = append(values, v)
				}
				insert = insert.Values(values...)
			}
			if err := s.exec(ctx, tx, insert); err != nil {
				return fmt.Errorf("insert %s rows for %s: %w", table, country, err)
			}
		}

		marker := s.sb.Insert(entriesTable).Columns("tbl", "country").Values(string(table), country)
		if err := s.exec(ctx, tx, marker); err != nil {
			return fmt.Errorf("insert %s entry for %s: %w", table, country, err)
		}
		return nil
	})
}

func (s *Store) get(ctx context.Context, table domain.Table, country string, columns []string) ([]storage.Row, error) {
	ok, err := s.Exists(ctx, table, country)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%s cache for %s: %w", table, country, domain.ErrNotFound)
	}

	query, args, err := s.sb.Select(columns...).
		From(tableName(table)).
		Where(sq.Eq{"country": country}).
		OrderBy("position").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s rows for %s: %w", table, country, err)
	}

	result := []storage.Row{}
	for rows.Next() {
		values := make([]string, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan %s row: %w", table, err)
		}
		result = append(result, storage.RowFromRecord(columns, values))
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

func (s *Store) exec(ctx context.Context, tx *sql.Tx, b sq.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build statement: %w", err)
	}
	_, err = tx.ExecContext(ctx, query, args...)
	return err
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func tableName(table domain.Table) string {
	if table == domain.TableCleaned {
		return cleanedTable
	}
	return rawTable
}

func createTable(name, body string) string {
	return "CREATE TABLE IF NOT EXISTS " + name + " (" + body + ")"
}

func articleColumnsDDL(columns []string) string {
	ddl := "country TEXT NOT NULL, position INTEGER NOT NULL"
	for _, col := range columns {
		ddl += ", " + col + " TEXT NOT NULL DEFAULT ''"
	}
	return ddl + ", PRIMARY KEY (country, position)"
}
