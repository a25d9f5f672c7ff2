package filestore

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"HeadlineTrends/internal/domain"
	"HeadlineTrends/internal/infrastructure/storage"
	"HeadlineTrends/internal/ports"
)

const (
	rawPrefix     = "top_headlines_"
	cleanedPrefix = "cleaned_headlines_"
	fileExt       = ".csv"
)

// Store keeps one CSV file per country and table inside a cache directory.
type Store struct {
	dir string
}

var _ ports.CacheStore = (*Store)(nil)

// New returns a store rooted at dir. The directory is created on first write.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the file backing a table entry.
func (s *Store) Path(table domain.Table, country string) string {
	return filepath.Join(s.dir, prefix(table)+country+fileExt)
}

func (s *Store) PutRaw(ctx context.Context, country string, articles []domain.Article) error {
	records := make([][]string, 0, len(articles))
	for _, a := range articles {
		records = append(records, storage.RawRow(a).Values(storage.RawColumns))
	}
	return s.write(ctx, domain.TableRaw, country, storage.RawColumns, records)
}

func (s *Store) GetRaw(ctx context.Context, country string) ([]domain.Article, error) {
	rows, err := s.read(ctx, domain.TableRaw, country)
	if err != nil {
		return nil, err
	}
	articles := make([]domain.Article, 0, len(rows))
	for _, r := range rows {
		articles = append(articles, storage.ArticleFromRow(r))
	}
	return articles, nil
}

func (s *Store) PutCleaned(ctx context.Context, country string, rows []domain.CleanedArticle) error {
	records := make([][]string, 0, len(rows))
	for _, c := range rows {
		records = append(records, storage.CleanedRow(c).Values(storage.CleanedColumns))
	}
	return s.write(ctx, domain.TableCleaned, country, storage.CleanedColumns, records)
}

func (s *Store) GetCleaned(ctx context.Context, country string) ([]domain.CleanedArticle, error) {
	rows, err := s.read(ctx, domain.TableCleaned, country)
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
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, err := os.Stat(s.Path(table, country))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat %s cache for %s: %w", table, country, err)
	}
}

// Countries lists the country codes with an entry in the table, sorted.
func (s *Store) Countries(ctx context.Context, table domain.Table) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list cache dir: %w", err)
	}

	countries := []string{}
	for _, entry := range entries {
		if cc, ok := countryFromName(table, entry.Name()); ok && !entry.IsDir() {
			countries = append(countries, cc)
		}
	}
	sort.Strings(countries)
	return countries, nil
}

// Clear removes every raw and cleaned entry. Unrelated files in the directory are left alone.
func (s *Store) Clear(ctx context.Context) error {
	for _, table := range []domain.Table{domain.TableRaw, domain.TableCleaned} {
		countries, err := s.Countries(ctx, table)
		if err != nil {
			return err
		}
		for _, cc := range countries {
			if err := os.Remove(s.Path(table, cc)); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("remove %s cache for %s: %w", table, cc, err)
			}
		}
	}
	return nil
}

func (s *Store) write(ctx context.Context, table domain.Table, country string, header []string, records [][]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".tmp-"+prefix(table)+"*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write header: %w", err)
	}
	if err := w.WriteAll(records); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write %s rows: %w", table, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.Path(table, country)); err != nil {
		cleanup()
		return fmt.Errorf("replace %s cache for %s: %w", table, country, err)
	}
	return nil
}

func (s *Store) read(ctx context.Context, table domain.Table, country string) ([]storage.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path(table, country))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s cache for %s: %w", table, country, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s cache for %s: %w", table, country, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return []storage.Row{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s header for %s: %w", table, country, err)
	}

	rows := []storage.Row{}
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s cache for %s: %w", table, country, err)
		}
		rows = append(rows, storage.RowFromRecord(header, record))
	}
	return rows, nil
}

func prefix(table domain.Table) string {
	if table == domain.TableCleaned {
		return cleanedPrefix
	}
	return rawPrefix
}

func countryFromName(table domain.Table, name string) (string, bool) {
	p := prefix(table)
	if !strings.HasPrefix(name, p) || !strings.HasSuffix(name, fileExt) {
		return "", false
	}
	cc := strings.TrimSuffix(strings.TrimPrefix(name, p), fileExt)
	if _, err := domain.NormalizeCountry(cc); err != nil {
		return "", false
	}
	return cc, true
}
