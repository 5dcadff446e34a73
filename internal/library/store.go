// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package library persists canonical records in a local SQLite library.
// Implements: prd005-library (R1-R5);
//
//	docs/ARCHITECTURE § Library.
package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/bibmerge/pkg/types"
)

const dbFile = "library.db"

// Store manages the library SQLite database.
type Store struct {
	db         *sql.DB
	libraryDir string
	maxResults int
}

// NewStore opens or creates the library database at
// libraryDir/library.db. It creates the schema if it does not exist
// (R1.1, R1.2).
func NewStore(cfg types.LibraryConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.LibraryDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating library directory: %w", err)
	}

	dbPath := filepath.Join(cfg.LibraryDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		libraryDir: cfg.LibraryDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS records (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			key TEXT NOT NULL UNIQUE,
			title TEXT,
			authors TEXT,
			year INTEGER,
			venue TEXT,
			abstract TEXT,
			external_urls TEXT,
			pdf_urls TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS identifiers (
			kind TEXT NOT NULL,
			value TEXT NOT NULL,
			record_key TEXT NOT NULL REFERENCES records(key) ON DELETE CASCADE,
			PRIMARY KEY (kind, value)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_identifiers_record ON identifiers(record_key)`,
		`CREATE TABLE IF NOT EXISTS provenance (
			record_key TEXT NOT NULL REFERENCES records(key) ON DELETE CASCADE,
			source_id TEXT NOT NULL,
			source_local_id TEXT NOT NULL,
			PRIMARY KEY (record_key, source_id, source_local_id)
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='records_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE records_fts USING fts5(title, abstract, content=records, content_rowid=rowid)`,
			`CREATE TRIGGER records_ai AFTER INSERT ON records BEGIN
				INSERT INTO records_fts(rowid, title, abstract) VALUES (new.rowid, new.title, new.abstract);
			END`,
			`CREATE TRIGGER records_ad AFTER DELETE ON records BEGIN
				INSERT INTO records_fts(records_fts, rowid, title, abstract) VALUES('delete', old.rowid, old.title, old.abstract);
			END`,
			`CREATE TRIGGER records_au AFTER UPDATE ON records BEGIN
				INSERT INTO records_fts(records_fts, rowid, title, abstract) VALUES('delete', old.rowid, old.title, old.abstract);
				INSERT INTO records_fts(rowid, title, abstract) VALUES (new.rowid, new.title, new.abstract);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// RecordKey derives the stable library key for a canonical record:
// the strongest identifier it carries, falling back to its first
// provenance entry (R2.1).
func RecordKey(r types.CanonicalRecord) string {
	for _, kind := range []types.IdentifierKind{
		types.KindDOI, types.KindArxiv, types.KindPMID, types.KindBibcode,
	} {
		if v := r.Identifier(kind); v != "" {
			return string(kind) + ":" + v
		}
	}
	if len(r.Provenance) > 0 {
		p := r.Provenance[0]
		return "src:" + p.SourceID + "/" + p.SourceLocalID
	}
	return ""
}

// ImportSummary holds counts from a library import run (R2.4).
type ImportSummary struct {
	Added   int
	Updated int
	Failed  int
}

// Total returns the number of records processed.
func (s ImportSummary) Total() int {
	return s.Added + s.Updated + s.Failed
}

// Import upserts canonical records into the library. Records that
// already exist (same key) are replaced with the newer merge, so
// re-importing a re-run query refreshes rather than duplicates
// (R2.2, R2.3).
func (s *Store) Import(ctx context.Context, records []types.CanonicalRecord, w io.Writer) (ImportSummary, error) {
	var summary ImportSummary

	for _, r := range records {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		key := RecordKey(r)
		if key == "" {
			fmt.Fprintf(w, "failed  (no key): %s\n", r.Title)
			summary.Failed++
			continue
		}

		var exists int
		if err := s.db.QueryRowContext(ctx,
			`SELECT count(*) FROM records WHERE key = ?`, key,
		).Scan(&exists); err != nil {
			return summary, fmt.Errorf("checking record %s: %w", key, err)
		}

		if err := s.upsertRecord(ctx, key, r); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", key, err)
			summary.Failed++
			continue
		}

		if exists > 0 {
			fmt.Fprintf(w, "updated %s\n", key)
			summary.Updated++
		} else {
			fmt.Fprintf(w, "added   %s\n", key)
			summary.Added++
		}
	}

	fmt.Fprintf(w, "\nadded: %d, updated: %d, failed: %d\n",
		summary.Added, summary.Updated, summary.Failed)

	return summary, nil
}

func (s *Store) upsertRecord(ctx context.Context, key string, r types.CanonicalRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	authorsJSON, _ := json.Marshal(r.Authors)
	extURLsJSON, _ := json.Marshal(r.ExternalURLs)
	pdfURLsJSON, _ := json.Marshal(r.PDFURLs)

	_, err = tx.ExecContext(ctx,
		`INSERT INTO records (key, title, authors, year, venue, abstract, external_urls, pdf_urls)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
			title=excluded.title, authors=excluded.authors, year=excluded.year,
			venue=excluded.venue, abstract=excluded.abstract,
			external_urls=excluded.external_urls, pdf_urls=excluded.pdf_urls`,
		key, r.Title, string(authorsJSON), r.Year, r.Venue, r.Abstract,
		string(extURLsJSON), string(pdfURLsJSON),
	)
	if err != nil {
		return fmt.Errorf("upserting record: %w", err)
	}

	// Replace identifier and provenance rows so removals in a re-merge
	// do not leave stale links.
	if _, err := tx.ExecContext(ctx, `DELETE FROM identifiers WHERE record_key = ?`, key); err != nil {
		return fmt.Errorf("clearing identifiers: %w", err)
	}
	for _, id := range r.Identifiers {
		_, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO identifiers (kind, value, record_key) VALUES (?, ?, ?)`,
			string(id.Kind), id.Value, key,
		)
		if err != nil {
			return fmt.Errorf("inserting identifier %s:%s: %w", id.Kind, id.Value, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM provenance WHERE record_key = ?`, key); err != nil {
		return fmt.Errorf("clearing provenance: %w", err)
	}
	for _, p := range r.Provenance {
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO provenance (record_key, source_id, source_local_id) VALUES (?, ?, ?)`,
			key, p.SourceID, p.SourceLocalID,
		)
		if err != nil {
			return fmt.Errorf("inserting provenance %s/%s: %w", p.SourceID, p.SourceLocalID, err)
		}
	}

	return tx.Commit()
}

// QueryOptions holds parameters for library queries (R3).
type QueryOptions struct {
	// Query is the FTS5 full-text search string over title and
	// abstract (R3.1).
	Query string

	// Year filters by publication year. Zero means no filter (R3.2).
	Year int

	// SourceID filters to records with provenance from one source (R3.3).
	SourceID string

	// MaxResults limits result count. Zero uses the store default (R3.4).
	MaxResults int
}

// Entry is a stored record with its library key.
type Entry struct {
	Key    string                `json:"key" yaml:"key"`
	Record types.CanonicalRecord `json:"record" yaml:"record"`
}

// List queries the library with optional full-text search and
// structured filters. Results are ranked by relevance for full-text
// queries or sorted by year descending then key otherwise (R3.5).
func (s *Store) List(ctx context.Context, opts QueryOptions) ([]Entry, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT r.key, r.title, r.authors, r.year, r.venue, r.abstract,
				r.external_urls, r.pdf_urls
			FROM records_fts
			JOIN records r ON r.rowid = records_fts.rowid
			WHERE records_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT r.key, r.title, r.authors, r.year, r.venue, r.abstract,
				r.external_urls, r.pdf_urls
			FROM records r
			WHERE 1=1`)
	}

	if opts.Year != 0 {
		qb.WriteString(` AND r.year = ?`)
		args = append(args, opts.Year)
	}

	if opts.SourceID != "" {
		qb.WriteString(` AND EXISTS (SELECT 1 FROM provenance p WHERE p.record_key = r.key AND p.source_id = ?)`)
		args = append(args, opts.SourceID)
	}

	if useFTS {
		qb.WriteString(` ORDER BY records_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY r.year DESC, r.key`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying library: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e           Entry
			authorsJSON sql.NullString
			extJSON     sql.NullString
			pdfJSON     sql.NullString
		)

		if err := rows.Scan(
			&e.Key, &e.Record.Title, &authorsJSON, &e.Record.Year,
			&e.Record.Venue, &e.Record.Abstract, &extJSON, &pdfJSON,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		if authorsJSON.Valid {
			json.Unmarshal([]byte(authorsJSON.String), &e.Record.Authors)
		}
		if extJSON.Valid {
			json.Unmarshal([]byte(extJSON.String), &e.Record.ExternalURLs)
		}
		if pdfJSON.Valid {
			json.Unmarshal([]byte(pdfJSON.String), &e.Record.PDFURLs)
		}

		if err := s.loadLinks(ctx, &e); err != nil {
			return nil, err
		}

		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (s *Store) loadLinks(ctx context.Context, e *Entry) error {
	idRows, err := s.db.QueryContext(ctx,
		`SELECT kind, value FROM identifiers WHERE record_key = ? ORDER BY kind, value`, e.Key)
	if err != nil {
		return fmt.Errorf("loading identifiers: %w", err)
	}
	defer idRows.Close()
	for idRows.Next() {
		var kind, value string
		if err := idRows.Scan(&kind, &value); err != nil {
			return fmt.Errorf("scanning identifier: %w", err)
		}
		e.Record.Identifiers = append(e.Record.Identifiers,
			types.Identifier{Kind: types.IdentifierKind(kind), Value: value})
	}
	if err := idRows.Err(); err != nil {
		return err
	}

	provRows, err := s.db.QueryContext(ctx,
		`SELECT source_id, source_local_id FROM provenance WHERE record_key = ? ORDER BY source_id, source_local_id`, e.Key)
	if err != nil {
		return fmt.Errorf("loading provenance: %w", err)
	}
	defer provRows.Close()
	for provRows.Next() {
		var ref types.SourceRef
		if err := provRows.Scan(&ref.SourceID, &ref.SourceLocalID); err != nil {
			return fmt.Errorf("scanning provenance: %w", err)
		}
		e.Record.Provenance = append(e.Record.Provenance, ref)
	}
	return provRows.Err()
}

// Get returns the record stored under an exact library key, or
// sql.ErrNoRows wrapped if absent (R3.6).
func (s *Store) Get(ctx context.Context, key string) (Entry, error) {
	var (
		e           Entry
		authorsJSON sql.NullString
		extJSON     sql.NullString
		pdfJSON     sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT key, title, authors, year, venue, abstract, external_urls, pdf_urls
		 FROM records WHERE key = ?`, key,
	).Scan(&e.Key, &e.Record.Title, &authorsJSON, &e.Record.Year,
		&e.Record.Venue, &e.Record.Abstract, &extJSON, &pdfJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return Entry{}, fmt.Errorf("record %s not found", key)
		}
		return Entry{}, fmt.Errorf("looking up record: %w", err)
	}

	if authorsJSON.Valid {
		json.Unmarshal([]byte(authorsJSON.String), &e.Record.Authors)
	}
	if extJSON.Valid {
		json.Unmarshal([]byte(extJSON.String), &e.Record.ExternalURLs)
	}
	if pdfJSON.Valid {
		json.Unmarshal([]byte(pdfJSON.String), &e.Record.PDFURLs)
	}

	if err := s.loadLinks(ctx, &e); err != nil {
		return Entry{}, err
	}
	return e, nil
}
