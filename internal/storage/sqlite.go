package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/matsen/litreview/internal/reference"
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite search cache. The cache is derived from the unique
// table and can be deleted and rebuilt at any time.
type DB struct {
	db *sql.DB
}

// selectRefFields contains the standard field list for SELECT queries.
const selectRefFields = `pos, type, doi, urls_json, title, abstract,
	pub_year, journal, publisher, authors_json, keywords_json`

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	// Create schema if needed
	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		-- One row per unique record, pos is the 1-based table position
		CREATE TABLE IF NOT EXISTS refs (
			pos INTEGER PRIMARY KEY,
			type TEXT,
			doi TEXT,
			doi_norm TEXT,
			urls_json TEXT,
			title TEXT,
			abstract TEXT,
			pub_year INTEGER,
			journal TEXT,
			publisher TEXT,
			authors_json TEXT,
			keywords_json TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_refs_doi ON refs(doi_norm) WHERE doi_norm != '';

		-- Full-text search virtual table, rowid = refs.pos
		CREATE VIRTUAL TABLE IF NOT EXISTS refs_fts USING fts5(
			title,
			abstract,
			authors_text,
			keywords_text
		);
	`

	_, err := db.Exec(schema)
	return err
}

// RebuildFromTable clears the database and rebuilds it from a RIS table
// file. A missing table yields an empty cache.
func (d *DB) RebuildFromTable(path string) (int, error) {
	refs, err := ReadTableOrEmpty(path)
	if err != nil {
		return 0, err
	}
	return d.Rebuild(refs)
}

// Rebuild clears the database and loads the given references in order.
func (d *DB) Rebuild(refs []reference.Reference) (int, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	// Clear existing data
	if _, err := tx.Exec("DELETE FROM refs"); err != nil {
		return 0, fmt.Errorf("clearing refs table: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM refs_fts"); err != nil {
		return 0, fmt.Errorf("clearing refs_fts table: %w", err)
	}

	// Prepare statements
	refsStmt, err := tx.Prepare(`
		INSERT INTO refs (
			pos, type, doi, doi_norm, urls_json, title, abstract,
			pub_year, journal, publisher, authors_json, keywords_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing refs insert: %w", err)
	}
	defer refsStmt.Close()

	ftsStmt, err := tx.Prepare(`
		INSERT INTO refs_fts (rowid, title, abstract, authors_text, keywords_text)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	for i, ref := range refs {
		pos := i + 1
		authorsJSON, err := json.Marshal(ref.Authors)
		if err != nil {
			return 0, fmt.Errorf("marshaling authors for record %d: %w", pos, err)
		}
		keywordsJSON, err := json.Marshal(ref.Keywords)
		if err != nil {
			return 0, fmt.Errorf("marshaling keywords for record %d: %w", pos, err)
		}
		urlsJSON, err := json.Marshal(ref.URLs)
		if err != nil {
			return 0, fmt.Errorf("marshaling urls for record %d: %w", pos, err)
		}

		_, err = refsStmt.Exec(
			pos, ref.Type, ref.DOI, reference.NormalizeDOI(ref.DOI), string(urlsJSON),
			ref.Title, ref.Abstract, ref.Year, ref.Journal, ref.Publisher,
			string(authorsJSON), string(keywordsJSON),
		)
		if err != nil {
			return 0, fmt.Errorf("inserting record %d: %w", pos, err)
		}

		_, err = ftsStmt.Exec(pos, ref.Title, ref.Abstract, formatAuthorsText(ref.Authors), strings.Join(ref.Keywords, " "))
		if err != nil {
			return 0, fmt.Errorf("inserting fts for record %d: %w", pos, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing rebuild: %w", err)
	}
	return len(refs), nil
}

// formatAuthorsText creates a searchable text representation of authors.
func formatAuthorsText(authors []reference.Author) string {
	var names []string
	for _, a := range authors {
		if a.First != "" {
			names = append(names, a.First+" "+a.Last)
		} else {
			names = append(names, a.Last)
		}
	}
	return strings.Join(names, ", ")
}

// Hit is a search result: the record and its position in the unique table.
type Hit struct {
	Pos int                 `json:"pos"`
	Ref reference.Reference `json:"reference"`
}

// GetByPos retrieves the record at a 1-based table position.
// Returns nil, nil if there is no such position.
func (d *DB) GetByPos(pos int) (*Hit, error) {
	row := d.db.QueryRow(`SELECT `+selectRefFields+` FROM refs WHERE pos = ?`, pos)
	return scanHit(row)
}

// Search performs a full-text search and returns matching records in table order.
func (d *DB) Search(query string, limit int) ([]Hit, error) {
	return d.SearchWithFilters(SearchFilters{Keyword: query}, limit)
}

// SearchFilters contains optional filters for SearchWithFilters.
// Text filters go through FTS5; the rest are SQL WHERE clauses.
type SearchFilters struct {
	Keyword  string   // General search across title, abstract, authors and keywords
	Authors  []string // Author names (AND logic, prefix matching)
	Title    string   // Search in title only (FTS)
	Keywords string   // Search in keywords only (FTS)
	YearFrom int      // Minimum publication year (0 = no minimum)
	YearTo   int      // Maximum publication year (0 = no maximum)
	Journal  string   // Filter by journal (SQL LIKE, case-insensitive)
	Type     string   // Exact RIS type code
	DOI      string   // DOI match after normalization
}

// SearchWithFilters performs a search with multiple optional filters.
// Returns records matching ALL specified criteria (AND logic).
func (d *DB) SearchWithFilters(filters SearchFilters, limit int) ([]Hit, error) {
	var ftsTerms []string
	var args []interface{}

	// Build FTS query parts (text-based searches)
	if filters.Keyword != "" {
		ftsTerms = append(ftsTerms, prepareFTSQuery(filters.Keyword))
	}
	if filters.Title != "" {
		ftsTerms = append(ftsTerms, "title:"+prepareFTSQuery(filters.Title))
	}
	if filters.Keywords != "" {
		ftsTerms = append(ftsTerms, "keywords_text:"+prepareFTSQuery(filters.Keywords))
	}
	for _, author := range filters.Authors {
		if author != "" {
			ftsTerms = append(ftsTerms, "authors_text:"+prepareAuthorQuery(author))
		}
	}

	// Build the query
	var query string
	if len(ftsTerms) > 0 {
		query = `SELECT ` + selectRefFields + `
			FROM refs
			WHERE pos IN (SELECT rowid FROM refs_fts WHERE refs_fts MATCH ?)`
		args = append(args, strings.Join(ftsTerms, " AND "))
	} else {
		query = `SELECT ` + selectRefFields + ` FROM refs WHERE 1=1`
	}

	// SQL-based filters (exact/range matches)
	if filters.YearFrom > 0 {
		query += " AND pub_year >= ?"
		args = append(args, filters.YearFrom)
	}
	if filters.YearTo > 0 {
		query += " AND pub_year > 0 AND pub_year <= ?"
		args = append(args, filters.YearTo)
	}
	if filters.Journal != "" {
		query += " AND journal LIKE ?"
		args = append(args, "%"+filters.Journal+"%")
	}
	if filters.Type != "" {
		query += " AND type = ?"
		args = append(args, strings.ToUpper(filters.Type))
	}
	if filters.DOI != "" {
		query += " AND doi_norm = ?"
		args = append(args, reference.NormalizeDOI(filters.DOI))
	}

	query += " ORDER BY pos"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("searching with filters: %w", err)
	}
	defer rows.Close()

	return scanHits(rows)
}

// prepareAuthorQuery prepares an author name for FTS5 search with prefix matching.
// It adds a wildcard (*) to enable fuzzy matching (e.g., "Tim" matches "Timothy").
func prepareAuthorQuery(author string) string {
	author = strings.TrimSpace(author)
	if author == "" {
		return author
	}

	// Split into parts for multi-word names
	parts := strings.Fields(author)
	var terms []string
	for _, part := range parts {
		escaped := strings.ReplaceAll(part, "\"", "\"\"")
		terms = append(terms, "\""+escaped+"\"*")
	}

	// Use OR for multi-word author queries (match any part)
	return "(" + strings.Join(terms, " OR ") + ")"
}

// Count returns the total number of records in the cache.
func (d *DB) Count() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM refs").Scan(&count)
	return count, err
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanHit(s scanner) (*Hit, error) {
	var hit Hit
	ref := &hit.Ref
	var refType, doi, urlsJSON, title, abstract, journal, publisher sql.NullString
	var authorsJSON, keywordsJSON sql.NullString
	var year sql.NullInt64

	err := s.Scan(
		&hit.Pos, &refType, &doi, &urlsJSON, &title, &abstract,
		&year, &journal, &publisher, &authorsJSON, &keywordsJSON,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	ref.Type = refType.String
	ref.DOI = doi.String
	ref.Title = title.String
	ref.Abstract = abstract.String
	ref.Journal = journal.String
	ref.Publisher = publisher.String
	ref.Year = int(year.Int64)

	// Parse JSON fields; "null" leaves the slice nil
	for _, f := range []struct {
		raw  sql.NullString
		dest interface{}
		name string
	}{
		{urlsJSON, &ref.URLs, "urls"},
		{authorsJSON, &ref.Authors, "authors"},
		{keywordsJSON, &ref.Keywords, "keywords"},
	} {
		if !f.raw.Valid || f.raw.String == "" {
			continue
		}
		if err := json.Unmarshal([]byte(f.raw.String), f.dest); err != nil {
			return nil, fmt.Errorf("parsing %s JSON for record %d: %w", f.name, hit.Pos, err)
		}
	}

	return &hit, nil
}

func scanHits(rows *sql.Rows) ([]Hit, error) {
	var hits []Hit
	for rows.Next() {
		hit, err := scanHit(rows)
		if err != nil {
			return nil, err
		}
		if hit != nil {
			hits = append(hits, *hit)
		}
	}
	return hits, rows.Err()
}

// prepareFTSQuery escapes special characters for FTS5 queries.
func prepareFTSQuery(query string) string {
	// FTS5 uses double quotes for phrase matching
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	// If query contains special chars, quote it
	if strings.ContainsAny(query, "\"*+-:(){}[]^~.,/") {
		query = strings.ReplaceAll(query, "\"", "\"\"")
		return "\"" + query + "\""
	}

	return query
}
