package storage

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/matsen/citeparse/internal/record"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection. The index is derived data: it can
// always be rebuilt from the record files.
type DB struct {
	db *sql.DB
}

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

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

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS records (
			line_num INTEGER PRIMARY KEY,
			publication_type TEXT NOT NULL,
			title TEXT,
			authors_json TEXT NOT NULL,
			publication_dates TEXT,
			place_of_publication TEXT,
			publisher TEXT,
			journal_title TEXT,
			container_title TEXT,
			main_institution TEXT,
			mentioned_place TEXT,
			region TEXT,
			country TEXT,
			institution_type TEXT,
			religious_order TEXT,
			temporal_coverage TEXT,
			document_type TEXT,
			data_json TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_records_country ON records(country);
		CREATE INDEX IF NOT EXISTS idx_records_document_type ON records(document_type);

		-- Full-text search virtual table (standalone, not external content)
		CREATE VIRTUAL TABLE IF NOT EXISTS records_fts USING fts5(
			line_num UNINDEXED,
			title,
			authors_text,
			institution,
			place,
			journal
		);
	`
	_, err := db.Exec(schema)
	return err
}

// Rebuild clears the index and loads recs into it in one transaction.
func (d *DB) Rebuild(recs []*record.Record) (int, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM records"); err != nil {
		return 0, fmt.Errorf("clearing records table: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM records_fts"); err != nil {
		return 0, fmt.Errorf("clearing records_fts table: %w", err)
	}

	recStmt, err := tx.Prepare(`
		INSERT INTO records (
			line_num, publication_type, title, authors_json,
			publication_dates, place_of_publication, publisher,
			journal_title, container_title,
			main_institution, mentioned_place, region, country,
			institution_type, religious_order, temporal_coverage, document_type,
			data_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing records insert: %w", err)
	}
	defer recStmt.Close()

	ftsStmt, err := tx.Prepare(`
		INSERT INTO records_fts (line_num, title, authors_text, institution, place, journal)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	for _, rec := range recs {
		lineNum, err := rec.LineNum()
		if err != nil {
			return 0, err
		}
		p, c := rec.Publication, rec.Content

		authorsJSON, err := json.Marshal(p.Auteurs)
		if err != nil {
			return 0, fmt.Errorf("marshaling authors for %d: %w", lineNum, err)
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return 0, fmt.Errorf("marshaling record %d: %w", lineNum, err)
		}

		_, err = recStmt.Exec(
			lineNum, string(p.PublicationType), nullable(p.Title), string(authorsJSON),
			nullable(p.PublicationDates), nullable(p.PlaceOfPublication), nullable(p.Publisher),
			nullable(p.JournalTitle), nullable(p.ContainerTitle),
			nullable(c.MainInstitution), nullable(c.MentionedPlace), nullable(c.Region), nullable(c.Country),
			nullable(c.InstitutionType), nullable(c.ReligiousOrder), nullable(c.TemporalCoverage), nullable(c.DocumentType),
			string(data),
		)
		if err != nil {
			return 0, fmt.Errorf("inserting record %d: %w", lineNum, err)
		}

		_, err = ftsStmt.Exec(
			lineNum,
			record.Value(p.Title),
			strings.Join(p.Auteurs, ", "),
			record.Value(c.MainInstitution),
			joinNonEmpty(record.Value(c.MentionedPlace), record.Value(p.PlaceOfPublication), record.Value(c.Region)),
			joinNonEmpty(record.Value(p.JournalTitle), record.Value(p.ContainerTitle), record.Value(p.Series)),
		)
		if err != nil {
			return 0, fmt.Errorf("inserting fts for %d: %w", lineNum, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing index: %w", err)
	}
	return len(recs), nil
}

func joinNonEmpty(parts ...string) string {
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

// nullable converts an optional record field to a SQL value.
func nullable(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// Get returns the indexed record for a line, or nil if absent.
func (d *DB) Get(lineNum int) (*record.Record, error) {
	var data string
	err := d.db.QueryRow(`SELECT data_json FROM records WHERE line_num = ?`, lineNum).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return record.Decode(strings.NewReader(data))
}

// SearchFilters narrows a search. Text fields use full-text matching; the
// rest are exact, case-insensitive matches. Empty fields are ignored.
type SearchFilters struct {
	Keyword         string // any indexed text
	Title           string
	Author          string // prefix match on each name part
	Institution     string
	PublicationType record.PublicationType
	Country         string
	Region          string
	InstitutionType string
	DocumentType    string
	ReligiousOrder  string
}

// Search returns records matching all filters, in line order.
func (d *DB) Search(filters SearchFilters, limit int) ([]*record.Record, error) {
	var ftsTerms []string
	var args []any

	if hasWords(filters.Keyword) {
		ftsTerms = append(ftsTerms, prepareFTSQuery(filters.Keyword))
	}
	if hasWords(filters.Title) {
		ftsTerms = append(ftsTerms, columnQuery("title", filters.Title))
	}
	if hasWords(filters.Author) {
		ftsTerms = append(ftsTerms, "authors_text:"+prepareAuthorQuery(filters.Author))
	}
	if hasWords(filters.Institution) {
		ftsTerms = append(ftsTerms, columnQuery("institution", filters.Institution))
	}

	query := `SELECT data_json FROM records WHERE 1=1`
	if len(ftsTerms) > 0 {
		query += ` AND line_num IN (SELECT CAST(line_num AS INTEGER) FROM records_fts WHERE records_fts MATCH ?)`
		args = append(args, strings.Join(ftsTerms, " AND "))
	}

	exact := []struct {
		column, value string
	}{
		{"publication_type", string(filters.PublicationType)},
		{"country", filters.Country},
		{"region", filters.Region},
		{"institution_type", filters.InstitutionType},
		{"document_type", filters.DocumentType},
		{"religious_order", filters.ReligiousOrder},
	}
	for _, f := range exact {
		if strings.TrimSpace(f.value) != "" {
			query += " AND " + f.column + " = ? COLLATE NOCASE"
			args = append(args, f.value)
		}
	}

	query += " ORDER BY line_num"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// hasWords reports whether a text filter would produce any FTS term.
func hasWords(s string) bool {
	return len(strings.Fields(s)) > 0
}

func scanRecords(rows *sql.Rows) ([]*record.Record, error) {
	var recs []*record.Record
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		rec, err := record.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Count returns the number of indexed records.
func (d *DB) Count() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM records").Scan(&count)
	return count, err
}

// Bucket is one group of a CountBy result. Value is "" for records where the field is null.
type Bucket struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// countableColumns lists the fields CountBy may group on.
var countableColumns = map[string]bool{
	"publication_type": true,
	"country":          true,
	"region":           true,
	"institution_type": true,
	"religious_order":  true,
	"document_type":    true,
}

// CountBy groups records by a field, largest groups first.
func (d *DB) CountBy(field string) ([]Bucket, error) {
	if !countableColumns[field] {
		return nil, fmt.Errorf("cannot group by %q", field)
	}
	rows, err := d.db.Query(`SELECT COALESCE(` + field + `, ''), COUNT(*) AS n FROM records GROUP BY 1 ORDER BY n DESC, 1`)
	if err != nil {
		return nil, fmt.Errorf("counting by %s: %w", field, err)
	}
	defer rows.Close()

	var buckets []Bucket
	for rows.Next() {
		var b Bucket
		if err := rows.Scan(&b.Value, &b.Count); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

// prepareAuthorQuery prepares an author name for FTS5 search with prefix matching.
func prepareAuthorQuery(author string) string {
	author = strings.TrimSpace(author)
	if author == "" {
		return author
	}

	var terms []string
	for _, part := range strings.Fields(author) {
		escaped := strings.ReplaceAll(part, "\"", "\"\"")
		terms = append(terms, "\""+escaped+"\"*")
	}
	return "(" + strings.Join(terms, " AND ") + ")"
}

// columnQuery requires every word of value to appear in column.
func columnQuery(column, value string) string {
	var terms []string
	for _, word := range strings.Fields(value) {
		terms = append(terms, column+":\""+strings.ReplaceAll(word, "\"", "\"\"")+"\"")
	}
	return "(" + strings.Join(terms, " AND ") + ")"
}

// prepareFTSQuery escapes special characters for FTS5 queries.
func prepareFTSQuery(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	// Apostrophes and hyphens are common in French titles and place names.
	if strings.ContainsAny(query, "\"*+-:(){}[]^~'’.,") {
		query = strings.ReplaceAll(query, "\"", "\"\"")
		return "\"" + query + "\""
	}
	return query
}
