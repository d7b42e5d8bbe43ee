package ledger

import (
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite" // file-backed sql driver

	bunderr "github.com/bundlegen/bundlegen/internal/errors"
	"github.com/bundlegen/bundlegen/internal/logging"
)

const schema = `
CREATE TABLE IF NOT EXISTS bundle_version (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    filetype   TEXT NOT NULL,
    version    TEXT NOT NULL,
    filename   TEXT NOT NULL,
    major      INTEGER NOT NULL,
    minor      INTEGER NOT NULL,
    patch      INTEGER NOT NULL,
    hash       TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    changelog  TEXT NOT NULL DEFAULT '',
    contents   TEXT NOT NULL
);`

// Record is one published bundle version. Rows are created once per
// publish, never mutated in place except the changelog through an
// external editing surface, and only deleted by an explicit bulk
// reset.
type Record struct {
	ID        int64
	Filetype  string
	Version   string
	Filename  string
	Major     int
	Minor     int
	Patch     int
	Hash      string
	CreatedAt time.Time
	Changelog string
	Contents  string
}

// Store is the single-writer version ledger. Every committed mutation
// is followed by a mirror dump so the portable SQL file tracks the
// table; a crash between commit and mirror leaves the mirror stale,
// which is accepted.
type Store struct {
	db         *sql.DB
	dbPath     string
	mirrorPath string
	log        logging.Logger
}

// Open opens (creating if needed) the ledger database and ensures the
// schema exists. mirrorPath is where the SQL dump is maintained.
func Open(dbPath, mirrorPath string, log logging.Logger) (*Store, error) {
	if log == nil {
		log = logging.Discard()
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, bunderr.Wrap(bunderr.KindIO, dbPath, err, "could not open ledger database")
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, bunderr.Wrap(bunderr.KindIO, dbPath, err, "could not ensure ledger schema")
	}
	return &Store{db: db, dbPath: dbPath, mirrorPath: mirrorPath, log: log.WithComponent("ledger")}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

const selectColumns = "id, filetype, version, filename, major, minor, patch, hash, created_at, changelog, contents"

func scanRecord(row interface{ Scan(...any) error }) (*Record, error) {
	var r Record
	err := row.Scan(&r.ID, &r.Filetype, &r.Version, &r.Filename, &r.Major, &r.Minor,
		&r.Patch, &r.Hash, &r.CreatedAt, &r.Changelog, &r.Contents)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Latest returns the newest version row for a filetype, ordered by
// (major, minor, patch) descending, or nil when none exists.
func (s *Store) Latest(filetype string) (*Record, error) {
	row := s.db.QueryRow(
		"SELECT "+selectColumns+" FROM bundle_version WHERE filetype = ? "+
			"ORDER BY major DESC, minor DESC, patch DESC LIMIT 1", filetype)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, bunderr.Wrap(bunderr.KindIO, s.dbPath, err, "could not query latest version")
	}
	return rec, nil
}

// Exists reports whether a version string is already published for the
// filetype.
func (s *Store) Exists(filetype, version string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM bundle_version WHERE filetype = ? AND version = ?",
		filetype, version).Scan(&count)
	if err != nil {
		return false, bunderr.Wrap(bunderr.KindIO, s.dbPath, err, "could not check version existence")
	}
	return count > 0, nil
}

// Insert writes one version row in a transaction and refreshes the
// mirror dump immediately after the commit.
func (s *Store) Insert(rec *Record) error {
	tx, err := s.db.Begin()
	if err != nil {
		return bunderr.Wrap(bunderr.KindIO, s.dbPath, err, "could not begin transaction")
	}
	_, err = tx.Exec(
		`INSERT INTO bundle_version
		 (filetype, version, filename, major, minor, patch, hash, created_at, changelog, contents)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Filetype, rec.Version, rec.Filename, rec.Major, rec.Minor, rec.Patch,
		rec.Hash, rec.CreatedAt, rec.Changelog, rec.Contents)
	if err != nil {
		_ = tx.Rollback()
		return bunderr.Wrap(bunderr.KindIO, s.dbPath, err, "could not insert version row")
	}
	if err := tx.Commit(); err != nil {
		return bunderr.Wrap(bunderr.KindIO, s.dbPath, err, "could not commit version row")
	}
	s.log.Debug("version row inserted", "filetype", rec.Filetype, "version", rec.Version)
	return s.Mirror()
}

// List returns all rows ordered newest first.
func (s *Store) List() ([]Record, error) {
	rows, err := s.db.Query(
		"SELECT " + selectColumns + " FROM bundle_version " +
			"ORDER BY major DESC, minor DESC, patch DESC")
	if err != nil {
		return nil, bunderr.Wrap(bunderr.KindIO, s.dbPath, err, "could not list versions")
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, bunderr.Wrap(bunderr.KindIO, s.dbPath, err, "could not scan version row")
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// Count returns the total number of rows.
func (s *Store) Count() (int, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM bundle_version").Scan(&count); err != nil {
		return 0, bunderr.Wrap(bunderr.KindIO, s.dbPath, err, "could not count versions")
	}
	return count, nil
}

// Changelog looks up the row id and current changelog text for one
// published version.
func (s *Store) Changelog(filetype, version string) (int64, string, error) {
	var id int64
	var changelog string
	err := s.db.QueryRow(
		"SELECT id, changelog FROM bundle_version WHERE filetype = ? AND version = ?",
		filetype, version).Scan(&id, &changelog)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, "", bunderr.New(bunderr.KindNotFound, filetype+" "+version, "no such published version")
	}
	if err != nil {
		return 0, "", bunderr.Wrap(bunderr.KindIO, s.dbPath, err, "could not look up changelog")
	}
	return id, changelog, nil
}

// Reset deletes all rows unconditionally and refreshes the mirror.
// Post-condition: row count is zero.
func (s *Store) Reset() error {
	if _, err := s.db.Exec("DELETE FROM bundle_version"); err != nil {
		return bunderr.Wrap(bunderr.KindIO, s.dbPath, err, "could not reset ledger")
	}
	if err := s.Mirror(); err != nil {
		return err
	}
	count, err := s.Count()
	if err != nil {
		return err
	}
	if count != 0 {
		return bunderr.New(bunderr.KindIO, s.dbPath, "ledger reset left %d rows behind", count)
	}
	return nil
}
