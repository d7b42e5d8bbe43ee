package ledger

import (
	"fmt"
	"os"
	"strings"

	bunderr "github.com/bundlegen/bundlegen/internal/errors"
)

// Mirror rewrites the portable SQL dump from the committed table
// state. The dump is the same shape `sqlite3 .dump` produces: schema
// plus one INSERT per row inside a transaction, so it can seed a fresh
// database elsewhere.
func (s *Store) Mirror() error {
	if s.mirrorPath == "" {
		return nil
	}
	records, err := s.List()
	if err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString("PRAGMA foreign_keys=OFF;\n")
	b.WriteString("BEGIN TRANSACTION;\n")
	b.WriteString(strings.TrimSpace(schemaForDump()) + "\n")
	for _, rec := range records {
		fmt.Fprintf(&b,
			"INSERT INTO bundle_version VALUES(%d,%s,%s,%s,%d,%d,%d,%s,%s,%s,%s);\n",
			rec.ID,
			quoteSQL(rec.Filetype),
			quoteSQL(rec.Version),
			quoteSQL(rec.Filename),
			rec.Major, rec.Minor, rec.Patch,
			quoteSQL(rec.Hash),
			quoteSQL(rec.CreatedAt.UTC().Format("2006-01-02 15:04:05")),
			quoteSQL(rec.Changelog),
			quoteSQL(rec.Contents),
		)
	}
	b.WriteString("COMMIT;\n")

	if err := os.WriteFile(s.mirrorPath, []byte(b.String()), 0o644); err != nil {
		return bunderr.Wrap(bunderr.KindIO, s.mirrorPath, err, "could not write mirror dump")
	}
	s.log.Debug("mirror dump refreshed", "path", s.mirrorPath, "rows", len(records))
	return nil
}

// schemaForDump strips the IF NOT EXISTS guard so the dump matches
// what sqlite's own .dump emits.
func schemaForDump() string {
	return strings.Replace(schema, "CREATE TABLE IF NOT EXISTS", "CREATE TABLE", 1)
}

// quoteSQL renders a SQL single-quoted string literal.
func quoteSQL(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
