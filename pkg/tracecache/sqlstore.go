package tracecache

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLStore persists traces in a SQLite database, for caches that outlive the
// process.
type SQLStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS traces (
	digest  TEXT PRIMARY KEY,
	graft   BLOB NOT NULL,
	created TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// OpenSQLStore opens (creating if needed) a SQLite-backed store at path.
func OpenSQLStore(path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening trace cache %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing trace cache %s: %w", path, err)
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Get(digest string) ([]byte, bool, error) {
	var encoded []byte
	err := s.db.QueryRow(`SELECT graft FROM traces WHERE digest = ?`, digest).Scan(&encoded)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading trace %s: %w", digest, err)
	}
	return encoded, true, nil
}

func (s *SQLStore) Put(digest string, encoded []byte) error {
	_, err := s.db.Exec(`INSERT OR IGNORE INTO traces (digest, graft) VALUES (?, ?)`, digest, encoded)
	if err != nil {
		return fmt.Errorf("storing trace %s: %w", digest, err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
