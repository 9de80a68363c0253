package store

import (
	"database/sql"
	"fmt"

	brainstorm "github.com/postforge/brainstorm-agents-sdk-go"
)

// MySQLArchiveStore implements brainstorm.ArchiveStore using MySQL.
//
// It uses two tables (auto-created if AutoMigrate is true):
//   - {prefix}_kv:   (namespace, key, value) for KV operations
//   - {prefix}_list: (namespace, key, id, value) for ordered lists
type MySQLArchiveStore struct {
	db     *sql.DB
	prefix string
}

// MySQLStoreConfig configures the MySQL store.
type MySQLStoreConfig struct {
	Prefix      string // table prefix, default "artifact_archive"
	AutoMigrate bool   // create tables if not exist, default true
}

// NewMySQLArchiveStore creates an ArchiveStore backed by MySQL.
// The sql.DB must be already opened with a MySQL driver.
func NewMySQLArchiveStore(db *sql.DB, config ...MySQLStoreConfig) (*MySQLArchiveStore, error) {
	cfg := MySQLStoreConfig{Prefix: "artifact_archive", AutoMigrate: true}
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "artifact_archive"
	}

	s := &MySQLArchiveStore{db: db, prefix: cfg.Prefix}
	if cfg.AutoMigrate {
		if err := s.migrate(); err != nil {
			return nil, fmt.Errorf("auto-migrate failed: %w", err)
		}
	}
	return s, nil
}

func (s *MySQLArchiveStore) kvTable() string   { return s.prefix + "_kv" }
func (s *MySQLArchiveStore) listTable() string { return s.prefix + "_list" }

func (s *MySQLArchiveStore) migrate() error {
	kvDDL := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		namespace VARCHAR(255) NOT NULL,
		k         VARCHAR(255) NOT NULL,
		v         LONGTEXT     NOT NULL,
		PRIMARY KEY (namespace, k)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`, s.kvTable())

	listDDL := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id        BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		namespace VARCHAR(255) NOT NULL,
		k         VARCHAR(255) NOT NULL,
		v         LONGTEXT     NOT NULL,
		PRIMARY KEY (id),
		KEY idx_ns_key (namespace, k)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`, s.listTable())

	if _, err := s.db.Exec(kvDDL); err != nil {
		return err
	}
	_, err := s.db.Exec(listDDL)
	return err
}

func (s *MySQLArchiveStore) Get(namespace, key string) (string, error) {
	var v string
	query := fmt.Sprintf("SELECT v FROM %s WHERE namespace = ? AND k = ?", s.kvTable())
	err := s.db.QueryRow(query, namespace, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return v, err
}

func (s *MySQLArchiveStore) Set(namespace, key, value string) error {
	query := fmt.Sprintf(
		"INSERT INTO %s (namespace, k, v) VALUES (?, ?, ?) ON DUPLICATE KEY UPDATE v = VALUES(v)",
		s.kvTable())
	_, err := s.db.Exec(query, namespace, key, value)
	return err
}

func (s *MySQLArchiveStore) Delete(namespace, key string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE namespace = ? AND k = ?", s.kvTable())
	_, err := s.db.Exec(query, namespace, key)
	return err
}

func (s *MySQLArchiveStore) Append(namespace, key, value string) error {
	query := fmt.Sprintf("INSERT INTO %s (namespace, k, v) VALUES (?, ?, ?)", s.listTable())
	_, err := s.db.Exec(query, namespace, key, value)
	return err
}

func (s *MySQLArchiveStore) GetList(namespace, key string, limit, offset int) ([]string, error) {
	query := fmt.Sprintf(
		"SELECT v FROM %s WHERE namespace = ? AND k = ? ORDER BY id ASC", s.listTable())
	args := []interface{}{namespace, key}
	if limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	} else if offset > 0 {
		// MySQL requires a LIMIT clause to use OFFSET.
		query += " LIMIT 18446744073709551615 OFFSET ?"
		args = append(args, offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, rows.Err()
}

func (s *MySQLArchiveStore) ListLength(namespace, key string) (int, error) {
	var n int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE namespace = ? AND k = ?", s.listTable())
	err := s.db.QueryRow(query, namespace, key).Scan(&n)
	return n, err
}

// Compile-time interface check.
var _ brainstorm.ArchiveStore = (*MySQLArchiveStore)(nil)
