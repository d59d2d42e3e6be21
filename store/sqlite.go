/*
 * sqlite.go, part of molingest.
 *
 * Copyright 2026 The molingest authors.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

//SQLite keeps the documents of all collections in one SQLite database, with one table
//per kind of document:
//
//	<kind>(collection, id, data)  PRIMARY KEY (collection, id)
//
//data is the JSON document. Documents are listed in insertion order.
type SQLite struct {
	mu sync.Mutex
	db *sql.DB
}

//NewSQLite opens or creates the SQLite database at path and returns a Store backed by it.
func NewSQLite(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	//A single connection, so :memory: databases are not per connection.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	for _, k := range Kinds {
		if _, err := db.Exec(fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			data TEXT NOT NULL,
			PRIMARY KEY (collection, id)
		)`, k)); err != nil {
			db.Close()
			return nil, err
		}
	}
	return &Store{&SQLite{db: db}}, nil
}

func checkKind(kind Kind) error {
	for _, k := range Kinds {
		if k == kind {
			return nil
		}
	}
	return fmt.Errorf("unknown kind of document %q", kind)
}

func (s *SQLite) get(ctx context.Context, collection string, kind Kind, id ID) ([]byte, bool, error) {
	if err := checkKind(kind); err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var raw string
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT data FROM %s WHERE collection = ? AND id = ?", kind),
		collection, string(id),
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(raw), true, nil
}

func (s *SQLite) each(ctx context.Context, collection string, kind Kind, fn func(ID, []byte) error) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	s.mu.Lock()
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT id, data FROM %s WHERE collection = ? ORDER BY rowid", kind),
		collection,
	)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	type row struct {
		id   string
		data string
	}
	var all []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.id, &r.data); err != nil {
			rows.Close()
			s.mu.Unlock()
			return err
		}
		all = append(all, r)
	}
	err = rows.Err()
	rows.Close()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	//fn may call back into the store, so it runs with the rows closed.
	for _, r := range all {
		if err := fn(ID(r.id), []byte(r.data)); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLite) write(ctx context.Context, collection string, docs []doc) error {
	for _, d := range docs {
		if err := checkKind(d.kind); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, d := range docs {
		_, err := tx.ExecContext(ctx,
			fmt.Sprintf(`INSERT INTO %s (collection, id, data) VALUES (?, ?, ?)
			 ON CONFLICT(collection, id) DO UPDATE SET data = excluded.data`, d.kind),
			collection, string(d.id), string(d.data),
		)
		if err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLite) reset(ctx context.Context, collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, k := range Kinds {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE collection = ?", k), collection); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLite) close() error {
	return s.db.Close()
}
