// Package store is the self-hosted relational backend: it serves remote rows
// from sqlite or postgres through database/sql.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dukerupert/chorehub/internal/database"
	"github.com/dukerupert/chorehub/internal/remote"
	"github.com/google/uuid"
)

var _ remote.Backend = (*Store)(nil)

type Store struct {
	db       *sql.DB
	postgres bool

	mu      sync.Mutex
	lastSeq int64
}

func New(db *sql.DB, driver string) *Store {
	return &Store{db: db, postgres: driver == database.DriverPostgres}
}

// nextSeq returns a strictly increasing insertion sequence based on wall time.
func (s *Store) nextSeq() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	seq := time.Now().UnixNano()
	if seq <= s.lastSeq {
		seq = s.lastSeq + 1
	}
	s.lastSeq = seq
	return seq
}

// rebind rewrites ? placeholders as $N for postgres.
func (s *Store) rebind(query string) string {
	if !s.postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func lookup(name string) (table, error) {
	t, ok := tables[name]
	if !ok {
		return table{}, fmt.Errorf("unknown table %q", name)
	}
	return t, nil
}

func encode(t table, col string, v any) (any, error) {
	typ, ok := t.types[col]
	if !ok {
		return nil, fmt.Errorf("unknown column %s.%s", t.name, col)
	}
	switch typ {
	case colIDList:
		list, ok := v.([]string)
		if !ok && v != nil {
			return nil, fmt.Errorf("column %s: want []string, got %T", col, v)
		}
		if list == nil {
			list = []string{}
		}
		b, err := json.Marshal(list)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", col, err)
		}
		return string(b), nil
	case colOptText:
		if v == nil {
			return sql.NullString{}, nil
		}
		str, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("column %s: want string, got %T", col, v)
		}
		return sql.NullString{String: str, Valid: str != ""}, nil
	case colBool:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("column %s: want bool, got %T", col, v)
		}
		return b, nil
	default:
		str, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("column %s: want string, got %T", col, v)
		}
		return str, nil
	}
}

func scanRow(t table, scanner interface{ Scan(...any) error }) (remote.Row, error) {
	dest := make([]any, len(t.cols))
	for i, c := range t.cols {
		switch t.types[c] {
		case colBool:
			dest[i] = new(bool)
		default:
			dest[i] = new(sql.NullString)
		}
	}
	if err := scanner.Scan(dest...); err != nil {
		return nil, err
	}

	row := make(remote.Row, len(t.cols))
	for i, c := range t.cols {
		switch t.types[c] {
		case colBool:
			row[c] = *dest[i].(*bool)
		case colOptText:
			ns := dest[i].(*sql.NullString)
			if ns.Valid {
				row[c] = ns.String
			} else {
				row[c] = nil
			}
		case colIDList:
			list := []string{}
			if ns := dest[i].(*sql.NullString); ns.Valid && ns.String != "" {
				if err := json.Unmarshal([]byte(ns.String), &list); err != nil {
					return nil, fmt.Errorf("decode %s: %w", c, err)
				}
			}
			row[c] = list
		default:
			row[c] = dest[i].(*sql.NullString).String
		}
	}
	return row, nil
}

func sortedKeys(r remote.Row) []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *Store) get(ctx context.Context, t table, id string) (remote.Row, error) {
	q := s.rebind(`SELECT ` + strings.Join(t.cols, ", ") + ` FROM ` + t.name + ` WHERE id = ?`)
	row, err := scanRow(t, s.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", t.name, err)
	}
	return row, nil
}

func (s *Store) Insert(ctx context.Context, name string, row remote.Row) (remote.Row, error) {
	t, err := lookup(name)
	if err != nil {
		return nil, err
	}

	id, _ := row["id"].(string)
	if id == "" {
		id = uuid.NewString()
	}

	cols := []string{"id", "created_at"}
	args := []any{id, s.nextSeq()}
	for _, k := range sortedKeys(row) {
		if k == "id" {
			continue
		}
		v, err := encode(t, k, row[k])
		if err != nil {
			return nil, fmt.Errorf("insert %s: %w", name, err)
		}
		cols = append(cols, k)
		args = append(args, v)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	q := s.rebind(`INSERT INTO ` + t.name + ` (` + strings.Join(cols, ", ") + `) VALUES (` + placeholders + `)`)
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return nil, fmt.Errorf("insert %s: %w", name, err)
	}

	stored, err := s.get(ctx, t, id)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("insert %s: row %s vanished", name, id)
	}
	return stored, nil
}

func (s *Store) Update(ctx context.Context, name, id string, fields remote.Row) error {
	t, err := lookup(name)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}

	sets := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields)+1)
	for _, k := range sortedKeys(fields) {
		if k == "id" {
			return fmt.Errorf("update %s: id is immutable", name)
		}
		v, err := encode(t, k, fields[k])
		if err != nil {
			return fmt.Errorf("update %s: %w", name, err)
		}
		sets = append(sets, k+" = ?")
		args = append(args, v)
	}
	args = append(args, id)

	q := s.rebind(`UPDATE ` + t.name + ` SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`)
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("update %s %s: %w", name, id, remote.ErrNoRow)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, name, id string) error {
	t, err := lookup(name)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM `+t.name+` WHERE id = ?`), id); err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, name string, filter remote.Row) ([]remote.Row, error) {
	t, err := lookup(name)
	if err != nil {
		return nil, err
	}

	var where []string
	var args []any
	for _, k := range sortedKeys(filter) {
		v, err := encode(t, k, filter[k])
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", name, err)
		}
		where = append(where, k+" = ?")
		args = append(args, v)
	}

	q := `SELECT ` + strings.Join(t.cols, ", ") + ` FROM ` + t.name
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY created_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, s.rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", name, err)
	}
	defer rows.Close()

	var out []remote.Row
	for rows.Next() {
		r, err := scanRow(t, rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", name, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
