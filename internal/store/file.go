package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Header is the CSV header of every collection file.
const Header = "id,account_id,created_at,data"

const (
	numFields    = 4
	colID        = 0
	colAccount   = 1
	colCreatedAt = 2
	colData      = 3
	dataDir      = "data"
)

// fileStore keeps one CSV file per account and collection:
// <root>/data/<account>/<collection>.csv.
type fileStore struct {
	root string
	mu   sync.Mutex
}

// OpenFile returns a Backend storing CSV files under root.
func OpenFile(root string) (*Backend, error) {
	if err := os.MkdirAll(filepath.Join(root, dataDir), 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	return newBackend(&fileStore{root: root}), nil
}

func (s *fileStore) path(account, collection string) string {
	return filepath.Join(s.root, dataDir, account, collection+".csv")
}

func (s *fileStore) list(_ context.Context, account, collection string) ([]row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(account, collection)
}

func (s *fileStore) read(account, collection string) ([]row, error) {
	f, err := os.Open(s.path(account, collection))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", collection, err)
	}
	defer f.Close()

	rows, err := readRows(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", collection, err)
	}
	return rows, nil
}

func (s *fileStore) insert(_ context.Context, account, collection string, r row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(account, collection)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating account dir: %w", err)
	}

	isNew := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		isNew = true
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", collection, err)
	}
	defer f.Close()

	if isNew {
		if _, err := fmt.Fprintln(f, Header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	cw := csv.NewWriter(f)
	if err := cw.Write(marshalRow(account, r)); err != nil {
		return fmt.Errorf("appending row: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

func (s *fileStore) replace(_ context.Context, account, collection string, r row) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.read(account, collection)
	if err != nil {
		return false, err
	}
	found := false
	for i := range rows {
		if rows[i].ID == r.ID {
			rows[i].Data = r.Data
			found = true
		}
	}
	if !found {
		return false, nil
	}
	return true, s.rewrite(account, collection, rows)
}

func (s *fileStore) remove(_ context.Context, account, collection, recordID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.read(account, collection)
	if err != nil {
		return err
	}
	kept := rows[:0]
	for _, r := range rows {
		if r.ID != recordID {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(rows) {
		return nil
	}
	return s.rewrite(account, collection, kept)
}

// rewrite replaces a collection file atomically via a temp file.
func (s *fileStore) rewrite(account, collection string, rows []row) error {
	path := s.path(account, collection)
	tmp, err := os.CreateTemp(filepath.Dir(path), collection+"-*.csv")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := writeRows(tmp, account, rows); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", collection, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", collection, err)
	}
	return nil
}

func (s *fileStore) accounts(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, dataDir))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading data dir: %w", err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			ids = append(ids, e.Name())
		}
	}
	return ids, nil
}

func (s *fileStore) close() error { return nil }

// readRows reads every row of a collection file.
func readRows(r io.Reader) ([]row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var rows []row
	for i, rec := range records[1:] {
		r, err := unmarshalRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// writeRows writes a full collection file including the header.
func writeRows(w io.Writer, account string, rows []row) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, r := range rows {
		if err := cw.Write(marshalRow(account, r)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// marshalRow converts a row to CSV fields.
func marshalRow(account string, r row) []string {
	rec := make([]string, numFields)
	rec[colID] = r.ID
	rec[colAccount] = account
	rec[colCreatedAt] = r.CreatedAt.UTC().Format(time.RFC3339Nano)
	rec[colData] = string(r.Data)
	return rec
}

// unmarshalRow converts CSV fields to a row.
func unmarshalRow(rec []string) (row, error) {
	if len(rec) != numFields {
		return row{}, fmt.Errorf("expected %d fields, got %d", numFields, len(rec))
	}
	if rec[colID] == "" {
		return row{}, errors.New("missing id")
	}
	created, err := time.Parse(time.RFC3339Nano, rec[colCreatedAt])
	if err != nil {
		return row{}, fmt.Errorf("parsing created_at %q: %w", rec[colCreatedAt], err)
	}
	return row{
		ID:        rec[colID],
		CreatedAt: created,
		Data:      []byte(rec[colData]),
	}, nil
}
