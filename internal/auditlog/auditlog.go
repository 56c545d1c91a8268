// Package auditlog keeps the append-only trail of record mutations in
// <dir>/logs/audit-log.csv.
package auditlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"
)

// Action is the kind of mutation.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Entry records that Actor applied Action to one record of an account.
type Entry struct {
	At         time.Time
	Account    string
	Actor      string
	Action     Action
	Collection string
	RecordID   string
}

var header = []string{"at", "account", "actor", "action", "collection", "record_id"}

// Path is the log location relative to a project directory.
var Path = filepath.Join("logs", "audit-log.csv")

// The server appends from concurrent requests.
var mu sync.Mutex

func (e Entry) row() []string {
	return []string{
		e.At.UTC().Format(time.RFC3339),
		e.Account,
		e.Actor,
		string(e.Action),
		e.Collection,
		e.RecordID,
	}
}

func parseEntry(row []string) (Entry, error) {
	at, err := time.Parse(time.RFC3339, row[0])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing time %q: %w", row[0], err)
	}
	e := Entry{
		At:         at,
		Account:    row[1],
		Actor:      row[2],
		Action:     Action(row[3]),
		Collection: row[4],
		RecordID:   row[5],
	}
	switch e.Action {
	case ActionCreate, ActionUpdate, ActionDelete:
	default:
		return Entry{}, fmt.Errorf("unknown action %q", row[3])
	}
	return e, nil
}

// Append adds e to the log under dir. The file and its header are created
// on first use.
func Append(dir string, e Entry) error {
	mu.Lock()
	defer mu.Unlock()

	path := filepath.Join(dir, Path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat audit log: %w", err)
	}

	cw := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	if err := cw.Write(e.row()); err != nil {
		return fmt.Errorf("writing entry: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

// Read returns every entry under dir, oldest first. A missing log is empty.
func Read(dir string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(dir, Path))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = len(header)

	first, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading audit log header: %w", err)
	}
	if !slices.Equal(first, header) {
		return nil, fmt.Errorf("unexpected audit log header %v", first)
	}

	var entries []Entry
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading audit log: %w", err)
		}
		e, err := parseEntry(row)
		if err != nil {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		entries = append(entries, e)
	}
}

// Query selects entries. Empty fields match anything.
type Query struct {
	Account    string
	Collection string
	RecordID   string
	Actor      string
}

// Matches reports whether e satisfies q.
func (q Query) Matches(e Entry) bool {
	return match(q.Account, e.Account) &&
		match(q.Collection, e.Collection) &&
		match(q.RecordID, e.RecordID) &&
		match(q.Actor, e.Actor)
}

func match(want, got string) bool {
	return want == "" || want == got
}

// History reads the log under dir and keeps the entries matching q.
func History(dir string, q Query) ([]Entry, error) {
	entries, err := Read(dir)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(entries, func(e Entry) bool { return !q.Matches(e) }), nil
}
