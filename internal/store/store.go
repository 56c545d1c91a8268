// Package store is the generic entity store: keyed records grouped in named
// collections, scoped by account, listed newest first.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rentbook-dev/rentbook/internal/id"
)

// Record is one stored entity with camelCase keys. Values are JSON-shaped:
// string, json.Number, bool, nil, map[string]any, []any.
type Record map[string]any

// ID returns the record identifier, or "".
func (r Record) ID() string {
	s, _ := r[keyID].(string)
	return s
}

// CreatedAt returns the creation timestamp, or the zero time.
func (r Record) CreatedAt() time.Time {
	s, _ := r[keyCreatedAt].(string)
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

const (
	keyID        = "id"
	keyCreatedAt = "createdAt"
)

// Store is one account's view of the entity store. Every call honours ctx:
// once it is cancelled the call returns without touching storage.
type Store interface {
	List(ctx context.Context, collection string) ([]Record, error)
	Create(ctx context.Context, collection string, rec Record) (Record, error)
	Update(ctx context.Context, collection, id string, rec Record) (Record, error)
	Delete(ctx context.Context, collection, id string) error
}

// row is the storage-level shape shared by all engines. Data holds the
// snake_case JSON document without id and created_at.
type row struct {
	ID        string
	CreatedAt time.Time
	Data      []byte
}

// engine is implemented by each storage backend.
type engine interface {
	list(ctx context.Context, account, collection string) ([]row, error)
	insert(ctx context.Context, account, collection string, r row) error
	replace(ctx context.Context, account, collection string, r row) (found bool, err error)
	remove(ctx context.Context, account, collection, id string) error
	accounts(ctx context.Context) ([]string, error)
	close() error
}

// Backend owns a storage engine and hands out account-scoped stores.
type Backend struct {
	eng engine
	now func() time.Time
}

func newBackend(eng engine) *Backend {
	return &Backend{eng: eng, now: time.Now}
}

// SetClock overrides the timestamp source used for createdAt.
func (b *Backend) SetClock(now func() time.Time) {
	b.now = now
}

// Account returns the Store for one account.
func (b *Backend) Account(accountID string) Store {
	return &scoped{b: b, account: accountID}
}

// Accounts lists every account that has at least one record.
func (b *Backend) Accounts(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, &StoreError{Op: "accounts", Kind: KindUnavailable, Err: err}
	}
	ids, err := b.eng.accounts(ctx)
	if err != nil {
		return nil, wrap("accounts", "", err)
	}
	sort.Strings(ids)
	return ids, nil
}

// Close releases the engine.
func (b *Backend) Close() error {
	return b.eng.close()
}

type scoped struct {
	b       *Backend
	account string
}

func (s *scoped) check(ctx context.Context, op, collection string) error {
	if err := ctx.Err(); err != nil {
		return &StoreError{Op: op, Collection: collection, Kind: KindUnavailable, Err: err}
	}
	if s.account == "" {
		return &StoreError{Op: op, Collection: collection, Kind: KindPermission, Err: errors.New("no account")}
	}
	if !validName(s.account) {
		return &StoreError{Op: op, Collection: collection, Kind: KindPermission, Err: fmt.Errorf("invalid account %q", s.account)}
	}
	if !validName(collection) {
		return &StoreError{Op: op, Collection: collection, Kind: KindInvalid, Err: fmt.Errorf("invalid collection name %q", collection)}
	}
	return nil
}

func (s *scoped) List(ctx context.Context, collection string) ([]Record, error) {
	if err := s.check(ctx, "list", collection); err != nil {
		return nil, err
	}
	rows, err := s.b.eng.list(ctx, s.account, collection)
	if err != nil {
		return nil, wrap("list", collection, err)
	}

	// Engines return insertion order; newest first, later insert wins ties.
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})

	out := make([]Record, 0, len(rows))
	for _, r := range rows {
		rec, err := fromRow(r)
		if err != nil {
			return nil, wrap("list", collection, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *scoped) Create(ctx context.Context, collection string, rec Record) (Record, error) {
	if err := s.check(ctx, "create", collection); err != nil {
		return nil, err
	}
	r := row{ID: id.NewRecordID(), CreatedAt: s.b.now().UTC()}
	data, err := marshalData(rec)
	if err != nil {
		return nil, &StoreError{Op: "create", Collection: collection, Kind: KindInvalid, Err: err}
	}
	r.Data = data
	if err := s.b.eng.insert(ctx, s.account, collection, r); err != nil {
		return nil, wrap("create", collection, err)
	}
	return fromRow(r)
}

func (s *scoped) Update(ctx context.Context, collection, recordID string, rec Record) (Record, error) {
	if err := s.check(ctx, "update", collection); err != nil {
		return nil, err
	}
	data, err := marshalData(rec)
	if err != nil {
		return nil, &StoreError{Op: "update", Collection: collection, Kind: KindInvalid, Err: err}
	}
	r := row{ID: recordID, Data: data}
	found, err := s.b.eng.replace(ctx, s.account, collection, r)
	if err != nil {
		return nil, wrap("update", collection, err)
	}
	if !found {
		return nil, &StoreError{Op: "update", Collection: collection, Kind: KindNotFound, Err: fmt.Errorf("record %s", recordID)}
	}

	// Reload to return the preserved createdAt.
	rows, err := s.b.eng.list(ctx, s.account, collection)
	if err != nil {
		return nil, wrap("update", collection, err)
	}
	for _, existing := range rows {
		if existing.ID == recordID {
			return fromRow(existing)
		}
	}
	return nil, &StoreError{Op: "update", Collection: collection, Kind: KindNotFound, Err: fmt.Errorf("record %s", recordID)}
}

func (s *scoped) Delete(ctx context.Context, collection, recordID string) error {
	if err := s.check(ctx, "delete", collection); err != nil {
		return err
	}
	if err := s.b.eng.remove(ctx, s.account, collection, recordID); err != nil {
		return wrap("delete", collection, err)
	}
	return nil
}

func fromRow(r row) (Record, error) {
	rec, err := unmarshalData(r.Data)
	if err != nil {
		return nil, fmt.Errorf("decoding record %s: %w", r.ID, err)
	}
	rec[keyID] = r.ID
	rec[keyCreatedAt] = r.CreatedAt.UTC().Format(time.RFC3339Nano)
	return rec, nil
}

// validName accepts lowercase identifiers, digits, '-' and '_'; it keeps
// account and collection names safe to use as path segments.
func validName(s string) bool {
	if s == "" || len(s) > 128 || strings.HasPrefix(s, "-") {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}
