// Package rental implements the residential side of the agency: owners,
// tenants, receipts, expenses, manual arrears and the agency profile, all
// persisted through an account-scoped store.
package rental

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rentbook-dev/rentbook/internal/ledger"
	"github.com/rentbook-dev/rentbook/internal/model"
	"github.com/rentbook-dev/rentbook/internal/store"
)

// DefaultArrearDescription is used when a manual arrear has no description.
const DefaultArrearDescription = "Impayé manuel"

// Service provides business logic for the rental collections of one account.
type Service struct {
	store store.Store
	log   logrus.FieldLogger
	now   func() time.Time
}

// NewService creates a rental Service over st.
func NewService(st store.Store, log logrus.FieldLogger) *Service {
	return &Service{store: st, log: log, now: time.Now}
}

// SetClock overrides the source of "today" used for defaults.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Snapshot loads every rental collection into memory for the ledger.
func (s *Service) Snapshot(ctx context.Context) (ledger.Snapshot, error) {
	var snap ledger.Snapshot
	var err error

	if snap.Owners, err = s.Owners(ctx); err != nil {
		return ledger.Snapshot{}, err
	}
	if snap.Tenants, err = s.Tenants(ctx); err != nil {
		return ledger.Snapshot{}, err
	}
	if snap.Receipts, err = s.Receipts(ctx); err != nil {
		return ledger.Snapshot{}, err
	}
	if snap.Expenses, err = s.Expenses(ctx); err != nil {
		return ledger.Snapshot{}, err
	}
	if snap.Arrears, err = s.Arrears(ctx); err != nil {
		return ledger.Snapshot{}, err
	}
	if snap.Agency, err = s.Agency(ctx); err != nil {
		return ledger.Snapshot{}, err
	}
	return snap, nil
}

var collectionFields = map[string]store.Fields{
	model.CollOwners:   {Optional: []string{"commissionRate"}},
	model.CollTenants:  {Amounts: []string{"rentAmount", "deposit"}},
	model.CollReceipts: {Amounts: []string{"amount"}},
	model.CollExpenses: {Amounts: []string{"amount"}},
	model.CollArrears:  {Amounts: []string{"amount"}},
	model.CollAgencies: {Optional: []string{"commissionRate"}},
}

// list loads and decodes a collection. Malformed amounts degrade to zero
// rather than failing the listing.
func list[T any](ctx context.Context, s *Service, collection string) ([]T, error) {
	recs, err := s.store.List(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", collection, err)
	}
	return store.DecodeList[T](s.log, collection, recs, collectionFields[collection]), nil
}

func find[T any](items []T, match func(T) bool) (T, bool) {
	for _, it := range items {
		if match(it) {
			return it, true
		}
	}
	var zero T
	return zero, false
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, store.ErrNotFound)
}

func (s *Service) create(ctx context.Context, collection string, v any, out any) error {
	rec, err := store.Encode(v)
	if err != nil {
		return err
	}
	saved, err := s.store.Create(ctx, collection, rec)
	if err != nil {
		return fmt.Errorf("creating %s: %w", collection, err)
	}
	return store.Decode(saved, out)
}

func (s *Service) update(ctx context.Context, collection, recordID string, v any, out any) error {
	rec, err := store.Encode(v)
	if err != nil {
		return err
	}
	saved, err := s.store.Update(ctx, collection, recordID, rec)
	if err != nil {
		return fmt.Errorf("updating %s: %w", collection, err)
	}
	return store.Decode(saved, out)
}

func (s *Service) remove(ctx context.Context, collection, recordID string) error {
	if err := s.store.Delete(ctx, collection, recordID); err != nil {
		return fmt.Errorf("deleting %s: %w", collection, err)
	}
	return nil
}
