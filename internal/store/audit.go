package store

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rentbook-dev/rentbook/internal/auditlog"
)

// AuditedStore records every successful mutation in the audit log under dir.
// A failure to write the log is reported but never fails the mutation.
type AuditedStore struct {
	next    Store
	account string
	actor   string
	dir     string
	log     logrus.FieldLogger
	now     func() time.Time
}

// Audited wraps next, the store of account, so that mutations by actor are
// appended to <dir>/logs/audit-log.csv.
func Audited(next Store, account, actor, dir string, log logrus.FieldLogger) *AuditedStore {
	return &AuditedStore{next: next, account: account, actor: actor, dir: dir, log: log, now: time.Now}
}

func (s *AuditedStore) List(ctx context.Context, collection string) ([]Record, error) {
	return s.next.List(ctx, collection)
}

func (s *AuditedStore) Create(ctx context.Context, collection string, rec Record) (Record, error) {
	out, err := s.next.Create(ctx, collection, rec)
	if err != nil {
		return nil, err
	}
	s.record(auditlog.ActionCreate, collection, out.ID())
	return out, nil
}

func (s *AuditedStore) Update(ctx context.Context, collection, id string, rec Record) (Record, error) {
	out, err := s.next.Update(ctx, collection, id, rec)
	if err != nil {
		return nil, err
	}
	s.record(auditlog.ActionUpdate, collection, id)
	return out, nil
}

func (s *AuditedStore) Delete(ctx context.Context, collection, id string) error {
	if err := s.next.Delete(ctx, collection, id); err != nil {
		return err
	}
	s.record(auditlog.ActionDelete, collection, id)
	return nil
}

func (s *AuditedStore) record(action auditlog.Action, collection, id string) {
	entry := auditlog.Entry{
		At:         s.now(),
		Account:    s.account,
		Actor:      s.actor,
		Action:     action,
		Collection: collection,
		RecordID:   id,
	}
	if err := auditlog.Append(s.dir, entry); err != nil {
		s.log.WithFields(logrus.Fields{
			"collection": collection,
			"record_id":  id,
			"error":      err,
		}).Warn("Failed to write audit log")
	}
}
