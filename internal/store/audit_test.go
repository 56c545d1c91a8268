package store

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentbook-dev/rentbook/internal/auditlog"
)

func TestAudited_RecordsMutations(t *testing.T) {
	dir := t.TempDir()
	logger, _ := test.NewNullLogger()
	s := Audited(NewMemory().Account("acct-1"), "acct-1", "user-1", dir, logger)
	ctx := context.Background()

	rec, err := s.Create(ctx, "arrears", Record{"amount": "1000"})
	require.NoError(t, err)
	_, err = s.Update(ctx, "arrears", rec.ID(), Record{"amount": "2000"})
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, "arrears", rec.ID()))

	_, err = s.List(ctx, "arrears")
	require.NoError(t, err)

	entries, err := auditlog.Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, auditlog.ActionCreate, entries[0].Action)
	assert.Equal(t, auditlog.ActionUpdate, entries[1].Action)
	assert.Equal(t, auditlog.ActionDelete, entries[2].Action)
	for _, e := range entries {
		assert.Equal(t, "acct-1", e.Account)
		assert.Equal(t, "user-1", e.Actor)
		assert.Equal(t, "arrears", e.Collection)
		assert.Equal(t, rec.ID(), e.RecordID)
	}
}

func TestAudited_FailedMutationNotLogged(t *testing.T) {
	dir := t.TempDir()
	logger, _ := test.NewNullLogger()
	s := Audited(NewMemory().Account("acct-1"), "acct-1", "user-1", dir, logger)

	_, err := s.Update(context.Background(), "arrears", "missing", Record{})
	require.Error(t, err)

	entries, err := auditlog.Read(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAudited_LogWriteFailureWarns(t *testing.T) {
	logger, hook := test.NewNullLogger()
	// A NUL byte in the path makes Append fail.
	dir := t.TempDir()
	s := Audited(NewMemory().Account("acct-1"), "acct-1", "user-1", dir+"/\x00bad", logger)

	_, err := s.Create(context.Background(), "owners", Record{"lastName": "X"})
	require.NoError(t, err, "audit failure must not fail the mutation")
	require.NotEmpty(t, hook.Entries)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}
