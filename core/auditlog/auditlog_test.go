package auditlog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labasprak/asprak/core"
)

type logger struct {
	errors []string
}

func (l *logger) Debug(string, ...interface{})       {}
func (l *logger) Info(string, ...interface{})        {}
func (l *logger) Warn(string, ...interface{})        {}
func (l *logger) Error(msg string, _ ...interface{}) { l.errors = append(l.errors, msg) }
func (l *logger) Fatal(msg string, _ ...interface{}) { l.errors = append(l.errors, msg) }

type repoMock struct {
	entries []Entry
	err     error
}

func (r *repoMock) Create(_ context.Context, e Entry) error {
	if r.err != nil {
		return r.err
	}
	e.ID = int64(len(r.entries) + 1)
	r.entries = append(r.entries, e)
	return nil
}

func (r *repoMock) Query(_ context.Context, page core.Page) ([]EntryWithUser, int, error) {
	if r.err != nil {
		return nil, 0, r.err
	}
	out := make([]EntryWithUser, 0)
	for i := len(r.entries) - 1; i >= 0; i-- {
		out = append(out, EntryWithUser{Entry: r.entries[i]})
	}
	start, end := page.Window(len(out))
	return out[start:end], len(out), nil
}

func TestService_Record(t *testing.T) {
	repo := new(repoMock)
	svc := NewService(repo, new(logger))
	now := time.Date(2025, time.March, 3, 8, 0, 0, 0, time.FixedZone("WIB", 7*3600))
	svc.nowFunc = func() time.Time { return now }

	svc.Record(context.Background(), "u1", "asprak", "a1", ActionCreate, map[string]string{"kode": "BUS"})
	svc.Record(context.Background(), "u1", "asprak", "a1", ActionDelete, nil)

	require.Len(t, repo.entries, 2)
	assert.JSONEq(t, `{"kode":"BUS"}`, string(repo.entries[0].Changes))
	assert.Nil(t, repo.entries[1].Changes)
	assert.Equal(t, time.UTC, repo.entries[0].CreatedAt.Location())
	assert.True(t, now.Equal(repo.entries[0].CreatedAt))

	page, err := svc.Query(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Count)
	require.Len(t, page.Logs, 2)
	assert.Equal(t, ActionDelete, page.Logs[0].Action)

	page, err = svc.Query(context.Background(), 2, 1)
	require.NoError(t, err)
	require.Len(t, page.Logs, 1)
	assert.Equal(t, ActionCreate, page.Logs[0].Action)
}

func TestService_RecordFailures(t *testing.T) {
	repo := &repoMock{err: errors.New("connection refused")}
	l := new(logger)
	svc := NewService(repo, l)

	svc.Record(context.Background(), "u1", "asprak", "a1", ActionUpdate, func() {})
	assert.Len(t, l.errors, 2)

	_, err := svc.Query(context.Background(), 1, 10)
	assert.EqualError(t, err, "querying audit logs: connection refused")
}
