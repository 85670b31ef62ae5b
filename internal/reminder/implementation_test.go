package reminder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dedupKey struct {
	memberID uuid.UUID
	kind     Kind
	dueDate  time.Time
}

// memStore mirrors the real store's idempotent-insert semantics for the
// dedup key.
type memStore struct {
	targets   []Target
	records   map[uuid.UUID]*Record
	sentKeys  map[dedupKey]bool
	summaries []*RunSummary

	listErr error
}

func newMemStore(targets ...Target) *memStore {
	return &memStore{
		targets:  targets,
		records:  make(map[uuid.UUID]*Record),
		sentKeys: make(map[dedupKey]bool),
	}
}

func (s *memStore) ListActiveTargets(context.Context) ([]Target, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.targets, nil
}

func (s *memStore) MarkSent(_ context.Context, rec *Record) (bool, error) {
	key := dedupKey{rec.MemberID, rec.Kind, rec.CycleDueDate}
	if s.sentKeys[key] {
		return false, nil
	}
	s.sentKeys[key] = true
	c := *rec
	s.records[rec.ID] = &c
	return true, nil
}

func (s *memStore) MarkFailed(_ context.Context, id uuid.UUID) error {
	rec, ok := s.records[id]
	if !ok {
		return errors.New("no such record")
	}
	rec.Status = StatusFailed
	delete(s.sentKeys, dedupKey{rec.MemberID, rec.Kind, rec.CycleDueDate})
	return nil
}

func (s *memStore) SaveRunSummary(_ context.Context, sum *RunSummary) error {
	s.summaries = append(s.summaries, sum)
	return nil
}

func (s *memStore) sentRecords() []*Record {
	var out []*Record
	for _, r := range s.records {
		if r.Status == StatusSent {
			out = append(out, r)
		}
	}
	return out
}

// fakeTransport records sends and fails for listed addresses.
type fakeTransport struct {
	sent    []string
	failFor map[string]bool
}

func (t *fakeTransport) SendReminder(_ context.Context, email string, _ Kind, _ decimal.Decimal, _ time.Time) error {
	if t.failFor[email] {
		return errors.New("smtp: connection refused")
	}
	t.sent = append(t.sent, email)
	return nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func target(email string, dueDate time.Time) Target {
	return Target{
		MemberID:   uuid.New(),
		Name:       "Member",
		Email:      email,
		AmountOwed: decimal.NewFromInt(55),
		DueDate:    dueDate,
	}
}

func newSweep(store *memStore, transport *fakeTransport) Service {
	return NewService(store, transport, zerolog.Nop())
}

func TestSweepSendsThreeDayReminder(t *testing.T) {
	due := date(2025, time.March, 18)
	store := newMemStore(target("a@example.com", due))
	transport := &fakeTransport{}

	summary, err := newSweep(store, transport).RunSweep(context.Background(), date(2025, time.March, 15))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.SentThreeDay)
	assert.Equal(t, 0, summary.SentDueToday)
	assert.Equal(t, []string{"a@example.com"}, transport.sent)

	recs := store.sentRecords()
	require.Len(t, recs, 1)
	assert.Equal(t, KindThreeDayPrior, recs[0].Kind)
	assert.Equal(t, due, recs[0].CycleDueDate)
}

func TestSweepSendsDueTodayReminder(t *testing.T) {
	due := date(2025, time.March, 15)
	store := newMemStore(target("a@example.com", due))
	transport := &fakeTransport{}

	summary, err := newSweep(store, transport).RunSweep(context.Background(), due)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.SentDueToday)
	recs := store.sentRecords()
	require.Len(t, recs, 1)
	assert.Equal(t, KindDueToday, recs[0].Kind)
}

func TestSweepSkipsMembersNotDue(t *testing.T) {
	store := newMemStore(
		target("far@example.com", date(2025, time.April, 20)),
		target("past@example.com", date(2025, time.March, 1)),
	)
	transport := &fakeTransport{}

	summary, err := newSweep(store, transport).RunSweep(context.Background(), date(2025, time.March, 15))
	require.NoError(t, err)

	assert.Zero(t, summary.SentThreeDay)
	assert.Zero(t, summary.SentDueToday)
	assert.Zero(t, summary.Skipped)
	assert.Empty(t, transport.sent)
}

func TestSweepDedupAcrossRuns(t *testing.T) {
	due := date(2025, time.March, 18)
	store := newMemStore(target("a@example.com", due))
	transport := &fakeTransport{}
	svc := newSweep(store, transport)
	today := date(2025, time.March, 15)

	first, err := svc.RunSweep(context.Background(), today)
	require.NoError(t, err)
	second, err := svc.RunSweep(context.Background(), today)
	require.NoError(t, err)

	assert.Equal(t, 1, first.SentThreeDay)
	assert.Equal(t, 0, second.SentThreeDay)
	assert.Equal(t, 1, second.Skipped)
	assert.Len(t, transport.sent, 1, "exactly one email per (member, kind, cycle)")
	assert.Len(t, store.sentRecords(), 1)
}

func TestSweepContinuesPastTransportFailure(t *testing.T) {
	due := date(2025, time.March, 15)
	store := newMemStore(
		target("broken@example.com", due),
		target("fine@example.com", due),
	)
	transport := &fakeTransport{failFor: map[string]bool{"broken@example.com": true}}

	summary, err := newSweep(store, transport).RunSweep(context.Background(), due)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.SentDueToday)
	assert.Equal(t, []string{"fine@example.com"}, transport.sent)

	// The failure is audited, not silently swallowed.
	var failed int
	for _, r := range store.records {
		if r.Status == StatusFailed {
			failed++
		}
	}
	assert.Equal(t, 1, failed)
}

func TestSweepAbortsWhenStoreUnavailable(t *testing.T) {
	store := newMemStore(target("a@example.com", date(2025, time.March, 18)))
	store.listErr = errors.New("connection refused")

	_, err := newSweep(store, &fakeTransport{}).RunSweep(context.Background(), date(2025, time.March, 15))
	assert.Error(t, err)
	assert.Empty(t, store.summaries)
}

func TestSweepPersistsRunSummary(t *testing.T) {
	due := date(2025, time.March, 15)
	store := newMemStore(target("a@example.com", due))

	_, err := newSweep(store, &fakeTransport{}).RunSweep(context.Background(), due)
	require.NoError(t, err)

	require.Len(t, store.summaries, 1)
	assert.Equal(t, 1, store.summaries[0].SentDueToday)
	assert.False(t, store.summaries[0].RanAt.IsZero())
}

func TestReminderDueIgnoresTimeOfDay(t *testing.T) {
	due := date(2025, time.March, 15)
	now := time.Date(2025, time.March, 12, 8, 0, 3, 0, time.UTC)

	kind, ok := reminderDue(now, due)
	require.True(t, ok)
	assert.Equal(t, KindThreeDayPrior, kind)
}
