package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/haukened/ipmon/internal/ipmon/common/clock"
	"github.com/haukened/ipmon/internal/ipmon/common/log"
	"github.com/haukened/ipmon/internal/ipmon/domain"
)

type mockFetcher struct{ mock.Mock }

func (m *mockFetcher) Fetch(ctx context.Context) (map[string]any, error) {
	args := m.Called(ctx)
	payload, _ := args.Get(0).(map[string]any)
	return payload, args.Error(1)
}

type mockStore struct{ mock.Mock }

func (m *mockStore) Save(ctx context.Context, date string, payload map[string]any) error {
	return m.Called(ctx, date, payload).Error(0)
}

func (m *mockStore) Previous(ctx context.Context, date string) (*domain.Snapshot, error) {
	args := m.Called(ctx, date)
	snap, _ := args.Get(0).(*domain.Snapshot)
	return snap, args.Error(1)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) Enabled() bool { return m.Called().Bool(0) }

func (m *mockNotifier) Send(ctx context.Context, text string) error {
	return m.Called(ctx, text).Error(0)
}

type mockRecorder struct{ mock.Mock }

type mockMetrics struct{ mock.Mock }

func (m *mockMetrics) Invalidate() error { return m.Called().Error(0) }

func (m *mockRecorder) Record(date string, prefixes []string) error {
	return m.Called(date, prefixes).Error(0)
}

var (
	_ Fetcher            = (*mockFetcher)(nil)
	_ SnapshotStore      = (*mockStore)(nil)
	_ Notifier           = (*mockNotifier)(nil)
	_ PrefixRecorder     = (*mockRecorder)(nil)
	_ MetricsInvalidator = (*mockMetrics)(nil)
)

const today = "2025-03-02"

func payload(v4 ...string) map[string]any {
	entries := make([]any, 0, len(v4))
	for _, p := range v4 {
		entries = append(entries, map[string]any{domain.FieldIPv4Prefix: p})
	}
	return map[string]any{
		domain.SourceCloud: map[string]any{"syncToken": "1", "prefixes": entries},
		domain.SourceGoog:  nil,
	}
}

func previousSnapshot(date string, v4 ...string) *domain.Snapshot {
	s := domain.SnapshotFromRaw(date, payload(v4...))
	return &s
}

type fixture struct {
	fetcher  *mockFetcher
	store    *mockStore
	notifier *mockNotifier
	recorder *mockRecorder
	metrics  *mockMetrics
	svc      *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		fetcher:  &mockFetcher{},
		store:    &mockStore{},
		notifier: &mockNotifier{},
		recorder: &mockRecorder{},
		metrics:  &mockMetrics{},
	}
	svc, err := NewService(Options{
		Fetcher:  f.fetcher,
		Store:    f.store,
		Clock:    &clock.MockClock{CurrentTime: time.Date(2025, 3, 2, 23, 59, 0, 0, time.UTC)},
		Index:    f.recorder,
		Logger:   log.NewNoopLogger(),
		Metrics:  f.metrics,
		Notifier: f.notifier,
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}

func TestNewService_RequiredDependencies(t *testing.T) {
	_, err := NewService(Options{Store: &mockStore{}})
	assert.Error(t, err)
	_, err = NewService(Options{Fetcher: &mockFetcher{}})
	assert.Error(t, err)
}

func TestRun_DetectsChanges(t *testing.T) {
	f := newFixture(t)
	current := payload("10.0.0.0/24", "10.0.1.0/24")
	f.fetcher.On("Fetch", mock.Anything).Return(current, nil)
	f.store.On("Save", mock.Anything, today, current).Return(nil)
	f.store.On("Previous", mock.Anything, today).Return(previousSnapshot("2025-02-27", "10.0.0.0/24", "10.9.0.0/16"), nil)
	f.metrics.On("Invalidate").Return(nil)
	f.notifier.On("Enabled").Return(true)
	f.notifier.On("Send", mock.Anything, mock.AnythingOfType("string")).Return(nil)
	f.recorder.On("Record", today, []string{"10.0.0.0/24", "10.0.1.0/24"}).Return(nil)

	res, err := f.svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, today, res.Date)
	assert.Equal(t, "2025-02-27", res.PreviousDate)
	assert.False(t, res.Bootstrap())
	assert.Equal(t, []string{"10.0.1.0/24"}, res.Delta.Added)
	assert.Equal(t, []string{"10.9.0.0/16"}, res.Delta.Removed)
	assert.True(t, res.Notified)
	assert.Contains(t, res.Report, "🔔 Changes detected!")

	f.fetcher.AssertExpectations(t)
	f.store.AssertExpectations(t)
	f.notifier.AssertCalled(t, "Send", mock.Anything, res.Report)
	f.recorder.AssertExpectations(t)
	f.metrics.AssertExpectations(t)
}

func TestRun_Bootstrap(t *testing.T) {
	f := newFixture(t)
	current := payload("10.0.0.0/24")
	f.fetcher.On("Fetch", mock.Anything).Return(current, nil)
	f.store.On("Save", mock.Anything, today, current).Return(nil)
	f.store.On("Previous", mock.Anything, today).Return(nil, nil)
	f.metrics.On("Invalidate").Return(nil)
	f.notifier.On("Enabled").Return(false)
	f.recorder.On("Record", today, []string{"10.0.0.0/24"}).Return(nil)

	res, err := f.svc.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Bootstrap())
	assert.False(t, res.Delta.HasChanges())
	assert.Equal(t, 1, res.Delta.CurrentCount)
	assert.False(t, res.Notified)
	assert.Contains(t, res.Report, "✅ No changes detected")
	f.notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestRun_AllSourcesFailed(t *testing.T) {
	f := newFixture(t)
	f.fetcher.On("Fetch", mock.Anything).Return(map[string]any{
		domain.SourceCloud: nil,
		domain.SourceGoog:  nil,
	}, errors.New("timeout"))

	_, err := f.svc.Run(context.Background())
	assert.ErrorIs(t, err, ErrNoData)
	f.store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	f.metrics.AssertNotCalled(t, "Invalidate")
}

func TestRun_NonObjectDocumentsAreNoData(t *testing.T) {
	f := newFixture(t)
	f.fetcher.On("Fetch", mock.Anything).Return(map[string]any{
		domain.SourceCloud: "maintenance",
		domain.SourceGoog:  nil,
	}, nil)

	_, err := f.svc.Run(context.Background())
	assert.ErrorIs(t, err, ErrNoData)
	f.store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_PartialFetchContinues(t *testing.T) {
	f := newFixture(t)
	current := payload("10.0.0.0/24")
	f.fetcher.On("Fetch", mock.Anything).Return(current, errors.New("goog: status 503"))
	f.store.On("Save", mock.Anything, today, current).Return(nil)
	f.store.On("Previous", mock.Anything, today).Return(previousSnapshot("2025-03-01", "10.0.0.0/24"), nil)
	f.metrics.On("Invalidate").Return(errors.New("database not open"))
	f.notifier.On("Enabled").Return(true)
	f.notifier.On("Send", mock.Anything, mock.Anything).Return(errors.New("bad token"))
	f.recorder.On("Record", today, mock.Anything).Return(errors.New("index closed"))

	res, err := f.svc.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Notified)
	assert.False(t, res.Delta.HasChanges())
	f.metrics.AssertCalled(t, "Invalidate")
}

func TestRun_SaveFailure(t *testing.T) {
	f := newFixture(t)
	current := payload("10.0.0.0/24")
	f.fetcher.On("Fetch", mock.Anything).Return(current, nil)
	f.store.On("Save", mock.Anything, today, current).Return(errors.New("read-only file system"))

	_, err := f.svc.Run(context.Background())
	assert.ErrorContains(t, err, "read-only file system")
	f.store.AssertNotCalled(t, "Previous", mock.Anything, mock.Anything)
	f.metrics.AssertNotCalled(t, "Invalidate")
}

func TestRun_WithoutOptionalCollaborators(t *testing.T) {
	fetcher := &mockFetcher{}
	store := &mockStore{}
	current := payload("10.0.0.0/24")
	fetcher.On("Fetch", mock.Anything).Return(current, nil)
	store.On("Save", mock.Anything, mock.Anything, current).Return(nil)
	store.On("Previous", mock.Anything, mock.Anything).Return(nil, nil)

	svc, err := NewService(Options{Fetcher: fetcher, Store: store, Logger: log.NewNoopLogger()})
	require.NoError(t, err)
	res, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Notified)
}
