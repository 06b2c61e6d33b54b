package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/ipmon/internal/ipmon/common/log"
	"github.com/haukened/ipmon/internal/ipmon/domain"
)

func newRepo(t *testing.T) *Repository {
	t.Helper()
	r, err := New(t.TempDir(), log.NewNoopLogger())
	require.NoError(t, err)
	return r
}

func payload(v4 ...string) map[string]any {
	entries := make([]any, 0, len(v4))
	for _, p := range v4 {
		entries = append(entries, map[string]any{domain.FieldIPv4Prefix: p, "service": "Google Cloud", "scope": "us-east1"})
	}
	return map[string]any{
		domain.SourceCloud: map[string]any{"syncToken": "1700000000", "creationTime": "2025-01-01T00:00:00", "prefixes": entries},
		domain.SourceGoog:  nil,
	}
}

func TestNew_RequiresDir(t *testing.T) {
	_, err := New("", nil)
	assert.Error(t, err)
}

func TestSaveAndLoad(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	require.NoError(t, r.Save(ctx, "2025-01-02", payload("10.0.0.0/24", "10.0.1.0/24")))

	s, err := r.Load("2025-01-02")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-02", s.Date)
	require.NotNil(t, s.Documents[domain.SourceCloud])
	assert.Nil(t, s.Documents[domain.SourceGoog])

	cloud := s.Documents[domain.SourceCloud]
	assert.Equal(t, "1700000000", cloud.SyncToken)
	require.Len(t, cloud.Entries, 2)
	assert.Equal(t, "10.0.0.0/24", cloud.Entries[0].IPv4)
	assert.Equal(t, "us-east1", cloud.Entries[0].Scope)

	// no temp files left behind
	files, err := os.ReadDir(r.Dir())
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestSave_InvalidDate(t *testing.T) {
	r := newRepo(t)
	assert.Error(t, r.Save(context.Background(), "../escape", payload()))
}

func TestLoad_InvalidDate(t *testing.T) {
	r := newRepo(t)
	outside := filepath.Join(filepath.Dir(r.Dir()), "outside.json")
	require.NoError(t, os.WriteFile(outside, []byte(`{"cloud":null}`), 0o644))

	for _, date := range []string{"", "../outside", "2025-13-01", "20250101"} {
		_, err := r.Load(date)
		assert.ErrorContains(t, err, "snapshot date", date)
	}
}

func TestDates_IgnoresForeignFiles(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	require.NoError(t, r.Save(ctx, "2025-01-03", payload()))
	require.NoError(t, r.Save(ctx, "2025-01-01", payload()))
	require.NoError(t, os.WriteFile(filepath.Join(r.Dir(), "notes.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(r.Dir(), "2025-01-02.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(r.Dir(), "2025-01-04.json"), 0o755))

	dates, err := r.Dates()
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-01-01", "2025-01-03"}, dates)
}

func TestRecent_SkipsUnreadable(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	require.NoError(t, r.Save(ctx, "2025-01-01", payload("10.0.0.0/24")))
	require.NoError(t, r.Save(ctx, "2025-01-02", payload("10.0.1.0/24")))
	require.NoError(t, os.WriteFile(filepath.Join(r.Dir(), "2025-01-03.json"), []byte("{not json"), 0o644))
	require.NoError(t, r.Save(ctx, "2025-01-04", payload("10.0.2.0/24")))

	snaps, err := r.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, "2025-01-02", snaps[0].Date)
	assert.Equal(t, "2025-01-04", snaps[1].Date)

	all, err := r.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestLatestAndPrevious(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()

	latest, err := r.Latest(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest)

	require.NoError(t, r.Save(ctx, "2025-01-01", payload("10.0.0.0/24")))
	require.NoError(t, r.Save(ctx, "2025-01-05", payload("10.0.1.0/24")))
	require.NoError(t, os.WriteFile(filepath.Join(r.Dir(), "2025-01-04.json"), []byte("[]]"), 0o644))

	latest, err = r.Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "2025-01-05", latest.Date)

	// the unreadable 2025-01-04 is skipped
	prev, err := r.Previous(ctx, "2025-01-05")
	require.NoError(t, err)
	require.NotNil(t, prev)
	assert.Equal(t, "2025-01-01", prev.Date)

	prev, err = r.Previous(ctx, "2025-01-01")
	require.NoError(t, err)
	assert.Nil(t, prev)
}

func TestRecent_Canceled(t *testing.T) {
	r := newRepo(t)
	require.NoError(t, r.Save(context.Background(), "2025-01-01", payload()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Recent(ctx, 10)
	assert.ErrorIs(t, err, context.Canceled)
}
