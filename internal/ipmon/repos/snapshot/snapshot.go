// Package snapshot stores one provider payload per day as
// <dir>/<YYYY-MM-DD>.json and loads them back as domain snapshots.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/knadh/koanf"
	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/file"

	"github.com/haukened/ipmon/internal/ipmon/common/clock"
	"github.com/haukened/ipmon/internal/ipmon/common/log"
	"github.com/haukened/ipmon/internal/ipmon/domain"
)

const fileExt = ".json"

// Repository is a directory of dated snapshot files.
type Repository struct {
	dir    string
	logger log.Logger
}

// New returns a Repository rooted at dir, creating the directory if needed.
func New(dir string, logger log.Logger) (*Repository, error) {
	if dir == "" {
		return nil, fmt.Errorf("snapshot directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory %s: %w", dir, err)
	}
	if logger == nil {
		logger = log.GetLogger()
	}
	return &Repository{dir: dir, logger: logger}, nil
}

// Dir returns the directory the repository reads and writes.
func (r *Repository) Dir() string { return r.dir }

func (r *Repository) path(date string) string {
	return filepath.Join(r.dir, date+fileExt)
}

// Dates lists the stored snapshot dates, oldest first. Files whose name is
// not a YYYY-MM-DD date are ignored.
func (r *Repository) Dates() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots in %s: %w", r.dir, err)
	}
	dates := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) {
			continue
		}
		date := strings.TrimSuffix(e.Name(), fileExt)
		if _, err := clock.ParseDateKey(date); err != nil {
			continue
		}
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates, nil
}

// Load reads the snapshot stored for date. The date key is validated before
// any file is opened.
func (r *Repository) Load(date string) (domain.Snapshot, error) {
	snap, err := domain.NewSnapshot(date, nil)
	if err != nil {
		return domain.Snapshot{}, err
	}
	path := r.path(date)
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), kjson.Parser()); err != nil {
		return domain.Snapshot{}, fmt.Errorf("failed to load snapshot file %s: %w", path, err)
	}
	snap.Documents = domain.SnapshotFromRaw(date, k.Raw()).Documents
	return snap, nil
}

// Recent returns up to n of the most recent snapshots, oldest first. The last
// n files are selected before reading, so an unreadable file is logged and
// yields one less snapshot.
func (r *Repository) Recent(ctx context.Context, n int) ([]domain.Snapshot, error) {
	dates, err := r.Dates()
	if err != nil {
		return nil, err
	}
	if n > 0 && len(dates) > n {
		dates = dates[len(dates)-n:]
	}
	return r.loadAll(ctx, dates)
}

// All returns every readable snapshot, oldest first.
func (r *Repository) All(ctx context.Context) ([]domain.Snapshot, error) {
	dates, err := r.Dates()
	if err != nil {
		return nil, err
	}
	return r.loadAll(ctx, dates)
}

func (r *Repository) loadAll(ctx context.Context, dates []string) ([]domain.Snapshot, error) {
	snaps := make([]domain.Snapshot, 0, len(dates))
	for _, date := range dates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s, err := r.Load(date)
		if err != nil {
			r.logger.Warn(map[string]any{"date": date, "error": err}, "skipping unreadable snapshot")
			continue
		}
		snaps = append(snaps, s)
	}
	return snaps, nil
}

// Latest returns the most recent readable snapshot, or nil when none exists.
func (r *Repository) Latest(ctx context.Context) (*domain.Snapshot, error) {
	return r.newestBefore(ctx, "")
}

// Previous returns the most recent readable snapshot dated strictly before
// date, or nil when none exists.
func (r *Repository) Previous(ctx context.Context, date string) (*domain.Snapshot, error) {
	return r.newestBefore(ctx, date)
}

// newestBefore walks dates newest first; an empty bound accepts every date.
func (r *Repository) newestBefore(ctx context.Context, bound string) (*domain.Snapshot, error) {
	dates, err := r.Dates()
	if err != nil {
		return nil, err
	}
	for i := len(dates) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if bound != "" && dates[i] >= bound {
			continue
		}
		s, err := r.Load(dates[i])
		if err != nil {
			r.logger.Warn(map[string]any{"date": dates[i], "error": err}, "skipping unreadable snapshot")
			continue
		}
		return &s, nil
	}
	return nil, nil
}

// Save writes payload as the snapshot for date, replacing any earlier
// capture of the same day. The file is written to a temporary name and
// renamed so readers never observe a partial file.
func (r *Repository) Save(ctx context.Context, date string, payload map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := clock.ParseDateKey(date); err != nil {
		return fmt.Errorf("invalid snapshot date %q: %w", date, err)
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot %s: %w", date, err)
	}
	tmp, err := os.CreateTemp(r.dir, "."+date+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write snapshot %s: %w", date, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", date, err)
	}
	if err := os.Rename(tmp.Name(), r.path(date)); err != nil {
		return fmt.Errorf("failed to store snapshot %s: %w", date, err)
	}
	r.logger.Info(map[string]any{"date": date, "path": r.path(date)}, "saved snapshot")
	return nil
}
