// Package history persists snapshots to append-only stores.
package history

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rustinb303/ai-pr-watcher/internal/config"
	"github.com/rustinb303/ai-pr-watcher/internal/domain"
)

// Store is an append-only snapshot log. Append adds exactly one
// snapshot per successful run; existing entries are never rewritten or
// deleted.
type Store interface {
	Append(ctx context.Context, snap domain.Snapshot) error
	Load(ctx context.Context) ([]domain.Snapshot, error)
}

const timestampLayout = "2006-01-02 15:04:05"

// Early data files were written with U+2011 non-breaking hyphens in the
// timestamp column; the reader normalizes them.
const nonBreakingHyphen = "‑"

// CSVStore reads and appends snapshots in the data.csv layout: one row
// per snapshot, a timestamp column followed by one column per service
// metric. Absent counts are empty cells.
type CSVStore struct {
	path     string
	services []config.Service
}

// NewCSVStore creates a store over path for the given service set.
func NewCSVStore(path string, services []config.Service) *CSVStore {
	return &CSVStore{path: path, services: services}
}

// Header returns the column names for the configured services, e.g.
// timestamp,copilot_total,copilot_merged,...,devin_commits.
func (s *CSVStore) Header() []string {
	cols := []string{"timestamp"}
	for _, svc := range s.services {
		prefix := strings.ToLower(svc.Name)
		if svc.Metric == config.MetricCommits {
			cols = append(cols, prefix+"_commits")
		} else {
			cols = append(cols, prefix+"_total", prefix+"_merged")
		}
	}
	return cols
}

// Append writes one snapshot row, creating the file with its header
// first when needed. The file is only ever opened for appending.
func (s *CSVStore) Append(ctx context.Context, snap domain.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, statErr := os.Stat(s.path)
	writeHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open history file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(s.Header()); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	if err := w.Write(s.row(snap)); err != nil {
		return fmt.Errorf("failed to write snapshot row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush history file: %w", err)
	}
	return nil
}

func (s *CSVStore) row(snap domain.Snapshot) []string {
	byName := make(map[string]domain.ServiceStat, len(snap.Stats))
	for _, stat := range snap.Stats {
		byName[stat.Service] = stat
	}

	row := []string{snap.Timestamp.UTC().Format(timestampLayout)}
	for _, svc := range s.services {
		stat := byName[svc.Name]
		if svc.Metric == config.MetricCommits {
			row = append(row, formatCell(stat.Commits))
		} else {
			row = append(row, formatCell(stat.TotalPRs), formatCell(stat.MergedPRs))
		}
	}
	return row
}

func formatCell(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// Load reads the full history. A missing file is an empty history, not
// an error. Columns are mapped through the file's own header so rows
// written under an older service set still parse.
func (s *CSVStore) Load(ctx context.Context) ([]domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open history file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}
	if len(records) < 2 {
		return nil, nil
	}

	columns := s.mapColumns(records[0])
	snapshots := make([]domain.Snapshot, 0, len(records)-1)
	for i, rec := range records[1:] {
		snap, err := s.parseRow(rec, columns)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, nil
}

type columnRef struct {
	index   int
	service string
	field   string // total, merged or commits
}

func (s *CSVStore) mapColumns(header []string) []columnRef {
	known := make(map[string]string, len(s.services))
	for _, svc := range s.services {
		known[strings.ToLower(svc.Name)] = svc.Name
	}

	var refs []columnRef
	for i, col := range header {
		if i == 0 {
			continue
		}
		for _, field := range []string{"total", "merged", "commits"} {
			prefix, found := strings.CutSuffix(col, "_"+field)
			if !found {
				continue
			}
			if name, ok := known[prefix]; ok {
				refs = append(refs, columnRef{index: i, service: name, field: field})
			}
			break
		}
	}
	return refs
}

func (s *CSVStore) parseRow(rec []string, columns []columnRef) (domain.Snapshot, error) {
	if len(rec) == 0 {
		return domain.Snapshot{}, fmt.Errorf("empty record")
	}

	raw := strings.ReplaceAll(rec[0], nonBreakingHyphen, "-")
	ts, err := time.Parse(timestampLayout, raw)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("bad timestamp %q: %w", rec[0], err)
	}

	byName := make(map[string]*domain.ServiceStat, len(s.services))
	stats := make([]domain.ServiceStat, len(s.services))
	for i, svc := range s.services {
		stats[i] = domain.ServiceStat{Service: svc.Name}
		byName[svc.Name] = &stats[i]
	}

	for _, ref := range columns {
		if ref.index >= len(rec) {
			continue
		}
		count, err := parseCell(rec[ref.index])
		if err != nil {
			return domain.Snapshot{}, fmt.Errorf("bad %s_%s value: %w", strings.ToLower(ref.service), ref.field, err)
		}
		if count == nil {
			continue
		}
		stat := byName[ref.service]
		switch ref.field {
		case "total":
			stat.TotalPRs = count
		case "merged":
			stat.MergedPRs = count
		case "commits":
			stat.Commits = count
		}
	}

	return domain.Snapshot{Timestamp: ts.UTC(), Stats: stats}, nil
}

func parseCell(cell string) (*int, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" || strings.EqualFold(cell, "N/A") {
		return nil, nil
	}
	n, err := strconv.Atoi(cell)
	if err != nil {
		return nil, err
	}
	return domain.Count(n), nil
}
