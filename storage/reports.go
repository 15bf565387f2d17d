// Package storage persists validation run history in NATS KV so
// dashboards and the documentation layer can read past runs.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/mean-machine-gc/ubispec/validate"
)

// BucketReports is the KV bucket holding validation reports keyed by
// run ID.
const BucketReports = "UBISPEC_REPORTS"

// ErrNotFound is returned when no report exists for a run ID.
var ErrNotFound = errors.New("report not found")

// ReportStore provides validation-report storage backed by NATS KV.
type ReportStore struct {
	reports jetstream.KeyValue
}

// NewReportStore opens the report bucket, creating it if needed.
func NewReportStore(ctx context.Context, js jetstream.JetStream) (*ReportStore, error) {
	kv, err := js.KeyValue(ctx, BucketReports)
	if err != nil {
		kv, err = js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
			Bucket:      BucketReports,
			Description: "ubispec validation run history",
			History:     5,
		})
		if err != nil {
			return nil, fmt.Errorf("create reports bucket: %w", err)
		}
	}
	return &ReportStore{reports: kv}, nil
}

// Put stores one run's report under its run ID.
func (s *ReportStore) Put(ctx context.Context, report *validate.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if _, err := s.reports.Put(ctx, report.RunID, data); err != nil {
		return fmt.Errorf("store report %s: %w", report.RunID, err)
	}
	return nil
}

// Get retrieves the report for a run ID.
func (s *ReportStore) Get(ctx context.Context, runID string) (*validate.Report, error) {
	entry, err := s.reports.Get(ctx, runID)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get report %s: %w", runID, err)
	}
	var report validate.Report
	if err := json.Unmarshal(entry.Value(), &report); err != nil {
		return nil, fmt.Errorf("unmarshal report %s: %w", runID, err)
	}
	return &report, nil
}

// RunIDs lists the stored run IDs, sorted.
func (s *ReportStore) RunIDs(ctx context.Context) ([]string, error) {
	lister, err := s.reports.ListKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	var ids []string
	for id := range lister.Keys() {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
