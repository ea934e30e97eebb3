package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/kyleking/sqlitegui/internal/storage"
)

// QueryStats is one OnLastQueryStats notification
type QueryStats struct {
	RowsAffected int64
	Elapsed      time.Duration
}

// RecordingListener records every presentation notification it receives
type RecordingListener struct {
	mu     sync.Mutex
	Labels []string
	Stats  []QueryStats
}

// OnConnectionStatusChanged records label
func (l *RecordingListener) OnConnectionStatusChanged(label string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.Labels = append(l.Labels, label)
}

// OnLastQueryStats records the statistics of the last statement
func (l *RecordingListener) OnLastQueryStats(rowsAffected int64, elapsed time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.Stats = append(l.Stats, QueryStats{RowsAffected: rowsAffected, Elapsed: elapsed})
}

// LastLabel returns the most recent status label, or "" if none was sent
func (l *RecordingListener) LastLabel() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.Labels) == 0 {
		return ""
	}

	return l.Labels[len(l.Labels)-1]
}

// FailingQuerier is a catalog querier whose every statement fails with Err
type FailingQuerier struct {
	Err   error
	Calls int
}

// Dialect returns the SQLite dialect
func (f *FailingQuerier) Dialect() storage.Dialect {
	return storage.DialectFor(storage.DriverSQLite)
}

// Execute counts the call and returns Err
func (f *FailingQuerier) Execute(_ context.Context, _ string, _ ...any) (*storage.QueryResult, error) {
	f.Calls++
	return nil, f.Err
}
