package sql

import (
	"fmt"
	"sync/atomic"
	"time"
)

// QueryStats holds execution statistics of a Driver.
type QueryStats struct {
	// TotalQueries is the number of queries run.
	TotalQueries atomic.Int64
	// TotalExecs is the number of statements executed.
	TotalExecs atomic.Int64
	// TotalDuration is the time spent, in nanoseconds.
	TotalDuration atomic.Int64
	// SlowQueries counts statements above the slow threshold.
	SlowQueries atomic.Int64
	// Errors counts failed statements.
	Errors atomic.Int64
}

// Stats returns a snapshot of the current statistics.
func (s *QueryStats) Stats() StatsSnapshot {
	return StatsSnapshot{
		TotalQueries:  s.TotalQueries.Load(),
		TotalExecs:    s.TotalExecs.Load(),
		TotalDuration: time.Duration(s.TotalDuration.Load()),
		SlowQueries:   s.SlowQueries.Load(),
		Errors:        s.Errors.Load(),
	}
}

// Reset sets every counter to zero.
func (s *QueryStats) Reset() {
	s.TotalQueries.Store(0)
	s.TotalExecs.Store(0)
	s.TotalDuration.Store(0)
	s.SlowQueries.Store(0)
	s.Errors.Store(0)
}

// StatsSnapshot is a point-in-time copy of QueryStats.
type StatsSnapshot struct {
	TotalQueries  int64
	TotalExecs    int64
	TotalDuration time.Duration
	SlowQueries   int64
	Errors        int64
}

// AvgDuration returns the mean duration of a statement.
func (s StatsSnapshot) AvgDuration() time.Duration {
	total := s.TotalQueries + s.TotalExecs
	if total == 0 {
		return 0
	}
	return s.TotalDuration / time.Duration(total)
}

// String returns a one line summary.
func (s StatsSnapshot) String() string {
	return fmt.Sprintf(
		"queries=%d execs=%d duration=%s avg=%s slow=%d errors=%d",
		s.TotalQueries, s.TotalExecs, s.TotalDuration, s.AvgDuration(),
		s.SlowQueries, s.Errors,
	)
}

func (d *Driver) record(stmt string, start time.Time, err error, isQuery bool) {
	elapsed := time.Since(start)
	if isQuery {
		d.stats.TotalQueries.Add(1)
	} else {
		d.stats.TotalExecs.Add(1)
	}
	d.stats.TotalDuration.Add(int64(elapsed))
	kind := statementKind(stmt)
	if err != nil {
		d.stats.Errors.Add(1)
		d.log.Debug("statement failed", "kind", kind, "duration", elapsed, "error", err)
	} else {
		d.log.Debug("statement executed", "kind", kind, "duration", elapsed)
	}
	if elapsed > d.slow {
		d.stats.SlowQueries.Add(1)
		d.log.Warn("slow statement", "kind", kind, "duration", elapsed, "statement", stmt)
	}
}
