package gitsync

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Sink receives progress updates from concurrent sync workers. Step may be
// called from multiple goroutines; implementations must be safe for
// concurrent use.
type Sink interface {
	// Init announces the total number of actions about to run.
	Init(total int)
	// Step records completion of one unit of work on the named node.
	Step(name string, operation string)
	// Finish returns the elapsed time since Init.
	Finish() time.Duration
}

// logSink reports progress through the application logger with a monotonic
// atomic counter shared by the workers.
type logSink struct {
	logger    *zap.Logger
	total     int64
	completed atomic.Int64
	startedAt time.Time
}

// NewLogSink returns a Sink that logs each step at info level.
func NewLogSink(logger *zap.Logger) Sink {
	return &logSink{logger: logger}
}

func (sink *logSink) Init(total int) {
	sink.total = int64(total)
	sink.completed.Store(0)
	sink.startedAt = time.Now()
}

func (sink *logSink) Step(name string, operation string) {
	completed := sink.completed.Add(1)
	sink.logger.Info("syncing",
		zap.String("operation", operation),
		zap.String("name", name),
		zap.Int64("completed", completed),
		zap.Int64("total", sink.total))
}

func (sink *logSink) Finish() time.Duration {
	return time.Since(sink.startedAt)
}

// nopSink discards progress updates; used when progress reporting is
// disabled.
type nopSink struct {
	startedAt time.Time
}

// NewNopSink returns a Sink that records timing only.
func NewNopSink() Sink {
	return &nopSink{}
}

func (sink *nopSink) Init(total int)                  { sink.startedAt = time.Now() }
func (sink *nopSink) Step(name string, action string) {}
func (sink *nopSink) Finish() time.Duration           { return time.Since(sink.startedAt) }
