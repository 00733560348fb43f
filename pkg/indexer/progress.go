package indexer

import (
	"context"
	"log/slog"
	"time"
)

// Progress titles shown while the collections are rebuilt.
const (
	TitlePackages = "Indexing UI Packages Components"
	TitleLocal    = "Indexing Local Components"
)

// ProgressReporter is notified when a long-running operation starts and ends.
type ProgressReporter interface {
	Begin(title string)
	End(title string, err error, elapsed time.Duration)
}

// LogReporter reports progress through slog.
type LogReporter struct {
	Logger *slog.Logger
}

func (r LogReporter) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func (r LogReporter) Begin(title string) {
	r.logger().Info(title)
}

func (r LogReporter) End(title string, err error, elapsed time.Duration) {
	if err != nil {
		r.logger().Warn(title+" failed", "error", err, "duration_ms", elapsed.Milliseconds())
		return
	}
	r.logger().Info(title+" done", "duration_ms", elapsed.Milliseconds())
}

// WithProgress runs fn between reporter.Begin and reporter.End. A nil
// reporter runs fn unreported.
func WithProgress(ctx context.Context, reporter ProgressReporter, title string, fn func(context.Context) error) error {
	if reporter == nil {
		return fn(ctx)
	}

	start := time.Now()
	reporter.Begin(title)
	err := fn(ctx)
	reporter.End(title, err, time.Since(start))
	return err
}
