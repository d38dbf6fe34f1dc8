package job

import (
	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/dispatch"
	"github.com/gaborage/go-bricks/scheduler"
)

// QueueStats reports the outbound queue counters.
type QueueStats interface {
	Stats() dispatch.Stats
}

// Counter reports how many entries a component currently holds.
type Counter interface {
	Count() int
}

// TelemetryStatsJob logs the outbound queue counters and the debug observer size
type TelemetryStatsJob struct {
	Queue    QueueStats
	Observer Counter
}

// Execute implements scheduler.Job
func (j *TelemetryStatsJob) Execute(ctx scheduler.JobContext) error {
	stats := j.Queue.Stats()

	event := ctx.Logger().Info()
	if stats.Dropped > 0 || stats.Failed > 0 {
		event = ctx.Logger().Warn()
	}
	event.
		Str("jobID", ctx.JobID()).
		Int("offered", int(stats.Offered)).
		Int("delivered", int(stats.Delivered)).
		Int("failed", int(stats.Failed)).
		Int("dropped", int(stats.Dropped)).
		Int("pending", stats.Pending).
		Int("observerEntries", j.Observer.Count()).
		Msg("Telemetry queue stats")

	return nil
}
