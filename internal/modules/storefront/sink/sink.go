// Package sink delivers telemetry submissions (channel 2) to a remote collector.
package sink

import (
	"context"
	"encoding/json"

	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/domain"
	"github.com/gaborage/go-bricks/logger"
)

// Sink submits a single document. Implementations must honour ctx cancellation.
type Sink interface {
	Name() string
	Submit(ctx context.Context, sub domain.Submission) error
}

// LogSink writes submissions to the application log. It is the development default.
type LogSink struct {
	logger logger.Logger
}

func NewLogSink(log logger.Logger) *LogSink {
	return &LogSink{logger: log}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Submit(_ context.Context, sub domain.Submission) error {
	payload, err := json.Marshal(sub)
	if err != nil {
		return err
	}

	s.logger.Debug().
		Str("eventType", string(sub.XDM.EventType)).
		Str("payload", string(payload)).
		Msg("Telemetry submission")

	return nil
}
