/**
 * Event Sink (C8)
 *
 * Write-only emit(event) interface; the pipeline never reads or blocks on
 * it, and a sink failure never prevents routing.
 */

package sink

import (
	"encoding/json"

	"github.com/adverant/intake-router/internal/logging"
	"github.com/adverant/intake-router/internal/model"
)

// EventSink is implemented by every backend below.
type EventSink interface {
	Emit(event model.ProcessingEvent)
}

// LogSink is the default, dependency-free backend: it writes the event as
// a JSON line through the shared logger.
type LogSink struct {
	log *logging.Logger
}

// NewLogSink builds a LogSink.
func NewLogSink() *LogSink {
	return &LogSink{log: logging.NewLogger("sink.log")}
}

func (s *LogSink) Emit(event model.ProcessingEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		s.log.Error("failed to marshal event", "error", err.Error())
		return
	}
	s.log.Info("processing event", "event", string(data))
}
