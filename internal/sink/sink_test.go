package sink

import (
	"testing"
	"time"

	"github.com/adverant/intake-router/internal/model"
)

func TestLogSink_EmitDoesNotPanic(t *testing.T) {
	s := NewLogSink()
	name := "SMITH JOHN"
	event := model.ProcessingEvent{
		OriginalFilename: "a.pdf",
		FinalFilename:    &name,
		Status:           string(model.BucketFullyIndexed),
		ExtractedName:    &name,
		Timestamp:        time.Now(),
	}

	// Emit must never panic or return an error: a sink failure must never
	// interrupt routing (§4.8).
	s.Emit(event)
}

func TestLogSink_EmitHandlesEmptyEvent(t *testing.T) {
	s := NewLogSink()
	s.Emit(model.ProcessingEvent{OriginalFilename: "b.pdf", Status: string(model.BucketFailed), Timestamp: time.Now()})
}
