package tui

import (
	"time"

	"github.com/AndreyKorzunin/projectassist/internal/chatbot"
	"github.com/AndreyKorzunin/projectassist/internal/session"
)

// UploadCompleted carries the result of an upload back to the model.
type UploadCompleted struct {
	Session *session.Session
	Err     error
}

// QueryCompleted is sent when a query finished, successfully or not. The
// outcome itself is already in the transcript.
type QueryCompleted struct {
	Err error
}

// HealthChecked carries the result of a health probe. Scheduled is set for
// the periodic probe started by Init.
type HealthChecked struct {
	Health    chatbot.Health
	Err       error
	Scheduled bool
}

// healthTick schedules the next health probe.
type healthTick time.Time
