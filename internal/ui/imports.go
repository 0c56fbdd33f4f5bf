package ui

import "github.com/bamsammich/cuesplit/internal/event"

// Event is the engine's progress event, aliased so presenter call sites
// stay free of a second import.
type Event = event.Event

// Re-export event types for convenience.
const (
	PlanComplete     = event.PlanComplete
	TrackStarted     = event.TrackStarted
	TrackCompleted   = event.TrackCompleted
	TrackFailed      = event.TrackFailed
	ConvertStarted   = event.ConvertStarted
	ConvertCompleted = event.ConvertCompleted
	EncodeStarted    = event.EncodeStarted
	EncodeCompleted  = event.EncodeCompleted
	VerifyStarted    = event.VerifyStarted
	VerifyOK         = event.VerifyOK
	VerifyFailed     = event.VerifyFailed
	SheetWritten     = event.SheetWritten
)
