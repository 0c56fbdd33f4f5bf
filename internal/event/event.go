package event

import "time"

// Type identifies the kind of event.
type Type int

const (
	PlanComplete Type = iota + 1
	TrackStarted
	TrackCompleted
	TrackFailed
	ConvertStarted
	ConvertCompleted
	EncodeStarted
	EncodeCompleted
	VerifyStarted
	VerifyOK
	VerifyFailed
	SheetWritten
)

var typeNames = [...]string{
	PlanComplete:     "PlanComplete",
	TrackStarted:     "TrackStarted",
	TrackCompleted:   "TrackCompleted",
	TrackFailed:      "TrackFailed",
	ConvertStarted:   "ConvertStarted",
	ConvertCompleted: "ConvertCompleted",
	EncodeStarted:    "EncodeStarted",
	EncodeCompleted:  "EncodeCompleted",
	VerifyStarted:    "VerifyStarted",
	VerifyOK:         "VerifyOK",
	VerifyFailed:     "VerifyFailed",
	SheetWritten:     "SheetWritten",
}

func (t Type) String() string {
	if t >= 1 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// Event represents a single progress event from the engine.
type Event struct {
	Type      Type
	Timestamp time.Time
	Track     int    // track number, 0 when not track-scoped
	Path      string // output file or sheet path
	Format    string // cue sheet flavor (SheetWritten)
	Size      int64  // bytes for this track or file
	Total     int64  // total tracks (PlanComplete)
	TotalSize int64  // total bytes (PlanComplete)
	Error     error
	WorkerID  int
}
