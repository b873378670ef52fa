package models

import "time"

// ICUStay is one ICU admission. Stays are read-only reference data; the
// pipeline never creates or deletes them.
type ICUStay struct {
	StayID    int64
	HadmID    int64
	SubjectID int64
	InTime    time.Time
	OutTime   time.Time
}

// Slot is one clock-hour of a stay's timeline. Hr is the integer offset
// from the admission hour: slot Hr covers (Start, End] with
// Start = trunc(intime) + (Hr-1)h and End = trunc(intime) + Hr·h.
type Slot struct {
	Hr    int
	Start time.Time
	End   time.Time
}
