package recorder

import "time"

// ImportEvent records one file import, successful or not.
type ImportEvent struct {
	BatchID   string
	Source    string
	Delimiter string
	Headers   []string
	DataRows  int
	Added     int
	Updated   int
	Warnings  int
	Error     string // empty on success
}

// SyncEvent records one quote sync cycle.
type SyncEvent struct {
	CycleID   string
	State     string
	At        time.Time
	Requested int
	Updated   int
	Skipped   int
	Error     string
}

// Recorder keeps an audit trail of imports and sync cycles.
type Recorder interface {
	RecordImport(evt *ImportEvent) error
	RecordSync(evt *SyncEvent) error
	RecentSyncs(limit int) ([]SyncEvent, error)
	Close() error
}
