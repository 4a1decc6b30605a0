package recorder

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordImport(_ *ImportEvent) error      { return nil }
func (n *NoopRecorder) RecordSync(_ *SyncEvent) error          { return nil }
func (n *NoopRecorder) RecentSyncs(_ int) ([]SyncEvent, error) { return nil, nil }
func (n *NoopRecorder) Close() error                           { return nil }
