package sync

import (
	"time"
)

// Records stamped at or before the watermark have been processed; a
// never-synced entity falls back to this fixed epoch.
const (
	watermarkEpoch  = "2025-01-01T00:00:00Z"
	watermarkLayout = "2006-01-02T15:04:05Z"
)

// Watermarks persists the last successful synchronization instant per
// entity, keyed <entity>_last_sync in the shared parameter store. No
// locking: one sync run at a time is a precondition of the engine, not
// something this type enforces.
type Watermarks struct {
	params interface {
		GetParam(key string) (string, bool)
		SetParam(key, value string) error
	}
}

// NewWatermarks creates a watermark store on top of the parameter
// store.
func NewWatermarks(params RecordStore) *Watermarks {
	return &Watermarks{params: params}
}

func watermarkKey(entity string) string { return entity + "_last_sync" }

// Get returns the stored watermark; ok is false when the entity was
// never synced.
func (w *Watermarks) Get(entity string) (time.Time, bool) {
	raw, ok := w.params.GetParam(watermarkKey(entity))
	if !ok || raw == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(watermarkLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Set stores the watermark; a zero instant means "now". Called only
// after a pass finished, never mid-pass.
func (w *Watermarks) Set(entity string, t time.Time) error {
	if t.IsZero() {
		t = time.Now().UTC()
	}
	return w.params.SetParam(watermarkKey(entity), t.UTC().Format(watermarkLayout))
}

// WindowStart formats the incremental window lower bound for filter
// expressions: the stored watermark, or the fixed epoch when unset.
// The comparison against it is exclusive.
func (w *Watermarks) WindowStart(entity string) string {
	if t, ok := w.Get(entity); ok {
		return t.UTC().Format(watermarkLayout)
	}
	return watermarkEpoch
}
