package events

import (
	"encoding/json"
	"time"

	"jobscout-engine/internal/domain"
)

// Event is the wire form streamed to SSE subscribers while a run is in
// flight.
type Event struct {
	Type    string          `json:"type"`
	Version int             `json:"v"`
	At      time.Time       `json:"at"`
	RunID   string          `json:"run_id,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func Make(runID, typ string, data any) string {
	var raw json.RawMessage
	if data != nil {
		b, _ := json.Marshal(data)
		raw = b
	}
	e := Event{
		Type:    typ,
		Version: 1,
		At:      time.Now().UTC(),
		RunID:   runID,
		Data:    raw,
	}
	b, _ := json.Marshal(e)
	return string(b)
}

// RunStarted announces a new search run.
func RunStarted(runID, query string) string {
	return Make(runID, "run_started", map[string]string{"query": query})
}

// SourceDone reports one source finishing, in any terminal status.
func SourceDone(runID string, out domain.ScrapeOutcome) string {
	return Make(runID, "source_done", map[string]any{
		"source":       out.Source,
		"status":       string(out.Status),
		"accepted":     len(out.Listings),
		"raw":          out.RawCount,
		"filtered_out": out.FilteredOut,
		"error":        out.Err,
	})
}

// RunDone carries the run summary once aggregation finishes.
func RunDone(res domain.AggregatedResult) string {
	return Make(res.RunID, "run_done", map[string]any{
		"listings":     len(res.Listings),
		"raw":          res.RawCount,
		"filtered_out": res.FilteredOut,
		"succeeded":    res.SucceededSources(),
		"failed":       res.FailedSources(),
		"duration_ms":  res.Duration.Milliseconds(),
	})
}
