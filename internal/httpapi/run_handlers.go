package httpapi

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/events"
	"jobscout-engine/internal/store"
)

// RunStatus is the serve-mode view of the most recent search run.
type RunStatus struct {
	LastRunAt string `json:"last_run_at"`
	LastOkAt  string `json:"last_ok_at"`
	LastError string `json:"last_error"`
	LastRunID string `json:"last_run_id"`
	LastFound int    `json:"last_found"`
	Running   bool   `json:"running"`
}

type runRequest struct {
	Query    string `json:"query"`
	Category string `json:"category"`
	Location string `json:"location"`
	MaxPages int    `json:"max_pages"`
	Strict   bool   `json:"strict"`
}

// Searcher is the slice of the search service the run handler needs.
type Searcher interface {
	Search(ctx context.Context, q domain.SearchQuery) (domain.AggregatedResult, error)
	SearchCategory(ctx context.Context, name string, maxJobsPerQuery int) (domain.AggregatedResult, error)
}

type RunHandler struct {
	DB        *store.DB
	Searcher  Searcher
	RunStatus *atomic.Value // RunStatus
	Hub       *events.Hub
}

func (h RunHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.RunStatus.Load().(RunStatus))
}

// Run kicks off one search in the background. Only one run at a time; a
// second request while busy is refused rather than queued. The busy flag
// flips via compare-and-swap so two simultaneous requests cannot both pass
// the check.
func (h RunHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if req.Query == "" && req.Category == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_query", "query or category is required")
		return
	}

	st := h.RunStatus.Load().(RunStatus)
	started := st
	started.Running = true
	started.LastRunAt = time.Now().Format(time.RFC3339)
	if st.Running || !h.RunStatus.CompareAndSwap(st, started) {
		writeJSON(w, map[string]any{"ok": false, "msg": "already running"})
		return
	}

	label := req.Query
	if req.Category != "" {
		label = "category:" + req.Category
	}
	h.Hub.Publish(events.RunStarted("", label))

	go func() {
		res, err := h.runSearch(req)

		now := time.Now().Format(time.RFC3339)
		next := h.RunStatus.Load().(RunStatus)
		next.Running = false
		next.LastRunAt = now
		if err != nil {
			next.LastError = err.Error()
		} else {
			next.LastError = ""
			next.LastOkAt = now
			next.LastRunID = res.RunID
			next.LastFound = len(res.Listings)
		}
		h.RunStatus.Store(next)
	}()

	writeJSON(w, map[string]any{"ok": true})
}

func (h RunHandler) runSearch(req runRequest) (domain.AggregatedResult, error) {
	ctx := context.Background()

	var res domain.AggregatedResult
	var err error
	if req.Category != "" {
		res, err = h.Searcher.SearchCategory(ctx, req.Category, 0)
	} else {
		res, err = h.Searcher.Search(ctx, domain.SearchQuery{
			Text:     req.Query,
			Location: req.Location,
			MaxPages: req.MaxPages,
			Strict:   req.Strict,
		})
	}
	if err != nil {
		return res, err
	}

	h.Hub.Publish(events.RunDone(res))
	if h.DB != nil {
		if saved, serr := h.DB.SaveResult(ctx, res); serr != nil {
			log.Printf("[serve] save failed: %v", serr)
		} else {
			log.Printf("[serve] saved %d listings", saved)
		}
	}
	return res, nil
}
