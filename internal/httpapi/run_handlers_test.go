package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/events"
)

// stubSearcher blocks in Search until released, so tests can hold a run
// open while more requests arrive.
type stubSearcher struct {
	release chan struct{}
	calls   atomic.Int32
}

func (s *stubSearcher) Search(ctx context.Context, q domain.SearchQuery) (domain.AggregatedResult, error) {
	s.calls.Add(1)
	if s.release != nil {
		<-s.release
	}
	return domain.AggregatedResult{RunID: "run-1"}, nil
}

func (s *stubSearcher) SearchCategory(ctx context.Context, name string, maxJobsPerQuery int) (domain.AggregatedResult, error) {
	return s.Search(ctx, domain.SearchQuery{Text: name})
}

func newRunHandler(s Searcher) (RunHandler, *atomic.Value, *events.Hub) {
	var status atomic.Value
	status.Store(RunStatus{})
	hub := events.NewHub()
	return RunHandler{Searcher: s, RunStatus: &status, Hub: hub}, &status, hub
}

func postRun(t *testing.T, h RunHandler, body string) map[string]any {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Run(rec, httptest.NewRequest(http.MethodPost, "/run", strings.NewReader(body)))
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestRunRefusedWhileBusy(t *testing.T) {
	s := &stubSearcher{release: make(chan struct{})}
	h, status, _ := newRunHandler(s)

	first := postRun(t, h, `{"query":"LLM engineer"}`)
	assert.Equal(t, true, first["ok"])

	second := postRun(t, h, `{"query":"LLM engineer"}`)
	assert.Equal(t, false, second["ok"])

	close(s.release)
	require.Eventually(t, func() bool {
		return !status.Load().(RunStatus).Running
	}, 2*time.Second, 10*time.Millisecond)

	st := status.Load().(RunStatus)
	assert.Equal(t, "run-1", st.LastRunID)
	assert.Empty(t, st.LastError)
}

func TestSimultaneousRunRequestsAdmitExactlyOne(t *testing.T) {
	s := &stubSearcher{release: make(chan struct{})}
	h, _, _ := newRunHandler(s)

	const n = 16
	var admitted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := httptest.NewRecorder()
			h.Run(rec, httptest.NewRequest(http.MethodPost, "/run", strings.NewReader(`{"query":"LLM engineer"}`)))
			var out map[string]any
			if json.Unmarshal(rec.Body.Bytes(), &out) == nil && out["ok"] == true {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()
	close(s.release)

	assert.Equal(t, int32(1), admitted.Load(), "the busy check must not admit racing requests")
	assert.Equal(t, int32(1), s.calls.Load())
}

func TestRunPublishesLifecycleEvents(t *testing.T) {
	s := &stubSearcher{}
	h, _, hub := newRunHandler(s)
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	out := postRun(t, h, `{"query":"LLM engineer"}`)
	require.Equal(t, true, out["ok"])

	types := make([]string, 0, 2)
	for len(types) < 2 {
		select {
		case msg := <-ch:
			var e events.Event
			require.NoError(t, json.Unmarshal([]byte(msg), &e))
			types = append(types, e.Type)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for events, got %v", types)
		}
	}
	assert.Equal(t, []string{"run_started", "run_done"}, types)
}

func TestRunRequiresQueryOrCategory(t *testing.T) {
	h, _, _ := newRunHandler(&stubSearcher{})

	rec := httptest.NewRecorder()
	h.Run(rec, httptest.NewRequest(http.MethodPost, "/run", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing_query")
}
