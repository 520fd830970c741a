package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"jobscout-engine/internal/events"
)

const ssePingInterval = 25 * time.Second

type EventsHandler struct {
	Hub *events.Hub
}

// ServeSSE streams run events to the client until it disconnects. Idle
// connections get a periodic ping so proxies do not reap them.
func (h EventsHandler) ServeSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, r, http.StatusInternalServerError, "stream_unsupported", "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	ch := h.Hub.Subscribe()
	defer h.Hub.Unsubscribe(ch)

	send := func(payload string) {
		fmt.Fprintf(w, "event: message\ndata: %s\n\n", payload)
		flusher.Flush()
	}
	send(events.Make("", "ping", nil))

	ping := time.NewTicker(ssePingInterval)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ping.C:
			send(events.Make("", "ping", nil))
		case msg := <-ch:
			send(msg)
		}
	}
}
