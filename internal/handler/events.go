package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/compclass/platform/internal/service"
	"github.com/compclass/platform/internal/stream"
	"github.com/go-chi/chi/v5"
)

// EventsHandler serves the session streams over SSE.
type EventsHandler struct {
	process *service.ProcessService
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(process *service.ProcessService) *EventsHandler {
	return &EventsHandler{process: process}
}

// Raw handles GET /competitions/{pin}/events.
func (h *EventsHandler) Raw(w http.ResponseWriter, r *http.Request) {
	ch, cancel, err := h.process.Events(chi.URLParam(r, "pin"))
	if err != nil {
		RespondError(w, err)
		return
	}
	defer cancel()
	serveSSE(w, r, ch)
}

// Rounds handles GET /competitions/{pin}/rounds.
func (h *EventsHandler) Rounds(w http.ResponseWriter, r *http.Request) {
	ch, cancel, err := h.process.RoundEvents(chi.URLParam(r, "pin"))
	if err != nil {
		RespondError(w, err)
		return
	}
	defer cancel()
	serveSSE(w, r, ch)
}

// sseEvent is the wire shape of one streamed event.
type sseEvent struct {
	Seq       uint64      `json:"seq"`
	Kind      string      `json:"kind"`
	Recipient interface{} `json:"recipient"`
	Message   interface{} `json:"message"`
}

func serveSSE(w http.ResponseWriter, r *http.Request, ch <-chan stream.Event) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		RespondJSON(w, http.StatusInternalServerError, map[string]string{
			"code": "INTERNAL_ERROR", "message": "streaming not supported",
		})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	ping := time.NewTicker(30 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-ch:
			if !open {
				return
			}
			data, err := json.Marshal(sseEvent{
				Seq:       ev.Seq,
				Kind:      string(ev.Envelope.Message.Kind()),
				Recipient: ev.Envelope.Recipient,
				Message:   ev.Envelope.Message,
			})
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: message\ndata: %s\n\n", data)
			flusher.Flush()
		case <-ping.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		}
	}
}
