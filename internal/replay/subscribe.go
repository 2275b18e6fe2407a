package replay

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

// Subscribe handles GET /ws and GET /select-dataset/{category}/{file}.
// The connection is upgraded and registered with the hub; its first frame is
// a status snapshot. With a dataset in the path, that dataset is loaded and
// started when idle; if loading fails the first frame is an error event
// instead. The handler then reads client frames until the connection closes.
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already written an HTTP error.
		h.log.Debug("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	var frames [][]byte
	if g := h.greeting(r); g != nil {
		frames = append(frames, g)
	}
	id := h.hub.Subscribe(conn, frames...)
	h.updateSubscriberGauge()
	defer func() {
		h.hub.Unsubscribe(id)
		h.updateSubscriberGauge()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var payload map[string]any
		if err := json.Unmarshal(msg, &payload); err != nil {
			h.log.Warn("ignoring malformed client message",
				slog.String("subscriber_id", id.String()),
				slog.String("error", err.Error()))
			continue
		}
		h.log.Debug("client message", slog.String("subscriber_id", id.String()), slog.Any("message", payload))
	}
}

// greeting builds the first frame for a new subscriber, performing the
// dataset selection encoded in the URL if there is one.
func (h *Handler) greeting(r *http.Request) []byte {
	category, file := urlParam(r, "category"), urlParam(r, "file")
	if category != "" && file != "" {
		ds, started, err := h.svc.SelectDataset(category, file)
		if err != nil {
			h.log.Warn("dataset selection on connect failed",
				slog.String("category", category),
				slog.String("file", file),
				slog.String("error", err.Error()))
			return h.marshalFrame(NewErrorEvent(
				fmt.Sprintf("Failed to load dataset: %s/%s", category, file),
				h.clock.Now().UnixMilli()))
		}
		h.log.Info("dataset selected on connect", slog.String("path", ds.Path), slog.Bool("started", started))
	}
	return h.marshalFrame(NewStatusEvent(h.svc.Status(), h.clock.Now().UnixMilli()))
}

func (h *Handler) marshalFrame(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		h.log.Error("greeting marshal failed", slog.String("error", err.Error()))
		return nil
	}
	return data
}

func (h *Handler) updateSubscriberGauge() {
	if h.metrics != nil {
		h.metrics.SetSubscribers(h.hub.Count())
	}
}

// urlParam returns the decoded chi URL parameter, or "" if absent or undecodable.
func urlParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if raw == "" {
		return ""
	}
	v, err := url.PathUnescape(raw)
	if err != nil {
		return ""
	}
	return v
}

// NewCheckOrigin returns a CheckOrigin function for the WebSocket upgrader.
// Requests without an Origin header (non-browser clients) and same-host
// origins are always allowed; "*" in allowed permits every origin.
func NewCheckOrigin(allowed []string, log *slog.Logger) func(r *http.Request) bool {
	allowAll := slices.Contains(allowed, "*")

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || allowAll {
			return true
		}
		if u, err := url.Parse(origin); err == nil && strings.EqualFold(u.Host, r.Host) {
			return true
		}
		for _, a := range allowed {
			if strings.EqualFold(strings.TrimSuffix(a, "/"), origin) {
				return true
			}
		}
		log.Warn("websocket origin rejected", slog.String("origin", origin), slog.String("remote_addr", r.RemoteAddr))
		return false
	}
}
