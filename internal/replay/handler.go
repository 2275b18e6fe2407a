package replay

import (
	"errors"
	"log/slog"
	"net/http"

	"eeg-replay/internal/broadcast"
	"eeg-replay/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
)

// maxRequestBody bounds POST bodies; a stream request only carries a path.
const maxRequestBody = 64 << 10

// Handler exposes the control surface (REST) and the push channel (WebSocket) using go-chi.
type Handler struct {
	svc      *Service
	hub      *broadcast.Hub
	clock    clockwork.Clock
	log      *slog.Logger
	metrics  *metrics.Metrics
	upgrader websocket.Upgrader
}

// NewHandler returns a Handler. Metrics may be nil to disable metric recording
// (e.g. in tests). allowedOrigins restricts WebSocket origins; "*" allows any.
func NewHandler(svc *Service, hub *broadcast.Hub, clock clockwork.Clock, log *slog.Logger, m *metrics.Metrics, allowedOrigins []string) *Handler {
	return &Handler{
		svc:     svc,
		hub:     hub,
		clock:   clock,
		log:     log,
		metrics: m,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     NewCheckOrigin(allowedOrigins, log),
		},
	}
}

// Mount registers the API and push channel routes on r.
func (h *Handler) Mount(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/datasets", h.ListDatasets)
		r.Get("/status", h.GetStatus)
		r.Post("/stream", h.StartStream)
		r.Post("/stop", h.StopStream)
	})
	r.Get("/ws", h.Subscribe)
	r.Get("/select-dataset/{category}/{file}", h.Subscribe)
}

type startStreamRequest struct {
	FilePath string `json:"filePath"`
}

type startStreamResponse struct {
	Status     string `json:"status"`
	Dataset    string `json:"dataset"`
	DataPoints int    `json:"dataPoints"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ListDatasets handles GET /api/datasets.
func (h *Handler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.ListDatasets()
	if err != nil {
		h.log.Error("list datasets failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to list datasets"})
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// GetStatus handles GET /api/status. The body matches the status push event.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, NewStatusEvent(h.svc.Status(), h.clock.Now().UnixMilli()))
}

// StartStream handles POST /api/stream.
// Body: { "filePath": "eyes-closed/crimson-hawk-calm.json" }.
func (h *Handler) StartStream(w http.ResponseWriter, r *http.Request) {
	var req startStreamRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		h.log.Debug("invalid stream request body", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "request body must be JSON with a filePath"})
		return
	}
	if req.FilePath == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "filePath is required in request body"})
		return
	}

	ds, err := h.svc.StartStream(req.FilePath)
	if err != nil {
		status := statusForError(err)
		attrs := []any{slog.String("path", req.FilePath), slog.String("error", err.Error())}
		if status >= http.StatusInternalServerError {
			h.log.Error("start stream failed", attrs...)
		} else {
			h.log.Info("start stream rejected", attrs...)
		}
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, startStreamResponse{
		Status:     "streaming",
		Dataset:    ds.Name,
		DataPoints: ds.Len(),
	})
}

// StopStream handles POST /api/stop. It always succeeds.
func (h *Handler) StopStream(w http.ResponseWriter, r *http.Request) {
	h.svc.StopStream()
	writeJSON(w, http.StatusOK, statusResponse{Status: "stopped"})
}

// statusForError maps loader and scheduler errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, ErrAlreadyStreaming):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrPathInvalid):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
