package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"ytbridge/internal/platform/metrics"
	"ytbridge/internal/youtube"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Handler exposes the playback gateway HTTP endpoints using go-chi.
type Handler struct {
	registry *Registry
	posters  *youtube.PosterResolver
	log      *slog.Logger
	metrics  *metrics.Metrics

	// Defaults applied to every new provider session.
	privacy   bool
	opTimeout time.Duration
}

// NewHandler returns a Handler using the given registry, poster
// resolver, logger and optional Metrics. Metrics may be nil to disable
// metric recording (e.g. in tests). opTimeout <= 0 uses the provider
// default.
func NewHandler(registry *Registry, posters *youtube.PosterResolver, log *slog.Logger, m *metrics.Metrics, privacy bool, opTimeout time.Duration) *Handler {
	return &Handler{
		registry:  registry,
		posters:   posters,
		log:       log,
		metrics:   m,
		privacy:   privacy,
		opTimeout: opTimeout,
	}
}

// Routes mounts all session endpoints on a chi router.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/sessions", h.CreateSession)
	r.Route("/sessions/{session_id}", func(r chi.Router) {
		r.Delete("/", h.DestroySession)
		r.Post("/messages", h.IngestMessage)
		r.Get("/commands", h.DrainCommands)
		r.Get("/events", h.DrainEvents)
		r.Post("/play", h.Play)
		r.Post("/pause", h.Pause)
		r.Post("/load", h.Load)
		r.Post("/loaded", h.EmbedLoaded)
	})
}

type createSessionRequest struct {
	SourceURL       string `json:"source_url"`
	Privacy         *bool  `json:"privacy,omitempty"`
	Language        string `json:"language,omitempty"`
	CaptionLanguage string `json:"caption_language,omitempty"`
	Autoplay        bool   `json:"autoplay,omitempty"`
	StartMuted      bool   `json:"start_muted,omitempty"`
	HideControls    bool   `json:"hide_controls,omitempty"`
}

type createSessionResponse struct {
	SessionID string `json:"session_id"`
	VideoID   string `json:"video_id"`
	EmbedURL  string `json:"embed_url"`
}

// CreateSession handles POST /sessions.
// Body: { "source_url": "https://www.youtube.com/watch?v=..." }.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug("invalid create session body", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	privacy := h.privacy
	if req.Privacy != nil {
		privacy = *req.Privacy
	}

	sess := NewSession(uuid.NewString())
	sess.Provider = youtube.NewProvider(youtube.Options{
		Transport:       sess,
		Sink:            sess,
		Posters:         h.posters,
		Logger:          h.log,
		Privacy:         privacy,
		Language:        req.Language,
		CaptionLanguage: req.CaptionLanguage,
		Autoplay:        req.Autoplay,
		StartMuted:      req.StartMuted,
		HideControls:    req.HideControls,
		Playsinline:     true,
		OpTimeout:       h.opTimeout,
	})
	sess.EmbedSrc = sess.Provider.Load(req.SourceURL)
	h.registry.Put(sess)

	h.log.Info("session created",
		slog.String("session_id", sess.ID),
		slog.String("video_id", string(sess.Provider.VideoID())))
	if h.metrics != nil {
		h.metrics.IncSessionsCreated()
	}

	writeJSON(w, http.StatusCreated, createSessionResponse{
		SessionID: sess.ID,
		VideoID:   string(sess.Provider.VideoID()),
		EmbedURL:  sess.EmbedSrc,
	})
}

// DestroySession handles DELETE /sessions/{session_id}.
func (h *Handler) DestroySession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.registry.Remove(chi.URLParam(r, "session_id"))
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	sess.Provider.Destroy()
	h.log.Info("session destroyed", slog.String("session_id", sess.ID))
	w.WriteHeader(http.StatusNoContent)
}

// widgetMessage is the raw wire shape posted by the embedded widget.
// Messages without an info payload are irrelevant and dropped silently.
type widgetMessage struct {
	Event string            `json:"event,omitempty"`
	Info  *youtube.Snapshot `json:"info,omitempty"`
}

// IngestMessage handles POST /sessions/{session_id}/messages: one
// inbound status message from the widget, forwarded to the reconciler.
func (h *Handler) IngestMessage(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var msg widgetMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		h.log.Debug("invalid widget message", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if msg.Info == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	sess.Provider.HandleSnapshot(*msg.Info)
	if h.metrics != nil {
		h.metrics.IncSnapshots()
	}
	w.WriteHeader(http.StatusNoContent)
}

// DrainCommands handles GET /sessions/{session_id}/commands: the
// hosting page polls this and relays each message into the iframe.
func (h *Handler) DrainCommands(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	cmds := sess.DrainCommands()
	if h.metrics != nil {
		h.metrics.AddCommandsPosted(len(cmds))
	}
	writeJSON(w, http.StatusOK, map[string]any{"commands": cmds})
}

// DrainEvents handles GET /sessions/{session_id}/events.
func (h *Handler) DrainEvents(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": sess.DrainEvents()})
}

// Play handles POST /sessions/{session_id}/play. The response settles
// together with the play intent: confirmation, timeout, or teardown.
func (h *Handler) Play(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	h.settleOp(w, r, sess, sess.Provider.Play)
}

// Pause handles POST /sessions/{session_id}/pause.
func (h *Handler) Pause(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	h.settleOp(w, r, sess, sess.Provider.Pause)
}

func (h *Handler) settleOp(w http.ResponseWriter, r *http.Request, sess *Session, op func(ctx context.Context) error) {
	err := op(r.Context())
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, youtube.ErrPlayTimeout), errors.Is(err, youtube.ErrPauseTimeout):
		h.log.Info("operation timed out", slog.String("session_id", sess.ID), slog.String("error", err.Error()))
		if h.metrics != nil {
			h.metrics.IncOpTimeouts()
		}
		writeJSON(w, http.StatusGatewayTimeout, map[string]string{"error": err.Error()})
	case errors.Is(err, youtube.ErrSessionClosed):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		h.log.Error("operation failed", slog.String("session_id", sess.ID), slog.String("error", err.Error()))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

type loadRequest struct {
	SourceURL string `json:"source_url"`
}

// Load handles POST /sessions/{session_id}/load: an identifier change.
func (h *Handler) Load(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req loadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	sess.EmbedSrc = sess.Provider.Load(req.SourceURL)
	writeJSON(w, http.StatusOK, createSessionResponse{
		SessionID: sess.ID,
		VideoID:   string(sess.Provider.VideoID()),
		EmbedURL:  sess.EmbedSrc,
	})
}

// EmbedLoaded handles POST /sessions/{session_id}/loaded: the hosting
// page reports that the iframe document finished loading, which
// schedules the listening handshake.
func (h *Handler) EmbedLoaded(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	sess.Provider.EmbedLoaded()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	id := chi.URLParam(r, "session_id")
	sess, ok := h.registry.Get(id)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return nil, false
	}
	return sess, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
