package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"ytbridge/internal/youtube"

	"github.com/go-chi/chi/v5"
)

const watchURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

func newTestRouter(t *testing.T) (*chi.Mux, *Registry) {
	t.Helper()
	registry := NewRegistry()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	h := NewHandler(registry, nil, log, nil, false, 50*time.Millisecond)
	r := chi.NewRouter()
	h.Routes(r)
	return r, registry
}

func createSession(t *testing.T, r *chi.Mux) createSessionResponse {
	t.Helper()
	b, _ := json.Marshal(map[string]any{"source_url": watchURL})
	req := httptest.NewRequest(http.MethodPost, "/sessions", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("create session: expected 201, got %d", rec.Code)
	}
	var resp createSessionResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	return resp
}

func TestHandler_CreateSession(t *testing.T) {
	r, registry := newTestRouter(t)

	resp := createSession(t, r)
	if resp.VideoID != "dQw4w9WgXcQ" {
		t.Errorf("video id: got %q", resp.VideoID)
	}
	if resp.EmbedURL == "" {
		t.Error("expected a non-empty embed URL")
	}
	if registry.Count() != 1 {
		t.Errorf("expected 1 live session, got %d", registry.Count())
	}
}

func TestHandler_CreateSession_badBody(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/sessions", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandler_unknownSession(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/sessions/nope/events", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHandler_messageAndEventRoundTrip(t *testing.T) {
	r, _ := newTestRouter(t)
	sess := createSession(t, r)

	// src-change from the initial load is already buffered; drain it.
	drainEvents(t, r, sess.SessionID)

	msg := []byte(`{"event":"infoDelivery","info":{"videoData":{"title":"Never Gonna Give You Up"},"playerState":1}}`)
	req := httptest.NewRequest(http.MethodPost, "/sessions/"+sess.SessionID+"/messages", bytes.NewReader(msg))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("ingest message: expected 204, got %d", rec.Code)
	}

	events := drainEvents(t, r, sess.SessionID)
	types := make([]youtube.EventType, 0, len(events))
	for _, ev := range events {
		types = append(types, ev.Type)
	}
	want := []youtube.EventType{youtube.EventTitleChange, youtube.EventPlay, youtube.EventPlaying}
	if fmt.Sprint(types) != fmt.Sprint(want) {
		t.Errorf("events: got %v, want %v", types, want)
	}

	// A second drain is empty.
	if events := drainEvents(t, r, sess.SessionID); len(events) != 0 {
		t.Errorf("drained events should not repeat, got %v", events)
	}
}

func TestHandler_messageWithoutInfoIgnored(t *testing.T) {
	r, _ := newTestRouter(t)
	sess := createSession(t, r)
	drainEvents(t, r, sess.SessionID)

	req := httptest.NewRequest(http.MethodPost, "/sessions/"+sess.SessionID+"/messages",
		bytes.NewReader([]byte(`{"event":"onReady"}`)))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if events := drainEvents(t, r, sess.SessionID); len(events) != 0 {
		t.Errorf("irrelevant message should emit nothing, got %v", events)
	}
}

func TestHandler_playTimeout(t *testing.T) {
	r, _ := newTestRouter(t)
	sess := createSession(t, r)

	req := httptest.NewRequest(http.MethodPost, "/sessions/"+sess.SessionID+"/play", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusGatewayTimeout {
		t.Errorf("silent widget should time the play out, got %d", rec.Code)
	}

	// The play command was queued for the widget regardless.
	cmds := drainCommands(t, r, sess.SessionID)
	found := false
	for _, c := range cmds {
		if c.Func == "playVideo" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a queued playVideo command, got %v", cmds)
	}
}

func TestHandler_destroySession(t *testing.T) {
	r, registry := newTestRouter(t)
	sess := createSession(t, r)

	req := httptest.NewRequest(http.MethodDelete, "/sessions/"+sess.SessionID+"/", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if registry.Count() != 0 {
		t.Errorf("expected 0 live sessions, got %d", registry.Count())
	}
}

func TestHandler_loadReplacesSource(t *testing.T) {
	r, _ := newTestRouter(t)
	sess := createSession(t, r)

	b, _ := json.Marshal(map[string]any{"source_url": "https://youtu.be/aaaaaaaaaaa"})
	req := httptest.NewRequest(http.MethodPost, "/sessions/"+sess.SessionID+"/load", bytes.NewReader(b))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp createSessionResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode load response: %v", err)
	}
	if resp.VideoID != "aaaaaaaaaaa" {
		t.Errorf("video id after load: got %q", resp.VideoID)
	}
}

func drainEvents(t *testing.T, r *chi.Mux, id string) []youtube.Event {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/sessions/"+id+"/events", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("drain events: expected 200, got %d", rec.Code)
	}
	var resp struct {
		Events []youtube.Event `json:"events"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode events: %v", err)
	}
	return resp.Events
}

func drainCommands(t *testing.T, r *chi.Mux, id string) []youtube.Message {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/sessions/"+id+"/commands", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("drain commands: expected 200, got %d", rec.Code)
	}
	var resp struct {
		Commands []youtube.Message `json:"commands"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode commands: %v", err)
	}
	return resp.Commands
}
