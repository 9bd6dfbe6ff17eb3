package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/chadn/ai-chatbot-meetings/agent"
	"github.com/chadn/ai-chatbot-meetings/history"
	"github.com/chadn/ai-chatbot-meetings/metrics"
	"github.com/chadn/ai-chatbot-meetings/model"
	"github.com/chadn/ai-chatbot-meetings/store"
)

const maxBodyBytes = 1 << 20

// Server exposes the assistant over HTTP. Sessions live in memory and
// are archived through the session store after every turn when one is
// configured.
type Server struct {
	server  *http.Server
	agent   *agent.Agent
	archive store.SessionStore
	log     zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

// session serializes access to one conversation. The history store has no
// locking of its own; the mutex is held for the whole turn so concurrent
// requests for the same session id queue up instead of interleaving.
type session struct {
	mu   sync.Mutex
	hist *history.Store
}

func New(listen string, ag *agent.Agent, archive store.SessionStore, m *metrics.Metrics, log zerolog.Logger) *Server {
	s := &Server{
		agent:    ag,
		archive:  archive,
		log:      log,
		sessions: make(map[string]*session),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat", s.chat)
	mux.HandleFunc("GET /sessions/{id}/export", s.exportSession)
	mux.HandleFunc("POST /sessions/{id}/import", s.importSession)
	mux.HandleFunc("GET /health", s.health)
	mux.Handle("GET /metrics", promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{}))
	s.server = &http.Server{
		Addr:    listen,
		Handler: mux,
	}
	return s
}

func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.server.ListenAndServe() }()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		if err := s.Stop(context.Background()); err != nil {
			return err
		}
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) Stop(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Handler returns the configured HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	Model     string `json:"model"`
}

type chatResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
	Outcome   string `json:"outcome"`
}

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	sess, err := s.session(sessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load session")
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	reply, outcome, err := s.agent.Respond(r.Context(), sess.hist, agent.Request{
		Content: req.Message,
		Model:   req.Model,
	})
	if err != nil {
		s.log.Error().Err(err).Str("session", sessionID).Msg("chat turn failed")
		writeError(w, http.StatusBadGateway, "assistant unavailable")
		return
	}
	s.persist(sessionID, sess.hist)
	writeJSON(w, http.StatusOK, chatResponse{
		SessionID: sessionID,
		Reply:     reply,
		Outcome:   string(outcome),
	})
}

func (s *Server) exportSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	sess.mu.Lock()
	data, err := sess.hist.ExportJSON()
	sess.mu.Unlock()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) importSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body")
		return
	}
	sess, err := s.session(sessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load session")
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := sess.hist.ImportJSON(body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.persist(sessionID, sess.hist)
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"messages":   sess.hist.Len(),
	})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// session returns the in-memory session for id, reviving its history from
// the archive when the process has not seen it yet.
func (s *Server) session(id string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		return sess, nil
	}
	hist := history.NewStore()
	if s.archive != nil {
		if msgs, err := s.archive.LoadMessages(id); err == nil && len(msgs) > 0 {
			data, err := json.Marshal(msgs)
			if err != nil {
				return nil, err
			}
			if err := hist.ImportJSON(data); err != nil {
				return nil, err
			}
		}
	}
	sess := &session{hist: hist}
	s.sessions[id] = sess
	return sess, nil
}

func (s *Server) lookup(id string) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *Server) persist(id string, hist *history.Store) {
	if s.archive == nil {
		return
	}
	if _, err := s.archive.GetSession(id); err != nil {
		now := time.Now().UTC()
		title := firstHumanLine(hist)
		if err := s.archive.CreateSession(&store.Session{
			ID:        id,
			Title:     title,
			CreatedAt: now,
			UpdatedAt: now,
		}); err != nil {
			s.log.Warn().Err(err).Str("session", id).Msg("create archive session")
			return
		}
	}
	if err := s.archive.SaveMessages(id, hist.Messages()); err != nil {
		s.log.Warn().Err(err).Str("session", id).Msg("archive session")
	}
}

func firstHumanLine(hist *history.Store) string {
	for _, msg := range hist.Messages() {
		if msg.Role == model.RoleHuman && msg.Content != "" {
			if len(msg.Content) > 80 {
				return msg.Content[:80]
			}
			return msg.Content
		}
	}
	return "chat session"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
