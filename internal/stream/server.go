// Package stream serves road generation over websockets. A client sends a
// Request and receives every placement as it is committed, followed by a
// completion and a summary event.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/lawnchairsociety/roadgen/internal/audio"
	"github.com/lawnchairsociety/roadgen/internal/config"
	"github.com/lawnchairsociety/roadgen/internal/logger"
	"github.com/lawnchairsociety/roadgen/internal/road"
	"github.com/lawnchairsociety/roadgen/internal/store"
)

// Server streams generation runs to websocket clients. Each connection gets
// its own runs; the generator and catalog are shared read-only.
type Server struct {
	cfg       config.StreamConfig
	gen       *road.Generator
	segmenter audio.Segmenter
	store     *store.Store
	limiter   *ConnLimiter

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	httpServer *http.Server
}

// NewServer creates a server for gen.
func NewServer(cfg config.StreamConfig, gen *road.Generator, segmenter audio.Segmenter) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:       cfg,
		gen:       gen,
		segmenter: segmenter,
		limiter:   NewConnLimiter(cfg.MaxConnectionsPerIP, cfg.MaxConnections),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// SetStore enables saving generated tracks on request.
func (s *Server) SetStore(st *store.Store) {
	s.store = st
}

// Handler returns the HTTP routes: /ws for the stream and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocketUpgrade)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return mux
}

// ListenAndServe blocks serving on the configured address until Shutdown.
func (s *Server) ListenAndServe() error {
	s.mu.Lock()
	s.httpServer = &http.Server{Addr: s.cfg.Address, Handler: s.Handler()}
	srv := s.httpServer
	s.mu.Unlock()

	logger.Info("WebSocket server listening", "address", s.cfg.Address)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and cancels running generations.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (s *Server) handleWebSocketUpgrade(w http.ResponseWriter, r *http.Request) {
	clientIP := realIP(r)

	if !s.limiter.TryAcquire(clientIP) {
		logger.Warning("WebSocket connection rejected - limit exceeded",
			"remote_addr", r.RemoteAddr,
			"client_ip", clientIP)
		http.Error(w, "Too many connections. Please try again later.", http.StatusTooManyRequests)
		return
	}
	defer s.limiter.Release(clientIP)

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			allowed := s.cfg.IsOriginAllowed(origin, r.Host)
			if !allowed {
				logger.Warning("WebSocket connection rejected - origin not allowed",
					"origin", origin,
					"host", r.Host,
					"remote_addr", r.RemoteAddr)
			}
			return allowed
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	s.serveConn(conn, clientIP)
}

// serveConn answers requests until the client goes away.
func (s *Server) serveConn(conn *websocket.Conn, clientIP string) {
	if s.cfg.MaxMessageSize > 0 {
		conn.SetReadLimit(s.cfg.MaxMessageSize)
	}
	sink := NewSocketSink(conn)
	logger.Debug("Stream client connected", "client_ip", clientIP)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warning("Stream client read failed", "client_ip", clientIP, "error", err)
			}
			return
		}

		var req Request
		if err := json.Unmarshal(data, &req); err != nil {
			if sendErr := sink.Send(errorEvent(CodeBadRequest, fmt.Errorf("invalid request: %w", err))); sendErr != nil {
				return
			}
			continue
		}

		if err := s.handleRequest(sink, req); err != nil {
			logger.Warning("Stream client write failed", "client_ip", clientIP, "error", err)
			return
		}
	}
}

// handleRequest runs one generation. The returned error is a write failure;
// generation failures are reported to the client as error events.
func (s *Server) handleRequest(sink *SocketSink, req Request) error {
	analysis, name, code, err := s.analyze(req)
	if err != nil {
		return sink.Send(errorEvent(code, err))
	}

	res, err := s.gen.Generate(s.ctx, analysis, sink)
	if err != nil {
		code := CodeInternal
		if errors.Is(err, road.ErrCollisionUnresolved) {
			code = CodeCollision
		}
		return sink.Send(errorEvent(code, err))
	}

	summary := Event{
		Type:             EventSummary,
		GeneratedSeconds: res.GeneratedSeconds,
		ClipLength:       res.ClipLength,
		Fingerprint:      res.Fingerprint,
	}
	if req.Save {
		id, err := s.save(name, res)
		if err != nil {
			if sendErr := sink.Send(errorEvent(CodeUnavailable, err)); sendErr != nil {
				return sendErr
			}
		}
		summary.TrackID = id
	}
	return sink.Send(summary)
}

func (s *Server) analyze(req Request) (audio.Analysis, string, string, error) {
	switch {
	case req.Audio != "" && len(req.Timeline) > 0:
		return audio.Analysis{}, "", CodeBadRequest, errors.New("audio and timeline are mutually exclusive")
	case req.Audio != "":
		// Only bare file names inside the audio directory are served.
		path := filepath.Join(s.cfg.AudioDir, filepath.Base(req.Audio))
		clip, err := audio.Decode(path)
		if err != nil {
			return audio.Analysis{}, "", CodeAudio, err
		}
		name := req.Name
		if name == "" {
			name = clip.Name
		}
		return s.segmenter.Analyze(clip), name, "", nil
	case len(req.Timeline) > 0:
		return req.analysis(s.segmenter), req.Name, "", nil
	default:
		return audio.Analysis{}, "", CodeBadRequest, errors.New("request needs audio or timeline")
	}
}

// save stores res. An identical stored road is reused.
func (s *Server) save(name string, res *road.Result) (string, error) {
	if s.store == nil {
		return "", errors.New("track storage is not configured")
	}
	track := store.TrackFromResult(name, s.gen.Catalog().Name, s.gen.Options().CellSize, res)
	err := s.store.SaveTrack(track)
	if errors.Is(err, store.ErrDuplicateTrack) {
		existing, findErr := s.store.FindByFingerprint(res.Fingerprint)
		if findErr != nil {
			return "", findErr
		}
		return existing.ID, nil
	}
	if err != nil {
		logger.Error("Failed to save track", "name", name, "error", err)
		return "", err
	}
	logger.Info("Saved track", "id", track.ID, "name", name, "placements", len(track.Placements))
	return track.ID, nil
}

func errorEvent(code string, err error) Event {
	return Event{Type: EventError, Code: code, Error: err.Error()}
}
