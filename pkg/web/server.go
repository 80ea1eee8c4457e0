// Package web serves the presenter dashboard: the annotated camera feed, the
// recognized text and alert banner, and runtime threshold calibration.
package web

import (
	"context"
	_ "embed"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-presenter/pkg/history"
	"github.com/teslashibe/go-presenter/pkg/hub"
	"github.com/teslashibe/go-presenter/pkg/targeting"
)

//go:embed static/index.html
var indexHTML []byte

// Calibrator reads and replaces the targeting thresholds.
// *targeting.Estimator satisfies it.
type Calibrator interface {
	Config() targeting.Config
	SetConfig(targeting.Config) error
}

// HistoryReader lists recent recognitions and alerts.
// *history.Store satisfies it.
type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]history.Entry, error)
}

// Verify dependencies implement the interfaces at compile time.
var (
	_ Calibrator    = (*targeting.Estimator)(nil)
	_ HistoryReader = (*history.Store)(nil)
)

// Options configures a Server. Every collaborator is optional; endpoints
// whose collaborator is nil answer 503.
type Options struct {
	Addr       string
	Logger     *slog.Logger
	Calibrator Calibrator
	History    HistoryReader
	Metrics    http.Handler

	// OnViewersChanged is called with +1/-1 as dashboard sockets come and go.
	OnViewersChanged func(delta int)
}

// Server is the web dashboard server.
type Server struct {
	app    *fiber.App
	addr   string
	logger *slog.Logger
	opts   Options

	state   State
	stateMu sync.RWMutex

	statusHub *hub.Hub
	cameraHub *hub.Hub
}

// NewServer creates the dashboard and registers its routes.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Addr == "" {
		opts.Addr = ":8080"
	}

	s := &Server{
		addr:      opts.Addr,
		logger:    logger.With("component", "web.Server"),
		opts:      opts,
		statusHub: hub.New("status", logger),
		cameraHub: hub.New("camera", logger),
	}
	s.state.derive()

	app := fiber.New(fiber.Config{
		AppName:               "Presenter Dashboard",
		DisableStartupMessage: true,
	})

	app.Use(cors.New())

	app.Get("/", s.handleIndex)

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/thresholds", s.handleGetThresholds)
	api.Put("/thresholds", s.handlePutThresholds)
	api.Get("/history", s.handleHistory)
	api.Get("/system", s.handleSystem)

	if opts.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(opts.Metrics))
	}

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/status", websocket.New(s.serveHub(s.statusHub)))
	app.Get("/ws/camera", websocket.New(s.serveHub(s.cameraHub)))

	s.app = app
	return s
}

// App exposes the underlying Fiber app, mainly for app.Test in tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start listens on the configured address until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve runs the hubs and serves on ln until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go s.statusHub.Run(ctx)
	go s.cameraHub.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listener(ln)
	}()
	s.logger.Info("dashboard listening", "url", "http://"+ln.Addr().String())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	if err := s.app.ShutdownWithTimeout(5 * time.Second); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}

// UpdateState applies update, recomputes the derived fields and broadcasts
// the result.
func (s *Server) UpdateState(update func(*State)) {
	s.stateMu.Lock()
	update(&s.state)
	s.state.derive()
	s.state.UpdatedAt = time.Now()
	state := s.state
	s.stateMu.Unlock()

	if err := s.statusHub.PublishStatus(state); err != nil {
		s.logger.Warn("broadcast state", "error", err)
	}
}

// State returns a copy of the current state.
func (s *Server) State() State {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

// SendCameraFrame broadcasts an encoded JPEG frame.
func (s *Server) SendCameraFrame(jpegData []byte) {
	s.cameraHub.PublishFrame(jpegData)
}

// Viewers returns the number of connected status and camera sockets.
func (s *Server) Viewers() int {
	return s.statusHub.Viewers() + s.cameraHub.Viewers()
}

func (s *Server) serveHub(h *hub.Hub) func(*websocket.Conn) {
	return func(conn *websocket.Conn) {
		if s.opts.OnViewersChanged != nil {
			s.opts.OnViewersChanged(1)
			defer s.opts.OnViewersChanged(-1)
		}
		hub.Serve(h, conn)
	}
}
