package hanami

import (
	"context"
	"net"
	"net/http"
	"sync/atomic"

	"github.com/slimloans/hanami/errors"
)

// WebService serves the application over http with the timeouts of the
// server configuration
type WebService struct {
	application *Application
	server      *http.Server
	running     atomic.Bool
}

// NewWebService boots the application and builds the server, an empty bind
// uses server.bind
func NewWebService(app *Application, bind string) (*WebService, error) {
	if err := app.Boot(); err != nil {
		return nil, err
	}

	handler, err := app.Handler()
	if err != nil {
		return nil, err
	}

	cfg := app.config.Server
	if bind == "" {
		bind = cfg.Bind.Get()
	}

	return &WebService{
		application: app,
		server: &http.Server{
			Addr:         bind,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout.Get(),
			WriteTimeout: cfg.WriteTimeout.Get(),
			IdleTimeout:  cfg.IdleTimeout.Get(),
		},
	}, nil
}

func (*WebService) Name() string       { return "web" }
func (ws *WebService) Addr() string    { return ws.server.Addr }
func (ws *WebService) IsRunning() bool { return ws.running.Load() }

// Start listens on the bind address until the server is stopped
func (ws *WebService) Start() error {
	l, err := net.Listen("tcp", ws.server.Addr)
	if err != nil {
		return err
	}
	return ws.Serve(l)
}

// Serve accepts connections on l until the server is stopped
func (ws *WebService) Serve(l net.Listener) error {
	ws.application.changeState(StateRunning)

	ws.running.Store(true)
	defer ws.running.Store(false)

	ws.application.logger.Infof("listening on %s", l.Addr())

	if err := ws.server.Serve(l); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop drains open connections for at most server.shutdown_timeout, a
// server stopped before it started never serves
func (ws *WebService) Stop(ctx context.Context) error {
	ws.application.logger.Trace("shutting down webserver")

	ctx, cancel := context.WithTimeout(ctx, ws.application.config.Server.ShutdownTimeout.Get())
	defer cancel()

	return ws.server.Shutdown(ctx)
}

// Run serves until ctx is done, then stops the server and shuts the
// application down
func (ws *WebService) Run(ctx context.Context) error {
	errs := make(chan error, 1)
	go func() { errs <- ws.Start() }()

	select {
	case err := <-errs:
		if err != nil {
			return errors.Join(err, ws.application.Shutdown())
		}
	case <-ctx.Done():
		if err := ws.Stop(context.Background()); err != nil {
			return errors.Join(err, ws.application.Shutdown())
		}
		<-errs
	}

	return ws.application.Shutdown()
}
