package devproxy

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/thushan/llamadeck/internal/core/constants"
	"github.com/thushan/llamadeck/internal/logger"
	"github.com/thushan/llamadeck/internal/webui"
)

const (
	DefaultShutdownTimeout   = 10 * time.Second
	DefaultReadHeaderTimeout = 10 * time.Second
)

type Options struct {
	// Headers are set on every response, proxied or not
	Headers         map[string]string
	Addr            string
	Target          string
	StaticDir       string
	Prefixes        []string
	ShutdownTimeout time.Duration
}

// Server is the development server: API prefixes go to the llama.cpp
// backend, everything else is the web UI
type Server struct {
	logger   *logger.StyledLogger
	target   *url.URL
	proxy    *httputil.ReverseProxy
	fallback http.Handler
	routes   *RouteTable
	handler  http.Handler
	opts     Options
}

func New(opts Options, logger *logger.StyledLogger) (*Server, error) {
	if opts.Target == "" {
		opts.Target = constants.DefaultProxyTarget
	}
	if opts.Prefixes == nil {
		opts.Prefixes = constants.DevProxyPrefixes
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = DefaultShutdownTimeout
	}

	target, err := url.Parse(opts.Target)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy target %q: %w", opts.Target, err)
	}
	if target.Scheme != "http" && target.Scheme != "https" {
		return nil, fmt.Errorf("invalid proxy target %q: scheme must be http or https", opts.Target)
	}

	s := &Server{
		opts:   opts,
		logger: logger,
		target: target,
		routes: NewRouteTable(logger),
	}

	for _, prefix := range opts.Prefixes {
		s.routes.AddProxy(prefix, target.String())
	}
	if opts.StaticDir != "" {
		s.fallback = http.FileServer(http.Dir(opts.StaticDir))
		s.routes.AddLocal("/", opts.StaticDir, "static files")
	} else {
		s.fallback = webui.Handler()
		s.routes.AddLocal("/", "embedded", "bundled web UI")
	}

	s.proxy = s.newReverseProxy()
	s.handler = accessLog(logger, s.routes)(s.withHeaders(http.HandlerFunc(s.route)))
	return s, nil
}

func (s *Server) newReverseProxy() *httputil.ReverseProxy {
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(s.target)
			pr.SetXForwarded()
			// the backend sees the dev server's host, like the browser would in production
			pr.Out.Host = pr.In.Host
		},
		// SSE completions must reach the browser as they are produced
		FlushInterval: -1,
		ModifyResponse: func(resp *http.Response) error {
			// ours are already on the writer, drop the backend's copies
			for k := range s.opts.Headers {
				resp.Header.Del(k)
			}
			return nil
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			if errors.Is(err, context.Canceled) {
				return
			}
			s.logger.Error("Proxy error", "path", r.URL.Path, "target", s.target.String(), "error", err)
			http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		},
	}
}

func (s *Server) route(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.routes.MatchProxy(r.URL.Path); ok {
		s.proxy.ServeHTTP(w, r)
		return
	}
	s.fallback.ServeHTTP(w, r)
}

func (s *Server) withHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for k, v := range s.opts.Headers {
			h.Set(k, v)
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) Routes() *RouteTable {
	return s.routes
}

func (s *Server) Target() *url.URL {
	return s.target
}

// Start listens on Options.Addr and serves until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve runs on ln until ctx is cancelled, then shuts down gracefully
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
	}

	s.routes.LogTable()
	s.logger.InfoWithPath("Dev server listening on", "http://"+ln.Addr().String(), "target", s.target.String())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.ShutdownTimeout)
		defer cancel()

		s.logger.Info("Shutting down dev server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("dev server shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}
