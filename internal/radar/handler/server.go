package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"token-radar/internal/radar/config"
	"token-radar/internal/radar/monitor"
	"token-radar/internal/radar/service"
	"token-radar/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const tracerName = "token-radar/handler"

type ctxKey string

const requestIDKey ctxKey = "request_id"

// Server REST API
type Server struct {
	cfg    config.Config
	radar  *service.Radar
	router *mux.Router
	server *http.Server
	tl     *zap.Logger
	now    func() time.Time
}

func NewServer(cfg config.Config, radar *service.Radar, tl *zap.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		radar:  radar,
		router: mux.NewRouter(),
		tl:     tl,
		now:    time.Now,
	}
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler CORS 包在路由外层，预检请求不需要匹配路由
func (s *Server) Handler() http.Handler { return s.corsMiddleware(s.router) }

func (s *Server) setupRoutes() {
	s.router.Use(s.requestIDMiddleware)
	s.router.Use(s.requestLoggingMiddleware)

	api := s.router.PathPrefix(s.cfg.HTTP.Prefix).Subrouter()

	api.HandleFunc("/health", s.Health).Methods(http.MethodGet)
	api.HandleFunc("/tokens/new", s.NewTokens).Methods(http.MethodGet)
	api.HandleFunc("/tokens/trending", s.Trending).Methods(http.MethodGet)
	api.HandleFunc("/tokens/metrics/{address}", s.TokenMetrics).Methods(http.MethodGet)
	api.HandleFunc("/tokens/compare", s.Compare).Methods(http.MethodPost)
	api.HandleFunc("/tokens/filter", s.Filter).Methods(http.MethodPost)
	api.HandleFunc("/recommendations", s.Recommendations).Methods(http.MethodPost)
	api.HandleFunc("/dashboard", s.Dashboard).Methods(http.MethodGet)
	api.HandleFunc("/export/{type}", s.Export).Methods(http.MethodGet)

	s.router.NotFoundHandler = http.HandlerFunc(s.NotFound)
	s.router.MethodNotAllowedHandler = http.HandlerFunc(s.MethodNotAllowed)
}

// requestIDMiddleware 为每个请求生成短 id
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()[:8]
		}
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestLoggingMiddleware 开启 span，记录日志和指标
func (s *Server) requestLoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		route := routeTemplate(r)

		ctx, span := logger.StartSpanWithRequest(r, tracerName, route)
		defer span.End()

		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapper, r.WithContext(ctx))

		duration := time.Since(start)
		monitor.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(wrapper.statusCode)).Inc()
		monitor.HTTPDuration.WithLabelValues(route).Observe(duration.Seconds())

		logger.WithTrace(ctx, s.tl).Info("REQ",
			zap.Any("request_id", ctx.Value(requestIDKey)),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", wrapper.statusCode),
			zap.Duration("duration", duration),
			zap.String("remote", r.RemoteAddr))
	})
}

// corsMiddleware 只放行配置的来源，"*" 放行全部
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" && s.allowOrigin(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) allowOrigin(origin string) bool {
	for _, o := range s.cfg.HTTP.AllowOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

func (s *Server) Start() {
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.tl.Error("http server stopped", zap.Error(err))
		}
	}()
	s.tl.Info("HTTP server listening", zap.String("addr", s.cfg.HTTP.Addr), zap.String("prefix", s.cfg.HTTP.Prefix))
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.tl.Info("Shutting down HTTP server...")
	return s.server.Shutdown(ctx)
}

// responseWrapper 记录状态码
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
