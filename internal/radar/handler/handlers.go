package handler

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"token-radar/internal/radar/model"
	"token-radar/internal/radar/service"
	"token-radar/pkg/logger"

	"github.com/bytedance/sonic"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// errorBody 错误响应
type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// listBody 列表类响应
type listBody[T any] struct {
	Success bool         `json:"success"`
	Data    []T          `json:"data"`
	Count   int          `json:"count"`
	Source  model.Source `json:"source"`
}

type dataBody[T any] struct {
	Success bool         `json:"success"`
	Data    T            `json:"data"`
	Source  model.Source `json:"source"`
}

type reportBody[T any] struct {
	Success bool         `json:"success"`
	Data    []T          `json:"data"`
	Report  string       `json:"report"`
	Source  model.Source `json:"source"`
}

type filterBody struct {
	Success bool                 `json:"success"`
	Data    []model.TokenMetrics `json:"data"`
	Summary model.FilterSummary  `json:"summary"`
	Source  model.Source         `json:"source"`
}

type healthBody struct {
	Success     bool   `json:"success"`
	Status      string `json:"status"`
	Message     string `json:"message"`
	Timestamp   string `json:"timestamp"`
	Environment string `json:"environment"`
	APIVersion  string `json:"apiVersion"`
}

// tokensRequest compare / recommendations 请求体
type tokensRequest struct {
	Tokens []model.TokenRef `json:"tokens"`
}

type filterRequest struct {
	Filters   model.Filter     `json:"filters"`
	SortBy    string           `json:"sortBy"`
	Ascending bool             `json:"ascending"`
	Tokens    []model.TokenRef `json:"tokens"`
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, healthBody{
		Success:     true,
		Status:      "OK",
		Message:     "Token radar API is running",
		Timestamp:   s.now().UTC().Format("2006-01-02T15:04:05.000Z"),
		Environment: s.cfg.App.Environment,
		APIVersion:  s.cfg.App.APIVersion,
	})
}

func (s *Server) NewTokens(w http.ResponseWriter, r *http.Request) {
	tokens, source, err := s.radar.NewTokens(r.Context())
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, "Failed to fetch new tokens", err)
		return
	}
	s.writeJSON(w, http.StatusOK, listBody[model.Token]{Success: true, Data: nonNil(tokens), Count: len(tokens), Source: source})
}

func (s *Server) Trending(w http.ResponseWriter, r *http.Request) {
	tokens, source, err := s.radar.Trending.Discover(r.Context())
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, "Failed to fetch trending tokens", err)
		return
	}
	s.writeJSON(w, http.StatusOK, listBody[model.TrendingToken]{Success: true, Data: nonNil(tokens), Count: len(tokens), Source: source})
}

func (s *Server) TokenMetrics(w http.ResponseWriter, r *http.Request) {
	address := strings.TrimSpace(mux.Vars(r)["address"])
	if len(address) < 10 {
		s.fail(w, r, http.StatusBadRequest, "Invalid token address", errors.New("address too short"))
		return
	}

	m, err := s.radar.TokenMetrics(r.Context(), address)
	switch {
	case errors.Is(err, service.ErrTokenNotFound):
		s.fail(w, r, http.StatusNotFound, "Token not found", err)
		return
	case err != nil:
		s.fail(w, r, http.StatusInternalServerError, "Failed to fetch token metrics", err)
		return
	}
	s.writeJSON(w, http.StatusOK, dataBody[model.TokenMetrics]{Success: true, Data: m, Source: m.Source})
}

func (s *Server) Compare(w http.ResponseWriter, r *http.Request) {
	var req tokensRequest
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if len(req.Tokens) == 0 {
		s.fail(w, r, http.StatusBadRequest, "At least one token is required", errors.New("empty tokens"))
		return
	}

	rows, report, source, err := s.radar.Compare(r.Context(), req.Tokens)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, "Failed to compare tokens", err)
		return
	}
	s.writeJSON(w, http.StatusOK, reportBody[model.ComparisonRow]{Success: true, Data: nonNil(rows), Report: report, Source: source})
}

func (s *Server) Filter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	res, err := s.radar.Filter(r.Context(), req.Tokens, req.Filters, req.SortBy, req.Ascending)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, "Failed to filter tokens", err)
		return
	}
	s.writeJSON(w, http.StatusOK, filterBody{Success: true, Data: nonNil(res.Tokens), Summary: res.Summary, Source: res.Source})
}

func (s *Server) Recommendations(w http.ResponseWriter, r *http.Request) {
	var req tokensRequest
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	recs, report, source, err := s.radar.Recommend(r.Context(), req.Tokens)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, "Failed to generate recommendations", err)
		return
	}
	s.writeJSON(w, http.StatusOK, reportBody[model.Recommendation]{Success: true, Data: nonNil(recs), Report: report, Source: source})
}

func (s *Server) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.radar.Dashboard(r.Context())
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, "Failed to build dashboard", err)
		return
	}
	s.writeJSON(w, http.StatusOK, dataBody[model.Dashboard]{Success: true, Data: d, Source: d.Source})
}

// Export 写入输出目录后以附件返回
func (s *Server) Export(w http.ResponseWriter, r *http.Request) {
	kind := mux.Vars(r)["type"]
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = service.FormatJSON
	}
	if _, err := service.ExportFileName(kind, format); err != nil {
		s.fail(w, r, http.StatusBadRequest, "Unsupported export type or format", err)
		return
	}

	path, source, err := s.radar.Export(r.Context(), kind, format)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, "Failed to export data", err)
		return
	}
	content, err := os.ReadFile(path)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, "Failed to read export file", err)
		return
	}

	contentType := "application/json"
	if format == service.FormatCSV {
		contentType = "text/csv; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filepath.Base(path)+`"`)
	w.Header().Set("X-Data-Source", string(source))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

func (s *Server) NotFound(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusNotFound, errorBody{Error: "Not found", Message: "route " + r.Method + " " + r.URL.Path + " does not exist"})
}

func (s *Server) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "Method not allowed", Message: r.Method + " " + r.URL.Path})
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, msg string, err error) {
	l := logger.WithTrace(r.Context(), s.tl)
	if status >= http.StatusInternalServerError {
		l.Error(msg, zap.String("path", r.URL.Path), zap.Error(err))
	} else {
		l.Debug(msg, zap.String("path", r.URL.Path), zap.Error(err))
	}
	s.writeJSON(w, status, errorBody{Error: msg, Message: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := sonic.Marshal(v)
	if err != nil {
		s.tl.Error("encode response failed", zap.Error(err))
		status = http.StatusInternalServerError
		b = []byte(`{"success":false,"error":"Internal error","message":"encode response failed"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

// decodeBody 空请求体视为空对象
func decodeBody(r *http.Request, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}
	return sonic.Unmarshal(body, out)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
