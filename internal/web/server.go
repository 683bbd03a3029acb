// Package web 提供 HTTP 接口与一个内嵌的 K 线页面。
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"stockBoard/internal/config"
	"stockBoard/internal/dashboard"
	"stockBoard/internal/model"
)

// Runner dashboard.Service 实现。
type Runner interface {
	Run(ctx context.Context, q dashboard.Query) dashboard.Result
}

type Server struct {
	quotes  dashboard.QuoteFetcher
	history dashboard.HistoryFetcher
	board   Runner
	chart   config.Chart
	now     func() time.Time
}

// Option 调整 Server。
type Option func(*Server)

// WithClock 替换时钟（测试注入）。
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

func NewServer(quotes dashboard.QuoteFetcher, history dashboard.HistoryFetcher, board Runner, chart config.Chart, opts ...Option) *Server {
	s := &Server{quotes: quotes, history: history, board: board, chart: chart, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// statusOf NotFound→404，FetchFailed→502，参数错误→400。
func statusOf(err error) int {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrInvalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrFetchFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// parseQuery 读取 period、lookback 查询参数，缺省取 daily、120。
func parseQuery(r *http.Request, code string) (dashboard.Query, error) {
	period, err := model.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		return dashboard.Query{}, err
	}
	q := dashboard.Query{Code: strings.TrimSpace(code), Period: period}
	if s := r.URL.Query().Get("lookback"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return dashboard.Query{}, errors.Join(model.ErrInvalidQuery, err)
		}
		q.LookbackDays = n
	}
	q = q.Normalize()
	if err := q.Validate(); err != nil {
		return dashboard.Query{}, err
	}
	return q, nil
}

func (s *Server) getQuote(w http.ResponseWriter, r *http.Request) {
	q, err := s.quotes.FetchQuote(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, statusOf(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r, chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rng := model.RangeFromLookback(s.now(), q.LookbackDays)
	bars, err := s.history.FetchHistory(r.Context(), q.Code, q.Period, rng)
	if err != nil {
		writeError(w, statusOf(err), err.Error())
		return
	}
	if bars == nil {
		bars = []model.HistoryBar{}
	}
	writeJSON(w, http.StatusOK, bars)
}

type dashboardBody struct {
	Status     dashboard.Status   `json:"status"`
	Query      dashboard.Query    `json:"query"`
	Start      string             `json:"start,omitempty"`
	End        string             `json:"end,omitempty"`
	Quote      *model.Quote       `json:"quote,omitempty"`
	Metrics    *dashboard.Metrics `json:"metrics,omitempty"`
	Bars       []model.HistoryBar `json:"bars"`
	ChartTitle string             `json:"chart_title,omitempty"`
	Error      string             `json:"error,omitempty"`
}

func (s *Server) getDashboard(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r, r.URL.Query().Get("code"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res := s.board.Run(r.Context(), q)
	body := dashboardBody{
		Status:     res.Status,
		Query:      res.Query,
		Quote:      res.Quote,
		Metrics:    res.Metrics,
		Bars:       res.Bars,
		ChartTitle: res.ChartTitle,
	}
	if !res.Range.Start.IsZero() {
		body.Start, body.End = res.Range.StartCompact(), res.Range.EndCompact()
	}
	if body.Bars == nil {
		body.Bars = []model.HistoryBar{}
	}
	status := http.StatusOK
	if res.Err != nil {
		body.Error = res.Err.Error()
		status = statusOf(res.Err)
	}
	writeJSON(w, status, body)
}
