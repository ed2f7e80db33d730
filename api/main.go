package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/venewatch/venezuela-monitor/internal/ai"
	"github.com/venewatch/venezuela-monitor/internal/config"
	"github.com/venewatch/venezuela-monitor/internal/elasticsearch"
	"github.com/venewatch/venezuela-monitor/internal/logger"
	"github.com/venewatch/venezuela-monitor/internal/models"
	"github.com/venewatch/venezuela-monitor/internal/report"
)

func main() {
	_ = godotenv.Load()

	log := logger.New("api")
	cfg, err := config.LoadAPI()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	indices := elasticsearch.Indices{
		News:    cfg.NewsIndex,
		Alerts:  cfg.AlertsIndex,
		Reports: cfg.ReportsIndex,
	}
	esClient, err := elasticsearch.New(cfg.ElasticsearchAddr, indices, log)
	if err != nil {
		log.Error("init elasticsearch", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	aiClient, err := ai.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiTimeout, log)
	if err != nil {
		log.Error("init gemini client", slog.Any("err", err))
		os.Exit(1)
	}
	analyst := ai.NewAnalyst(aiClient, cfg.GeminiReportModel, cfg.GeminiReportModel, log)
	generator := report.New(esClient, analyst, nil, log)

	srv := &server{log: log, cfg: cfg, es: esClient, reports: generator}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", srv.handleHealth)
	r.Get("/news", srv.handleListNews)
	r.Get("/news/{id}", srv.handleGetNews)
	r.Get("/alerts", srv.handleListAlerts)
	r.Patch("/alerts/{id}/read", srv.handleMarkAlertRead)
	r.Get("/reports/{date}", srv.handleGetReport)
	r.Post("/reports/{date}", srv.handleGenerateReport)

	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      3 * time.Minute,
	}

	go func() {
		log.Info("api server starting", slog.String("addr", cfg.BindAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.Any("err", err))
	}
}

type server struct {
	log     *slog.Logger
	cfg     *config.API
	es      *elasticsearch.Client
	reports *report.Generator
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.es.Health(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleListNews(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	category := strings.TrimSpace(r.URL.Query().Get("category"))
	if category != "" && !models.NewsCategory(category).Valid() {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown category: " + category})
		return
	}
	platform := strings.TrimSpace(r.URL.Query().Get("platform"))
	if platform != "" && !models.Platform(platform).Valid() {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown platform: " + platform})
		return
	}

	params := elasticsearch.NewsSearchParams{
		Category: category,
		Platform: platform,
		Breaking: r.URL.Query().Get("breaking") == "true",
		From:     clampInt(r.URL.Query().Get("from"), 0, 10_000),
		Size:     clampInt(r.URL.Query().Get("size"), s.cfg.DefaultPage, s.cfg.MaxPage),
		Start:    parseTime(r.URL.Query().Get("start")),
		End:      parseTime(r.URL.Query().Get("end")),
	}

	result, err := s.es.SearchNewsItems(ctx, params)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *server) handleGetNews(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	item, err := s.es.GetNewsItem(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	if item == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "news item not found"})
		return
	}

	writeJSON(w, http.StatusOK, item)
}

func (s *server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	unreadOnly := r.URL.Query().Get("unread") == "true"
	size := clampInt(r.URL.Query().Get("size"), s.cfg.DefaultPage, s.cfg.MaxPage)

	alerts, err := s.es.SearchAlerts(ctx, unreadOnly, size)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, alerts)
}

func (s *server) handleMarkAlertRead(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	alert, err := s.es.MarkAlertRead(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	if alert == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "alert not found"})
		return
	}

	writeJSON(w, http.StatusOK, alert)
}

func (s *server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	date, ok := parseDate(chi.URLParam(r, "date"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "date must be YYYY-MM-DD"})
		return
	}

	rep, err := s.es.FindReportByDate(ctx, date)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	if rep == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no report for date"})
		return
	}

	writeJSON(w, http.StatusOK, rep)
}

// handleGenerateReport builds the report on demand. The timeout is
// generous because the narrative comes from the language model.
func (s *server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	date, ok := parseDate(chi.URLParam(r, "date"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "date must be YYYY-MM-DD"})
		return
	}

	rep, err := s.reports.GenerateDailyReport(ctx, date)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	if rep == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no news items for date"})
		return
	}

	writeJSON(w, http.StatusOK, rep)
}

func parseDate(raw string) (time.Time, bool) {
	ts, err := time.Parse("2006-01-02", strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, false
	}
	return ts.UTC(), true
}

func parseTime(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return &ts
	}
	return nil
}

func clampInt(raw string, fallback, max int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	if value <= 0 {
		return fallback
	}
	if value > max {
		return max
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// nothing better to do
	}
}
