package observations

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/vjpowerhouse/Basketball-Tracking-system/internal/auth"
	"github.com/vjpowerhouse/Basketball-Tracking-system/internal/hoopstats/trend"
	"github.com/vjpowerhouse/Basketball-Tracking-system/internal/telemetry/metrics"
	"github.com/vjpowerhouse/Basketball-Tracking-system/internal/telemetry/tracing"
	"github.com/vjpowerhouse/Basketball-Tracking-system/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=store_mocks_test.go -package=observations_test

// Store is the append/query capability of an observations backend.
type Store interface {
	Add(ctx context.Context, list []Observation) ([]Observation, error)
	ListAll(ctx context.Context, params ListParams) ([]Observation, error)
}

type AddObservationsResponse struct {
	EntryID      string        `json:"entryId,omitempty"`
	Observations []Observation `json:"observations"`
}

type MetricsResponse struct {
	Category trend.Category `json:"category"`
	Metrics  []string       `json:"metrics"`
}

type Handler struct {
	repo           Store
	analyzer       *Analyzer
	metricsManager *metrics.Manager
	nowFunc        func() time.Time
}

func NewHandler(repo Store, evaluator *trend.Evaluator, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:           repo,
		analyzer:       NewAnalyzer(repo, evaluator),
		metricsManager: metricsManager,
		nowFunc:        time.Now,
	}
}

func (handler *Handler) Analyzer() *Analyzer {
	return handler.analyzer
}

func (handler *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/hoopstats/entry/{category}", handler.HandleAddEntry).Methods("POST", "OPTIONS").Name("add-entry")
	r.HandleFunc("/hoopstats/observations", handler.HandleAddObservations).Methods("POST", "OPTIONS").Name("add-observations")
	r.HandleFunc("/hoopstats/dashboard", handler.HandleDashboard).Methods("GET", "OPTIONS").Name("dashboard")
	r.HandleFunc("/hoopstats/category/{category}/summary", handler.HandleSummary).Methods("GET", "OPTIONS").Name("category-summary")
	r.HandleFunc("/hoopstats/category/{category}/trend", handler.HandleTrend).Methods("GET", "OPTIONS").Name("category-trend")
	r.HandleFunc("/hoopstats/category/{category}/metrics", handler.HandleMetrics).Methods("GET", "OPTIONS").Name("category-metrics")
	r.HandleFunc("/hoopstats/category/{category}/metric/{metric}/history", handler.HandleMetricHistory).Methods("GET", "OPTIONS").Name("metric-history")
}

func (handler *Handler) HandleAddEntry(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.hoopstats.addEntry")
	defer span.End()

	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	category, ok := requestCategory(w, r)
	if !ok {
		return
	}

	entry, err := DecodeEntry(category, r.Body)
	if err != nil {
		log.Tracef("add entry [%s], decode: %s", category, err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	list, err := EntryObservations(entry, userID, handler.nowFunc())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	added, ok := handler.add(ctx, w, list)
	if !ok {
		return
	}

	handler.writeJSON(w, AddObservationsResponse{
		EntryID:      list[0].EntryID,
		Observations: added,
	}, http.StatusCreated)
}

func (handler *Handler) HandleAddObservations(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.hoopstats.addObservations")
	defer span.End()

	userID, ok := requestUser(w, r)
	if !ok {
		return
	}

	var raw []trend.Observation
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		log.Tracef("add observations, unmarshal json: %s", err)
		http.Error(w, "invalid observations list", http.StatusBadRequest)
		return
	}
	if len(raw) == 0 {
		http.Error(w, "no observations", http.StatusBadRequest)
		return
	}

	now := handler.nowFunc().UTC()
	list := make([]Observation, 0, len(raw))
	for _, o := range raw {
		if o.RecordedAt.IsZero() {
			o.RecordedAt = now
		}
		list = append(list, Observation{
			UserID:      userID,
			Observation: o,
		})
	}
	if err := validateAll(list); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	added, ok := handler.add(ctx, w, list)
	if !ok {
		return
	}

	handler.writeJSON(w, AddObservationsResponse{
		Observations: added,
	}, http.StatusCreated)
}

func (handler *Handler) add(ctx context.Context, w http.ResponseWriter, list []Observation) ([]Observation, bool) {
	added, err := handler.repo.Add(ctx, list)
	if errors.Is(err, ErrInvalidObservation) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	if err != nil {
		log.Errorf("failed to add %d observations: %s", len(list), err)
		http.Error(w, "error, failed to log observations", http.StatusInternalServerError)
		return nil, false
	}

	if handler.metricsManager != nil {
		for _, o := range added {
			handler.metricsManager.CounterObservations.WithLabelValues(string(o.Category)).Inc()
		}
	}
	log.Debugf("logged %d observations", len(added))

	return added, true
}

func (handler *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.hoopstats.summary")
	defer span.End()

	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	category, ok := requestCategory(w, r)
	if !ok {
		return
	}

	summary, err := handler.analyzer.LatestSummary(ctx, userID, category)
	if err != nil {
		handler.analysisFailed(w, "latest_summary", err)
		return
	}

	handler.countEvaluation("latest_summary", "ok")
	handler.writeJSON(w, summary, http.StatusOK)
}

func (handler *Handler) HandleTrend(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.hoopstats.trend")
	defer span.End()

	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	category, ok := requestCategory(w, r)
	if !ok {
		return
	}

	evaluation, err := handler.analyzer.CategoryTrend(ctx, userID, category)
	if err != nil {
		handler.analysisFailed(w, "category_trend", err)
		return
	}

	handler.countEvaluation("category_trend", "ok")
	handler.writeJSON(w, evaluation, http.StatusOK)
}

func (handler *Handler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.hoopstats.metrics")
	defer span.End()

	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	category, ok := requestCategory(w, r)
	if !ok {
		return
	}

	names, err := handler.analyzer.Metrics(ctx, userID, category)
	if err != nil {
		handler.analysisFailed(w, "metrics", err)
		return
	}

	handler.writeJSON(w, MetricsResponse{
		Category: category,
		Metrics:  names,
	}, http.StatusOK)
}

func (handler *Handler) HandleMetricHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.hoopstats.metricHistory")
	defer span.End()

	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	category, ok := requestCategory(w, r)
	if !ok {
		return
	}
	metric := mux.Vars(r)["metric"]
	if metric == "" {
		http.Error(w, "error, metric empty", http.StatusBadRequest)
		return
	}

	history, err := handler.analyzer.MetricHistory(ctx, userID, category, metric)
	if err != nil {
		handler.analysisFailed(w, "metric_history", err)
		return
	}

	handler.countEvaluation("metric_history", "ok")
	handler.writeJSON(w, history, http.StatusOK)
}

func (handler *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.hoopstats.dashboard")
	defer span.End()

	userID, ok := requestUser(w, r)
	if !ok {
		return
	}

	dashboard, err := handler.analyzer.Dashboard(ctx, userID)
	if err != nil {
		handler.analysisFailed(w, "dashboard", err)
		return
	}

	handler.countEvaluation("dashboard", "ok")
	handler.writeJSON(w, dashboard, http.StatusOK)
}

func (handler *Handler) analysisFailed(w http.ResponseWriter, kind string, err error) {
	if errors.Is(err, trend.ErrInvalidMeasurement) {
		handler.countEvaluation(kind, "invalid_measurement")
		log.Warnf("%s: %s", kind, err)
		http.Error(w, "training log contains an invalid measurement", http.StatusUnprocessableEntity)
		return
	}

	handler.countEvaluation(kind, "error")
	log.Errorf("%s failed: %s", kind, err)
	http.Error(w, "error, failed to read training log", http.StatusInternalServerError)
}

func (handler *Handler) countEvaluation(kind, result string) {
	if handler.metricsManager != nil {
		handler.metricsManager.CounterEvaluations.WithLabelValues(kind, result).Inc()
	}
}

func (handler *Handler) writeJSON(w http.ResponseWriter, v any, statusCode int) {
	respJson, err := json.Marshal(v)
	if err != nil {
		log.Errorf("failed to marshal response: %s", err)
		http.Error(w, "failed to marshal response", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, statusCode)
}

func requestUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return "", false
	}
	return userID, true
}

func requestCategory(w http.ResponseWriter, r *http.Request) (trend.Category, bool) {
	category, err := trend.ParseCategory(mux.Vars(r)["category"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return "", false
	}
	return category, true
}
