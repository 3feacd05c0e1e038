// Package api wires the analytics tools into an HTTP surface for the
// conversational agent: one POST endpoint per tool, plus health, schema,
// activity, and metrics endpoints.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"conut-agent/internal/activity"
	"conut-agent/internal/config"
	"conut-agent/internal/feeds"
	"conut-agent/internal/gateway"
	"conut-agent/internal/metrics"
	"conut-agent/internal/staffing"
)

// Server holds the dependencies of the HTTP surface.
type Server struct {
	cfg       *config.AppConfig
	estimator *staffing.Estimator
	recorder  activity.Recorder
	gateway   gateway.Client
	metrics   *metrics.Metrics
}

// NewServer assembles a Server from its dependencies.
func NewServer(cfg *config.AppConfig, recorder activity.Recorder, gw gateway.Client, m *metrics.Metrics) *Server {
	return &Server{
		cfg:       cfg,
		estimator: staffing.NewEstimator(staffing.Defaults(cfg.Staffing)),
		recorder:  recorder,
		gateway:   gw,
		metrics:   m,
	}
}

// Router builds the gin engine with all routes and middleware attached.
func (s *Server) Router() *gin.Engine {
	registerValidators()

	router := gin.New()
	router.Use(gin.Recovery(), requestID(), cors(s.cfg.CORSOrigins), accessLog())

	router.GET("/health", s.handleHealth)
	router.GET("/activity", s.handleActivity)
	router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	router.POST("/agent/chat", s.handleAgentChat)

	toolRoutes := router.Group("/tools")
	{
		toolRoutes.POST("/recommend_combos", s.handleRecommendCombos)
		toolRoutes.POST("/forecast_demand", s.handleForecastDemand)
		toolRoutes.POST("/estimate_staffing", s.handleEstimateStaffing)
		toolRoutes.POST("/understaffed_branches", s.handleUnderstaffedBranches)
		toolRoutes.POST("/average_shift_length", s.handleAverageShiftLength)
		toolRoutes.POST("/expansion_feasibility", s.handleExpansionFeasibility)
		toolRoutes.POST("/growth_strategy", s.handleGrowthStrategy)
		toolRoutes.GET("/schema", s.handleToolSchema)
	}

	return router
}

// Feeds are re-read per request so a fresh ingest run is picked up
// without restarting the process.

func (s *Server) loadAttendance() (*feeds.AttendanceFeed, error) {
	return feeds.LoadAttendance(s.cfg.AttendancePath())
}

func (s *Server) loadSales() (*feeds.SalesFeed, error) {
	return feeds.LoadMonthlySales(s.cfg.MonthlySalesPath())
}

func (s *Server) loadTransactions() (*feeds.TransactionFeed, error) {
	return feeds.LoadTransactions(s.cfg.TransactionsPath())
}

// statusFor maps domain errors onto HTTP statuses: unresolved branches are
// 404, missing or unusable data is 422, anything else is a server fault.
func statusFor(err error) int {
	switch {
	case errors.Is(err, staffing.ErrBranchNotFound):
		return http.StatusNotFound
	case errors.Is(err, staffing.ErrNoValidAttendance),
		errors.Is(err, staffing.ErrNoAttendanceData),
		errors.Is(err, staffing.ErrNoDemandData),
		errors.Is(err, staffing.ErrNoProductivityData),
		errors.Is(err, staffing.ErrNoMatchingRows):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// preview converts a response payload into a generic map so the activity
// log can compact it.
func preview(v any) map[string]any {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

// observe records one finished tool invocation in both the activity log
// and the metrics registry.
func (s *Server) observe(c *gin.Context, tool string, start time.Time, payload any, result map[string]any, status int) {
	outcome := "ok"
	if status >= http.StatusBadRequest {
		outcome = "error"
	}
	s.metrics.ObserveTool(tool, outcome, time.Since(start))
	s.recorder.Record(activity.Event{
		ToolName:      tool,
		Path:          c.FullPath(),
		Source:        "http",
		Status:        outcome,
		Payload:       preview(payload),
		ResultPreview: result,
	})
}

// respond writes the payload and books the invocation.
func (s *Server) respond(c *gin.Context, tool string, start time.Time, requestPayload, response any) {
	s.observe(c, tool, start, requestPayload, preview(response), http.StatusOK)
	c.JSON(http.StatusOK, response)
}

// fail writes a structured error and books the invocation.
func (s *Server) fail(c *gin.Context, tool string, start time.Time, requestPayload any, status int, err error) {
	s.observe(c, tool, start, requestPayload, map[string]any{"error": err.Error()}, status)
	c.JSON(status, gin.H{"detail": err.Error()})
}
