package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"conut-agent/internal/staffing"
	"conut-agent/internal/tools"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":             "ok",
		"app":                s.cfg.AppName,
		"version":            s.cfg.AppVersion,
		"raw_data_dir":       s.cfg.RawDataDir,
		"processed_data_dir": s.cfg.ProcessedDataDir,
	})
}

func (s *Server) handleActivity(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "limit must be an integer"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": s.recorder.List(limit)})
}

func (s *Server) handleAgentChat(c *gin.Context) {
	var body agentChatRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	reply, err := s.gateway.Chat(c.Request.Context(), body.SessionID, body.Message)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, agentChatResponse{
		SessionID:        reply.SessionID,
		AssistantMessage: reply.Content,
	})
}

func (s *Server) handleEstimateStaffing(c *gin.Context) {
	const tool = "estimate_staffing"
	start := time.Now()

	var body staffingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		s.fail(c, tool, start, body, http.StatusBadRequest, err)
		return
	}

	req := body.domain(s.cfg.Staffing)
	if err := req.Normalize(staffing.Defaults(s.cfg.Staffing)); err != nil {
		s.fail(c, tool, start, body, http.StatusBadRequest, err)
		return
	}

	attendance, err := s.loadAttendance()
	if err != nil {
		s.fail(c, tool, start, body, http.StatusInternalServerError, err)
		return
	}
	sales, err := s.loadSales()
	if err != nil {
		s.fail(c, tool, start, body, http.StatusInternalServerError, err)
		return
	}

	result, err := s.estimator.Estimate(req, attendance, sales)
	if err != nil {
		s.fail(c, tool, start, body, statusFor(err), err)
		return
	}
	s.respond(c, tool, start, body, result)
}

func (s *Server) handleUnderstaffedBranches(c *gin.Context) {
	const tool = "understaffed_branches"
	start := time.Now()

	var body benchmarkRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		s.fail(c, tool, start, body, http.StatusBadRequest, err)
		return
	}

	req := body.domain(s.cfg.Staffing)
	if err := req.Normalize(staffing.Defaults(s.cfg.Staffing)); err != nil {
		s.fail(c, tool, start, body, http.StatusBadRequest, err)
		return
	}

	attendance, err := s.loadAttendance()
	if err != nil {
		s.fail(c, tool, start, body, http.StatusInternalServerError, err)
		return
	}
	sales, err := s.loadSales()
	if err != nil {
		s.fail(c, tool, start, body, http.StatusInternalServerError, err)
		return
	}

	result, err := s.estimator.Benchmark(c.Request.Context(), req, attendance, sales)
	if err != nil {
		s.fail(c, tool, start, body, statusFor(err), err)
		return
	}
	s.respond(c, tool, start, body, result)
}

func (s *Server) handleAverageShiftLength(c *gin.Context) {
	const tool = "average_shift_length"
	start := time.Now()

	var body shiftLengthRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		s.fail(c, tool, start, body, http.StatusBadRequest, err)
		return
	}

	req := body.domain()
	if err := req.Normalize(); err != nil {
		s.fail(c, tool, start, body, http.StatusBadRequest, err)
		return
	}

	attendance, err := s.loadAttendance()
	if err != nil {
		s.fail(c, tool, start, body, http.StatusInternalServerError, err)
		return
	}

	result, err := staffing.SummarizeShiftLengths(req, attendance)
	if err != nil {
		s.fail(c, tool, start, body, statusFor(err), err)
		return
	}
	s.respond(c, tool, start, body, result)
}

func (s *Server) handleRecommendCombos(c *gin.Context) {
	const tool = "recommend_combos"
	start := time.Now()

	var body comboRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		s.fail(c, tool, start, body, http.StatusBadRequest, err)
		return
	}

	req := tools.ComboRequest{Branch: body.Branch, TopN: body.TopN, MinSupport: body.MinSupport}
	if err := req.Normalize(); err != nil {
		s.fail(c, tool, start, body, http.StatusBadRequest, err)
		return
	}

	transactions, err := s.loadTransactions()
	if err != nil {
		s.fail(c, tool, start, body, http.StatusInternalServerError, err)
		return
	}
	s.respond(c, tool, start, body, tools.RecommendCombos(req, transactions))
}

func (s *Server) handleForecastDemand(c *gin.Context) {
	const tool = "forecast_demand"
	start := time.Now()

	var body forecastRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		s.fail(c, tool, start, body, http.StatusBadRequest, err)
		return
	}

	req := tools.ForecastRequest{Branch: body.Branch, HorizonDays: body.HorizonDays}
	if err := req.Normalize(); err != nil {
		s.fail(c, tool, start, body, http.StatusBadRequest, err)
		return
	}

	sales, err := s.loadSales()
	if err != nil {
		s.fail(c, tool, start, body, http.StatusInternalServerError, err)
		return
	}
	s.respond(c, tool, start, body, tools.ForecastDemand(req, sales, time.Now()))
}

func (s *Server) handleExpansionFeasibility(c *gin.Context) {
	const tool = "expansion_feasibility"
	start := time.Now()

	var body expansionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		s.fail(c, tool, start, body, http.StatusBadRequest, err)
		return
	}

	req := tools.ExpansionRequest{CandidateLocation: body.CandidateLocation, TargetRegion: body.TargetRegion}
	if err := req.Normalize(); err != nil {
		s.fail(c, tool, start, body, http.StatusBadRequest, err)
		return
	}

	transactions, err := s.loadTransactions()
	if err != nil {
		s.fail(c, tool, start, body, http.StatusInternalServerError, err)
		return
	}
	sales, err := s.loadSales()
	if err != nil {
		s.fail(c, tool, start, body, http.StatusInternalServerError, err)
		return
	}
	s.respond(c, tool, start, body, tools.ScoreExpansionFeasibility(req, transactions, sales))
}

func (s *Server) handleGrowthStrategy(c *gin.Context) {
	const tool = "growth_strategy"
	start := time.Now()

	var body growthStrategyRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		s.fail(c, tool, start, body, http.StatusBadRequest, err)
		return
	}

	req := tools.GrowthStrategyRequest{Branch: body.Branch, FocusCategories: body.FocusCategories}
	if err := req.Normalize(); err != nil {
		s.fail(c, tool, start, body, http.StatusBadRequest, err)
		return
	}

	transactions, err := s.loadTransactions()
	if err != nil {
		s.fail(c, tool, start, body, http.StatusInternalServerError, err)
		return
	}
	s.respond(c, tool, start, body, tools.BuildGrowthStrategy(req, transactions))
}
