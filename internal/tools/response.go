// Package tools implements the agent-facing analytics operations built on
// the POS and sales feeds: combo mining, demand forecasting, expansion
// scoring, and growth strategy. Every operation returns a ToolResponse so
// the agent can cite the evidence behind a recommendation.
package tools

import "fmt"

// ToolResponse is the common envelope for tool results: the payload plus
// the metrics, assumptions, and coverage notes that justify it.
type ToolResponse struct {
	ToolName           string         `json:"tool_name"`
	Result             map[string]any `json:"result"`
	KeyEvidenceMetrics map[string]any `json:"key_evidence_metrics"`
	Assumptions        []string       `json:"assumptions"`
	DataCoverageNotes  []string       `json:"data_coverage_notes"`
}

// ComboRequest asks for frequently co-purchased item pairs.
type ComboRequest struct {
	Branch     string
	TopN       int
	MinSupport float64
}

// Normalize applies defaults and validates ranges.
func (r *ComboRequest) Normalize() error {
	if r.TopN == 0 {
		r.TopN = 5
	}
	if r.TopN < 1 || r.TopN > 20 {
		return fmt.Errorf("top_n must be in [1, 20], got %d", r.TopN)
	}
	if r.MinSupport == 0 {
		r.MinSupport = 0.02
	}
	if r.MinSupport < 0 || r.MinSupport > 1 {
		return fmt.Errorf("min_support must be in [0, 1], got %v", r.MinSupport)
	}
	return nil
}

// ForecastRequest asks for a daily demand forecast for one branch.
type ForecastRequest struct {
	Branch      string
	HorizonDays int
}

// Normalize applies defaults and validates ranges.
func (r *ForecastRequest) Normalize() error {
	if r.Branch == "" {
		return fmt.Errorf("branch is required")
	}
	if r.HorizonDays == 0 {
		r.HorizonDays = 7
	}
	if r.HorizonDays < 1 || r.HorizonDays > 31 {
		return fmt.Errorf("horizon_days must be in [1, 31], got %d", r.HorizonDays)
	}
	return nil
}

// ExpansionRequest asks for a feasibility score for a candidate location.
type ExpansionRequest struct {
	CandidateLocation string
	TargetRegion      string
}

// Normalize validates the request.
func (r *ExpansionRequest) Normalize() error {
	if r.CandidateLocation == "" {
		return fmt.Errorf("candidate_location is required")
	}
	return nil
}

// GrowthStrategyRequest asks for category-driven growth recommendations.
type GrowthStrategyRequest struct {
	Branch          string
	FocusCategories []string
}

// Normalize applies the default focus categories.
func (r *GrowthStrategyRequest) Normalize() error {
	if len(r.FocusCategories) == 0 {
		r.FocusCategories = []string{"coffee", "milkshake"}
	}
	return nil
}
