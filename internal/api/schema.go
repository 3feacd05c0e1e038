package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type toolSpec struct {
	Name        string         `json:"name"`
	Method      string         `json:"method"`
	Path        string         `json:"path"`
	Description string         `json:"description"`
	Request     map[string]any `json:"request_schema"`
}

// handleToolSchema describes the tool surface so an agent gateway can
// register the endpoints without hand-written glue.
func (s *Server) handleToolSchema(c *gin.Context) {
	specs := []toolSpec{
		{
			Name:        "recommend_combos",
			Method:      http.MethodPost,
			Path:        "/tools/recommend_combos",
			Description: "Find high-value item combinations from order-level purchase patterns.",
			Request: map[string]any{
				"branch":      map[string]any{"type": "string", "required": false},
				"top_n":       map[string]any{"type": "integer", "required": false, "minimum": 1, "maximum": 20, "default": 5},
				"min_support": map[string]any{"type": "number", "required": false, "minimum": 0, "maximum": 1, "default": 0.02},
			},
		},
		{
			Name:        "forecast_demand",
			Method:      http.MethodPost,
			Path:        "/tools/forecast_demand",
			Description: "Forecast branch demand using historical sales patterns.",
			Request: map[string]any{
				"branch":       map[string]any{"type": "string", "required": true},
				"horizon_days": map[string]any{"type": "integer", "required": false, "minimum": 1, "maximum": 31, "default": 7},
			},
		},
		{
			Name:        "estimate_staffing",
			Method:      http.MethodPost,
			Path:        "/tools/estimate_staffing",
			Description: "Estimate required employees per shift using demand and attendance-based labor signals.",
			Request: map[string]any{
				"branch":          map[string]any{"type": "string", "required": true},
				"target_period":   map[string]any{"type": "string", "required": false, "pattern": `^\d{4}-\d{2}$`},
				"day_of_week":     map[string]any{"type": "string", "required": false, "enum": []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}},
				"shift_name":      map[string]any{"type": "string", "required": true, "enum": []string{"morning", "afternoon", "evening", "night"}},
				"shift_hours":     map[string]any{"type": "number", "required": false, "default": 8.0},
				"buffer_pct":      map[string]any{"type": "number", "required": false, "default": 0.15},
				"demand_override": map[string]any{"type": "number", "required": false},
			},
		},
		{
			Name:        "understaffed_branches",
			Method:      http.MethodPost,
			Path:        "/tools/understaffed_branches",
			Description: "Rank branches by staffing pressure relative to their sales-driven shift labor requirements.",
			Request: map[string]any{
				"target_period":   map[string]any{"type": "string", "required": false, "pattern": `^\d{4}-\d{2}$`},
				"day_of_week":     map[string]any{"type": "string", "required": false, "enum": []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}},
				"shift_name":      map[string]any{"type": "string", "required": false, "default": "evening"},
				"shift_hours":     map[string]any{"type": "number", "required": false, "default": 8.0},
				"buffer_pct":      map[string]any{"type": "number", "required": false, "default": 0.15},
				"demand_override": map[string]any{"type": "number", "required": false},
				"top_n":           map[string]any{"type": "integer", "required": false, "minimum": 1, "maximum": 20, "default": 5},
			},
		},
		{
			Name:        "average_shift_length",
			Method:      http.MethodPost,
			Path:        "/tools/average_shift_length",
			Description: "Summarize average shift length across branches or for a selected branch/shift.",
			Request: map[string]any{
				"branch":      map[string]any{"type": "string", "required": false},
				"shift_name":  map[string]any{"type": "string", "required": false, "enum": []string{"morning", "afternoon", "evening", "night"}},
				"day_of_week": map[string]any{"type": "string", "required": false, "enum": []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}},
			},
		},
		{
			Name:        "expansion_feasibility",
			Method:      http.MethodPost,
			Path:        "/tools/expansion_feasibility",
			Description: "Score candidate branch feasibility using internal branch benchmarks.",
			Request: map[string]any{
				"candidate_location": map[string]any{"type": "string", "required": true},
				"target_region":      map[string]any{"type": "string", "required": false},
			},
		},
		{
			Name:        "growth_strategy",
			Method:      http.MethodPost,
			Path:        "/tools/growth_strategy",
			Description: "Generate coffee/milkshake growth insights from category performance and attach patterns.",
			Request: map[string]any{
				"branch":           map[string]any{"type": "string", "required": false},
				"focus_categories": map[string]any{"type": "array", "required": false, "default": []string{"coffee", "milkshake"}},
			},
		},
	}

	c.JSON(http.StatusOK, gin.H{"tools": specs})
}
