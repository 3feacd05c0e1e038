package api

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"conut-agent/internal/config"
	"conut-agent/internal/staffing"
)

var registerValidatorsOnce sync.Once

// registerValidators adds the shared "period" rule (YYYY-MM) to gin's
// binding validator.
func registerValidators() {
	registerValidatorsOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("period", func(fl validator.FieldLevel) bool {
				return staffing.ValidPeriodKey(fl.Field().String())
			})
		}
	})
}

type staffingRequest struct {
	Branch         string   `json:"branch" binding:"required"`
	TargetPeriod   string   `json:"target_period" binding:"omitempty,period"`
	DayOfWeek      string   `json:"day_of_week" binding:"omitempty,oneof=Mon Tue Wed Thu Fri Sat Sun"`
	ShiftName      string   `json:"shift_name" binding:"required,oneof=morning afternoon evening night"`
	ShiftHours     float64  `json:"shift_hours" binding:"omitempty,gt=0,lte=24"`
	BufferPct      *float64 `json:"buffer_pct" binding:"omitempty,gte=0,lte=1"`
	DemandOverride *float64 `json:"demand_override" binding:"omitempty,gte=0"`
}

// bufferOr keeps an explicit 0 distinct from an omitted field.
func bufferOr(value *float64, fallback float64) float64 {
	if value == nil {
		return fallback
	}
	return *value
}

func (r staffingRequest) domain(defaults config.StaffingDefaults) staffing.EstimateRequest {
	return staffing.EstimateRequest{
		Branch:         r.Branch,
		TargetPeriod:   r.TargetPeriod,
		DayOfWeek:      r.DayOfWeek,
		ShiftName:      r.ShiftName,
		ShiftHours:     r.ShiftHours,
		BufferPct:      bufferOr(r.BufferPct, defaults.BufferPct),
		DemandOverride: r.DemandOverride,
	}
}

type benchmarkRequest struct {
	TargetPeriod   string   `json:"target_period" binding:"omitempty,period"`
	DayOfWeek      string   `json:"day_of_week" binding:"omitempty,oneof=Mon Tue Wed Thu Fri Sat Sun"`
	ShiftName      string   `json:"shift_name" binding:"omitempty,oneof=morning afternoon evening night"`
	ShiftHours     float64  `json:"shift_hours" binding:"omitempty,gt=0,lte=24"`
	BufferPct      *float64 `json:"buffer_pct" binding:"omitempty,gte=0,lte=1"`
	DemandOverride *float64 `json:"demand_override" binding:"omitempty,gte=0"`
	TopN           int      `json:"top_n" binding:"omitempty,min=1,max=20"`
}

func (r benchmarkRequest) domain(defaults config.StaffingDefaults) staffing.BenchmarkRequest {
	return staffing.BenchmarkRequest{
		TargetPeriod:   r.TargetPeriod,
		DayOfWeek:      r.DayOfWeek,
		ShiftName:      r.ShiftName,
		ShiftHours:     r.ShiftHours,
		BufferPct:      bufferOr(r.BufferPct, defaults.BufferPct),
		DemandOverride: r.DemandOverride,
		TopN:           r.TopN,
	}
}

type shiftLengthRequest struct {
	Branch    string `json:"branch"`
	ShiftName string `json:"shift_name" binding:"omitempty,oneof=morning afternoon evening night"`
	DayOfWeek string `json:"day_of_week" binding:"omitempty,oneof=Mon Tue Wed Thu Fri Sat Sun"`
}

func (r shiftLengthRequest) domain() staffing.ShiftLengthRequest {
	return staffing.ShiftLengthRequest{
		Branch:    r.Branch,
		ShiftName: r.ShiftName,
		DayOfWeek: r.DayOfWeek,
	}
}

type comboRequest struct {
	Branch     string  `json:"branch"`
	TopN       int     `json:"top_n" binding:"omitempty,min=1,max=20"`
	MinSupport float64 `json:"min_support" binding:"omitempty,gte=0,lte=1"`
}

type forecastRequest struct {
	Branch      string `json:"branch" binding:"required"`
	HorizonDays int    `json:"horizon_days" binding:"omitempty,min=1,max=31"`
}

type expansionRequest struct {
	CandidateLocation string `json:"candidate_location" binding:"required"`
	TargetRegion      string `json:"target_region"`
}

type growthStrategyRequest struct {
	Branch          string   `json:"branch"`
	FocusCategories []string `json:"focus_categories"`
}

type agentChatRequest struct {
	Message   string `json:"message" binding:"required,min=1"`
	SessionID string `json:"session_id"`
}

type agentChatResponse struct {
	SessionID        string `json:"session_id"`
	AssistantMessage string `json:"assistant_message"`
}
