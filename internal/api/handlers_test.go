package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conut-agent/internal/activity"
	"conut-agent/internal/config"
	"conut-agent/internal/gateway"
	"conut-agent/internal/metrics"
)

const attendanceFixture = `employee_id,branch,punch_in,punch_out,work_duration_hours
E1,Jnah,2025-07-07 07:00:00,2025-07-07 15:00:00,8
E2,Jnah,2025-07-07 07:00:00,2025-07-07 15:00:00,8
E3,Jnah,2025-07-07 07:00:00,2025-07-07 15:00:00,8
E4,Jnah,2025-07-07 12:00:00,2025-07-07 22:00:00,10
E5,Jnah,2025-07-07 12:00:00,2025-07-07 22:00:00,10
E6,Jnah,2025-07-07 18:00:00,2025-07-08 04:00:00,10
E7,Jnah,2025-07-07 18:00:00,2025-07-08 04:00:00,10
E8,Verdun,2025-07-07 18:00:00,2025-07-08 02:00:00,8
`

const salesFixture = `branch_name,period_key,monthly_sales
Jnah,2025-07,32000
Verdun,2025-07,20000
`

const transactionsFixture = `order_id,item_name,branch,qty,net_sales,date
1001,Iced Coffee,Jnah,1,6.5,2025-07-07
1001,Butter Croissant,Jnah,1,4.0,2025-07-07
1002,Iced Coffee,Jnah,2,13.0,2025-07-07
1002,Butter Croissant,Jnah,1,4.0,2025-07-07
1003,Vanilla Milkshake,Verdun,1,8.0,2025-07-07
`

type stubGateway struct {
	reply *gateway.ChatReply
	err   error
}

func (s *stubGateway) Chat(_ context.Context, sessionID, _ string) (*gateway.ChatReply, error) {
	if s.err != nil {
		return nil, s.err
	}
	reply := *s.reply
	if reply.SessionID == "" {
		reply.SessionID = sessionID
	}
	return &reply, nil
}

func newTestRouter(t *testing.T, gw gateway.Client) (*gin.Engine, *activity.Log) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	for name, content := range map[string]string{
		"attendance.csv":   attendanceFixture,
		"sales.csv":        salesFixture,
		"transactions.csv": transactionsFixture,
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}

	cfg := &config.AppConfig{
		AppName:          "Conut COO Agent",
		AppVersion:       "test",
		CORSOrigins:      []string{"http://localhost:5173"},
		RawDataDir:       dir,
		ProcessedDataDir: dir,
		AttendanceFile:   "attendance.csv",
		MonthlySalesFile: "sales.csv",
		TransactionsFile: "transactions.csv",
		Staffing: config.StaffingDefaults{
			ShiftHours:         8,
			BufferPct:          0.15,
			ShiftShareFallback: 0.25,
		},
	}

	recorder := activity.NewLog()
	server := NewServer(cfg, recorder, gw, metrics.New())
	return server.Router(), recorder
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func getPath(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, &stubGateway{})

	w := getPath(router, "/health")
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "Conut COO Agent", body["app"])
}

func TestEstimateStaffingEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, &stubGateway{})

	w := postJSON(t, router, "/tools/estimate_staffing", map[string]any{
		"branch":        "Jnah",
		"shift_name":    "evening",
		"target_period": "2025-07",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.Equal(t, "Jnah", body["branch"])
	assert.Equal(t, "evening", body["shift_name"])
	// With shift_hours and buffer_pct omitted the defaults (8h, 15%)
	// apply, and the fixture arithmetic lands on exactly one person.
	assert.Equal(t, 1.0, body["recommended_staff"].(float64))
	assert.NotEmpty(t, body["assumptions"])

	evidence := body["evidence"].(map[string]any)
	assert.InDelta(t, 0.15, evidence["buffer_pct_used"].(float64), 1e-9)
}

func TestEstimateStaffingUnknownBranch(t *testing.T) {
	router, _ := newTestRouter(t, &stubGateway{})

	w := postJSON(t, router, "/tools/estimate_staffing", map[string]any{
		"branch":     "Atlantis",
		"shift_name": "evening",
	})
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, decodeBody(t, w)["detail"], "Atlantis")
}

func TestEstimateStaffingValidation(t *testing.T) {
	router, _ := newTestRouter(t, &stubGateway{})

	cases := []map[string]any{
		{"shift_name": "evening"},                                          // missing branch
		{"branch": "Jnah", "shift_name": "graveyard"},                      // invalid shift
		{"branch": "Jnah", "shift_name": "evening", "target_period": "07"}, // bad period
		{"branch": "Jnah", "shift_name": "evening", "buffer_pct": 1.5},     // buffer out of range
	}
	for _, payload := range cases {
		w := postJSON(t, router, "/tools/estimate_staffing", payload)
		assert.Equal(t, http.StatusBadRequest, w.Code, "payload %v", payload)
	}
}

func TestUnderstaffedBranchesEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, &stubGateway{})

	w := postJSON(t, router, "/tools/understaffed_branches", map[string]any{
		"target_period": "2025-07",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody(t, w)
	// shift_name and top_n were omitted: the request defaults fill them.
	assert.Equal(t, "evening", body["shift_name"])
	ranked := body["branches_ranked"].([]any)
	assert.Len(t, ranked, 2)
	evidence := body["evidence"].(map[string]any)
	assert.Equal(t, 5.0, evidence["top_n"].(float64))
}

func TestAverageShiftLengthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, &stubGateway{})

	w := postJSON(t, router, "/tools/average_shift_length", map[string]any{})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.Greater(t, body["average_shift_length_hours"].(float64), 0.0)

	w = postJSON(t, router, "/tools/average_shift_length", map[string]any{
		"branch": "Jnah", "shift_name": "night", "day_of_week": "Tue",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestRecommendCombosEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, &stubGateway{})

	w := postJSON(t, router, "/tools/recommend_combos", map[string]any{"top_n": 3})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.Equal(t, "recommend_combos", body["tool_name"])
	assert.NotNil(t, body["result"])
}

func TestForecastDemandEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, &stubGateway{})

	// Only one month of history: the tool answers with an explanation
	// instead of an error.
	w := postJSON(t, router, "/tools/forecast_demand", map[string]any{"branch": "Jnah"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "forecast_demand", decodeBody(t, w)["tool_name"])

	w = postJSON(t, router, "/tools/forecast_demand", map[string]any{"horizon_days": 7})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExpansionAndGrowthEndpoints(t *testing.T) {
	router, _ := newTestRouter(t, &stubGateway{})

	w := postJSON(t, router, "/tools/expansion_feasibility", map[string]any{
		"candidate_location": "Hamra",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "expansion_feasibility", decodeBody(t, w)["tool_name"])

	w = postJSON(t, router, "/tools/growth_strategy", map[string]any{})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "growth_strategy", decodeBody(t, w)["tool_name"])
}

func TestToolSchemaEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, &stubGateway{})

	w := getPath(router, "/tools/schema")
	require.Equal(t, http.StatusOK, w.Code)

	specs := decodeBody(t, w)["tools"].([]any)
	assert.Len(t, specs, 7)
	names := make(map[string]bool)
	for _, spec := range specs {
		names[spec.(map[string]any)["name"].(string)] = true
	}
	assert.True(t, names["estimate_staffing"])
	assert.True(t, names["understaffed_branches"])
}

func TestAgentChatEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, &stubGateway{
		reply: &gateway.ChatReply{SessionID: "s-1", Content: "Jnah needs 4 evening staff."},
	})

	w := postJSON(t, router, "/agent/chat", map[string]any{"message": "staffing for Jnah?"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.Equal(t, "s-1", body["session_id"])
	assert.Equal(t, "Jnah needs 4 evening staff.", body["assistant_message"])
}

func TestAgentChatGatewayFailure(t *testing.T) {
	router, _ := newTestRouter(t, &stubGateway{err: errors.New("gateway unreachable")})

	w := postJSON(t, router, "/agent/chat", map[string]any{"message": "hello"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, decodeBody(t, w)["detail"], "unreachable")
}

func TestActivityRecordsInvocations(t *testing.T) {
	router, recorder := newTestRouter(t, &stubGateway{})

	postJSON(t, router, "/tools/recommend_combos", map[string]any{})
	postJSON(t, router, "/tools/estimate_staffing", map[string]any{
		"branch": "Jnah", "shift_name": "evening",
	})

	events := recorder.List(10)
	require.Len(t, events, 2)
	assert.Equal(t, "estimate_staffing", events[0].ToolName)
	assert.Equal(t, "recommend_combos", events[1].ToolName)
	assert.Equal(t, "ok", events[0].Status)

	w := getPath(router, "/activity?limit=1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w)["events"].([]any), 1)
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, &stubGateway{})

	postJSON(t, router, "/tools/recommend_combos", map[string]any{})

	w := getPath(router, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "conut_tools_invocations_total")
}
