package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNewMetrics(t *testing.T) {
	m := NewMetrics()

	if m == nil {
		t.Fatal("NewMetrics returned nil")
	}

	if m.registry == nil {
		t.Error("Registry is nil")
	}
	if m.QuestionsTotal == nil {
		t.Error("QuestionsTotal is nil")
	}
	if m.ProviderCallDuration == nil {
		t.Error("ProviderCallDuration is nil")
	}
	if m.SessionsActive == nil {
		t.Error("SessionsActive is nil")
	}
	if m.HistoryTrimmedTotal == nil {
		t.Error("HistoryTrimmedTotal is nil")
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := NewMetrics()

	m.RecordQuestion("success")
	m.RecordQuestion("provider_error")
	m.ObserveProviderCall("azure-openai", 120*time.Millisecond)
	m.SetActiveSessions(3)
	m.AddTrimmed(2)
	m.AddTrimmed(0) // no-op

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	body := rec.Body.String()
	for _, want := range []string{
		`askd_questions_total{status="success"} 1`,
		`askd_questions_total{status="provider_error"} 1`,
		`askd_sessions_active 3`,
		`askd_history_trimmed_total 2`,
		`askd_provider_call_duration_seconds_count{provider="azure-openai"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
