package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequests.WithLabelValues("POST", "POST /add", "303"))

	ObserveRequest("POST", "POST /add", http.StatusSeeOther, 15*time.Millisecond)

	after := testutil.ToFloat64(HTTPRequests.WithLabelValues("POST", "POST /add", "303"))
	if after != before+1 {
		t.Errorf("http_requests_total = %v, want %v", after, before+1)
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	VisitsRecorded.WithLabelValues("recorded").Inc()

	recorder := httptest.NewRecorder()
	Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), "familytravel_visits_recorded_total") {
		t.Error("expected visits counter in exposition output")
	}
}
