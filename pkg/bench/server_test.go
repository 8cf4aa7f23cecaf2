package bench

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func sampleReport(name string) *Report {
	puts := NewHistogram()
	puts.Observe(10 * time.Microsecond)
	puts.Observe(20 * time.Microsecond)
	gets := NewHistogram()
	gets.Observe(5 * time.Microsecond)

	return &Report{
		WorkloadName: name,
		TreeKind:     "btree",
		Completed:    3,
		Duration:     50 * time.Microsecond,
		FinalCount:   2,
		FinalDepth:   1,
		ByOperation:  map[string]*Histogram{"put": puts, "get": gets},
	}
}

// TestServerRecordReportListsAndServesByName mirrors the teacher's setupTestServer/makeRequest
// pattern (pkg/server/server_test.go) scaled to this package's read-only results board: it
// records a report directly, then drives /results and /results/{run} through the router the
// way an httptest client would.
func TestServerRecordReportListsAndServesByName(t *testing.T) {
	s, err := NewServer(":0")
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	s.RecordReport(sampleReport("seq-insert"))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/results", nil)
	s.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("GET /results status = %d, want 200", rr.Code)
	}
	var list []*Report
	if err := json.NewDecoder(rr.Body).Decode(&list); err != nil {
		t.Fatalf("decoding /results body: %v", err)
	}
	if len(list) != 1 || list[0].WorkloadName != "seq-insert" {
		t.Fatalf("/results = %+v, want one report named seq-insert", list)
	}

	rr2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/results/seq-insert", nil)
	s.router.ServeHTTP(rr2, req2)

	if rr2.Code != http.StatusOK {
		t.Fatalf("GET /results/seq-insert status = %d, want 200", rr2.Code)
	}
	var rep Report
	if err := json.NewDecoder(rr2.Body).Decode(&rep); err != nil {
		t.Fatalf("decoding /results/seq-insert body: %v", err)
	}
	if rep.Completed != 3 {
		t.Fatalf("rep.Completed = %d, want 3", rep.Completed)
	}
}

func TestServerGetResultUnknownRunReturns404(t *testing.T) {
	s, err := NewServer(":0")
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/results/does-not-exist", nil)
	s.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("GET /results/does-not-exist status = %d, want 404", rr.Code)
	}
}

func TestServerHealthz(t *testing.T) {
	s, err := NewServer(":0")
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	s.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("GET /healthz status = %d, want 200", rr.Code)
	}
	if rr.Body.String() != "ok" {
		t.Fatalf("GET /healthz body = %q, want %q", rr.Body.String(), "ok")
	}
}

func TestServerGraphQLReportsQuery(t *testing.T) {
	s, err := NewServer(":0")
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	s.RecordReport(sampleReport("mixed"))

	body := strings.NewReader(`{"query":"{ reports { workloadName completed } }"}`)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/graphql", body)
	s.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("POST /graphql status = %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "mixed") {
		t.Fatalf("GraphQL response = %s, want it to mention workload %q", rr.Body.String(), "mixed")
	}
}

// TestWebSocketStreamReceivesRecordedReport mirrors the teacher's TestWebSocketConnection
// (pkg/server/handlers/websocket_test.go): dial /stream over an httptest.Server, then confirm
// a RecordReport call after the dial is pushed to the connected client as JSON.
func TestWebSocketStreamReceivesRecordedReport(t *testing.T) {
	s, err := NewServer(":0")
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	srv := httptest.NewServer(s.router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dialing websocket: %v", err)
	}
	defer conn.Close()

	// Give handleStream a moment to register the subscriber before broadcasting.
	time.Sleep(20 * time.Millisecond)
	s.RecordReport(sampleReport("streamed"))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var rep Report
	if err := conn.ReadJSON(&rep); err != nil {
		t.Fatalf("reading pushed report: %v", err)
	}
	if rep.WorkloadName != "streamed" {
		t.Fatalf("pushed report WorkloadName = %q, want %q", rep.WorkloadName, "streamed")
	}
}
