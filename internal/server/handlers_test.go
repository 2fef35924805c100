package server

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jouleflux/jouleflux/internal/budget"
	"github.com/jouleflux/jouleflux/internal/config"
	"github.com/jouleflux/jouleflux/internal/ledger"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testService(bucketJoules float64) *budget.Service {
	svc := budget.NewService(budget.ServiceConfig{
		SmoothingAlpha: 0.2,
		IdleLearnWatts: 5,
	})
	if bucketJoules > 0 {
		// One synthetic tick above a zero baseline fills the bucket.
		svc.Credit(bucketJoules, 0, time.Second, time.Now())
	}
	return svc
}

func testServer(t *testing.T, bucketJoules float64) *Server {
	t.Helper()
	return New(config.Default(), testService(bucketJoules), nil, testLogger(), "0.1.0-test")
}

func testServerWithLedger(t *testing.T, bucketJoules float64) (*Server, *ledger.Ledger) {
	t.Helper()
	led, err := ledger.Open(filepath.Join(t.TempDir(), "receipts.db"))
	if err != nil {
		t.Fatalf("failed to open test ledger: %v", err)
	}
	t.Cleanup(func() { led.Close() })
	return New(config.Default(), testService(bucketJoules), led, testLogger(), "0.1.0-test"), led
}

func TestHandleInfo(t *testing.T) {
	srv := testServer(t, 0)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	srv.handleInfo(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var resp InfoResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Name != "jouleflux" {
		t.Errorf("expected name 'jouleflux', got %s", resp.Name)
	}
	if resp.Version != "0.1.0-test" {
		t.Errorf("expected version '0.1.0-test', got %s", resp.Version)
	}
}

func TestHandleInfo_NotFound(t *testing.T) {
	srv := testServer(t, 0)

	req := httptest.NewRequest(http.MethodGet, "/other", nil)
	w := httptest.NewRecorder()

	srv.handleInfo(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	srv := testServer(t, 0)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	srv.handleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("expected status 'ok', got %s", resp.Status)
	}
}

func TestHandleSample(t *testing.T) {
	srv := testServer(t, 50)

	req := httptest.NewRequest(http.MethodGet, "/v1/sample", nil)
	w := httptest.NewRecorder()

	srv.handleSample(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var sample budget.EnergySample
	if err := json.NewDecoder(w.Body).Decode(&sample); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if sample.BucketJoules < 49.9 || sample.BucketJoules > 50.1 {
		t.Errorf("expected bucket ≈50, got %v", sample.BucketJoules)
	}
	if !sample.Verify() {
		t.Error("served sample failed its integrity check")
	}
}

func TestHandleTake(t *testing.T) {
	srv := testServer(t, 50)

	body, _ := json.Marshal(TakeRequest{Joules: 20})
	req := httptest.NewRequest(http.MethodPost, "/v1/take", bytes.NewReader(body))
	w := httptest.NewRecorder()

	srv.handleTake(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp TakeResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.OK {
		t.Error("expected the debit to succeed")
	}
	if resp.RemainingJoules < 29.9 || resp.RemainingJoules > 30.1 {
		t.Errorf("expected remaining ≈30, got %v", resp.RemainingJoules)
	}
}

func TestHandleTake_Insufficient(t *testing.T) {
	srv := testServer(t, 10)

	body, _ := json.Marshal(TakeRequest{Joules: 20})
	req := httptest.NewRequest(http.MethodPost, "/v1/take", bytes.NewReader(body))
	w := httptest.NewRecorder()

	srv.handleTake(w, req)

	// Insufficient budget is a normal answer, not an HTTP error.
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp TakeResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.OK {
		t.Error("expected the debit to be refused")
	}
	if resp.RemainingJoules < 9.9 || resp.RemainingJoules > 10.1 {
		t.Errorf("refused debit must leave the bucket untouched, got %v", resp.RemainingJoules)
	}
}

func TestHandleTake_NegativeJoules(t *testing.T) {
	srv := testServer(t, 50)

	body, _ := json.Marshal(TakeRequest{Joules: -5})
	req := httptest.NewRequest(http.MethodPost, "/v1/take", bytes.NewReader(body))
	w := httptest.NewRecorder()

	srv.handleTake(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestHandleTake_BadBody(t *testing.T) {
	srv := testServer(t, 50)

	req := httptest.NewRequest(http.MethodPost, "/v1/take", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()

	srv.handleTake(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestHandleStatus(t *testing.T) {
	srv, led := testServerWithLedger(t, 50)
	if _, err := led.Add(ledger.Receipt{Task: "index_refresh"}); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()

	srv.handleStatus(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp StatusResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.BucketJoules < 49.9 {
		t.Errorf("expected bucket ≈50, got %v", resp.BucketJoules)
	}
	if resp.Receipts != 1 {
		t.Errorf("expected 1 receipt, got %d", resp.Receipts)
	}
}

func TestHandleReceipts(t *testing.T) {
	srv, led := testServerWithLedger(t, 0)
	for _, task := range []string{"a", "b", "c"} {
		if _, err := led.Add(ledger.Receipt{Task: task}); err != nil {
			t.Fatal(err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/receipts?limit=2", nil)
	w := httptest.NewRecorder()

	srv.handleReceipts(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var receipts []ledger.Receipt
	if err := json.NewDecoder(w.Body).Decode(&receipts); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(receipts) != 2 {
		t.Fatalf("expected 2 receipts, got %d", len(receipts))
	}
	if receipts[0].Task != "c" {
		t.Errorf("expected newest first, got %q", receipts[0].Task)
	}
}

func TestHandleReceipts_NoLedger(t *testing.T) {
	srv := testServer(t, 0)

	req := httptest.NewRequest(http.MethodGet, "/v1/receipts", nil)
	w := httptest.NewRecorder()

	srv.handleReceipts(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404 without a ledger, got %d", w.Code)
	}
}

func TestHandleReceipts_BadLimit(t *testing.T) {
	srv, _ := testServerWithLedger(t, 0)

	for _, limit := range []string{"0", "-1", "1001", "abc"} {
		req := httptest.NewRequest(http.MethodGet, "/v1/receipts?limit="+limit, nil)
		w := httptest.NewRecorder()

		srv.handleReceipts(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("limit=%s: expected status 400, got %d", limit, w.Code)
		}
	}
}
