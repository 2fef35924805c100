package budget

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func agentStub(t *testing.T, bucket float64) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/sample", func(w http.ResponseWriter, r *http.Request) {
		ts := 1700000000.0
		json.NewEncoder(w).Encode(EnergySample{
			Timestamp:    ts,
			BucketJoules: bucket,
			Hash:         sampleHash(ts, bucket),
		})
	})
	mux.HandleFunc("POST /v1/take", func(w http.ResponseWriter, r *http.Request) {
		var req takeRequest
		json.NewDecoder(r.Body).Decode(&req)
		ok := req.Joules <= bucket
		remaining := bucket
		if ok {
			remaining -= req.Joules
		}
		json.NewEncoder(w).Encode(takeResponse{OK: ok, RemainingJoules: remaining})
	})
	return httptest.NewServer(mux)
}

func TestClient_Sample(t *testing.T) {
	srv := agentStub(t, 42)
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL})

	sample := client.Sample()
	if sample.BucketJoules != 42 {
		t.Errorf("expected bucket=42, got %v", sample.BucketJoules)
	}
}

func TestClient_Take(t *testing.T) {
	srv := agentStub(t, 100)
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL})

	ok, remaining := client.Take(60)
	if !ok || remaining != 40 {
		t.Errorf("expected ok with 40 remaining, got ok=%v remaining=%v", ok, remaining)
	}

	ok, _ = client.Take(200)
	if ok {
		t.Error("expected oversized take to be rejected")
	}
}

func TestClient_Unreachable_FailsClosed(t *testing.T) {
	client := NewClient(ClientConfig{
		BaseURL: "http://127.0.0.1:1",
		Timeout: 100 * time.Millisecond,
	})

	sample := client.Sample()
	if sample.BucketJoules != 0 {
		t.Errorf("unreachable agent must read as empty bucket, got %v", sample.BucketJoules)
	}

	ok, remaining := client.Take(1)
	if ok || remaining != 0 {
		t.Errorf("unreachable agent must reject takes, got ok=%v remaining=%v", ok, remaining)
	}
}

func TestClient_ServerError_FailsClosed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL})

	if sample := client.Sample(); sample.BucketJoules != 0 {
		t.Errorf("5xx must read as empty bucket, got %v", sample.BucketJoules)
	}
	if ok, _ := client.Take(1); ok {
		t.Error("5xx must reject takes")
	}
}

func TestClient_BadJSON_FailsClosed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL})

	if sample := client.Sample(); sample.BucketJoules != 0 {
		t.Errorf("undecodable body must read as empty bucket, got %v", sample.BucketJoules)
	}
	if ok, _ := client.Take(1); ok {
		t.Error("undecodable body must reject takes")
	}
}

func TestClient_BadHash_Discarded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(EnergySample{
			Timestamp:    1700000000,
			BucketJoules: 999,
			Hash:         "deadbeef",
		})
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL})

	if sample := client.Sample(); sample.BucketJoules != 0 {
		t.Errorf("sample with bad hash must be discarded, got %v", sample.BucketJoules)
	}
}

func TestClient_BasicAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "admin" || pass != "secret" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		ts := 1700000000.0
		json.NewEncoder(w).Encode(EnergySample{
			Timestamp:    ts,
			BucketJoules: 7,
			Hash:         sampleHash(ts, 7),
		})
	}))
	defer srv.Close()

	noAuth := NewClient(ClientConfig{BaseURL: srv.URL})
	if sample := noAuth.Sample(); sample.BucketJoules != 0 {
		t.Error("expected unauthenticated sample to fail closed")
	}

	withAuth := NewClient(ClientConfig{BaseURL: srv.URL, User: "admin", Password: "secret"})
	if sample := withAuth.Sample(); sample.BucketJoules != 7 {
		t.Errorf("expected authenticated sample, got %v", sample.BucketJoules)
	}
}
