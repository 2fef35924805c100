package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

type InfoResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type StatusResponse struct {
	BucketJoules float64 `json:"bucket_j"`
	CPUWatts     float64 `json:"cpu_w"`
	GPUWatts     float64 `json:"gpu_w"`
	IdleCPUWatts float64 `json:"idle_cpu_w"`
	IdleGPUWatts float64 `json:"idle_gpu_w"`
	NetWatts     float64 `json:"net_w"`
	Receipts     int64   `json:"receipts"`
	UptimeSec    float64 `json:"uptime_sec"`
}

type TakeRequest struct {
	Joules float64 `json:"joules"`
}

type TakeResponse struct {
	OK              bool    `json:"ok"`
	RemainingJoules float64 `json:"remaining_j"`
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	s.writeJSON(w, http.StatusOK, InfoResponse{
		Name:    "jouleflux",
		Version: s.version,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.service.Sample())
}

func (s *Server) handleTake(w http.ResponseWriter, r *http.Request) {
	var req TakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Joules < 0 {
		http.Error(w, "joules must be non-negative", http.StatusBadRequest)
		return
	}

	ok, remaining := s.service.Take(req.Joules)
	s.writeJSON(w, http.StatusOK, TakeResponse{
		OK:              ok,
		RemainingJoules: remaining,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	sample := s.service.Sample()

	resp := StatusResponse{
		BucketJoules: sample.BucketJoules,
		CPUWatts:     sample.CPUWatts,
		GPUWatts:     sample.GPUWatts,
		IdleCPUWatts: sample.IdleCPUWatts,
		IdleGPUWatts: sample.IdleGPUWatts,
		NetWatts:     sample.NetWatts,
		UptimeSec:    time.Since(s.startedAt).Seconds(),
	}

	if s.ledger != nil {
		if n, err := s.ledger.Count(); err == nil {
			resp.Receipts = n
		}
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReceipts(w http.ResponseWriter, r *http.Request) {
	if s.ledger == nil {
		http.Error(w, "ledger not available", http.StatusNotFound)
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 1000 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	receipts, err := s.ledger.List(limit)
	if err != nil {
		s.logger.Error("failed to list receipts", "error", err)
		http.Error(w, "failed to list receipts", http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, receipts)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response",
			"error", err,
			"status", status,
		)
	}
}
