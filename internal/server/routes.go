package server

import "net/http"

func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /", s.handleInfo)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("GET /v1/sample", s.handleSample)
	mux.HandleFunc("POST /v1/take", s.handleTake)
	mux.HandleFunc("GET /v1/receipts", s.handleReceipts)

	return mux
}
