package server

import (
	"net/http"
)

func NewRouter(h *Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /extractions", h.CreateExtraction)
	mux.HandleFunc("GET /extractions", h.ListExtractions)
	mux.HandleFunc("GET /extractions/export", h.ExportExtractions)
	mux.HandleFunc("GET /extractions/{id}", h.GetExtraction)
	mux.HandleFunc("GET /extractions/{id}/export", h.ExportExtraction)
	mux.HandleFunc("POST /validations", h.CreateValidation)
	mux.HandleFunc("GET /healthz", h.Healthz)

	return mux
}
