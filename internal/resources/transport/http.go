// Package transport provides HTTP handlers for the resource domain.
package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gatewei/gatewei/internal/resources/domain"
)

// Handler handles HTTP requests for resources.
type Handler struct {
	svc domain.Service
}

// NewHandler creates a new resource HTTP handler.
func NewHandler(svc domain.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers the resource routes on a chi router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/resources/{resourceID}", func(r chi.Router) {
		r.Get("/", h.handleGet)
		r.Get("/access", h.handleAccess)
		r.Get("/content", h.handleContent)
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Get(r.Context(), chi.URLParam(r, "resourceID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FromResource(chi.URLParam(r, "resourceID"), res))
}

func (h *Handler) handleAccess(w http.ResponseWriter, r *http.Request) {
	wallet := r.URL.Query().Get("wallet")
	ok, err := h.svc.HasAccess(r.Context(), chi.URLParam(r, "resourceID"), wallet)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AccessResponse{
		ResourceID: chi.URLParam(r, "resourceID"),
		Wallet:     wallet,
		HasAccess:  ok,
	})
}

func (h *Handler) handleContent(w http.ResponseWriter, r *http.Request) {
	desc, err := h.svc.Content(r.Context(), chi.URLParam(r, "resourceID"), r.URL.Query().Get("wallet"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FromDescriptor(desc))
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidResourceID), errors.Is(err, domain.ErrInvalidWallet):
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
	case errors.Is(err, domain.ErrAccessDenied):
		writeError(w, http.StatusForbidden, "ACCESS_DENIED", "Payment required for this resource")
	default:
		writeError(w, http.StatusBadGateway, "CHAIN_UNAVAILABLE", "Failed to read the chain")
	}
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}
