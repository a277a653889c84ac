// Package transport provides HTTP handlers for the verification domain.
package transport

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/gatewei/gatewei/internal/verify/domain"
)

// Handler handles HTTP requests for verification.
type Handler struct {
	svc domain.Service
}

// NewHandler creates a new verification HTTP handler.
func NewHandler(svc domain.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers the verification routes on a chi router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/verify", h.handleVerify)
	r.Get("/verify/{txHash}", h.handleVerifyGet)
}

// RegisterAdminRoutes registers the record administration routes.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/records", h.handleListRecords)
	r.Get("/records/{txHash}", h.handleGetRecord)
	r.Delete("/records/{txHash}", h.handleDeleteRecord)
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON")
		return
	}
	h.verify(w, r, req.TxHash)
}

func (h *Handler) handleVerifyGet(w http.ResponseWriter, r *http.Request) {
	h.verify(w, r, chi.URLParam(r, "txHash"))
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request, txHash string) {
	verdict, err := h.svc.Verify(r.Context(), txHash)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTxHash) {
			writeError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
			return
		}
		// The chain could not be consulted; nothing was decided.
		writeError(w, http.StatusBadGateway, "CHAIN_UNAVAILABLE", "Failed to verify payment")
		return
	}

	writeJSON(w, statusFor(verdict), FromVerdict(strings.ToLower(txHash), verdict))
}

func statusFor(v *domain.Verdict) int {
	switch v.Outcome {
	case domain.OutcomeVerified:
		return http.StatusOK
	case domain.OutcomePending:
		return http.StatusAccepted
	default:
		return http.StatusPaymentRequired
	}
}

func (h *Handler) handleListRecords(w http.ResponseWriter, r *http.Request) {
	recs, err := h.svc.Records(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list records")
		return
	}

	resp := RecordsResponse{Records: make([]RecordResponse, 0, len(recs)), Count: len(recs)}
	for _, rec := range recs {
		resp.Records = append(resp.Records, FromRecord(rec))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	verdict, err := h.svc.Status(r.Context(), chi.URLParam(r, "txHash"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidTxHash):
			writeError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		case errors.Is(err, domain.ErrRecordNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Record not found")
		default:
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to read record")
		}
		return
	}
	writeJSON(w, http.StatusOK, FromVerdict(strings.ToLower(chi.URLParam(r, "txHash")), verdict))
}

func (h *Handler) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	err := h.svc.DeleteRecord(r.Context(), chi.URLParam(r, "txHash"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidTxHash):
			writeError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		case errors.Is(err, domain.ErrRecordNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Record not found")
		default:
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete record")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
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
